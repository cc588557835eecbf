package utils

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSubmissionFile(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"pdf hợp lệ", "bai_nop.pdf", 1024, false},
		{"docx hợp lệ", "bai_nop.docx", 1024, false},
		{"zip hợp lệ", "bai_nop.zip", 1024, false},
		{"đuôi viết hoa", "BAI_NOP.PDF", 1024, false},
		{"đúng giới hạn 10MB", "bai_nop.pdf", MaxSubmissionFileSize, false},
		{"vượt 10MB", "bai_nop.pdf", MaxSubmissionFileSize + 1, true},
		{"exe bị chặn", "virus.exe", 1024, true},
		{"không có đuôi", "baikhongduoi", 1024, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fh := &multipart.FileHeader{Filename: tc.filename, Size: tc.size}
			err := ValidateSubmissionFile(fh)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeleteFileFromSupabaseURLParsing(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "test-key")

	// URL rỗng coi như không có gì để xóa
	assert.NoError(t, DeleteFileFromSupabase(""))

	// URL không chứa đường dẫn object
	err := DeleteFileFromSupabase("https://example.supabase.co/khong/phai/storage")
	assert.Error(t, err)

	// Thiếu phần object sau bucket
	err = DeleteFileFromSupabase("https://example.supabase.co/storage/v1/object/public/uploads")
	assert.Error(t, err)
}

func TestDeleteFileFromSupabaseRequiresConfig(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_KEY", "")

	err := DeleteFileFromSupabase("https://example.supabase.co/storage/v1/object/public/uploads/submissions/x.pdf")
	assert.Error(t, err)
}
