package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecureToken sinh chuỗi hex ngẫu nhiên dùng cho token
// xác nhận email / đặt lại mật khẩu (32 bytes -> 64 ký tự)
func GenerateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
