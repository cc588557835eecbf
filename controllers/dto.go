package controllers

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/classroom-backend/models"
)

// Các struct projection trả về cho client. Các trường đếm / cờ
// (submission_count, has_submitted, is_enrolled...) luôn tính tại
// thời điểm truy vấn, không lưu trong DB.

type ClassroomDto struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CreatedByID     uuid.UUID `json:"created_by_id"`
	CreatedByName   string    `json:"created_by_name"`
	CreatedAt       time.Time `json:"created_at"`
	AssignmentCount int64     `json:"assignment_count"`
	StudentCount    int64     `json:"student_count"`
}

type ClassroomDetailDto struct {
	ClassroomDto
	IsEnrolled  bool            `json:"is_enrolled"`
	Assignments []AssignmentDto `json:"assignments"`
}

type AssignmentDto struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Text            string    `json:"text"`
	Marks           int       `json:"marks"`
	ClassroomID     uuid.UUID `json:"classroom_id"`
	ClassroomTitle  string    `json:"classroom_title"`
	CreatedByID     uuid.UUID `json:"created_by_id"`
	CreatedByName   string    `json:"created_by_name"`
	CreatedAt       time.Time `json:"created_at"`
	SubmissionCount int64     `json:"submission_count"`
	HasSubmitted    bool      `json:"has_submitted"`
}

type SubmissionDto struct {
	ID              uuid.UUID `json:"id"`
	AssignmentID    uuid.UUID `json:"assignment_id"`
	AssignmentTitle string    `json:"assignment_title"`
	StudentID       uuid.UUID `json:"student_id"`
	StudentName     string    `json:"student_name"`
	StudentEmail    string    `json:"student_email"`
	FileURL         string    `json:"file_url"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

func toClassroomDto(db *gorm.DB, classroom models.Classroom) ClassroomDto {
	var assignmentCount, studentCount int64
	db.Model(&models.Assignment{}).
		Where("classroom_id = ?", classroom.ID).
		Count(&assignmentCount)
	db.Model(&models.Enrollment{}).
		Where("classroom_id = ?", classroom.ID).
		Count(&studentCount)

	return ClassroomDto{
		ID:              classroom.ID,
		Title:           classroom.Title,
		Description:     classroom.Description,
		CreatedByID:     classroom.CreatedByID,
		CreatedByName:   classroom.CreatedBy.FullName,
		CreatedAt:       classroom.CreatedAt,
		AssignmentCount: assignmentCount,
		StudentCount:    studentCount,
	}
}

// requesterID xác định has_submitted; uuid.Nil nếu không cần
func toAssignmentDto(db *gorm.DB, assignment models.Assignment, classroomTitle string, requesterID uuid.UUID) AssignmentDto {
	var submissionCount int64
	db.Model(&models.Submission{}).
		Where("assignment_id = ?", assignment.ID).
		Count(&submissionCount)

	hasSubmitted := false
	if requesterID != uuid.Nil {
		var n int64
		db.Model(&models.Submission{}).
			Where("assignment_id = ? AND student_id = ?", assignment.ID, requesterID).
			Count(&n)
		hasSubmitted = n > 0
	}

	return AssignmentDto{
		ID:              assignment.ID,
		Title:           assignment.Title,
		Text:            assignment.Text,
		Marks:           assignment.Marks,
		ClassroomID:     assignment.ClassroomID,
		ClassroomTitle:  classroomTitle,
		CreatedByID:     assignment.CreatedByID,
		CreatedByName:   assignment.CreatedBy.FullName,
		CreatedAt:       assignment.CreatedAt,
		SubmissionCount: submissionCount,
		HasSubmitted:    hasSubmitted,
	}
}

// Tên bài tập và tên/email sinh viên luôn lấy từ bản ghi liên quan
// tại thời điểm trả về, không lưu trùng
func toSubmissionDto(submission models.Submission) SubmissionDto {
	return SubmissionDto{
		ID:              submission.ID,
		AssignmentID:    submission.AssignmentID,
		AssignmentTitle: submission.Assignment.Title,
		StudentID:       submission.StudentID,
		StudentName:     submission.Student.FullName,
		StudentEmail:    submission.Student.Email,
		FileURL:         submission.FileURL,
		SubmittedAt:     submission.SubmittedAt,
	}
}
