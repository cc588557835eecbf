package models

import (
	"time"

	"github.com/google/uuid"
)

// ASSIGNMENT (BÀI TẬP)
type Assignment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Marks       int       `gorm:"not null;default:0" json:"marks"` // Thang điểm 0-1000
	ClassroomID uuid.UUID `gorm:"type:uuid;not null" json:"classroom_id"`
	Classroom   Classroom `gorm:"foreignKey:ClassroomID;references:ID;constraint:OnDelete:CASCADE;" json:"classroom,omitempty"`

	CreatedByID uuid.UUID `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy   User      `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnDelete:RESTRICT;" json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Submissions []Submission `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE;" json:"submissions,omitempty"`
}

// SUBMISSION (BÀI NỘP) - mỗi sinh viên chỉ nộp 1 lần cho 1 bài tập
type Submission struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	AssignmentID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_student" json:"assignment_id"`
	Assignment   Assignment `gorm:"foreignKey:AssignmentID;references:ID;constraint:OnDelete:CASCADE;" json:"assignment,omitempty"`

	// RESTRICT: giữ lịch sử chấm điểm, không cho xóa sinh viên đã có bài nộp
	StudentID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_student" json:"student_id"`
	Student     User      `gorm:"foreignKey:StudentID;references:ID;constraint:OnDelete:RESTRICT;" json:"student,omitempty"`
	FileURL     string    `gorm:"type:text;not null" json:"file_url"`
	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`
}
