package models

import (
	"time"

	"github.com/google/uuid"
)

// CLASSROOM (LỚP HỌC)
type Classroom struct {
	ID          uuid.UUID `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(100);not null" json:"title"`
	Description string    `gorm:"type:varchar(500)" json:"description"`

	// Không xóa được user còn sở hữu lớp học
	CreatedByID uuid.UUID `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy   User      `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnDelete:RESTRICT;" json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Assignments []Assignment `gorm:"foreignKey:ClassroomID;constraint:OnDelete:CASCADE;" json:"assignments,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:ClassroomID;constraint:OnDelete:CASCADE;" json:"enrollments,omitempty"`
}

// ENROLLMENT (GHI DANH) - mỗi sinh viên chỉ ghi danh 1 lần vào 1 lớp
type Enrollment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	StudentID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_classroom" json:"student_id"`
	Student     User      `gorm:"foreignKey:StudentID;references:ID;constraint:OnDelete:CASCADE;" json:"student,omitempty"`
	ClassroomID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_classroom" json:"classroom_id"`
	Classroom   Classroom `gorm:"foreignKey:ClassroomID;references:ID;constraint:OnDelete:CASCADE;" json:"classroom,omitempty"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
