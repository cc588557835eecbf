package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleTeacher UserRole = "teacher" // Giáo viên (tạo lớp, tạo bài tập)
	RoleStudent UserRole = "student" // Sinh viên (tham gia lớp, nộp bài)
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	FullName       string    `gorm:"size:150;not null" json:"full_name"`
	Email          string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"type:text;not null" json:"-"`
	Role           UserRole  `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	Gender         string    `gorm:"size:20" json:"gender"`
	Age            int       `json:"age"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	EmailConfirmed bool      `gorm:"default:false" json:"email_confirmed"`
	Status         *bool     `gorm:"default:true" json:"status"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Quan hệ
	CreatedClassrooms []Classroom  `gorm:"foreignKey:CreatedByID" json:"created_classrooms,omitempty"`
	Enrollments       []Enrollment `gorm:"foreignKey:StudentID" json:"enrollments,omitempty"`
	Submissions       []Submission `gorm:"foreignKey:StudentID" json:"submissions,omitempty"`
}
