package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/classroom-backend/config"
	"github.com/vnkhanh/classroom-backend/middleware"
	"github.com/vnkhanh/classroom-backend/models"
	"github.com/vnkhanh/classroom-backend/utils"
)

const testPassword = "matkhau123"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")

	// Không gửi email thật trong test
	sendEmail = func(to, subject, body string) error { return nil }

	os.Exit(m.Run())
}

// setupTestDB mở SQLite in-memory với TranslateError để nhận
// gorm.ErrDuplicatedKey giống môi trường PostgreSQL
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// In-memory DB sống theo connection: giữ đúng 1 connection
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Classroom{},
		&models.Enrollment{},
		&models.Assignment{},
		&models.Submission{},
		&models.PasswordReset{},
		&models.EmailConfirmation{},
	))

	// AuthMiddleware đọc trạng thái user qua config.DB
	config.DB = db

	return db
}

// setupRouter đấu route giống routes.SetupRouter (không import được
// package routes từ đây vì vòng lặp import)
func setupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db))

	auth := api.Group("/auth")
	{
		auth.POST("/register", Register)
		auth.GET("/confirm-email", ConfirmEmail)
		auth.POST("/login", Login)
		auth.POST("/forgot-password", ForgotPassword)
		auth.POST("/reset-password", ResetPassword)

		auth.GET("/me", middleware.AuthMiddleware(), Me)
		auth.POST("/change-password", middleware.AuthMiddleware(), ChangePassword)
	}

	classrooms := api.Group("/classrooms")
	{
		classrooms.GET("", middleware.OptionalAuthMiddleware(), GetClassrooms)

		classrooms.GET("/my-classrooms", middleware.AuthMiddleware(), GetMyClassrooms)
		classrooms.GET("/:id", middleware.AuthMiddleware(), GetClassroomDetail)
		classrooms.POST("", middleware.AuthMiddleware(), middleware.RequireRoles("teacher"), CreateClassroom)
		classrooms.POST("/:id/join", middleware.AuthMiddleware(), middleware.RequireRoles("student"), JoinClassroom)

		classrooms.GET("/:id/assignments", middleware.AuthMiddleware(), GetClassroomAssignments)
		classrooms.POST("/:id/assignments", middleware.AuthMiddleware(), middleware.RequireRoles("teacher"), CreateAssignment)
		classrooms.GET("/:id/submissions", middleware.AuthMiddleware(), middleware.RequireRoles("teacher"), GetClassroomSubmissions)
	}

	assignments := api.Group("/assignments")
	assignments.Use(middleware.AuthMiddleware())
	{
		assignments.GET("/:id", GetAssignment)
		assignments.PUT("/:id", middleware.RequireRoles("teacher"), UpdateAssignment)
		assignments.DELETE("/:id", middleware.RequireRoles("teacher"), DeleteAssignment)

		assignments.POST("/:id/submission", middleware.RequireRoles("student"), CreateSubmission)
		assignments.GET("/:id/submission", middleware.RequireRoles("student"), GetMySubmission)
		assignments.GET("/:id/submissions", middleware.RequireRoles("teacher"), GetAssignmentSubmissions)
	}

	submissions := api.Group("/submissions")
	submissions.Use(middleware.AuthMiddleware())
	{
		submissions.GET("/:id", GetSubmission)
	}

	return r
}

// ====== FIXTURES ======

func createUser(t *testing.T, db *gorm.DB, role models.UserRole, email string) models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		ID:             uuid.New(),
		FullName:       "Người dùng " + email,
		Email:          email,
		Password:       string(hashed),
		Role:           role,
		EmailConfirmed: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	require.NoError(t, err)
	return token
}

func createClassroom(t *testing.T, db *gorm.DB, teacher models.User, title string) models.Classroom {
	t.Helper()
	classroom := models.Classroom{
		ID:          uuid.New(),
		Title:       title,
		Description: "Mô tả " + title,
		CreatedByID: teacher.ID,
	}
	require.NoError(t, db.Create(&classroom).Error)
	return classroom
}

func enrollStudent(t *testing.T, db *gorm.DB, student models.User, classroom models.Classroom) models.Enrollment {
	t.Helper()
	enrollment := models.Enrollment{
		ID:          uuid.New(),
		StudentID:   student.ID,
		ClassroomID: classroom.ID,
	}
	require.NoError(t, db.Create(&enrollment).Error)
	return enrollment
}

func createTestAssignment(t *testing.T, db *gorm.DB, classroom models.Classroom, teacher models.User, title string, marks int) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		ID:          uuid.New(),
		Title:       title,
		Text:        "Đề bài " + title,
		Marks:       marks,
		ClassroomID: classroom.ID,
		CreatedByID: teacher.ID,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func createTestSubmission(t *testing.T, db *gorm.DB, assignment models.Assignment, student models.User) models.Submission {
	t.Helper()
	submission := models.Submission{
		ID:           uuid.New(),
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		FileURL:      "https://example.supabase.co/storage/v1/object/public/uploads/submissions/" + uuid.NewString() + ".pdf",
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}

// ====== REQUEST HELPERS ======

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doUpload(t *testing.T, r *gin.Engine, path, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
