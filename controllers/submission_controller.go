package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/classroom-backend/models"
	"github.com/vnkhanh/classroom-backend/utils"
	"github.com/vnkhanh/classroom-backend/ws"
)

// Cho phép test stub storage gateway
var (
	uploadSubmissionFile = utils.UploadSubmissionToSupabase
	deleteSubmissionFile = utils.DeleteFileFromSupabase
)

// POST /api/assignments/:id/submission (chỉ sinh viên đã ghi danh)
func CreateSubmission(c *gin.Context) {
	// Hủy request (client disconnect) sẽ hủy luôn các truy vấn đang chạy
	db := c.MustGet("db").(*gorm.DB).WithContext(c.Request.Context())
	userIDStr := c.GetString("user_id")

	userUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	assignmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var assignment models.Assignment
	if err := db.Preload("Classroom").
		First(&assignment, "id = ?", assignmentUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài tập"})
		return
	}

	// Phải ghi danh vào lớp của bài tập mới được nộp
	var enrolled int64
	db.Model(&models.Enrollment{}).
		Where("classroom_id = ? AND student_id = ?", assignment.ClassroomID, userUUID).
		Count(&enrolled)
	if enrolled == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn chưa ghi danh vào lớp học của bài tập này"})
		return
	}

	// Check nhanh đã nộp chưa
	var existing models.Submission
	if err := db.Where("assignment_id = ? AND student_id = ?", assignmentUUID, userUUID).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Bạn đã nộp bài cho bài tập này"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không có file đính kèm"})
		return
	}

	if err := utils.ValidateSubmissionFile(file); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submissionID := uuid.New()

	// Upload xong mới ghi row: upload lỗi thì không có bản ghi nào
	fileURL, err := uploadSubmissionFile(file, submissionID.String())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Lỗi upload file", "details": err.Error()})
		return
	}

	submission := models.Submission{
		ID:           submissionID,
		AssignmentID: assignmentUUID,
		StudentID:    userUUID,
		FileURL:      fileURL,
	}

	// Unique index (assignment_id, student_id) chặn 2 request nộp đồng thời
	if err := db.Create(&submission).Error; err != nil {
		// Dọn file đã upload để không bỏ rơi object trên storage
		if delErr := deleteSubmissionFile(fileURL); delErr != nil {
			log.Println("Lỗi xóa file sau khi insert thất bại:", delErr)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Bạn đã nộp bài cho bài tập này"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu bài nộp"})
		return
	}

	db.Preload("Assignment").Preload("Student").
		First(&submission, "id = ?", submission.ID)

	// Báo realtime cho giáo viên đang theo dõi lớp
	ws.NotifySubmissionCreated(
		assignment.ClassroomID.String(),
		submission.ID.String(),
		assignment.Title,
		submission.Student.FullName,
	)

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Nộp bài thành công",
		"submission": toSubmissionDto(submission),
	})
}

// GET /api/submissions/:id
// Giáo viên chủ lớp hoặc chính sinh viên nộp bài mới được xem
func GetSubmission(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	userUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	submissionUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var submission models.Submission
	if err := db.Preload("Assignment.Classroom").Preload("Assignment").Preload("Student").
		First(&submission, "id = ?", submissionUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài nộp"})
		return
	}

	isTeacher := submission.Assignment.Classroom.CreatedByID == userUUID
	isOwner := submission.StudentID == userUUID
	if !isTeacher && !isOwner {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền xem bài nộp này"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": toSubmissionDto(submission)})
}

// GET /api/assignments/:id/submission (sinh viên xem bài nộp của mình)
func GetMySubmission(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	userUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	assignmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var submission models.Submission
	if err := db.Preload("Assignment").Preload("Student").
		Where("assignment_id = ? AND student_id = ?", assignmentUUID, userUUID).
		First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bạn chưa nộp bài cho bài tập này"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": toSubmissionDto(submission)})
}

// GET /api/classrooms/:id/submissions (chỉ giáo viên chủ lớp)
func GetClassroomSubmissions(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	userUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	classroomUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var classroom models.Classroom
	if err := db.First(&classroom, "id = ?", classroomUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy lớp học"})
		return
	}

	if classroom.CreatedByID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền xem bài nộp của lớp học này"})
		return
	}

	var submissions []models.Submission
	if err := db.Preload("Assignment").Preload("Student").
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("assignments.classroom_id = ?", classroomUUID).
		Order("submissions.submitted_at DESC").
		Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách bài nộp"})
		return
	}

	result := []SubmissionDto{}
	for _, s := range submissions {
		result = append(result, toSubmissionDto(s))
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": result,
		"total":       len(result),
	})
}

// GET /api/assignments/:id/submissions (chỉ giáo viên chủ lớp)
func GetAssignmentSubmissions(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	userUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	assignmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var assignment models.Assignment
	if err := db.Preload("Classroom").
		First(&assignment, "id = ?", assignmentUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài tập"})
		return
	}

	// Quyền xem resolve qua chủ lớp hiện tại
	if assignment.Classroom.CreatedByID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền xem bài nộp của bài tập này"})
		return
	}

	var submissions []models.Submission
	if err := db.Preload("Assignment").Preload("Student").
		Where("assignment_id = ?", assignmentUUID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách bài nộp"})
		return
	}

	result := []SubmissionDto{}
	for _, s := range submissions {
		result = append(result, toSubmissionDto(s))
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": result,
		"total":       len(result),
	})
}
