package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/classroom-backend/models"
)

type CreateAssignmentInput struct {
	Title string `json:"title" binding:"required,max=200"`
	Text  string `json:"text" binding:"required"`
	Marks *int   `json:"marks" binding:"required,gte=0,lte=1000"`
}

type UpdateAssignmentInput struct {
	Title string `json:"title" binding:"required,max=200"`
	Text  string `json:"text" binding:"required"`
	Marks *int   `json:"marks" binding:"required,gte=0,lte=1000"`
}

// Chủ lớp hoặc sinh viên đã ghi danh mới được xem bài tập của lớp
func canViewClassroom(db *gorm.DB, classroom models.Classroom, userID uuid.UUID) bool {
	if classroom.CreatedByID == userID {
		return true
	}
	var enrolled int64
	db.Model(&models.Enrollment{}).
		Where("classroom_id = ? AND student_id = ?", classroom.ID, userID).
		Count(&enrolled)
	return enrolled > 0
}

// GET /api/classrooms/:id/assignments
func GetClassroomAssignments(c *gin.Context) {
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

	// Kiểm tra tồn tại trước, quyền sau
	var classroom models.Classroom
	if err := db.First(&classroom, "id = ?", classroomUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy lớp học"})
		return
	}

	if !canViewClassroom(db, classroom, userUUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền xem bài tập của lớp học này"})
		return
	}

	var assignments []models.Assignment
	if err := db.Preload("CreatedBy").
		Where("classroom_id = ?", classroomUUID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách bài tập"})
		return
	}

	result := []AssignmentDto{}
	for _, a := range assignments {
		result = append(result, toAssignmentDto(db, a, classroom.Title, userUUID))
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": result,
		"total":       len(result),
	})
}

// GET /api/assignments/:id
func GetAssignment(c *gin.Context) {
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
	if err := db.Preload("Classroom").Preload("CreatedBy").
		First(&assignment, "id = ?", assignmentUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài tập"})
		return
	}

	// Quyền xem resolve qua lớp học cha
	if !canViewClassroom(db, assignment.Classroom, userUUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền xem bài tập này"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignment": toAssignmentDto(db, assignment, assignment.Classroom.Title, userUUID),
	})
}

// POST /api/classrooms/:id/assignments (chỉ giáo viên chủ lớp)
func CreateAssignment(c *gin.Context) {
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

	var input CreateAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var classroom models.Classroom
	if err := db.First(&classroom, "id = ?", classroomUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy lớp học"})
		return
	}

	// Chỉ giáo viên tạo lớp mới được thêm bài tập
	if classroom.CreatedByID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền thêm bài tập vào lớp học này"})
		return
	}

	assignment := models.Assignment{
		ID:          uuid.New(),
		Title:       input.Title,
		Text:        input.Text,
		Marks:       *input.Marks,
		ClassroomID: classroomUUID,
		CreatedByID: userUUID,
	}

	if err := db.Create(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo bài tập"})
		return
	}

	db.Preload("CreatedBy").First(&assignment, "id = ?", assignment.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Tạo bài tập thành công",
		"assignment": toAssignmentDto(db, assignment, classroom.Title, userUUID),
	})
}

// PUT /api/assignments/:id (chỉ giáo viên tạo bài tập)
func UpdateAssignment(c *gin.Context) {
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

	var input UpdateAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var assignment models.Assignment
	if err := db.First(&assignment, "id = ?", assignmentUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài tập"})
		return
	}

	if assignment.CreatedByID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền chỉnh sửa bài tập này"})
		return
	}

	assignment.Title = input.Title
	assignment.Text = input.Text
	assignment.Marks = *input.Marks

	if err := db.Save(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật bài tập"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cập nhật bài tập thành công"})
}

// DELETE /api/assignments/:id (chỉ giáo viên tạo bài tập)
func DeleteAssignment(c *gin.Context) {
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
	if err := db.First(&assignment, "id = ?", assignmentUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bài tập"})
		return
	}

	if assignment.CreatedByID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền xóa bài tập này"})
		return
	}

	// Cascade xóa luôn các bài nộp của bài tập
	if err := db.Delete(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa bài tập"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa bài tập thành công"})
}
