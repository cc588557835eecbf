package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/classroom-backend/models"
)

type CreateClassroomInput struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// GET /api/classrooms (public)
func GetClassrooms(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var classrooms []models.Classroom
	if err := db.Preload("CreatedBy").
		Order("created_at DESC").
		Find(&classrooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách lớp học"})
		return
	}

	result := []ClassroomDto{}
	for _, classroom := range classrooms {
		result = append(result, toClassroomDto(db, classroom))
	}

	c.JSON(http.StatusOK, gin.H{
		"classrooms": result,
		"total":      len(result),
	})
}

// GET /api/classrooms/:id (yêu cầu đăng nhập)
func GetClassroomDetail(c *gin.Context) {
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
	if err := db.Preload("CreatedBy").
		First(&classroom, "id = ?", classroomUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy lớp học"})
		return
	}

	// Cờ is_enrolled tính theo người đang request
	var enrolled int64
	db.Model(&models.Enrollment{}).
		Where("classroom_id = ? AND student_id = ?", classroom.ID, userUUID).
		Count(&enrolled)

	var assignments []models.Assignment
	if err := db.Preload("CreatedBy").
		Where("classroom_id = ?", classroom.ID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách bài tập"})
		return
	}

	assignmentDtos := []AssignmentDto{}
	for _, a := range assignments {
		assignmentDtos = append(assignmentDtos, toAssignmentDto(db, a, classroom.Title, userUUID))
	}

	detail := ClassroomDetailDto{
		ClassroomDto: toClassroomDto(db, classroom),
		IsEnrolled:   enrolled > 0,
		Assignments:  assignmentDtos,
	}

	c.JSON(http.StatusOK, gin.H{"classroom": detail})
}

// POST /api/classrooms (chỉ giáo viên)
func CreateClassroom(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	userUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var input CreateClassroomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	classroom := models.Classroom{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		CreatedByID: userUUID,
	}

	if err := db.Create(&classroom).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo lớp học"})
		return
	}

	db.Preload("CreatedBy").First(&classroom, "id = ?", classroom.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Tạo lớp học thành công",
		"classroom": toClassroomDto(db, classroom),
	})
}

// POST /api/classrooms/:id/join (chỉ sinh viên)
func JoinClassroom(c *gin.Context) {
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

	// Check nhanh đã ghi danh chưa
	var existing models.Enrollment
	if err := db.Where("student_id = ? AND classroom_id = ?", userUUID, classroomUUID).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Bạn đã ghi danh vào lớp học này"})
		return
	}

	enrollment := models.Enrollment{
		ID:          uuid.New(),
		StudentID:   userUUID,
		ClassroomID: classroomUUID,
	}

	// Unique index (student_id, classroom_id) là lưới an toàn khi 2 request
	// join chạy đồng thời
	if err := db.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Bạn đã ghi danh vào lớp học này"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể ghi danh"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ghi danh vào lớp học thành công"})
}

// GET /api/classrooms/my-classrooms
// Role đọc từ claims trong token: giáo viên thấy lớp mình tạo,
// sinh viên thấy lớp mình đã ghi danh
func GetMyClassrooms(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	userUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var classrooms []models.Classroom
	query := db.Preload("CreatedBy").Order("created_at DESC")

	if role == string(models.RoleTeacher) {
		query = query.Where("created_by_id = ?", userUUID)
	} else {
		query = query.
			Joins("JOIN enrollments ON enrollments.classroom_id = classrooms.id").
			Where("enrollments.student_id = ?", userUUID)
	}

	if err := query.Find(&classrooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách lớp học"})
		return
	}

	result := []ClassroomDto{}
	for _, classroom := range classrooms {
		result = append(result, toClassroomDto(db, classroom))
	}

	c.JSON(http.StatusOK, gin.H{
		"classrooms": result,
		"total":      len(result),
	})
}
