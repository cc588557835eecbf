package controllers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vnkhanh/classroom-backend/models"
	"github.com/vnkhanh/classroom-backend/utils"
)

// Cho phép test stub các gateway bên ngoài
var sendEmail = utils.SendEmail

// ====== INPUT STRUCTS ======
type RegisterInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	FullName    string `json:"full_name" binding:"required"`
	Role        string `json:"role" binding:"required"`
	Gender      string `json:"gender"`
	Age         int    `json:"age"`
	Description string `json:"description"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ====== HANDLERS ======
func Register(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Chỉ có 2 vai trò
	if input.Role != string(models.RoleTeacher) && input.Role != string(models.RoleStudent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vai trò phải là 'teacher' hoặc 'student'"})
		return
	}

	// Check email tồn tại
	var existing models.User
	if err := db.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email đã được sử dụng"})
		return
	}

	// Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể mã hoá mật khẩu"})
		return
	}

	// Tạo user mới
	newUser := models.User{
		ID:          uuid.New(),
		FullName:    input.FullName,
		Email:       input.Email,
		Password:    string(hashed),
		Role:        models.UserRole(input.Role),
		Gender:      input.Gender,
		Age:         input.Age,
		Description: input.Description,
	}

	if err := db.Create(&newUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tạo người dùng"})
		return
	}

	// Tạo token xác nhận email (hạn 24h)
	tokenStr, err := utils.GenerateSecureToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo token xác nhận"})
		return
	}
	confirmation := models.EmailConfirmation{
		ID:        uuid.New(),
		UserID:    newUser.ID,
		Token:     tokenStr,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	if err := db.Create(&confirmation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu token xác nhận"})
		return
	}

	// Gửi email xác nhận (không chặn luồng, lỗi chỉ log)
	go func() {
		confirmLink := os.Getenv("APP_BASE_URL") + "/api/auth/confirm-email?token=" + tokenStr
		body := `
		<h3>Xin chào ` + newUser.FullName + `,</h3>
		<p>Cảm ơn bạn đã đăng ký hệ thống quản lý lớp học.</p>
		<p>Vui lòng xác nhận email bằng cách bấm vào liên kết dưới đây:</p>
		<a href="` + confirmLink + `">Xác nhận email</a>
		<hr>
		<p><i>Đây là email tự động, vui lòng không trả lời.</i></p>
		`
		if err := sendEmail(newUser.Email, "Xác nhận email của bạn", body); err != nil {
			log.Println("Lỗi gửi email xác nhận:", err)
		}
	}()

	newUser.Password = ""
	c.JSON(http.StatusCreated, gin.H{
		"message": "Đăng ký thành công. Vui lòng kiểm tra email để xác nhận tài khoản.",
		"user":    newUser,
	})
}

// GET /api/auth/confirm-email?token=...
func ConfirmEmail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu token xác nhận"})
		return
	}

	var confirmation models.EmailConfirmation
	if err := db.Where("token = ? AND used = ?", tokenStr, false).First(&confirmation).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token xác nhận không hợp lệ"})
		return
	}

	if time.Now().After(confirmation.ExpiresAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token xác nhận đã hết hạn"})
		return
	}

	if err := db.Model(&models.User{}).
		Where("id = ?", confirmation.UserID).
		Update("email_confirmed", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xác nhận email"})
		return
	}

	db.Model(&confirmation).Update("used", true)

	c.JSON(http.StatusOK, gin.H{"message": "Xác nhận email thành công. Bạn có thể đăng nhập."})
}

func Login(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email hoặc mật khẩu không đúng"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email hoặc mật khẩu không đúng"})
		return
	}

	if !user.EmailConfirmed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Vui lòng xác nhận email trước khi đăng nhập"})
		return
	}

	// Sinh JWT (truyền ID dạng string và Role)
	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đăng nhập thành công",
		"token":   token,
		"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /api/auth/forgot-password
// Luôn trả về cùng một thông báo dù email có tồn tại hay không
func ForgotPassword(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genericMsg := "Nếu email tồn tại, liên kết đặt lại mật khẩu đã được gửi."

	var user models.User
	if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"message": genericMsg})
		return
	}

	tokenStr, err := utils.GenerateSecureToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo token"})
		return
	}

	reset := models.PasswordReset{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     tokenStr,
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}
	if err := db.Create(&reset).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu token"})
		return
	}

	go func() {
		resetLink := os.Getenv("APP_BASE_URL") + "/reset-password?token=" + tokenStr
		body := `
		<h3>Yêu cầu đặt lại mật khẩu</h3>
		<p>Bấm vào liên kết dưới đây để đặt lại mật khẩu (hạn 1 giờ):</p>
		<a href="` + resetLink + `">Đặt lại mật khẩu</a>
		<p>Nếu bạn không yêu cầu, vui lòng bỏ qua email này.</p>
		`
		if err := sendEmail(user.Email, "Đặt lại mật khẩu của bạn", body); err != nil {
			log.Println("Lỗi gửi email đặt lại mật khẩu:", err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"message": genericMsg})
}

type ResetPasswordInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// POST /api/auth/reset-password
func ResetPassword(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reset models.PasswordReset
	if err := db.Where("token = ? AND used = ?", input.Token, false).First(&reset).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token không hợp lệ hoặc đã sử dụng"})
		return
	}

	if time.Now().After(reset.ExpiresAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token đã hết hạn"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể mã hoá mật khẩu mới"})
		return
	}

	if err := db.Model(&models.User{}).
		Where("id = ?", reset.UserID).
		Update("password", string(hashed)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi cập nhật mật khẩu"})
		return
	}

	db.Model(&reset).Update("used", true)

	c.JSON(http.StatusOK, gin.H{"message": "Đặt lại mật khẩu thành công. Bạn có thể đăng nhập với mật khẩu mới."})
}

// GET /api/auth/me
func Me(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Người dùng không tồn tại"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          user.ID,
		"email":       user.Email,
		"full_name":   user.FullName,
		"role":        user.Role,
		"gender":      user.Gender,
		"age":         user.Age,
		"description": user.Description,
	})
}

// Đổi mật khẩu
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func ChangePassword(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Lấy user hiện tại
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Người dùng không tồn tại"})
		return
	}

	// Kiểm tra mật khẩu cũ
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mật khẩu cũ không đúng"})
		return
	}

	// Mã hoá mật khẩu mới
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể mã hoá mật khẩu mới"})
		return
	}

	// Cập nhật DB
	user.Password = string(hashed)
	if err := db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi cập nhật mật khẩu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đổi mật khẩu thành công",
	})
}
