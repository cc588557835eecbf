package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/classroom-backend/controllers"
	"github.com/vnkhanh/classroom-backend/middleware"
	"github.com/vnkhanh/classroom-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db))

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.GET("/confirm-email", controllers.ConfirmEmail)
		auth.POST("/login", controllers.Login)
		auth.POST("/forgot-password", controllers.ForgotPassword)
		auth.POST("/reset-password", controllers.ResetPassword)

		auth.GET("/me", middleware.AuthMiddleware(), controllers.Me)
		auth.POST("/change-password", middleware.AuthMiddleware(), controllers.ChangePassword)
	}

	classrooms := api.Group("/classrooms")
	{
		// Danh sách lớp học là public, có token thì vẫn nhận diện người gọi
		classrooms.GET("", middleware.OptionalAuthMiddleware(), controllers.GetClassrooms)

		classrooms.GET("/my-classrooms", middleware.AuthMiddleware(), controllers.GetMyClassrooms)
		classrooms.GET("/:id", middleware.AuthMiddleware(), controllers.GetClassroomDetail)
		classrooms.POST("", middleware.AuthMiddleware(), middleware.RequireRoles("teacher"), controllers.CreateClassroom)
		classrooms.POST("/:id/join", middleware.AuthMiddleware(), middleware.RequireRoles("student"), controllers.JoinClassroom)

		classrooms.GET("/:id/assignments", middleware.AuthMiddleware(), controllers.GetClassroomAssignments)
		classrooms.POST("/:id/assignments", middleware.AuthMiddleware(), middleware.RequireRoles("teacher"), controllers.CreateAssignment)
		classrooms.GET("/:id/submissions", middleware.AuthMiddleware(), middleware.RequireRoles("teacher"), controllers.GetClassroomSubmissions)
	}

	assignments := api.Group("/assignments")
	assignments.Use(middleware.AuthMiddleware())
	{
		assignments.GET("/:id", controllers.GetAssignment)
		assignments.PUT("/:id", middleware.RequireRoles("teacher"), controllers.UpdateAssignment)
		assignments.DELETE("/:id", middleware.RequireRoles("teacher"), controllers.DeleteAssignment)

		assignments.POST("/:id/submission", middleware.RequireRoles("student"), controllers.CreateSubmission)
		assignments.GET("/:id/submission", middleware.RequireRoles("student"), controllers.GetMySubmission)
		assignments.GET("/:id/submissions", middleware.RequireRoles("teacher"), controllers.GetAssignmentSubmissions)
	}

	submissions := api.Group("/submissions")
	submissions.Use(middleware.AuthMiddleware())
	{
		submissions.GET("/:id", controllers.GetSubmission)
	}

	r.GET("/ws/classrooms/:id", ws.HandleClassroomWebSocket)
	r.GET("/ws/status", ws.HandleGlobalWebSocket)

	return r
}
