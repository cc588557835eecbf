package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/vnkhanh/classroom-backend/config"
	"github.com/vnkhanh/classroom-backend/models"
	"github.com/vnkhanh/classroom-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // chỉ để phát triển, nên giới hạn ở production
	},
}

// gửi message dạng JSON qua WebSocket
func sendJSON(conn *websocket.Conn, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Println("Lỗi JSON marshal:", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Println("Lỗi gửi message:", err)
	}
}

// WebSocket theo dõi bài nộp của 1 lớp (chỉ giáo viên chủ lớp)
func HandleClassroomWebSocket(c *gin.Context) {
	classroomID := c.Param("id")
	token := c.Query("token")

	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Thiếu token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
		return
	}

	// Chỉ giáo viên chủ lớp mới được theo dõi
	var classroom models.Classroom
	if err := config.DB.First(&classroom, "id = ?", classroomID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy lớp học"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi server"})
		}
		return
	}
	if classroom.CreatedByID.String() != claims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền theo dõi lớp học này"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}
	H.Register(classroomID, conn)
	defer H.Unregister(classroomID, conn)

	sendJSON(conn, gin.H{"type": "connected", "message": "Connected to classroom " + classroomID})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	log.Printf("Classroom WS disconnected: classroomID=%s, userID=%s\n", classroomID, claims.UserID)
	conn.Close()
}

// WebSocket cho global (giáo viên xem mọi event bài nộp của mình)
func HandleGlobalWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Thiếu token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
		return
	}

	if claims.Role != string(models.RoleTeacher) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ giáo viên mới được dùng kênh này"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}
	H.RegisterGlobal(conn)
	defer H.UnregisterGlobal(conn)

	sendJSON(conn, gin.H{"type": "connected", "message": "Connected to global WebSocket"})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	log.Printf("Global WS disconnected: userID=%s\n", claims.UserID)
	conn.Close()
}
