package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Clients       map[string]map[*websocket.Conn]*Client // Theo từng classroomID
	GlobalClients map[*websocket.Conn]*Client            // Dành cho broadcast chung
	Mutex         sync.RWMutex
}

var H = Hub{
	Clients:       make(map[string]map[*websocket.Conn]*Client),
	GlobalClients: make(map[*websocket.Conn]*Client),
}

// Event gửi khi có bài nộp mới trong lớp
type SubmissionEvent struct {
	Type            string `json:"type"`
	ClassroomID     string `json:"classroom_id"`
	SubmissionID    string `json:"submission_id"`
	AssignmentTitle string `json:"assignment_title"`
	StudentName     string `json:"student_name"`
}

// Register theo classroomID riêng
func (h *Hub) Register(classroomID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[classroomID]; !ok {
		h.Clients[classroomID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Clients[classroomID][conn] = client

	go h.writePump(classroomID, conn)
}

// Register global cho trang tổng quan
func (h *Hub) RegisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.GlobalClients[conn] = client

	go h.writeGlobalPump(conn)
}

// Broadcast theo classroomID
func (h *Hub) Broadcast(classroomID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Clients[classroomID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// Broadcast toàn bộ global clients
func (h *Hub) BroadcastGlobal(data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.GlobalClients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// NotifySubmissionCreated báo cho giáo viên đang theo dõi lớp có bài nộp mới
func NotifySubmissionCreated(classroomID, submissionID, assignmentTitle, studentName string) {
	event := SubmissionEvent{
		Type:            "submission_created",
		ClassroomID:     classroomID,
		SubmissionID:    submissionID,
		AssignmentTitle: assignmentTitle,
		StudentName:     studentName,
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(classroomID, data)
	H.BroadcastGlobal(data)
}

// Unregister client theo classroomID
func (h *Hub) Unregister(classroomID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[classroomID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, classroomID)
		}
	}
}

// Unregister global client
func (h *Hub) UnregisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.GlobalClients[conn]; ok {
		close(client.Send)
		delete(h.GlobalClients, conn)
	}
}

// GetStats trả về số kết nối đang mở (dùng cho health check)
func (h *Hub) GetStats() map[string]interface{} {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	classroomConns := 0
	for _, clients := range h.Clients {
		classroomConns += len(clients)
	}

	return map[string]interface{}{
		"classrooms":            len(h.Clients),
		"classroom_connections": classroomConns,
		"global_connections":    len(h.GlobalClients),
	}
}

// Write pump riêng theo classroomID
func (h *Hub) writePump(classroomID string, conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.Clients[classroomID][conn]
	h.Mutex.RUnlock()

	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// Write pump global
func (h *Hub) writeGlobalPump(conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.GlobalClients[conn]
	h.Mutex.RUnlock()

	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
