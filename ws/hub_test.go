package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mở 1 cặp kết nối WebSocket thật qua httptest, trả về conn phía
// server (đã đăng ký vào hub) và conn phía client
func dialTestConn(t *testing.T, register func(conn *websocket.Conn)) (server, client *websocket.Conn) {
	t.Helper()

	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	serverConns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		register(conn)
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-serverConns:
	case <-time.After(2 * time.Second):
		t.Fatal("server không nhận được kết nối")
	}
	return server, client
}

func readEvent(t *testing.T, conn *websocket.Conn) SubmissionEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event SubmissionEvent
	require.NoError(t, json.Unmarshal(msg, &event))
	return event
}

func TestNotifySubmissionCreated(t *testing.T) {
	classroomID := "lop-ws-test"

	serverConn, clientConn := dialTestConn(t, func(conn *websocket.Conn) {
		H.Register(classroomID, conn)
	})
	defer H.Unregister(classroomID, serverConn)

	globalServer, globalClient := dialTestConn(t, func(conn *websocket.Conn) {
		H.RegisterGlobal(conn)
	})
	defer H.UnregisterGlobal(globalServer)

	NotifySubmissionCreated(classroomID, "sub-1", "Bài tập 1", "Nguyễn Văn A")

	// Cả kênh lớp lẫn kênh global đều nhận event
	for _, conn := range []*websocket.Conn{clientConn, globalClient} {
		event := readEvent(t, conn)
		assert.Equal(t, "submission_created", event.Type)
		assert.Equal(t, classroomID, event.ClassroomID)
		assert.Equal(t, "sub-1", event.SubmissionID)
		assert.Equal(t, "Bài tập 1", event.AssignmentTitle)
		assert.Equal(t, "Nguyễn Văn A", event.StudentName)
	}
}

func TestBroadcastScopedToClassroom(t *testing.T) {
	connA, clientA := dialTestConn(t, func(conn *websocket.Conn) {
		H.Register("lop-a", conn)
	})
	defer H.Unregister("lop-a", connA)

	connB, clientB := dialTestConn(t, func(conn *websocket.Conn) {
		H.Register("lop-b", conn)
	})
	defer H.Unregister("lop-b", connB)

	H.Broadcast("lop-a", []byte(`{"type":"ping"}`))

	// Lớp A nhận được
	require.NoError(t, clientA.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := clientA.ReadMessage()
	assert.NoError(t, err)

	// Lớp B không nhận gì
	require.NoError(t, clientB.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = clientB.ReadMessage()
	assert.Error(t, err, "không có message nào cho lớp khác")
}

func TestHubStatsAndUnregister(t *testing.T) {
	classroomID := "lop-stats"

	serverConn, _ := dialTestConn(t, func(conn *websocket.Conn) {
		H.Register(classroomID, conn)
	})

	stats := H.GetStats()
	assert.GreaterOrEqual(t, stats["classroom_connections"].(int), 1)

	H.Unregister(classroomID, serverConn)

	H.Mutex.RLock()
	_, stillThere := H.Clients[classroomID]
	H.Mutex.RUnlock()
	assert.False(t, stillThere, "classroom trống phải bị gỡ khỏi hub")
}
