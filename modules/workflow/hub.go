package workflow

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 개발용 - 모든 origin 허용
		return true
	},
}

// ProgressEvent - 워크플로우 진행 상황 브로드캐스트 메시지
type ProgressEvent struct {
	SessionID string    `json:"session_id"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// progressClient - 연결된 구독자
type progressClient struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
}

// ProgressHub - 세션별 진행 상황 구독 허브
// sessionID가 빈 구독자는 전체 세션 이벤트를 수신
type ProgressHub struct {
	mu      sync.RWMutex
	clients map[*progressClient]bool
}

// NewProgressHub - 허브 생성
func NewProgressHub() *ProgressHub {
	return &ProgressHub{clients: make(map[*progressClient]bool)}
}

// Publish - 세션 이벤트 브로드캐스트 (느린 클라이언트는 스킵)
func (h *ProgressHub) Publish(sessionID, stage, message string) {
	event := ProgressEvent{
		SessionID: sessionID,
		Stage:     stage,
		Message:   message,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ Failed to marshal progress event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.sessionID != "" && client.sessionID != sessionID {
			continue
		}
		select {
		case client.send <- data:
		default:
		}
	}
}

// HandleWS - GET /ws?session_id=... 웹소켓 업그레이드
func (h *ProgressHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = r.URL.Query().Get("session")
	}

	client := &progressClient{
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, 16),
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()
	log.Printf("🔌 Progress subscriber connected (session=%q, total=%d)", client.sessionID, count)

	go h.writePump(client)
	h.readPump(client)
}

func (h *ProgressHub) writePump(client *progressClient) {
	for data := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// readPump - 연결 종료 감지용 (수신 메시지는 무시)
func (h *ProgressHub) readPump(client *progressClient) {
	defer h.remove(client)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *ProgressHub) remove(client *progressClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	client.conn.Close()
	log.Printf("👋 Progress subscriber disconnected (remaining=%d)", count)
}
