package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

// sendBuffer 每个连接的发送缓冲
const sendBuffer = 64

// Hub WebSocket 连接管理中心，按会话分组
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Connection]struct{}
	logger   *slog.Logger
}

// Connection 一个订阅会话事件的连接
type Connection struct {
	SessionID string
	Send      chan []byte

	closeOnce sync.Once
}

// NewConnection 创建连接
func NewConnection(sessionID string) *Connection {
	return &Connection{
		SessionID: sessionID,
		Send:      make(chan []byte, sendBuffer),
	}
}

// close 只关闭一次发送通道
func (c *Connection) close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[*Connection]struct{}),
		logger:   log.NewModuleLogger("websocket", "hub"),
	}
}

// Register 注册连接
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[conn.SessionID] == nil {
		h.sessions[conn.SessionID] = make(map[*Connection]struct{})
	}
	h.sessions[conn.SessionID][conn] = struct{}{}

	h.logger.Debug("Connection registered",
		"session_id", conn.SessionID,
		"connections", len(h.sessions[conn.SessionID]),
	)
}

// Unregister 注销连接并关闭其发送通道
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(conn)
}

// removeLocked 调用方持有写锁
func (h *Hub) removeLocked(conn *Connection) {
	conns, ok := h.sessions[conn.SessionID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	conn.close()
	if len(conns) == 0 {
		delete(h.sessions, conn.SessionID)
	}
}

// BroadcastToSession 向会话的所有连接推送，缓冲满的连接被断开
func (h *Hub) BroadcastToSession(sessionID string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.sessions[sessionID] {
		select {
		case conn.Send <- payload:
		default:
			h.logger.Warn("Dropping slow connection", "session_id", sessionID)
			h.removeLocked(conn)
		}
	}
	return nil
}

// ConnectionCount 会话当前连接数
func (h *Hub) ConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Close 关闭所有连接
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conns := range h.sessions {
		for conn := range conns {
			conn.close()
		}
	}
	h.sessions = make(map[string]map[*Connection]struct{})
}
