package notification

import (
	"time"

	appNotification "github.com/Danigallego24/RutaN/internal/application/notification"
	"github.com/Danigallego24/RutaN/internal/domain/notification"
	"github.com/Danigallego24/RutaN/internal/infrastructure/websocket"
)

// message WebSocket 推送格式
type message struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Level     string `json:"level"`
	Data      any    `json:"data,omitempty"`
	CreatedAt string `json:"created_at"`
}

// WebSocketPusher WebSocket 推送实现
type WebSocketPusher struct {
	hub *websocket.Hub
}

// NewWebSocketPusher 创建 WebSocket 推送器
func NewWebSocketPusher(hub *websocket.Hub) *WebSocketPusher {
	return &WebSocketPusher{hub: hub}
}

// PushToSession 推送到会话的所有连接
func (p *WebSocketPusher) PushToSession(sessionID string, n *notification.Notification) error {
	return p.hub.BroadcastToSession(sessionID, message{
		ID:        n.ID,
		Type:      n.Event,
		SessionID: n.SessionID,
		Title:     n.Title,
		Message:   n.Message,
		Level:     n.Level.String(),
		Data:      n.Data,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	})
}

var _ appNotification.Pusher = (*WebSocketPusher)(nil)
