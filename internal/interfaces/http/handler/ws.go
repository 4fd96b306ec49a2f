package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"

	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
	"github.com/Danigallego24/RutaN/internal/infrastructure/websocket"
)

// EventsHandler 会话事件推送
type EventsHandler struct {
	hub      *websocket.Hub
	upgrader gws.Upgrader
	logger   *slog.Logger
}

// NewEventsHandler 创建事件推送处理器
func NewEventsHandler(hub *websocket.Hub, serverCfg *config.ServerConfig, wsCfg *config.WebSocketConfig) *EventsHandler {
	upgrader := websocket.NewUpgrader(serverCfg.AllowedOrigins)
	if wsCfg.ReadBufferSize > 0 {
		upgrader.ReadBufferSize = wsCfg.ReadBufferSize
	}
	if wsCfg.WriteBufferSize > 0 {
		upgrader.WriteBufferSize = wsCfg.WriteBufferSize
	}
	return &EventsHandler{
		hub:      hub,
		upgrader: upgrader,
		logger:   log.NewModuleLogger("http", "events_handler"),
	}
}

// SessionEvents 升级为 WebSocket 并推送该会话的事件
// @Summary 会话事件 WebSocket
// @Tags events
// @Param session_id path string true "会话 ID"
// @Success 101 {string} string "Switching Protocols"
// @Router /ws/sessions/{session_id} [get]
func (h *EventsHandler) SessionEvents(c *gin.Context) {
	sessionID := c.Param("session_id")
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已经写回错误响应
		h.logger.Warn("WebSocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}

	h.logger.Debug("WebSocket connected", "session_id", sessionID)
	h.hub.Serve(ws, sessionID)
	h.logger.Debug("WebSocket disconnected", "session_id", sessionID)
}
