package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Danigallego24/RutaN/internal/application/chat"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
	"github.com/Danigallego24/RutaN/internal/interfaces/http/response"
)

// maxChatBody 对话请求体上限
const maxChatBody = 1 << 20

// ChatHandler 对话处理器
type ChatHandler struct {
	service *chat.Service
	logger  *slog.Logger
}

// NewChatHandler 创建对话处理器
func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  log.NewModuleLogger("http", "chat_handler"),
	}
}

// GenerateBody 对话请求体
// message/extra_info、style/difficulty、model/model_name 互为别名，duration 可以是数字
type GenerateBody struct {
	SessionID   string `json:"session_id" example:"user_1"`
	Message     string `json:"message" example:"Quiero un viaje a Sevilla de 5 días, estilo relax"`
	ExtraInfo   string `json:"extra_info"`
	Destination string `json:"destination"`
	Duration    any    `json:"duration" swaggertype:"string"`
	Style       string `json:"style"`
	Difficulty  string `json:"difficulty"`
	Model       string `json:"model" example:"smart"`
	ModelName   string `json:"model_name"`
}

// Generate 处理一轮对话
// @Summary 对话生成
// @Description 返回 {es_itinerario:false, mensaje_chat} 或 {es_itinerario:true, titulo, resumen, dias}
// @Tags chat
// @Accept json
// @Produce json
// @Param body body GenerateBody true "对话请求"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api/chat/generate [post]
func (h *ChatHandler) Generate(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxChatBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	req := parseGenerateBody(raw)
	resp, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		log.FromContext(c.Request.Context(), h.logger).Error("Generate failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// parseGenerateBody 非 JSON 对象的请求体整体当作消息
func parseGenerateBody(raw []byte) *chat.GenerateRequest {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return &chat.GenerateRequest{
			SessionID: chat.DefaultSessionID,
			Message:   strings.ToValidUTF8(string(raw), ""),
		}
	}

	sessionID := firstString(payload, "session_id")
	if sessionID == "" {
		sessionID = chat.DefaultSessionID
	}
	return &chat.GenerateRequest{
		SessionID:   sessionID,
		Message:     firstString(payload, "extra_info", "message"),
		Destination: firstString(payload, "destination"),
		Duration:    durationField(payload["duration"]),
		Style:       firstString(payload, "style", "difficulty"),
		Model:       firstString(payload, "model", "model_name"),
	}
}

// firstString 按顺序取第一个非空字符串字段
func firstString(payload map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := payload[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func durationField(v any) string {
	switch d := v.(type) {
	case string:
		return d
	case float64:
		return strconv.FormatFloat(d, 'f', -1, 64)
	default:
		return ""
	}
}

// ResetBody 重置历史请求体
type ResetBody struct {
	SessionID string `json:"session_id" example:"user_1"`
}

// Reset 清空会话历史（保留记忆和行程）
// @Summary 重置会话历史
// @Tags chat
// @Accept json
// @Produce json
// @Param body body ResetBody false "会话"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /api/chat/reset [post]
func (h *ChatHandler) Reset(c *gin.Context) {
	var body ResetBody
	_ = c.ShouldBindJSON(&body)
	if body.SessionID == "" {
		body.SessionID = chat.DefaultSessionID
	}

	if err := h.service.ResetHistory(c.Request.Context(), body.SessionID); err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeInternal, "重置失败", err.Error())
		return
	}
	response.Success(c, gin.H{"session_id": body.SessionID})
}

// Snapshot 会话状态
// @Summary 会话快照
// @Tags chat
// @Produce json
// @Param session_id path string true "会话 ID"
// @Success 200 {object} response.Response{data=chat.SessionSnapshot}
// @Failure 500 {object} response.ErrorResponse
// @Router /api/chat/sessions/{session_id} [get]
func (h *ChatHandler) Snapshot(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeInternal, "读取会话失败", err.Error())
		return
	}
	response.Success(c, snap)
}
