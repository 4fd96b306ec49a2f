package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Danigallego24/RutaN/internal/application/notification"
	"github.com/Danigallego24/RutaN/internal/interfaces/http/response"
)

// NotificationHandler 通知处理器
type NotificationHandler struct {
	service *notification.Service
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(service *notification.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// Recent 会话最近的通知
// @Summary 最近通知
// @Description 会话事件（文件已索引、行程已更新、历史已重置）
// @Tags notifications
// @Produce json
// @Param session_id path string true "会话 ID"
// @Success 200 {object} response.Response{data=[]notification.NotificationDTO}
// @Failure 500 {object} response.ErrorResponse
// @Router /api/notifications/{session_id} [get]
func (h *NotificationHandler) Recent(c *gin.Context) {
	list, err := h.service.Recent(c.Param("session_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "读取通知失败")
		return
	}
	response.Success(c, list)
}
