package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Danigallego24/RutaN/internal/application/chat"
)

// ModelHandler 模型检查处理器
type ModelHandler struct {
	service *chat.Service
}

// NewModelHandler 创建模型检查处理器
func NewModelHandler(service *chat.Service) *ModelHandler {
	return &ModelHandler{service: service}
}

// Check 检查模型提示能否使用
// @Summary 模型检查
// @Description 只解析模型提示和配置，不调用模型
// @Tags models
// @Produce json
// @Param model query string false "smart|fast|local"
// @Success 200 {object} chat.ModelCheckResult
// @Router /api/models/check [get]
func (h *ModelHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ModelCheck(c.Query("model")))
}
