package handler

import (
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

// DebugEcho 原样返回请求体和长度，用于排查前端编码问题
// @Summary 请求体回显
// @Tags debug
// @Accept plain
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/debug [post]
func DebugEcho(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	text := string(raw)
	if !utf8.Valid(raw) {
		text = fmt.Sprintf("%q", raw)
	}
	c.JSON(http.StatusOK, gin.H{"raw": text, "length": len(raw)})
}
