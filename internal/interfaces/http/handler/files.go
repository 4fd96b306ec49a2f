package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Danigallego24/RutaN/internal/application/chat"
	appRAG "github.com/Danigallego24/RutaN/internal/application/rag"
	domainRAG "github.com/Danigallego24/RutaN/internal/domain/rag"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
	"github.com/Danigallego24/RutaN/internal/interfaces/http/response"
)

// maxSearchLimit 检索条数上限
const maxSearchLimit = 20

// FileHandler 文件上传和检索处理器
type FileHandler struct {
	uploads *appRAG.UploadService
	index   *appRAG.Index
	logger  *slog.Logger
}

// NewFileHandler 创建文件处理器
func NewFileHandler(uploads *appRAG.UploadService, index *appRAG.Index) *FileHandler {
	return &FileHandler{
		uploads: uploads,
		index:   index,
		logger:  log.NewModuleLogger("http", "file_handler"),
	}
}

// Upload 上传并立即分析文件
// @Summary 上传文件
// @Description 支持 PDF、TXT、MD、JSON、CSV、JPG、PNG、WEBP，分析结果写入会话索引
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "文件"
// @Param session_id formData string false "会话 ID"
// @Param model formData string false "模型提示 smart|fast|local"
// @Success 200 {object} appRAG.UploadResult
// @Failure 400 {object} response.UploadError
// @Failure 413 {object} response.UploadError
// @Failure 429 {object} response.UploadError
// @Router /api/files/upload [post]
func (h *FileHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Upload(c, http.StatusBadRequest, "No se ha recibido ningún archivo")
		return
	}
	sessionID := c.PostForm("session_id")
	if sessionID == "" {
		sessionID = chat.DefaultSessionID
	}

	f, err := fh.Open()
	if err != nil {
		response.Upload(c, http.StatusBadRequest, err.Error())
		return
	}
	defer func() { _ = f.Close() }()

	ctx := log.WithSessionID(c.Request.Context(), sessionID)
	result, err := h.uploads.Upload(ctx, sessionID, domainRAG.Upload{
		Filename: fh.Filename,
		Content:  f,
	}, c.PostForm("model"))
	if err != nil {
		log.FromContext(ctx, h.logger).Warn("Upload failed",
			"filename", fh.Filename,
			"error", err,
		)
		status := http.StatusBadRequest
		if errors.Is(err, appRAG.ErrFileTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		response.Upload(c, status, err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchBody 检索请求体
type SearchBody struct {
	SessionID string `json:"session_id" example:"user_1"`
	Query     string `json:"query" binding:"required" example:"vuelo"`
	Limit     int    `json:"limit" example:"5"`
}

// SearchHit 检索结果
type SearchHit struct {
	Text     string  `json:"text"`
	Source   string  `json:"source"`
	Type     string  `json:"type"`
	FileType string  `json:"file_type"`
	Score    float32 `json:"score"`
}

// Search 会话内检索已索引的文件片段
// @Summary 检索文件片段
// @Tags files
// @Accept json
// @Produce json
// @Param body body SearchBody true "检索请求"
// @Success 200 {object} response.Response{data=[]SearchHit}
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/files/search [post]
func (h *FileHandler) Search(c *gin.Context) {
	var body SearchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeInvalidParams, "参数错误", err.Error())
		return
	}
	if body.SessionID == "" {
		body.SessionID = chat.DefaultSessionID
	}
	if body.Limit <= 0 {
		body.Limit = appRAG.DefaultRetrieveK
	}
	if body.Limit > maxSearchLimit {
		body.Limit = maxSearchLimit
	}

	hits, err := h.index.Search(c.Request.Context(), body.Query, body.SessionID, body.Limit)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeInternal, "检索失败", err.Error())
		return
	}

	out := make([]SearchHit, 0, len(hits))
	for _, hit := range hits {
		out = append(out, SearchHit{
			Text:     hit.Chunk.Text,
			Source:   hit.Chunk.Metadata.Source,
			Type:     hit.Chunk.Metadata.Type,
			FileType: hit.Chunk.Metadata.FileType,
			Score:    hit.Score,
		})
	}
	response.Success(c, out)
}
