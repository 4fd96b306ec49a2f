package rag

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Danigallego24/RutaN/internal/domain/events"
	domainRAG "github.com/Danigallego24/RutaN/internal/domain/rag"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

// StatusAnalyzed 上传成功状态
const StatusAnalyzed = "analizado_exitosamente"

// UploadResult 上传接口返回结构
type UploadResult struct {
	OK           bool   `json:"ok"`
	Filename     string `json:"filename"`
	FileType     string `json:"file_type"`
	Message      string `json:"message"`
	Analysis     string `json:"analysis"`
	Preview      string `json:"preview"`
	Status       string `json:"status"`
	ReadyForChat bool   `json:"ready_for_chat"`
	Chunks       int    `json:"chunks"`
	Indexed      bool   `json:"indexed"`
}

// UploadService 上传用例：分析、写入索引、发布事件
type UploadService struct {
	analyzer *Analyzer
	index    *Index
	eventBus events.EventBus
	logger   *slog.Logger
}

// NewUploadService 创建上传服务
func NewUploadService(analyzer *Analyzer, index *Index, eventBus events.EventBus) *UploadService {
	return &UploadService{
		analyzer: analyzer,
		index:    index,
		eventBus: eventBus,
		logger:   log.NewModuleLogger("rag", "upload_service"),
	}
}

// Upload 分析文件并写入会话索引
// 分析失败返回错误；写入索引失败只记录日志，分析结果照常返回
func (s *UploadService) Upload(ctx context.Context, sessionID string, upload domainRAG.Upload, modelHint string) (*UploadResult, error) {
	rec, err := s.analyzer.Analyze(ctx, upload, sessionID, modelHint)
	if err != nil {
		return nil, err
	}

	chunks, err := s.index.Add(ctx, rec, sessionID)
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, ErrSessionIndexFull) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "Failed to index analysis",
			"session_id", sessionID,
			"filename", rec.Filename,
			"error", err,
		)
	}

	indexed := err == nil && chunks > 0
	if indexed && s.eventBus != nil {
		s.eventBus.Publish(&events.FileIndexedEvent{
			SessionID: sessionID,
			Filename:  rec.Filename,
			FileType:  rec.FileType,
			Chunks:    chunks,
			EventTime: time.Now(),
		})
	}

	return &UploadResult{
		OK:           true,
		Filename:     rec.Filename,
		FileType:     rec.FileType,
		Message:      "✅ " + rec.FileType + " analizado correctamente. Información lista para usar en el itinerario.",
		Analysis:     rec.AnalysisText,
		Preview:      rec.Preview,
		Status:       StatusAnalyzed,
		ReadyForChat: true,
		Chunks:       chunks,
		Indexed:      indexed,
	}, nil
}
