package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Danigallego24/RutaN/internal/application/session"
	domainRAG "github.com/Danigallego24/RutaN/internal/domain/rag"
	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

const (
	// DefaultRetrieveK Retrieve 未指定 k 时的条数
	DefaultRetrieveK = 5
	// contextSnippetLimit 上下文中每个片段的最大字符数
	contextSnippetLimit = 800
)

var contextRule = strings.Repeat("=", 60)

// Index 检索索引：分割、向量化、写入，以及按会话检索
type Index struct {
	store     domainRAG.VectorStore
	embedder  domainRAG.Embedder
	splitter  *RecursiveSplitter
	maxChunks int
	adds      *session.KeyedMutex
	logger    *slog.Logger
}

// NewIndex 创建检索索引
func NewIndex(store domainRAG.VectorStore, embedder domainRAG.Embedder, cfg *config.RAGConfig) *Index {
	return &Index{
		store:     store,
		embedder:  embedder,
		splitter:  NewRecursiveSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		maxChunks: cfg.MaxChunksPerSession,
		adds:      session.NewKeyedMutex(),
		logger:    log.NewModuleLogger("rag", "index"),
	}
}

// Add 把分析文本写入索引，返回片段数
// 同一会话的写入串行执行，计数检查与写入之间不会插入其他上传
func (i *Index) Add(ctx context.Context, rec *domainRAG.AnalysisRecord, sessionID string) (int, error) {
	texts := i.splitter.Split(rec.AnalysisText)
	if len(texts) == 0 {
		return 0, nil
	}

	unlock := i.adds.Lock(sessionID)
	defer unlock()

	if i.maxChunks > 0 {
		existing, err := i.store.Count(ctx, sessionID)
		if err != nil {
			return 0, fmt.Errorf("failed to count session chunks: %w", err)
		}
		if existing+len(texts) > i.maxChunks {
			i.logger.Warn("Session index is full",
				"session_id", sessionID,
				"existing", existing,
				"incoming", len(texts),
				"limit", i.maxChunks,
			)
			return 0, ErrSessionIndexFull
		}
	}

	vectors, err := i.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed texts: %w", err)
	}

	now := time.Now()
	chunks := make([]*domainRAG.Chunk, len(texts))
	for n, text := range texts {
		chunks[n] = &domainRAG.Chunk{
			ID:   uuid.New().String(),
			Text: text,
			Metadata: domainRAG.ChunkMetadata{
				Source:    rec.Filename,
				Type:      rec.Extension,
				FileType:  rec.FileType,
				SessionID: sessionID,
			},
			CreatedAt: now,
		}
	}

	if err := i.store.Upsert(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("failed to upsert chunks: %w", err)
	}

	i.logger.Info("File indexed",
		"session_id", sessionID,
		"source", rec.Filename,
		"chunks", len(chunks),
	)
	return len(chunks), nil
}

// Search 会话内相似度检索，按分数降序
func (i *Index) Search(ctx context.Context, query, sessionID string, k int) ([]*domainRAG.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if k <= 0 {
		k = DefaultRetrieveK
	}

	vectors, err := i.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	hits, err := i.store.Search(ctx, sessionID, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	// 存储已按会话过滤，这里再兜一次
	out := hits[:0]
	for _, h := range hits {
		if h.Chunk != nil && h.Chunk.Metadata.SessionID == sessionID {
			out = append(out, h)
		}
	}
	return out, nil
}

// Retrieve 检索并格式化为提示词上下文，无结果时返回空串
func (i *Index) Retrieve(ctx context.Context, query, sessionID string, k int) (string, error) {
	hits, err := i.Search(ctx, query, sessionID, k)
	if err != nil {
		return "", err
	}
	return FormatContext(hits), nil
}

// FormatContext 格式化检索结果
func FormatContext(hits []*domainRAG.ScoredChunk) string {
	if len(hits) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\n📎 INFORMACIÓN DE ARCHIVOS ADJUNTOS:\n")
	sb.WriteString(contextRule)
	sb.WriteString("\n")

	for n, h := range hits {
		fileType := h.Chunk.Metadata.FileType
		if fileType == "" {
			fileType = "unknown"
		}
		source := h.Chunk.Metadata.Source
		if source == "" {
			source = "desconocido"
		}
		fmt.Fprintf(&sb, "\n[%d] %s - %s:\n%s\n", n+1, fileType, source,
			domainRAG.Truncate(h.Chunk.Text, contextSnippetLimit))
	}

	sb.WriteString("\n")
	sb.WriteString(contextRule)
	sb.WriteString("\n")
	return sb.String()
}
