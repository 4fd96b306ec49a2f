package vector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/Danigallego24/RutaN/internal/domain/rag"
	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

// payload 字段名
const (
	fieldText      = "text"
	fieldSource    = "source"
	fieldType      = "type"
	fieldFileType  = "file_type"
	fieldSessionID = "session_id"
	fieldCreatedAt = "created_at"
)

var _ rag.VectorStore = (*QdrantStore)(nil)

// QdrantStore 外部 Qdrant 服务上的向量存储
// 集合在第一次写入时按向量维度创建，session_id 建 keyword 索引
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	logger     *slog.Logger

	mu    sync.Mutex
	ready bool
}

// NewQdrantStore 连接 Qdrant（gRPC）
func NewQdrantStore(cfg *config.VectorConfig) (*QdrantStore, func(), error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		APIKey: cfg.QdrantAPIKey,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	s := &QdrantStore{
		client:     client,
		collection: cfg.Collection,
		logger:     log.NewModuleLogger("vector", "qdrant"),
	}
	return s, func() { _ = client.Close() }, nil
}

// ensureCollection 集合不存在时创建
func (s *QdrantStore) ensureCollection(ctx context.Context, dim int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if !exists {
		err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dim),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
		}

		_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: s.collection,
			FieldName:      fieldSessionID,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create session_id index: %w", err)
		}

		s.logger.Info("Qdrant collection created",
			"collection", s.collection,
			"dimension", dim,
		)
	}

	s.ready = true
	return nil
}

// collectionExists 检索前判断集合是否存在，不存在时视为空
func (s *QdrantStore) collectionExists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()
	if ready {
		return true, nil
	}
	return s.client.CollectionExists(ctx, s.collection)
}

// Upsert 写入片段
func (s *QdrantStore) Upsert(ctx context.Context, chunks []*rag.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         buildPoints(chunks, vectors),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}
	return nil
}

// Search 会话内相似度检索，过滤在 Qdrant 查询内部完成
func (s *QdrantStore) Search(ctx context.Context, sessionID string, vector []float32, limit int) ([]*rag.ScoredChunk, error) {
	if limit <= 0 {
		return nil, nil
	}
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return nil, nil
	}

	n := uint64(limit)
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &n,
		Filter:         sessionFilter(sessionID),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query qdrant: %w", err)
	}

	results := make([]*rag.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		c := chunkFromPayload(hit.GetId().GetUuid(), hit.GetPayload())
		if c == nil || c.Metadata.SessionID != sessionID {
			continue
		}
		results = append(results, &rag.ScoredChunk{Chunk: c, Score: hit.GetScore()})
	}
	return results, nil
}

// Count 会话内的片段数量
func (s *QdrantStore) Count(ctx context.Context, sessionID string) (int, error) {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return 0, nil
	}

	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Filter:         sessionFilter(sessionID),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(n), nil
}

// sessionFilter 按 session_id 精确匹配
func sessionFilter(sessionID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(fieldSessionID, sessionID),
		},
	}
}

// buildPoints 构建 Qdrant 点
func buildPoints(chunks []*rag.Chunk, vectors [][]float32) []*qdrant.PointStruct {
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(c.ID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				fieldText:      c.Text,
				fieldSource:    c.Metadata.Source,
				fieldType:      c.Metadata.Type,
				fieldFileType:  c.Metadata.FileType,
				fieldSessionID: c.Metadata.SessionID,
				fieldCreatedAt: createdAt.UnixMilli(),
			}),
		}
	}
	return points
}

// chunkFromPayload 从 payload 还原片段
func chunkFromPayload(id string, payload map[string]*qdrant.Value) *rag.Chunk {
	if payload == nil {
		return nil
	}
	str := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}

	c := &rag.Chunk{
		ID:   id,
		Text: str(fieldText),
		Metadata: rag.ChunkMetadata{
			Source:    str(fieldSource),
			Type:      str(fieldType),
			FileType:  str(fieldFileType),
			SessionID: str(fieldSessionID),
		},
	}
	if v, ok := payload[fieldCreatedAt]; ok {
		c.CreatedAt = time.UnixMilli(v.GetIntegerValue())
	}
	return c
}
