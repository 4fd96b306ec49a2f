package rag

import "context"

// VectorStore 向量存储接口
// 所有查询都必须在存储内部按 session_id 过滤
type VectorStore interface {
	// Upsert 写入片段及其向量，chunks 与 vectors 一一对应
	Upsert(ctx context.Context, chunks []*Chunk, vectors [][]float32) error
	// Search 在指定会话内按相似度降序返回最多 limit 条
	Search(ctx context.Context, sessionID string, vector []float32, limit int) ([]*ScoredChunk, error)
	// Count 会话内的片段数量
	Count(ctx context.Context, sessionID string) (int, error)
}

// Embedder 文本向量化接口
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
