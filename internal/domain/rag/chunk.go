package rag

import "time"

// ChunkMetadata 片段元数据，session_id 是唯一的隔离维度
type ChunkMetadata struct {
	Source    string `json:"source"`
	Type      string `json:"type"`
	FileType  string `json:"file_type"`
	SessionID string `json:"session_id"`
}

// Chunk 已索引的文本片段，写入后不再修改
type Chunk struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Metadata  ChunkMetadata `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}

// ScoredChunk 带相似度分数的检索结果
type ScoredChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float32 `json:"score"`
}
