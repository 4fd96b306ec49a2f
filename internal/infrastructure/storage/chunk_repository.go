package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Danigallego24/RutaN/internal/domain/rag"
)

var _ rag.VectorStore = (*ChunkRepository)(nil)

// ChunkRepository 内嵌向量存储：片段和向量存在同一张 sqlite 表里
// 检索时先按 session_id 过滤，再在会话内做余弦相似度排序
type ChunkRepository struct {
	db *sql.DB
}

// NewChunkRepository 创建片段仓储
func NewChunkRepository(db *sql.DB) (*ChunkRepository, error) {
	if err := initChunkTable(db); err != nil {
		return nil, err
	}
	return &ChunkRepository{db: db}, nil
}

func initChunkTable(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS rag_chunks (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		text TEXT NOT NULL,
		source TEXT NOT NULL,
		type TEXT NOT NULL,
		file_type TEXT NOT NULL,
		embedding BLOB NOT NULL,
		dim INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rag_chunks_session ON rag_chunks(session_id);`)
	if err != nil {
		return fmt.Errorf("failed to create rag_chunks table: %w", err)
	}
	return nil
}

// Upsert 批量写入片段，同一事务内完成
// 片段只写一次，重复 ID 会报错
func (r *ChunkRepository) Upsert(ctx context.Context, chunks []*rag.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rag_chunks (
			id, session_id, text, source, type, file_type, embedding, dim, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		_, err := stmt.ExecContext(ctx,
			c.ID,
			c.Metadata.SessionID,
			c.Text,
			c.Metadata.Source,
			c.Metadata.Type,
			c.Metadata.FileType,
			encodeVector(vectors[i]),
			len(vectors[i]),
			createdAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}
	return nil
}

// Search 在会话内按余弦相似度降序返回前 limit 条
func (r *ChunkRepository) Search(ctx context.Context, sessionID string, vector []float32, limit int) ([]*rag.ScoredChunk, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, source, type, file_type, embedding, created_at
		FROM rag_chunks
		WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*rag.ScoredChunk
	for rows.Next() {
		var (
			c         rag.Chunk
			blob      []byte
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &c.Text, &c.Metadata.Source, &c.Metadata.Type, &c.Metadata.FileType, &blob, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		c.Metadata.SessionID = sessionID
		c.CreatedAt = time.UnixMilli(createdAt)

		stored := decodeVector(blob)
		if len(stored) != len(vector) {
			// 维度不同（换过 embedding 模型）的旧片段不参与排序
			continue
		}
		results = append(results, &rag.ScoredChunk{
			Chunk: &c,
			Score: cosineSimilarity(vector, stored),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunks: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count 会话内的片段数量
func (r *ChunkRepository) Count(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rag_chunks WHERE session_id = ?`, sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// encodeVector float32 小端序编码
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
