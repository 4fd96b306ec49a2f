package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Danigallego24/RutaN/internal/domain/trip"
)

var _ trip.SessionRepository = (*SQLiteSessionRepository)(nil)

// SQLiteSessionRepository 会话持久化到 sqlite，整份会话以 JSON 存储
// 超过 TTL 未更新的会话视为不存在
type SQLiteSessionRepository struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLiteSessionRepository 创建 sqlite 会话仓储
func NewSQLiteSessionRepository(db *sql.DB, ttl time.Duration) (*SQLiteSessionRepository, error) {
	if err := initSessionTable(db); err != nil {
		return nil, err
	}
	return &SQLiteSessionRepository{db: db, ttl: ttl}, nil
}

func initSessionTable(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS trip_sessions (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trip_sessions_updated ON trip_sessions(updated_at);`)
	if err != nil {
		return fmt.Errorf("failed to create trip_sessions table: %w", err)
	}
	return nil
}

// Load 加载会话
func (r *SQLiteSessionRepository) Load(ctx context.Context, id string) (*trip.Session, error) {
	var data string
	var updatedAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT data, updated_at FROM trip_sessions WHERE id = ?`, id,
	).Scan(&data, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, trip.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if r.ttl > 0 && time.Since(time.Unix(updatedAt, 0)) > r.ttl {
		return nil, trip.ErrSessionNotFound
	}

	var s trip.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	normalizeSession(&s)
	return &s, nil
}

// Save 保存会话
func (r *SQLiteSessionRepository) Save(ctx context.Context, s *trip.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO trip_sessions (id, data, updated_at) VALUES (?, ?, ?)`,
		s.ID, string(data), s.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// PurgeExpired 删除过期会话，返回删除数量
func (r *SQLiteSessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	if r.ttl <= 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM trip_sessions WHERE updated_at < ?`,
		time.Now().Add(-r.ttl).Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}

// normalizeSession 反序列化后补齐空集合
func normalizeSession(s *trip.Session) {
	if s.History == nil {
		s.History = []trip.Message{}
	}
	if s.Pending == nil {
		s.Pending = map[string]any{}
	}
}
