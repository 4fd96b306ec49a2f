package storage

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Danigallego24/RutaN/internal/domain/trip"
)

var _ trip.SessionRepository = (*MemorySessionRepository)(nil)

// MemorySessionRepository 进程内会话仓储（默认后端）
// 每次访问都会刷新过期时间，读写都做深拷贝
type MemorySessionRepository struct {
	cache *cache.Cache
}

// NewMemorySessionRepository 创建内存会话仓储，ttl <= 0 表示永不过期
func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = ttl / 4
		if cleanup < time.Minute {
			cleanup = time.Minute
		}
	}
	return &MemorySessionRepository{cache: cache.New(expiration, cleanup)}
}

// Load 加载会话副本
func (r *MemorySessionRepository) Load(_ context.Context, id string) (*trip.Session, error) {
	if x, found := r.cache.Get(id); found {
		s := x.(*trip.Session)
		// 滑动过期
		r.cache.SetDefault(id, s)
		return s.Clone(), nil
	}
	return nil, trip.ErrSessionNotFound
}

// Save 保存会话副本
func (r *MemorySessionRepository) Save(_ context.Context, s *trip.Session) error {
	r.cache.SetDefault(s.ID, s.Clone())
	return nil
}

// Len 当前会话数
func (r *MemorySessionRepository) Len() int {
	return r.cache.ItemCount()
}
