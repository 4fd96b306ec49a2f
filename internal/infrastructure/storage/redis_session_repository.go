package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Danigallego24/RutaN/internal/domain/trip"
)

const redisSessionPrefix = "rutan:session:"

var _ trip.SessionRepository = (*RedisSessionRepository)(nil)

// RedisSessionRepository 会话存储在 redis，多实例共享
type RedisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient 解析 REDIS_URL 创建客户端，URL 无法解析时当作地址使用
func NewRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	return redis.NewClient(opt)
}

// NewRedisSessionRepository 创建 redis 会话仓储
func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl}
}

func redisSessionKey(id string) string {
	return redisSessionPrefix + id
}

// Load 加载会话，命中时刷新过期时间
func (r *RedisSessionRepository) Load(ctx context.Context, id string) (*trip.Session, error) {
	var data []byte
	var err error
	if r.ttl > 0 {
		data, err = r.rdb.GetEx(ctx, redisSessionKey(id), r.ttl).Bytes()
	} else {
		data, err = r.rdb.Get(ctx, redisSessionKey(id)).Bytes()
	}
	if errors.Is(err, redis.Nil) {
		return nil, trip.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session from redis: %w", err)
	}

	var s trip.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	normalizeSession(&s)
	return &s, nil
}

// Save 保存会话
func (r *RedisSessionRepository) Save(ctx context.Context, s *trip.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, redisSessionKey(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}
