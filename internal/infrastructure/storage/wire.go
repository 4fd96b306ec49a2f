package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/wire"

	"github.com/Danigallego24/RutaN/internal/domain/trip"
	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,                // 提供数据库连接
	ProvideSessionRepository, // 按配置选择会话后端
)

// ProvideSessionRepository 按 SESSION_BACKEND 选择会话仓储
func ProvideSessionRepository(cfg *config.SessionConfig, db *sql.DB) (trip.SessionRepository, func(), error) {
	logger := log.NewModuleLogger("storage", "session")

	switch cfg.Backend {
	case config.BackendMemory, "":
		logger.Info("Using in-memory session store", "ttl", cfg.TTL)
		return NewMemorySessionRepository(cfg.TTL), func() {}, nil
	case config.BackendSQLite:
		repo, err := NewSQLiteSessionRepository(db, cfg.TTL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using sqlite session store", "ttl", cfg.TTL)
		return repo, func() {}, nil
	case config.BackendRedis:
		rdb := NewRedisClient(cfg.RedisURL)
		logger.Info("Using redis session store", "addr", rdb.Options().Addr, "ttl", cfg.TTL)
		return NewRedisSessionRepository(rdb, cfg.TTL), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
