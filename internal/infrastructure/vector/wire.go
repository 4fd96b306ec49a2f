package vector

import (
	"database/sql"
	"fmt"

	"github.com/google/wire"

	"github.com/Danigallego24/RutaN/internal/domain/rag"
	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
	"github.com/Danigallego24/RutaN/internal/infrastructure/storage"
)

// ProviderSet 向量存储 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideVectorStore,
)

// ProvideVectorStore 按 VECTOR_BACKEND 选择向量存储
func ProvideVectorStore(cfg *config.VectorConfig, db *sql.DB) (rag.VectorStore, func(), error) {
	logger := log.NewModuleLogger("vector", "provider")

	switch cfg.Backend {
	case config.BackendSQLite, "":
		store, err := storage.NewChunkRepository(db)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using embedded sqlite vector store")
		return store, func() {}, nil
	case config.BackendQdrant:
		store, cleanup, err := NewQdrantStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using qdrant vector store",
			"host", cfg.QdrantHost,
			"port", cfg.QdrantPort,
			"collection", cfg.Collection,
		)
		return store, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector backend %q", cfg.Backend)
	}
}
