package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	ResetDataDir()
	t.Cleanup(ResetDataDir)
	t.Setenv(EnvDataDir, "/tmp/rutan-test")
	for _, key := range []string{
		EnvHTTPPort, EnvLLMModel, EnvLLMTimeout, EnvVectorBackend, EnvSessionBackend,
		EnvSessionTTL, EnvUploadDir, EnvOllamaBaseURL, EnvEmbeddingBaseURL, EnvRecordFailedTurns,
	} {
		t.Setenv(key, "")
	}

	cfg := NewConfig()

	assert.Equal(t, ":8000", cfg.Server.HTTPPort)
	assert.Equal(t, "smart", cfg.LLM.DefaultModel)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 120*time.Second, cfg.LLM.VisionTimeout)
	assert.Equal(t, "http://127.0.0.1:11434", cfg.Embedding.BaseURL)
	assert.Equal(t, BackendSQLite, cfg.Vector.Backend)
	assert.Equal(t, "trip_documents", cfg.Vector.Collection)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 40, cfg.Session.MaxHistory)
	assert.False(t, cfg.Session.RecordFailedTurns)
	assert.Equal(t, "/tmp/rutan-test/uploads", cfg.Upload.Dir)
	assert.Equal(t, "/tmp/rutan-test/rutan.db", cfg.Database.DBPath())
	assert.Equal(t, 2000, cfg.RAG.ChunkSize)
	assert.Equal(t, 400, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 3, cfg.RAG.RetrieveK)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost:3000")
}

func TestNewConfig_EnvOverride(t *testing.T) {
	t.Setenv(EnvHTTPPort, "9000")
	t.Setenv(EnvLLMModel, "local")
	t.Setenv(EnvLLMTimeout, "5")
	t.Setenv(EnvRAGTimeout, "250ms")
	t.Setenv(EnvRAGRetrieveK, "6")
	t.Setenv(EnvVectorBackend, "QDRANT")
	t.Setenv(EnvSessionBackend, "redis")
	t.Setenv(EnvSessionMaxHistory, "10")
	t.Setenv(EnvRecordFailedTurns, "true")
	t.Setenv(EnvOllamaBaseURL, "http://ollama:11434")
	t.Setenv(EnvEmbeddingBaseURL, "")
	t.Setenv(EnvDBPath, "/data/x.db")

	cfg := NewConfig()

	assert.Equal(t, ":9000", cfg.Server.HTTPPort)
	assert.Equal(t, "local", cfg.LLM.DefaultModel)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.RAG.Timeout)
	assert.Equal(t, 6, cfg.RAG.RetrieveK)
	assert.Equal(t, BackendQdrant, cfg.Vector.Backend)
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, 10, cfg.Session.MaxHistory)
	assert.True(t, cfg.Session.RecordFailedTurns)
	assert.Equal(t, "http://ollama:11434", cfg.Embedding.BaseURL, "未设置时跟随 Ollama 地址")
	assert.Equal(t, "/data/x.db", cfg.Database.DBPath())
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	t.Setenv("RUTAN_TEST_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("RUTAN_TEST_DURATION", time.Minute))

	t.Setenv("RUTAN_TEST_DURATION", "-5s")
	assert.Equal(t, time.Minute, getEnvDuration("RUTAN_TEST_DURATION", time.Minute))
}
