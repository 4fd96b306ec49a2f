package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 环境变量名
const (
	EnvHTTPPort           = "RUTAN_HTTP_PORT"
	EnvDBPath             = "RUTAN_DB_PATH"
	EnvLLMModel           = "LLM_MODEL"
	EnvGroqAPIKey         = "GROQ_API_KEY"
	EnvGroqBaseURL        = "GROQ_BASE_URL"
	EnvOllamaBaseURL      = "OLLAMA_BASE_URL"
	EnvOllamaLocalModel   = "OLLAMA_LOCAL_MODEL"
	EnvOllamaVisionModel  = "OLLAMA_VISION_MODEL"
	EnvLLMTimeout         = "LLM_TIMEOUT"
	EnvVisionTimeout      = "VISION_TIMEOUT"
	EnvEmbeddingBaseURL   = "EMBEDDING_BASE_URL"
	EnvEmbeddingModel     = "EMBEDDING_MODEL"
	EnvEmbeddingAPIKey    = "EMBEDDING_API_KEY"
	EnvVectorBackend      = "VECTOR_BACKEND"
	EnvQdrantHost         = "QDRANT_HOST"
	EnvQdrantPort         = "QDRANT_PORT"
	EnvQdrantAPIKey       = "QDRANT_API_KEY"
	EnvQdrantCollection   = "QDRANT_COLLECTION"
	EnvSessionBackend     = "SESSION_BACKEND"
	EnvSessionTTL         = "SESSION_TTL"
	EnvSessionMaxHistory  = "SESSION_MAX_HISTORY"
	EnvHistoryTokenBudget = "HISTORY_TOKEN_BUDGET"
	EnvRecordFailedTurns  = "RECORD_FAILED_TURNS"
	EnvRedisURL           = "REDIS_URL"
	EnvUploadDir          = "UPLOAD_DIR"
	EnvUploadMaxBytes     = "UPLOAD_MAX_BYTES"
	EnvUploadRatePerMin   = "UPLOAD_RATE_PER_MIN"
	EnvRAGTimeout         = "RAG_TIMEOUT"
	EnvRAGMaxChunks       = "RAG_MAX_CHUNKS_PER_SESSION"
	EnvRAGRetrieveK       = "RAG_RETRIEVE_K"
	EnvRulesFile          = "RULES_FILE"
)

// 存储后端
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendQdrant = "qdrant"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	WebSocket WebSocketConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Vector    VectorConfig
	Session   SessionConfig
	Upload    UploadConfig
	RAG       RAGConfig
	Rules     RulesConfig
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort       string
	AllowedOrigins []string
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Path 为空时使用 <data dir>/rutan.db
	Path string
}

// WebSocketConfig WebSocket 配置
type WebSocketConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
}

// LLMConfig 模型提供方配置
type LLMConfig struct {
	// DefaultModel 请求未指定模型时使用的提示（smart/fast/local）
	DefaultModel     string
	GroqAPIKey       string
	GroqBaseURL      string
	OllamaBaseURL    string
	OllamaLocalModel string
	VisionModel      string
	Timeout          time.Duration
	VisionTimeout    time.Duration

	// 熔断参数
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	BreakerHalfOpenMax uint32
}

// EmbeddingConfig 向量化服务配置（OpenAI 兼容接口）
type EmbeddingConfig struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// VectorConfig 向量存储配置
type VectorConfig struct {
	// Backend sqlite（内嵌）或 qdrant（外部服务）
	Backend      string
	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
	Collection   string
}

// SessionConfig 会话存储配置
type SessionConfig struct {
	// Backend memory / sqlite / redis
	Backend            string
	TTL                time.Duration
	MaxHistory         int
	HistoryTokenBudget int
	RecordFailedTurns  bool
	RedisURL           string
}

// UploadConfig 文件上传配置
type UploadConfig struct {
	Dir           string
	MaxBytes      int64
	RatePerMinute int
}

// RAGConfig 检索配置
type RAGConfig struct {
	Timeout             time.Duration
	MaxChunksPerSession int
	ChunkSize           int
	ChunkOverlap        int
	RetrieveK           int
}

// RulesConfig 提取规则配置
type RulesConfig struct {
	// File 为空时使用内置规则表，不启动热加载
	File string
}

// NewConfig 创建配置
// 先加载可选的 .env 文件，再读取环境变量，未设置的使用默认值
func NewConfig() *Config {
	_ = godotenv.Load()

	ollama := getEnv(EnvOllamaBaseURL, "http://127.0.0.1:11434")
	dataDir := GetDataDir()

	return &Config{
		Server: ServerConfig{
			HTTPPort: normalizePort(getEnv(EnvHTTPPort, ":8000")),
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
		Database: DatabaseConfig{
			Path: getEnv(EnvDBPath, ""),
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		LLM: LLMConfig{
			DefaultModel:       getEnv(EnvLLMModel, "smart"),
			GroqAPIKey:         os.Getenv(EnvGroqAPIKey),
			GroqBaseURL:        getEnv(EnvGroqBaseURL, "https://api.groq.com/openai/v1"),
			OllamaBaseURL:      ollama,
			OllamaLocalModel:   getEnv(EnvOllamaLocalModel, "llama3.2:3b"),
			VisionModel:        getEnv(EnvOllamaVisionModel, "llava"),
			Timeout:            getEnvDuration(EnvLLMTimeout, 60*time.Second),
			VisionTimeout:      getEnvDuration(EnvVisionTimeout, 120*time.Second),
			BreakerMaxFailures: 3,
			BreakerOpenTimeout: 30 * time.Second,
			BreakerHalfOpenMax: 2,
		},
		Embedding: EmbeddingConfig{
			BaseURL: getEnv(EnvEmbeddingBaseURL, ollama),
			Model:   getEnv(EnvEmbeddingModel, "llama3.2:3b"),
			APIKey:  os.Getenv(EnvEmbeddingAPIKey),
			Timeout: 30 * time.Second,
		},
		Vector: VectorConfig{
			Backend:      strings.ToLower(getEnv(EnvVectorBackend, BackendSQLite)),
			QdrantHost:   getEnv(EnvQdrantHost, "localhost"),
			QdrantPort:   getEnvInt(EnvQdrantPort, 6334),
			QdrantAPIKey: os.Getenv(EnvQdrantAPIKey),
			Collection:   getEnv(EnvQdrantCollection, "trip_documents"),
		},
		Session: SessionConfig{
			Backend:            strings.ToLower(getEnv(EnvSessionBackend, BackendMemory)),
			TTL:                getEnvDuration(EnvSessionTTL, 24*time.Hour),
			MaxHistory:         getEnvInt(EnvSessionMaxHistory, 40),
			HistoryTokenBudget: getEnvInt(EnvHistoryTokenBudget, 6000),
			RecordFailedTurns:  getEnvBool(EnvRecordFailedTurns, false),
			RedisURL:           getEnv(EnvRedisURL, "redis://127.0.0.1:6379/0"),
		},
		Upload: UploadConfig{
			Dir:           getEnv(EnvUploadDir, filepath.Join(dataDir, "uploads")),
			MaxBytes:      int64(getEnvInt(EnvUploadMaxBytes, 20<<20)),
			RatePerMinute: getEnvInt(EnvUploadRatePerMin, 30),
		},
		RAG: RAGConfig{
			Timeout:             getEnvDuration(EnvRAGTimeout, 15*time.Second),
			MaxChunksPerSession: getEnvInt(EnvRAGMaxChunks, 500),
			ChunkSize:           2000,
			ChunkOverlap:        400,
			RetrieveK:           getEnvInt(EnvRAGRetrieveK, 3),
		},
		Rules: RulesConfig{
			File: os.Getenv(EnvRulesFile),
		},
	}
}

// DBPath 数据库文件路径
func (c *DatabaseConfig) DBPath() string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(GetDataDir(), "rutan.db")
}

// NewDatabaseConfig 创建数据库配置
func NewDatabaseConfig(cfg *Config) *DatabaseConfig { return &cfg.Database }

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig { return &cfg.Server }

// NewWebSocketConfig 创建 WebSocket 配置
func NewWebSocketConfig(cfg *Config) *WebSocketConfig { return &cfg.WebSocket }

// NewLLMConfig 创建模型配置
func NewLLMConfig(cfg *Config) *LLMConfig { return &cfg.LLM }

// NewEmbeddingConfig 创建向量化配置
func NewEmbeddingConfig(cfg *Config) *EmbeddingConfig { return &cfg.Embedding }

// NewVectorConfig 创建向量存储配置
func NewVectorConfig(cfg *Config) *VectorConfig { return &cfg.Vector }

// NewSessionConfig 创建会话配置
func NewSessionConfig(cfg *Config) *SessionConfig { return &cfg.Session }

// NewUploadConfig 创建上传配置
func NewUploadConfig(cfg *Config) *UploadConfig { return &cfg.Upload }

// NewRAGConfig 创建检索配置
func NewRAGConfig(cfg *Config) *RAGConfig { return &cfg.RAG }

// NewRulesConfig 创建规则配置
func NewRulesConfig(cfg *Config) *RulesConfig { return &cfg.Rules }

// normalizePort "8000" 补成 ":8000"
func normalizePort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func getEnv(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvDuration 同时接受 "90s" 这类时长和纯秒数
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
