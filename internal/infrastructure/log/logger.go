package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Danigallego24/RutaN/internal/infrastructure/log/handler"
)

// 全局 logger 实例
var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
	debugMode     bool
	logFile       *os.File
)

// Init 初始化日志系统
// 输出文件打不开时回退到 stdout，并返回错误供调用方提示
func Init(cfg *Config) error {
	if cfg == nil {
		cfg = NewConfigFromEnv()
	}

	out, file, openErr := openOutput(cfg)

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var logHandler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		logHandler = handler.NewJSONHandler(out, opts)
	} else {
		logHandler = handler.NewConsoleHandler(out, opts)
	}

	logger := slog.New(logHandler.WithAttrs([]slog.Attr{
		slog.String("service", ServiceName),
	}))

	mu.Lock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
	defaultLogger = logger
	debugMode = strings.ToLower(cfg.Level) == "debug"
	mu.Unlock()

	slog.SetDefault(logger)
	return openErr
}

// openOutput 打开日志输出目标
func openOutput(cfg *Config) (io.Writer, *os.File, error) {
	if path, ok := cfg.outputPath(); ok {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return os.Stdout, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return os.Stdout, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, f, nil
	}
	if strings.ToLower(cfg.Output) == "stderr" {
		return os.Stderr, nil, nil
	}
	return os.Stdout, nil, nil
}

// SetLogger 替换全局 logger（测试中使用）
func SetLogger(logger *slog.Logger) {
	mu.Lock()
	defaultLogger = logger
	mu.Unlock()
}

// GetLogger 获取默认 logger
func GetLogger() *slog.Logger {
	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()
	if logger == nil {
		// 未初始化，使用默认配置
		_ = Init(nil)
		mu.RLock()
		logger = defaultLogger
		mu.RUnlock()
	}
	return logger
}

// With 创建带有额外字段的 logger
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

// NewModuleLogger 为特定模块创建 logger
func NewModuleLogger(module, component string) *slog.Logger {
	return GetLogger().With(
		slog.String("module", module),
		slog.String("component", component),
	)
}

// IsDebugMode 检查是否为调试模式
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debugMode
}

// parseLevel 解析日志级别
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
