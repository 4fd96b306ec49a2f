package log

import (
	"context"
	"log/slog"
)

type ctxKey string

// 上下文键定义
const (
	// RequestContextID HTTP 请求 ID
	RequestContextID ctxKey = "request_id"

	// SessionContextID 会话 ID
	SessionContextID ctxKey = "session_id"
)

// WithRequestID 在上下文中添加请求 ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestContextID, requestID)
}

// WithSessionID 在上下文中添加会话 ID
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionContextID, sessionID)
}

// RequestIDFromContext 读取请求 ID
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(RequestContextID).(string)
	return v
}

// AttrsFromContext 从上下文中提取日志字段
func AttrsFromContext(ctx context.Context) []any {
	var attrs []any
	if v, ok := ctx.Value(RequestContextID).(string); ok && v != "" {
		attrs = append(attrs, slog.String(string(RequestContextID), v))
	}
	if v, ok := ctx.Value(SessionContextID).(string); ok && v != "" {
		attrs = append(attrs, slog.String(string(SessionContextID), v))
	}
	return attrs
}

// FromContext 返回带上下文字段的 logger
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if attrs := AttrsFromContext(ctx); len(attrs) > 0 {
		return logger.With(attrs...)
	}
	return logger
}
