package trip

import (
	"context"
	"errors"
)

// ErrSessionNotFound 会话不存在（或已过期）
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository 会话仓储接口
// 实现必须返回副本，调用方修改后通过 Save 写回
type SessionRepository interface {
	// Load 加载会话，不存在时返回 ErrSessionNotFound
	Load(ctx context.Context, id string) (*Session, error)
	// Save 保存会话（创建或覆盖）
	Save(ctx context.Context, session *Session) error
}
