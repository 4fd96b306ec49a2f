package notification

import "time"

// Notification 推送给会话客户端的通知
type Notification struct {
	ID        string
	SessionID string
	Event     string
	Title     string
	Message   string
	Level     Level
	Data      any
	CreatedAt time.Time
}

// Level 通知级别
type Level int

const (
	// LevelInfo 信息
	LevelInfo Level = iota + 1
	// LevelWarning 警告
	LevelWarning
	// LevelError 错误
	LevelError
)

// String 级别名称
func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}
