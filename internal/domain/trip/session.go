package trip

import (
	"strings"
	"time"
)

// Role 对话角色
type Role string

const (
	// RoleUser 用户消息
	RoleUser Role = "user"
	// RoleAssistant 助手消息
	RoleAssistant Role = "assistant"
)

// Message 对话历史中的一条消息
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TripMemory 旅行记忆（目的地、天数、风格）
// 跨轮次累积，只有非空值才会写入
type TripMemory struct {
	Destination string `json:"destination"`
	Duration    string `json:"duration"`
	Style       string `json:"style"`
}

// Merge 合并新的记忆字段，空值不会覆盖已有值
func (m TripMemory) Merge(update TripMemory) TripMemory {
	if v := strings.TrimSpace(update.Destination); v != "" {
		m.Destination = v
	}
	if v := strings.TrimSpace(update.Duration); v != "" {
		m.Duration = v
	}
	if v := strings.TrimSpace(update.Style); v != "" {
		m.Style = v
	}
	return m
}

// Fill 只填充仍为空的字段，已有值保持不变
func (m TripMemory) Fill(attrs Attributes) TripMemory {
	if m.Destination == "" {
		m.Destination = strings.TrimSpace(attrs.Destination)
	}
	if m.Duration == "" {
		m.Duration = strings.TrimSpace(attrs.Duration)
	}
	if m.Style == "" {
		m.Style = strings.TrimSpace(attrs.Style)
	}
	return m
}

// Ready 目的地和天数都已知时可以生成行程
func (m TripMemory) Ready() bool {
	return m.Destination != "" && m.Duration != ""
}

// Session 会话实体
type Session struct {
	ID        string         `json:"id"`
	Memory    TripMemory     `json:"memory"`
	History   []Message      `json:"history"`
	Itinerary *Itinerary     `json:"itinerary,omitempty"`
	Pending   map[string]any `json:"pending"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewSession 创建空会话
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		History:   []Message{},
		Pending:   map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone 深拷贝会话，仓储和调用方之间不共享可变状态
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.History = make([]Message, len(s.History))
	copy(c.History, s.History)
	c.Pending = make(map[string]any, len(s.Pending))
	for k, v := range s.Pending {
		c.Pending[k] = v
	}
	c.Itinerary = s.Itinerary.Clone()
	return &c
}

// AppendMessage 追加消息，maxMessages > 0 时丢弃最早的消息
func (s *Session) AppendMessage(role Role, content string, maxMessages int) {
	s.History = append(s.History, Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	if maxMessages > 0 && len(s.History) > maxMessages {
		trimmed := make([]Message, maxMessages)
		copy(trimmed, s.History[len(s.History)-maxMessages:])
		s.History = trimmed
	}
}

// Touch 更新修改时间
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}
