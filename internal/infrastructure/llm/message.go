package llm

import "context"

// 消息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message Chat 消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatModel 对话模型
type ChatModel interface {
	// Chat 发送消息序列，返回助手回复文本
	Chat(ctx context.Context, messages []Message) (string, error)
	// Model 底层模型名
	Model() string
}
