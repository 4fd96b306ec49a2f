package notification

// NotificationDTO 通知响应
type NotificationDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Level     string `json:"level"`
	Data      any    `json:"data,omitempty"`
	CreatedAt string `json:"created_at"`
}
