package notification

import "github.com/Danigallego24/RutaN/internal/domain/notification"

// Pusher 推送接口（定义在 application 层）
type Pusher interface {
	PushToSession(sessionID string, notification *notification.Notification) error
}
