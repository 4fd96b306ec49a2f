package notification

// Repository 通知仓储
type Repository interface {
	Save(notification *Notification) error
	// FindBySession 按时间从旧到新返回
	FindBySession(sessionID string) ([]*Notification, error)
}
