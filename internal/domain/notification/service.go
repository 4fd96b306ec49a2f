package notification

import "errors"

var (
	// ErrInvalidSessionID 缺少会话 ID
	ErrInvalidSessionID = errors.New("invalid session id")
	// ErrInvalidTitle 缺少标题
	ErrInvalidTitle = errors.New("invalid title")
)

// Service 领域服务
type Service struct{}

// NewService 创建领域服务
func NewService() *Service {
	return &Service{}
}

// Validate 校验通知
func (s *Service) Validate(n *Notification) error {
	if n.SessionID == "" {
		return ErrInvalidSessionID
	}
	if n.Title == "" {
		return ErrInvalidTitle
	}
	return nil
}
