package notification

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Danigallego24/RutaN/internal/domain/events"
	"github.com/Danigallego24/RutaN/internal/domain/notification"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

// sessionEvents 转成通知推送的事件
var sessionEvents = []events.EventType{
	events.FileIndexed,
	events.ItineraryUpdated,
	events.HistoryReset,
}

// Service 把会话事件转成通知并推送
type Service struct {
	domainRepo notification.Repository
	domainSvc  *notification.Service
	pusher     Pusher
	eventBus   events.EventBus
	logger     *slog.Logger

	mu    sync.Mutex
	unsub func()
}

// NewService 创建应用服务
func NewService(
	domainRepo notification.Repository,
	domainSvc *notification.Service,
	pusher Pusher,
	eventBus events.EventBus,
) *Service {
	return &Service{
		domainRepo: domainRepo,
		domainSvc:  domainSvc,
		pusher:     pusher,
		eventBus:   eventBus,
		logger:     log.NewModuleLogger("notification", "service"),
	}
}

// Start 订阅会话事件
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsub != nil {
		return
	}
	s.unsub = s.eventBus.SubscribeMultiple(sessionEvents, events.HandlerFunc(s.HandleEvent))
}

// Stop 取消订阅
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}

// HandleEvent 事件转通知：保存后推送，推送失败不影响保存
func (s *Service) HandleEvent(event events.Event) error {
	n := fromEvent(event)
	if n == nil {
		return nil
	}
	if err := s.domainSvc.Validate(n); err != nil {
		return fmt.Errorf("invalid notification for %s: %w", event.Type(), err)
	}
	if err := s.domainRepo.Save(n); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	if err := s.pusher.PushToSession(n.SessionID, n); err != nil {
		s.logger.Warn("Failed to push notification",
			"session_id", n.SessionID,
			"type", n.Event,
			"error", err,
		)
	}
	return nil
}

// Recent 会话最近的通知
func (s *Service) Recent(sessionID string) ([]*NotificationDTO, error) {
	list, err := s.domainRepo.FindBySession(sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]*NotificationDTO, 0, len(list))
	for _, n := range list {
		out = append(out, toDTO(n))
	}
	return out, nil
}

// fromEvent 不属于会话或不认识的事件返回 nil
func fromEvent(event events.Event) *notification.Notification {
	scoped, ok := event.(events.SessionScoped)
	if !ok {
		return nil
	}

	n := &notification.Notification{
		ID:        uuid.New().String(),
		Event:     string(event.Type()),
		SessionID: scoped.Session(),
		Level:     notification.LevelInfo,
		Data:      event,
		CreatedAt: event.Timestamp(),
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	switch e := event.(type) {
	case *events.FileIndexedEvent:
		n.Title = "Archivo analizado"
		n.Message = fmt.Sprintf("%s (%s) indexado en %d fragmentos", e.Filename, e.FileType, e.Chunks)
	case *events.ItineraryUpdatedEvent:
		n.Title = "Itinerario actualizado"
		n.Message = fmt.Sprintf("%s: %d días", e.Title, e.Days)
	case *events.HistoryResetEvent:
		n.Title = "Historial reiniciado"
		n.Message = "La conversación se ha reiniciado; la memoria del viaje se conserva"
	default:
		return nil
	}
	return n
}

// toDTO 转换为 DTO
func toDTO(n *notification.Notification) *NotificationDTO {
	return &NotificationDTO{
		ID:        n.ID,
		Type:      n.Event,
		SessionID: n.SessionID,
		Title:     n.Title,
		Message:   n.Message,
		Level:     n.Level.String(),
		Data:      n.Data,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}
