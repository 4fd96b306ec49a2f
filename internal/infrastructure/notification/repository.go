package notification

import (
	"sync"

	"github.com/Danigallego24/RutaN/internal/domain/notification"
)

// DefaultPerSession 每个会话保留的通知条数
const DefaultPerSession = 50

// MemoryRepository 内存仓储，每个会话只保留最近的若干条
type MemoryRepository struct {
	mu         sync.RWMutex
	items      map[string][]*notification.Notification
	perSession int
}

// NewMemoryRepository 创建内存仓储
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items:      make(map[string][]*notification.Notification),
		perSession: DefaultPerSession,
	}
}

// Save 保存通知
func (r *MemoryRepository) Save(n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := append(r.items[n.SessionID], n)
	if len(list) > r.perSession {
		list = append([]*notification.Notification(nil), list[len(list)-r.perSession:]...)
	}
	r.items[n.SessionID] = list
	return nil
}

// FindBySession 会话的通知
func (r *MemoryRepository) FindBySession(sessionID string) ([]*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.items[sessionID]
	out := make([]*notification.Notification, len(list))
	copy(out, list)
	return out, nil
}

var _ notification.Repository = (*MemoryRepository)(nil)
