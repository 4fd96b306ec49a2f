// Package watcher 事件总线和规则文件监听
package watcher

import (
	"log/slog"
	"sync"

	"github.com/Danigallego24/RutaN/internal/domain/events"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

// subscription 带编号的订阅，用编号取消
type subscription struct {
	id      uint64
	handler events.Handler
}

// eventBusImpl EventBus 的实现
type eventBusImpl struct {
	mu     sync.RWMutex
	subs   map[events.EventType][]subscription
	nextID uint64
	closed bool
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewEventBus 创建事件总线
func NewEventBus() events.EventBus {
	return &eventBusImpl{
		subs:   make(map[events.EventType][]subscription),
		logger: log.NewModuleLogger("watcher", "event_bus"),
	}
}

// Subscribe 订阅一种事件
func (b *eventBusImpl) Subscribe(eventType events.EventType, handler events.Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[eventType] = append(b.subs[eventType], subscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(eventType, id) })
	}
}

// SubscribeMultiple 订阅多种事件
func (b *eventBusImpl) SubscribeMultiple(eventTypes []events.EventType, handler events.Handler) func() {
	unsubscribers := make([]func(), 0, len(eventTypes))
	for _, eventType := range eventTypes {
		unsubscribers = append(unsubscribers, b.Subscribe(eventType, handler))
	}

	return func() {
		for _, unsub := range unsubscribers {
			unsub()
		}
	}
}

// unsubscribe 按编号移除订阅
func (b *eventBusImpl) unsubscribe(eventType events.EventType, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[eventType]
	for i, s := range subs {
		if s.id == id {
			kept := make([]subscription, 0, len(subs)-1)
			kept = append(kept, subs[:i]...)
			kept = append(kept, subs[i+1:]...)
			b.subs[eventType] = kept
			return
		}
	}
}

// Publish 异步发布事件
func (b *eventBusImpl) Publish(event events.Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	subs := b.subs[event.Type()]
	if len(subs) == 0 {
		b.mu.RUnlock()
		return
	}
	// 在读锁内登记，Close 的 Wait 不会漏掉这批
	b.wg.Add(len(subs))
	handlers := make([]events.Handler, len(subs))
	for i, s := range subs {
		handlers[i] = s.handler
	}
	b.mu.RUnlock()

	b.logger.Debug("Publishing event",
		"type", event.Type(),
		"handlers_count", len(handlers),
	)

	for _, handler := range handlers {
		go b.dispatchToHandler(event, handler)
	}
}

// dispatchToHandler 分发到单个处理器，panic 不影响其他处理器
func (b *eventBusImpl) dispatchToHandler(event events.Event, handler events.Handler) {
	defer b.wg.Done()

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Handler panicked",
				"type", event.Type(),
				"panic", r,
			)
		}
	}()

	if err := handler.HandleEvent(event); err != nil {
		b.logger.Error("Handler returned error",
			"type", event.Type(),
			"error", err,
		)
	}
}

// Close 关闭事件总线
func (b *eventBusImpl) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()

	b.logger.Info("Event bus closed")
}
