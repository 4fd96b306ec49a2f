package events

// Handler 事件处理器
type Handler interface {
	// HandleEvent 返回的 error 只记录日志，不重试
	HandleEvent(event Event) error
}

// HandlerFunc 函数适配器
type HandlerFunc func(event Event) error

// HandleEvent 实现 Handler 接口
func (f HandlerFunc) HandleEvent(event Event) error {
	return f(event)
}

// EventBus 进程内事件总线
type EventBus interface {
	// Subscribe 订阅一种事件，返回取消订阅函数
	Subscribe(eventType EventType, handler Handler) (unsubscribe func())

	// SubscribeMultiple 订阅多种事件，返回取消全部订阅的函数
	SubscribeMultiple(eventTypes []EventType, handler Handler) (unsubscribe func())

	// Publish 异步分发到所有订阅者，关闭后静默丢弃
	Publish(event Event)

	// Close 停止接收新事件并等待已分发的处理完成
	Close()
}
