// Package events 定义领域事件类型和接口
// 用于系统内部的事件驱动通信
package events

import "time"

// EventType 事件类型标识
type EventType string

// 会话相关事件类型
const (
	// FileIndexed 文件分析完成并写入索引
	FileIndexed EventType = "session.file.indexed"
	// ItineraryUpdated 会话行程被替换
	ItineraryUpdated EventType = "session.itinerary.updated"
	// HistoryReset 会话历史被清空
	HistoryReset EventType = "session.history.reset"
)

// Event 领域事件接口
// 所有事件类型都必须实现此接口
type Event interface {
	// Type 返回事件类型
	Type() EventType
	// Timestamp 返回事件发生时间
	Timestamp() time.Time
}

// SessionScoped 属于某个会话的事件
type SessionScoped interface {
	Event
	Session() string
}

// 配置相关事件类型
const (
	// RulesReloaded 属性提取规则表已重新加载
	RulesReloaded EventType = "rules.reloaded"
)
