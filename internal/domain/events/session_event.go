package events

import "time"

// FileIndexedEvent 文件已分析并索引
type FileIndexedEvent struct {
	SessionID string    `json:"session_id"`
	Filename  string    `json:"filename"`
	FileType  string    `json:"file_type"`
	Chunks    int       `json:"chunks"`
	EventTime time.Time `json:"event_time"`
}

func (e *FileIndexedEvent) Type() EventType      { return FileIndexed }
func (e *FileIndexedEvent) Timestamp() time.Time { return e.EventTime }
func (e *FileIndexedEvent) Session() string      { return e.SessionID }

// ItineraryUpdatedEvent 行程已更新
type ItineraryUpdatedEvent struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"titulo"`
	Days      int       `json:"days"`
	EventTime time.Time `json:"event_time"`
}

func (e *ItineraryUpdatedEvent) Type() EventType      { return ItineraryUpdated }
func (e *ItineraryUpdatedEvent) Timestamp() time.Time { return e.EventTime }
func (e *ItineraryUpdatedEvent) Session() string      { return e.SessionID }

// HistoryResetEvent 历史已清空
type HistoryResetEvent struct {
	SessionID string    `json:"session_id"`
	EventTime time.Time `json:"event_time"`
}

func (e *HistoryResetEvent) Type() EventType      { return HistoryReset }
func (e *HistoryResetEvent) Timestamp() time.Time { return e.EventTime }
func (e *HistoryResetEvent) Session() string      { return e.SessionID }

// RulesReloadedEvent 规则表热加载完成
type RulesReloadedEvent struct {
	Source    string    `json:"source"`
	Styles    int       `json:"styles"`
	Cities    int       `json:"cities"`
	EventTime time.Time `json:"event_time"`
}

func (e *RulesReloadedEvent) Type() EventType      { return RulesReloaded }
func (e *RulesReloadedEvent) Timestamp() time.Time { return e.EventTime }
