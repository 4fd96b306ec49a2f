package chat

import (
	"encoding/json"

	"github.com/Danigallego24/RutaN/internal/domain/trip"
)

// DefaultSessionID 请求未带会话 ID 时使用
const DefaultSessionID = "user_1"

// TechnicalErrorMessage 模型调用失败时返回给用户的消息
const TechnicalErrorMessage = "Error técnico en el cerebro del asistente."

// GenerateRequest 一轮对话输入
type GenerateRequest struct {
	SessionID   string
	Message     string
	Destination string
	Duration    string
	Style       string
	// Model 模型提示（smart/fast/local），为空时使用默认值
	Model string
}

// GenerateResponse 一轮对话结果
// 行程回复序列化为 {es_itinerario:true, ...模型原始字段}
// 聊天回复序列化为 {es_itinerario:false, mensaje_chat}
type GenerateResponse struct {
	IsItinerary bool
	ChatMessage string
	Fields      map[string]any
	Itinerary   *trip.Itinerary
}

// MarshalJSON 输出前端期望的扁平结构
func (r *GenerateResponse) MarshalJSON() ([]byte, error) {
	if !r.IsItinerary {
		return json.Marshal(struct {
			IsItinerary bool   `json:"es_itinerario"`
			ChatMessage string `json:"mensaje_chat"`
		}{false, r.ChatMessage})
	}

	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["es_itinerario"] = true
	return json.Marshal(out)
}

func chatResponse(message string) *GenerateResponse {
	return &GenerateResponse{ChatMessage: message}
}

// ModelCheckResult 模型可用性检查结果
type ModelCheckResult struct {
	OK       bool   `json:"ok"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Message  string `json:"message,omitempty"`
}

// SessionSnapshot 会话状态快照
type SessionSnapshot struct {
	SessionID   string          `json:"session_id"`
	Memory      trip.TripMemory `json:"memory"`
	Phase       int             `json:"phase"`
	PhaseName   string          `json:"phase_name"`
	HistorySize int             `json:"history_size"`
	History     []trip.Message  `json:"history"`
	Itinerary   *trip.Itinerary `json:"itinerary"`
	Pending     map[string]any  `json:"pending"`
}
