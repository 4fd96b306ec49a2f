package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Danigallego24/RutaN/internal/domain/trip"
)

// MalformedModelOutputError 模型输出不是可用的行程 JSON
// 只在内部使用，最终总是降级为聊天回复
type MalformedModelOutputError struct {
	Raw string
	Err error
}

func (e *MalformedModelOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %v", e.Err)
}

func (e *MalformedModelOutputError) Unwrap() error {
	return e.Err
}

var (
	errNoJSONObject   = errors.New("no JSON object found")
	errNotItinerary   = errors.New("JSON object is not an itinerary")
	errNotJSONObject  = errors.New("top-level JSON value is not an object")
	fenceReplacer     = strings.NewReplacer("```json", "", "```", "")
	itineraryMarkKeys = []string{"titulo", "dias"}
)

// CleanResponse 去掉代码块标记并修剪空白
func CleanResponse(text string) string {
	return strings.TrimSpace(fenceReplacer.Replace(text))
}

// ParseItinerary 从清理后的模型输出中解析行程
// 先整体解析，失败后取第一个 { 到最后一个 } 之间的内容再试
// 返回原始字段（用于回显）和类型化的行程
func ParseItinerary(cleaned string) (map[string]any, *trip.Itinerary, error) {
	raw, obj, err := decodeObject(cleaned)
	if err != nil {
		return nil, nil, &MalformedModelOutputError{Raw: cleaned, Err: err}
	}

	if !looksLikeItinerary(obj) {
		return nil, nil, &MalformedModelOutputError{Raw: cleaned, Err: errNotItinerary}
	}

	var it trip.Itinerary
	if err := json.Unmarshal(raw, &it); err != nil {
		return nil, nil, &MalformedModelOutputError{Raw: cleaned, Err: err}
	}
	return obj, &it, nil
}

// decodeObject 返回解析成功的 JSON 片段和对象
// 整体已是合法 JSON 但不是对象时直接失败，不再截取内部的花括号
func decodeObject(cleaned string) ([]byte, map[string]any, error) {
	if json.Valid([]byte(cleaned)) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(cleaned), &obj); err != nil || obj == nil {
			return nil, nil, errNotJSONObject
		}
		return []byte(cleaned), obj, nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil, nil, errNoJSONObject
	}

	candidate := []byte(cleaned[start : end+1])
	var obj map[string]any
	if err := json.Unmarshal(candidate, &obj); err != nil {
		return nil, nil, err
	}
	if obj == nil {
		return nil, nil, errNoJSONObject
	}
	return candidate, obj, nil
}

func looksLikeItinerary(obj map[string]any) bool {
	for _, k := range itineraryMarkKeys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}
