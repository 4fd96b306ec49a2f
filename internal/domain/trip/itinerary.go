package trip

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Category 活动类别
type Category string

const (
	CategoryCulture     Category = "Culture"
	CategoryFood        Category = "Food"
	CategoryHiking      Category = "Hiking"
	CategoryRelaxation  Category = "Relaxation"
	CategorySightseeing Category = "Sightseeing"
	CategoryGeneral     Category = "General"
)

// Categories 模型可以使用的全部类别
var Categories = []Category{
	CategoryCulture,
	CategoryFood,
	CategoryHiking,
	CategoryRelaxation,
	CategorySightseeing,
	CategoryGeneral,
}

// NormalizeCategory 未知类别归为 General
func NormalizeCategory(raw string) Category {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(raw), string(c)) {
			return c
		}
	}
	return CategoryGeneral
}

// UnmarshalJSON 解析时顺带规范化
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*c = CategoryGeneral
		return nil
	}
	*c = NormalizeCategory(raw)
	return nil
}

// DayNumber 天序号，模型有时会输出字符串
type DayNumber int

// UnmarshalJSON 同时接受数字和数字字符串
func (d *DayNumber) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			*d = DayNumber(v)
			return nil
		}
		if f, err := n.Float64(); err == nil {
			*d = DayNumber(int(f))
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*d = DayNumber(v)
		}
		return nil
	}
	return nil
}

// Activity 单个行程活动
type Activity struct {
	Time     string   `json:"hora"`
	Moment   string   `json:"momento"`
	Activity string   `json:"activity"`
	Category Category `json:"category"`
	Details  string   `json:"detalles"`
}

// Day 一天的行程
type Day struct {
	Number     DayNumber  `json:"dia"`
	Title      string     `json:"titulo_dia"`
	Summary    string     `json:"resumen"`
	Activities []Activity `json:"itinerario"`
	ProTip     string     `json:"tip_pro"`
}

// Itinerary 结构化行程，整体覆盖，不做字段级合并
type Itinerary struct {
	Title   string `json:"titulo"`
	Summary string `json:"resumen"`
	Days    []Day  `json:"dias"`
}

// Clone 深拷贝行程
func (it *Itinerary) Clone() *Itinerary {
	if it == nil {
		return nil
	}
	c := *it
	c.Days = make([]Day, len(it.Days))
	for i, d := range it.Days {
		c.Days[i] = d
		c.Days[i].Activities = append([]Activity(nil), d.Activities...)
	}
	return &c
}
