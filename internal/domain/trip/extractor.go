package trip

import (
	"regexp"
	"strings"
	"sync/atomic"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	durationPattern = regexp.MustCompile(`(\d+)\s*d[ií]a`)
	// 原始文本已转小写，捕获组之后不用 \b，否则以重音字母结尾的地名会被截断
	tripToPattern = regexp.MustCompile(`\bviaje a ([a-záéíóúñü]+)`)
)

// Attributes 从自由文本中提取的旅行属性，未找到的字段为空字符串
type Attributes struct {
	Destination string `json:"destination"`
	Duration    string `json:"duration"`
	Style       string `json:"style"`
}

// RuleTable 有序规则表，列表顺序即优先级
type RuleTable struct {
	Styles []string `yaml:"styles" json:"styles"`
	Cities []string `yaml:"cities" json:"cities"`
}

// DefaultRules 内置规则表
func DefaultRules() RuleTable {
	return RuleTable{
		Styles: []string{
			"relax",
			"aventura",
			"cultural",
			"gastronómico",
			"familia",
			"lujo",
			"explorer",
			"low",
			"medium",
			"high",
		},
		Cities: []string{
			"madrid",
			"barcelona",
			"sevilla",
			"valencia",
			"granada",
			"bilbao",
			"malaga",
			"málaga",
			"cordoba",
			"córdoba",
			"zaragoza",
			"santiago",
			"san sebastian",
			"san sebastián",
			"ibiza",
			"mallorca",
			"tenerife",
		},
	}
}

// normalized 小写并去掉空项
func (r RuleTable) normalized() RuleTable {
	clean := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return RuleTable{Styles: clean(r.Styles), Cities: clean(r.Cities)}
}

// Extractor 启发式属性提取器
// 纯函数语义：相同规则表下同一输入总是得到同一结果；规则表可以原子替换
type Extractor struct {
	rules atomic.Pointer[RuleTable]
}

// NewExtractor 使用给定规则表创建提取器
func NewExtractor(rules RuleTable) *Extractor {
	e := &Extractor{}
	e.SetRules(rules)
	return e
}

// NewDefaultExtractor 使用内置规则表创建提取器
func NewDefaultExtractor() *Extractor {
	return NewExtractor(DefaultRules())
}

// SetRules 替换规则表
func (e *Extractor) SetRules(rules RuleTable) {
	n := rules.normalized()
	e.rules.Store(&n)
}

// Rules 当前规则表
func (e *Extractor) Rules() RuleTable {
	return *e.rules.Load()
}

// Extract 从文本提取目的地、天数和风格
func (e *Extractor) Extract(text string) Attributes {
	var out Attributes
	if strings.TrimSpace(text) == "" {
		return out
	}

	low := strings.ToLower(text)
	rules := e.rules.Load()

	if m := durationPattern.FindStringSubmatch(low); m != nil {
		out.Duration = m[1] + " días"
	}

	for _, s := range rules.Styles {
		if strings.Contains(low, s) {
			out.Style = s
			break
		}
	}

	for _, c := range rules.Cities {
		if strings.Contains(low, c) {
			out.Destination = titleCase(c)
			break
		}
	}

	if out.Destination == "" {
		if m := tripToPattern.FindStringSubmatch(low); m != nil {
			out.Destination = titleCase(m[1])
		}
	}

	return out
}

// titleCase cases.Caser 有内部状态，不能跨 goroutine 共享
func titleCase(s string) string {
	return cases.Title(language.Spanish).String(s)
}
