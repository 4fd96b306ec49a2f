package tokenizer

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

// 编码文件随二进制打包，不走网络
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Encoding 历史窗口使用的编码
const Encoding = "cl100k_base"

// Counter token 计数
type Counter interface {
	CountTokens(text string) int
}

// Estimator cl100k_base 编码计数器
type Estimator struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

var (
	estimatorInstance *Estimator
	estimatorOnce     sync.Once
	estimatorErr      error
)

// GetEstimator 获取单例，编码表只加载一次
func GetEstimator() (*Estimator, error) {
	estimatorOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(Encoding)
		if err != nil {
			estimatorErr = err
			return
		}
		estimatorInstance = &Estimator{encoding: enc}
	})

	if estimatorErr != nil {
		return nil, estimatorErr
	}
	return estimatorInstance, nil
}

// CountTokens 文本的 token 数
func (e *Estimator) CountTokens(text string) int {
	if text == "" {
		return 0
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.encoding.Encode(text, nil, nil))
}

// RuneEstimator 编码表不可用时的粗略估算，约 4 个字符一个 token
type RuneEstimator struct{}

// CountTokens 粗略 token 数
func (RuneEstimator) CountTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

// NewCounter 优先 tiktoken，失败时退回粗略估算
func NewCounter() Counter {
	est, err := GetEstimator()
	if err != nil {
		log.NewModuleLogger("tokenizer", "tiktoken").Warn("Failed to load tiktoken encoding, using rune estimate",
			"encoding", Encoding,
			"error", err,
		)
		return RuneEstimator{}
	}
	return est
}

// messageOverhead 每条消息的角色与分隔开销
const messageOverhead = 4

// Window 从最新的文本往回累加，返回预算内可保留的起始下标
// budget <= 0 表示不限制；最新一条即使超预算也保留
func Window(c Counter, texts []string, budget int) int {
	if budget <= 0 || len(texts) == 0 {
		return 0
	}

	used := 0
	for i := len(texts) - 1; i >= 0; i-- {
		used += c.CountTokens(texts[i]) + messageOverhead
		if used > budget {
			if i == len(texts)-1 {
				return i
			}
			return i + 1
		}
	}
	return 0
}
