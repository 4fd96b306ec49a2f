package llm

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
)

// Kind 模型变体（封闭枚举）
type Kind int

const (
	// FastRemote Groq 8B
	FastRemote Kind = iota + 1
	// SmartRemote Groq 70B
	SmartRemote
	// Local Ollama 本地模型
	Local
)

// 提供方标识
const (
	ProviderGroq8B  = "groq_8b"
	ProviderGroq70B = "groq_70b"
	ProviderOllama  = "ollama_local"
)

// Groq 模型名
const (
	GroqFastModel  = "llama-3.1-8b-instant"
	GroqSmartModel = "llama-3.3-70b-versatile"
)

// ParseHint 把用户提示映射为模型变体
func ParseHint(hint string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "fast", "llama3.2:7b":
		return FastRemote, nil
	case "smart", "gpt-4o":
		return SmartRemote, nil
	case "local", "llama3.2:3b":
		return Local, nil
	default:
		return 0, &UnknownModelError{Hint: hint}
	}
}

// Provider 变体对应的提供方标识
func (k Kind) Provider() string {
	switch k {
	case FastRemote:
		return ProviderGroq8B
	case SmartRemote:
		return ProviderGroq70B
	case Local:
		return ProviderOllama
	default:
		return "unknown"
	}
}

// Resolved 解析后的模型，Chat 调用经过熔断并把错误包装成 ProviderInvocationError
type Resolved struct {
	Kind     Kind
	Provider string
	model    ChatModel
	breaker  *CircuitBreaker
}

var _ ChatModel = (*Resolved)(nil)

// Model 底层模型名
func (r *Resolved) Model() string {
	return r.model.Model()
}

// Chat 调用模型
func (r *Resolved) Chat(ctx context.Context, messages []Message) (string, error) {
	out, err := r.breaker.Execute(ctx, func(ctx context.Context) (string, error) {
		return r.model.Chat(ctx, messages)
	})
	if err != nil {
		return "", &ProviderInvocationError{Provider: r.Provider, Err: err}
	}
	return out, nil
}

// Resolver 根据提示选择模型提供方
// 客户端和熔断器按提供方缓存，进程内共享
type Resolver struct {
	cfg    *config.LLMConfig
	ollama *OllamaClient

	mu       sync.Mutex
	models   map[Kind]ChatModel
	breakers map[string]*CircuitBreaker
}

// NewResolver 创建解析器
func NewResolver(cfg *config.LLMConfig) *Resolver {
	return &Resolver{
		cfg:      cfg,
		ollama:   NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaLocalModel, cfg.VisionTimeout),
		models:   make(map[Kind]ChatModel),
		breakers: make(map[string]*CircuitBreaker),
	}
}

// DefaultHint 未指定模型时使用的提示
func (r *Resolver) DefaultHint() string {
	if r.cfg.DefaultModel == "" {
		return "smart"
	}
	return r.cfg.DefaultModel
}

// Resolve 解析提示，空提示使用默认模型
// Groq 变体缺少 API Key 时返回 ConfigurationError
func (r *Resolver) Resolve(hint string) (*Resolved, error) {
	if strings.TrimSpace(hint) == "" {
		hint = r.DefaultHint()
	}
	kind, err := ParseHint(hint)
	if err != nil {
		return nil, err
	}

	provider := kind.Provider()
	if kind != Local && r.cfg.GroqAPIKey == "" {
		return nil, &ConfigurationError{Variant: groqVariantName(kind), Key: config.EnvGroqAPIKey}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	model, ok := r.models[kind]
	if !ok {
		switch kind {
		case FastRemote:
			model = NewClient(r.cfg.GroqBaseURL, r.cfg.GroqAPIKey, GroqFastModel, r.cfg.Timeout)
		case SmartRemote:
			model = NewClient(r.cfg.GroqBaseURL, r.cfg.GroqAPIKey, GroqSmartModel, r.cfg.Timeout)
		default:
			model = r.ollama
		}
		r.models[kind] = model
	}

	return &Resolved{
		Kind:     kind,
		Provider: provider,
		model:    model,
		breaker:  r.breakerLocked(provider),
	}, nil
}

// ResolveModel 同 Resolve，返回 ChatModel 接口
func (r *Resolver) ResolveModel(hint string) (ChatModel, error) {
	m, err := r.Resolve(hint)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Check 只解析提示，不调用模型
func (r *Resolver) Check(hint string) (provider, model string, err error) {
	m, err := r.Resolve(hint)
	if err != nil {
		return "", "", err
	}
	return m.Provider, m.Model(), nil
}

// Generate 通过本地 Ollama 的 /api/generate 调用（视觉分析和文档分析兜底）
func (r *Resolver) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	r.mu.Lock()
	breaker := r.breakerLocked(ProviderOllama)
	r.mu.Unlock()

	out, err := breaker.Execute(ctx, func(ctx context.Context) (string, error) {
		return r.ollama.Generate(ctx, req)
	})
	if err != nil {
		return "", &ProviderInvocationError{Provider: ProviderOllama, Err: err}
	}
	return out, nil
}

// VisionModel 视觉模型名
func (r *Resolver) VisionModel() string {
	return r.cfg.VisionModel
}

// LocalModel 本地文本模型名
func (r *Resolver) LocalModel() string {
	return r.cfg.OllamaLocalModel
}

func (r *Resolver) breakerLocked(provider string) *CircuitBreaker {
	b, ok := r.breakers[provider]
	if !ok {
		b = NewCircuitBreaker(provider, CircuitBreakerConfig{
			MaxFailures:         r.cfg.BreakerMaxFailures,
			Timeout:             r.cfg.BreakerOpenTimeout,
			HalfOpenMaxRequests: r.cfg.BreakerHalfOpenMax,
		})
		r.breakers[provider] = b
	}
	return b
}

func groqVariantName(kind Kind) string {
	if kind == FastRemote {
		return "Groq 8B"
	}
	return "Groq 70B"
}

// IsConfigurationProblem 配置类错误（缺 Key 或未知模型），重试无意义
func IsConfigurationProblem(err error) bool {
	var cfgErr *ConfigurationError
	var unknownErr *UnknownModelError
	return errors.As(err, &cfgErr) || errors.As(err, &unknownErr)
}
