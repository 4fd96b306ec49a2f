package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

// CircuitBreakerConfig 熔断配置
type CircuitBreakerConfig struct {
	// MaxFailures 连续失败多少次后打开
	MaxFailures uint32
	// Timeout 打开状态持续时间
	Timeout time.Duration
	// HalfOpenMaxRequests 半开状态允许的探测请求数
	HalfOpenMaxRequests uint32
}

// DefaultCircuitBreakerConfig 3 次失败，30s 打开，2 次半开探测
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:         3,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}
}

// CircuitBreaker 包装 gobreaker，每个提供方一个实例
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreaker 创建熔断器
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures == 0 {
		cfg = DefaultCircuitBreakerConfig()
	}
	logger := log.NewModuleLogger("llm", "breaker")

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenMaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// 调用方取消不算提供方故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"provider", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Execute 通过熔断器执行 fn，打开状态时返回 ErrCircuitOpen
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	result, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrCircuitOpen
		}
		return "", err
	}
	return result.(string), nil
}

// State closed / open / half-open
func (cb *CircuitBreaker) State() string {
	return cb.breaker.State().String()
}
