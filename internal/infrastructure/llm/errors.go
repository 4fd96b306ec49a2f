package llm

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen 熔断器打开，请求被直接拒绝
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ConfigurationError 所选模型缺少必要配置（例如 GROQ_API_KEY）
type ConfigurationError struct {
	Variant string
	Key     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s no encontrada en el entorno. No se puede usar %s. "+
		"Por favor configura %s o selecciona 'local'.", e.Key, e.Variant, e.Key)
}

// UnknownModelError 无法识别的模型提示
type UnknownModelError struct {
	Hint string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("Modelo desconocido: '%s'. Selecciona 'smart'|'fast'|'local'.", e.Hint)
}

// ProviderInvocationError 调用模型提供方失败（网络、状态码、超时、熔断）
type ProviderInvocationError struct {
	Provider string
	Err      error
}

func (e *ProviderInvocationError) Error() string {
	return fmt.Sprintf("provider %s invocation failed: %v", e.Provider, e.Err)
}

func (e *ProviderInvocationError) Unwrap() error {
	return e.Err
}
