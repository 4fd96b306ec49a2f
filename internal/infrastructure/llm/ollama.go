package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

// OllamaClient 本地 Ollama 客户端
// Chat 走 /api/chat，Generate 走 /api/generate（支持图片）
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// GenerateRequest /api/generate 请求
type GenerateRequest struct {
	Model       string
	Prompt      string
	Images      []string // base64
	Temperature float64
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Images  []string      `json:"images,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaClient 创建 Ollama 客户端
// 超时由调用方通过 ctx 控制，timeout 只是兜底
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:11434"
	}
	if model == "" {
		model = "llama3.2:3b"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.NewModuleLogger("llm", "ollama"),
	}
}

var _ ChatModel = (*OllamaClient)(nil)

// Model 模型名
func (c *OllamaClient) Model() string {
	return c.model
}

// Chat 调用 /api/chat（非流式，temperature 0）
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	var out ollamaChatResponse
	err := c.post(ctx, "/api/chat", ollamaChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Message.Content, nil
}

// Generate 调用 /api/generate，模型为空时使用客户端默认模型
func (c *OllamaClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	c.logger.Debug("Sending generate request",
		"model", model,
		"images", len(req.Images),
		"prompt_length", len(req.Prompt),
	)

	var out ollamaGenerateResponse
	err := c.post(ctx, "/api/generate", ollamaGenerateRequest{
		Model:   model,
		Prompt:  req.Prompt,
		Images:  req.Images,
		Stream:  false,
		Options: ollamaOptions{Temperature: req.Temperature},
	}, &out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Response), nil
}

func (c *OllamaClient) post(ctx context.Context, path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		text, _ := readResponseBody(resp)
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, text)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
