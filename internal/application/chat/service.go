// Package chat 对话编排：记忆、检索、提示词、模型调用和行程解析
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Danigallego24/RutaN/internal/application/session"
	"github.com/Danigallego24/RutaN/internal/domain/events"
	"github.com/Danigallego24/RutaN/internal/domain/trip"
	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	"github.com/Danigallego24/RutaN/internal/infrastructure/llm"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
	"github.com/Danigallego24/RutaN/internal/infrastructure/tokenizer"
)

const (
	// defaultRetrieveK 未配置时每轮检索的片段数
	defaultRetrieveK = 3
	// minContextRunes 检索结果修剪后不超过此长度时丢弃
	minContextRunes = 20
)

// Retriever 会话内检索并格式化上下文
type Retriever interface {
	Retrieve(ctx context.Context, query, sessionID string, k int) (string, error)
}

// ModelResolver 模型解析
type ModelResolver interface {
	ResolveModel(hint string) (llm.ChatModel, error)
	Check(hint string) (provider, model string, err error)
}

// Service 对话编排服务
type Service struct {
	store     *session.Store
	extractor *trip.Extractor
	retriever Retriever
	models    ModelResolver
	counter   tokenizer.Counter
	eventBus  events.EventBus

	turns             *session.KeyedMutex
	llmTimeout        time.Duration
	ragTimeout        time.Duration
	retrieveK         int
	historyBudget     int
	recordFailedTurns bool
	logger            *slog.Logger
}

// NewService 创建对话编排服务
func NewService(
	store *session.Store,
	extractor *trip.Extractor,
	retriever Retriever,
	models ModelResolver,
	counter tokenizer.Counter,
	eventBus events.EventBus,
	llmCfg *config.LLMConfig,
	ragCfg *config.RAGConfig,
	sessionCfg *config.SessionConfig,
) *Service {
	retrieveK := ragCfg.RetrieveK
	if retrieveK <= 0 {
		retrieveK = defaultRetrieveK
	}
	return &Service{
		store:             store,
		extractor:         extractor,
		retriever:         retriever,
		models:            models,
		counter:           counter,
		eventBus:          eventBus,
		turns:             session.NewKeyedMutex(),
		llmTimeout:        llmCfg.Timeout,
		ragTimeout:        ragCfg.Timeout,
		retrieveK:         retrieveK,
		historyBudget:     sessionCfg.HistoryTokenBudget,
		recordFailedTurns: sessionCfg.RecordFailedTurns,
		logger:            log.NewModuleLogger("chat", "service"),
	}
}

// Generate 处理一轮对话
// 同一会话的轮次串行执行；模型失败返回技术错误消息而不是 error
func (s *Service) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	ctx = log.WithSessionID(ctx, sessionID)
	logger := log.FromContext(ctx, s.logger)

	unlock := s.turns.Lock(sessionID)
	defer unlock()

	message := strings.TrimSpace(req.Message)
	explicit := trip.TripMemory{
		Destination: strings.TrimSpace(req.Destination),
		Duration:    strings.TrimSpace(req.Duration),
		Style:       strings.TrimSpace(req.Style),
	}

	memory := s.updateMemory(ctx, logger, sessionID, explicit, s.extractor.Extract(message))

	isFileAnalysis := IsFileAnalysis(message)
	var extraContext string
	if isFileAnalysis {
		logger.Info("File analysis message detected", "length", len(message))
		extraContext = fileAnalysisContext(message)
		message += fileAnalysisSuffix
	} else if message != "" {
		extraContext = s.retrieve(ctx, logger, message, sessionID)
	}

	itinerary, err := s.store.Itinerary(ctx, sessionID)
	if err != nil {
		logger.Warn("Failed to load itinerary", "error", err)
	}
	phase := trip.ResolvePhase(memory, itinerary != nil, isFileAnalysis)

	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		logger.Warn("Failed to load history", "error", err)
	}

	messages := s.buildMessages(history, humanTurn(phase, memory, extraContext, message))

	logger.Debug("Invoking model",
		"phase", phase.String(),
		"model_hint", req.Model,
		"history", len(messages)-2,
	)

	reply, err := s.invoke(ctx, req.Model, messages)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errors.New("empty model response")
	}
	if err != nil {
		logger.Error("Model invocation failed", "model_hint", req.Model, "error", err)
		if s.recordFailedTurns {
			if err := s.store.AppendTurn(ctx, sessionID, message, TechnicalErrorMessage); err != nil {
				logger.Warn("Failed to record failed turn", "error", err)
			}
		}
		return chatResponse(TechnicalErrorMessage), nil
	}

	cleaned := CleanResponse(reply)
	if err := s.store.AppendTurn(ctx, sessionID, message, cleaned); err != nil {
		logger.Warn("Failed to append history", "error", err)
	}

	fields, parsed, err := ParseItinerary(cleaned)
	if err != nil {
		logger.Debug("Model output is not an itinerary", "error", err)
		return chatResponse(cleaned), nil
	}

	if err := s.store.SetItinerary(ctx, sessionID, parsed); err != nil {
		logger.Warn("Failed to store itinerary", "error", err)
	}
	if s.eventBus != nil {
		s.eventBus.Publish(&events.ItineraryUpdatedEvent{
			SessionID: sessionID,
			Title:     parsed.Title,
			Days:      len(parsed.Days),
			EventTime: time.Now(),
		})
	}

	logger.Info("Itinerary generated", "title", parsed.Title, "days", len(parsed.Days))
	return &GenerateResponse{
		IsItinerary: true,
		Fields:      fields,
		Itinerary:   parsed,
	}, nil
}

// updateMemory 显式字段优先，提取结果只填空位
// 存储失败时在本地计算，保证本轮仍然可用
func (s *Service) updateMemory(ctx context.Context, logger *slog.Logger, sessionID string, explicit trip.TripMemory, attrs trip.Attributes) trip.TripMemory {
	memory, err := s.store.UpdateTripMemory(ctx, sessionID, explicit)
	if err != nil {
		logger.Warn("Failed to update trip memory", "error", err)
		return trip.TripMemory{}.Merge(explicit).Fill(attrs)
	}

	filled, err := s.store.FillTripMemory(ctx, sessionID, attrs)
	if err != nil {
		logger.Warn("Failed to fill trip memory", "error", err)
		return memory.Fill(attrs)
	}
	return filled
}

// retrieve 检索失败或超时只记录日志
func (s *Service) retrieve(ctx context.Context, logger *slog.Logger, query, sessionID string) string {
	if s.retriever == nil {
		return ""
	}
	if s.ragTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ragTimeout)
		defer cancel()
	}

	out, err := s.retriever.Retrieve(ctx, query, sessionID, s.retrieveK)
	if err != nil {
		logger.Warn("Retrieval failed", "error", err)
		return ""
	}
	if len([]rune(strings.TrimSpace(out))) <= minContextRunes {
		return ""
	}
	logger.Debug("Retrieved file context", "length", len(out))
	return out
}

// buildMessages 系统提示词 + 预算内的历史 + 本轮输入
func (s *Service) buildMessages(history []trip.Message, human string) []llm.Message {
	start := 0
	if s.counter != nil && s.historyBudget > 0 {
		texts := make([]string, len(history))
		for i, m := range history {
			texts[i] = m.Content
		}
		start = tokenizer.Window(s.counter, texts, s.historyBudget)
	}

	messages := make([]llm.Message, 0, len(history)-start+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, m := range history[start:] {
		role := llm.RoleUser
		if m.Role == trip.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: human})
	return messages
}

// invoke 解析模型并在超时内调用
func (s *Service) invoke(ctx context.Context, hint string, messages []llm.Message) (string, error) {
	model, err := s.models.ResolveModel(hint)
	if err != nil {
		return "", err
	}
	if s.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.llmTimeout)
		defer cancel()
	}
	return model.Chat(ctx, messages)
}

// ResetHistory 清空会话历史，记忆和行程保留
func (s *Service) ResetHistory(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	unlock := s.turns.Lock(sessionID)
	defer unlock()

	if err := s.store.ResetHistory(ctx, sessionID); err != nil {
		return err
	}
	if s.eventBus != nil {
		s.eventBus.Publish(&events.HistoryResetEvent{
			SessionID: sessionID,
			EventTime: time.Now(),
		})
	}
	s.logger.Info("History reset", "session_id", sessionID)
	return nil
}

// ModelCheck 检查模型提示能否解析（不调用模型）
func (s *Service) ModelCheck(hint string) *ModelCheckResult {
	provider, model, err := s.models.Check(hint)
	if err != nil {
		return &ModelCheckResult{OK: false, Message: err.Error()}
	}
	return &ModelCheckResult{OK: true, Provider: provider, Model: model}
}

// Snapshot 会话状态快照，不存在时创建
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	phase := trip.ResolvePhase(sess.Memory, sess.Itinerary != nil, false)
	return &SessionSnapshot{
		SessionID:   sess.ID,
		Memory:      sess.Memory,
		Phase:       int(phase),
		PhaseName:   phase.String(),
		HistorySize: len(sess.History),
		History:     sess.History,
		Itinerary:   sess.Itinerary,
		Pending:     sess.Pending,
	}, nil
}
