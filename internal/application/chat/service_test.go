package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Danigallego24/RutaN/internal/application/session"
	"github.com/Danigallego24/RutaN/internal/domain/events"
	"github.com/Danigallego24/RutaN/internal/domain/trip"
	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	"github.com/Danigallego24/RutaN/internal/infrastructure/llm"
	"github.com/Danigallego24/RutaN/internal/infrastructure/storage"
	"github.com/Danigallego24/RutaN/internal/infrastructure/tokenizer"
)

const sevillaItinerary = "```json\n" + `{
  "titulo": "Sevilla en calma",
  "resumen": "Cinco días sin prisas",
  "dias": [
    {
      "dia": 1,
      "titulo_dia": "Centro histórico",
      "resumen": "Catedral y Alcázar",
      "itinerario": [
        {"hora": "09:00", "momento": "Mañana", "activity": "Real Alcázar", "category": "Sightseeing", "detalles": "Reserva previa"},
        {"hora": "14:00", "momento": "Almuerzo", "activity": "Tapas en Triana", "category": "Tapas", "detalles": "15€"}
      ],
      "tip_pro": "Evita el mediodía en verano"
    }
  ]
}` + "\n```"

// scriptedModel 按顺序返回预设回复，并记录每次收到的消息
type scriptedModel struct {
	mu       sync.Mutex
	replies  []string
	err      error
	delay    time.Duration
	calls    [][]llm.Message
	inFlight map[string]int
	overlap  bool
}

func (m *scriptedModel) Model() string { return "scripted" }

func (m *scriptedModel) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	n := len(m.calls)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "¿Cuántos días?", nil
	}
	if n > len(m.replies) {
		return m.replies[len(m.replies)-1], nil
	}
	return m.replies[n-1], nil
}

func (m *scriptedModel) lastHuman(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.calls)
	msgs := m.calls[len(m.calls)-1]
	return msgs[len(msgs)-1].Content
}

type fakeResolver struct {
	model llm.ChatModel
	err   error
	hints []string
	mu    sync.Mutex
}

func (r *fakeResolver) ResolveModel(hint string) (llm.ChatModel, error) {
	r.mu.Lock()
	r.hints = append(r.hints, hint)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.model, nil
}

func (r *fakeResolver) Check(hint string) (string, string, error) {
	if r.err != nil {
		return "", "", r.err
	}
	return "groq_70b", "llama-3.3-70b-versatile", nil
}

type fakeRetriever struct {
	mu      sync.Mutex
	context string
	err     error
	queries []string
}

func (r *fakeRetriever) Retrieve(_ context.Context, query, sessionID string, k int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, fmt.Sprintf("%s|%s|%d", sessionID, query, k))
	return r.context, r.err
}

type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordingBus) Subscribe(events.EventType, events.Handler) func() { return func() {} }
func (b *recordingBus) SubscribeMultiple([]events.EventType, events.Handler) func() {
	return func() {}
}
func (b *recordingBus) Publish(e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
}
func (b *recordingBus) Close() {}

type testEnv struct {
	svc       *Service
	store     *session.Store
	model     *scriptedModel
	resolver  *fakeResolver
	retriever *fakeRetriever
	bus       *recordingBus
}

func newTestEnv(t *testing.T, sessionCfg *config.SessionConfig) *testEnv {
	t.Helper()
	if sessionCfg == nil {
		sessionCfg = &config.SessionConfig{MaxHistory: 40}
	}
	store := session.NewStore(storage.NewMemorySessionRepository(time.Hour), sessionCfg)
	model := &scriptedModel{}
	resolver := &fakeResolver{model: model}
	retriever := &fakeRetriever{}
	bus := &recordingBus{}

	svc := NewService(store, trip.NewDefaultExtractor(), retriever, resolver, tokenizer.RuneEstimator{}, bus,
		&config.LLMConfig{Timeout: 2 * time.Second},
		&config.RAGConfig{Timeout: time.Second},
		sessionCfg,
	)
	return &testEnv{svc: svc, store: store, model: model, resolver: resolver, retriever: retriever, bus: bus}
}

func TestService_SevillaScenario(t *testing.T) {
	env := newTestEnv(t, nil)
	env.model.replies = []string{sevillaItinerary}
	ctx := context.Background()

	resp, err := env.svc.Generate(ctx, &GenerateRequest{
		SessionID: "s1",
		Message:   "Quiero un viaje a Sevilla de 5 días, estilo relax",
	})
	require.NoError(t, err)

	mem, err := env.store.TripMemory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, trip.TripMemory{Destination: "Sevilla", Duration: "5 días", Style: "relax"}, mem)

	human := env.model.lastHuman(t)
	assert.True(t, strings.HasPrefix(human, "FASE_ACTUAL: 2\n\n"))
	assert.Contains(t, human, "- Destino: Sevilla\n- Duración: 5 días\n- Estilo/Presupuesto: relax\n")
	assert.Contains(t, human, "(sin contexto externo adicional)")

	require.True(t, resp.IsItinerary)
	assert.Equal(t, "Sevilla en calma", resp.Fields["titulo"])
	require.NotNil(t, resp.Itinerary)
	require.Len(t, resp.Itinerary.Days, 1)
	acts := resp.Itinerary.Days[0].Activities
	assert.Equal(t, trip.CategorySightseeing, acts[0].Category)
	assert.Equal(t, trip.CategoryGeneral, acts[1].Category)

	stored, err := env.store.Itinerary(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, resp.Itinerary, stored)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(body, &wire))
	assert.Equal(t, true, wire["es_itinerario"])
	assert.Equal(t, "Cinco días sin prisas", wire["resumen"])

	history, err := env.store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, trip.RoleUser, history[0].Role)
	assert.Equal(t, "Quiero un viaje a Sevilla de 5 días, estilo relax", history[0].Content)
	assert.Equal(t, trip.RoleAssistant, history[1].Role)
	assert.False(t, strings.Contains(history[1].Content, "```"))

	require.Len(t, env.bus.published, 1)
	ev, ok := env.bus.published[0].(*events.ItineraryUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, "s1", ev.SessionID)
	assert.Equal(t, 1, ev.Days)

	// 已有行程后进入修改阶段，历史随请求发送
	_, err = env.svc.Generate(ctx, &GenerateRequest{SessionID: "s1", Message: "quita museos"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(env.model.lastHuman(t), "FASE_ACTUAL: 3\n"))
	assert.Len(t, env.model.calls[1], 4)
	assert.Equal(t, llm.RoleSystem, env.model.calls[1][0].Role)
}

func TestService_EmptySecondTurnKeepsState(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, &GenerateRequest{
		SessionID:   "s2",
		Message:     "Hola",
		Destination: "Granada",
		Duration:    "3",
		Style:       "cultural",
	})
	require.NoError(t, err)
	first := env.model.lastHuman(t)

	_, err = env.svc.Generate(ctx, &GenerateRequest{SessionID: "s2"})
	require.NoError(t, err)
	second := env.model.lastHuman(t)

	header := func(s string) string {
		return s[:strings.Index(s, "📎 CONTEXTO ADICIONAL")]
	}
	assert.Equal(t, header(first), header(second))
	assert.True(t, strings.HasPrefix(second, "FASE_ACTUAL: 2\n"))

	mem, err := env.store.TripMemory(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, trip.TripMemory{Destination: "Granada", Duration: "3", Style: "cultural"}, mem)

	// 空消息不触发检索
	assert.Len(t, env.retriever.queries, 1)
}

func TestService_ExtractorNeverOverwritesExplicit(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, &GenerateRequest{SessionID: "s", Destination: "Bilbao"})
	require.NoError(t, err)
	_, err = env.svc.Generate(ctx, &GenerateRequest{SessionID: "s", Message: "mejor Madrid, 2 días"})
	require.NoError(t, err)

	mem, err := env.store.TripMemory(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Bilbao", mem.Destination)
	assert.Equal(t, "2 días", mem.Duration)
}

func TestService_MalformedOutputDowngradesToChat(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"纯文本", "¿Cuántos días quieres viajar?", "¿Cuántos días quieres viajar?"},
		{"括号不配对", "Aquí va: { \"titulo\": \"x\"", "Aquí va: { \"titulo\": \"x\""},
		{"非行程对象", "```json\n{\"pregunta\": \"¿Presupuesto?\"}\n```", "{\"pregunta\": \"¿Presupuesto?\"}"},
		{"dias 类型错误", "{\"titulo\": \"x\", \"dias\": \"tres\"}", "{\"titulo\": \"x\", \"dias\": \"tres\"}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.model.replies = []string{tt.reply}

			resp, err := env.svc.Generate(context.Background(), &GenerateRequest{SessionID: "m", Message: "hola"})
			require.NoError(t, err)
			assert.False(t, resp.IsItinerary)
			assert.Equal(t, tt.want, resp.ChatMessage)

			body, err := json.Marshal(resp)
			require.NoError(t, err)
			assert.JSONEq(t, fmt.Sprintf(`{"es_itinerario": false, "mensaje_chat": %q}`, tt.want), string(body))

			it, err := env.store.Itinerary(context.Background(), "m")
			require.NoError(t, err)
			assert.Nil(t, it)

			history, err := env.store.History(context.Background(), "m")
			require.NoError(t, err)
			assert.Len(t, history, 2)
			assert.Empty(t, env.bus.published)
		})
	}
}

func TestService_MalformedOutputKeepsPreviousItinerary(t *testing.T) {
	env := newTestEnv(t, nil)
	env.model.replies = []string{sevillaItinerary, "no entiendo { nada"}
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, &GenerateRequest{SessionID: "k", Message: "Sevilla 5 días"})
	require.NoError(t, err)
	before, err := env.store.Itinerary(ctx, "k")
	require.NoError(t, err)

	resp, err := env.svc.Generate(ctx, &GenerateRequest{SessionID: "k", Message: "cambia algo"})
	require.NoError(t, err)
	assert.False(t, resp.IsItinerary)

	after, err := env.store.Itinerary(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_ModelFailure(t *testing.T) {
	t.Run("不记录失败轮次", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.model.err = errors.New("boom")

		resp, err := env.svc.Generate(context.Background(), &GenerateRequest{SessionID: "f", Message: "hola"})
		require.NoError(t, err)
		assert.Equal(t, chatResponse(TechnicalErrorMessage), resp)

		history, err := env.store.History(context.Background(), "f")
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("记录失败轮次", func(t *testing.T) {
		env := newTestEnv(t, &config.SessionConfig{MaxHistory: 40, RecordFailedTurns: true})
		env.resolver.err = &llm.ConfigurationError{Variant: "Groq 70B", Key: "GROQ_API_KEY"}

		resp, err := env.svc.Generate(context.Background(), &GenerateRequest{SessionID: "f", Message: "hola"})
		require.NoError(t, err)
		assert.Equal(t, TechnicalErrorMessage, resp.ChatMessage)

		history, err := env.store.History(context.Background(), "f")
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "hola", history[0].Content)
		assert.Equal(t, TechnicalErrorMessage, history[1].Content)
	})

	t.Run("空回复", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.model.replies = []string{"   "}

		resp, err := env.svc.Generate(context.Background(), &GenerateRequest{SessionID: "f", Message: "hola"})
		require.NoError(t, err)
		assert.Equal(t, TechnicalErrorMessage, resp.ChatMessage)
	})

	t.Run("超时", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.model.delay = time.Second
		env.svc.llmTimeout = 20 * time.Millisecond

		resp, err := env.svc.Generate(context.Background(), &GenerateRequest{SessionID: "f", Message: "hola"})
		require.NoError(t, err)
		assert.Equal(t, TechnicalErrorMessage, resp.ChatMessage)
	})
}

func TestService_FileAnalysisPhase(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	msg := "✅ Análisis de vuelos.pdf\nUBICACIÓN: Sevilla"
	_, err := env.svc.Generate(ctx, &GenerateRequest{SessionID: "fa", Message: msg})
	require.NoError(t, err)

	human := env.model.lastHuman(t)
	rule := strings.Repeat("=", 50)
	assert.True(t, strings.HasPrefix(human, "FASE_ACTUAL: 4\n"))
	assert.Contains(t, human, "📎 ANÁLISIS DE ARCHIVO COMPARTIDO:\n"+rule+"\n"+msg+"\n"+rule+"\n")
	assert.Contains(t, human, "💬 MENSAJE DEL USUARIO:\n"+msg+fileAnalysisSuffix+"\n")
	assert.Empty(t, env.retriever.queries)

	history, err := env.store.History(ctx, "fa")
	require.NoError(t, err)
	assert.Equal(t, msg+fileAnalysisSuffix, history[0].Content)
}

func TestService_RetrievedContext(t *testing.T) {
	t.Run("足够长的上下文", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.retriever.context = "\n\n📎 INFORMACIÓN DE ARCHIVOS ADJUNTOS:\n[1] PDF - vuelos.pdf:\nIB1234"

		_, err := env.svc.Generate(context.Background(), &GenerateRequest{SessionID: "r", Message: "¿a qué hora sale mi vuelo?"})
		require.NoError(t, err)
		assert.Equal(t, []string{"r|¿a qué hora sale mi vuelo?|3"}, env.retriever.queries)
		assert.Contains(t, env.model.lastHuman(t), "[1] PDF - vuelos.pdf:\nIB1234")
	})

	t.Run("检索条数取自配置", func(t *testing.T) {
		env := newTestEnv(t, nil)
		svc := NewService(env.store, trip.NewDefaultExtractor(), env.retriever, env.resolver, tokenizer.RuneEstimator{}, env.bus,
			&config.LLMConfig{Timeout: 2 * time.Second},
			&config.RAGConfig{Timeout: time.Second, RetrieveK: 7},
			&config.SessionConfig{MaxHistory: 40},
		)

		_, err := svc.Generate(context.Background(), &GenerateRequest{SessionID: "k", Message: "mi hotel"})
		require.NoError(t, err)
		assert.Equal(t, []string{"k|mi hotel|7"}, env.retriever.queries)
	})

	t.Run("过短的上下文被丢弃", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.retriever.context = "   corto   "

		_, err := env.svc.Generate(context.Background(), &GenerateRequest{SessionID: "r", Message: "hola"})
		require.NoError(t, err)
		assert.Contains(t, env.model.lastHuman(t), "(sin contexto externo adicional)")
	})

	t.Run("检索失败不影响本轮", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.retriever.err = errors.New("qdrant unavailable")
		env.model.replies = []string{"Claro"}

		resp, err := env.svc.Generate(context.Background(), &GenerateRequest{SessionID: "r", Message: "hola"})
		require.NoError(t, err)
		assert.Equal(t, "Claro", resp.ChatMessage)
	})
}

func TestService_HistoryWindow(t *testing.T) {
	env := newTestEnv(t, &config.SessionConfig{MaxHistory: 40, HistoryTokenBudget: 20})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, env.store.AppendTurn(ctx, "w", strings.Repeat("a", 40), strings.Repeat("b", 40)))
	}

	_, err := env.svc.Generate(ctx, &GenerateRequest{SessionID: "w", Message: "hola"})
	require.NoError(t, err)

	// 每条 40 字符约 10 token，加 4 开销，预算 20 只保留最新一条
	msgs := env.model.calls[0]
	require.Len(t, msgs, 3)
	assert.Equal(t, strings.Repeat("b", 40), msgs[1].Content)
	assert.Equal(t, llm.RoleAssistant, msgs[1].Role)
}

func TestService_ModelHintPassedThrough(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.svc.Generate(context.Background(), &GenerateRequest{Message: "hola", Model: "local"})
	require.NoError(t, err)
	assert.Equal(t, []string{"local"}, env.resolver.hints)

	// 未指定会话时使用默认会话
	history, err := env.store.History(context.Background(), DefaultSessionID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestService_ConcurrentTurnsSerializePerSession(t *testing.T) {
	env := newTestEnv(t, nil)
	env.model.delay = 5 * time.Millisecond
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := fmt.Sprintf("c%d", i%2)
			_, err := env.svc.Generate(ctx, &GenerateRequest{SessionID: sid, Message: fmt.Sprintf("mensaje %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for _, sid := range []string{"c0", "c1"} {
		history, err := env.store.History(ctx, sid)
		require.NoError(t, err)
		require.Len(t, history, 10)
		// 每轮的用户消息和助手回复相邻
		for i := 0; i < len(history); i += 2 {
			assert.Equal(t, trip.RoleUser, history[i].Role)
			assert.Equal(t, trip.RoleAssistant, history[i+1].Role)
		}
	}
}

func TestService_ResetHistory(t *testing.T) {
	env := newTestEnv(t, nil)
	env.model.replies = []string{sevillaItinerary}
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, &GenerateRequest{SessionID: "r", Message: "Sevilla 5 días"})
	require.NoError(t, err)

	require.NoError(t, env.svc.ResetHistory(ctx, "r"))

	snap, err := env.svc.Snapshot(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.HistorySize)
	assert.Equal(t, "Sevilla", snap.Memory.Destination)
	assert.NotNil(t, snap.Itinerary)
	assert.Equal(t, 3, snap.Phase)
	assert.Equal(t, "modify", snap.PhaseName)

	last := env.bus.published[len(env.bus.published)-1]
	assert.Equal(t, events.HistoryReset, last.Type())

	// 不存在的会话也不报错
	assert.NoError(t, env.svc.ResetHistory(ctx, "missing"))
}

func TestService_ModelCheck(t *testing.T) {
	env := newTestEnv(t, nil)
	assert.Equal(t, &ModelCheckResult{OK: true, Provider: "groq_70b", Model: "llama-3.3-70b-versatile"}, env.svc.ModelCheck("smart"))

	env.resolver.err = &llm.UnknownModelError{Hint: "gpt-5"}
	res := env.svc.ModelCheck("gpt-5")
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "Modelo desconocido: 'gpt-5'")
}
