package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Danigallego24/RutaN/internal/application/chat"
	appNotification "github.com/Danigallego24/RutaN/internal/application/notification"
	appRAG "github.com/Danigallego24/RutaN/internal/application/rag"
	"github.com/Danigallego24/RutaN/internal/application/session"
	domainNotification "github.com/Danigallego24/RutaN/internal/domain/notification"
	"github.com/Danigallego24/RutaN/internal/domain/trip"
	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	"github.com/Danigallego24/RutaN/internal/infrastructure/llm"
	infraNotification "github.com/Danigallego24/RutaN/internal/infrastructure/notification"
	"github.com/Danigallego24/RutaN/internal/infrastructure/storage"
	"github.com/Danigallego24/RutaN/internal/infrastructure/tokenizer"
	"github.com/Danigallego24/RutaN/internal/infrastructure/watcher"
	"github.com/Danigallego24/RutaN/internal/infrastructure/websocket"
	"github.com/Danigallego24/RutaN/internal/interfaces/http/handler"
	"github.com/Danigallego24/RutaN/internal/interfaces/mcp"
)

const analysisReply = "Vuelo IB3110 Madrid-Sevilla, salida 08:45, llegada 09:50. Hotel Alfonso XIII, dos noches."

// stubModels 同时满足对话和文件分析两侧的模型接口
type stubModels struct {
	mu       sync.Mutex
	reply    string
	hints    []string
	messages [][]llm.Message
}

func (m *stubModels) Model() string { return "stub" }

func (m *stubModels) Chat(_ context.Context, messages []llm.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, messages)
	return m.reply, nil
}

func (m *stubModels) ResolveModel(hint string) (llm.ChatModel, error) {
	m.mu.Lock()
	m.hints = append(m.hints, hint)
	m.mu.Unlock()
	return m, nil
}

func (m *stubModels) Check(hint string) (string, string, error) {
	return "groq_8b", "llama-3.1-8b-instant", nil
}

func (m *stubModels) Generate(context.Context, llm.GenerateRequest) (string, error) {
	return m.reply, nil
}

func (m *stubModels) VisionModel() string { return "llava" }
func (m *stubModels) LocalModel() string  { return "llama3.2:3b" }

func (m *stubModels) lastUserMessage(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.messages)
	msgs := m.messages[len(m.messages)-1]
	return msgs[len(msgs)-1].Content
}

// wordEmbedder 按关键词计数的确定性向量
type wordEmbedder struct{}

func (wordEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vocab := []string{"vuelo", "hotel", "museo", "playa"}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		low := strings.ToLower(text)
		v := make([]float32, len(vocab)+1)
		for j, w := range vocab {
			v[j] = float32(strings.Count(low, w))
		}
		v[len(vocab)] = 0.1
		out[i] = v
	}
	return out, nil
}

type testServer struct {
	handler http.Handler
	models  *stubModels
}

func newTestServer(t *testing.T, reply string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := storage.OpenDB(filepath.Join(dir, "rutan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	chunks, err := storage.NewChunkRepository(db)
	require.NoError(t, err)

	serverCfg := &config.ServerConfig{HTTPPort: ":0", AllowedOrigins: []string{"http://localhost:3000"}}
	llmCfg := &config.LLMConfig{Timeout: 2 * time.Second, VisionTimeout: 2 * time.Second}
	ragCfg := &config.RAGConfig{
		Timeout:             2 * time.Second,
		MaxChunksPerSession: 100,
		ChunkSize:           500,
		ChunkOverlap:        50,
		RetrieveK:           3,
	}
	sessionCfg := &config.SessionConfig{MaxHistory: 20, HistoryTokenBudget: 4000}
	uploadCfg := &config.UploadConfig{Dir: filepath.Join(dir, "uploads"), MaxBytes: 1 << 20}

	models := &stubModels{reply: reply}
	bus := watcher.NewEventBus()
	t.Cleanup(bus.Close)
	hub := websocket.NewHub()
	t.Cleanup(hub.Close)

	store := session.NewStore(storage.NewMemorySessionRepository(time.Hour), sessionCfg)
	index := appRAG.NewIndex(chunks, wordEmbedder{}, ragCfg)
	uploads := appRAG.NewUploadService(appRAG.NewAnalyzer(models, uploadCfg, llmCfg), index, bus)
	chatService := chat.NewService(store, trip.NewDefaultExtractor(), index, models,
		tokenizer.RuneEstimator{}, bus, llmCfg, ragCfg, sessionCfg)

	notifications := appNotification.NewService(
		infraNotification.NewMemoryRepository(),
		domainNotification.NewService(),
		infraNotification.NewWebSocketPusher(hub),
		bus,
	)
	notifications.Start()
	t.Cleanup(notifications.Stop)

	srv := NewServer(
		serverCfg,
		uploadCfg,
		handler.NewChatHandler(chatService),
		handler.NewFileHandler(uploads, index),
		handler.NewModelHandler(chatService),
		handler.NewNotificationHandler(notifications),
		handler.NewEventsHandler(hub, serverCfg, &config.WebSocketConfig{}),
		mcp.NewServer(chatService, index),
	)
	return &testServer{handler: srv.Handler(), models: models}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *testServer) upload(t *testing.T, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("session_id", "viajero"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, "")
	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_GenerateAliases(t *testing.T) {
	s := newTestServer(t, "¿Qué presupuesto tienes?")

	w := s.postJSON("/api/chat/generate", `{
		"session_id": "ana",
		"extra_info": "Quiero un viaje a Sevilla",
		"duration": 5,
		"difficulty": "relax",
		"model_name": "fast"
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["es_itinerario"])
	assert.Equal(t, "¿Qué presupuesto tienes?", body["mensaje_chat"])
	assert.Equal(t, []string{"fast"}, s.models.hints)

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/chat/sessions/ana", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, map[string]any{"destination": "Sevilla", "duration": "5", "style": "relax"}, data["memory"])
	assert.EqualValues(t, 2, data["history_size"])
	assert.EqualValues(t, trip.PhaseGenerate, data["phase"])
}

func TestServer_GenerateRawBody(t *testing.T) {
	s := newTestServer(t, "¿A dónde quieres ir?")

	req := httptest.NewRequest(http.MethodPost, "/api/chat/generate", strings.NewReader("hola, quiero viajar"))
	req.Header.Set("Content-Type", "text/plain")
	w := s.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "¿A dónde quieres ir?", decode(t, w)["mensaje_chat"])
	assert.Contains(t, s.models.lastUserMessage(t), "hola, quiero viajar")
}

func TestServer_GenerateItinerary(t *testing.T) {
	s := newTestServer(t, "```json\n"+`{"titulo": "Sevilla", "resumen": "Relax", "dias": [{"dia": 1, "titulo_dia": "Centro", "itinerario": []}]}`+"\n```")

	w := s.postJSON("/api/chat/generate", `{"message": "Sevilla 3 días"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["es_itinerario"])
	assert.Equal(t, "Sevilla", body["titulo"])
	assert.Len(t, body["dias"], 1)
	assert.NotContains(t, body, "mensaje_chat")
}

func TestServer_Reset(t *testing.T) {
	s := newTestServer(t, "¿Cuántos días?")

	require.Equal(t, http.StatusOK, s.postJSON("/api/chat/generate", `{"message": "Madrid"}`).Code)
	w := s.postJSON("/api/chat/reset", `{}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/chat/sessions/"+chat.DefaultSessionID, nil))
	data := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 0, data["history_size"])
	assert.Equal(t, "Madrid", data["memory"].(map[string]any)["destination"])
}

func TestServer_UploadUnsupported(t *testing.T) {
	s := newTestServer(t, analysisReply)

	w := s.upload(t, "reserva.docx", []byte("PK\x03\x04"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["error"], "docx")
}

func TestServer_UploadMissingFile(t *testing.T) {
	s := newTestServer(t, analysisReply)

	w := s.postJSON("/api/files/upload", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["ok"])
}

func TestServer_UploadAndSearch(t *testing.T) {
	s := newTestServer(t, analysisReply)

	w := s.upload(t, "vuelo.txt", []byte("Localizador ABC123. Vuelo Madrid-Sevilla a las 08:45."))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, true, body["indexed"])
	assert.Equal(t, true, body["ready_for_chat"])
	assert.Equal(t, appRAG.StatusAnalyzed, body["status"])
	assert.Equal(t, analysisReply, body["analysis"])

	w = s.postJSON("/api/files/search", `{"session_id": "viajero", "query": "vuelo", "limit": 50}`)
	require.Equal(t, http.StatusOK, w.Code)
	hits := decode(t, w)["data"].([]any)
	require.Len(t, hits, 1)
	hit := hits[0].(map[string]any)
	assert.Equal(t, "vuelo.txt", hit["source"])
	assert.Equal(t, analysisReply, hit["text"])

	w = s.postJSON("/api/files/search", `{"session_id": "otro", "query": "vuelo"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["data"])

	assert.Eventually(t, func() bool {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/notifications/viajero", nil))
		list, _ := decode(t, w)["data"].([]any)
		return len(list) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServer_SearchRequiresQuery(t *testing.T) {
	s := newTestServer(t, "")

	w := s.postJSON("/api/files/search", `{"session_id": "viajero"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_ModelCheck(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/models/check?model=fast", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "groq_8b", body["provider"])
	assert.Equal(t, "llama-3.1-8b-instant", body["model"])
}

func TestServer_DebugEcho(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		name   string
		body   []byte
		raw    string
		length float64
	}{
		{name: "UTF-8 原样返回", body: []byte("ñandú"), raw: "ñandú", length: 7},
		{name: "Windows-1252 转码", body: []byte{'a', 0xF1, 'o'}, raw: "año", length: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/debug", bytes.NewReader(tt.body))
			w := s.do(req)
			require.Equal(t, http.StatusOK, w.Code)

			body := decode(t, w)
			assert.Equal(t, tt.raw, body["raw"])
			assert.Equal(t, tt.length, body["length"])
		})
	}
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodOptions, "/api/chat/generate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := s.do(req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
