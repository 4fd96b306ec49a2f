package rag

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	domainRAG "github.com/Danigallego24/RutaN/internal/domain/rag"
	"github.com/Danigallego24/RutaN/internal/infrastructure/llm"
	"github.com/Danigallego24/RutaN/internal/infrastructure/storage"
)

// keywordEmbedder 确定性向量：关键词出现次数加一个常量维度
type keywordEmbedder struct {
	vocab []string
	err   error
	calls int
	mu    sync.Mutex
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{vocab: []string{"vuelo", "hotel", "museo", "playa", "tapas", "tren"}}
}

func (e *keywordEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		low := strings.ToLower(text)
		v := make([]float32, len(e.vocab)+1)
		for j, w := range e.vocab {
			v[j] = float32(strings.Count(low, w))
		}
		v[len(e.vocab)] = 0.1
		out[i] = v
	}
	return out, nil
}

func newTestVectorStore(t *testing.T) *storage.ChunkRepository {
	t.Helper()
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "rag.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := storage.NewChunkRepository(db)
	require.NoError(t, err)
	return repo
}

var _ domainRAG.Embedder = (*keywordEmbedder)(nil)

// fakeChat 记录收到的消息
type fakeChat struct {
	reply    string
	err      error
	mu       sync.Mutex
	messages [][]llm.Message
}

func (f *fakeChat) Model() string { return "fake" }

func (f *fakeChat) Chat(_ context.Context, messages []llm.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, messages)
	return f.reply, f.err
}

// fakeModels ModelProvider 测试替身
type fakeModels struct {
	chat       *fakeChat
	resolveErr error

	generateReply string
	generateErr   error

	mu        sync.Mutex
	generated []llm.GenerateRequest
	hints     []string
}

func (f *fakeModels) ResolveModel(hint string) (llm.ChatModel, error) {
	f.mu.Lock()
	f.hints = append(f.hints, hint)
	f.mu.Unlock()
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	if f.chat == nil {
		return nil, errors.New("no chat model")
	}
	return f.chat, nil
}

func (f *fakeModels) Generate(_ context.Context, req llm.GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generated = append(f.generated, req)
	return f.generateReply, f.generateErr
}

func (f *fakeModels) VisionModel() string { return "llava" }
func (f *fakeModels) LocalModel() string  { return "llama3.2:3b" }

var _ ModelProvider = (*fakeModels)(nil)
