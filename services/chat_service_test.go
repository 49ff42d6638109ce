package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carcareai/carlo/models"
)

type stubEmbedder struct {
	calls  int
	vector []float32
	err    error
}

func (s *stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	return s.vector, s.err
}

type stubStore struct {
	queryCalls int
	gotK       int
	results    []models.ScoredChunk
	err        error
}

func (s *stubStore) Upsert(ctx context.Context, chunks []models.Chunk) error { return nil }

func (s *stubStore) Query(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error) {
	s.queryCalls++
	s.gotK = k
	return s.results, s.err
}

func (s *stubStore) DeleteBySource(ctx context.Context, sourceFile string) error { return nil }

func (s *stubStore) Count(ctx context.Context) (int, error) { return len(s.results), nil }

type stubGenerator struct {
	calls     int
	gotPrompt string
	reply     string
	err       error
}

func (s *stubGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.gotPrompt = prompt
	return s.reply, s.err
}

func newTestPipeline(results []models.ScoredChunk, reply string) (*stubEmbedder, *stubStore, *stubGenerator, ChatService) {
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	store := &stubStore{results: results}
	llm := &stubGenerator{reply: reply}
	return embedder, store, llm, NewChatService(embedder, store, llm, 3)
}

func TestChatEmptyMessageMakesNoUpstreamCalls(t *testing.T) {
	embedder, store, llm, svc := newTestPipeline(nil, "unused")

	_, err := svc.Chat(context.Background(), "")

	require.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, 0, embedder.calls)
	assert.Equal(t, 0, store.queryCalls)
	assert.Equal(t, 0, llm.calls)
}

func TestChatBuildsGroundedPrompt(t *testing.T) {
	results := []models.ScoredChunk{
		{Text: "Check the engine oil level weekly.", Score: 0.91},
		{Text: "Brake pads wear out after 50000 km.", Score: 0.87},
		{Text: "Coolant should be replaced every two years.", Score: 0.80},
	}
	embedder, store, llm, svc := newTestPipeline(results, "Check your oil weekly.")

	answer, err := svc.Chat(context.Background(), "How often should I check my oil?")

	require.NoError(t, err)
	assert.Equal(t, "Check your oil weekly.", answer)
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, 1, store.queryCalls)
	assert.Equal(t, 3, store.gotK)
	require.Equal(t, 1, llm.calls)

	wantContext := results[0].Text + ContextSeparator + results[1].Text + ContextSeparator + results[2].Text
	assert.Contains(t, llm.gotPrompt, wantContext)
	assert.Contains(t, llm.gotPrompt, "User Question: How often should I check my oil?")
	assert.NotContains(t, llm.gotPrompt, "{context}")
	assert.NotContains(t, llm.gotPrompt, "{question}")
}

func TestChatPreservesRetrievalOrder(t *testing.T) {
	results := []models.ScoredChunk{
		{Text: "first chunk", Score: 0.9},
		{Text: "second chunk", Score: 0.5},
	}
	_, _, llm, svc := newTestPipeline(results, "ok")

	_, err := svc.Chat(context.Background(), "anything automotive")

	require.NoError(t, err)
	first := strings.Index(llm.gotPrompt, "first chunk")
	second := strings.Index(llm.gotPrompt, "second chunk")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
}

func TestChatEmptyRetrievalStillCompletes(t *testing.T) {
	_, store, llm, svc := newTestPipeline(nil, "General advice.")

	answer, err := svc.Chat(context.Background(), "What is a timing belt?")

	require.NoError(t, err)
	assert.Equal(t, "General advice.", answer)
	assert.Equal(t, 1, store.queryCalls)
	require.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.gotPrompt, "Context from Manuals:")
}

func TestChatReturnsRefusalVerbatim(t *testing.T) {
	_, _, llm, svc := newTestPipeline(nil, RefusalMessage)

	answer, err := svc.Chat(context.Background(), "write me a poem")

	require.NoError(t, err)
	assert.Equal(t, RefusalMessage, answer)
	assert.Contains(t, llm.gotPrompt, RefusalMessage)
}

func TestChatEmbedderFailureStopsPipeline(t *testing.T) {
	embedder, store, llm, svc := newTestPipeline(nil, "unused")
	embedder.err = errors.New("quota exceeded")

	_, err := svc.Chat(context.Background(), "hello")

	require.Error(t, err)
	assert.Equal(t, 0, store.queryCalls)
	assert.Equal(t, 0, llm.calls)
}

func TestChatStoreFailureStopsPipeline(t *testing.T) {
	_, store, llm, svc := newTestPipeline(nil, "unused")
	store.err = errors.New("connection refused")

	_, err := svc.Chat(context.Background(), "hello")

	require.Error(t, err)
	assert.Equal(t, 0, llm.calls)
}

func TestChatGeneratorFailureSurfaces(t *testing.T) {
	_, _, llm, svc := newTestPipeline(nil, "")
	llm.err = errors.New("model unavailable")

	_, err := svc.Chat(context.Background(), "hello")

	require.Error(t, err)
}

func TestUnavailableServiceShortCircuits(t *testing.T) {
	svc := NewUnavailableChatService([]string{"GEMINI_API_KEY"})

	_, err := svc.Chat(context.Background(), "any message")
	require.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	_, err = svc.Chat(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyMessage)
}
