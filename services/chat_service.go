package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// ChatService answers a single user message with a grounded completion.
// It is stateless across requests: no conversation memory exists on the
// server, each call rebuilds context from the incoming message alone.
type ChatService interface {
	Chat(ctx context.Context, message string) (string, error)
}

// chatServiceImpl holds the read-only collaborators built once at startup.
type chatServiceImpl struct {
	embedder Embedder
	store    VectorStore
	topK     int
	llm      Generator
}

// NewChatService creates the chat pipeline with its injected collaborators.
func NewChatService(embedder Embedder, store VectorStore, llm Generator, topK int) ChatService {
	return &chatServiceImpl{
		embedder: embedder,
		store:    store,
		topK:     topK,
		llm:      llm,
	}
}

// Chat runs the retrieval pipeline: embed the message, fetch the nearest
// manual chunks, render the guardrail prompt, and complete it. Any upstream
// failure is returned as-is; the controller owns the user-facing wording.
func (s *chatServiceImpl) Chat(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}

	log.Info().Str("message", message).Msg("searching knowledge base")

	queryEmbedding, err := s.embedder.EmbedText(ctx, message)
	if err != nil {
		return "", fmt.Errorf("failed to embed query text: %w", err)
	}

	results, err := s.store.Query(ctx, queryEmbedding, s.topK)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve manual chunks: %w", err)
	}
	log.Info().Int("chunks", len(results)).Msg("retrieved relevant manual pages")

	// Zero hits leaves the context block empty; the template then tells the
	// model to fall back to general automotive knowledge only.
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	contextBlock := strings.Join(texts, ContextSeparator)

	prompt := RenderGuardrailPrompt(contextBlock, message)

	answer, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	log.Info().Msg("answer generated")
	return answer, nil
}

// unavailableChatService serves the chat route when required credentials
// were missing at startup. It makes no network calls.
type unavailableChatService struct {
	missing []string
}

// NewUnavailableChatService returns a ChatService that always reports
// ErrServiceUnavailable, naming the missing credentials in the wrapped error.
func NewUnavailableChatService(missing []string) ChatService {
	return &unavailableChatService{missing: missing}
}

func (s *unavailableChatService) Chat(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}
	return "", fmt.Errorf("missing credentials %v: %w", s.missing, ErrServiceUnavailable)
}
