package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/carcareai/carlo/models"
)

// Embedder turns text into a fixed-length vector. The same embedder (and the
// same underlying model) must be used at ingestion and query time.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// hfEmbedder calls the Hugging Face Inference API feature-extraction
// pipeline for a fixed sentence-transformers model.
type hfEmbedder struct {
	httpClient *http.Client
	endpoint   string
	model      string
	token      string
}

// NewHFEmbedder creates an Embedder backed by the Hugging Face Inference API.
func NewHFEmbedder(client *http.Client, endpoint, model, token string) Embedder {
	return &hfEmbedder{
		httpClient: client,
		endpoint:   endpoint,
		model:      model,
		token:      token,
	}
}

// EmbedText embeds a single piece of text.
func (e *hfEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(models.HFEmbedRequest{Inputs: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", e.endpoint, e.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call huggingface embedding api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		var hfErr models.HFErrorResponse
		if json.Unmarshal(bodyBytes, &hfErr) == nil && hfErr.Error != "" {
			return nil, fmt.Errorf("huggingface api returned status %d: %s", resp.StatusCode, hfErr.Error)
		}
		return nil, fmt.Errorf("huggingface api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	// The pipeline returns one vector per input.
	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("failed to decode huggingface response: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("huggingface api returned an empty embedding")
	}
	return vectors[0], nil
}
