package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carcareai/carlo/models"
)

func TestHFEmbedderSendsExpectedRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody models.HFEmbedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode([][]float32{{0.25, -0.5, 0.75}})
	}))
	defer server.Close()

	embedder := NewHFEmbedder(server.Client(), server.URL, "sentence-transformers/all-MiniLM-L6-v2", "secret-token")
	vector, err := embedder.EmbedText(context.Background(), "how do I change a tire")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 0.75}, vector)
	assert.Equal(t, "/pipeline/feature-extraction/sentence-transformers/all-MiniLM-L6-v2", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, []string{"how do I change a tire"}, gotBody.Inputs)
}

func TestHFEmbedderSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(models.HFErrorResponse{Error: "model is currently loading"})
	}))
	defer server.Close()

	embedder := NewHFEmbedder(server.Client(), server.URL, "some-model", "token")
	_, err := embedder.EmbedText(context.Background(), "anything")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is currently loading")
}

func TestHFEmbedderRejectsEmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([][]float32{})
	}))
	defer server.Close()

	embedder := NewHFEmbedder(server.Client(), server.URL, "some-model", "token")
	_, err := embedder.EmbedText(context.Background(), "anything")

	require.Error(t, err)
}
