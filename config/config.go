// Package config loads service configuration from the environment. A .env
// file in the working directory is honoured for local development; real
// deployments set the variables directly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Defaults for everything that is not a credential.
const (
	DefaultPort           = "5001"
	DefaultChromaURL      = "http://localhost:8000"
	DefaultCollection     = "car-manuals"
	DefaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultHFEndpoint     = "https://api-inference.huggingface.co"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultDocumentsDir   = "documents"
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 200
	DefaultTopK           = 3
)

// Config holds everything both binaries need. The embedding model is shared
// between ingestion and query time on purpose: the two embedding spaces must
// be identical or retrieval is meaningless.
type Config struct {
	Port             string
	ChromaURL        string
	Collection       string
	HuggingFaceToken string
	HFEndpoint       string
	EmbeddingModel   string
	GeminiAPIKey     string
	GeminiModel      string
	DocumentsDir     string
	ChunkSize        int
	ChunkOverlap     int
	TopK             int
}

// Load reads the environment (and an optional .env file) into a Config.
// It never fails: credential presence is checked separately so the server
// can start in degraded mode while the ingest job refuses to run at all.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("CHROMA_URL", DefaultChromaURL)
	v.SetDefault("CHROMA_COLLECTION", DefaultCollection)
	v.SetDefault("EMBEDDING_MODEL", DefaultEmbeddingModel)
	v.SetDefault("HF_ENDPOINT", DefaultHFEndpoint)
	v.SetDefault("GEMINI_MODEL", DefaultGeminiModel)
	v.SetDefault("DOCUMENTS_DIR", DefaultDocumentsDir)
	v.SetDefault("CHUNK_SIZE", DefaultChunkSize)
	v.SetDefault("CHUNK_OVERLAP", DefaultChunkOverlap)
	v.SetDefault("TOP_K", DefaultTopK)

	return &Config{
		Port:             v.GetString("PORT"),
		ChromaURL:        v.GetString("CHROMA_URL"),
		Collection:       v.GetString("CHROMA_COLLECTION"),
		HuggingFaceToken: v.GetString("HUGGINGFACE_API_TOKEN"),
		HFEndpoint:       v.GetString("HF_ENDPOINT"),
		EmbeddingModel:   v.GetString("EMBEDDING_MODEL"),
		GeminiAPIKey:     v.GetString("GEMINI_API_KEY"),
		GeminiModel:      v.GetString("GEMINI_MODEL"),
		DocumentsDir:     v.GetString("DOCUMENTS_DIR"),
		ChunkSize:        v.GetInt("CHUNK_SIZE"),
		ChunkOverlap:     v.GetInt("CHUNK_OVERLAP"),
		TopK:             v.GetInt("TOP_K"),
	}
}

// MissingCredentials names the required secrets that are unset. A non-empty
// result means the chat pipeline cannot reach its providers.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.HuggingFaceToken == "" {
		missing = append(missing, "HUGGINGFACE_API_TOKEN")
	}
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	return missing
}

// ValidateForIngest enforces everything the ingestion job needs up front:
// credentials and a documents directory holding at least one PDF. An empty
// corpus fails here so the job never opens a connection to the index.
func (c *Config) ValidateForIngest() error {
	if missing := c.MissingCredentials(); len(missing) > 0 {
		return fmt.Errorf("missing required credentials: %v", missing)
	}
	info, err := os.Stat(c.DocumentsDir)
	if err != nil {
		return fmt.Errorf("documents directory %q not found: %w", c.DocumentsDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("documents path %q is not a directory", c.DocumentsDir)
	}
	entries, err := os.ReadDir(c.DocumentsDir)
	if err != nil {
		return fmt.Errorf("failed to read documents directory %q: %w", c.DocumentsDir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			return nil
		}
	}
	return fmt.Errorf("no PDF files found in %q", c.DocumentsDir)
}
