package main

import (
	"context"
	"net/http"
	"os"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/carcareai/carlo/config"
	"github.com/carcareai/carlo/controller"
	"github.com/carcareai/carlo/services"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg := config.Load()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create chroma client")
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close chroma client")
		}
	}()

	collection, err := getOrCreateCollection(chromaClient, cfg.Collection)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get or create collection")
	}

	// Provider clients are built once here and injected read-only; no
	// request mutates shared state, so the handlers need no locking.
	var chatService services.ChatService
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		log.Warn().Strs("missing", missing).Msg("credentials missing, chat route will answer 503")
		chatService = services.NewUnavailableChatService(missing)
	} else {
		geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create gemini client")
		}
		log.Info().Msg("connected to gemini")

		embedder := services.NewHFEmbedder(httpClient, cfg.HFEndpoint, cfg.EmbeddingModel, cfg.HuggingFaceToken)
		store := services.NewChromaStore(collection)
		generator := services.NewGeminiGenerator(geminiClient, cfg.GeminiModel)
		chatService = services.NewChatService(embedder, store, generator, cfg.TopK)
	}

	chatController := controller.NewChatController(chatService)

	router := gin.Default()

	// Permissive CORS so the marketplace frontend can call us directly.
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "online",
			"service": "CarCare AI Brain",
		})
	})

	router.POST("/api/chat", chatController.Chat)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// getOrCreateCollection fetches the deployment's chunk collection, creating
// it on first run.
func getOrCreateCollection(client chromago.Client, collectionName string) (chromago.Collection, error) {
	ctx := context.Background()

	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "CarCare AI manual chunks"),
				chromago.NewStringAttribute("created_by", "carlo"),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	log.Info().Str("collection", collectionName).Msg("collection ready")
	return collection, nil
}
