// The ingest job reads a directory of PDF manuals, splits them into
// overlapping chunks, embeds each chunk and upserts it into the vector
// index. It is offline and idempotently re-runnable, though re-running over
// unchanged files duplicates chunks.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/carcareai/carlo/config"
	"github.com/carcareai/carlo/services"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg := config.Load()

	dir := flag.String("dir", cfg.DocumentsDir, "Directory of PDF manuals to ingest")
	watch := flag.Bool("watch", false, "Stay running and re-index PDFs as they change")
	flag.Parse()
	cfg.DocumentsDir = *dir

	if err := cfg.ValidateForIngest(); err != nil {
		log.Fatal().Err(err).Msg("ingestion cannot start")
	}

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

	collection, err := chromaClient.GetOrCreateCollection(context.Background(), cfg.Collection)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get or create collection")
	}

	embedder := services.NewHFEmbedder(httpClient, cfg.HFEndpoint, cfg.EmbeddingModel, cfg.HuggingFaceToken)
	store := services.NewChromaStore(collection)
	indexer := services.NewIndexingService(embedder, store, cfg.ChunkSize, cfg.ChunkOverlap)

	ctx := context.Background()
	if err := indexer.IngestDirectory(ctx, cfg.DocumentsDir); err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}

	total, err := store.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not count indexed chunks")
	} else {
		log.Info().Int("total_chunks", total).Msg("ingestion complete")
	}

	if *watch {
		if err := indexer.WatchDirectory(ctx, cfg.DocumentsDir); err != nil {
			log.Fatal().Err(err).Msg("watcher failed")
		}
	}
}
