package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/carcareai/carlo/models"
)

// IndexingService turns PDF manuals into embedded chunks in the vector
// index. It is used by the one-shot ingest job and by watch mode.
type IndexingService struct {
	embedder     Embedder
	store        VectorStore
	chunkSize    int
	chunkOverlap int
}

// NewIndexingService creates an indexing service.
func NewIndexingService(embedder Embedder, store VectorStore, chunkSize, chunkOverlap int) *IndexingService {
	return &IndexingService{
		embedder:     embedder,
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// IngestDirectory runs the full batch: every PDF in dirPath is extracted
// page by page, the pages are split into overlapping chunks, and each chunk
// is embedded and upserted. The first failure aborts the whole run; the job
// is re-runnable, but re-running over the same files duplicates chunks
// because no deduplication exists.
func (s *IndexingService) IngestDirectory(ctx context.Context, dirPath string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read documents directory %q: %w", dirPath, err)
	}

	var pdfPaths []string
	for _, entry := range entries {
		if !entry.IsDir() && isPDF(entry.Name()) {
			pdfPaths = append(pdfPaths, filepath.Join(dirPath, entry.Name()))
		}
	}
	if len(pdfPaths) == 0 {
		return fmt.Errorf("no PDF files found in %q", dirPath)
	}
	log.Info().Int("files", len(pdfPaths)).Str("dir", dirPath).Msg("starting ingestion")

	// One ordered sequence of pages across all files, in directory order.
	var pages []models.Page
	for _, path := range pdfPaths {
		log.Info().Str("file", path).Msg("extracting pages")
		filePages, err := ExtractPages(path)
		if err != nil {
			return err
		}
		pages = append(pages, filePages...)
	}
	log.Info().Int("pages", len(pages)).Msg("loaded pages of text")

	return s.ingestPages(ctx, pages)
}

// IngestFile extracts, splits, embeds and upserts a single PDF. Watch mode
// deletes the file's previous chunks before calling this.
func (s *IndexingService) IngestFile(ctx context.Context, path string) error {
	pages, err := ExtractPages(path)
	if err != nil {
		return err
	}
	return s.ingestPages(ctx, pages)
}

func (s *IndexingService) ingestPages(ctx context.Context, pages []models.Page) error {
	chunks, err := splitPages(pages, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return fmt.Errorf("failed to split pages into chunks: %w", err)
	}
	log.Info().Int("chunks", len(chunks)).Msg("created vector chunks")

	// Sequential on purpose: chunks are independent units of work, but the
	// job is offline and volume is small, so there is nothing to win by
	// racing the embedding provider's rate limits.
	for i := range chunks {
		vector, err := s.embedder.EmbedText(ctx, chunks[i].Text)
		if err != nil {
			return fmt.Errorf("could not embed chunk %d of %s: %w", i, chunks[i].SourceFile, err)
		}
		chunks[i].Embedding = vector
	}

	if err := s.store.Upsert(ctx, chunks); err != nil {
		return err
	}
	log.Info().Msg("knowledge base updated")
	return nil
}

// splitPages splits each page's text into overlapping windows, breaking on
// paragraph, sentence and word boundaries before falling back to a hard
// character cut. Source file and page number are carried onto every chunk.
func splitPages(pages []models.Page, chunkSize, chunkOverlap int) ([]models.Chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	var chunks []models.Chunk
	for _, page := range pages {
		pieces, err := splitter.SplitText(page.Text)
		if err != nil {
			return nil, err
		}
		for _, piece := range pieces {
			if strings.TrimSpace(piece) == "" {
				continue
			}
			chunks = append(chunks, models.Chunk{
				ID:         uuid.New().String(),
				Text:       piece,
				SourceFile: page.SourceFile,
				PageNumber: page.PageNumber,
			})
		}
	}
	return chunks, nil
}

// WatchDirectory keeps the index in sync with the documents directory until
// the context is cancelled. A created or modified PDF replaces its previous
// chunks; a removed or renamed one has its chunks deleted.
func (s *IndexingService) WatchDirectory(ctx context.Context, dirPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isPDF(event.Name) {
					continue
				}

				// Editors often write via a temp file plus rename, which
				// fires several events; Create and Write are handled the same.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Info().Str("file", event.Name).Msg("file modified, re-indexing")
					if err := s.store.DeleteBySource(ctx, filepath.Base(event.Name)); err != nil {
						log.Error().Err(err).Str("file", event.Name).Msg("failed to delete old chunks")
						continue
					}
					if err := s.IngestFile(ctx, event.Name); err != nil {
						log.Error().Err(err).Str("file", event.Name).Msg("failed to re-index file")
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Info().Str("file", event.Name).Msg("file removed, deleting chunks")
					if err := s.store.DeleteBySource(ctx, filepath.Base(event.Name)); err != nil {
						log.Error().Err(err).Str("file", event.Name).Msg("failed to delete chunks")
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := watcher.Add(dirPath); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dirPath, err)
	}
	log.Info().Str("dir", dirPath).Msg("watching documents directory")

	<-ctx.Done()
	return nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
