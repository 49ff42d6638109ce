package services

import (
	"context"
	"encoding/json"
	"fmt"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/rs/zerolog/log"

	"github.com/carcareai/carlo/models"
)

// VectorStore is the contract the pipeline needs from the vector index:
// upsert at ingestion time, k-NN query at chat time, and deletion by source
// file for the watch-mode re-index path.
type VectorStore interface {
	Upsert(ctx context.Context, chunks []models.Chunk) error
	Query(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error)
	DeleteBySource(ctx context.Context, sourceFile string) error
	Count(ctx context.Context) (int, error)
}

type chromaStore struct {
	collection chromago.Collection
}

// NewChromaStore wraps a Chroma collection as a VectorStore.
func NewChromaStore(collection chromago.Collection) VectorStore {
	return &chromaStore{collection: collection}
}

// Upsert adds the chunks one record at a time. The first failing record
// aborts the whole call; the ingestion job treats that as a fatal run error.
func (s *chromaStore) Upsert(ctx context.Context, chunks []models.Chunk) error {
	for _, chunk := range chunks {
		embedding := embeddings.NewEmbeddingFromFloat32(chunk.Embedding)
		metadata := chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source_file", chunk.SourceFile),
			chromago.NewIntAttribute("page_number", int64(chunk.PageNumber)),
		)
		err := s.collection.Add(ctx,
			chromago.WithIDs(chromago.DocumentID(chunk.ID)),
			chromago.WithTexts(chunk.Text),
			chromago.WithEmbeddings(embedding),
			chromago.WithMetadatas(metadata),
		)
		if err != nil {
			return fmt.Errorf("failed to add chunk %s to chromadb: %w", chunk.ID, err)
		}
	}
	return nil
}

// Query returns up to k chunks nearest to the given vector, ordered by
// descending similarity.
func (s *chromaStore) Query(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error) {
	embedding := embeddings.NewEmbeddingFromFloat32(vector)

	results, err := s.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embedding),
		chromago.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()

	if len(documentGroups) == 0 {
		return nil, nil
	}
	texts := make([]string, len(documentGroups[0]))
	for i, doc := range documentGroups[0] {
		texts[i] = doc.ContentString()
	}
	var metadatas []chromago.DocumentMetadata
	if len(metadataGroups) > 0 {
		metadatas = metadataGroups[0]
	}
	var distances []float32
	if len(distanceGroups) > 0 {
		distances = make([]float32, len(distanceGroups[0]))
		for i, d := range distanceGroups[0] {
			distances[i] = float32(d)
		}
	}
	return parseScoredChunks(texts, metadatas, distances), nil
}

// parseScoredChunks converts one query group into ScoredChunks, preserving
// the index's nearest-first order. Chroma reports distances (smaller is
// closer); the score exposed to callers is 1 - distance so they see
// descending similarity.
func parseScoredChunks(texts []string, metadatas []chromago.DocumentMetadata, distances []float32) []models.ScoredChunk {
	var chunks []models.ScoredChunk
	for i, text := range texts {
		if text == "" {
			continue
		}
		chunk := models.ScoredChunk{Text: text}

		if i < len(metadatas) && metadatas[i] != nil {
			// DocumentMetadata exposes no map accessor; round-trip through
			// JSON to read the attributes back out.
			if jsonBytes, err := json.Marshal(metadatas[i]); err == nil {
				var metaMap map[string]interface{}
				if err := json.Unmarshal(jsonBytes, &metaMap); err == nil {
					if source, ok := metaMap["source_file"].(string); ok {
						chunk.SourceFile = source
					}
					if page, ok := metaMap["page_number"].(float64); ok {
						chunk.PageNumber = int(page)
					}
				} else {
					log.Warn().Err(err).Msg("could not unmarshal chunk metadata")
				}
			}
		}
		if i < len(distances) {
			chunk.Score = 1 - distances[i]
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// DeleteBySource removes every chunk that came from the given file.
func (s *chromaStore) DeleteBySource(ctx context.Context, sourceFile string) error {
	where := chromago.EqString("source_file", sourceFile)
	if err := s.collection.Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("failed to delete chunks for %s: %w", sourceFile, err)
	}
	return nil
}

// Count reports how many chunks the collection currently holds.
func (s *chromaStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}
