package services

import (
	"testing"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manualMetadata(sourceFile string, pageNumber int64) chromago.DocumentMetadata {
	return chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("source_file", sourceFile),
		chromago.NewIntAttribute("page_number", pageNumber),
	)
}

func TestParseScoredChunksOrdersByDescendingScore(t *testing.T) {
	texts := []string{"closest match", "second match", "furthest match"}
	metadatas := []chromago.DocumentMetadata{
		manualMetadata("engine.pdf", 3),
		manualMetadata("engine.pdf", 9),
		manualMetadata("brakes.pdf", 1),
	}
	// Chroma returns nearest first, so distances arrive ascending.
	distances := []float32{0.1, 0.3, 0.5}

	chunks := parseScoredChunks(texts, metadatas, distances)

	require.Len(t, chunks, 3)
	for i := 0; i < len(chunks)-1; i++ {
		assert.GreaterOrEqual(t, chunks[i].Score, chunks[i+1].Score)
	}
	assert.InDelta(t, 0.9, chunks[0].Score, 1e-6)
	assert.InDelta(t, 0.5, chunks[2].Score, 1e-6)
	assert.Equal(t, "closest match", chunks[0].Text)
}

func TestParseScoredChunksReadsMetadata(t *testing.T) {
	chunks := parseScoredChunks(
		[]string{"coolant mix ratios"},
		[]chromago.DocumentMetadata{manualMetadata("cooling.pdf", 7)},
		[]float32{0.2},
	)

	require.Len(t, chunks, 1)
	assert.Equal(t, "cooling.pdf", chunks[0].SourceFile)
	assert.Equal(t, 7, chunks[0].PageNumber)
}

func TestParseScoredChunksSkipsEmptyDocuments(t *testing.T) {
	chunks := parseScoredChunks(
		[]string{"", "tire pressure table"},
		[]chromago.DocumentMetadata{nil, manualMetadata("tires.pdf", 2)},
		[]float32{0.1, 0.4},
	)

	require.Len(t, chunks, 1)
	assert.Equal(t, "tire pressure table", chunks[0].Text)
	assert.Equal(t, "tires.pdf", chunks[0].SourceFile)
}

func TestParseScoredChunksToleratesMissingGroups(t *testing.T) {
	// Metadata and distances can be short or absent entirely; the text
	// still comes through with zero-valued fields.
	chunks := parseScoredChunks([]string{"bare text"}, nil, nil)

	require.Len(t, chunks, 1)
	assert.Equal(t, "bare text", chunks[0].Text)
	assert.Zero(t, chunks[0].Score)
	assert.Empty(t, chunks[0].SourceFile)
}
