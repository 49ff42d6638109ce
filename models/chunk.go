package models

// Page is the text of a single PDF page together with its origin. Pages are
// the unit the ingestion job hands to the splitter, so the source filename
// and page number survive into chunk metadata.
type Page struct {
	Text       string
	SourceFile string
	PageNumber int
}

// Chunk is a bounded slice of manual text stored in the vector index. Chunks
// are created by ingestion and never mutated; re-ingesting the same corpus
// produces new chunks with fresh IDs.
type Chunk struct {
	ID         string
	Text       string
	SourceFile string
	PageNumber int
	Embedding  []float32
}

// ScoredChunk is a retrieval hit: a chunk plus its similarity score for the
// query it was retrieved against. Ephemeral, produced per request.
type ScoredChunk struct {
	Text       string
	SourceFile string
	PageNumber int
	Score      float32
}
