package vector

import "context"

// ChunkStore holds embedded document chunks. Chunks belong to exactly one
// document and are searched within that document only.
type ChunkStore interface {
	// StoreChunks writes chunks, replacing any with the same document and index
	StoreChunks(ctx context.Context, chunks []Chunk) error

	// Search returns up to topK chunks of docID ranked by cosine similarity
	Search(ctx context.Context, docID string, embedding []float32, topK int) ([]Result, error)

	// CountChunks returns the number of chunks stored for docID
	CountChunks(ctx context.Context, docID string) (int, error)

	// DeleteDocument removes every chunk of docID
	DeleteDocument(ctx context.Context, docID string) error

	Close() error
}

type Chunk struct {
	DocID     string    `json:"doc_id"`
	Index     int       `json:"index"`
	Page      int       `json:"page"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

type Result struct {
	Chunk
	Score float32
}
