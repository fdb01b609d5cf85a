package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"agentic-rag/internal/document"
	"agentic-rag/internal/logging"
	"agentic-rag/internal/vector"
)

// Embedder turns texts into vectors, one per text, in order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ExtractFunc reads a document from disk
type ExtractFunc func(path string) (*document.Document, error)

type Options struct {
	ChunkSize      int
	ChunkOverlap   int
	TopK           int
	EmbedBatchSize int
	Workers        int
	ExcerptLength  int
}

func DefaultOptions() Options {
	return Options{
		ChunkSize:      document.DefaultChunkSize,
		ChunkOverlap:   document.DefaultChunkOverlap,
		TopK:           5,
		EmbedBatchSize: 16,
		Workers:        4,
		ExcerptLength:  800,
	}
}

// Builder turns an uploaded PDF into a searchable Index
type Builder struct {
	store    vector.ChunkStore
	embedder Embedder
	extract  ExtractFunc
	chunker  *document.Chunker
	opts     Options
}

func NewBuilder(store vector.ChunkStore, embedder Embedder, opts Options) *Builder {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = def.EmbedBatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}

	return &Builder{
		store:    store,
		embedder: embedder,
		extract:  document.ExtractPDF,
		chunker:  document.NewChunker(opts.ChunkSize, opts.ChunkOverlap),
		opts:     opts,
	}
}

// WithExtractor replaces the PDF reader, mainly for tests
func (b *Builder) WithExtractor(fn ExtractFunc) *Builder {
	b.extract = fn
	return b
}

// Build extracts, chunks, embeds and stores the document at path. On failure
// nothing of the document is left in the store.
func (b *Builder) Build(ctx context.Context, path string) (ix *Index, err error) {
	start := time.Now()

	doc, err := b.extract(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document: %w", err)
	}

	chunks := b.chunker.ChunkDocument(doc)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s: %w", doc.FileName, document.ErrNoText)
	}

	id := uuid.NewString()
	logging.Info("indexing %s as %s: %d pages, %d chunks", doc.FileName, id, doc.PageCount(), len(chunks))

	defer func() {
		if err == nil {
			return
		}
		// the caller's context may be what failed, so clean up with a fresh one
		if derr := b.store.DeleteDocument(context.Background(), id); derr != nil {
			logging.Error("failed to clean up partial index %s: %v", id, derr)
		}
	}()

	p := pool.New().
		WithMaxGoroutines(b.opts.Workers).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for batchStart := 0; batchStart < len(chunks); batchStart += b.opts.EmbedBatchSize {
		batch := chunks[batchStart:min(batchStart+b.opts.EmbedBatchSize, len(chunks))]
		p.Go(func(ctx context.Context) error {
			return b.embedAndStore(ctx, id, batch)
		})
	}

	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", doc.FileName, err)
	}

	logging.Info("indexed %s in %s", doc.FileName, time.Since(start).Round(time.Millisecond))

	return &Index{
		id:        id,
		info:      newInfo(doc, len(chunks)),
		store:     b.store,
		embedder:  b.embedder,
		excerpter: document.NewExcerpter(),
		topK:      b.opts.TopK,
		excerpt:   b.opts.ExcerptLength,
	}, nil
}

func (b *Builder) embedAndStore(ctx context.Context, docID string, batch []document.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Content
	}

	vecs, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks %d-%d: %w", batch[0].Index, batch[len(batch)-1].Index, err)
	}
	if len(vecs) != len(batch) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(batch))
	}

	stored := make([]vector.Chunk, len(batch))
	for i, c := range batch {
		stored[i] = vector.Chunk{
			DocID:     docID,
			Index:     c.Index,
			Page:      c.Page,
			Content:   c.Content,
			Embedding: vecs[i],
		}
	}
	return b.store.StoreChunks(ctx, stored)
}

// Passage is a piece of the document relevant to a query
type Passage struct {
	Page  int     `json:"page"`
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

// Info is what the presentation layer shows about an indexed document
type Info struct {
	FileName string `json:"file_name"`
	Pages    int    `json:"pages"`
	Chunks   int    `json:"chunks"`
	Size     int64  `json:"size"`
	Hash     string `json:"hash"`
	Snippet  string `json:"snippet"`
}

const snippetLength = 600

func newInfo(doc *document.Document, chunks int) Info {
	return Info{
		FileName: doc.FileName,
		Pages:    doc.PageCount(),
		Chunks:   chunks,
		Size:     doc.Size,
		Hash:     doc.Hash,
		Snippet:  doc.Snippet(snippetLength),
	}
}

var ErrClosed = errors.New("index is closed")

// Index is a searchable handle over one uploaded document
type Index struct {
	id        string
	info      Info
	store     vector.ChunkStore
	embedder  Embedder
	excerpter *document.Excerpter
	topK      int
	excerpt   int

	mu     sync.RWMutex
	closed bool
}

func (ix *Index) ID() string {
	return ix.id
}

func (ix *Index) Info() Info {
	return ix.info
}

// Query returns the passages most similar to text, best first
func (ix *Index) Query(ctx context.Context, text string) ([]Passage, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.closed {
		return nil, ErrClosed
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("query must not be empty")
	}

	vecs, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vecs))
	}

	results, err := ix.store.Search(ctx, ix.id, vecs[0], ix.topK)
	if err != nil {
		return nil, err
	}

	passages := make([]Passage, len(results))
	for i, r := range results {
		passages[i] = Passage{
			Page:  r.Page,
			Text:  ix.excerpter.Excerpt(r.Content, text, ix.excerpt),
			Score: r.Score,
		}
	}

	logging.Debug("index %s: query %q matched %d passages", ix.id, text, len(passages))
	return passages, nil
}

// Close drops the document's chunks. Later calls are no-ops.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return nil
	}
	ix.closed = true
	return ix.store.DeleteDocument(context.Background(), ix.id)
}
