package vector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

var ErrEmptyDocID = errors.New("document id must not be empty")

type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a store at dbPath. An empty path keeps everything in
// memory, which suits chunks that only live as long as a chat session.
func NewBadgerStore(dbPath string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dbPath)
	if dbPath == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func chunkPrefix(docID string) []byte {
	return []byte(fmt.Sprintf("doc:%s:chunk:", docID))
}

func chunkKey(docID string, index int) []byte {
	return []byte(fmt.Sprintf("doc:%s:chunk:%08d", docID, index))
}

func (s *BadgerStore) StoreChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.DocID == "" {
			return ErrEmptyDocID
		}

		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal chunk: %w", err)
		}
		if err := wb.Set(chunkKey(c.DocID, c.Index), data); err != nil {
			return fmt.Errorf("failed to stage chunk %d: %w", c.Index, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("failed to write chunks: %w", err)
	}
	return nil
}

func (s *BadgerStore) Search(ctx context.Context, docID string, embedding []float32, topK int) ([]Result, error) {
	if docID == "" {
		return nil, ErrEmptyDocID
	}
	if topK <= 0 {
		return nil, nil
	}

	var results []Result
	prefix := chunkPrefix(docID)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var c Chunk
				if err := json.Unmarshal(val, &c); err != nil {
					return err
				}
				if len(c.Embedding) == 0 {
					return nil
				}
				results = append(results, Result{Chunk: c, Score: CosineSimilarity(embedding, c.Embedding)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	return rank(results, topK), nil
}

func (s *BadgerStore) CountChunks(ctx context.Context, docID string) (int, error) {
	count := 0
	prefix := chunkPrefix(docID)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}

	return count, nil
}

func (s *BadgerStore) DeleteDocument(ctx context.Context, docID string) error {
	if docID == "" {
		return ErrEmptyDocID
	}

	var keys [][]byte
	prefix := chunkPrefix(docID)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to list chunks of %s: %w", docID, err)
	}

	// a write batch splits large deletes across transactions
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return fmt.Errorf("failed to delete chunk: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", docID, err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
