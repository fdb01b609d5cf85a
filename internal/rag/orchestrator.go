package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agentic-rag/internal/document"
	"agentic-rag/internal/index"
	"agentic-rag/internal/logging"
	"agentic-rag/internal/models"
)

// Indexer turns a PDF on disk into a Document
type Indexer interface {
	Index(ctx context.Context, path string) (Document, error)
}

type IndexerFunc func(ctx context.Context, path string) (Document, error)

func (f IndexerFunc) Index(ctx context.Context, path string) (Document, error) {
	return f(ctx, path)
}

// FromBuilder adapts an index builder
func FromBuilder(b *index.Builder) Indexer {
	return IndexerFunc(func(ctx context.Context, path string) (Document, error) {
		ix, err := b.Build(ctx, path)
		if err != nil {
			return nil, err
		}
		return ix, nil
	})
}

// Observer is told about every turn appended to a session's history
type Observer func(s *Session, t models.Turn)

// Orchestrator drives uploads and chat turns for sessions
type Orchestrator struct {
	indexer  Indexer
	builder  Builder
	observer Observer
}

func NewOrchestrator(indexer Indexer, builder Builder) *Orchestrator {
	return &Orchestrator{indexer: indexer, builder: builder}
}

// WithObserver sets the callback that sees appended turns
func (o *Orchestrator) WithObserver(fn Observer) *Orchestrator {
	o.observer = fn
	return o
}

// Upload indexes an uploaded PDF into the session. The bytes are written to a
// temporary directory that is removed once indexing ends. It reports false
// without indexing if the session already has a document.
func (o *Orchestrator) Upload(ctx context.Context, s *Session, name string, data []byte) (bool, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if !document.IsPDF(name) {
		return false, fmt.Errorf("%s: %w", name, document.ErrNotPDF)
	}

	return o.withDocumentSlot(s, func(generation int) (bool, error) {
		dir, err := os.MkdirTemp("", "agentic-rag-upload-*")
		if err != nil {
			return false, fmt.Errorf("failed to create upload directory: %w", err)
		}
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0600); err != nil {
			return false, fmt.Errorf("failed to store upload: %w", err)
		}

		return o.index(ctx, s, generation, path)
	})
}

// UploadFile indexes a PDF that is already on disk
func (o *Orchestrator) UploadFile(ctx context.Context, s *Session, path string) (bool, error) {
	if !document.IsPDF(path) {
		return false, fmt.Errorf("%s: %w", filepath.Base(path), document.ErrNotPDF)
	}

	return o.withDocumentSlot(s, func(generation int) (bool, error) {
		return o.index(ctx, s, generation, path)
	})
}

func (o *Orchestrator) withDocumentSlot(s *Session, fn func(generation int) (bool, error)) (bool, error) {
	if err := s.acquire(); err != nil {
		return false, err
	}
	defer s.release()

	doc, pipeline, generation := s.snapshot()
	if doc != nil {
		logging.Info("session %s: document %s already indexed, skipping upload", s.ID, doc.Info().FileName)
		return false, nil
	}
	if pipeline != nil {
		logging.Warn("session %s: pipeline was built without a document, clear the chat to use the new one", s.ID)
	}

	return fn(generation)
}

func (o *Orchestrator) index(ctx context.Context, s *Session, generation int, path string) (bool, error) {
	start := time.Now()
	doc, err := o.indexer.Index(ctx, path)
	if err != nil {
		logging.Error("session %s: indexing %s failed: %v", s.ID, filepath.Base(path), err)
		return false, err
	}

	if !s.setDocument(generation, doc) {
		// reset while indexing
		_ = doc.Close()
		return false, nil
	}

	logging.Info("session %s: indexed %s in %s", s.ID, doc.Info().FileName, time.Since(start).Round(time.Millisecond))
	return true, nil
}

// Submit runs one chat turn and returns the assistant's answer. The user's
// turn is recorded before the pipeline runs and stays in the history even if
// the run fails. The assistant's turn is recorded only on success.
func (o *Orchestrator) Submit(ctx context.Context, s *Session, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	if err := s.acquire(); err != nil {
		return "", err
	}
	defer s.release()

	user := models.NewTurn(models.RoleUser, prompt)
	generation := s.append(user)
	o.notify(s, user)

	pipeline, err := o.pipelineFor(s)
	if err != nil {
		logging.Error("session %s: %v", s.ID, err)
		return "", err
	}

	start := time.Now()
	out, err := pipeline.Kickoff(ctx, map[string]string{"query": prompt})
	if err != nil {
		logging.Error("session %s: pipeline failed after %s: %v", s.ID, time.Since(start).Round(time.Millisecond), err)
		return "", fmt.Errorf("pipeline failed: %w", err)
	}

	answer := out.Raw
	assistant := models.NewTurn(models.RoleAssistant, answer)
	if !s.appendIfCurrent(generation, assistant) {
		logging.Info("session %s: reset during turn, answer discarded", s.ID)
		return answer, nil
	}
	o.notify(s, assistant)

	logging.Info("session %s: turn answered in %s", s.ID, time.Since(start).Round(time.Millisecond))
	return answer, nil
}

// pipelineFor returns the session's pipeline, building it on first use
func (o *Orchestrator) pipelineFor(s *Session) (Pipeline, error) {
	doc, pipeline, generation := s.snapshot()
	if pipeline != nil {
		return pipeline, nil
	}

	pipeline, err := o.builder.Build(doc)
	if err != nil {
		if !IsFatal(err) {
			err = &ConfigError{Op: "build pipeline", Err: err}
		}
		return nil, err
	}
	if pipeline == nil {
		return nil, &ConfigError{Op: "build pipeline", Err: errors.New("builder returned no pipeline")}
	}

	s.setPipeline(generation, pipeline)
	return pipeline, nil
}

func (o *Orchestrator) notify(s *Session, t models.Turn) {
	if o.observer != nil {
		o.observer(s, t)
	}
}
