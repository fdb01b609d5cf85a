package rag

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"agentic-rag/internal/index"
	"agentic-rag/internal/logging"
	"agentic-rag/internal/models"
)

// Session is the private state of one chat: its history, the indexed
// document and the pipeline built for it. Operations on a session run one
// at a time.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	history  []models.Turn
	doc      Document
	pipeline Pipeline
	busy     bool
	// generation changes on every reset so a turn that was in flight while
	// the session was cleared does not write into the new history
	generation int
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// History returns a copy of the conversation so far
func (s *Session) History() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Turn(nil), s.history...)
}

// DocumentInfo describes the indexed document, if there is one
func (s *Session) DocumentInfo() (index.Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return index.Info{}, false
	}
	return s.doc.Info(), true
}

func (s *Session) HasDocument() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc != nil
}

// Pipeline returns the session's pipeline or nil if none has been built
func (s *Session) Pipeline() Pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Reset clears the history and drops the document and pipeline
func (s *Session) Reset() {
	s.mu.Lock()
	doc := s.doc
	s.history = nil
	s.doc = nil
	s.pipeline = nil
	s.generation++
	s.mu.Unlock()

	if doc != nil {
		if err := doc.Close(); err != nil {
			logging.Warn("session %s: failed to close document: %v", s.ID, err)
		}
	}
	logging.Info("session %s reset", s.ID)
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrSessionBusy
	}
	s.busy = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *Session) append(t models.Turn) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, t)
	return s.generation
}

// appendIfCurrent appends t unless the session was reset after generation
func (s *Session) appendIfCurrent(generation int, t models.Turn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return false
	}
	s.history = append(s.history, t)
	return true
}

// setDocument stores doc unless one already exists or the session was reset
func (s *Session) setDocument(generation int, doc Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc != nil || s.generation != generation {
		return false
	}
	s.doc = doc
	return true
}

func (s *Session) snapshot() (doc Document, pipeline Pipeline, generation int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc, s.pipeline, s.generation
}

func (s *Session) setPipeline(generation int, p Pipeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == generation && s.pipeline == nil {
		s.pipeline = p
	}
}
