package session

import (
	"errors"
	"time"

	"github.com/patrickmn/go-cache"

	"agentic-rag/internal/logging"
	"agentic-rag/internal/rag"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps chat sessions in memory. A session idle for longer than the
// TTL is evicted and reset, which drops its indexed document.
type Store struct {
	cache *cache.Cache
}

func NewStore(ttl time.Duration) *Store {
	cleanup := ttl / 6
	if cleanup < time.Second {
		cleanup = time.Second
	}

	c := cache.New(ttl, cleanup)
	c.OnEvicted(func(id string, v interface{}) {
		if s, ok := v.(*rag.Session); ok {
			logging.Info("session %s evicted", id)
			s.Reset()
		}
	})
	return &Store{cache: c}
}

// Create starts a new empty session
func (st *Store) Create() *rag.Session {
	s := rag.NewSession()
	st.cache.Set(s.ID, s, cache.DefaultExpiration)
	logging.Info("session %s created", s.ID)
	return s
}

// Get returns the session and pushes back its expiry
func (st *Store) Get(id string) (*rag.Session, error) {
	v, found := st.cache.Get(id)
	if !found {
		return nil, ErrSessionNotFound
	}
	s := v.(*rag.Session)
	st.cache.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// Delete removes and resets the session
func (st *Store) Delete(id string) error {
	if _, found := st.cache.Get(id); !found {
		return ErrSessionNotFound
	}
	st.cache.Delete(id)
	return nil
}

func (st *Store) Count() int {
	return st.cache.ItemCount()
}

// Close resets every session
func (st *Store) Close() {
	for id := range st.cache.Items() {
		st.cache.Delete(id)
	}
}
