// Package memory provides in-process adapters for the sequencer ports.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/epsilon/pkg/domain"
)

type entry struct {
	lang    string
	expires time.Time // zero means no expiration
}

// Store implements ports.PreferenceStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]entry
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the retention of preferences. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists the preference in memory.
func (s *Store) Save(ctx context.Context, clientID, lang string) error {
	e := entry{lang: lang}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[clientID] = e
	return nil
}

// Load retrieves the preference from memory.
func (s *Store) Load(ctx context.Context, clientID string) (string, error) {
	s.mu.RLock()
	e, ok := s.data[clientID]
	s.mu.RUnlock()

	if !ok || s.expired(e) {
		return "", domain.ErrPreferenceNotFound
	}
	return e.lang, nil
}

// Delete removes the preference.
func (s *Store) Delete(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, clientID)
	return nil
}

// List returns the clients with a live preference, pruning expired ones.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := make([]string, 0, len(s.data))
	for id, e := range s.data {
		if s.expired(e) {
			delete(s.data, id)
			continue
		}
		clients = append(clients, id)
	}
	return clients, nil
}

func (s *Store) expired(e entry) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}
