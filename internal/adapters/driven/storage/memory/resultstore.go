// Package memory provides in-memory implementations of driven ports.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/aobun/internal/core/domain"
	"github.com/custodia-labs/aobun/internal/core/ports/driven"
)

// Ensure ResultStore implements the interface.
var _ driven.ResultStore = (*ResultStore)(nil)

// ResultStore is an in-memory implementation of driven.ResultStore.
// Entries expire after ttl; when full, the oldest entry is evicted.
// Expired entries are swept on every Put.
type ResultStore struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]storedArtifact
	order      []string
	now        func() time.Time
}

type storedArtifact struct {
	artifact  domain.Artifact
	expiresAt time.Time
}

// NewResultStore creates a new in-memory result store.
func NewResultStore(ttl time.Duration, maxEntries int) *ResultStore {
	if ttl <= 0 {
		ttl = time.Duration(domain.DefaultResultTTLSeconds) * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = domain.DefaultResultMaxEntries
	}
	return &ResultStore{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]storedArtifact),
		now:        time.Now,
	}
}

// Put stores an artifact and returns its ID.
func (s *ResultStore) Put(_ context.Context, artifact domain.Artifact) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	for len(s.order) >= s.maxEntries {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}

	id := uuid.New().String()
	s.entries[id] = storedArtifact{
		artifact:  artifact,
		expiresAt: now.Add(s.ttl),
	}
	s.order = append(s.order, id)
	return id, nil
}

// Get retrieves an artifact by ID.
func (s *ResultStore) Get(_ context.Context, id string) (*domain.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.entries[id]
	if !ok || !s.now().Before(stored.expiresAt) {
		return nil, domain.ErrNotFound
	}
	artifact := stored.artifact
	return &artifact, nil
}

// Len returns the number of stored artifacts, including expired ones not yet swept.
func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// SetTTL changes the lifetime of artifacts stored from now on.
func (s *ResultStore) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = ttl
}

// sweep drops expired entries (caller must hold lock).
// Entries are kept in insertion order, but TTL changes mean expiry
// order can differ, so every entry is checked.
func (s *ResultStore) sweep(now time.Time) {
	kept := s.order[:0]
	for _, id := range s.order {
		if now.Before(s.entries[id].expiresAt) {
			kept = append(kept, id)
			continue
		}
		delete(s.entries, id)
	}
	s.order = kept
}
