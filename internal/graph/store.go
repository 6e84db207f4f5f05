// Package graph is the knowledge graph of agent types, capabilities, tools
// and risk levels. Nodes are created by upsert-by-name and never deleted;
// every Update lands in the backend and in memory together or not at all.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ppiankov/ontoguard/internal/model"
)

// Backend persists committed deltas.
type Backend interface {
	Load(ctx context.Context) (model.Snapshot, error)
	Commit(ctx context.Context, d Delta) error
	Close() error
}

// Store is the shared knowledge graph. A single lock serialises updates,
// including the backend commit, so concurrent requests for the same agent
// type never race on instance creation or risk replacement.
type Store struct {
	mu      sync.Mutex
	st      *state
	backend Backend
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc overrides node id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// Open loads the backend's graph into memory.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	snap, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %w", ErrStoreUnavailable, err)
	}

	s := &Store{
		st:      stateFromSnapshot(snap),
		backend: backend,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// NewMemory returns an empty, non-durable store.
func NewMemory(opts ...Option) *Store {
	s, _ := Open(context.Background(), NewMemoryBackend(), opts...)
	return s
}

// Update runs fn in a transaction. If fn returns an error nothing is
// written. Otherwise the delta is committed to the backend and only then
// applied in memory. fn must not call other Store methods.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newTx(s.st, s.newID)
	err := fn(tx)
	tx.closed = true
	if err != nil {
		return err
	}

	d := tx.delta()
	if d.Empty() {
		return nil
	}
	if err := s.backend.Commit(ctx, d); err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s.st.apply(d)
	return nil
}

// Snapshot returns the full committed graph.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.snapshot()
}

// CurrentRiskLevels returns the committed risk level names of an instance.
func (s *Store) CurrentRiskLevels(instanceID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.riskLevels(instanceID)
}

// Concept looks up a committed concept by name.
func (s *Store) Concept(name string) (model.Concept, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.conceptsByName[ConceptName(name)]
	return c, ok
}

// InstanceOf returns the committed instance of an agent type concept.
func (s *Store) InstanceOf(conceptID string) (model.Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.st.instanceByOwner[conceptID]
	if !ok {
		return model.Instance{}, false
	}
	return s.st.instancesByID[id], true
}

// Stats counts committed nodes and edges.
type Stats struct {
	Concepts      int `json:"concepts"`
	Instances     int `json:"instances"`
	Relationships int `json:"relationships"`
}

// Stats returns committed graph sizes.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Concepts:      len(s.st.conceptsByID),
		Instances:     len(s.st.instancesByID),
		Relationships: len(s.st.edges),
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
