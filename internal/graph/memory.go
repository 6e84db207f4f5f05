package graph

import (
	"context"

	"github.com/ppiankov/ontoguard/internal/model"
)

// MemoryBackend keeps nothing; the Store's in-memory state is the graph.
type MemoryBackend struct{}

// NewMemoryBackend returns a non-durable backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Load returns an empty graph.
func (*MemoryBackend) Load(context.Context) (model.Snapshot, error) {
	return model.Snapshot{}, nil
}

// Commit accepts every delta.
func (*MemoryBackend) Commit(context.Context, Delta) error {
	return nil
}

// Close is a no-op.
func (*MemoryBackend) Close() error {
	return nil
}
