package mirror

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ppiankov/ontoguard/internal/model"
)

// Dispatcher fans snapshots out to every sink. Once closed it drops
// further notifications.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher creates a Dispatcher for the given sinks.
// Returns nil if sinks is empty (callers should nil-check).
func NewDispatcher(sinks []Sink, logger *slog.Logger) *Dispatcher {
	if len(sinks) == 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sinks: sinks, logger: logger}
}

// Notify sends the snapshot to all sinks.
// Fires goroutines, does not block the caller.
func (d *Dispatcher) Notify(snap model.Snapshot) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Debug("mirror dispatcher closed, update dropped")
		return
	}
	d.wg.Add(len(d.sinks))
	d.mu.Unlock()

	for _, s := range d.sinks {
		go d.send(s, snap)
	}
}

func (d *Dispatcher) send(s Sink, snap model.Snapshot) {
	defer d.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := s.Send(ctx, snap); err != nil {
		d.logger.Warn("mirror update failed", "sink", s.Name(), "error", err)
		return
	}
	d.logger.Debug("mirror updated", "sink", s.Name(),
		"concepts", len(snap.Concepts), "relationships", len(snap.Relationships))
}

// Wait blocks until in-flight notifications finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close waits for in-flight notifications and releases every sink.
// Later calls are no-ops.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
	return closeAll(d.sinks)
}
