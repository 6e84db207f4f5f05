// Package mirror copies committed graph snapshots to downstream systems.
// Mirroring is never on the decision path: failures are logged and dropped.
package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/ontoguard/internal/model"
)

// Sink receives the full graph after each committed update.
type Sink interface {
	Name() string
	Send(ctx context.Context, snap model.Snapshot) error
	Close() error
}

// Build constructs one sink per config. Redis sinks connect eagerly so a
// bad URL is reported at startup.
func Build(configs []SinkConfig) ([]Sink, error) {
	var sinks []Sink
	for _, cfg := range configs {
		var (
			s   Sink
			err error
		)
		switch cfg.Type {
		case "", TypeWebhook:
			s, err = NewWebhookSink(cfg)
		case TypeRedis:
			s, err = NewRedisSink(cfg)
		default:
			err = fmt.Errorf("unknown mirror type %q", cfg.Type)
		}
		if err != nil {
			closeAll(sinks)
			return nil, fmt.Errorf("mirror %s: %w", cfg.Name(), err)
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

func closeAll(sinks []Sink) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
