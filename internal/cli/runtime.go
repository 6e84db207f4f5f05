package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ppiankov/ontoguard/internal/audit"
	"github.com/ppiankov/ontoguard/internal/config"
	"github.com/ppiankov/ontoguard/internal/decide"
	"github.com/ppiankov/ontoguard/internal/graph"
	"github.com/ppiankov/ontoguard/internal/interpret"
	"github.com/ppiankov/ontoguard/internal/server"
)

// appRuntime bundles the long-lived pieces every command that decides needs.
type appRuntime struct {
	store    *graph.Store
	orch     *decide.Orchestrator
	auditLog *audit.Log
	reload   *server.Runtime
}

// openRuntime opens the graph store and audit log and loads policy,
// vocabulary and mirrors from the paths in cfg.
func openRuntime(ctx context.Context, cfg *config.Config) (*appRuntime, error) {
	logger := slog.Default()

	var backend graph.Backend
	switch cfg.Graph.Backend {
	case config.BackendMemory:
		backend = graph.NewMemoryBackend()
	default:
		b, err := graph.OpenSQLite(cfg.Graph.Path)
		if err != nil {
			return nil, err
		}
		backend = b
	}

	store, err := graph.Open(ctx, backend)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("open graph: %w", err)
	}

	rt := &appRuntime{store: store}
	opts := []decide.Option{decide.WithLogger(logger)}
	if cfg.Audit.Enabled {
		rt.auditLog, err = audit.Open(cfg.Audit.Path)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		opts = append(opts, decide.WithAuditLog(rt.auditLog))
	}

	rt.orch = decide.New(store, opts...)
	rt.reload = &server.Runtime{
		Orch:           rt.orch,
		PolicyPath:     cfg.Policy,
		VocabularyPath: cfg.Vocabulary,
		Logger:         logger,
	}
	if err := rt.reload.Reload(); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// oracleFor returns nil when no oracle endpoint is configured.
func oracleFor(cfg *config.Config) interpret.Oracle {
	if cfg.Oracle.APIURL == "" {
		return nil
	}
	return interpret.New(cfg.Oracle)
}

// Close flushes mirrors and releases the audit log and graph store.
func (rt *appRuntime) Close() error {
	var errs []error
	if d := rt.orch.SetDispatcher(nil); d != nil {
		errs = append(errs, d.Close())
	}
	if rt.auditLog != nil {
		errs = append(errs, rt.auditLog.Close())
	}
	errs = append(errs, rt.store.Close())
	return errors.Join(errs...)
}
