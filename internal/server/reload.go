package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/ontoguard/internal/decide"
	"github.com/ppiankov/ontoguard/internal/keyword"
	"github.com/ppiankov/ontoguard/internal/mirror"
	"github.com/ppiankov/ontoguard/internal/policy"
)

// Runtime loads policy, vocabulary and mirror sinks into an orchestrator.
type Runtime struct {
	Orch           *decide.Orchestrator
	PolicyPath     string
	VocabularyPath string
	Logger         *slog.Logger
}

// Reload atomically swaps policy, vocabulary and mirror dispatcher. On any
// error the orchestrator keeps its current configuration.
func (r *Runtime) Reload() error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg, hash, err := policy.LoadConfigWithHash(r.PolicyPath)
	if err != nil {
		return fmt.Errorf("failed to reload policy config: %w", err)
	}
	vocab, err := keyword.Load(r.VocabularyPath)
	if err != nil {
		return fmt.Errorf("failed to reload vocabulary: %w", err)
	}
	sinks, err := mirror.Build(cfg.Mirrors)
	if err != nil {
		return fmt.Errorf("failed to build mirrors: %w", err)
	}

	r.Orch.SetPolicy(cfg, hash)
	r.Orch.SetVocabulary(vocab)
	if prev := r.Orch.SetDispatcher(mirror.NewDispatcher(sinks, logger)); prev != nil {
		go func() {
			if err := prev.Close(); err != nil {
				logger.Warn("closing previous mirrors", "error", err)
			}
		}()
	}

	logger.Info("configuration loaded", "policy_hash", hash, "terms", vocab.Len(), "mirrors", len(sinks))
	return nil
}

// Reloader watches policy and vocabulary files for changes and triggers hot-reload.
type Reloader struct {
	watcher  *fsnotify.Watcher
	reload   func() error
	logger   *slog.Logger
	paths    []string
	debounce time.Duration
}

// NewReloader creates a file watcher for the given paths. Paths that do not
// exist yet are skipped.
func NewReloader(reload func() error, logger *slog.Logger, paths []string) (*Reloader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	var watched []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := watcher.Add(p); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %q: %w", p, err)
		}
		watched = append(watched, p)
	}

	return &Reloader{
		watcher:  watcher,
		reload:   reload,
		logger:   logger,
		paths:    watched,
		debounce: 500 * time.Millisecond,
	}, nil
}

// Paths returns the files actually being watched.
func (r *Reloader) Paths() []string {
	return r.paths
}

// Run watches for file changes and reloads. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait after the last write before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(r.debounce, func() {
					if err := r.reload(); err != nil {
						r.logger.Error("hot-reload failed", "error", err)
					} else {
						r.logger.Info("hot-reload: configuration reloaded", "file", event.Name)
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("file watcher error", "error", err)
		}
	}
}
