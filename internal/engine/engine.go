// Package engine owns the explicit engine handle design note §9 calls for:
// storage, registry, and janitor wired together and injected into the
// dispatcher, replacing the original's implicit global singleton.
// Grounded on the teacher's internal/daemon.Daemon wiring/lifecycle shape
// (New/Serve/Close), trimmed to this system's nine components.
package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/artifactengine/mce/internal/config"
	"github.com/artifactengine/mce/internal/debugsandbox"
	"github.com/artifactengine/mce/internal/janitor"
	"github.com/artifactengine/mce/internal/registry"
	"github.com/artifactengine/mce/internal/storage"
)

// Engine is the explicit, injectable handle for the whole system: C4
// Registry, C7 catalog sync against C's persistent Store, C6 Janitor, and
// C9 Debug Sandbox, all owned here instead of behind a package-level
// global.
type Engine struct {
	Config   config.Config
	Store    *storage.Store
	Registry *registry.Registry
	Sandbox  *debugsandbox.Sandbox

	janitor *janitor.Janitor
	cancel  context.CancelFunc
}

// New opens the persistent store described by the boot file at configPath,
// loads the catalog into a fresh registry (§4.4 reload), and wires the
// janitor and debug sandbox. binaryPath is the executable to re-exec for
// debug sandbox child processes (normally this process's own executable).
func New(configPath, binaryPath string) (*Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}

	store, err := storage.Open(cfg.EngineURL, cfg.EngineURLQuery)
	if err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}

	reg := registry.New()
	defs, err := store.Query(nil)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init engine: %w", err)
	}
	reg.Reload(defs)

	e := &Engine{
		Config:   cfg,
		Store:    store,
		Registry: reg,
		Sandbox:  debugsandbox.New(binaryPath, configPath),
	}
	e.janitor = janitor.New(reg, cfg.CheckInterval)
	return e, nil
}

// Reload re-reads the full catalog from storage and replaces the in-memory
// registry contents (the "reload" operation, §4.4).
func (e *Engine) Reload() error {
	defs, err := e.Store.Query(nil)
	if err != nil {
		return err
	}
	e.Registry.Reload(defs)
	return nil
}

// Start launches the janitor as a daemon goroutine tied to ctx, exactly as
// the teacher's daemon.Serve starts Pool.IdleReaper(ctx) (§5).
func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	go e.janitor.Run(ctx)
	log.Printf("[engine] started")
}

// Close stops the janitor and closes the persistent store. Safe to call
// even if Start was never called.
func (e *Engine) Close() error {
	if e.cancel != nil {
		e.cancel()
	}
	if e.Store != nil {
		return e.Store.Close()
	}
	return nil
}
