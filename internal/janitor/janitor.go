// Package janitor runs the background TTL sweep (C6): a single worker
// started at engine init that periodically sweeps every artifact's
// private cache. Grounded on the teacher's
// internal/infra/engine/pool.go Pool.IdleReaper(ctx) ticker-loop pattern.
package janitor

import (
	"context"
	"log"
	"time"

	"github.com/artifactengine/mce/internal/registry"
)

// defaultInterval matches spec.md §4.6's default check_interval of 600s.
const defaultInterval = 600 * time.Second

// Janitor periodically sweeps TTL-expired entries from every registered
// artifact's private cache.
type Janitor struct {
	reg      *registry.Registry
	interval time.Duration
}

// New creates a Janitor with the given sweep interval. An interval <= 0
// falls back to the 600-second default.
func New(reg *registry.Registry, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Janitor{reg: reg, interval: interval}
}

// Run blocks, sweeping every interval until ctx is canceled, exactly as
// the teacher's Pool.IdleReaper(ctx) runs as a daemon goroutine tied to the
// engine's lifetime context.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Printf("[janitor] started, interval=%s", j.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[janitor] stopping")
			return
		case <-ticker.C:
			j.reg.Sweep()
		}
	}
}
