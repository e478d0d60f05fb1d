package registry

import (
	"fmt"
	"sync"

	"github.com/artifactengine/mce/internal/cache"
	"github.com/artifactengine/mce/internal/domain"
	"github.com/artifactengine/mce/internal/script"
)

// Registry is the in-memory artifact-id → Artifact map (C4), guarded by a
// single mutex, grounded on the teacher's model pool
// (internal/infra/engine/pool.go) map+mutex shape, the same file C1's
// LRU+TTL cache is grounded on.
type Registry struct {
	mu        sync.RWMutex
	artifacts map[string]*Artifact

	compiled *cache.CompileCache[script.Program]
}

// processCompileCache is the process-wide compile cache (C2) shared by
// every Registry.
var processCompileCache = cache.NewCompileCache[script.Program]()

// New creates an empty Registry backed by the process-wide compile cache (C2).
func New() *Registry {
	return &Registry{
		artifacts: make(map[string]*Artifact),
		compiled:  processCompileCache,
	}
}

// Set replaces or inserts the Artifact for def.ObjectID, discarding any
// prior Artifact and its namespace/cache (invariant 2).
func (r *Registry) Set(def domain.ArtifactDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts[def.ObjectID] = newArtifact(def, r, r.compiled)
}

// Get returns the Artifact for id, or domain.ErrNotFound if absent.
func (r *Registry) Get(id string) (*Artifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.artifacts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return a, nil
}

// Delete removes id from the registry. A no-op if id is absent.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.artifacts, id)
}

// Clear empties the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts = make(map[string]*Artifact)
}

// Exists reports whether id is currently registered.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.artifacts[id]
	return ok
}

// Reload atomically replaces the registry contents with a fresh Artifact
// per definition in defs (invariant 1: after reload, registry keyset ==
// catalog keyset).
func (r *Registry) Reload(defs []domain.ArtifactDef) {
	fresh := make(map[string]*Artifact, len(defs))
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range defs {
		fresh[d.ObjectID] = newArtifact(d, r, r.compiled)
	}
	r.artifacts = fresh
}

// ClearCache iterates every registered Artifact's private cache and clears
// it. The original implementation iterated dict keys instead of values and
// so never actually cleared anything; spec.md §9 names this an evident bug
// and this implementation fixes it by construction.
func (r *Registry) ClearCache() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.artifacts {
		if a.resultCache != nil {
			a.resultCache.Mu.Lock()
			a.resultCache.Clear()
			a.resultCache.Mu.Unlock()
		}
	}
}

// Sweep runs TTL eviction across every registered Artifact's private cache.
// Called by the janitor (C6) under the registry's own read lock, which is
// acceptable per §4.6: sweep is O(n) and CRUD is comparatively low-rate.
func (r *Registry) Sweep() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.artifacts {
		if a.resultCache != nil {
			a.resultCache.Mu.Lock()
			a.resultCache.Sweep()
			a.resultCache.Mu.Unlock()
		}
	}
}

// Keys returns every registered artifact id, in no particular order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.artifacts))
	for k := range r.artifacts {
		keys = append(keys, k)
	}
	return keys
}

// List returns the definition of every registered artifact.
func (r *Registry) List() []domain.ArtifactDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]domain.ArtifactDef, 0, len(r.artifacts))
	for _, a := range r.artifacts {
		defs = append(defs, a.Def())
	}
	return defs
}
