package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// CompileMode distinguishes the two compilation modes a calc object's
// source can be compiled under.
type CompileMode string

const (
	ModeExec CompileMode = "exec"
	ModeEval CompileMode = "eval"
)

// CompileKey identifies one compiled unit by its source text, owning
// artifact, and mode — the process-wide compile cache key (§4.2).
type CompileKey struct {
	Source     string
	ArtifactID string
	Mode       CompileMode
}

// defaultCompileCacheSize matches the original's _compile_cache_size
// (1024 * 10).
const defaultCompileCacheSize = 1024 * 10

// CompileCache is a process-wide bounded LRU memo of compiled programs,
// keyed by (source, artifact id, mode). It avoids recompiling an
// artifact's body/expression on every evaluation when its text hasn't
// changed. Backed by hashicorp/golang-lru/v2, which handles its own
// internal locking — this package adds no synchronization of its own.
type CompileCache[P any] struct {
	cache *lru.Cache[CompileKey, P]
}

// NewCompileCache creates a compile cache with the default ~10000-entry
// capacity.
func NewCompileCache[P any]() *CompileCache[P] {
	c, err := lru.New[CompileKey, P](defaultCompileCacheSize)
	if err != nil {
		// Only returns an error for size <= 0, which never happens here.
		panic(err)
	}
	return &CompileCache[P]{cache: c}
}

// GetOrCompile returns the cached program for key, compiling and caching
// it via compileFn on a miss.
func (c *CompileCache[P]) GetOrCompile(key CompileKey, compileFn func() (P, error)) (P, error) {
	if p, ok := c.cache.Get(key); ok {
		return p, nil
	}
	p, err := compileFn()
	if err != nil {
		var zero P
		return zero, err
	}
	c.cache.Add(key, p)
	return p, nil
}

// Len reports the number of cached programs.
func (c *CompileCache[P]) Len() int {
	return c.cache.Len()
}
