// Package registry holds the in-memory artifact catalog (C4), the
// per-artifact namespace lifecycle (C3), and the kernel functions every
// namespace is seeded with, grounded on the teacher's
// internal/infra/engine/pool.go for both the map+mutex shape and the
// cache-holding-instance pattern.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/artifactengine/mce/internal/cache"
	"github.com/artifactengine/mce/internal/domain"
	"github.com/artifactengine/mce/internal/script"
)

// Evaluator is the surface an Artifact needs from the current invocation's
// evaluator to run calc_object_execute/coe. Defined here (not imported from
// package evaluator) so registry has no dependency on evaluator; evaluator
// depends on registry instead.
type Evaluator interface {
	Eval(id string, kwargs map[string]any) (any, error)
}

// Artifact wraps a persisted definition, its lazily materialized namespace,
// and an optional private LRU+TTL result cache (§4.3, §3).
type Artifact struct {
	mu sync.Mutex

	def domain.ArtifactDef

	ns           *script.Namespace
	materialized bool

	resultCache *cache.LRUTTL[string, any]

	reg      *Registry
	compiled *cache.CompileCache[script.Program]
}

func newArtifact(def domain.ArtifactDef, reg *Registry, compiled *cache.CompileCache[script.Program]) *Artifact {
	a := &Artifact{def: def, reg: reg, compiled: compiled}
	if def.HasCache() {
		a.resultCache = cache.New[string, any](def.LRUMaxSize, time.Duration(def.TTLSeconds)*time.Second)
	}
	return a
}

// Def returns the artifact's persisted definition.
func (a *Artifact) Def() domain.ArtifactDef {
	return a.def
}

// Cache returns the artifact's private result cache, or nil if it has none.
func (a *Artifact) Cache() *cache.LRUTTL[string, any] {
	return a.resultCache
}

// namespace materializes G on first access under a.mu (invariant 2: built at
// most once per Artifact lifetime), injecting the kernel functions before
// running python_code. firstEvaluator, if non-nil, is the evaluator coe/
// calc_object_execute resolve to for any top-level call made directly from
// python_code during this one-time exec — an edge case the spec's
// thread-local original handles implicitly and this implementation handles
// explicitly.
func (a *Artifact) namespace(firstEvaluator Evaluator) (*script.Namespace, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.materialized {
		return a.ns, nil
	}

	ns := script.NewNamespace()
	if err := bindImporters(ns, a.reg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEvaluation, err)
	}
	if firstEvaluator != nil {
		if err := bindCurrentEvaluator(ns, a.reg, firstEvaluator); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEvaluation, err)
		}
	}

	if a.def.PythonCode != "" {
		prog, err := a.compiled.GetOrCompile(
			cache.CompileKey{Source: a.def.PythonCode, ArtifactID: a.def.ObjectID, Mode: cache.ModeExec},
			func() (script.Program, error) {
				return script.Compile(a.def.ObjectID, a.def.PythonCode, cache.ModeExec)
			},
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCompile, err)
		}
		if err := runGuarded(func() error { return ns.RunExec(prog) }); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEvaluation, err)
		}
	}

	a.ns = ns
	a.materialized = true
	return ns, nil
}

// Evaluate runs python_expr in eval mode against the namespace, with kwargs
// bound as temporary globals for the duration of the call and
// coe/calc_object_execute rebound to the supplied evaluator before it; that
// binding stays in place until the next call rebinds it (§4.3 of
// SPEC_FULL.md).
// All namespace access for this artifact — materialization and every
// exec/eval call — is serialized under a.mu, which is both the
// materialize-once guard and, of necessity, the single-goroutine-at-a-time
// boundary a goja.Runtime requires.
func (a *Artifact) Evaluate(ev Evaluator, kwargs map[string]any) (any, error) {
	ns, err := a.namespace(ev)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := bindCurrentEvaluator(ns, a.reg, ev); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEvaluation, err)
	}

	prog, err := a.compiled.GetOrCompile(
		cache.CompileKey{Source: a.def.PythonExpr, ArtifactID: a.def.ObjectID, Mode: cache.ModeEval},
		func() (script.Program, error) {
			return script.Compile(a.def.ObjectID, a.def.PythonExpr, cache.ModeEval)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCompile, err)
	}

	var result any
	runErr := runGuarded(func() error {
		v, err := ns.RunEval(prog, kwargs)
		if err != nil {
			return err
		}
		result = script.Export(v)
		return nil
	})
	if runErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEvaluation, runErr)
	}
	return result, nil
}

// Params returns the free parameter names of python_expr: identifiers the
// caller must supply as kwargs (§4.3 get_params).
func (a *Artifact) Params() ([]string, error) {
	ns, err := a.namespace(nil)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	bound := map[string]bool{"locals": true}
	for _, k := range ns.Keys() {
		bound[k] = true
	}
	return script.GetParams(a.def.PythonExpr, bound), nil
}

// runGuarded converts a panic raised by a kernel function (always a plain
// Go error, never a goja-native exception type — see package registry's
// kernel.go) into a returned error, so Evaluate and namespace never let a
// goja-internal panic escape uncontrolled.
func runGuarded(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn()
}
