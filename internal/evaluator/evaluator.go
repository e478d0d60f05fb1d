// Package evaluator implements the per-invocation evaluation context (C5):
// temp memoization, call-tree tracing, and the recursive eval that walks
// the implicit dependency DAG. Grounded on spec.md §4.5's pseudocode and
// design note §9, which replaces the original's thread-identity-keyed
// global evaluator table with an Evaluator passed explicitly down the call
// tree (the coe kernel function closes over it — see
// internal/registry/kernel.go).
package evaluator

import (
	"fmt"
	"time"

	"github.com/artifactengine/mce/internal/registry"
)

// TraceRecord is one entry in a traced evaluation's call tree (§4.5).
type TraceRecord struct {
	SN        string
	ParentSN  string
	ObjectID  string
	Params    map[string]any
	ResultKey string
	SpendTime time.Duration
}

// Evaluator is the per-top-level-invocation context: a temp_cache that
// dedupes work across the DAG of one call, and an optional trace recorder.
// Unlike the original, there is no ambient/thread-local binding step: a
// single Evaluator value is constructed per top-level call and handed down
// explicitly to every nested eval via the coe closure.
type Evaluator struct {
	reg *registry.Registry

	tempCache map[string]any

	isTrace       bool
	traceInfo     []TraceRecord
	callStack     []string
	serialCounter int
}

func newEvaluator(reg *registry.Registry, isTrace bool) *Evaluator {
	return &Evaluator{
		reg:       reg,
		tempCache: make(map[string]any),
		isTrace:   isTrace,
		callStack: []string{""}, // seeded with the sentinel "" per §3
	}
}

// New creates a fresh, non-tracing root Evaluator bound to reg. Exposed for
// callers that need a live Evaluator to seed coe/calc_object_execute
// outside the Execute/Trace entry points — the debug sandbox's (C9)
// one-off namespace is the only such caller.
func New(reg *registry.Registry) *Evaluator {
	return newEvaluator(reg, false)
}

// Execute runs a fresh top-level, non-tracing evaluation of id with kwargs
// and returns its result.
func Execute(reg *registry.Registry, id string, kwargs map[string]any) (any, error) {
	ev := newEvaluator(reg, false)
	return ev.Eval(id, kwargs)
}

// TraceResult is the output of Trace: the call tree plus the final memo
// contents (§4.5: "the trace operation returns (trace_info, temp_cache)").
type TraceResult struct {
	TraceInfo []TraceRecord
	TempCache map[string]any
}

// Trace runs a fresh top-level, tracing evaluation of id with kwargs. It
// never reuses an existing evaluator (§4.5).
func Trace(reg *registry.Registry, id string, kwargs map[string]any) (TraceResult, error) {
	ev := newEvaluator(reg, true)
	_, err := ev.Eval(id, kwargs)
	if err != nil {
		return TraceResult{}, err
	}
	return TraceResult{TraceInfo: ev.traceInfo, TempCache: ev.tempCache}, nil
}

// Eval is the core recursion (§4.5): memoize by fingerprint within this
// invocation, then either compute directly (no private cache) or go
// through the artifact's own cache, holding its mutex across the
// evaluate+put sequence so concurrent fills of that cache run one at a
// time. Per the cache-miss path described in spec.md §9, the miss check is
// not re-verified after the lock is acquired, so concurrent misses on the
// same key each compute the value; an implementation MAY add that re-check
// as a strict improvement, but it is not required, and this one does not.
// In tracing mode every call gets a trace record, including calls served
// from temp_cache.
func (e *Evaluator) Eval(id string, kwargs map[string]any) (any, error) {
	fp := Fingerprint(id, kwargs)
	if v, ok := e.tempCache[fp]; ok {
		if e.isTrace {
			e.traceInfo = append(e.traceInfo, TraceRecord{
				SN:        fmt.Sprintf("sn-%d", e.serialCounter),
				ParentSN:  e.callStack[len(e.callStack)-1],
				ObjectID:  id,
				Params:    kwargs,
				ResultKey: fp,
			})
			e.serialCounter++
		}
		return v, nil
	}

	a, err := e.reg.Get(id)
	if err != nil {
		return nil, err
	}

	var sn, parentSN string
	var start time.Time
	if e.isTrace {
		sn = fmt.Sprintf("sn-%d", e.serialCounter)
		e.serialCounter++
		parentSN = e.callStack[len(e.callStack)-1]
		e.callStack = append(e.callStack, sn)
		start = time.Now()
	}

	var v any
	if a.Cache() == nil {
		v, err = a.Evaluate(e, kwargs)
	} else {
		a.Cache().Mu.Lock()
		cached, ok := a.Cache().Get(fp)
		a.Cache().Mu.Unlock()
		if ok {
			v = cached
		} else {
			a.Cache().Mu.Lock()
			v, err = a.Evaluate(e, kwargs)
			if err == nil {
				a.Cache().Put(fp, v)
			}
			a.Cache().Mu.Unlock()
		}
	}

	if e.isTrace {
		e.callStack = e.callStack[:len(e.callStack)-1]
		e.traceInfo = append(e.traceInfo, TraceRecord{
			SN:        sn,
			ParentSN:  parentSN,
			ObjectID:  id,
			Params:    kwargs,
			ResultKey: fp,
			SpendTime: time.Since(start),
		})
	}

	if err != nil {
		return nil, err
	}

	e.tempCache[fp] = v
	return v, nil
}
