package registry

import (
	"testing"

	"github.com/artifactengine/mce/internal/domain"
)

// fakeEvaluator lets tests drive Artifact.Evaluate without pulling in
// package evaluator, avoiding an import cycle in tests.
type fakeEvaluator struct {
	evalFn func(id string, kwargs map[string]any) (any, error)
}

func (f *fakeEvaluator) Eval(id string, kwargs map[string]any) (any, error) {
	return f.evalFn(id, kwargs)
}

func TestRegistry_GetMissingReturnsNotFound(t *testing.T) {
	r := New()
	if _, err := r.Get("nope"); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestArtifact_EvaluateSimpleExpression(t *testing.T) {
	r := New()
	r.Set(domain.ArtifactDef{ObjectID: "A", PythonExpr: "x + 1"})

	a, err := r.Get("A")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	ev := &fakeEvaluator{evalFn: func(string, map[string]any) (any, error) { return nil, nil }}

	got, err := a.Evaluate(ev, map[string]any{"x": int64(41)})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if got != int64(42) {
		t.Fatalf("Evaluate() = %v, want 42", got)
	}
}

func TestArtifact_ImportCodeBindsCalleeNamespace(t *testing.T) {
	r := New()
	r.Set(domain.ArtifactDef{
		ObjectID:   "base",
		PythonCode: "function greet() { return 'hi'; }",
		PythonExpr: "1",
	})
	r.Set(domain.ArtifactDef{
		ObjectID:   "caller",
		PythonCode: "import_code('base');",
		PythonExpr: "base.greet()",
	})

	caller, err := r.Get("caller")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	ev := &fakeEvaluator{evalFn: func(string, map[string]any) (any, error) { return nil, nil }}

	got, err := caller.Evaluate(ev, nil)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if got != "hi" {
		t.Fatalf("Evaluate() = %v, want hi", got)
	}
}

func TestArtifact_FromImportCodeOverlaysAllNames(t *testing.T) {
	r := New()
	r.Set(domain.ArtifactDef{
		ObjectID:   "base",
		PythonCode: "var answer = 42;",
		PythonExpr: "0",
	})
	r.Set(domain.ArtifactDef{
		ObjectID:   "caller",
		PythonCode: "from_import_code('base');",
		PythonExpr: "answer",
	})

	caller, err := r.Get("caller")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	ev := &fakeEvaluator{evalFn: func(string, map[string]any) (any, error) { return nil, nil }}

	got, err := caller.Evaluate(ev, nil)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if got != int64(42) {
		t.Fatalf("Evaluate() = %v, want 42", got)
	}
}

func TestArtifact_CoeDelegatesToCurrentEvaluator(t *testing.T) {
	r := New()
	r.Set(domain.ArtifactDef{ObjectID: "pair", PythonExpr: "[coe('inc', {x: 1}), coe('inc', {x: 1})]"})

	pair, err := r.Get("pair")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	calls := 0
	ev := &fakeEvaluator{evalFn: func(id string, kwargs map[string]any) (any, error) {
		calls++
		if id != "inc" {
			t.Fatalf("unexpected delegate id %q", id)
		}
		return int64(2), nil
	}}

	got, err := pair.Evaluate(ev, nil)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	exported, ok := got.([]interface{})
	if !ok || len(exported) != 2 {
		t.Fatalf("Evaluate() = %v (%T), want a 2-element slice", got, got)
	}
	if calls != 2 {
		t.Fatalf("expected coe to delegate twice, got %d", calls)
	}
}

func TestArtifact_CachePresenceFollowsDefinition(t *testing.T) {
	r := New()
	r.Set(domain.ArtifactDef{ObjectID: "cached", LRUMaxSize: 4, TTLSeconds: 60, PythonExpr: "1"})
	r.Set(domain.ArtifactDef{ObjectID: "uncached", PythonExpr: "1"})

	cached, _ := r.Get("cached")
	uncached, _ := r.Get("uncached")

	if cached.Cache() == nil {
		t.Fatal("expected cached artifact to have a private cache")
	}
	if uncached.Cache() != nil {
		t.Fatal("expected uncached artifact to have no private cache")
	}
}

func TestRegistry_ReloadReplacesKeyset(t *testing.T) {
	r := New()
	r.Set(domain.ArtifactDef{ObjectID: "old", PythonExpr: "1"})

	r.Reload([]domain.ArtifactDef{{ObjectID: "new", PythonExpr: "2"}})

	if r.Exists("old") {
		t.Fatal("expected old artifact to be gone after reload")
	}
	if !r.Exists("new") {
		t.Fatal("expected new artifact to be present after reload")
	}
}

func TestRegistry_ClearCacheClearsEveryArtifactCache(t *testing.T) {
	r := New()
	r.Set(domain.ArtifactDef{ObjectID: "A", LRUMaxSize: 4, TTLSeconds: 60, PythonExpr: "1"})
	a, _ := r.Get("A")
	a.Cache().Put("k", int64(1))

	r.ClearCache()

	if a.Cache().Size() != 0 {
		t.Fatalf("expected cache cleared, size = %d", a.Cache().Size())
	}
}

func TestArtifact_ParamsReturnsFreeIdentifiers(t *testing.T) {
	r := New()
	r.Set(domain.ArtifactDef{ObjectID: "A", PythonExpr: "x + y"})
	a, _ := r.Get("A")

	params, err := a.Params()
	if err != nil {
		t.Fatalf("Params() error: %v", err)
	}
	if len(params) != 2 || params[0] != "x" || params[1] != "y" {
		t.Fatalf("Params() = %v, want [x y]", params)
	}
}
