package script

import (
	"testing"

	"github.com/artifactengine/mce/internal/cache"
)

func TestNamespace_ExecThenEval(t *testing.T) {
	ns := NewNamespace()

	execProg, err := Compile("art1", "function inc(a) { return a + 1; }", cache.ModeExec)
	if err != nil {
		t.Fatalf("Compile(exec) error: %v", err)
	}
	if err := ns.RunExec(execProg); err != nil {
		t.Fatalf("RunExec() error: %v", err)
	}

	evalProg, err := Compile("art1", "inc(x)", cache.ModeEval)
	if err != nil {
		t.Fatalf("Compile(eval) error: %v", err)
	}
	v, err := ns.RunEval(evalProg, map[string]any{"x": int64(41)})
	if err != nil {
		t.Fatalf("RunEval() error: %v", err)
	}
	if got := Export(v); got != int64(42) {
		t.Fatalf("RunEval() = %v, want 42", got)
	}
}

func TestNamespace_RunEvalRestoresPriorBindings(t *testing.T) {
	ns := NewNamespace()
	if err := ns.Set("x", int64(7)); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	prog, err := Compile("art2", "x * 2", cache.ModeEval)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	v, err := ns.RunEval(prog, map[string]any{"x": int64(5)})
	if err != nil {
		t.Fatalf("RunEval() error: %v", err)
	}
	if got := Export(v); got != int64(10) {
		t.Fatalf("RunEval() = %v, want 10", got)
	}

	after := Export(ns.Get("x"))
	if after != int64(7) {
		t.Fatalf("expected prior binding x=7 restored, got %v", after)
	}
}

func TestCompile_RejectsInvalidSyntax(t *testing.T) {
	if _, err := Compile("bad", "function (", cache.ModeExec); err == nil {
		t.Fatal("expected compile error for invalid syntax")
	}
}
