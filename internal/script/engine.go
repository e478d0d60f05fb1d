// Package script embeds the engine's scripting runtime. spec.md treats the
// scripting language as an external collaborator ("assumed available as a
// sandboxed code evaluator"); this package concretizes that collaborator as
// goja, a pure-Go ECMAScript runtime, chosen because it is the only
// embeddable-in-Go scripting runtime available to this module and because
// its objects are natively attribute-accessible (goja values support dotted
// property access), which is exactly the namespace shape design note §9 of
// spec.md asks for.
//
// python_code / python_expr remain the field names spec.md's data model
// requires; their content here is ECMAScript source.
package script

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/artifactengine/mce/internal/cache"
)

// Program is a compiled, ready-to-run unit — either an artifact's body
// (exec mode) or its result expression (eval mode).
type Program = *goja.Program

// Compile parses source under the given mode, producing a Program.
// "eval" mode wraps the expression so it can be evaluated as a standalone
// statement; "exec" mode compiles the source as-is.
func Compile(artifactID string, source string, mode cache.CompileMode) (Program, error) {
	name := fmt.Sprintf("%s.%s", artifactID, mode)
	src := source
	if mode == cache.ModeEval && source != "" {
		src = "(" + source + ")"
	}
	p, err := goja.Compile(name, src, true)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return p, nil
}

// Namespace wraps a goja.Runtime whose global object serves directly as
// the artifact's attribute-accessible namespace (§4.3, §9).
type Namespace struct {
	rt *goja.Runtime
}

// NewNamespace creates an empty namespace backed by a fresh goja.Runtime.
// A goja.Runtime is only safe for use by one goroutine at a time; callers
// (the Artifact type in package registry) serialize all access to a given
// Namespace under that artifact's own mutex.
func NewNamespace() *Namespace {
	return &Namespace{rt: goja.New()}
}

// Runtime exposes the underlying goja.Runtime for callers that need direct
// access (e.g. to construct goja.Value results or FunctionCall closures).
func (n *Namespace) Runtime() *goja.Runtime {
	return n.rt
}

// Set binds name to value in the namespace. value may be a Go value
// (converted via goja's reflection-based marshaling) or a native function
// with the signature func(goja.FunctionCall) goja.Value.
func (n *Namespace) Set(name string, value any) error {
	return n.rt.Set(name, value)
}

// Get returns the current binding for name, or nil if unbound.
func (n *Namespace) Get(name string) goja.Value {
	return n.rt.GlobalObject().Get(name)
}

// Has reports whether name is bound in the namespace.
func (n *Namespace) Has(name string) bool {
	return n.rt.GlobalObject().Get(name) != nil
}

// Keys returns every bound name in the namespace, used by get_params to
// determine which identifiers are already defined (and so not caller
// parameters) and by from_import_code's wildcard overlay.
func (n *Namespace) Keys() []string {
	return n.rt.GlobalObject().Keys()
}

// RunExec runs a compiled "exec" program with the namespace as both
// globals and locals (the namespace *is* the global object, so this is
// simply running the program once against it).
func (n *Namespace) RunExec(p Program) error {
	_, err := n.rt.RunProgram(p)
	if err != nil {
		return err
	}
	return nil
}

// RunEval runs a compiled "eval" program, temporarily binding kwargs as
// globals for the duration of the call (simulating Python's separate
// globals/locals dicts, which ECMAScript has no equivalent of), then
// restoring whatever was previously bound under those names.
func (n *Namespace) RunEval(p Program, kwargs map[string]any) (goja.Value, error) {
	saved := make(map[string]goja.Value, len(kwargs))
	for k := range kwargs {
		saved[k] = n.rt.GlobalObject().Get(k)
	}
	defer func() {
		for k, v := range saved {
			if v == nil {
				n.rt.GlobalObject().Delete(k)
			} else {
				_ = n.rt.Set(k, v)
			}
		}
	}()

	for k, v := range kwargs {
		if err := n.rt.Set(k, v); err != nil {
			return nil, fmt.Errorf("bind parameter %s: %w", k, err)
		}
	}

	return n.rt.RunProgram(p)
}

// Export converts a goja.Value to a plain Go value (numbers, strings,
// bools, maps, slices, or an opaque pointer for anything else).
func Export(v goja.Value) any {
	if v == nil {
		return nil
	}
	return v.Export()
}
