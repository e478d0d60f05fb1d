package registry

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/artifactengine/mce/internal/domain"
	"github.com/artifactengine/mce/internal/script"
)

// bindImporters injects import_code and from_import_code into ns, closed
// over reg for the artifact's entire lifetime (§4.3: these resolve to a
// stable Registry, unlike coe which must track the current evaluator).
func bindImporters(ns namespaceLike, reg *Registry) error {
	importCode := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(fmt.Errorf("%w: import_code requires an artifact id", domain.ErrBadArgument))
		}
		id := call.Argument(0).String()
		alias := id
		if len(call.Arguments) > 1 && !goja.IsUndefined(call.Argument(1)) {
			alias = call.Argument(1).String()
		}

		callee, err := reg.Get(id)
		if err != nil {
			panic(err)
		}
		calleeNS, err := callee.namespace(nil)
		if err != nil {
			panic(err)
		}
		if err := ns.Set(alias, calleeNS.Runtime().GlobalObject()); err != nil {
			panic(err)
		}
		return goja.Undefined()
	}

	fromImportCode := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(fmt.Errorf("%w: from_import_code requires an artifact id", domain.ErrBadArgument))
		}
		id := call.Argument(0).String()
		callee, err := reg.Get(id)
		if err != nil {
			panic(err)
		}
		calleeNS, err := callee.namespace(nil)
		if err != nil {
			panic(err)
		}

		rest := call.Arguments[1:]
		var names []string
		renames := map[string]string{}
		for i, v := range rest {
			if i == len(rest)-1 {
				if obj, ok := v.Export().(map[string]interface{}); ok {
					for oldName, newNameVal := range obj {
						renames[oldName] = fmt.Sprint(newNameVal)
					}
					continue
				}
			}
			names = append(names, v.String())
		}

		if len(names) == 0 && len(renames) == 0 {
			for _, k := range calleeNS.Keys() {
				if err := ns.Set(k, calleeNS.Get(k)); err != nil {
					panic(err)
				}
			}
			return goja.Undefined()
		}
		for _, n := range names {
			if err := ns.Set(n, calleeNS.Get(n)); err != nil {
				panic(err)
			}
		}
		for oldName, newName := range renames {
			if err := ns.Set(newName, calleeNS.Get(oldName)); err != nil {
				panic(err)
			}
		}
		return goja.Undefined()
	}

	if err := ns.Set("import_code", importCode); err != nil {
		return err
	}
	if err := ns.Set("from_import_code", fromImportCode); err != nil {
		return err
	}
	return nil
}

// BindKernelFunctions seeds ns with import_code, from_import_code, and
// (when ev is non-nil) calc_object_execute/coe — the same kernel functions
// every Artifact's namespace is materialized with, exposed for the debug
// sandbox (C9), which builds a one-off namespace outside any Artifact.
func BindKernelFunctions(ns *script.Namespace, reg *Registry, ev Evaluator) error {
	if err := bindImporters(ns, reg); err != nil {
		return err
	}
	if ev != nil {
		return bindCurrentEvaluator(ns, reg, ev)
	}
	return nil
}

// bindCurrentEvaluator (re)binds calc_object_execute and its alias coe to a
// closure over ev, the live evaluator of the call in progress. Called once
// at materialization (for any top-level coe call made directly from
// python_code) and again immediately before every Evaluate (§4.3).
func bindCurrentEvaluator(ns namespaceLike, reg *Registry, ev Evaluator) error {
	fn := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(fmt.Errorf("%w: calc_object_execute requires an artifact id", domain.ErrBadArgument))
		}
		id := call.Argument(0).String()
		kwargs := map[string]any{}
		if len(call.Arguments) > 1 {
			last := call.Arguments[len(call.Arguments)-1]
			if m, ok := last.Export().(map[string]interface{}); ok {
				kwargs = m
			}
		}
		v, err := ev.Eval(id, kwargs)
		if err != nil {
			panic(err)
		}
		return ns.Runtime().ToValue(v)
	}
	if err := ns.Set("calc_object_execute", fn); err != nil {
		return err
	}
	return ns.Set("coe", fn)
}

// namespaceLike is the subset of *script.Namespace kernel.go needs; kept as
// an interface purely so this file reads naturally top-down without an
// import-order dependency on the concrete type's method set.
type namespaceLike interface {
	Runtime() *goja.Runtime
	Set(name string, value any) error
	Get(name string) goja.Value
	Keys() []string
}
