package api

import (
	"context"
	"fmt"

	"github.com/artifactengine/mce/internal/domain"
	"github.com/artifactengine/mce/internal/engine"
	"github.com/artifactengine/mce/internal/evaluator"
)

// Operation is a registered dispatcher function: it takes the request
// body's fields as kwargs and returns a result or an error (§4.7).
type Operation func(ctx context.Context, kwargs map[string]any) (any, error)

// help describes one operation for the /help endpoint (§10 of
// SPEC_FULL.md: mirrors the original's per-function signature + one-line
// description rendering).
type help struct {
	signature   string
	description string
}

// operationOrder is the fixed registration order from spec.md §4.7.
var operationOrder = []string{
	"get_version", "add", "delete", "update", "query", "get_params",
	"execute", "trace", "debug", "reload", "clear_cache",
}

var operationHelp = map[string]help{
	"get_version": {"get_version()", "returns the engine version string"},
	"add":         {"add(object_id, ...)", "persists a new calc object and registers it"},
	"delete":      {"delete(object_id)", "removes a calc object from storage and the registry"},
	"update":      {"update(object_id, ...)", "updates a calc object's fields and refreshes the in-memory copy"},
	"query":       {"query(**filters)", "lists calc objects matching exact-match column filters"},
	"get_params":  {"get_params(object_id)", "returns the free parameter names of an object's expression"},
	"execute":     {"execute(object_id, **kwargs)", "evaluates a calc object and returns its result"},
	"trace":       {"trace(object_id, **kwargs)", "evaluates a calc object, recording the call tree"},
	"debug":       {"debug(code)", "runs ad-hoc source in an isolated child worker"},
	"reload":      {"reload()", "reloads the registry from the persistent catalog"},
	"clear_cache": {"clear_cache()", "clears every calc object's private result cache"},
}

// buildOperations wires the dispatch table to a live engine handle.
func buildOperations(e *engine.Engine) map[string]Operation {
	withoutID := func(kwargs map[string]any) map[string]any {
		rest := make(map[string]any, len(kwargs))
		for k, v := range kwargs {
			if k != "object_id" {
				rest[k] = v
			}
		}
		return rest
	}
	requireID := func(kwargs map[string]any) (string, error) {
		id := stringField(kwargs, "object_id")
		if id == "" {
			return "", fmt.Errorf("%w: object_id is required", domain.ErrBadArgument)
		}
		return id, nil
	}

	return map[string]Operation{
		"get_version": func(context.Context, map[string]any) (any, error) {
			return Version, nil
		},

		"add": func(_ context.Context, kwargs map[string]any) (any, error) {
			def, err := toArtifactDef(kwargs)
			if err != nil {
				return nil, err
			}
			if err := e.Store.Add(def); err != nil {
				return nil, err
			}
			stored, err := e.Store.Get(def.ObjectID)
			if err != nil {
				return nil, err
			}
			e.Registry.Set(stored)
			return defAsMap(stored), nil
		},

		"delete": func(_ context.Context, kwargs map[string]any) (any, error) {
			id, err := requireID(kwargs)
			if err != nil {
				return nil, err
			}
			n, err := e.Store.Delete(id)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				e.Registry.Delete(id)
			}
			return n, nil
		},

		"update": func(_ context.Context, kwargs map[string]any) (any, error) {
			id, err := requireID(kwargs)
			if err != nil {
				return nil, err
			}
			n, err := e.Store.Update(id, updateFields(kwargs))
			if err != nil {
				return nil, err
			}
			if n > 0 {
				stored, err := e.Store.Get(id)
				if err != nil {
					return nil, err
				}
				e.Registry.Set(stored)
			}
			return n, nil
		},

		"query": func(_ context.Context, kwargs map[string]any) (any, error) {
			defs, err := e.Store.Query(kwargs)
			if err != nil {
				return nil, err
			}
			out := make([]map[string]any, len(defs))
			for i, d := range defs {
				out[i] = defAsMap(d)
			}
			return out, nil
		},

		"get_params": func(_ context.Context, kwargs map[string]any) (any, error) {
			id, err := requireID(kwargs)
			if err != nil {
				return nil, err
			}
			a, err := e.Registry.Get(id)
			if err != nil {
				return nil, err
			}
			return a.Params()
		},

		"execute": func(_ context.Context, kwargs map[string]any) (any, error) {
			id, err := requireID(kwargs)
			if err != nil {
				return nil, err
			}
			return evaluator.Execute(e.Registry, id, withoutID(kwargs))
		},

		"trace": func(_ context.Context, kwargs map[string]any) (any, error) {
			id, err := requireID(kwargs)
			if err != nil {
				return nil, err
			}
			result, err := evaluator.Trace(e.Registry, id, withoutID(kwargs))
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"trace_info": result.TraceInfo,
				"temp_cache": result.TempCache,
			}, nil
		},

		"debug": func(ctx context.Context, kwargs map[string]any) (any, error) {
			code := stringField(kwargs, "code")
			return e.Sandbox.Run(ctx, code)
		},

		"reload": func(context.Context, map[string]any) (any, error) {
			return nil, e.Reload()
		},

		"clear_cache": func(context.Context, map[string]any) (any, error) {
			e.Registry.ClearCache()
			return nil, nil
		},
	}
}
