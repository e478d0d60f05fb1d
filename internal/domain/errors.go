package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// ErrNotFound means the artifact id is missing from the registry.
	ErrNotFound = errors.New("artifact not found")

	// ErrBadArgument means a request body or operation argument was malformed.
	ErrBadArgument = errors.New("bad argument")

	// ErrCompile means artifact code or expression failed to compile.
	ErrCompile = errors.New("compile error")

	// ErrEvaluation means a runtime failure occurred during body or
	// expression execution.
	ErrEvaluation = errors.New("evaluation error")

	// ErrStorage means the persistent store failed.
	ErrStorage = errors.New("storage error")

	// ErrDispatch means the requested operation name is not registered.
	ErrDispatch = errors.New("unknown operation")
)
