package debugsandbox

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dop251/goja"

	"github.com/artifactengine/mce/internal/cache"
	"github.com/artifactengine/mce/internal/config"
	"github.com/artifactengine/mce/internal/evaluator"
	"github.com/artifactengine/mce/internal/registry"
	"github.com/artifactengine/mce/internal/script"
	"github.com/artifactengine/mce/internal/storage"
)

// RunWorker is the child-process entry point registered under the hidden
// __debug_worker subcommand (see internal/cli). It reads debug source from
// stdin, builds a namespace against the same persisted catalog the parent
// engine uses, runs the source, and writes captured output to stdout (or
// an error to stderr), returning a process exit code.
func RunWorker(configPath string, stdin io.Reader, stdout, stderr io.Writer) int {
	code, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "read debug source: %v", err)
		return 1
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v", err)
		return 1
	}

	store, err := storage.Open(cfg.EngineURL, cfg.EngineURLQuery)
	if err != nil {
		fmt.Fprintf(stderr, "open storage: %v", err)
		return 1
	}
	defer store.Close()

	defs, err := store.Query(nil)
	if err != nil {
		fmt.Fprintf(stderr, "load catalog: %v", err)
		return 1
	}
	reg := registry.New()
	reg.Reload(defs)

	ev := evaluator.New(reg)

	ns := script.NewNamespace()
	if err := registry.BindKernelFunctions(ns, reg, ev); err != nil {
		fmt.Fprintf(stderr, "bind kernel functions: %v", err)
		return 1
	}

	var captured bytes.Buffer
	if err := bindConsole(ns, &captured); err != nil {
		fmt.Fprintf(stderr, "bind console: %v", err)
		return 1
	}

	// A compile or runtime failure in the debug code itself is not an infra
	// failure: §4.8 (debug) never raises on bad source, it returns the
	// textual representation of whatever error occurred as ordinary output,
	// the same way the original's debug()/_debug() always returns a string.
	// Only failures above this point (stdin/config/storage/catalog/bind) are
	// genuine infra errors reported on stderr with a nonzero exit.
	prog, err := script.Compile("__debug__", string(code), cache.ModeExec)
	if err != nil {
		io.WriteString(stdout, err.Error())
		return 0
	}
	// Kernel functions (coe, import_code, ...) report failures by panicking
	// with a Go error, which goja does not turn into a returned error.
	runErr := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		return ns.RunExec(prog)
	}()
	if runErr != nil {
		io.WriteString(stdout, runErr.Error())
		return 0
	}

	io.WriteString(stdout, captured.String())
	return 0
}

// bindConsole installs a console.log that appends to buf, standing in for
// "standard output" a script can produce — goja scripts have no real
// stdout of their own, so this is the capture point §4.8 describes.
func bindConsole(ns *script.Namespace, buf *bytes.Buffer) error {
	rt := ns.Runtime()
	console := rt.NewObject()
	log := func(call goja.FunctionCall) goja.Value {
		for i, arg := range call.Arguments {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(arg.String())
		}
		buf.WriteByte('\n')
		return goja.Undefined()
	}
	if err := console.Set("log", log); err != nil {
		return err
	}
	return ns.Set("console", console)
}
