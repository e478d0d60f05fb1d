// Package debugsandbox implements the debug operation (C9): ad-hoc source
// executed in an isolated child worker, so a crash or stateful leak in
// debug code never touches the running engine. Grounded on the teacher's
// internal/infra/engine/subprocess.go child-process management pattern —
// here the child is this same binary, re-invoked under a hidden
// __debug_worker subcommand, rather than a third-party server binary.
package debugsandbox

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"
)

// defaultTimeout bounds a single debug invocation; debug code is trusted
// per spec.md's non-goals, but a hung child must not hang the engine.
const defaultTimeout = 30 * time.Second

// Sandbox spawns debug executions as child processes of this same binary.
type Sandbox struct {
	binaryPath string
	configPath string
	timeout    time.Duration
}

// New creates a Sandbox. binaryPath is normally this process's own
// executable (os.Executable, falling back to os.Args[0]); configPath is
// forwarded to the child so it can open the same catalog store.
func New(binaryPath, configPath string) *Sandbox {
	return &Sandbox{binaryPath: binaryPath, configPath: configPath, timeout: defaultTimeout}
}

// Run executes code in a freshly spawned child worker and returns its
// captured output. A compile or runtime failure in the debug code itself
// is not an error from Run's point of view: per §4.8 ("returns the textual
// representation of any raised error on failure"), the child writes that
// text to stdout and exits 0, so it comes back here as an ordinary,
// successful result. Run only returns a non-nil error for genuine child
// process failures (bad config, storage, or a crash) below that boundary.
func (s *Sandbox) Run(ctx context.Context, code string) (string, error) {
	id := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.binaryPath, WorkerSubcommand, "--config", s.configPath)
	cmd.Stdin = bytes.NewBufferString(code)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("debug sandbox [%s]: %s", id, msg)
	}

	return stdout.String(), nil
}

// WorkerSubcommand is the hidden cobra subcommand name the CLI registers
// to become a debug worker child process when re-exec'd.
const WorkerSubcommand = "__debug_worker"
