package stopcond

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/Iron-Ham/lfslocker/internal/errors"
	"github.com/Iron-Ham/lfslocker/internal/logging"
)

// Runner executes a command and returns its standard output.
type Runner func(name string, args ...string) ([]byte, error)

func runCommand(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// linuxCommLen is the length in bytes the kernel truncates process names
// (comm) to. The cut is byte-wise and may split a UTF-8 rune; pgrep -x
// compares against the same truncated bytes, so names are cut the same way.
const linuxCommLen = 15

// processExited stops once no process with the given name is running.
type processExited struct {
	name   string
	goos   string
	run    Runner
	logger *logging.Logger
}

// ProcessOption configures ProcessExited.
type ProcessOption func(*processExited)

// WithRunner replaces the command runner.
func WithRunner(run Runner) ProcessOption {
	return func(p *processExited) {
		p.run = run
	}
}

// WithOS overrides the platform used to pick the process lister.
func WithOS(goos string) ProcessOption {
	return func(p *processExited) {
		p.goos = goos
	}
}

// WithLogger sets the logger used to report lookup failures.
func WithLogger(logger *logging.Logger) ProcessOption {
	return func(p *processExited) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// ProcessExited fires once no process named name is running. Names match
// exactly (pgrep -x on Unix, tasklist image name on Windows). A failed
// lookup never fires: the loop keeps running rather than stopping on a
// transient error.
func ProcessExited(name string, opts ...ProcessOption) Condition {
	p := &processExited{
		name:   name,
		goos:   runtime.GOOS,
		run:    runCommand,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *processExited) ShouldStop() bool {
	running, err := p.running()
	if err != nil {
		p.logger.Warn("process lookup failed", "process", p.name, "error", err)
		return false
	}
	if !running {
		p.logger.Info("watched process is no longer running", "process", p.name)
	}
	return !running
}

func (p *processExited) String() string {
	return fmt.Sprintf("process %q exited", p.name)
}

func (p *processExited) running() (bool, error) {
	if p.goos == "windows" {
		out, err := p.run("tasklist", "/FI", "IMAGENAME eq "+p.name, "/NH", "/FO", "CSV")
		if err != nil {
			return false, err
		}
		needle := []byte(`"` + strings.ToLower(p.name) + `"`)
		return bytes.Contains(bytes.ToLower(out), needle), nil
	}

	name := p.name
	if p.goos == "linux" && len(name) > linuxCommLen {
		name = name[:linuxCommLen]
	}
	out, err := p.run("pgrep", "-x", name)
	if err != nil {
		// pgrep exits 1 when nothing matched.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return false, nil
		}
		return false, err
	}
	return len(bytes.TrimSpace(out)) > 0, nil
}
