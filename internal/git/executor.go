// Package git provides the git and git-lfs command adapters the sync loop
// consumes: status snapshots, lock registry snapshots, lock/unlock calls and
// identity resolution.
//
// All commands go through a CommandExecutor so that tests can substitute a
// fake without spawning processes. Calls are synchronous and are never
// interrupted once started.
package git

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/Iron-Ham/lfslocker/internal/errors"
)

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run executes name with args in dir and returns its standard output.
	// On a non-zero exit the error is an *exec.ExitError carrying stderr.
	Run(dir string, name string, args ...string) ([]byte, error)
}

// CLICommandExecutor executes commands using os/exec.
type CLICommandExecutor struct{}

// NewCLICommandExecutor creates a new CLI command executor.
func NewCLICommandExecutor() *CLICommandExecutor {
	return &CLICommandExecutor{}
}

// Run executes a command and returns stdout. Stdout and stderr are kept
// apart because git-lfs prints progress and warnings on stderr while the
// JSON payload goes to stdout.
func (e *CLICommandExecutor) Run(dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd.Output()
}

// rawOutput renders everything a command printed for error context.
func rawOutput(stdout []byte, err error) string {
	var b bytes.Buffer
	b.Write(bytes.TrimSpace(stdout))
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.Write(bytes.TrimSpace(exitErr.Stderr))
	}
	return b.String()
}

// exitCode returns the process exit status, or -1 if err is not an exit error.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func argv(args []string) []string {
	return append([]string{"git"}, args...)
}

func trimmed(out []byte) string {
	return strings.TrimSpace(string(out))
}
