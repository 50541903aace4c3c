package git

import (
	"path/filepath"
	"time"

	"github.com/Iron-Ham/lfslocker/internal/errors"
	"github.com/Iron-Ham/lfslocker/internal/logging"
)

// Repository runs git and git-lfs commands at the root of one work tree.
// It is safe for concurrent use as long as the executor is.
type Repository struct {
	root      string
	gitDir    string
	executor  CommandExecutor
	logger    *logging.Logger
	verifyAck bool
	now       func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithExecutor sets the command executor. Defaults to CLICommandExecutor.
func WithExecutor(e CommandExecutor) Option {
	return func(r *Repository) {
		r.executor = e
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(l *logging.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithAcknowledgement enables or disables checking lock/unlock responses.
func WithAcknowledgement(verify bool) Option {
	return func(r *Repository) {
		r.verifyAck = verify
	}
}

// WithClock overrides the clock used to stamp registry snapshots.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// Open locates the work tree containing path and returns a Repository bound
// to its root. It fails with a ConfigurationError if path is not inside a
// work tree.
func Open(path string, opts ...Option) (*Repository, error) {
	r := &Repository{
		executor:  NewCLICommandExecutor(),
		logger:    logging.NopLogger(),
		verifyAck: true,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewConfigurationError("cannot resolve repository path", err).
			WithField("repository.path").WithValue(path)
	}

	args := []string{"rev-parse", "--is-inside-work-tree"}
	out, err := r.runIn(abs, args...)
	if err != nil || trimmed(out) != "true" {
		cause := errors.ErrNotWorkTree
		if err != nil {
			cause = errors.Join(errors.ErrNotWorkTree, errors.NewEnvironmentError("git rev-parse failed", err).
				WithCommand(argv(args)).WithOutput(rawOutput(out, err)))
		}
		return nil, errors.NewConfigurationError("cannot start", cause).
			WithField("repository.path").WithValue(abs)
	}

	args = []string{"rev-parse", "--show-toplevel"}
	out, err = r.runIn(abs, args...)
	if err != nil || trimmed(out) == "" {
		return nil, errors.NewEnvironmentError("cannot resolve work tree root", err).
			WithRepository(abs).WithCommand(argv(args)).WithOutput(rawOutput(out, err))
	}
	r.root = filepath.Clean(trimmed(out))

	args = []string{"rev-parse", "--absolute-git-dir"}
	out, err = r.run(args...)
	if err != nil || trimmed(out) == "" {
		return nil, errors.NewEnvironmentError("cannot resolve git directory", err).
			WithRepository(r.root).WithCommand(argv(args)).WithOutput(rawOutput(out, err))
	}
	r.gitDir = filepath.Clean(trimmed(out))

	r.logger = r.logger.WithRepository(r.root)
	return r, nil
}

// Root returns the absolute path of the work tree root.
func (r *Repository) Root() string {
	return r.root
}

// GitDir returns the absolute path of the repository's git directory.
func (r *Repository) GitDir() string {
	return r.gitDir
}

// CheckLFS verifies that git-lfs is installed and runnable.
func (r *Repository) CheckLFS() (string, error) {
	args := []string{"lfs", "version"}
	out, err := r.run(args...)
	if err != nil {
		return "", errors.NewConfigurationError("git-lfs check failed", errors.Join(errors.ErrLFSUnavailable,
			errors.NewEnvironmentError("git lfs version failed", err).
				WithCommand(argv(args)).WithOutput(rawOutput(out, err))))
	}
	return trimmed(out), nil
}

// ResolveIdentity returns configured when set, otherwise git's user.name.
func (r *Repository) ResolveIdentity(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	args := []string{"config", "user.name"}
	out, err := r.run(args...)
	// git config exits 1 when the key is unset; anything else is a real failure.
	if err != nil && exitCode(err) != 1 {
		return "", errors.NewEnvironmentError("git config failed", err).
			WithRepository(r.root).WithCommand(argv(args)).WithOutput(rawOutput(out, err))
	}
	name := trimmed(out)
	if name == "" {
		return "", errors.NewConfigurationError("set identity.username or git config user.name", errors.ErrIdentityUnresolved).
			WithField("identity.username")
	}
	return name, nil
}

func (r *Repository) run(args ...string) ([]byte, error) {
	return r.runIn(r.root, args...)
}

func (r *Repository) runIn(dir string, args ...string) ([]byte, error) {
	out, err := r.executor.Run(dir, "git", args...)
	if err != nil {
		r.logger.Debug("git command failed", "args", args, "error", err, "output", rawOutput(out, err))
	} else {
		r.logger.Debug("git command", "args", args, "output", string(out))
	}
	return out, err
}
