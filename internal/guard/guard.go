// Package guard keeps a second sync loop from running against the same
// repository. Two loops would race each other's lock and unlock calls.
package guard

import (
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/Iron-Ham/lfslocker/internal/errors"
)

// FileName is the lock file created inside the git directory.
const FileName = "lfslocker.lock"

// Guard is a held single-instance lock.
type Guard struct {
	path  string
	flock *flock.Flock
}

// Acquire takes the advisory lock in gitDir without blocking. If another
// process holds it, Acquire fails with a ConfigurationError wrapping
// errors.ErrAlreadyRunning.
func Acquire(gitDir string) (*Guard, error) {
	path := filepath.Join(gitDir, FileName)
	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.NewEnvironmentError("cannot create instance lock", err).WithRepository(gitDir)
	}
	if !locked {
		return nil, errors.NewConfigurationError("cannot start", errors.ErrAlreadyRunning).
			WithField("lock_file").WithValue(path)
	}
	return &Guard{path: path, flock: fl}, nil
}

// Path returns the lock file path.
func (g *Guard) Path() string {
	return g.path
}

// Release drops the lock. It is safe to call more than once.
func (g *Guard) Release() error {
	if g == nil || g.flock == nil {
		return nil
	}
	return g.flock.Unlock()
}
