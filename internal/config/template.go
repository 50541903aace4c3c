package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// template is the commented starter file written by `config init`.
const template = `# lfslocker configuration
# Every key can also be set through the environment, e.g. LFSLOCKER_SYNC_INTERVAL=1m.

repository:
  # Any directory inside the work tree. Empty means the current directory.
  path: ""

identity:
  # Exact owner name the lock server reports for your locks.
  # Empty falls back to "git config user.name".
  username: ""

sync:
  # Sleep between cycles.
  interval: 30s
  # Every n-th lock lookup asks the server; the others use the local cache.
  # A cached lookup that disagrees with git status is always re-checked.
  cached_refresh_period: 10
  # Also lock files git does not track yet.
  lock_untracked: false
  # Require lock/unlock responses to confirm the affected path.
  verify_acknowledgement: true
  # Query git status and the lock list at the same time.
  parallel_fetch: true

notifications:
  enabled: true
  # Announce each lock/unlock batch with a count.
  show_lock_and_unlock: false
  # Warn again about a path that stopped blocking and later blocks again.
  rewarn_after_clear: false

stop:
  # Exit once no process with this name runs (e.g. your editor).
  after_process: ""
  # Exit once this process id is gone (0 = disabled).
  after_pid: 0

watch:
  # Wake up early when files in the work tree change.
  enabled: false
  debounce: 500ms

logging:
  level: info
  # Empty logs to stderr.
  file: ""
  max_size_mb: 10
  max_backups: 3
`

// Template returns the starter config file contents.
func Template() string {
	return template
}

// WriteTemplate writes the starter config to path on fs. An existing file
// is only replaced when force is set.
func WriteTemplate(fs afero.Fs, path string, force bool) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if exists && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, []byte(template), os.FileMode(0644)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
