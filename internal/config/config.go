package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// LFSLOCKER_SYNC_INTERVAL=1m.
const EnvPrefix = "LFSLOCKER"

// Config represents the complete lfslocker configuration. It is built once
// at startup and passed to the sync loop; nothing reads viper afterwards.
type Config struct {
	Repository    RepositoryConfig    `mapstructure:"repository"`
	Identity      IdentityConfig      `mapstructure:"identity"`
	Sync          SyncConfig          `mapstructure:"sync"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Stop          StopConfig          `mapstructure:"stop"`
	Watch         WatchConfig         `mapstructure:"watch"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// RepositoryConfig selects the work tree
type RepositoryConfig struct {
	// Path is any directory inside the work tree. Empty means the current directory.
	Path string `mapstructure:"path"`
}

// IdentityConfig controls lock ownership
type IdentityConfig struct {
	// Username is the exact owner name the lock server reports for your locks.
	// Empty falls back to `git config user.name`.
	Username string `mapstructure:"username"`
}

// SyncConfig controls the reconciliation loop
type SyncConfig struct {
	// Interval is the sleep between cycles.
	Interval time.Duration `mapstructure:"interval"`
	// CachedRefreshPeriod makes every n-th lock lookup authoritative; the rest
	// use the local cache. 1 always asks the server.
	CachedRefreshPeriod int `mapstructure:"cached_refresh_period"`
	// LockUntracked also locks files git does not track yet.
	LockUntracked bool `mapstructure:"lock_untracked"`
	// VerifyAcknowledgement requires lock/unlock responses to confirm the path.
	VerifyAcknowledgement bool `mapstructure:"verify_acknowledgement"`
	// ParallelFetch queries git status and the lock list concurrently.
	ParallelFetch bool `mapstructure:"parallel_fetch"`
}

// NotificationsConfig controls desktop notifications
type NotificationsConfig struct {
	// Enabled turns desktop notifications on. When off, notifications are logged.
	Enabled bool `mapstructure:"enabled"`
	// ShowLockAndUnlock announces each lock/unlock batch with a count.
	ShowLockAndUnlock bool `mapstructure:"show_lock_and_unlock"`
	// RewarnAfterClear forgets a warning once its path stops blocking, so the
	// path is warned about again if it blocks later.
	RewarnAfterClear bool `mapstructure:"rewarn_after_clear"`
}

// StopConfig controls when the loop exits on its own
type StopConfig struct {
	// AfterProcess stops the loop once no process with this name is running.
	AfterProcess string `mapstructure:"after_process"`
	// AfterPID stops the loop once this process exits (0 = disabled).
	AfterPID int `mapstructure:"after_pid"`
}

// WatchConfig controls file-system wake-ups
type WatchConfig struct {
	// Enabled wakes the loop early when files in the work tree change.
	Enabled bool `mapstructure:"enabled"`
	// Debounce is the quiet period before a wake-up fires.
	Debounce time.Duration `mapstructure:"debounce"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// File is the log file path. Empty logs to stderr.
	File string `mapstructure:"file"`
	// MaxSizeMB is the size at which the log file rotates (0 = never).
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep.
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			Interval:              30 * time.Second,
			CachedRefreshPeriod:   10,
			LockUntracked:         false,
			VerifyAcknowledgement: true,
			ParallelFetch:         true,
		},
		Notifications: NotificationsConfig{
			Enabled:           true,
			ShowLockAndUnlock: false,
			RewarnAfterClear:  false,
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with the global viper instance
func SetDefaults() {
	SetDefaultsOn(viper.GetViper())
}

// SetDefaultsOn registers default values with v
func SetDefaultsOn(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("repository.path", defaults.Repository.Path)
	v.SetDefault("identity.username", defaults.Identity.Username)

	// Sync defaults
	v.SetDefault("sync.interval", defaults.Sync.Interval)
	v.SetDefault("sync.cached_refresh_period", defaults.Sync.CachedRefreshPeriod)
	v.SetDefault("sync.lock_untracked", defaults.Sync.LockUntracked)
	v.SetDefault("sync.verify_acknowledgement", defaults.Sync.VerifyAcknowledgement)
	v.SetDefault("sync.parallel_fetch", defaults.Sync.ParallelFetch)

	// Notification defaults
	v.SetDefault("notifications.enabled", defaults.Notifications.Enabled)
	v.SetDefault("notifications.show_lock_and_unlock", defaults.Notifications.ShowLockAndUnlock)
	v.SetDefault("notifications.rewarn_after_clear", defaults.Notifications.RewarnAfterClear)

	// Stop defaults
	v.SetDefault("stop.after_process", defaults.Stop.AfterProcess)
	v.SetDefault("stop.after_pid", defaults.Stop.AfterPID)

	// Watch defaults
	v.SetDefault("watch.enabled", defaults.Watch.Enabled)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)

	// Logging defaults
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// BindEnv makes every key overridable through LFSLOCKER_* variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from the global viper instance into a
// Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom decodes and validates the configuration held by v
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lfslocker")
	}
	// Fall back to ~/.config/lfslocker
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lfslocker"
	}
	return filepath.Join(home, ".config", "lfslocker")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// SearchPaths returns the directories searched for config.yaml, in order.
func SearchPaths() []string {
	paths := []string{ConfigDir()}
	if home, err := os.UserHomeDir(); err == nil {
		if legacy := filepath.Join(home, ".config", "lfslocker"); legacy != paths[0] {
			paths = append(paths, legacy)
		}
	}
	return append(paths, ".")
}

// Settings returns the configuration as nested maps keyed like the config
// file, with durations rendered as strings. Used by `config show`.
func (c *Config) Settings() map[string]any {
	return map[string]any{
		"repository": map[string]any{
			"path": c.Repository.Path,
		},
		"identity": map[string]any{
			"username": c.Identity.Username,
		},
		"sync": map[string]any{
			"interval":               c.Sync.Interval.String(),
			"cached_refresh_period":  c.Sync.CachedRefreshPeriod,
			"lock_untracked":         c.Sync.LockUntracked,
			"verify_acknowledgement": c.Sync.VerifyAcknowledgement,
			"parallel_fetch":         c.Sync.ParallelFetch,
		},
		"notifications": map[string]any{
			"enabled":              c.Notifications.Enabled,
			"show_lock_and_unlock": c.Notifications.ShowLockAndUnlock,
			"rewarn_after_clear":   c.Notifications.RewarnAfterClear,
		},
		"stop": map[string]any{
			"after_process": c.Stop.AfterProcess,
			"after_pid":     c.Stop.AfterPID,
		},
		"watch": map[string]any{
			"enabled":  c.Watch.Enabled,
			"debounce": c.Watch.Debounce.String(),
		},
		"logging": map[string]any{
			"level":       c.Logging.Level,
			"file":        c.Logging.File,
			"max_size_mb": c.Logging.MaxSizeMB,
			"max_backups": c.Logging.MaxBackups,
		},
	}
}
