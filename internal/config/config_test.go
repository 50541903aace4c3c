package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Sync.Interval != 30*time.Second {
		t.Errorf("Sync.Interval = %v, want 30s", cfg.Sync.Interval)
	}
	if cfg.Sync.CachedRefreshPeriod != 10 {
		t.Errorf("Sync.CachedRefreshPeriod = %d, want 10", cfg.Sync.CachedRefreshPeriod)
	}
	if cfg.Sync.LockUntracked {
		t.Error("Sync.LockUntracked should be false by default")
	}
	if !cfg.Sync.VerifyAcknowledgement {
		t.Error("Sync.VerifyAcknowledgement should be true by default")
	}
	if !cfg.Sync.ParallelFetch {
		t.Error("Sync.ParallelFetch should be true by default")
	}
	if !cfg.Notifications.Enabled {
		t.Error("Notifications.Enabled should be true by default")
	}
	if cfg.Notifications.ShowLockAndUnlock || cfg.Notifications.RewarnAfterClear {
		t.Error("optional notifications should be off by default")
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 500ms", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default().Validate() = %v, want no errors", errs)
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaultsOn(v)
	return v
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(newViper())
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("LoadFrom() = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoadFrom_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
identity:
  username: alice
sync:
  interval: 45s
  cached_refresh_period: 3
  lock_untracked: true
watch:
  enabled: true
  debounce: 2s
stop:
  after_process: UnrealEditor
`
	fs := afero.NewOsFs()
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Identity.Username != "alice" {
		t.Errorf("Identity.Username = %q, want alice", cfg.Identity.Username)
	}
	if cfg.Sync.Interval != 45*time.Second {
		t.Errorf("Sync.Interval = %v, want 45s", cfg.Sync.Interval)
	}
	if cfg.Sync.CachedRefreshPeriod != 3 {
		t.Errorf("Sync.CachedRefreshPeriod = %d, want 3", cfg.Sync.CachedRefreshPeriod)
	}
	if !cfg.Sync.LockUntracked || !cfg.Watch.Enabled {
		t.Error("booleans from file were not applied")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Watch.Debounce = %v, want 2s", cfg.Watch.Debounce)
	}
	if cfg.Stop.AfterProcess != "UnrealEditor" {
		t.Errorf("Stop.AfterProcess = %q, want UnrealEditor", cfg.Stop.AfterProcess)
	}
	// Untouched keys keep their defaults.
	if !cfg.Sync.VerifyAcknowledgement {
		t.Error("Sync.VerifyAcknowledgement should keep its default")
	}
}

func TestLoadFrom_Environment(t *testing.T) {
	t.Setenv("LFSLOCKER_SYNC_INTERVAL", "2m")
	t.Setenv("LFSLOCKER_IDENTITY_USERNAME", "bob")
	t.Setenv("LFSLOCKER_NOTIFICATIONS_ENABLED", "false")

	v := newViper()
	BindEnv(v)

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Sync.Interval != 2*time.Minute {
		t.Errorf("Sync.Interval = %v, want 2m", cfg.Sync.Interval)
	}
	if cfg.Identity.Username != "bob" {
		t.Errorf("Identity.Username = %q, want bob", cfg.Identity.Username)
	}
	if cfg.Notifications.Enabled {
		t.Error("Notifications.Enabled should be overridden to false")
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	v := newViper()
	v.Set("sync.cached_refresh_period", 0)
	v.Set("logging.level", "loud")

	_, err := LoadFrom(v)
	if err == nil {
		t.Fatal("LoadFrom() expected validation error")
	}
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("LoadFrom() error type = %T, want ValidationErrors", err)
	}
	if len(verrs) != 2 {
		t.Errorf("len(errors) = %d, want 2: %v", len(verrs), verrs)
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got := ConfigDir(); got != filepath.Join("/custom/config", "lfslocker") {
			t.Errorf("ConfigDir() = %q", got)
		}
		if got := ConfigFile(); got != filepath.Join("/custom/config", "lfslocker", "config.yaml") {
			t.Errorf("ConfigFile() = %q", got)
		}
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		if got := ConfigDir(); !strings.HasSuffix(got, filepath.Join(".config", "lfslocker")) {
			t.Errorf("ConfigDir() = %q, want ~/.config/lfslocker", got)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	paths := SearchPaths()
	if paths[0] != filepath.Join("/custom/config", "lfslocker") {
		t.Errorf("SearchPaths()[0] = %q", paths[0])
	}
	if paths[len(paths)-1] != "." {
		t.Errorf("SearchPaths() last = %q, want .", paths[len(paths)-1])
	}
}

func TestSettings(t *testing.T) {
	s := Default().Settings()
	syncSettings, ok := s["sync"].(map[string]any)
	if !ok {
		t.Fatalf("Settings()[sync] = %T", s["sync"])
	}
	if syncSettings["interval"] != "30s" {
		t.Errorf("sync.interval = %v, want 30s", syncSettings["interval"])
	}
	if len(s) != 7 {
		t.Errorf("len(Settings()) = %d, want 7 sections", len(s))
	}
}

func TestWriteTemplate(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/home/u/.config/lfslocker/config.yaml"

	if err := WriteTemplate(fs, path, false); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != Template() {
		t.Error("written file does not match template")
	}

	if err := WriteTemplate(fs, path, false); err == nil {
		t.Error("WriteTemplate() should refuse to overwrite without force")
	}
	if err := WriteTemplate(fs, path, true); err != nil {
		t.Errorf("WriteTemplate(force) error = %v", err)
	}
}

func TestTemplate_LoadsAsDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(Template())); err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("template config = %+v, want defaults %+v", cfg, Default())
	}
}
