package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/lfslocker/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify lfslocker configuration",
	Long: `View or modify lfslocker configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  lfslocker config set sync.interval 30s
  lfslocker config set sync.cached_refresh_period 3
  lfslocker config set notifications.show_lock_and_unlock true
  lfslocker config set identity.username "Jane Doe"

Run 'lfslocker config show' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a commented config file at ~/.config/lfslocker/config.yaml with all available options.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Settings()); err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	return enc.Close()
}

// settingKeys returns every dotted key with its default value.
func settingKeys() map[string]any {
	keys := make(map[string]any)
	for section, values := range config.Default().Settings() {
		for name, value := range values.(map[string]any) {
			keys[section+"."+name] = value
		}
	}
	return keys
}

// parseSetting converts raw to the type of key's default value.
func parseSetting(key, raw string) (any, error) {
	keys := settingKeys()
	def, ok := keys[key]
	if !ok {
		names := make([]string, 0, len(keys))
		for name := range keys {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(names, ", "))
	}

	switch def.(type) {
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	}

	if key == "sync.interval" || key == "watch.debounce" {
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected a duration such as 10s", key)
		}
	}
	return raw, nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	value, err := parseSetting(key, raw)
	if err != nil {
		return err
	}

	viper.Set(key, value)
	if _, err := loadConfig(); err != nil {
		return err
	}

	path := viper.ConfigFileUsed()
	if path == "" {
		path = config.ConfigFile()
		fs := afero.NewOsFs()
		if err := fs.MkdirAll(config.ConfigDir(), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, value)
	fmt.Fprintf(out, "Config saved to %s\n", path)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ConfigFile()
	if err := config.WriteTemplate(afero.NewOsFs(), path, configInitForce); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", path)
	fmt.Fprintln(out, "Edit this file to customize lfslocker's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	for i, dir := range config.SearchPaths() {
		fmt.Fprintf(out, "  %d. %s\n", i+1, filepath.Join(dir, "config.yaml"))
	}
	fmt.Fprintf(out, "\nEnvironment variables: %s_* (e.g., %s_SYNC_INTERVAL)\n", config.EnvPrefix, config.EnvPrefix)
	return nil
}
