package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/lfslocker/internal/config"
	"github.com/Iron-Ham/lfslocker/internal/errors"
	"github.com/Iron-Ham/lfslocker/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "lfslocker",
	Short: "Automatically lock and unlock Git LFS files as you edit them",
	Long: `lfslocker keeps your Git LFS locks in step with your work tree.

Files you modify are locked for you, files you stop modifying are unlocked,
and you are warned when you modify a file someone else has locked.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.config/lfslocker/config.yaml)")
	flags.StringP("repo", "C", "", "path inside the git work tree (default is the current directory)")
	flags.StringP("user", "u", "", "lock owner name (default is git config user.name)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-file", "", "write logs to this file instead of stderr")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("repository.path", flags.Lookup("repo"))
	_ = viper.BindPFlag("identity.username", flags.Lookup("user"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.file", flags.Lookup("log-file"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		for _, dir := range config.SearchPaths() {
			viper.AddConfigPath(dir)
		}
	}

	// e.g., LFSLOCKER_SYNC_INTERVAL for sync.interval
	config.BindEnv(viper.GetViper())

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// loadConfig decodes and validates the effective configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.NewConfigurationError("invalid configuration", errors.Join(errors.ErrInvalidConfig, err)).
			WithValue(viper.ConfigFileUsed())
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging section.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.NewLoggerWithRotation(cfg.Logging.File, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, errors.NewConfigurationError("cannot open log file", err).
			WithField("logging.file").WithValue(cfg.Logging.File)
	}
	return logger, nil
}
