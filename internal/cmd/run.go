package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/lfslocker/internal/config"
	"github.com/Iron-Ham/lfslocker/internal/daemon"
	"github.com/Iron-Ham/lfslocker/internal/errors"
	"github.com/Iron-Ham/lfslocker/internal/git"
	"github.com/Iron-Ham/lfslocker/internal/guard"
	"github.com/Iron-Ham/lfslocker/internal/logging"
	"github.com/Iron-Ham/lfslocker/internal/notify"
	"github.com/Iron-Ham/lfslocker/internal/stopcond"
	"github.com/Iron-Ham/lfslocker/internal/watch"
)

var runOnce bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Keep LFS locks in sync with the work tree until stopped",
	Long: `Run the lock synchronisation loop.

Every cycle compares your modified files with the server's lock list:
modified files you have not locked are locked, files you locked but no
longer modify are unlocked, and modified files locked by someone else
raise a warning. The loop runs until interrupted, until --stop-after's
process exits, or after one cycle with --once.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single cycle and exit")
	bindFlags(runCmd.Flags(), map[string]string{
		"sync.interval":         "interval",
		"sync.lock_untracked":   "untracked",
		"stop.after_process":    "stop-after",
		"stop.after_pid":        "stop-after-pid",
		"watch.enabled":         "watch",
		"notifications.enabled": "notify",
	}, func(fs *pflag.FlagSet) {
		fs.Duration("interval", 0, "sleep between cycles (default 30s)")
		fs.Bool("untracked", false, "also lock files git does not track yet")
		fs.String("stop-after", "", "stop once no process with this name is running")
		fs.Int("stop-after-pid", 0, "stop once the process with this pid exits")
		fs.Bool("watch", false, "wake up early when files in the work tree change")
		fs.Bool("notify", true, "show desktop notifications")
	})
}

// bindFlags defines flags through define and binds each one to its viper key.
func bindFlags(fs *pflag.FlagSet, keys map[string]string, define func(*pflag.FlagSet)) {
	define(fs)
	for key, name := range keys {
		_ = viper.BindPFlag(key, fs.Lookup(name))
	}
}

// session is an opened, verified repository plus the owner name to lock as.
type session struct {
	repo     *git.Repository
	identity string
}

// openSession opens the repository and checks everything a cycle depends on.
func openSession(cfg *config.Config, logger *logging.Logger) (*session, error) {
	repo, err := git.Open(cfg.Repository.Path,
		git.WithLogger(logger),
		git.WithAcknowledgement(cfg.Sync.VerifyAcknowledgement),
	)
	if err != nil {
		return nil, err
	}

	version, err := repo.CheckLFS()
	if err != nil {
		return nil, err
	}

	identity, err := repo.ResolveIdentity(cfg.Identity.Username)
	if err != nil {
		return nil, err
	}

	logger.Debug("repository opened", "git_dir", repo.GitDir(), "lfs", version, "identity", identity)
	return &session{repo: repo, identity: identity}, nil
}

// buildSink returns where cycle notifications go.
func buildSink(cfg *config.Config, logger *logging.Logger) notify.Sink {
	logSink := notify.NewLogSink(logger)
	if !cfg.Notifications.Enabled {
		return logSink
	}
	return notify.Multi{notify.NewDesktop(notify.WithDesktopLogger(logger)), logSink}
}

// buildStopCondition combines every configured reason to stop the loop.
func buildStopCondition(cfg *config.Config, once bool, logger *logging.Logger) stopcond.Condition {
	var conds []stopcond.Condition
	if cfg.Stop.AfterProcess != "" {
		conds = append(conds, stopcond.ProcessExited(cfg.Stop.AfterProcess, stopcond.WithLogger(logger)))
	}
	if cfg.Stop.AfterPID > 0 {
		conds = append(conds, stopcond.PIDExited(cfg.Stop.AfterPID))
	}
	if once {
		conds = append(conds, stopcond.AfterCycles(1))
	}
	if len(conds) == 0 {
		return stopcond.Never
	}
	return stopcond.Any(conds...)
}

func driverSettings(cfg *config.Config, identity string) daemon.Settings {
	return daemon.Settings{
		Identity:            identity,
		Interval:            cfg.Sync.Interval,
		CachedRefreshPeriod: cfg.Sync.CachedRefreshPeriod,
		LockUntracked:       cfg.Sync.LockUntracked,
		ParallelFetch:       cfg.Sync.ParallelFetch,
		ShowLockAndUnlock:   cfg.Notifications.ShowLockAndUnlock,
		RewarnAfterClear:    cfg.Notifications.RewarnAfterClear,
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	s, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	logger = logger.WithRepository(s.repo.Root())

	g, err := guard.Acquire(s.repo.GitDir())
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Release(); err != nil {
			logger.Warn("failed to release instance lock", "path", g.Path(), "error", err)
		}
	}()

	opts := []daemon.Option{
		daemon.WithSink(buildSink(cfg, logger)),
		daemon.WithStopCondition(buildStopCondition(cfg, runOnce, logger)),
		daemon.WithLogger(logger),
	}

	if cfg.Watch.Enabled {
		w, err := watch.New(s.repo.Root(), watch.WithDebounce(cfg.Watch.Debounce), watch.WithLogger(logger))
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
		opts = append(opts, daemon.WithWake(w.Wake()))
	}

	d, err := daemon.New(s.repo, driverSettings(cfg, s.identity), opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := d.Run(ctx); err != nil {
		return errors.Wrap(err, "lock sync stopped")
	}
	logger.Info("lock sync stopped", "cycles", d.Cycles())
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
