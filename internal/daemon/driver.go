// Package daemon runs the lock reconciliation loop.
//
// Each cycle fetches a status snapshot and a lock registry snapshot,
// reconciles them, and applies the resulting actions. A cached registry
// fetch that finds any mismatch is discarded and the cycle reruns at once
// with an authoritative fetch; only authoritative results lock, unlock or
// notify. Stop conditions are polled after every completed cycle, then the
// loop sleeps.
//
// The loop is single-threaded. External calls are never interrupted: a
// cancelled context is observed only between cycles and during the sleep.
package daemon

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/lfslocker/internal/action"
	"github.com/Iron-Ham/lfslocker/internal/errors"
	"github.com/Iron-Ham/lfslocker/internal/logging"
	"github.com/Iron-Ham/lfslocker/internal/notify"
	"github.com/Iron-Ham/lfslocker/internal/reconcile"
	"github.com/Iron-Ham/lfslocker/internal/snapshot"
	"github.com/Iron-Ham/lfslocker/internal/stopcond"
)

// Repository is everything the loop needs from git and git-lfs.
type Repository interface {
	Status(includeUntracked bool) (*snapshot.Status, error)
	Locks(cached bool) (*snapshot.Registry, error)
	action.Locker
}

// Settings is the immutable loop configuration.
type Settings struct {
	// Identity is the lock owner name of this user.
	Identity string
	// Interval is the sleep between completed cycles.
	Interval time.Duration
	// CachedRefreshPeriod makes every n-th registry fetch authoritative.
	CachedRefreshPeriod int
	// LockUntracked includes untracked files in the status snapshot.
	LockUntracked bool
	// ParallelFetch fetches both snapshots concurrently.
	ParallelFetch bool
	// ShowLockAndUnlock sends count notifications for lock/unlock batches.
	ShowLockAndUnlock bool
	// RewarnAfterClear prunes warned paths that no longer block.
	RewarnAfterClear bool
}

// Sleeper waits for d, an early wake-up, or ctx cancellation.
type Sleeper func(ctx context.Context, d time.Duration, wake <-chan struct{}) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration, wake <-chan struct{}) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	case <-wake:
		return nil
	}
}

// CycleResult describes one pass through the loop.
type CycleResult struct {
	// Cycle is the 1-based sequence number of the pass.
	Cycle uint64
	// Cached reports whether the registry fetch was served from cache.
	Cached bool
	// Escalated reports that a cached mismatch was discarded and the next
	// pass must be authoritative. No actions ran.
	Escalated bool
	// Result is the reconciliation of this pass.
	Result reconcile.Result
	// Report lists the actions taken. Empty when Escalated.
	Report action.Report
}

// Driver owns the loop state: the cycle counter and the warned-paths set.
type Driver struct {
	repo     Repository
	settings Settings

	policy   *reconcile.CachePolicy
	warned   *action.WarnedSet
	executor *action.Executor

	sink    notify.Sink
	stop    stopcond.Condition
	wake    <-chan struct{}
	sleep   Sleeper
	logger  *logging.Logger
	cycles  uint64
	onCycle func(CycleResult)
}

// Option configures a Driver.
type Option func(*Driver)

// WithSink sets the notification sink. Defaults to notify.Nop.
func WithSink(s notify.Sink) Option {
	return func(d *Driver) {
		if s != nil {
			d.sink = s
		}
	}
}

// WithStopCondition sets the condition polled after each completed cycle.
func WithStopCondition(c stopcond.Condition) Option {
	return func(d *Driver) {
		if c != nil {
			d.stop = c
		}
	}
}

// WithWake sets a channel that ends the sleep early.
func WithWake(wake <-chan struct{}) Option {
	return func(d *Driver) {
		d.wake = wake
	}
}

// WithSleeper replaces the sleep between cycles.
func WithSleeper(s Sleeper) Option {
	return func(d *Driver) {
		if s != nil {
			d.sleep = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithCycleHook registers a callback invoked after every pass.
func WithCycleHook(fn func(CycleResult)) Option {
	return func(d *Driver) {
		d.onCycle = fn
	}
}

// New creates a Driver for repo.
func New(repo Repository, settings Settings, opts ...Option) (*Driver, error) {
	policy, err := reconcile.NewCachePolicy(settings.CachedRefreshPeriod)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		repo:     repo,
		settings: settings,
		policy:   policy,
		warned:   action.NewWarnedSet(),
		sink:     notify.Nop{},
		stop:     stopcond.Never,
		sleep:    Sleep,
		logger:   logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.executor = action.NewExecutor(repo, d.sink, d.warned, d.logger, action.Options{
		ShowLockAndUnlock: settings.ShowLockAndUnlock,
	})
	return d, nil
}

// Run loops until a stop condition fires, ctx is cancelled, or a cycle
// fails. Stopping and cancellation return nil; a failed cycle returns its
// error prefixed with the cycle number.
func (d *Driver) Run(ctx context.Context) error {
	d.logger.Info("sync loop started",
		"identity", d.settings.Identity,
		"interval", d.settings.Interval.String(),
		"cached_refresh_period", d.settings.CachedRefreshPeriod,
		"stop", stopcond.Describe(d.stop),
	)

	for {
		if ctx.Err() != nil {
			d.logger.Info("sync loop cancelled", "cycles", d.cycles)
			return nil
		}

		res, err := d.Cycle()
		if err != nil {
			return errors.Wrapf(err, "cycle %d", res.Cycle)
		}
		if res.Escalated {
			continue
		}

		if d.stop.ShouldStop() {
			d.logger.Info("stop condition met", "cycles", d.cycles)
			return nil
		}

		d.logger.Debug("sleeping", "duration", d.settings.Interval.String())
		if err := d.sleep(ctx, d.settings.Interval, d.wake); err != nil {
			d.logger.Info("sync loop cancelled", "cycles", d.cycles)
			return nil
		}
	}
}

// Cycle runs one pass: fetch, reconcile and, unless a cached mismatch
// escalates, act.
func (d *Driver) Cycle() (CycleResult, error) {
	d.cycles++
	cached := d.policy.Next()
	log := d.logger.WithCycle(d.cycles)
	log.Debug("checking git status and lock registry", "cached", cached)

	res := CycleResult{Cycle: d.cycles, Cached: cached}

	status, registry, err := d.fetch(cached)
	if err != nil {
		log.Error("cycle failed", "error", err, "severity", errors.GetSeverity(err).String())
		return res, err
	}

	res.Result = reconcile.FromSnapshots(status, registry, d.settings.Identity, d.warned.Paths())

	if cached && !res.Result.Empty() {
		blocking, missing, unnecessary := res.Result.Counts()
		log.Debug("mismatch on cached lock list, confirming with server",
			"blocking", blocking, "missing", missing, "unnecessary", unnecessary)
		d.policy.Escalate()
		res.Escalated = true
		d.notifyHook(res)
		return res, nil
	}

	report, err := d.executor.Apply(res.Result)
	res.Report = report
	if err != nil {
		log.Error("cycle failed", "error", err, "severity", errors.GetSeverity(err).String())
		return res, err
	}

	if d.settings.RewarnAfterClear && !cached {
		_, others := registry.Partition(d.settings.Identity)
		d.executor.PruneWarned(status.Paths(), others)
	}

	d.notifyHook(res)
	return res, nil
}

// Warned returns a copy of the warned-paths set.
func (d *Driver) Warned() snapshot.PathSet {
	return d.warned.Paths()
}

// Cycles returns the number of passes run so far.
func (d *Driver) Cycles() uint64 {
	return d.cycles
}

func (d *Driver) notifyHook(res CycleResult) {
	if d.onCycle != nil {
		d.onCycle(res)
	}
}

// fetch acquires both snapshots, concurrently when configured. Both must
// succeed before anything is reconciled.
func (d *Driver) fetch(cached bool) (*snapshot.Status, *snapshot.Registry, error) {
	if !d.settings.ParallelFetch {
		status, err := d.repo.Status(d.settings.LockUntracked)
		if err != nil {
			return nil, nil, err
		}
		registry, err := d.repo.Locks(cached)
		if err != nil {
			return nil, nil, err
		}
		return status, registry, nil
	}

	var (
		status   *snapshot.Status
		registry *snapshot.Registry
	)
	p := pool.New().WithErrors().WithFirstError()
	p.Go(func() error {
		var err error
		status, err = d.repo.Status(d.settings.LockUntracked)
		return err
	})
	p.Go(func() error {
		var err error
		registry, err = d.repo.Locks(cached)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, nil, err
	}
	return status, registry, nil
}
