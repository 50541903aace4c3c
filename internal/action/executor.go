// Package action applies a reconciliation result: it warns about blocking
// paths, locks missing ones and unlocks unnecessary ones.
package action

import (
	"fmt"

	"github.com/Iron-Ham/lfslocker/internal/errors"
	"github.com/Iron-Ham/lfslocker/internal/logging"
	"github.com/Iron-Ham/lfslocker/internal/notify"
	"github.com/Iron-Ham/lfslocker/internal/reconcile"
	"github.com/Iron-Ham/lfslocker/internal/snapshot"
)

// Locker acquires and releases single-path locks.
type Locker interface {
	Lock(path string) error
	Unlock(path string) error
}

// Report summarizes what one Apply call did.
type Report struct {
	Warned   []string
	Locked   []string
	Unlocked []string
}

// Empty reports whether nothing was done.
func (r Report) Empty() bool {
	return len(r.Warned) == 0 && len(r.Locked) == 0 && len(r.Unlocked) == 0
}

// Options controls optional executor behavior.
type Options struct {
	// ShowLockAndUnlock sends count notifications after lock/unlock batches.
	ShowLockAndUnlock bool
}

// Executor carries out the actions for an authoritative cycle.
type Executor struct {
	locker Locker
	sink   notify.Sink
	warned *WarnedSet
	logger *logging.Logger
	opts   Options
}

// NewExecutor creates an Executor. warned is shared with the caller, which
// reads it when computing the next cycle.
func NewExecutor(locker Locker, sink notify.Sink, warned *WarnedSet, logger *logging.Logger, opts Options) *Executor {
	if sink == nil {
		sink = notify.Nop{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Executor{
		locker: locker,
		sink:   sink,
		warned: warned,
		logger: logger,
		opts:   opts,
	}
}

// Apply performs the actions for result in fixed order: one aggregated
// warning for blocking paths, then a lock per missing path, then an unlock
// per unnecessary path. Paths within a batch are processed in sorted order.
//
// The first lock or unlock failure aborts the remaining work and is
// returned as a *errors.RemoteOperationError. The report covers what
// completed before the failure.
func (e *Executor) Apply(result reconcile.Result) (Report, error) {
	var report Report

	if !result.Blocking.Empty() {
		paths := result.Blocking.Sorted()
		e.logger.Info("modified files are locked by other people", "paths", paths)
		e.sink.Warning(BlockingMessage(len(paths)))
		e.warned.Add(result.Blocking)
		report.Warned = paths
	}

	if !result.Missing.Empty() {
		e.logger.Debug("modified files are not locked", "paths", result.Missing.Sorted())
		for _, p := range result.Missing.Sorted() {
			e.logger.Info("locking", "path", p)
			if err := e.locker.Lock(p); err != nil {
				return report, asRemote("lock", p, err)
			}
			report.Locked = append(report.Locked, p)
		}
		if e.opts.ShowLockAndUnlock {
			e.sink.Info(fmt.Sprintf("Locked %d modified file(s)", len(report.Locked)))
		}
	}

	if !result.Unnecessary.Empty() {
		e.logger.Debug("locked files are not modified", "paths", result.Unnecessary.Sorted())
		for _, p := range result.Unnecessary.Sorted() {
			e.logger.Info("unlocking", "path", p)
			if err := e.locker.Unlock(p); err != nil {
				return report, asRemote("unlock", p, err)
			}
			report.Unlocked = append(report.Unlocked, p)
		}
		if e.opts.ShowLockAndUnlock {
			e.sink.Info(fmt.Sprintf("Unlocked %d unmodified file(s)", len(report.Unlocked)))
		}
	}

	return report, nil
}

// PruneWarned keeps only warned paths that are still modified and locked
// by others, so a path that stops blocking is warned about again if it
// starts blocking later. It returns the number of paths dropped.
func (e *Executor) PruneWarned(status, others snapshot.PathSet) int {
	removed := e.warned.Retain(status.Intersect(others))
	if removed > 0 {
		e.logger.Debug("cleared warnings for paths no longer blocking", "count", removed)
	}
	return removed
}

// BlockingMessage is the warning shown for n blocking paths.
func BlockingMessage(n int) string {
	return fmt.Sprintf("You are modifying %d file(s) that were locked by other people!", n)
}

func asRemote(op, path string, err error) error {
	var remote *errors.RemoteOperationError
	if errors.As(err, &remote) {
		return err
	}
	return errors.NewRemoteOperationError(op, path, err)
}
