package daemon

import (
	"time"

	"github.com/Iron-Ham/lfslocker/internal/reconcile"
	"github.com/Iron-Ham/lfslocker/internal/snapshot"
)

// Inspection is a read-only view of what a cycle would do right now.
type Inspection struct {
	Identity    string    `json:"identity"`
	CheckedAt   time.Time `json:"checked_at"`
	Modified    []string  `json:"modified"`
	OwnLocks    []string  `json:"own_locks"`
	OtherLocks  []Holder  `json:"other_locks"`
	Blocking    []string  `json:"blocking"`
	Missing     []string  `json:"missing"`
	Unnecessary []string  `json:"unnecessary"`
}

// Holder is a path locked by someone else.
type Holder struct {
	Path     string    `json:"path"`
	Owner    string    `json:"owner"`
	LockedAt time.Time `json:"locked_at"`
}

// InSync reports whether a cycle would take no action.
func (i Inspection) InSync() bool {
	return len(i.Blocking) == 0 && len(i.Missing) == 0 && len(i.Unnecessary) == 0
}

// Inspect fetches both snapshots authoritatively and reconciles them with
// an empty warned set. It never locks, unlocks or notifies.
func Inspect(repo Repository, identity string, includeUntracked bool) (Inspection, error) {
	status, err := repo.Status(includeUntracked)
	if err != nil {
		return Inspection{}, err
	}
	registry, err := repo.Locks(false)
	if err != nil {
		return Inspection{}, err
	}

	result := reconcile.FromSnapshots(status, registry, identity, snapshot.NewPathSet())

	others := registry.Others(identity)
	holders := make([]Holder, 0, len(others))
	for _, l := range others {
		holders = append(holders, Holder{Path: l.Path, Owner: l.Owner, LockedAt: l.LockedAt})
	}

	return Inspection{
		Identity:    identity,
		CheckedAt:   registry.FetchedAt(),
		Modified:    status.Paths().Sorted(),
		OwnLocks:    registry.OwnPaths(identity).Sorted(),
		OtherLocks:  holders,
		Blocking:    result.Blocking.Sorted(),
		Missing:     result.Missing.Sorted(),
		Unnecessary: result.Unnecessary.Sorted(),
	}, nil
}
