package git

import "github.com/Iron-Ham/lfslocker/internal/snapshot"

// StatusSource produces status snapshots of the work tree.
type StatusSource interface {
	// Status returns modified paths, optionally including untracked ones.
	// Ignored paths are never included.
	Status(includeUntracked bool) (*snapshot.Status, error)
}

// LockRegistry produces lock registry snapshots.
type LockRegistry interface {
	// Locks fetches the registry. cached=true may return a stale view.
	Locks(cached bool) (*snapshot.Registry, error)
}

// Locker acquires and releases single-path locks.
type Locker interface {
	Lock(path string) error
	Unlock(path string) error
}

// IdentityResolver resolves the lock owner name.
type IdentityResolver interface {
	// ResolveIdentity returns configured if non-empty, otherwise the
	// VCS-configured user name.
	ResolveIdentity(configured string) (string, error)
}

// Ensure Repository implements all interfaces at compile time.
var (
	_ StatusSource     = (*Repository)(nil)
	_ LockRegistry     = (*Repository)(nil)
	_ Locker           = (*Repository)(nil)
	_ IdentityResolver = (*Repository)(nil)
)
