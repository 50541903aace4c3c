package snapshot

import "time"

// Lock is one entry of the lock registry.
type Lock struct {
	ID       int64     // server-assigned, unique within the registry
	Path     string    // repository-relative, normalized
	Owner    string    // owner display name, compared by exact equality
	LockedAt time.Time // when the lock was taken
}

// Registry is the lock list as of one fetch, partitioned by ownership
// relative to a fixed identity.
type Registry struct {
	locks     []Lock
	cached    bool
	fetchedAt time.Time
}

// NewRegistry builds a registry snapshot. Lock paths are normalized; the
// input slice is copied.
func NewRegistry(locks []Lock, cached bool, fetchedAt time.Time) *Registry {
	own := make([]Lock, len(locks))
	for i, l := range locks {
		l.Path = NormalizePath(l.Path)
		own[i] = l
	}
	return &Registry{locks: own, cached: cached, fetchedAt: fetchedAt}
}

// Locks returns a copy of every lock in fetch order.
func (r *Registry) Locks() []Lock {
	out := make([]Lock, len(r.locks))
	copy(out, r.locks)
	return out
}

// Len returns the number of locks.
func (r *Registry) Len() int {
	return len(r.locks)
}

// Cached reports whether the snapshot came from the cached endpoint.
func (r *Registry) Cached() bool {
	return r.cached
}

// FetchedAt returns when the snapshot was taken.
func (r *Registry) FetchedAt() time.Time {
	return r.fetchedAt
}

// Own returns locks held by identity.
func (r *Registry) Own(identity string) []Lock {
	return r.filter(func(l Lock) bool { return l.Owner == identity })
}

// Others returns locks held by anyone but identity.
func (r *Registry) Others(identity string) []Lock {
	return r.filter(func(l Lock) bool { return l.Owner != identity })
}

// OwnPaths returns the path set of Own(identity).
func (r *Registry) OwnPaths(identity string) PathSet {
	return pathsOf(r.Own(identity))
}

// OtherPaths returns the path set of Others(identity).
func (r *Registry) OtherPaths(identity string) PathSet {
	return pathsOf(r.Others(identity))
}

// Partition returns own and other path sets in one pass. Ownership is a
// total predicate, so the two sets never share a path unless the registry
// itself lists one path under two owners.
func (r *Registry) Partition(identity string) (own, others PathSet) {
	own, others = make(PathSet), make(PathSet)
	for _, l := range r.locks {
		if l.Owner == identity {
			own[l.Path] = struct{}{}
		} else {
			others[l.Path] = struct{}{}
		}
	}
	return own, others
}

func (r *Registry) filter(keep func(Lock) bool) []Lock {
	var out []Lock
	for _, l := range r.locks {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func pathsOf(locks []Lock) PathSet {
	s := make(PathSet, len(locks))
	for _, l := range locks {
		s[l.Path] = struct{}{}
	}
	return s
}
