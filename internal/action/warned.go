package action

import "github.com/Iron-Ham/lfslocker/internal/snapshot"

// WarnedSet tracks paths the user has already been warned about. It lives
// for the whole process and is owned by a single loop, so it is not safe
// for concurrent use.
type WarnedSet struct {
	paths snapshot.PathSet
}

// NewWarnedSet returns an empty set.
func NewWarnedSet() *WarnedSet {
	return &WarnedSet{paths: snapshot.NewPathSet()}
}

// Add records paths as warned.
func (w *WarnedSet) Add(paths snapshot.PathSet) {
	for p := range paths {
		w.paths[p] = struct{}{}
	}
}

// Retain drops every path not in keep and returns how many were removed.
func (w *WarnedSet) Retain(keep snapshot.PathSet) int {
	removed := 0
	for p := range w.paths {
		if _, ok := keep[p]; !ok {
			delete(w.paths, p)
			removed++
		}
	}
	return removed
}

// Paths returns a snapshot copy of the set.
func (w *WarnedSet) Paths() snapshot.PathSet {
	return w.paths.Clone()
}

// Len returns the number of warned paths.
func (w *WarnedSet) Len() int {
	return w.paths.Len()
}
