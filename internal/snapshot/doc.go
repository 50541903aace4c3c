// Package snapshot holds the point-in-time views the sync loop compares:
// the lock registry as returned by git-lfs, and the set of locally modified
// paths reported by git status.
//
// Both snapshots are immutable once built and are rebuilt wholesale every
// cycle. Paths are repository-root relative, slash separated and NFC
// normalized so that a status path and a lock path naming the same file
// always compare equal.
package snapshot
