package snapshot

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizePath canonicalizes a repository-relative path for comparison.
// It converts backslashes to slashes, drops a leading "./" and applies
// Unicode NFC (macOS file systems report decomposed names).
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return norm.NFC.String(p)
}

// PathSet is a set of normalized repository-relative paths.
type PathSet map[string]struct{}

// NewPathSet builds a set from paths, normalizing each one.
func NewPathSet(paths ...string) PathSet {
	s := make(PathSet, len(paths))
	for _, p := range paths {
		s.Add(p)
	}
	return s
}

// Add inserts p after normalization. Empty paths are ignored.
func (s PathSet) Add(p string) {
	if p = NormalizePath(p); p != "" {
		s[p] = struct{}{}
	}
}

// Contains reports whether p (normalized) is in the set.
func (s PathSet) Contains(p string) bool {
	_, ok := s[NormalizePath(p)]
	return ok
}

// Len returns the number of paths.
func (s PathSet) Len() int {
	return len(s)
}

// Empty reports whether the set has no paths.
func (s PathSet) Empty() bool {
	return len(s) == 0
}

// Sorted returns the paths in lexical order. Used wherever output order
// must be deterministic (logging, lock/unlock batches, reports).
func (s PathSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s PathSet) Clone() PathSet {
	out := make(PathSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Intersect returns s ∩ other.
func (s PathSet) Intersect(other PathSet) PathSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(PathSet)
	for p := range small {
		if _, ok := large[p]; ok {
			out[p] = struct{}{}
		}
	}
	return out
}

// Difference returns s minus every set in others.
func (s PathSet) Difference(others ...PathSet) PathSet {
	out := make(PathSet, len(s))
outer:
	for p := range s {
		for _, o := range others {
			if _, ok := o[p]; ok {
				continue outer
			}
		}
		out[p] = struct{}{}
	}
	return out
}

// Union returns s ∪ other.
func (s PathSet) Union(other PathSet) PathSet {
	out := s.Clone()
	for p := range other {
		out[p] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold exactly the same paths.
func (s PathSet) Equal(other PathSet) bool {
	if len(s) != len(other) {
		return false
	}
	for p := range s {
		if _, ok := other[p]; !ok {
			return false
		}
	}
	return true
}
