package snapshot

// StatusEntry is one record of git status: the two-letter XY code and the
// repository-relative path (the destination for renames and copies).
type StatusEntry struct {
	Code string
	Path string
}

// Untracked reports whether the entry is an untracked file.
func (e StatusEntry) Untracked() bool {
	return e.Code == "??"
}

// Status is the set of locally modified paths at one point in time.
type Status struct {
	entries   []StatusEntry
	untracked bool
}

// NewStatus builds a status snapshot. includesUntracked records whether the
// query asked for untracked files.
func NewStatus(entries []StatusEntry, includesUntracked bool) *Status {
	own := make([]StatusEntry, len(entries))
	for i, e := range entries {
		e.Path = NormalizePath(e.Path)
		own[i] = e
	}
	return &Status{entries: own, untracked: includesUntracked}
}

// Entries returns a copy of the status records in query order.
func (s *Status) Entries() []StatusEntry {
	out := make([]StatusEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// IncludesUntracked reports whether untracked paths were requested.
func (s *Status) IncludesUntracked() bool {
	return s.untracked
}

// Paths returns the modified path set.
func (s *Status) Paths() PathSet {
	out := make(PathSet, len(s.entries))
	for _, e := range s.entries {
		if e.Path != "" {
			out[e.Path] = struct{}{}
		}
	}
	return out
}
