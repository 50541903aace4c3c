package git

import (
	"bytes"
	"fmt"

	"github.com/Iron-Ham/lfslocker/internal/errors"
	"github.com/Iron-Ham/lfslocker/internal/snapshot"
)

// Status returns the paths git reports as changed in the work tree.
// Ignored paths are never reported. Untracked paths are included only when
// includeUntracked is set.
func (r *Repository) Status(includeUntracked bool) (*snapshot.Status, error) {
	untracked := "-uno"
	if includeUntracked {
		untracked = "-uall"
	}
	args := []string{"status", "--porcelain=1", "-z", "--ignored=no", untracked}

	out, err := r.run(args...)
	if err != nil {
		return nil, errors.NewEnvironmentError("git status failed", err).
			WithRepository(r.root).WithCommand(argv(args)).WithOutput(rawOutput(out, err))
	}

	entries, err := ParsePorcelainZ(out)
	if err != nil {
		return nil, errors.NewEnvironmentError("cannot parse git status output", err).
			WithRepository(r.root).WithCommand(argv(args)).WithOutput(string(out))
	}
	return snapshot.NewStatus(entries, includeUntracked), nil
}

// ParsePorcelainZ parses `git status --porcelain=1 -z` output. Each record
// is "XY PATH" terminated by NUL; renames and copies are followed by a
// second NUL-terminated field holding the source path, which is skipped.
func ParsePorcelainZ(out []byte) ([]snapshot.StatusEntry, error) {
	var entries []snapshot.StatusEntry

	rest := out
	next := func() ([]byte, bool) {
		if len(rest) == 0 {
			return nil, false
		}
		i := bytes.IndexByte(rest, 0)
		if i < 0 {
			field := rest
			rest = nil
			return field, true
		}
		field := rest[:i]
		rest = rest[i+1:]
		return field, true
	}

	for {
		rec, ok := next()
		if !ok {
			break
		}
		if len(rec) == 0 {
			continue
		}
		if len(rec) < 4 || rec[2] != ' ' {
			return nil, fmt.Errorf("%w: record %q", errors.ErrUnparseableOutput, rec)
		}

		code := string(rec[:2])
		path := string(rec[3:])

		if isRenameOrCopy(code) {
			if _, ok := next(); !ok {
				return nil, fmt.Errorf("%w: %s record for %q has no source path", errors.ErrUnparseableOutput, code, path)
			}
		}
		if code == "!!" {
			continue
		}

		entries = append(entries, snapshot.StatusEntry{Code: code, Path: path})
	}
	return entries, nil
}

func isRenameOrCopy(code string) bool {
	for _, c := range code {
		if c == 'R' || c == 'C' {
			return true
		}
	}
	return false
}
