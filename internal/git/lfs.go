package git

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Iron-Ham/lfslocker/internal/errors"
	"github.com/Iron-Ham/lfslocker/internal/snapshot"
)

// lockRecord mirrors one element of `git lfs locks --json`. Pointer fields
// distinguish a missing key from a zero value.
type lockRecord struct {
	ID       json.RawMessage `json:"id"`
	Path     *string         `json:"path"`
	Owner    *lockOwner      `json:"owner"`
	LockedAt *string         `json:"locked_at"`
}

type lockOwner struct {
	Name *string `json:"name"`
}

// Locks fetches the lock registry. A cached fetch may return stale data
// and never contacts the server.
func (r *Repository) Locks(cached bool) (*snapshot.Registry, error) {
	args := []string{"lfs", "locks", "--json"}
	if cached {
		args = append(args, "--cached")
	}

	out, err := r.run(args...)
	if err != nil {
		return nil, errors.NewEnvironmentError("git lfs locks failed", err).
			WithRepository(r.root).WithCommand(argv(args)).WithOutput(rawOutput(out, err))
	}

	locks, err := ParseLocks(out)
	if err != nil {
		var protoErr *errors.ProtocolError
		if errors.As(err, &protoErr) {
			return nil, protoErr.WithCommand(argv(args)).WithOutput(string(out))
		}
		return nil, err
	}
	return snapshot.NewRegistry(locks, cached, r.now()), nil
}

// ParseLocks decodes a lock registry JSON array. Every record must carry
// id, path, owner.name and locked_at; ids may be JSON strings or numbers.
func ParseLocks(out []byte) ([]snapshot.Lock, error) {
	body := bytes.TrimSpace(out)
	if len(body) == 0 {
		return nil, errors.NewProtocolError("empty response", errors.ErrMalformedResponse)
	}

	var records []lockRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, errors.NewProtocolError("invalid JSON", errors.Join(errors.ErrMalformedResponse, err))
	}

	locks := make([]snapshot.Lock, 0, len(records))
	for i, rec := range records {
		lock, err := rec.toLock(i)
		if err != nil {
			return nil, err
		}
		locks = append(locks, lock)
	}
	return locks, nil
}

func (rec lockRecord) toLock(index int) (snapshot.Lock, error) {
	invalid := func(field, what string, cause error) error {
		return errors.NewProtocolError(fmt.Sprintf("lock record %d: %s", index, what), cause).WithField(field)
	}
	missing := func(field string) error {
		return invalid(field, "missing field", errors.ErrMissingField)
	}

	if len(rec.ID) == 0 || string(rec.ID) == "null" {
		return snapshot.Lock{}, missing("id")
	}
	id, err := parseLockID(rec.ID)
	if err != nil {
		return snapshot.Lock{}, invalid("id", "invalid id", errors.Join(errors.ErrMalformedResponse, err))
	}
	if rec.Path == nil || *rec.Path == "" {
		return snapshot.Lock{}, missing("path")
	}
	if rec.Owner == nil || rec.Owner.Name == nil {
		return snapshot.Lock{}, missing("owner.name")
	}
	if rec.LockedAt == nil {
		return snapshot.Lock{}, missing("locked_at")
	}
	lockedAt, err := time.Parse(time.RFC3339, *rec.LockedAt)
	if err != nil {
		return snapshot.Lock{}, invalid("locked_at", "invalid timestamp", errors.Join(errors.ErrMalformedResponse, err))
	}

	return snapshot.Lock{
		ID:       id,
		Path:     *rec.Path,
		Owner:    *rec.Owner.Name,
		LockedAt: lockedAt,
	}, nil
}

// parseLockID accepts "42" or 42.
func parseLockID(raw json.RawMessage) (int64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n.Int64()
}

// Lock acquires the lock on path for the configured identity.
func (r *Repository) Lock(path string) error {
	args := []string{"lfs", "lock"}
	if r.verifyAck {
		args = append(args, "--json")
	}
	args = append(args, path)

	out, err := r.run(args...)
	if err != nil {
		return errors.NewRemoteOperationError("lock", path, err).
			WithCommand(argv(args)).WithOutput(rawOutput(out, err))
	}
	if !r.verifyAck {
		return nil
	}

	if !lockAcknowledged(bytes.TrimSpace(out), path) {
		return errors.NewRemoteOperationError("lock", path, errors.ErrNotAcknowledged).
			WithCommand(argv(args)).WithOutput(string(out))
	}
	return nil
}

// Unlock releases the lock on path.
func (r *Repository) Unlock(path string) error {
	args := []string{"lfs", "unlock"}
	if r.verifyAck {
		args = append(args, "--json")
	}
	args = append(args, path)

	out, err := r.run(args...)
	if err != nil {
		return errors.NewRemoteOperationError("unlock", path, err).
			WithCommand(argv(args)).WithOutput(rawOutput(out, err))
	}
	if !r.verifyAck {
		return nil
	}

	if !unlockAcknowledged(bytes.TrimSpace(out), path) {
		return errors.NewRemoteOperationError("unlock", path, errors.ErrNotAcknowledged).
			WithCommand(argv(args)).WithOutput(string(out))
	}
	return nil
}

type lockAck struct {
	Path string `json:"path"`
}

// lockAcknowledged accepts a single lock object or, as git-lfs v3 prints,
// an array of locks, one of which must be for path.
func lockAcknowledged(body []byte, path string) bool {
	want := snapshot.NormalizePath(path)

	var single lockAck
	if err := json.Unmarshal(body, &single); err == nil {
		return snapshot.NormalizePath(single.Path) == want
	}

	var many []lockAck
	if err := json.Unmarshal(body, &many); err != nil {
		return false
	}
	for _, a := range many {
		if snapshot.NormalizePath(a.Path) == want {
			return true
		}
	}
	return false
}

type unlockAck struct {
	Path     string `json:"path"`
	Unlocked bool   `json:"unlocked"`
}

// unlockAcknowledged accepts {"unlocked":true} or an array of per-path
// results in which path is reported unlocked.
func unlockAcknowledged(body []byte, path string) bool {
	var single unlockAck
	if err := json.Unmarshal(body, &single); err == nil {
		return single.Unlocked && (single.Path == "" || snapshot.NormalizePath(single.Path) == snapshot.NormalizePath(path))
	}

	var many []unlockAck
	if err := json.Unmarshal(body, &many); err != nil {
		return false
	}
	for _, a := range many {
		if a.Unlocked && (a.Path == "" || snapshot.NormalizePath(a.Path) == snapshot.NormalizePath(path)) {
			return true
		}
	}
	return false
}
