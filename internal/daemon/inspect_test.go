package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/lfslocker/internal/errors"
	"github.com/Iron-Ham/lfslocker/internal/snapshot"
)

func TestInspect(t *testing.T) {
	lockedAt := time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		modified: []string{"a.psd", "b.psd"},
		server: []snapshot.Lock{
			{ID: 1, Path: "a.psd", Owner: "bob", LockedAt: lockedAt},
			{ID: 2, Path: "c.png", Owner: "alice"},
		},
	}

	got, err := Inspect(repo, "alice", false)
	require.NoError(t, err)

	assert.Equal(t, "alice", got.Identity)
	assert.Equal(t, []string{"a.psd", "b.psd"}, got.Modified)
	assert.Equal(t, []string{"c.png"}, got.OwnLocks)
	assert.Equal(t, []Holder{{Path: "a.psd", Owner: "bob", LockedAt: lockedAt}}, got.OtherLocks)
	assert.Equal(t, []string{"a.psd"}, got.Blocking)
	assert.Equal(t, []string{"b.psd"}, got.Missing)
	assert.Equal(t, []string{"c.png"}, got.Unnecessary)
	assert.False(t, got.InSync())

	assert.Equal(t, []string{"locks authoritative"}, repo.lockFetches())
	assert.Empty(t, repo.mutations(), "inspection never mutates")
}

func TestInspect_InSync(t *testing.T) {
	repo := &fakeRepo{
		modified: []string{"a.psd"},
		server:   []snapshot.Lock{{ID: 1, Path: "a.psd", Owner: "alice"}},
	}
	got, err := Inspect(repo, "alice", true)
	require.NoError(t, err)
	assert.True(t, got.InSync())
	assert.Empty(t, got.OtherLocks)
}

func TestInspect_Errors(t *testing.T) {
	repo := &fakeRepo{locksErr: errors.NewProtocolError("bad", errors.ErrMalformedResponse)}
	_, err := Inspect(repo, "alice", false)
	assert.True(t, errors.Is(err, errors.ErrMalformedResponse))

	repo = &fakeRepo{statusErr: errors.NewEnvironmentError("git status failed", nil)}
	_, err = Inspect(repo, "alice", false)
	assert.True(t, errors.Is(err, &errors.EnvironmentError{}))
}
