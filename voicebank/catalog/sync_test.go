package catalog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// racingRepository lists entries that are gone by the time they are deleted.
type racingRepository struct {
	listed    []Entry
	deleteErr error
	saved     []Entry
}

func (r *racingRepository) Find(ctx context.Context, name string) (Entry, error) {
	return Entry{}, ErrNotFound
}

func (r *racingRepository) List(ctx context.Context) ([]Entry, error) {
	return r.listed, nil
}

func (r *racingRepository) Save(ctx context.Context, entry Entry) error {
	r.saved = append(r.saved, entry)
	return nil
}

func (r *racingRepository) Delete(ctx context.Context, name string) error {
	return r.deleteErr
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return &buf
}

func TestSyncStaleEntryAlreadyGone(t *testing.T) {
	logs := captureLogs(t)
	repo := &racingRepository{
		listed:    []Entry{{Name: "retired"}},
		deleteErr: ErrNotFound,
	}

	require.NoError(t, Sync(context.Background(), repo, nil, time.Now()))
	assert.NotContains(t, logs.String(), "Removed stale voice")
}

func TestSyncStaleEntryDeleteFailure(t *testing.T) {
	logs := captureLogs(t)
	boom := errors.New("database is locked")
	repo := &racingRepository{
		listed:    []Entry{{Name: "retired"}},
		deleteErr: boom,
	}

	err := Sync(context.Background(), repo, nil, time.Now())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "retired")
	assert.NotContains(t, logs.String(), "Removed stale voice")
}

func TestSyncStaleEntryRemoved(t *testing.T) {
	logs := captureLogs(t)
	repo := &racingRepository{listed: []Entry{{Name: "retired"}}}

	require.NoError(t, Sync(context.Background(), repo, nil, time.Now()))
	assert.Contains(t, logs.String(), "Removed stale voice")
	assert.Contains(t, logs.String(), "retired")
}
