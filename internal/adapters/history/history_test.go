package history_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dyndll/internal/adapters/history"
	"go.trai.ch/dyndll/internal/core/domain"
)

func openStore(t *testing.T) (*history.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".dyndll", domain.HistoryFileName)
	store, err := history.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestStore_RecordAndRecent(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, domain.BuildRecord{
		StartedAt:  base,
		Duration:   1500 * time.Millisecond,
		Status:     domain.BuildStatusBuilt,
		InputHash:  "aaaa1111",
		OutputHash: "bbbb2222",
		Modules:    3,
	}))
	require.NoError(t, store.Record(ctx, domain.BuildRecord{
		StartedAt: base.Add(time.Minute),
		Status:    domain.BuildStatusSkipped,
		InputHash: "aaaa1111",
		Modules:   3,
	}))
	require.NoError(t, store.Record(ctx, domain.BuildRecord{
		ID:         "fixed-id",
		StartedAt:  base.Add(2 * time.Minute),
		Duration:   250 * time.Millisecond,
		Status:     domain.BuildStatusFailed,
		InputHash:  "cccc3333",
		Modules:    4,
		Forced:     true,
		Diagnostic: "Module not found: vue/dist",
	}))

	records, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	newest := records[0]
	assert.Equal(t, "fixed-id", newest.ID)
	assert.Equal(t, domain.BuildStatusFailed, newest.Status)
	assert.True(t, newest.Forced)
	assert.Equal(t, "Module not found: vue/dist", newest.Diagnostic)
	assert.Equal(t, 250*time.Millisecond, newest.Duration)
	assert.True(t, newest.StartedAt.Equal(base.Add(2*time.Minute)))

	assert.Equal(t, domain.BuildStatusSkipped, records[1].Status)
	_, err = uuid.Parse(records[1].ID)
	require.NoError(t, err, "records without an ID get a UUID")

	all, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "bbbb2222", all[2].OutputHash)
	assert.Equal(t, 1500*time.Millisecond, all[2].Duration)
}

func TestStore_Reopen(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, domain.BuildRecord{
		StartedAt: time.Now(),
		Status:    domain.BuildStatusBuilt,
	}))
	require.NoError(t, store.Close())

	reopened, err := history.Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	records, err := reopened.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStore_DuplicateID(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	rec := domain.BuildRecord{ID: "dup", StartedAt: time.Now(), Status: domain.BuildStatusBuilt}
	require.NoError(t, store.Record(ctx, rec))

	err := store.Record(ctx, rec)
	require.ErrorContains(t, err, domain.ErrHistoryWriteFailed.Error())
}

func TestStore_EmptyHistory(t *testing.T) {
	store, _ := openStore(t)

	records, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOpen_Failure(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, []byte("x"), domain.PrivateFilePerm))

	_, err := history.Open(filepath.Join(parent, domain.HistoryFileName))
	require.ErrorContains(t, err, domain.ErrHistoryOpenFailed.Error())
}
