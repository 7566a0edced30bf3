package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	runs := []*Run{
		{Kind: KindGenerate, Input: "a sorter", Output: "class Sorter {}", Model: "gemini-2.0-flash", Duration: 1500 * time.Millisecond, CreatedAt: base},
		{Kind: KindExplain, Input: "int x = ", Output: "Missing semicolon.", HasError: true, Model: "gemini-2.0-flash", CreatedAt: base.Add(time.Minute)},
		{Kind: KindExplain, Input: "int x = 1;", Output: "Analysis complete.", Model: "gemini-2.0-flash", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, run := range runs {
		require.NoError(t, store.Record(ctx, run))
		assert.NotZero(t, run.ID)
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "int x = 1;", recent[0].Input)
	assert.False(t, recent[0].HasError)
	assert.Equal(t, KindExplain, recent[1].Kind)
	assert.True(t, recent[1].HasError)
	assert.Equal(t, "Missing semicolon.", recent[1].Output)

	all, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, KindGenerate, all[2].Kind)
	assert.Equal(t, 1500*time.Millisecond, all[2].Duration)
	assert.True(t, all[2].CreatedAt.Equal(base))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStore_RecentZeroLimit(t *testing.T) {
	store := openTestStore(t)
	runs, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, &Run{Kind: KindGenerate, Input: "x", Output: "y"}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, path, store.Path())
}

func TestStore_InMemory(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record(context.Background(), &Run{Kind: KindExplain, Input: "a", Output: "b"}))
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
