package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docqa-be/types"
)

func record(text, source, databaseID string, vector ...float32) types.Record {
	return types.Record{
		Chunk:  types.Chunk{Text: text, Source: source, DatabaseID: databaseID},
		Vector: vector,
	}
}

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	err := store.Upsert(context.Background(), []types.Record{
		record("alpha one", "http://a", "db1", 1, 0),
		record("alpha two", "http://a", "db1", 0.9, 0.1),
		record("beta", "http://b", "db1", 0, 1),
		record("gamma", "http://a", "db2", 1, 0),
	})
	require.NoError(t, err)
	return store
}

func TestMemoryStore_Exists(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	ok, err := store.Exists(ctx, types.Filter{DatabaseID: "db1"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, types.Filter{DatabaseID: "db3"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Exists(ctx, types.Filter{DatabaseID: "db2", Source: "http://b"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_SearchRespectsFilter(t *testing.T) {
	store := seededStore(t)

	results, err := store.Search(context.Background(), []float32{1, 0}, 10, types.Filter{DatabaseID: "db1"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, "db1", r.DatabaseID)
		assert.NotEmpty(t, r.ID)
	}
	assert.Equal(t, "alpha one", results[0].Text)
	assert.Equal(t, "beta", results[2].Text)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestMemoryStore_SearchUnfilteredAndLimit(t *testing.T) {
	store := seededStore(t)

	results, err := store.Search(context.Background(), []float32{1, 0}, 2, types.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)

	_, err = store.Search(context.Background(), []float32{1, 0}, 0, types.Filter{})
	assert.Error(t, err)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, types.Filter{DatabaseID: "db1", Source: "http://a"}))

	n, err := store.Count(ctx, types.Filter{DatabaseID: "db1"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.Count(ctx, types.Filter{DatabaseID: "db2"})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "other databases sharing the source are untouched")

	require.NoError(t, store.Delete(ctx, types.Filter{DatabaseID: "db1", Source: "http://missing"}))
	n, err = store.Count(ctx, types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryStore_DeleteRequiresFilter(t *testing.T) {
	store := seededStore(t)
	assert.ErrorIs(t, store.Delete(context.Background(), types.Filter{}), ErrEmptyFilter)
}

func TestMemoryStore_UpsertRejectsMissingVector(t *testing.T) {
	store := NewMemoryStore()
	err := store.Upsert(context.Background(), []types.Record{record("x", "u", "db")})
	assert.Error(t, err)
}

func TestBatches(t *testing.T) {
	assert.Empty(t, batches(0))
	assert.Equal(t, [][2]int{{0, 10}}, batches(10))
	assert.Equal(t, [][2]int{{0, BATCH_SIZE}, {BATCH_SIZE, BATCH_SIZE + 1}}, batches(BATCH_SIZE+1))
}
