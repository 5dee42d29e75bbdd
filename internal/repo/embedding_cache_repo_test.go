package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crmforge/salesrag/internal/model"
	"github.com/crmforge/salesrag/internal/repo"
	"github.com/crmforge/salesrag/internal/testutil"
)

func TestEmbeddingCacheRoundTrip(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "embedding_cache")

	cache := repo.NewEmbeddingCacheRepo(conn)

	_, ok, err := cache.Get(context.Background(), "test-model", "RETRIEVAL_QUERY", "hash-1")
	require.NoError(t, err)
	require.False(t, ok)

	item := &model.EmbeddingCache{
		ModelName:   "test-model",
		TaskType:    "RETRIEVAL_QUERY",
		ContentHash: "hash-1",
		Embedding:   testVector(map[int]float32{0: 0.25, 1: 0.75}),
		Ctime:       time.Now().Unix(),
	}
	require.NoError(t, cache.Save(context.Background(), item))
	// Upsert keeps the key unique.
	require.NoError(t, cache.Save(context.Background(), item))

	values, ok, err := cache.Get(context.Background(), "test-model", "RETRIEVAL_QUERY", "hash-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, values, testDimension)
	require.InDelta(t, 0.25, float64(values[0]), 0.001)
}

func TestEmbeddingCacheDeleteBefore(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "embedding_cache")

	cache := repo.NewEmbeddingCacheRepo(conn)
	now := time.Now().Unix()

	stale := &model.EmbeddingCache{ModelName: "m", TaskType: "RETRIEVAL_QUERY", ContentHash: "old", Embedding: testVector(nil), Ctime: now - 90*24*3600}
	fresh := &model.EmbeddingCache{ModelName: "m", TaskType: "RETRIEVAL_QUERY", ContentHash: "new", Embedding: testVector(nil), Ctime: now}
	require.NoError(t, cache.Save(context.Background(), stale))
	require.NoError(t, cache.Save(context.Background(), fresh))

	deleted, err := cache.DeleteBefore(context.Background(), now-30*24*3600)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, ok, err := cache.Get(context.Background(), "m", "RETRIEVAL_QUERY", "new")
	require.NoError(t, err)
	require.True(t, ok)
}
