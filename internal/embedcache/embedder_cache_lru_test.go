package embedcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crmforge/salesrag/internal/ai"
	"github.com/crmforge/salesrag/internal/embedcache"
)

type countingEmbedder struct {
	calls int
	vec   []float32
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	c.calls++
	return c.vec, nil
}

func (c *countingEmbedder) ModelName() string {
	return "test-model"
}

func TestLruCacheHitSkipsProvider(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	cached := embedcache.WrapLruCacheToEmbedder(inner, 16, time.Minute)

	first, err := cached.Embed(context.Background(), "pricing concerns", ai.TaskTypeQuery)
	require.NoError(t, err)
	require.Equal(t, inner.vec, first)
	require.Equal(t, 1, inner.calls)

	second, err := cached.Embed(context.Background(), "pricing concerns", ai.TaskTypeQuery)
	require.NoError(t, err)
	require.Equal(t, inner.vec, second)
	require.Equal(t, 1, inner.calls)
}

func TestLruCacheKeyIncludesTaskType(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1}}
	cached := embedcache.WrapLruCacheToEmbedder(inner, 16, time.Minute)

	_, err := cached.Embed(context.Background(), "pricing concerns", ai.TaskTypeQuery)
	require.NoError(t, err)
	_, err = cached.Embed(context.Background(), "pricing concerns", ai.TaskTypeDocument)
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestLruCacheCallerCannotPoisonEntries(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.5, 0.5}}
	cached := embedcache.WrapLruCacheToEmbedder(inner, 16, time.Minute)

	first, err := cached.Embed(context.Background(), "budget approval", ai.TaskTypeQuery)
	require.NoError(t, err)
	first[0] = 99

	second, err := cached.Embed(context.Background(), "budget approval", ai.TaskTypeQuery)
	require.NoError(t, err)
	require.Equal(t, float32(0.5), second[0])
}

func TestWrapLruCacheDisabledByConfig(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1}}
	require.Equal(t, ai.IEmbedder(inner), embedcache.WrapLruCacheToEmbedder(inner, 0, time.Minute))
	require.Equal(t, ai.IEmbedder(inner), embedcache.WrapLruCacheToEmbedder(inner, 16, 0))
}
