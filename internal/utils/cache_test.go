package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, SetCache(ctx, cache, "k", payload{Name: "cash"}, time.Minute))

	var got payload
	found, err := GetCache(ctx, cache, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cash", got.Name)

	require.NoError(t, DeleteCache(ctx, cache, "k"))
	found, err = GetCache(ctx, cache, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), 20*time.Millisecond))
	require.NoError(t, cache.Set(ctx, "forever", []byte("v"), 0))
	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	time.Sleep(60 * time.Millisecond)
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = cache.Get(ctx, "forever")
	assert.NoError(t, err)
}
