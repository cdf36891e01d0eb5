package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"aiharu-api/internal/core/ai"
	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemory(t *testing.T, size int, ttl time.Duration) *MemoryStore {
	t.Helper()
	m := NewMemoryStore(&config.CacheConfig{Enabled: true, Backend: "memory", MaxSize: size, TTL: ttl})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t, 10, time.Hour)

	_, err := m.Get(ctx, "prompt", "img")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))

	require.NoError(t, m.Set(ctx, "prompt", "img", &ai.Response{Content: "분석", Model: "m"}))

	got, err := m.Get(ctx, "prompt", "img")
	require.NoError(t, err)
	assert.Equal(t, "분석", got.Content)
	assert.True(t, got.CacheHit)

	_, err = m.Get(ctx, "prompt", "other-img")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
}

func TestMemoryStore_Expired(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t, 10, time.Millisecond)

	require.NoError(t, m.Set(ctx, "p", "", &ai.Response{Content: "x"}))
	time.Sleep(5 * time.Millisecond)

	_, err := m.Get(ctx, "p", "")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
	assert.Equal(t, 0, m.Len())
}

func TestMemoryStore_EvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t, 2, time.Hour)

	require.NoError(t, m.Set(ctx, "a", "", &ai.Response{Content: "a"}))
	require.NoError(t, m.Set(ctx, "b", "", &ai.Response{Content: "b"}))
	_, err := m.Get(ctx, "a", "")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "", &ai.Response{Content: "c"}))

	assert.Equal(t, 2, m.Len())
	_, err = m.Get(ctx, "b", "")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
	_, err = m.Get(ctx, "a", "")
	assert.NoError(t, err)
}

func TestKey(t *testing.T) {
	assert.NotEqual(t, Key("p", ""), Key("p", "img"))
	assert.Equal(t, Key("p", "img"), Key("p", "img"))
	assert.Contains(t, Key("p", ""), "text:")
}

func TestNew_Disabled(t *testing.T) {
	store, err := New(&config.Config{Cache: config.CacheConfig{Enabled: false}})
	require.NoError(t, err)
	assert.Nil(t, store)
}
