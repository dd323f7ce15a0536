package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemoryStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
	ms := NewMemoryStore()
	ms.now = clock.Now
	return ms, clock
}

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	ms, _ := newTestMemoryStore()

	require.NoError(t, ms.Set(ctx, "k", "v", time.Minute))

	val, ok, err := ms.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	_, ok, err = ms.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ExpiresOnRead(t *testing.T) {
	ctx := context.Background()
	ms, clock := newTestMemoryStore()

	require.NoError(t, ms.Set(ctx, "k", "v", time.Minute))

	clock.Advance(59 * time.Second)
	_, ok, _ := ms.Get(ctx, "k")
	assert.True(t, ok, "entry should still be live before its TTL")

	clock.Advance(time.Second)
	_, ok, _ = ms.Get(ctx, "k")
	assert.False(t, ok, "entry should be absent once its TTL has elapsed")
	assert.Empty(t, ms.items, "expired entry should be dropped on read")
}

func TestMemoryStore_Del(t *testing.T) {
	ctx := context.Background()
	ms, clock := newTestMemoryStore()

	require.NoError(t, ms.Set(ctx, "live", "v", time.Minute))
	require.NoError(t, ms.Set(ctx, "stale", "v", time.Second))
	clock.Advance(2 * time.Second)

	removed, err := ms.Del(ctx, "live")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = ms.Del(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, removed, "deleting an expired entry is not-found")

	removed, err = ms.Del(ctx, "never")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	ms, _ := newTestMemoryStore()

	require.NoError(t, ms.Set(ctx, "k", "first", time.Minute))
	require.NoError(t, ms.Set(ctx, "k", "second", time.Minute))

	val, ok, _ := ms.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "second", val)
}
