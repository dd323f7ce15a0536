package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitnote/visit-summary/internal/domain/entities"
	"github.com/visitnote/visit-summary/internal/infrastructure/metrics"
	"github.com/visitnote/visit-summary/pkg/config"
)

func newRedisSummaryStore(t *testing.T) (*SummaryStore, *miniredis.Miniredis, *prometheus.Registry) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	reg := prometheus.NewRegistry()
	return NewSummaryStore(NewRedisBackend(client), nil, metrics.New(reg)), mr, reg
}

func sampleSummary() *entities.CachedSummary {
	return &entities.CachedSummary{
		Summary:  "Patient stable, pain 3/10.",
		UserType: entities.RoleFieldClinician,
		FormID:   42,
	}
}

func TestSummaryKey_String(t *testing.T) {
	key := entities.NewSummaryKey("nurse.jane", 7, 42)
	assert.Equal(t, "summary:nurse.jane:7:42", key.String())
}

func TestSummaryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newRedisSummaryStore(t)
	key := entities.NewSummaryKey("nurse.jane", 7, 42)
	value := sampleSummary()

	require.True(t, store.Set(ctx, key, value, time.Hour))

	got, ok := store.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, value, got)

	assert.Equal(t, time.Hour, mr.TTL(key.String()), "TTL should be written in whole seconds")

	raw, err := mr.Get(key.String())
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"Patient stable, pain 3/10.","user_type":"field_clinician","form_id":42}`, raw)
}

func TestSummaryStore_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newRedisSummaryStore(t)
	key := entities.NewSummaryKey("nurse.jane", 7, 42)

	require.True(t, store.Set(ctx, key, sampleSummary(), time.Minute))

	mr.FastForward(59 * time.Second)
	_, ok := store.Get(ctx, key)
	assert.True(t, ok)

	mr.FastForward(time.Second)
	_, ok = store.Get(ctx, key)
	assert.False(t, ok)
}

func TestSummaryStore_KeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newRedisSummaryStore(t)
	stored := entities.NewSummaryKey("nurse.jane", 7, 42)

	require.True(t, store.Set(ctx, stored, sampleSummary(), time.Hour))

	others := []entities.SummaryKey{
		entities.NewSummaryKey("admin.bob", 7, 42),
		entities.NewSummaryKey("nurse.jane", 8, 42),
		entities.NewSummaryKey("nurse.jane", 7, 43),
	}
	for _, k := range others {
		_, ok := store.Get(ctx, k)
		assert.False(t, ok, "key %s must not see another triple's summary", k)
	}
}

func TestSummaryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newRedisSummaryStore(t)
	key := entities.NewSummaryKey("nurse.jane", 7, 42)

	assert.False(t, store.Delete(ctx, key), "nothing to delete yet")

	require.True(t, store.Set(ctx, key, sampleSummary(), time.Hour))
	assert.True(t, store.Delete(ctx, key))

	_, ok := store.Get(ctx, key)
	assert.False(t, ok)
}

func TestSummaryStore_Lookup_Outcomes(t *testing.T) {
	ctx := context.Background()
	store, mr, reg := newRedisSummaryStore(t)
	key := entities.NewSummaryKey("nurse.jane", 7, 42)

	assert.Equal(t, Miss, store.Lookup(ctx, key).Outcome)

	require.True(t, store.Set(ctx, key, sampleSummary(), time.Hour))
	res := store.Lookup(ctx, key)
	assert.Equal(t, Hit, res.Outcome)
	assert.NotNil(t, res.Summary)

	require.NoError(t, mr.Set(key.String(), "{not json"))
	assert.Equal(t, Miss, store.Lookup(ctx, key).Outcome, "undecodable value behaves as a miss")

	mr.Close()
	assert.Equal(t, Unavailable, store.Lookup(ctx, key).Outcome)

	assert.Equal(t, 1.0, lookupCount(t, reg, Hit))
	assert.Equal(t, 2.0, lookupCount(t, reg, Miss))
	assert.Equal(t, 1.0, lookupCount(t, reg, Unavailable))
}

func TestSummaryStore_Disconnected(t *testing.T) {
	ctx := context.Background()
	key := entities.NewSummaryKey("nurse.jane", 7, 42)

	t.Run("store closed after connect", func(t *testing.T) {
		store, mr, _ := newRedisSummaryStore(t)
		require.NoError(t, store.Ping(ctx))
		mr.Close()
		assert.Error(t, store.Ping(ctx))

		assert.NotPanics(t, func() {
			_, ok := store.Get(ctx, key)
			assert.False(t, ok)
			assert.False(t, store.Set(ctx, key, sampleSummary(), time.Hour))
			assert.False(t, store.Delete(ctx, key))
		})
	})

	t.Run("no backend", func(t *testing.T) {
		store := NewSummaryStore(nil, nil, nil)
		assert.False(t, store.Available())
		assert.ErrorIs(t, store.Ping(ctx), ErrNotConnected)

		_, ok := store.Get(ctx, key)
		assert.False(t, ok)
		assert.Equal(t, Unavailable, store.Lookup(ctx, key).Outcome)
		assert.False(t, store.Set(ctx, key, sampleSummary(), time.Hour))
		assert.False(t, store.Delete(ctx, key))
	})
}

func TestSummaryStore_SetRejectsSubSecondTTL(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newRedisSummaryStore(t)
	key := entities.NewSummaryKey("nurse.jane", 7, 42)

	assert.False(t, store.Set(ctx, key, sampleSummary(), 500*time.Millisecond))
	assert.False(t, store.Set(ctx, key, nil, time.Hour))
}

func TestSummaryStore_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	ms, clock := newTestMemoryStore()
	store := NewSummaryStore(ms, nil, nil)
	key := entities.NewSummaryKey("admin.bob", 7, 42)

	require.True(t, store.Set(ctx, key, sampleSummary(), time.Hour))
	got, ok := store.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, sampleSummary(), got)

	clock.Advance(time.Hour)
	_, ok = store.Get(ctx, key)
	assert.False(t, ok)
}

func TestNewRedisClient(t *testing.T) {
	ctx := context.Background()

	t.Run("connects", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := NewRedisClient(ctx, &config.RedisConfig{
			URL:            "redis://" + mr.Addr(),
			ConnectTimeout: time.Second,
		}, nil)
		require.NoError(t, err)
		defer client.Close()
		assert.NoError(t, NewRedisBackend(client).Ping(ctx))
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := NewRedisClient(ctx, &config.RedisConfig{URL: "not-a-url"}, nil)
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewRedisClient(ctx, &config.RedisConfig{
			URL:            "redis://" + addr,
			DialTimeout:    50 * time.Millisecond,
			ConnectTimeout: 300 * time.Millisecond,
		}, nil)
		assert.Error(t, err)
	})
}

func lookupCount(t *testing.T, reg *prometheus.Registry, outcome Outcome) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "visit_summary_cache_lookups_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome.String() {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
