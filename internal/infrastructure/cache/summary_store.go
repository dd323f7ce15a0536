package cache

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"time"

	"go.uber.org/zap"

	"github.com/visitnote/visit-summary/internal/domain/entities"
	"github.com/visitnote/visit-summary/internal/infrastructure/metrics"
)

// Backend is the key-value store the summary cache is layered on.
// Implementations must treat entries older than their TTL as absent.
type Backend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) (removed bool, err error)
	Ping(ctx context.Context) error
}

// Outcome classifies a cache lookup
type Outcome int

const (
	Miss Outcome = iota
	Hit
	Unavailable
)

// String returns the metric label for the outcome
func (o Outcome) String() string {
	switch o {
	case Hit:
		return metrics.OutcomeHit
	case Unavailable:
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeMiss
	}
}

// LookupResult is the outcome of a lookup plus the summary on a hit
type LookupResult struct {
	Outcome Outcome
	Summary *entities.CachedSummary
}

// SummaryStore caches generated summaries. It never returns an error: an
// unreachable or failing backend behaves like an empty cache.
type SummaryStore struct {
	backend Backend
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewSummaryStore creates a summary cache over backend. A nil backend is the
// disconnected state: every lookup is Unavailable and every write fails.
func NewSummaryStore(backend Backend, logger *zap.Logger, m *metrics.Metrics) *SummaryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryStore{
		backend: backend,
		logger:  logger.Named("cache"),
		metrics: m,
	}
}

// Available reports whether a backend is attached
func (s *SummaryStore) Available() bool {
	return s.backend != nil
}

// Lookup reads the summary stored under key and classifies the result
func (s *SummaryStore) Lookup(ctx context.Context, key entities.SummaryKey) LookupResult {
	res := s.lookup(ctx, key)
	s.metrics.RecordCacheLookup(res.Outcome.String())
	return res
}

func (s *SummaryStore) lookup(ctx context.Context, key entities.SummaryKey) LookupResult {
	cacheKey := key.String()

	if s.backend == nil {
		s.logger.Warn("Redis client not available")
		return LookupResult{Outcome: Unavailable}
	}

	raw, found, err := s.backend.Get(ctx, cacheKey)
	if err != nil {
		s.logger.Warn("Error getting cached summary", zap.String("key", cacheKey), zap.Error(err))
		return LookupResult{Outcome: Unavailable}
	}
	if !found {
		s.logger.Info("Cache miss", zap.String("key", cacheKey))
		return LookupResult{Outcome: Miss}
	}

	var summary entities.CachedSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		s.logger.Warn("Discarding undecodable cached summary", zap.String("key", cacheKey), zap.Error(err))
		return LookupResult{Outcome: Miss}
	}

	s.logger.Info("Cache hit", zap.String("key", cacheKey))
	return LookupResult{Outcome: Hit, Summary: &summary}
}

// Get returns the cached summary for key, or false on a miss or when the
// store is unavailable
func (s *SummaryStore) Get(ctx context.Context, key entities.SummaryKey) (*entities.CachedSummary, bool) {
	res := s.Lookup(ctx, key)
	return res.Summary, res.Outcome == Hit
}

// Set caches value under key for ttl (truncated to whole seconds)
func (s *SummaryStore) Set(ctx context.Context, key entities.SummaryKey, value *entities.CachedSummary, ttl time.Duration) bool {
	ok := s.set(ctx, key, value, ttl)
	s.metrics.RecordCacheWrite(ok)
	return ok
}

func (s *SummaryStore) set(ctx context.Context, key entities.SummaryKey, value *entities.CachedSummary, ttl time.Duration) bool {
	cacheKey := key.String()

	if s.backend == nil {
		s.logger.Warn("Redis client not available")
		return false
	}
	if value == nil {
		s.logger.Warn("Refusing to cache nil summary", zap.String("key", cacheKey))
		return false
	}

	ttl = ttl.Truncate(time.Second)
	if ttl <= 0 {
		s.logger.Warn("Refusing to cache summary without a positive TTL", zap.String("key", cacheKey))
		return false
	}

	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("Error encoding summary", zap.String("key", cacheKey), zap.Error(err))
		return false
	}

	if err := s.backend.Set(ctx, cacheKey, string(payload), ttl); err != nil {
		s.logger.Warn("Error caching summary", zap.String("key", cacheKey), zap.Error(err))
		return false
	}

	s.logger.Info("Cached summary",
		zap.String("key", cacheKey),
		zap.Float64("ttl_minutes", ttl.Minutes()),
	)
	return true
}

// Delete removes the summary under key. It returns false when nothing was
// removed or the store is unavailable.
func (s *SummaryStore) Delete(ctx context.Context, key entities.SummaryKey) bool {
	cacheKey := key.String()

	if s.backend == nil {
		s.logger.Warn("Redis client not available")
		return false
	}

	removed, err := s.backend.Del(ctx, cacheKey)
	if err != nil {
		s.logger.Warn("Error deleting cached summary", zap.String("key", cacheKey), zap.Error(err))
		return false
	}

	if removed {
		s.logger.Info("Deleted cached summary", zap.String("key", cacheKey))
	} else {
		s.logger.Info("No cached summary found to delete", zap.String("key", cacheKey))
	}
	return removed
}

// ErrNotConnected is returned by Ping when no backend is attached
var ErrNotConnected = stdErrors.New("cache backend not connected")

// Ping checks the backend is reachable
func (s *SummaryStore) Ping(ctx context.Context) error {
	if s.backend == nil {
		return ErrNotConnected
	}
	return s.backend.Ping(ctx)
}
