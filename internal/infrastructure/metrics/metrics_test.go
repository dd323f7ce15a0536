package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New(nil)

	m.RecordCacheLookup(OutcomeHit)
	m.RecordCacheLookup(OutcomeMiss)
	m.RecordCacheLookup(OutcomeMiss)
	m.RecordCacheWrite(true)
	m.RecordCacheWrite(false)
	m.RecordCompletion(ResultSuccess, 2*time.Second)
	m.RecordCompletion(ResultPlaceholder, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(OutcomeHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(OutcomeMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheWrites.WithLabelValues(ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completionCalls.WithLabelValues(ResultPlaceholder)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.completionLatency))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordCacheLookup(OutcomeHit)
		m.RecordCacheWrite(true)
		m.RecordCompletion(ResultError, time.Second)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(nil)
	m.RecordCacheLookup(OutcomeUnavailable)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `visit_summary_cache_lookups_total{outcome="unavailable"} 1`)
}
