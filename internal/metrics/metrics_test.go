package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveLoad(10*time.Millisecond, 4096, 3, nil)
	m.ObserveLoad(time.Millisecond, 0, 0, errors.New("нет файла"))
	m.ObserveSave(time.Millisecond, 2048, nil)
	m.AddWarning("malformed_key")
	m.CacheHit(true)
	m.CacheHit(false)
	m.CacheHit(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saves.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.warnings.WithLabelValues("malformed_key")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheHits.WithLabelValues("miss")))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *MapMetrics
	assert.NotPanics(t, func() {
		m.ObserveLoad(time.Second, 1, 1, nil)
		m.ObserveSave(time.Second, 1, nil)
		m.AddWarning("x")
		m.ObserveApply(time.Second, 10)
		m.CacheHit(true)
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveApply(time.Millisecond, 4096)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "arena_maps_materialized_voxels_total 4096")
}
