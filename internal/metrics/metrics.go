package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/arena-maps/internal/logging"
)

// MapMetrics Prometheus-метрики хранилища карт.
// Все методы безопасны для nil-получателя.
type MapMetrics struct {
	loads         *prometheus.CounterVec
	loadDuration  prometheus.Histogram
	saves         *prometheus.CounterVec
	saveDuration  prometheus.Histogram
	blobBytes     prometheus.Histogram
	warnings      *prometheus.CounterVec
	chunks        prometheus.Histogram
	applied       prometheus.Counter
	applyDuration prometheus.Histogram
	cacheHits     *prometheus.CounterVec
}

// New создаёт метрики и регистрирует их в reg
func New(reg prometheus.Registerer) *MapMetrics {
	m := &MapMetrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena_maps",
			Name:      "loads_total",
			Help:      "Загрузки карт по результату.",
		}, []string{"result"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arena_maps",
			Name:      "load_duration_seconds",
			Help:      "Длительность чтения и разбора карты.",
			Buckets:   prometheus.DefBuckets,
		}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena_maps",
			Name:      "saves_total",
			Help:      "Сохранения карт по результату.",
		}, []string{"result"}),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arena_maps",
			Name:      "save_duration_seconds",
			Help:      "Длительность сериализации и записи карты.",
			Buckets:   prometheus.DefBuckets,
		}),
		blobBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arena_maps",
			Name:      "blob_bytes",
			Help:      "Размер сериализованных карт.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena_maps",
			Name:      "load_warnings_total",
			Help:      "Пропущенные при загрузке записи.",
		}, []string{"kind"}),
		chunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arena_maps",
			Name:      "chunks_per_map",
			Help:      "Количество выделенных чанков в загруженной карте.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		applied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arena_maps",
			Name:      "materialized_voxels_total",
			Help:      "Вокселей передано в мир при материализации.",
		}),
		applyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arena_maps",
			Name:      "materialize_duration_seconds",
			Help:      "Длительность материализации карты.",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena_maps",
			Name:      "cache_requests_total",
			Help:      "Обращения к кэшу карт.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.loads, m.loadDuration, m.saves, m.saveDuration, m.blobBytes,
		m.warnings, m.chunks, m.applied, m.applyDuration, m.cacheHits)
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveLoad фиксирует загрузку карты
func (m *MapMetrics) ObserveLoad(d time.Duration, size, chunks int, err error) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(result(err)).Inc()
	m.loadDuration.Observe(d.Seconds())
	if err == nil {
		m.blobBytes.Observe(float64(size))
		m.chunks.Observe(float64(chunks))
	}
}

// ObserveSave фиксирует сохранение карты
func (m *MapMetrics) ObserveSave(d time.Duration, size int, err error) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(result(err)).Inc()
	m.saveDuration.Observe(d.Seconds())
	if err == nil {
		m.blobBytes.Observe(float64(size))
	}
}

// AddWarning учитывает пропущенную запись
func (m *MapMetrics) AddWarning(kind string) {
	if m == nil {
		return
	}
	m.warnings.WithLabelValues(kind).Inc()
}

// ObserveApply фиксирует материализацию
func (m *MapMetrics) ObserveApply(d time.Duration, voxels int) {
	if m == nil {
		return
	}
	m.applied.Add(float64(voxels))
	m.applyDuration.Observe(d.Seconds())
}

// CacheHit учитывает попадание или промах кэша
func (m *MapMetrics) CacheHit(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.WithLabelValues("hit").Inc()
	} else {
		m.cacheHits.WithLabelValues("miss").Inc()
	}
}

// Handler возвращает HTTP-обработчик /metrics для gatherer
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// StartHTTP запускает отдельный HTTP-эндпоинт Prometheus. Неблокирующий.
func StartHTTP(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return srv
}
