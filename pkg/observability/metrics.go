package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Schema build metrics
	BuildsTotal   *prometheus.CounterVec
	BuildDuration prometheus.Histogram
	LastBuildTime prometheus.Gauge

	// Search metrics
	SearchableTables     prometheus.Gauge
	SearchLoweringsTotal *prometheus.CounterVec
	ScoreSelectionsTotal *prometheus.CounterVec

	// Introspection cache metrics
	IntrospectionCacheHits   prometheus.Gauge
	IntrospectionCacheMisses prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zombograph_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zombograph_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Schema build metrics
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zombograph_schema_builds_total",
				Help: "Total number of schema builds",
			},
			[]string{"status"},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "zombograph_schema_build_duration_seconds",
				Help:    "Schema build duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		LastBuildTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "zombograph_schema_last_build_timestamp_seconds",
				Help: "Unix time of the last successful schema build",
			},
		),

		// Search metrics
		SearchableTables: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "zombograph_searchable_tables",
				Help: "Number of tables with a usable zombodb index in the current schema",
			},
		),
		SearchLoweringsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zombograph_search_lowerings_total",
				Help: "Total number of search arguments lowered into queries",
			},
			[]string{"table", "min_score"},
		),
		ScoreSelectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zombograph_score_selections_total",
				Help: "Total number of score fields selected",
			},
			[]string{"table"},
		),

		// Introspection cache metrics
		IntrospectionCacheHits: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "zombograph_introspection_cache_hits",
				Help: "Introspection snapshots served from cache",
			},
		),
		IntrospectionCacheMisses: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "zombograph_introspection_cache_misses",
				Help: "Introspection snapshots read from the database",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BuildsTotal,
		m.BuildDuration,
		m.LastBuildTime,
		m.SearchableTables,
		m.SearchLoweringsTotal,
		m.ScoreSelectionsTotal,
		m.IntrospectionCacheHits,
		m.IntrospectionCacheMisses,
	)

	return m
}

// BuildCompleted records one schema build
func (m *Metrics) BuildCompleted(buildID string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.BuildsTotal.WithLabelValues(status).Inc()
	m.BuildDuration.Observe(duration.Seconds())
	if err == nil {
		m.LastBuildTime.SetToCurrentTime()
	}
}

// EligibleTables records the searchable table count of the latest build
func (m *Metrics) EligibleTables(n int) {
	m.SearchableTables.Set(float64(n))
}

// SearchLowered counts a search argument applied to a query on table
func (m *Metrics) SearchLowered(table string, withMinScore bool) {
	m.SearchLoweringsTotal.WithLabelValues(table, strconv.FormatBool(withMinScore)).Inc()
}

// ScoreSelected counts a score field requested on table
func (m *Metrics) ScoreSelected(table string) {
	m.ScoreSelectionsTotal.WithLabelValues(table).Inc()
}

// CacheStats records introspection cache counters
func (m *Metrics) CacheStats(hits, misses int64) {
	m.IntrospectionCacheHits.Set(float64(hits))
	m.IntrospectionCacheMisses.Set(float64(misses))
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// Path labels come from pathLabel so route templates can be used instead of
// raw URLs.
func HTTPMetricsMiddleware(metrics *Metrics, pathLabel func(r *http.Request) string) func(http.Handler) http.Handler {
	if pathLabel == nil {
		pathLabel = func(r *http.Request) string { return r.URL.Path }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			path := pathLabel(r)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// MetricsHandler serves the registry in the Prometheus exposition format
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
