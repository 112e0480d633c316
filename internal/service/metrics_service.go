package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/studydesk-api/internal/models"
	"github.com/noah-isme/studydesk-api/pkg/jobs"
)

const metricsNamespace = "studydesk"

// MetricsService owns the Prometheus registry and keeps running totals for
// the JSON snapshot served next to /metrics.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	httpDuration *prometheus.HistogramVec
	httpTotal    *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	cacheLatency prometheus.Histogram
	exportJobs   *prometheus.CounterVec
	exportTime   prometheus.Histogram

	requests        atomic.Uint64
	requestNanos    atomic.Uint64
	cacheHits       atomic.Uint64
	cacheMisses     atomic.Uint64
	exportsFinished atomic.Uint64
	exportsFailed   atomic.Uint64
	now             func() time.Time

	queueMu sync.RWMutex
	queues  map[string]func() jobs.Stats
}

// NewMetricsService registers every collector on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "cache_operation_seconds",
			Help:      "Latency of cache reads and writes.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		}),
		exportJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "export_jobs_total",
			Help:      "Export jobs by type, format and outcome.",
		}, []string{"type", "format", "status"}),
		exportTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "export_render_seconds",
			Help:      "Time spent rendering an export file.",
			Buckets:   prometheus.DefBuckets,
		}),
		now:    time.Now,
		queues: make(map[string]func() jobs.Stats),
	}

	registry.MustRegister(
		m.httpDuration,
		m.httpTotal,
		m.cacheLookups,
		m.cacheLatency,
		m.exportJobs,
		m.exportTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return m
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, route, code).Inc()
	m.requests.Add(1)
	m.requestNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordCacheLookup records a cache read.
func (m *MetricsService) RecordCacheLookup(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.cacheHits.Add(1)
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
	m.cacheMisses.Add(1)
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
}

// RecordExport records the outcome of an export job.
func (m *MetricsService) RecordExport(exportType models.ExportType, format models.ExportFormat, status models.ExportStatus, duration time.Duration) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(string(exportType), string(format), string(status)).Inc()
	switch status {
	case models.ExportStatusFinished:
		m.exportsFinished.Add(1)
		m.exportTime.Observe(duration.Seconds())
	case models.ExportStatusFailed:
		m.exportsFailed.Add(1)
	}
}

// WatchQueue publishes the counters of a job queue under its name. Call it
// once per queue.
func (m *MetricsService) WatchQueue(name string, stats func() jobs.Stats) {
	if m == nil || stats == nil {
		return
	}
	m.queueMu.Lock()
	m.queues[name] = stats
	m.queueMu.Unlock()

	counter := func(metric, help string, read func(jobs.Stats) uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        metric,
			Help:        help,
			ConstLabels: prometheus.Labels{"queue": name},
		}, func() float64 { return float64(read(stats())) })
	}
	m.registry.MustRegister(
		counter("queue_tasks_processed_total", "Tasks handled successfully.", func(s jobs.Stats) uint64 { return s.Processed }),
		counter("queue_tasks_retried_total", "Task attempts that were retried.", func(s jobs.Stats) uint64 { return s.Retried }),
		counter("queue_tasks_abandoned_total", "Tasks dropped after exhausting retries.", func(s jobs.Stats) uint64 { return s.Abandoned }),
	)
}

// Snapshot summarises the counters for the JSON metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := m.cacheHits.Load()
	misses := m.cacheMisses.Load()
	requests := m.requests.Load()

	snapshot := models.SystemMetrics{
		CacheHits:       hits,
		CacheMisses:     misses,
		RequestsTotal:   requests,
		ExportsFinished: m.exportsFinished.Load(),
		ExportsFailed:   m.exportsFailed.Load(),
		Goroutines:      runtime.NumGoroutine(),
		GeneratedAt:     m.now().UTC(),
	}
	m.queueMu.RLock()
	if len(m.queues) > 0 {
		snapshot.Queues = make(map[string]models.QueueStats, len(m.queues))
		for name, stats := range m.queues {
			current := stats()
			snapshot.Queues[name] = models.QueueStats{
				Processed: current.Processed,
				Retried:   current.Retried,
				Abandoned: current.Abandoned,
			}
		}
	}
	m.queueMu.RUnlock()
	if lookups := hits + misses; lookups > 0 {
		snapshot.CacheHitRatio = float64(hits) / float64(lookups)
	}
	if requests > 0 {
		snapshot.AverageRequestDurationMs = float64(m.requestNanos.Load()) / float64(requests) / float64(time.Millisecond)
	}
	return snapshot
}
