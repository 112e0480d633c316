package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studydesk-api/internal/models"
	"github.com/noah-isme/studydesk-api/pkg/jobs"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.now = fixedNow

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/courses", http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/grades", http.StatusCreated, 30*time.Millisecond)
	m.RecordCacheLookup(true, time.Millisecond)
	m.RecordCacheLookup(false, time.Millisecond)
	m.RecordCacheLookup(true, time.Millisecond)
	m.RecordExport(models.ExportTypeGrades, models.ExportFormatCSV, models.ExportStatusFinished, time.Second)
	m.RecordExport(models.ExportTypeGrades, models.ExportFormatPDF, models.ExportStatusFailed, 0)

	snapshot := m.Snapshot()
	assert.Equal(t, uint64(2), snapshot.RequestsTotal)
	assert.InDelta(t, 20.0, snapshot.AverageRequestDurationMs, 1e-9)
	assert.Equal(t, uint64(2), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 2.0/3.0, snapshot.CacheHitRatio, 1e-9)
	assert.Equal(t, uint64(1), snapshot.ExportsFinished)
	assert.Equal(t, uint64(1), snapshot.ExportsFailed)
	assert.Positive(t, snapshot.Goroutines)
	assert.Equal(t, refTime, snapshot.GeneratedAt)
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `studydesk_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetricsServiceWatchQueue(t *testing.T) {
	m := NewMetricsService()
	stats := jobs.Stats{Processed: 4, Retried: 2, Abandoned: 1}
	m.WatchQueue("exports", func() jobs.Stats { return stats })

	snapshot := m.Snapshot()
	require.Contains(t, snapshot.Queues, "exports")
	assert.Equal(t, models.QueueStats{Processed: 4, Retried: 2, Abandoned: 1}, snapshot.Queues["exports"])

	stats.Processed = 5
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `studydesk_queue_tasks_processed_total{queue="exports"} 5`)
	assert.Contains(t, body, `studydesk_queue_tasks_abandoned_total{queue="exports"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.RecordCacheLookup(true, 0)
		m.RecordExport(models.ExportTypeGrades, models.ExportFormatCSV, models.ExportStatusFinished, 0)
	})
	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
