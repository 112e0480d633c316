package models

import "time"

// ExportType enumerates supported export datasets.
type ExportType string

const (
	ExportTypeGrades      ExportType = "grades"
	ExportTypeAssignments ExportType = "assignments"
)

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob tracks an asynchronous export request.
type ExportJob struct {
	ID           string       `json:"id"`
	Type         ExportType   `json:"type"`
	Format       ExportFormat `json:"format"`
	CourseID     *int64       `json:"course_id,omitempty"`
	Status       ExportStatus `json:"status"`
	Progress     int          `json:"progress"`
	ResultPath   string       `json:"-"`
	Token        string       `json:"-"`
	RequestedBy  string       `json:"requested_by,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
	ExpiresAt    *time.Time   `json:"expires_at,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}

// SystemMetrics is a lightweight snapshot of runtime counters.
type SystemMetrics struct {
	CacheHitRatio            float64               `json:"cache_hit_ratio"`
	CacheHits                uint64                `json:"cache_hits"`
	CacheMisses              uint64                `json:"cache_misses"`
	RequestsTotal            uint64                `json:"requests_total"`
	AverageRequestDurationMs float64               `json:"average_request_duration_ms"`
	ExportsFinished          uint64                `json:"exports_finished"`
	ExportsFailed            uint64                `json:"exports_failed"`
	Goroutines               int                   `json:"goroutines"`
	Queues                   map[string]QueueStats `json:"queues,omitempty"`
	GeneratedAt              time.Time             `json:"generated_at"`
}

// QueueStats mirrors the counters of a background job queue.
type QueueStats struct {
	Processed uint64 `json:"processed"`
	Retried   uint64 `json:"retried"`
	Abandoned uint64 `json:"abandoned"`
}
