package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/studydesk-api/internal/academics"
	"github.com/noah-isme/studydesk-api/internal/dto"
	"github.com/noah-isme/studydesk-api/internal/models"
	appErrors "github.com/noah-isme/studydesk-api/pkg/errors"
	"github.com/noah-isme/studydesk-api/pkg/export"
	"github.com/noah-isme/studydesk-api/pkg/jobs"
	"github.com/noah-isme/studydesk-api/pkg/storage"
)

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	FindByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, fn func(job *models.ExportJob)) (*models.ExportJob, error)
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error)
}

type exportFileStore interface {
	Put(name string, data []byte) error
	Open(name string) (*os.File, error)
	Remove(name string) error
	Sweep(now time.Time, ttl time.Duration) ([]string, error)
}

type exportSigner interface {
	Sign(exportID string) (string, time.Time, error)
	Verify(token string) (string, time.Time, error)
}

type exportQueue interface {
	Submit(task jobs.Task[string]) error
}

// CreateExportRequest asks for a grade book or assignment list file.
type CreateExportRequest struct {
	Type     models.ExportType   `json:"type" validate:"required,oneof=grades assignments"`
	Format   models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	CourseID *int64              `json:"course_id" validate:"omitempty,gt=0"`
}

// ExportServiceConfig tunes export behaviour.
type ExportServiceConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Jobs        exportJobStore
	Files       exportFileStore
	Signer      exportSigner
	Courses     dashboardCourseLister
	Assignments dashboardAssignmentLister
	Grades      dashboardGradeLister
	Classifier  academics.Classifier
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	Config      ExportServiceConfig
}

// Download is an opened export file ready to stream.
type Download struct {
	File        *os.File
	Filename    string
	ContentType string
}

// ExportService renders grade book and assignment exports in the background.
type ExportService struct {
	jobs        exportJobStore
	files       exportFileStore
	signer      exportSigner
	courses     dashboardCourseLister
	assignments dashboardAssignmentLister
	grades      dashboardGradeLister
	classifier  academics.Classifier
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	renderers   map[models.ExportFormat]export.Renderer
	queue       exportQueue
	now         func() time.Time
	cfg         ExportServiceConfig
}

// NewExportService constructs an ExportService. Attach a queue with SetQueue before use.
func NewExportService(params ExportServiceParams) *ExportService {
	cfg := params.Config
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	validate := params.Validator
	if validate == nil {
		validate = NewValidator()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		jobs:        params.Jobs,
		files:       params.Files,
		signer:      params.Signer,
		courses:     params.Courses,
		assignments: params.Assignments,
		grades:      params.Grades,
		classifier:  params.Classifier,
		metrics:     params.Metrics,
		validator:   validate,
		logger:      logger,
		renderers: map[models.ExportFormat]export.Renderer{
			models.ExportFormatCSV: export.NewCSVRenderer(),
			models.ExportFormatPDF: export.NewPDFRenderer(),
		},
		now: time.Now,
		cfg: cfg,
	}
}

// SetQueue attaches the worker queue that runs Process.
func (s *ExportService) SetQueue(queue exportQueue) {
	s.queue = queue
}

// Request records an export job and hands it to the queue.
func (s *ExportService) Request(ctx context.Context, req CreateExportRequest, requestedBy string) (*dto.ExportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid export payload")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "exports are disabled")
	}
	if req.CourseID != nil {
		if err := s.ensureCourse(ctx, *req.CourseID); err != nil {
			return nil, err
		}
	}

	job := &models.ExportJob{
		ID:          uuid.NewString(),
		Type:        req.Type,
		Format:      req.Format,
		CourseID:    req.CourseID,
		Status:      models.ExportStatusQueued,
		RequestedBy: requestedBy,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, internalError(err, "failed to record export job")
	}
	if err := s.queue.Submit(jobs.Task[string]{ID: job.ID, Payload: job.ID}); err != nil {
		s.Fail(ctx, job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "export queue unavailable")
	}

	s.logger.Info("export queued",
		zap.String("export_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("format", string(job.Format)),
	)
	return &dto.ExportJobResponse{ExportJob: *job}, nil
}

// Status returns a job and, once finished, its download link.
func (s *ExportService) Status(ctx context.Context, id string) (*dto.ExportJobResponse, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "export")
	}
	resp := &dto.ExportJobResponse{ExportJob: *job}
	if job.Status == models.ExportStatusFinished && job.Token != "" {
		resp.DownloadURL = fmt.Sprintf("%s/exports/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), job.Token)
	}
	return resp, nil
}

// Process renders one export. It is the queue handler; returned errors are retried.
func (s *ExportService) Process(ctx context.Context, task jobs.Task[string]) error {
	started := s.now()
	job, err := s.jobs.Update(ctx, task.Payload, func(job *models.ExportJob) {
		job.Status = models.ExportStatusProcessing
		job.Progress = 10
	})
	if err != nil {
		return fmt.Errorf("load export %s: %w", task.Payload, err)
	}

	table, err := s.buildTable(ctx, job)
	if err != nil {
		return err
	}
	renderer, ok := s.renderers[job.Format]
	if !ok {
		return fmt.Errorf("unsupported export format %s", job.Format)
	}
	s.setProgress(ctx, job.ID, 50)

	payload, err := renderer.Render(table)
	if err != nil {
		return fmt.Errorf("render export %s: %w", job.ID, err)
	}
	name := job.ID + "." + renderer.Extension()
	if err := s.files.Put(name, payload); err != nil {
		return err
	}
	s.setProgress(ctx, job.ID, 90)

	token, expiresAt, err := s.signer.Sign(job.ID)
	if err != nil {
		return fmt.Errorf("sign export %s: %w", job.ID, err)
	}
	finishedAt := s.now().UTC()
	if _, err := s.jobs.Update(ctx, job.ID, func(j *models.ExportJob) {
		j.Status = models.ExportStatusFinished
		j.Progress = 100
		j.ResultPath = name
		j.Token = token
		j.FinishedAt = &finishedAt
		j.ExpiresAt = &expiresAt
		j.ErrorMessage = nil
	}); err != nil {
		return fmt.Errorf("finish export %s: %w", job.ID, err)
	}

	s.metrics.RecordExport(job.Type, job.Format, models.ExportStatusFinished, s.now().Sub(started))
	s.logger.Info("export finished", zap.String("export_id", job.ID), zap.Int("rows", len(table.Rows)))
	return nil
}

// Fail marks a job as failed after the queue gives up on it.
func (s *ExportService) Fail(ctx context.Context, id string, cause error) {
	finishedAt := s.now().UTC()
	message := "export failed"
	if cause != nil {
		message = cause.Error()
	}
	job, err := s.jobs.Update(ctx, id, func(j *models.ExportJob) {
		j.Status = models.ExportStatusFailed
		j.FinishedAt = &finishedAt
		j.ErrorMessage = &message
	})
	if err != nil {
		s.logger.Warn("mark export failed", zap.String("export_id", id), zap.Error(err))
		return
	}
	s.metrics.RecordExport(job.Type, job.Format, models.ExportStatusFailed, 0)
	s.logger.Error("export failed", zap.String("export_id", id), zap.Error(cause))
}

// Open validates a download token and opens the matching file.
func (s *ExportService) Open(ctx context.Context, token string) (*Download, error) {
	id, _, err := s.signer.Verify(token)
	switch {
	case errors.Is(err, storage.ErrTokenExpired):
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
	case err != nil:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}

	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "export")
	}
	if job.Status != models.ExportStatusFinished || job.ResultPath == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export is not ready")
	}
	file, err := s.files.Open(job.ResultPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file missing")
	}

	renderer := s.renderers[job.Format]
	return &Download{
		File:        file,
		Filename:    fmt.Sprintf("studydesk-%s-%s.%s", job.Type, job.CreatedAt.Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
	}, nil
}

// Cleanup deletes expired files and forgets jobs that finished before the result TTL.
func (s *ExportService) Cleanup(ctx context.Context) (int, error) {
	now := s.now()
	removed, err := s.files.Sweep(now, s.cfg.ResultTTL)
	if err != nil {
		return len(removed), err
	}
	expired, err := s.jobs.DeleteFinishedBefore(ctx, now.Add(-s.cfg.ResultTTL))
	if err != nil {
		return len(removed), err
	}
	for _, job := range expired {
		if job.ResultPath != "" {
			_ = s.files.Remove(job.ResultPath)
		}
	}
	if len(removed) > 0 || len(expired) > 0 {
		s.logger.Info("exports cleaned up", zap.Int("files", len(removed)), zap.Int("jobs", len(expired)))
	}
	return len(removed), nil
}

func (s *ExportService) setProgress(ctx context.Context, id string, progress int) {
	_, _ = s.jobs.Update(ctx, id, func(j *models.ExportJob) { j.Progress = progress })
}

func (s *ExportService) ensureCourse(ctx context.Context, courseID int64) error {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return internalError(err, "failed to list courses")
	}
	if _, ok := indexCourses(courses)[courseID]; !ok {
		return validationError(sql.ErrNoRows, "course does not exist")
	}
	return nil
}

func (s *ExportService) buildTable(ctx context.Context, job *models.ExportJob) (export.Table, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return export.Table{}, fmt.Errorf("list courses: %w", err)
	}
	index := indexCourses(courses)

	switch job.Type {
	case models.ExportTypeGrades:
		grades, err := s.grades.List(ctx, models.GradeFilter{CourseID: job.CourseID})
		if err != nil {
			return export.Table{}, fmt.Errorf("list grades: %w", err)
		}
		return gradeTable(grades, courses, index, job.CourseID), nil
	case models.ExportTypeAssignments:
		assignments, err := s.assignments.List(ctx, models.AssignmentFilter{CourseID: job.CourseID})
		if err != nil {
			return export.Table{}, fmt.Errorf("list assignments: %w", err)
		}
		return s.assignmentTable(assignments, index, job.CourseID), nil
	default:
		return export.Table{}, fmt.Errorf("unsupported export type %s", job.Type)
	}
}

func gradeTable(grades []models.Grade, courses []models.Course, index map[int64]models.Course, courseID *int64) export.Table {
	table := export.Table{
		Title:   "Grade book",
		Columns: []string{"Course", "Assignment", "Category", "Score", "Percentage", "Weight"},
		Rows:    make([][]string, 0, len(grades)),
	}
	for _, g := range grades {
		table.Rows = append(table.Rows, []string{
			index[g.CourseID].Name,
			g.AssignmentName,
			g.Category,
			formatNumber(g.Score) + "/" + formatNumber(g.MaxScore),
			formatPercent(dto.Finite(academics.Percentage(g))),
			formatNumber(g.Weight),
		})
	}

	if courseID != nil {
		course := index[*courseID]
		table.Title = course.Name + " grade book"
		table.Footer = "Course average: " + formatPercent(dto.FinitePtr(academics.CourseAverage(*courseID, grades)))
		return table
	}
	table.Footer = "Overall average: " + formatPercent(dto.FinitePtr(academics.OverallAverage(courses, grades)))
	return table
}

func (s *ExportService) assignmentTable(assignments []models.Assignment, index map[int64]models.Course, courseID *int64) export.Table {
	ref := s.now()
	buckets := s.classifier.Classify(assignments, ref)
	table := export.Table{
		Title:   "Assignments",
		Columns: []string{"Status", "Course", "Title", "Due", "Priority"},
		Rows:    make([][]string, 0, len(assignments)),
	}
	if courseID != nil {
		table.Title = index[*courseID].Name + " assignments"
	}

	groups := []struct {
		label string
		items []models.Assignment
	}{
		{"Overdue", buckets.Overdue},
		{"Today", buckets.Today},
		{"Tomorrow", buckets.Tomorrow},
		{"This week", buckets.ThisWeek},
		{"Later", buckets.Later},
		{"Completed", buckets.Completed},
	}
	loc := s.classifier.Location
	if loc == nil {
		loc = ref.Location()
	}
	for _, group := range groups {
		for _, a := range group.items {
			table.Rows = append(table.Rows, []string{
				group.label,
				index[a.CourseID].Name,
				a.Title,
				a.DueDate.In(loc).Format("2006-01-02 15:04"),
				string(a.Priority),
			})
		}
	}
	table.Footer = fmt.Sprintf("Completion rate: %d%%", completionRate(len(buckets.Completed), len(assignments)))
	return table
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPercent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64) + "%"
}
