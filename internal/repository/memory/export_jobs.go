package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/studydesk-api/internal/models"
)

// ExportJobStore tracks export jobs for the lifetime of the process.
type ExportJobStore struct {
	mu   sync.RWMutex
	jobs map[string]models.ExportJob
}

// NewExportJobStore returns an empty job store.
func NewExportJobStore() *ExportJobStore {
	return &ExportJobStore{jobs: make(map[string]models.ExportJob)}
}

// Create records a new job.
func (s *ExportJobStore) Create(ctx context.Context, job *models.ExportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

// FindByID returns a copy of a job.
func (s *ExportJobStore) FindByID(ctx context.Context, id string) (*models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &job, nil
}

// Update applies fn to the stored job atomically and returns the result.
func (s *ExportJobStore) Update(ctx context.Context, id string, fn func(job *models.ExportJob)) (*models.ExportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	fn(&job)
	s.jobs[id] = job
	return &job, nil
}

// List returns jobs newest first.
func (s *ExportJobStore) List(ctx context.Context) ([]models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ExportJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// DeleteFinishedBefore drops terminal jobs that ended before cutoff and returns them.
func (s *ExportJobStore) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []models.ExportJob
	for id, job := range s.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			removed = append(removed, job)
			delete(s.jobs, id)
		}
	}
	return removed, nil
}
