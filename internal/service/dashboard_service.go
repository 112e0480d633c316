package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studydesk-api/internal/academics"
	"github.com/noah-isme/studydesk-api/internal/dto"
	"github.com/noah-isme/studydesk-api/internal/models"
)

type dashboardAssignmentLister interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
}

type dashboardGradeLister interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
}

type dashboardCourseLister interface {
	List(ctx context.Context) ([]models.Course, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL      time.Duration
	UpcomingLimit int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Courses     dashboardCourseLister
	Assignments dashboardAssignmentLister
	Grades      dashboardGradeLister
	Classifier  academics.Classifier
	Cache       *CacheService
	Logger      *zap.Logger
	Config      DashboardServiceConfig
}

// DashboardService composes the landing page summary.
type DashboardService struct {
	courses     dashboardCourseLister
	assignments dashboardAssignmentLister
	grades      dashboardGradeLister
	classifier  academics.Classifier
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time
	cfg         DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		courses:     params.Courses,
		assignments: params.Assignments,
		grades:      params.Grades,
		classifier:  params.Classifier,
		cache:       params.Cache,
		logger:      logger,
		now:         time.Now,
		cfg:         cfg,
	}
}

// Summary returns the dashboard payload and whether it came from cache.
// Entries are keyed by the reference day and expire no later than the next
// due date or midnight, so overdue counts and flags never go stale.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardSummary, bool, error) {
	ref := s.now()
	key := cacheKeyDashboard + "summary:" + ref.In(s.location(ref)).Format("2006-01-02")

	var cached dto.DashboardSummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	summary, ttl, err := s.compose(ctx, ref)
	if err != nil {
		return nil, false, err
	}
	s.cache.Set(ctx, key, summary, ttl)
	return summary, false, nil
}

func (s *DashboardService) compose(ctx context.Context, ref time.Time) (*dto.DashboardSummary, time.Duration, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, 0, internalError(err, "failed to list courses")
	}
	assignments, err := s.assignments.List(ctx, models.AssignmentFilter{})
	if err != nil {
		return nil, 0, internalError(err, "failed to list assignments")
	}
	grades, err := s.grades.List(ctx, models.GradeFilter{})
	if err != nil {
		return nil, 0, internalError(err, "failed to list grades")
	}

	counts := s.classifier.Counts(assignments, ref)
	total := len(assignments)
	completed := counts[academics.FilterCompleted]

	summary := &dto.DashboardSummary{
		ActiveCourses:    len(courses),
		TotalAssignments: total,
		PendingCount:     counts[academics.FilterPending],
		OverdueCount:     counts[academics.FilterOverdue],
		CompletedCount:   completed,
		CompletionRate:   completionRate(completed, total),
		Upcoming:         s.upcoming(assignments, indexCourses(courses), ref),
		CourseAverages:   make([]dto.CourseAverageEntry, 0, len(courses)),
		GeneratedAt:      ref.UTC(),
	}

	for _, course := range courses {
		avg := dto.FinitePtr(academics.CourseAverage(course.ID, grades))
		summary.CourseAverages = append(summary.CourseAverages, dto.CourseAverageEntry{
			CourseID: course.ID,
			Name:     course.Name,
			Color:    course.Color,
			Average:  avg,
			Rounded:  dto.Rounded(avg),
			Standing: standingOf(avg),
		})
	}

	summary.OverallAverage = dto.FinitePtr(academics.OverallAverage(courses, grades))
	summary.OverallRounded = dto.Rounded(summary.OverallAverage)
	summary.OverallStanding = standingOf(summary.OverallAverage)

	s.logger.Debug("dashboard composed",
		zap.Int("courses", len(courses)),
		zap.Int("assignments", total),
		zap.Int("grades", len(grades)),
	)
	return summary, s.cacheTTL(assignments, ref), nil
}

// cacheTTL caps the configured TTL at the next instant a pending assignment
// falls due or the calendar day rolls over. The result is always positive.
func (s *DashboardService) cacheTTL(assignments []models.Assignment, ref time.Time) time.Duration {
	ttl := s.cfg.CacheTTL
	local := ref.In(s.location(ref))
	midnight := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, local.Location())
	if until := midnight.Sub(ref); until < ttl {
		ttl = until
	}
	for _, a := range assignments {
		if a.Completed || !a.DueDate.After(ref) {
			continue
		}
		if until := a.DueDate.Sub(ref); until < ttl {
			ttl = until
		}
	}
	return ttl
}

func (s *DashboardService) location(ref time.Time) *time.Location {
	if s.classifier.Location != nil {
		return s.classifier.Location
	}
	return ref.Location()
}

// upcoming returns the earliest pending assignments. An item is flagged
// overdue when its due day is already over.
func (s *DashboardService) upcoming(assignments []models.Assignment, courses map[int64]models.Course, ref time.Time) []dto.UpcomingAssignment {
	pending, _ := s.classifier.Filter(assignments, academics.FilterPending, ref)
	pending = academics.SortByDueDate(pending)
	if len(pending) > s.cfg.UpcomingLimit {
		pending = pending[:s.cfg.UpcomingLimit]
	}

	views := toViews(pending, courses)
	out := make([]dto.UpcomingAssignment, 0, len(views))
	for i, view := range views {
		out = append(out, dto.UpcomingAssignment{
			AssignmentView: view,
			Overdue:        s.classifier.BucketOf(pending[i], ref) == academics.BucketOverdue,
		})
	}
	return out
}

func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
