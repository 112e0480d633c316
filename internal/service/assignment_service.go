package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studydesk-api/internal/academics"
	"github.com/noah-isme/studydesk-api/internal/dto"
	"github.com/noah-isme/studydesk-api/internal/models"
	appErrors "github.com/noah-isme/studydesk-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Assignment, error)
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	ToggleComplete(ctx context.Context, id int64) (*models.Assignment, error)
	Delete(ctx context.Context, id int64) error
}

type courseLister interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// AssignmentListRequest scopes list, grouped and count queries.
type AssignmentListRequest struct {
	Filter    string
	CourseID  *int64
	WeekStart *time.Weekday
}

// CreateAssignmentRequest captures fields for creating an assignment.
type CreateAssignmentRequest struct {
	CourseID    int64           `json:"course_id" validate:"required,gt=0"`
	Title       string          `json:"title" validate:"required,max=200"`
	DueDate     time.Time       `json:"due_date" validate:"required"`
	Priority    models.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
}

// UpdateAssignmentRequest changes the provided assignment fields and keeps the rest.
type UpdateAssignmentRequest struct {
	CourseID    *int64           `json:"course_id" validate:"omitempty,gt=0"`
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	DueDate     *time.Time       `json:"due_date"`
	Priority    *models.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Completed   *bool            `json:"completed"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
}

// AssignmentService runs the assignment tracker screens.
type AssignmentService struct {
	assignments assignmentRepository
	courses     courseLister
	classifier  academics.Classifier
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(assignments assignmentRepository, courses courseLister, classifier academics.Classifier, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments: assignments,
		courses:     courses,
		classifier:  classifier,
		cache:       cache,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// List returns assignments passing the named filter, in creation order.
func (s *AssignmentService) List(ctx context.Context, req AssignmentListRequest) ([]dto.AssignmentView, error) {
	filter, err := parseFilter(req.Filter)
	if err != nil {
		return nil, err
	}
	assignments, index, err := s.load(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	filtered, err := s.classifierFor(req).Filter(assignments, filter, s.now())
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnknownFilter, err.Error())
	}
	return toViews(filtered, index), nil
}

// ListByCourse returns every assignment of one course.
func (s *AssignmentService) ListByCourse(ctx context.Context, courseID int64) ([]dto.AssignmentView, error) {
	return s.List(ctx, AssignmentListRequest{CourseID: &courseID})
}

// Grouped filters assignments and partitions the result into due-date buckets.
func (s *AssignmentService) Grouped(ctx context.Context, req AssignmentListRequest) (*dto.AssignmentGroups, error) {
	filter, err := parseFilter(req.Filter)
	if err != nil {
		return nil, err
	}
	assignments, index, err := s.load(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	ref := s.now()
	classifier := s.classifierFor(req)
	filtered, err := classifier.Filter(assignments, filter, ref)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnknownFilter, err.Error())
	}
	buckets := classifier.Classify(filtered, ref)

	return &dto.AssignmentGroups{
		Filter:    string(filter),
		Reference: ref,
		WeekStart: strings.ToLower(classifier.WeekStart.String()),
		Overdue:   toViews(buckets.Overdue, index),
		Today:     toViews(buckets.Today, index),
		Tomorrow:  toViews(buckets.Tomorrow, index),
		ThisWeek:  toViews(buckets.ThisWeek, index),
		Later:     toViews(buckets.Later, index),
		Completed: toViews(buckets.Completed, index),
	}, nil
}

// Counts returns the size of every filter tab.
func (s *AssignmentService) Counts(ctx context.Context, req AssignmentListRequest) (*dto.AssignmentCounts, error) {
	assignments, _, err := s.load(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	ref := s.now()
	counts := s.classifierFor(req).Counts(assignments, ref)
	out := make(map[string]int, len(counts))
	for name, n := range counts {
		out[string(name)] = n
	}
	return &dto.AssignmentCounts{Reference: ref, Counts: out}, nil
}

// Get returns an assignment by id.
func (s *AssignmentService) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "assignment")
	}
	return assignment, nil
}

// Create adds a pending assignment to an existing course.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}
	if err := s.ensureCourse(ctx, req.CourseID); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		CourseID:    req.CourseID,
		Title:       req.Title,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Description: normaliseDescription(req.Description),
	}
	if assignment.Priority == "" {
		assignment.Priority = models.PriorityMedium
	}

	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, internalError(err, "failed to create assignment")
	}
	s.cache.InvalidateDashboard(ctx)
	return assignment, nil
}

// Update merges the provided fields into an existing assignment.
func (s *AssignmentService) Update(ctx context.Context, id int64, req UpdateAssignmentRequest) (*models.Assignment, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}

	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CourseID != nil && *req.CourseID != assignment.CourseID {
		if err := s.ensureCourse(ctx, *req.CourseID); err != nil {
			return nil, err
		}
		assignment.CourseID = *req.CourseID
	}
	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.DueDate != nil {
		assignment.DueDate = *req.DueDate
	}
	if req.Priority != nil {
		assignment.Priority = *req.Priority
	}
	if req.Completed != nil {
		assignment.Completed = *req.Completed
	}
	if req.Description != nil {
		assignment.Description = normaliseDescription(req.Description)
	}

	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, internalError(err, "failed to update assignment")
	}
	s.cache.InvalidateDashboard(ctx)
	return assignment, nil
}

// ToggleComplete flips an assignment between pending and completed.
func (s *AssignmentService) ToggleComplete(ctx context.Context, id int64) (*models.Assignment, error) {
	assignment, err := s.assignments.ToggleComplete(ctx, id)
	if err != nil {
		return nil, lookupError(err, "assignment")
	}
	s.cache.InvalidateDashboard(ctx)
	return assignment, nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.assignments.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete assignment")
	}
	s.cache.InvalidateDashboard(ctx)
	return nil
}

func (s *AssignmentService) load(ctx context.Context, courseID *int64) ([]models.Assignment, map[int64]models.Course, error) {
	assignments, err := s.assignments.List(ctx, models.AssignmentFilter{CourseID: courseID})
	if err != nil {
		return nil, nil, internalError(err, "failed to list assignments")
	}
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, nil, internalError(err, "failed to list courses")
	}
	return assignments, indexCourses(courses), nil
}

func (s *AssignmentService) classifierFor(req AssignmentListRequest) academics.Classifier {
	c := s.classifier
	if req.WeekStart != nil {
		c.WeekStart = *req.WeekStart
	}
	return c
}

func (s *AssignmentService) ensureCourse(ctx context.Context, courseID int64) error {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return validationError(err, "course does not exist")
		}
		return internalError(err, "failed to load course")
	}
	return nil
}

func parseFilter(raw string) (academics.FilterName, error) {
	filter, err := academics.ParseFilter(strings.TrimSpace(raw))
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrUnknownFilter, "unknown assignment filter "+raw)
	}
	return filter, nil
}

func normaliseDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func indexCourses(courses []models.Course) map[int64]models.Course {
	index := make(map[int64]models.Course, len(courses))
	for _, c := range courses {
		index[c.ID] = c
	}
	return index
}

func toViews(assignments []models.Assignment, courses map[int64]models.Course) []dto.AssignmentView {
	views := make([]dto.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		view := dto.AssignmentView{Assignment: a}
		if course, ok := courses[a.CourseID]; ok {
			view.CourseName = course.Name
			view.CourseColor = course.Color
		}
		views = append(views, view)
	}
	return views
}
