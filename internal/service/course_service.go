package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studydesk-api/internal/academics"
	"github.com/noah-isme/studydesk-api/internal/dto"
	"github.com/noah-isme/studydesk-api/internal/models"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	DeleteCascade(ctx context.Context, id int64) error
}

type courseAssignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
}

type courseGradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
}

// CreateCourseRequest captures fields for creating a course.
type CreateCourseRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Color      string `json:"color" validate:"omitempty,hexcolor"`
	Instructor string `json:"instructor" validate:"max=120"`
	Credits    *int   `json:"credits" validate:"omitempty,gte=1,lte=12"`
}

// UpdateCourseRequest changes the provided course fields and keeps the rest.
type UpdateCourseRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=120"`
	Color      *string `json:"color" validate:"omitempty,hexcolor"`
	Instructor *string `json:"instructor" validate:"omitempty,max=120"`
	Credits    *int    `json:"credits" validate:"omitempty,gte=1,lte=12"`
}

// CourseService manages the course catalog.
type CourseService struct {
	courses     courseRepository
	assignments courseAssignmentRepository
	grades      courseGradeRepository
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(courses courseRepository, assignments courseAssignmentRepository, grades courseGradeRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, assignments: assignments, grades: grades, cache: cache, validator: validate, logger: logger}
}

// List returns every course with its assignment count and weighted average.
func (s *CourseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list courses")
	}
	assignments, err := s.assignments.List(ctx, models.AssignmentFilter{})
	if err != nil {
		return nil, internalError(err, "failed to list assignments")
	}
	grades, err := s.grades.List(ctx, models.GradeFilter{})
	if err != nil {
		return nil, internalError(err, "failed to list grades")
	}

	counts := make(map[int64]int, len(courses))
	for _, a := range assignments {
		counts[a.CourseID]++
	}

	out := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		avg := dto.FinitePtr(academics.CourseAverage(course.ID, grades))
		out = append(out, dto.CourseResponse{
			Course:          course,
			AssignmentCount: counts[course.ID],
			Average:         avg,
			Standing:        standingOf(avg),
		})
	}
	return out, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course")
	}
	return course, nil
}

// Create adds a course, applying the default color and credits.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}

	course := &models.Course{
		Name:       req.Name,
		Color:      req.Color,
		Instructor: strings.TrimSpace(req.Instructor),
		Credits:    models.DefaultCourseCredits,
	}
	if course.Color == "" {
		course.Color = models.DefaultCourseColor
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, internalError(err, "failed to create course")
	}
	s.cache.InvalidateDashboard(ctx)
	s.logger.Info("course created", zap.Int64("course_id", course.ID))
	return course, nil
}

// Update merges the provided fields into an existing course.
func (s *CourseService) Update(ctx context.Context, id int64, req UpdateCourseRequest) (*models.Course, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}

	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Color != nil {
		course.Color = *req.Color
	}
	if req.Instructor != nil {
		course.Instructor = strings.TrimSpace(*req.Instructor)
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, internalError(err, "failed to update course")
	}
	s.cache.InvalidateDashboard(ctx)
	return course, nil
}

// Delete removes a course together with its assignments and grades.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.courses.DeleteCascade(ctx, id); err != nil {
		return internalError(err, "failed to delete course")
	}
	s.cache.InvalidateDashboard(ctx)
	s.logger.Info("course deleted", zap.Int64("course_id", id))
	return nil
}

func standingOf(avg *float64) *academics.Standing {
	if avg == nil {
		return nil
	}
	standing := academics.StandingFor(*avg)
	return &standing
}
