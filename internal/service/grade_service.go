package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studydesk-api/internal/academics"
	"github.com/noah-isme/studydesk-api/internal/dto"
	"github.com/noah-isme/studydesk-api/internal/models"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Grade, error)
	FindByID(ctx context.Context, id int64) (*models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id int64) error
}

type courseFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// CreateGradeRequest captures fields for recording a grade.
type CreateGradeRequest struct {
	CourseID       int64    `json:"course_id" validate:"required,gt=0"`
	AssignmentName string   `json:"assignment_name" validate:"required,max=200"`
	Score          *float64 `json:"score" validate:"required,gte=0"`
	MaxScore       float64  `json:"max_score" validate:"gt=0"`
	Weight         *float64 `json:"weight" validate:"required,gte=0"`
	Category       string   `json:"category" validate:"max=60"`
}

// UpdateGradeRequest changes the provided grade fields and keeps the rest.
type UpdateGradeRequest struct {
	CourseID       *int64   `json:"course_id" validate:"omitempty,gt=0"`
	AssignmentName *string  `json:"assignment_name" validate:"omitempty,min=1,max=200"`
	Score          *float64 `json:"score" validate:"omitempty,gte=0"`
	MaxScore       *float64 `json:"max_score" validate:"omitempty,gt=0"`
	Weight         *float64 `json:"weight" validate:"omitempty,gte=0"`
	Category       *string  `json:"category" validate:"omitempty,max=60"`
}

// GradeService manages the grade book.
type GradeService struct {
	grades    gradeRepository
	courses   courseFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(grades gradeRepository, courses courseFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, courses: courses, cache: cache, validator: validate, logger: logger}
}

// List returns grade entries, optionally for a single course.
func (s *GradeService) List(ctx context.Context, courseID *int64) ([]dto.GradeItem, error) {
	grades, err := s.grades.List(ctx, models.GradeFilter{CourseID: courseID})
	if err != nil {
		return nil, internalError(err, "failed to list grades")
	}
	return gradeItems(grades), nil
}

// Get returns a grade entry by id.
func (s *GradeService) Get(ctx context.Context, id int64) (*models.Grade, error) {
	grade, err := s.grades.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "grade")
	}
	return grade, nil
}

// Create records a grade for an existing course.
func (s *GradeService) Create(ctx context.Context, req CreateGradeRequest) (*models.Grade, error) {
	req.AssignmentName = strings.TrimSpace(req.AssignmentName)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}
	if err := s.ensureCourse(ctx, req.CourseID); err != nil {
		return nil, err
	}

	grade := &models.Grade{
		CourseID:       req.CourseID,
		AssignmentName: req.AssignmentName,
		Score:          *req.Score,
		MaxScore:       req.MaxScore,
		Weight:         *req.Weight,
		Category:       strings.TrimSpace(req.Category),
	}
	if grade.Category == "" {
		grade.Category = models.DefaultGradeCategory
	}

	if err := s.grades.Create(ctx, grade); err != nil {
		return nil, internalError(err, "failed to create grade")
	}
	s.cache.InvalidateDashboard(ctx)
	return grade, nil
}

// Update merges the provided fields into an existing grade.
func (s *GradeService) Update(ctx context.Context, id int64, req UpdateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}

	grade, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CourseID != nil && *req.CourseID != grade.CourseID {
		if err := s.ensureCourse(ctx, *req.CourseID); err != nil {
			return nil, err
		}
		grade.CourseID = *req.CourseID
	}
	if req.AssignmentName != nil {
		grade.AssignmentName = strings.TrimSpace(*req.AssignmentName)
	}
	if req.Score != nil {
		grade.Score = *req.Score
	}
	if req.MaxScore != nil {
		grade.MaxScore = *req.MaxScore
	}
	if req.Weight != nil {
		grade.Weight = *req.Weight
	}
	if req.Category != nil {
		grade.Category = strings.TrimSpace(*req.Category)
		if grade.Category == "" {
			grade.Category = models.DefaultGradeCategory
		}
	}

	if err := s.grades.Update(ctx, grade); err != nil {
		return nil, internalError(err, "failed to update grade")
	}
	s.cache.InvalidateDashboard(ctx)
	return grade, nil
}

// Delete removes a grade entry.
func (s *GradeService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.grades.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete grade")
	}
	s.cache.InvalidateDashboard(ctx)
	return nil
}

// CourseReport summarises one course's grade book.
func (s *GradeService) CourseReport(ctx context.Context, courseID int64) (*dto.CourseReport, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, lookupError(err, "course")
	}
	grades, err := s.grades.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, internalError(err, "failed to list grades")
	}

	avg := dto.FinitePtr(academics.CourseAverage(courseID, grades))
	breakdown := academics.CategoryBreakdown(courseID, grades)
	categories := make([]dto.CategoryAverage, 0, len(breakdown))
	for _, c := range breakdown {
		categories = append(categories, dto.CategoryAverage{Category: c.Category, Average: dto.Finite(c.Average), Count: c.Count})
	}

	return &dto.CourseReport{
		Course:     *course,
		Average:    avg,
		Standing:   standingOf(avg),
		Categories: categories,
		Items:      gradeItems(grades),
	}, nil
}

func (s *GradeService) ensureCourse(ctx context.Context, courseID int64) error {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return validationError(err, "course does not exist")
		}
		return internalError(err, "failed to load course")
	}
	return nil
}

func gradeItems(grades []models.Grade) []dto.GradeItem {
	items := make([]dto.GradeItem, 0, len(grades))
	for _, g := range grades {
		items = append(items, dto.GradeItem{Grade: g, Percentage: dto.Finite(academics.Percentage(g))})
	}
	return items
}
