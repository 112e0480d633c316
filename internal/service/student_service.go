package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studydesk-api/internal/models"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

// CreateStudentRequest holds payload for adding a student to the roster.
type CreateStudentRequest struct {
	Name           string               `json:"name" validate:"required,max=120"`
	Email          string               `json:"email" validate:"required,basic_email"`
	Major          string               `json:"major" validate:"max=120"`
	GPA            *float64             `json:"gpa" validate:"required,gte=0,lte=4"`
	EnrollmentDate time.Time            `json:"enrollment_date" validate:"required"`
	Status         models.StudentStatus `json:"status" validate:"omitempty,oneof=Active Inactive Graduated"`
}

// UpdateStudentRequest changes the provided student fields and keeps the rest.
type UpdateStudentRequest struct {
	Name           *string               `json:"name" validate:"omitempty,min=1,max=120"`
	Email          *string               `json:"email" validate:"omitempty,basic_email"`
	Major          *string               `json:"major" validate:"omitempty,max=120"`
	GPA            *float64              `json:"gpa" validate:"omitempty,gte=0,lte=4"`
	EnrollmentDate *time.Time            `json:"enrollment_date"`
	Status         *models.StudentStatus `json:"status" validate:"omitempty,oneof=Active Inactive Graduated"`
}

// StudentService handles roster use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Status != "" {
		if err := s.validator.Var(string(filter.Status), "oneof=Active Inactive Graduated"); err != nil {
			return nil, nil, validationError(err, "invalid status filter")
		}
	}
	filter.Search = strings.TrimSpace(filter.Search)

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student")
	}
	return student, nil
}

// Create registers a new student. Status defaults to Active.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}

	student := &models.Student{
		Name:           req.Name,
		Email:          req.Email,
		Major:          strings.TrimSpace(req.Major),
		GPA:            *req.GPA,
		EnrollmentDate: req.EnrollmentDate,
		Status:         req.Status,
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, internalError(err, "failed to create student")
	}
	s.logger.Info("student created", zap.Int64("student_id", student.ID))
	return student, nil
}

// Update merges the provided fields into an existing student.
func (s *StudentService) Update(ctx context.Context, id int64, req UpdateStudentRequest) (*models.Student, error) {
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		req.Email = &trimmed
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Major != nil {
		student.Major = strings.TrimSpace(*req.Major)
	}
	if req.GPA != nil {
		student.GPA = *req.GPA
	}
	if req.EnrollmentDate != nil {
		student.EnrollmentDate = *req.EnrollmentDate
	}
	if req.Status != nil {
		student.Status = *req.Status
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, internalError(err, "failed to update student")
	}
	return student, nil
}

// Delete removes a student from the roster.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete student")
	}
	return nil
}
