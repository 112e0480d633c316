package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studydesk-api/internal/models"
)

// CourseStore is the course persistence contract shared by the Postgres and
// in-memory implementations.
type CourseStore interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
	DeleteCascade(ctx context.Context, id int64) error
}

// AssignmentStore is the assignment persistence contract.
type AssignmentStore interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Assignment, error)
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	ToggleComplete(ctx context.Context, id int64) (*models.Assignment, error)
	Delete(ctx context.Context, id int64) error
	DeleteByCourse(ctx context.Context, courseID int64) error
}

// GradeStore is the grade book persistence contract.
type GradeStore interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Grade, error)
	FindByID(ctx context.Context, id int64) (*models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id int64) error
	DeleteByCourse(ctx context.Context, courseID int64) error
}

// StudentStore is the roster persistence contract.
type StudentStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

// Stores bundles one implementation of every entity store.
type Stores struct {
	Courses     CourseStore
	Assignments AssignmentStore
	Grades      GradeStore
	Students    StudentStore
}

// NewStores builds the Postgres-backed stores.
func NewStores(db *sqlx.DB) Stores {
	return Stores{
		Courses:     NewCourseRepository(db),
		Assignments: NewAssignmentRepository(db),
		Grades:      NewGradeRepository(db),
		Students:    NewStudentRepository(db),
	}
}

var (
	_ CourseStore     = (*CourseRepository)(nil)
	_ AssignmentStore = (*AssignmentRepository)(nil)
	_ GradeStore      = (*GradeRepository)(nil)
	_ StudentStore    = (*StudentRepository)(nil)
)
