package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studydesk-api/internal/models"
)

const gradeColumns = "id, course_id, assignment_name, score, max_score, weight, category"

// GradeRepository handles grade entry persistence.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns grade entries matching the filter.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE 1=1", gradeColumns)
	var args []interface{}
	if filter.CourseID != nil {
		query += fmt.Sprintf(" AND course_id = $%d", len(args)+1)
		args = append(args, *filter.CourseID)
	}
	query += " ORDER BY id"
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// ListByCourse returns the grades recorded for one course.
func (r *GradeRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Grade, error) {
	return r.List(ctx, models.GradeFilter{CourseID: &courseID})
}

// FindByID returns a grade by id.
func (r *GradeRepository) FindByID(ctx context.Context, id int64) (*models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE id = $1", gradeColumns)
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// Create persists a grade and assigns its id.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	const query = `INSERT INTO grades (course_id, assignment_name, score, max_score, weight, category)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, grade.CourseID, grade.AssignmentName, grade.Score, grade.MaxScore, grade.Weight, grade.Category)
	if err := row.Scan(&grade.ID); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update modifies a grade entry.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	const query = `UPDATE grades SET course_id = :course_id, assignment_name = :assignment_name, score = :score,
        max_score = :max_score, weight = :weight, category = :category WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return nil
}

// Delete removes a grade entry.
func (r *GradeRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}

// DeleteByCourse removes every grade recorded for a course.
func (r *GradeRepository) DeleteByCourse(ctx context.Context, courseID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM grades WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("delete course grades: %w", err)
	}
	return nil
}
