package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studydesk-api/internal/models"
)

const assignmentColumns = "id, course_id, title, due_date, priority, completed, description, created_at"

// AssignmentRepository handles assignment persistence.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns assignments matching the filter in creation order.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE 1=1", assignmentColumns)
	var args []interface{}
	if filter.CourseID != nil {
		query += fmt.Sprintf(" AND course_id = $%d", len(args)+1)
		args = append(args, *filter.CourseID)
	}
	query += " ORDER BY id"
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// ListByCourse returns the assignments of one course.
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Assignment, error) {
	return r.List(ctx, models.AssignmentFilter{CourseID: &courseID})
}

// FindByID returns an assignment by id.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE id = $1", assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create persists a new assignment and assigns its id.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (course_id, title, due_date, priority, completed, description, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query,
		assignment.CourseID,
		assignment.Title,
		assignment.DueDate,
		assignment.Priority,
		assignment.Completed,
		assignment.Description,
		assignment.CreatedAt,
	)
	if err := row.Scan(&assignment.ID); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update modifies an assignment.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	const query = `UPDATE assignments SET course_id = :course_id, title = :title, due_date = :due_date, priority = :priority,
        completed = :completed, description = :description WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// ToggleComplete flips the completed flag and returns the updated row.
func (r *AssignmentRepository) ToggleComplete(ctx context.Context, id int64) (*models.Assignment, error) {
	query := fmt.Sprintf("UPDATE assignments SET completed = NOT completed WHERE id = $1 RETURNING %s", assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// DeleteByCourse removes every assignment owned by a course.
func (r *AssignmentRepository) DeleteByCourse(ctx context.Context, courseID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("delete course assignments: %w", err)
	}
	return nil
}
