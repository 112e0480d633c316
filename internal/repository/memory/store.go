// Package memory keeps the academic records in process memory. It backs the
// default store driver and serves the same method sets as the Postgres
// repositories. Lookups of missing rows return sql.ErrNoRows so services treat
// both drivers alike.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/studydesk-api/internal/models"
	"github.com/noah-isme/studydesk-api/internal/repository"
)

// Store holds every table behind one lock.
type Store struct {
	mu          sync.RWMutex
	courses     map[int64]models.Course
	assignments map[int64]models.Assignment
	grades      map[int64]models.Grade
	students    map[int64]models.Student
	now         func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		courses:     make(map[int64]models.Course),
		assignments: make(map[int64]models.Assignment),
		grades:      make(map[int64]models.Grade),
		students:    make(map[int64]models.Student),
		now:         time.Now,
	}
}

// Courses exposes the course table.
func (s *Store) Courses() *CourseRepository { return &CourseRepository{s: s} }

// Assignments exposes the assignment table.
func (s *Store) Assignments() *AssignmentRepository { return &AssignmentRepository{s: s} }

// Grades exposes the grade table.
func (s *Store) Grades() *GradeRepository { return &GradeRepository{s: s} }

// Students exposes the student table.
func (s *Store) Students() *StudentRepository { return &StudentRepository{s: s} }

// Stores exposes the store through the shared repository contracts.
func (s *Store) Stores() repository.Stores {
	return repository.Stores{
		Courses:     s.Courses(),
		Assignments: s.Assignments(),
		Grades:      s.Grades(),
		Students:    s.Students(),
	}
}

// nextID returns one more than the largest key in use.
func nextID[T any](rows map[int64]T) int64 {
	var max int64
	for id := range rows {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func sortedValues[T any](rows map[int64]T, keep func(T) bool) []T {
	ids := make([]int64, 0, len(rows))
	for id, row := range rows {
		if keep == nil || keep(row) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, rows[id])
	}
	return out
}

// CourseRepository is the in-memory course table.
type CourseRepository struct{ s *Store }

// List returns every course in id order.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.courses, nil), nil
}

// FindByID returns a copy of a course.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	course, ok := r.s.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &course, nil
}

// Create stores a course and assigns its id.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	course.ID = nextID(r.s.courses)
	if course.CreatedAt.IsZero() {
		course.CreatedAt = r.s.now().UTC()
	}
	r.s.courses[course.ID] = *course
	return nil
}

// Update replaces a stored course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.courses[course.ID]
	if !ok {
		return sql.ErrNoRows
	}
	course.CreatedAt = existing.CreatedAt
	r.s.courses[course.ID] = *course
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.courses, id)
	return nil
}

// DeleteCascade removes a course with its assignments and grades under one lock.
func (r *CourseRepository) DeleteCascade(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deleteAssignmentsOf(id)
	r.s.deleteGradesOf(id)
	delete(r.s.courses, id)
	return nil
}

// AssignmentRepository is the in-memory assignment table.
type AssignmentRepository struct{ s *Store }

// List returns assignments matching filter in id order.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.assignments, func(a models.Assignment) bool {
		return filter.CourseID == nil || a.CourseID == *filter.CourseID
	}), nil
}

// ListByCourse returns the assignments of one course.
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Assignment, error) {
	return r.List(ctx, models.AssignmentFilter{CourseID: &courseID})
}

// FindByID returns a copy of an assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	assignment, ok := r.s.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &assignment, nil
}

// Create stores an assignment and assigns its id.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignment.ID = nextID(r.s.assignments)
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = r.s.now().UTC()
	}
	r.s.assignments[assignment.ID] = *assignment
	return nil
}

// Update replaces a stored assignment.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.assignments[assignment.ID]
	if !ok {
		return sql.ErrNoRows
	}
	assignment.CreatedAt = existing.CreatedAt
	r.s.assignments[assignment.ID] = *assignment
	return nil
}

// ToggleComplete flips the completed flag under the write lock.
func (r *AssignmentRepository) ToggleComplete(ctx context.Context, id int64) (*models.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignment, ok := r.s.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	assignment.Completed = !assignment.Completed
	r.s.assignments[id] = assignment
	return &assignment, nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.assignments, id)
	return nil
}

// DeleteByCourse removes every assignment owned by a course.
func (r *AssignmentRepository) DeleteByCourse(ctx context.Context, courseID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deleteAssignmentsOf(courseID)
	return nil
}

// deleteAssignmentsOf expects mu to be held for writing.
func (s *Store) deleteAssignmentsOf(courseID int64) {
	for id, a := range s.assignments {
		if a.CourseID == courseID {
			delete(s.assignments, id)
		}
	}
}

// GradeRepository is the in-memory grade table.
type GradeRepository struct{ s *Store }

// List returns grades matching filter in id order.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.grades, func(g models.Grade) bool {
		return filter.CourseID == nil || g.CourseID == *filter.CourseID
	}), nil
}

// ListByCourse returns the grades recorded for one course.
func (r *GradeRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Grade, error) {
	return r.List(ctx, models.GradeFilter{CourseID: &courseID})
}

// FindByID returns a copy of a grade.
func (r *GradeRepository) FindByID(ctx context.Context, id int64) (*models.Grade, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	grade, ok := r.s.grades[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &grade, nil
}

// Create stores a grade and assigns its id.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	grade.ID = nextID(r.s.grades)
	r.s.grades[grade.ID] = *grade
	return nil
}

// Update replaces a stored grade.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.grades[grade.ID]; !ok {
		return sql.ErrNoRows
	}
	r.s.grades[grade.ID] = *grade
	return nil
}

// Delete removes a grade.
func (r *GradeRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.grades, id)
	return nil
}

// DeleteByCourse removes every grade recorded for a course.
func (r *GradeRepository) DeleteByCourse(ctx context.Context, courseID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deleteGradesOf(courseID)
	return nil
}

// deleteGradesOf expects mu to be held for writing.
func (s *Store) deleteGradesOf(courseID int64) {
	for id, g := range s.grades {
		if g.CourseID == courseID {
			delete(s.grades, id)
		}
	}
}

// StudentRepository is the in-memory roster.
type StudentRepository struct{ s *Store }

// List returns one page of matching students and the total match count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	matches := sortedValues(r.s.students, func(st models.Student) bool {
		if filter.Status != "" && st.Status != filter.Status {
			return false
		}
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(st.Name), needle) || strings.Contains(strings.ToLower(st.Email), needle)
	})

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	start := (page - 1) * size
	if start > len(matches) {
		start = len(matches)
	}
	end := start + size
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], len(matches), nil
}

// FindByID returns a copy of a student.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	student, ok := r.s.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &student, nil
}

// Create stores a student and assigns its id.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	student.ID = nextID(r.s.students)
	r.s.students[student.ID] = *student
	return nil
}

// Update replaces a stored student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	r.s.students[student.ID] = *student
	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.students, id)
	return nil
}
