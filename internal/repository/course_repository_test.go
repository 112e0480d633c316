package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studydesk-api/internal/models"
)

func TestCourseRepositoryList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "color", "instructor", "credits", "created_at"}).
		AddRow(1, "Calculus I", "#6366f1", "Dr. Smith", 4, time.Now()).
		AddRow(2, "World History", "#f59e0b", "Prof. Jones", 3, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, color, instructor, credits, created_at FROM courses ORDER BY id")).
		WillReturnRows(rows)

	courses, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Calculus I", courses[0].Name)
	assert.Equal(t, 3, courses[1].Credits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("FROM courses WHERE id = \\$1").
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("INSERT INTO courses").
		WithArgs("Physics", "#10b981", "Dr. Curie", 4, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	course := &models.Course{Name: "Physics", Color: "#10b981", Instructor: "Dr. Curie", Credits: 4}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, int64(7), course.ID)
	assert.False(t, course.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateAndDelete(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("UPDATE courses SET").
		WithArgs("Physics II", "#10b981", "Dr. Curie", 4, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM courses WHERE id = \\$1").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), &models.Course{ID: 7, Name: "Physics II", Color: "#10b981", Instructor: "Dr. Curie", Credits: 4}))
	require.NoError(t, repo.Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDeleteCascadeCommits(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM assignments WHERE course_id = \\$1").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM grades WHERE course_id = \\$1").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM courses WHERE id = \\$1").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteCascade(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDeleteCascadeRollsBack(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM assignments WHERE course_id = \\$1").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM grades WHERE course_id = \\$1").
		WithArgs(int64(3)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.DeleteCascade(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete course grades")
	assert.NoError(t, mock.ExpectationsWereMet())
}
