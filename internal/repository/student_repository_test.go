package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studydesk-api/internal/models"
)

var studentRowColumns = []string{"id", "name", "email", "major", "gpa", "enrollment_date", "status"}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows(studentRowColumns).
		AddRow(1, "Ada Lovelace", "ada@example.edu", "Mathematics", 3.9, time.Now(), "Active")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, major, gpa, enrollment_date, status FROM students WHERE 1=1 ORDER BY id LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListSearchAndStatus(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE 1=1 AND (LOWER(name) LIKE $1 OR LOWER(email) LIKE $1) AND status = $2 ORDER BY id LIMIT 10 OFFSET 10")).
		WithArgs("%ada%", models.StudentStatusGraduated).
		WillReturnRows(sqlmock.NewRows(studentRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE 1=1 AND (LOWER(name) LIKE $1 OR LOWER(email) LIKE $1) AND status = $2")).
		WithArgs("%ada%", models.StudentStatusGraduated).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "ADA", Status: models.StudentStatusGraduated, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("INSERT INTO students").
		WithArgs("Grace Hopper", "grace@example.edu", "Computer Science", 3.7, sqlmock.AnyArg(), models.StudentStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

	student := &models.Student{Name: "Grace Hopper", Email: "grace@example.edu", Major: "Computer Science", GPA: 3.7, EnrollmentDate: time.Now(), Status: models.StudentStatusActive}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, int64(2), student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
