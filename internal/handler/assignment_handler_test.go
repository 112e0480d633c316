package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studydesk-api/internal/dto"
	"github.com/noah-isme/studydesk-api/internal/models"
	"github.com/noah-isme/studydesk-api/internal/service"
	appErrors "github.com/noah-isme/studydesk-api/pkg/errors"
)

type fakeAssignmentSrv struct {
	lastList  service.AssignmentListRequest
	listErr   error
	toggledID int64
	created   service.CreateAssignmentRequest
}

func (f *fakeAssignmentSrv) List(_ context.Context, req service.AssignmentListRequest) ([]dto.AssignmentView, error) {
	f.lastList = req
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []dto.AssignmentView{{Assignment: models.Assignment{ID: 1, Title: "Essay"}, CourseName: "History"}}, nil
}

func (f *fakeAssignmentSrv) Grouped(_ context.Context, req service.AssignmentListRequest) (*dto.AssignmentGroups, error) {
	f.lastList = req
	return &dto.AssignmentGroups{Filter: "all", Today: []dto.AssignmentView{{Assignment: models.Assignment{ID: 2}}}}, nil
}

func (f *fakeAssignmentSrv) Counts(_ context.Context, req service.AssignmentListRequest) (*dto.AssignmentCounts, error) {
	f.lastList = req
	return &dto.AssignmentCounts{Counts: map[string]int{"all": 3, "pending": 2}}, nil
}

func (f *fakeAssignmentSrv) Get(_ context.Context, id int64) (*models.Assignment, error) {
	if id != 1 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return &models.Assignment{ID: 1, Title: "Essay"}, nil
}

func (f *fakeAssignmentSrv) Create(_ context.Context, req service.CreateAssignmentRequest) (*models.Assignment, error) {
	f.created = req
	return &models.Assignment{ID: 10, CourseID: req.CourseID, Title: req.Title, DueDate: req.DueDate, Priority: models.PriorityMedium}, nil
}

func (f *fakeAssignmentSrv) Update(_ context.Context, id int64, req service.UpdateAssignmentRequest) (*models.Assignment, error) {
	a := &models.Assignment{ID: id}
	if req.Title != nil {
		a.Title = *req.Title
	}
	return a, nil
}

func (f *fakeAssignmentSrv) ToggleComplete(_ context.Context, id int64) (*models.Assignment, error) {
	f.toggledID = id
	return &models.Assignment{ID: id, Completed: true}, nil
}

func (f *fakeAssignmentSrv) Delete(context.Context, int64) error { return nil }

func TestAssignmentHandlerListPassesQuery(t *testing.T) {
	fake := &fakeAssignmentSrv{}
	router := newTestRouter(Handlers{Assignments: NewAssignmentHandler(fake)})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/assignments?filter=overdue&courseId=2&weekStart=monday", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "overdue", fake.lastList.Filter)
	require.NotNil(t, fake.lastList.CourseID)
	assert.Equal(t, int64(2), *fake.lastList.CourseID)
	require.NotNil(t, fake.lastList.WeekStart)
	assert.Equal(t, time.Monday, *fake.lastList.WeekStart)

	var items []dto.AssignmentView
	decodeEnvelope(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "History", items[0].CourseName)
}

func TestAssignmentHandlerWeekStartHeader(t *testing.T) {
	fake := &fakeAssignmentSrv{}
	router := newTestRouter(Handlers{Assignments: NewAssignmentHandler(fake)})

	req := newJSONRequest(http.MethodGet, "/api/v1/assignments/grouped")
	req.Header.Set(weekStartHeader, "sat")
	rec := serve(router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fake.lastList.WeekStart)
	assert.Equal(t, time.Saturday, *fake.lastList.WeekStart)
	assert.Nil(t, fake.lastList.CourseID)

	var groups dto.AssignmentGroups
	decodeEnvelope(t, rec, &groups)
	assert.Len(t, groups.Today, 1)
}

func TestAssignmentHandlerRejectsBadQuery(t *testing.T) {
	fake := &fakeAssignmentSrv{}
	router := newTestRouter(Handlers{Assignments: NewAssignmentHandler(fake)})

	requireErrorCode(t, doRequest(t, router, http.MethodGet, "/api/v1/assignments?courseId=x", nil), http.StatusBadRequest, "VALIDATION_ERROR")
	requireErrorCode(t, doRequest(t, router, http.MethodGet, "/api/v1/assignments/counts?weekStart=someday", nil), http.StatusBadRequest, "VALIDATION_ERROR")

	fake.listErr = appErrors.Clone(appErrors.ErrUnknownFilter, "unknown filter \"soon\"")
	requireErrorCode(t, doRequest(t, router, http.MethodGet, "/api/v1/assignments?filter=soon", nil), http.StatusBadRequest, "UNKNOWN_FILTER")
}

func TestAssignmentHandlerCounts(t *testing.T) {
	router := newTestRouter(Handlers{Assignments: NewAssignmentHandler(&fakeAssignmentSrv{})})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/assignments/counts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var counts dto.AssignmentCounts
	decodeEnvelope(t, rec, &counts)
	assert.Equal(t, 3, counts.Counts["all"])
}

func TestAssignmentHandlerMutations(t *testing.T) {
	fake := &fakeAssignmentSrv{}
	router := newTestRouter(Handlers{Assignments: NewAssignmentHandler(fake)})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/assignments", map[string]interface{}{
		"course_id": 1,
		"title":     "Lab report",
		"due_date":  "2024-05-20T09:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Lab report", fake.created.Title)
	assert.Equal(t, time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC), fake.created.DueDate.UTC())

	requireErrorCode(t, doRequest(t, router, http.MethodPost, "/api/v1/assignments", map[string]string{"due_date": "tomorrow"}), http.StatusBadRequest, "VALIDATION_ERROR")

	rec = doRequest(t, router, http.MethodPatch, "/api/v1/assignments/4/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), fake.toggledID)

	rec = doRequest(t, router, http.MethodPut, "/api/v1/assignments/4", map[string]string{"title": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Assignment
	decodeEnvelope(t, rec, &updated)
	assert.Equal(t, "Renamed", updated.Title)

	assert.Equal(t, http.StatusNoContent, doRequest(t, router, http.MethodDelete, "/api/v1/assignments/4", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(t, router, http.MethodGet, "/api/v1/assignments/1", nil).Code)
	requireErrorCode(t, doRequest(t, router, http.MethodGet, "/api/v1/assignments/2", nil), http.StatusNotFound, "NOT_FOUND")
}
