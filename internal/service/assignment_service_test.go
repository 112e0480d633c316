package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studydesk-api/internal/dto"
	"github.com/noah-isme/studydesk-api/internal/models"
)

func newAssignmentServiceForTest(t *testing.T) *AssignmentService {
	t.Helper()
	store := seededStore(t)
	svc := NewAssignmentService(store.Assignments(), store.Courses(), newClassifier(), nil, nil, nil)
	svc.now = fixedNow
	return svc
}

func titles(views []dto.AssignmentView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Title)
	}
	return out
}

func TestAssignmentServiceListFilters(t *testing.T) {
	svc := newAssignmentServiceForTest(t)
	ctx := context.Background()

	all, err := svc.List(ctx, AssignmentListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 6)
	assert.Equal(t, "Calculus", all[0].CourseName)
	assert.Empty(t, all[5].CourseName, "orphaned assignment has no course label")

	overdue, err := svc.List(ctx, AssignmentListRequest{Filter: "overdue"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Problem set", "Quiz prep"}, titles(overdue))

	history, err := svc.List(ctx, AssignmentListRequest{Filter: "pending", CourseID: int64Ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Essay", "Reading"}, titles(history))

	_, err = svc.List(ctx, AssignmentListRequest{Filter: "someday"})
	requireAppError(t, err, "UNKNOWN_FILTER")
}

func TestAssignmentServiceGrouped(t *testing.T) {
	svc := newAssignmentServiceForTest(t)
	ctx := context.Background()

	groups, err := svc.Grouped(ctx, AssignmentListRequest{})
	require.NoError(t, err)
	assert.Equal(t, "all", groups.Filter)
	assert.Equal(t, "sunday", groups.WeekStart)
	assert.Equal(t, []string{"Problem set"}, titles(groups.Overdue))
	assert.Equal(t, []string{"Quiz prep"}, titles(groups.Today))
	assert.Equal(t, []string{"Essay"}, titles(groups.Tomorrow))
	assert.Equal(t, []string{"Orphan"}, titles(groups.ThisWeek))
	assert.Equal(t, []string{"Reading"}, titles(groups.Later))
	assert.Equal(t, []string{"Old lab"}, titles(groups.Completed))

	completed, err := svc.Grouped(ctx, AssignmentListRequest{Filter: "completed"})
	require.NoError(t, err)
	assert.Len(t, completed.Completed, 1)
	assert.Empty(t, completed.Overdue)
	assert.Empty(t, completed.Today)
	assert.Empty(t, completed.Later)
}

func TestAssignmentServiceGroupedWeekStartOverride(t *testing.T) {
	svc := newAssignmentServiceForTest(t)
	svc.now = func() time.Time { return time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC) }
	saturday := time.Saturday

	groups, err := svc.Grouped(context.Background(), AssignmentListRequest{WeekStart: &saturday})
	require.NoError(t, err)
	assert.Equal(t, "saturday", groups.WeekStart)
	// With Saturday-start weeks, Friday 17 and Monday 20 fall in different weeks.
	assert.Equal(t, []string{"Reading"}, titles(groups.Later))
	assert.Empty(t, groups.ThisWeek)
	assert.Equal(t, []string{"Orphan"}, titles(groups.Tomorrow))
}

func TestAssignmentServiceCounts(t *testing.T) {
	svc := newAssignmentServiceForTest(t)

	counts, err := svc.Counts(context.Background(), AssignmentListRequest{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"all":       6,
		"pending":   5,
		"overdue":   2,
		"today":     1,
		"thisWeek":  4,
		"completed": 1,
	}, counts.Counts)
	assert.True(t, counts.Reference.Equal(refTime))
}

func TestAssignmentServiceCreate(t *testing.T) {
	svc := newAssignmentServiceForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateAssignmentRequest{CourseID: 2, Title: " Map quiz ", DueDate: at(22, 9), Description: stringPtr("  ")})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, "Map quiz", created.Title)
	assert.Equal(t, models.PriorityMedium, created.Priority)
	assert.False(t, created.Completed)
	assert.Nil(t, created.Description)

	_, err = svc.Create(ctx, CreateAssignmentRequest{CourseID: 42, Title: "x", DueDate: at(22, 9)})
	requireAppError(t, err, "VALIDATION_ERROR")

	_, err = svc.Create(ctx, CreateAssignmentRequest{CourseID: 1, Title: "x"})
	requireAppError(t, err, "VALIDATION_ERROR")

	_, err = svc.Create(ctx, CreateAssignmentRequest{CourseID: 1, Title: "x", DueDate: at(22, 9), Priority: "urgent"})
	requireAppError(t, err, "VALIDATION_ERROR")
}

func TestAssignmentServiceUpdateToggleDelete(t *testing.T) {
	svc := newAssignmentServiceForTest(t)
	ctx := context.Background()
	high := models.PriorityHigh

	updated, err := svc.Update(ctx, 3, UpdateAssignmentRequest{Priority: &high, Description: stringPtr("Five pages")})
	require.NoError(t, err)
	assert.Equal(t, "Essay", updated.Title)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Five pages", *updated.Description)

	_, err = svc.Update(ctx, 3, UpdateAssignmentRequest{CourseID: int64Ptr(77)})
	requireAppError(t, err, "VALIDATION_ERROR")

	toggled, err := svc.ToggleComplete(ctx, 3)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	_, err = svc.ToggleComplete(ctx, 404)
	requireAppError(t, err, "NOT_FOUND")

	require.NoError(t, svc.Delete(ctx, 3))
	_, err = svc.Get(ctx, 3)
	requireAppError(t, err, "NOT_FOUND")
}
