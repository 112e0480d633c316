package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studydesk-api/internal/academics"
	"github.com/noah-isme/studydesk-api/internal/models"
)

type failingGradeLister struct{}

func (failingGradeLister) List(context.Context, models.GradeFilter) ([]models.Grade, error) {
	return nil, errors.New("grades offline")
}

func newDashboardServiceForTest(t *testing.T, limit int) (*DashboardService, *fakeCacheRepo) {
	t.Helper()
	store := seededStore(t)
	cacheRepo := newFakeCacheRepo()
	svc := NewDashboardService(DashboardServiceParams{
		Courses:     store.Courses(),
		Assignments: store.Assignments(),
		Grades:      store.Grades(),
		Classifier:  newClassifier(),
		Cache:       NewCacheService(cacheRepo, nil, 0, nil, true),
		Config:      DashboardServiceConfig{UpcomingLimit: limit},
	})
	svc.now = fixedNow
	return svc, cacheRepo
}

func TestDashboardSummary(t *testing.T) {
	svc, _ := newDashboardServiceForTest(t, 0)

	summary, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, 3, summary.ActiveCourses)
	assert.Equal(t, 6, summary.TotalAssignments)
	assert.Equal(t, 5, summary.PendingCount)
	assert.Equal(t, 2, summary.OverdueCount)
	assert.Equal(t, 1, summary.CompletedCount)
	assert.Equal(t, 17, summary.CompletionRate)
	assert.Equal(t, refTime, summary.GeneratedAt)

	require.Len(t, summary.Upcoming, 5)
	titles := make([]string, 0, len(summary.Upcoming))
	for _, item := range summary.Upcoming {
		titles = append(titles, item.Title)
	}
	assert.Equal(t, []string{"Problem set", "Quiz prep", "Essay", "Orphan", "Reading"}, titles)
	assert.True(t, summary.Upcoming[0].Overdue)
	assert.False(t, summary.Upcoming[1].Overdue, "due earlier today is not flagged")
	assert.Equal(t, "Calculus", summary.Upcoming[0].CourseName)
	assert.Empty(t, summary.Upcoming[3].CourseName)

	require.Len(t, summary.CourseAverages, 3)
	assert.InDelta(t, 85.0, *summary.CourseAverages[0].Average, 1e-9)
	assert.Equal(t, 85, *summary.CourseAverages[0].Rounded)
	assert.Equal(t, academics.StandingStrong, *summary.CourseAverages[1].Standing)
	assert.Nil(t, summary.CourseAverages[2].Average)
	assert.Nil(t, summary.CourseAverages[2].Rounded)
	assert.Nil(t, summary.CourseAverages[2].Standing)

	require.NotNil(t, summary.OverallAverage)
	assert.InDelta(t, 87.5, *summary.OverallAverage, 1e-9)
	assert.Equal(t, 88, *summary.OverallRounded)
	assert.Equal(t, academics.StandingSteady, *summary.OverallStanding)
}

func TestDashboardSummaryUpcomingLimit(t *testing.T) {
	svc, _ := newDashboardServiceForTest(t, 2)

	summary, _, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Upcoming, 2)
	assert.Equal(t, 5, summary.PendingCount, "counts are not limited by the upcoming list")
}

func TestDashboardSummaryUsesCacheUntilInvalidated(t *testing.T) {
	svc, _ := newDashboardServiceForTest(t, 0)
	ctx := context.Background()

	_, cached, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 6, second.TotalAssignments)
	assert.InDelta(t, 87.5, *second.OverallAverage, 1e-9)

	svc.cache.InvalidateDashboard(ctx)
	_, cached, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestDashboardSummaryCacheFollowsTheClock(t *testing.T) {
	svc, cacheRepo := newDashboardServiceForTest(t, 0)
	svc.cfg.CacheTTL = 48 * time.Hour
	ctx := context.Background()

	_, _, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 14*time.Hour, cacheRepo.ttls["dash:summary:2024-05-15"])

	svc.now = func() time.Time { return at(16, 11) }
	summary, cached, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, summary.OverdueCount)
	assert.Equal(t, time.Hour, cacheRepo.ttls["dash:summary:2024-05-16"])
}

func TestDashboardSummaryGradeFailure(t *testing.T) {
	store := seededStore(t)
	svc := NewDashboardService(DashboardServiceParams{
		Courses:     store.Courses(),
		Assignments: store.Assignments(),
		Grades:      failingGradeLister{},
		Classifier:  newClassifier(),
	})

	_, _, err := svc.Summary(context.Background())
	requireAppError(t, err, "INTERNAL_ERROR")
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0, completionRate(0, 0))
	assert.Equal(t, 33, completionRate(1, 3))
	assert.Equal(t, 67, completionRate(2, 3))
	assert.Equal(t, 100, completionRate(4, 4))
}
