package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studydesk-api/internal/academics"
	"github.com/noah-isme/studydesk-api/internal/models"
	"github.com/noah-isme/studydesk-api/internal/repository/memory"
	appErrors "github.com/noah-isme/studydesk-api/pkg/errors"
)

// Wednesday 15 May 2024, 10:00 UTC.
var refTime = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return refTime }

func at(day, hour int) time.Time {
	return time.Date(2024, 5, day, hour, 0, 0, 0, time.UTC)
}

type fakeCacheRepo struct {
	mu          sync.Mutex
	entries     map[string][]byte
	ttls        map[string]time.Duration
	invalidated []string
	getErr      error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return f.getErr
	}
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(_ context.Context, pattern string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	removed := 0
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeCacheRepo) invalidations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.invalidated...)
}

// seededStore builds a store with two courses, assignments around refTime and grades.
func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	for _, c := range []models.Course{
		{Name: "Calculus", Color: "#6366f1", Credits: 4},
		{Name: "History", Color: "#f59e0b", Credits: 3},
		{Name: "Art", Color: "#10b981", Credits: 2},
	} {
		c := c
		require.NoError(t, store.Courses().Create(ctx, &c))
	}

	for _, a := range []models.Assignment{
		{CourseID: 1, Title: "Problem set", DueDate: at(14, 23), Priority: models.PriorityHigh},
		{CourseID: 1, Title: "Quiz prep", DueDate: at(15, 8), Priority: models.PriorityMedium},
		{CourseID: 2, Title: "Essay", DueDate: at(16, 12), Priority: models.PriorityLow},
		{CourseID: 2, Title: "Reading", DueDate: at(20, 9), Priority: models.PriorityMedium},
		{CourseID: 1, Title: "Old lab", DueDate: at(1, 9), Priority: models.PriorityLow, Completed: true},
		{CourseID: 9, Title: "Orphan", DueDate: at(18, 9), Priority: models.PriorityLow},
	} {
		a := a
		require.NoError(t, store.Assignments().Create(ctx, &a))
	}

	for _, g := range []models.Grade{
		{CourseID: 1, AssignmentName: "Midterm", Score: 80, MaxScore: 100, Weight: 50, Category: "Exams"},
		{CourseID: 1, AssignmentName: "Final", Score: 90, MaxScore: 100, Weight: 50, Category: "Exams"},
		{CourseID: 2, AssignmentName: "Paper", Score: 45, MaxScore: 50, Weight: 20, Category: "Papers"},
	} {
		g := g
		require.NoError(t, store.Grades().Create(ctx, &g))
	}
	return store
}

func newClassifier() academics.Classifier {
	return academics.NewClassifier(time.Sunday, time.UTC)
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %T", err)
	require.Equal(t, code, appErr.Code)
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }
func stringPtr(v string) *string    { return &v }
