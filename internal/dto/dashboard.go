package dto

import (
	"time"

	"github.com/noah-isme/studydesk-api/internal/academics"
)

// DashboardSummary is the landing page payload.
type DashboardSummary struct {
	ActiveCourses    int                  `json:"active_courses"`
	TotalAssignments int                  `json:"total_assignments"`
	PendingCount     int                  `json:"pending_count"`
	OverdueCount     int                  `json:"overdue_count"`
	CompletedCount   int                  `json:"completed_count"`
	CompletionRate   int                  `json:"completion_rate"`
	Upcoming         []UpcomingAssignment `json:"upcoming"`
	CourseAverages   []CourseAverageEntry `json:"course_averages"`
	OverallAverage   *float64             `json:"overall_average"`
	OverallRounded   *int                 `json:"overall_rounded"`
	OverallStanding  *academics.Standing  `json:"overall_standing,omitempty"`
	GeneratedAt      time.Time            `json:"generated_at"`
}

// UpcomingAssignment is a pending assignment shown on the dashboard.
// Overdue marks items due before today.
type UpcomingAssignment struct {
	AssignmentView
	Overdue bool `json:"overdue"`
}

// CourseAverageEntry is a course progress bar on the dashboard.
type CourseAverageEntry struct {
	CourseID int64               `json:"course_id"`
	Name     string              `json:"name"`
	Color    string              `json:"color"`
	Average  *float64            `json:"average"`
	Rounded  *int                `json:"rounded"`
	Standing *academics.Standing `json:"standing,omitempty"`
}
