package dto

import (
	"time"

	"github.com/noah-isme/studydesk-api/internal/models"
)

// AssignmentView is an assignment joined with its course label. Orphaned
// assignments carry no course fields.
type AssignmentView struct {
	models.Assignment
	CourseName  string `json:"course_name,omitempty"`
	CourseColor string `json:"course_color,omitempty"`
}

// AssignmentGroups is the bucketed assignments screen.
type AssignmentGroups struct {
	Filter    string           `json:"filter"`
	Reference time.Time        `json:"reference"`
	WeekStart string           `json:"week_start"`
	Overdue   []AssignmentView `json:"overdue"`
	Today     []AssignmentView `json:"today"`
	Tomorrow  []AssignmentView `json:"tomorrow"`
	ThisWeek  []AssignmentView `json:"this_week"`
	Later     []AssignmentView `json:"later"`
	Completed []AssignmentView `json:"completed"`
}

// AssignmentCounts reports how many assignments each filter tab holds.
type AssignmentCounts struct {
	Reference time.Time      `json:"reference"`
	Counts    map[string]int `json:"counts"`
}
