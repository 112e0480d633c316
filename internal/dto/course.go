package dto

import (
	"github.com/noah-isme/studydesk-api/internal/academics"
	"github.com/noah-isme/studydesk-api/internal/models"
)

// CourseResponse is a course decorated with list-view figures.
type CourseResponse struct {
	models.Course
	AssignmentCount int                 `json:"assignment_count"`
	Average         *float64            `json:"average"`
	Standing        *academics.Standing `json:"standing,omitempty"`
}

// CategoryAverage is one row of a course's category breakdown.
type CategoryAverage struct {
	Category string   `json:"category"`
	Average  *float64 `json:"average"`
	Count    int      `json:"count"`
}

// GradeItem is a grade entry with its raw percentage.
type GradeItem struct {
	models.Grade
	Percentage *float64 `json:"percentage"`
}

// CourseReport is the grade book view of a single course.
type CourseReport struct {
	Course     models.Course       `json:"course"`
	Average    *float64            `json:"average"`
	Standing   *academics.Standing `json:"standing,omitempty"`
	Categories []CategoryAverage   `json:"categories"`
	Items      []GradeItem         `json:"items"`
}
