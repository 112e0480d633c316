package models

import "time"

// DefaultCourseColor is applied when a course is created without a color.
const DefaultCourseColor = "#6366f1"

// DefaultCourseCredits is applied when a course is created without credits.
const DefaultCourseCredits = 3

// Course represents a course in the student's catalog.
type Course struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Color      string    `db:"color" json:"color"`
	Instructor string    `db:"instructor" json:"instructor"`
	Credits    int       `db:"credits" json:"credits"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CourseSummary decorates a course with derived figures for list views.
type CourseSummary struct {
	Course
	AssignmentCount int      `json:"assignment_count"`
	Average         *float64 `json:"average"`
}
