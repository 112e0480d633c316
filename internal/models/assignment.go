package models

import "time"

// Priority ranks an assignment's urgency as chosen by the student.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Assignment is a piece of coursework with a due date.
type Assignment struct {
	ID          int64     `db:"id" json:"id"`
	CourseID    int64     `db:"course_id" json:"course_id"`
	Title       string    `db:"title" json:"title"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	Priority    Priority  `db:"priority" json:"priority"`
	Completed   bool      `db:"completed" json:"completed"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AssignmentFilter scopes assignment listing.
type AssignmentFilter struct {
	CourseID *int64
}
