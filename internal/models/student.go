package models

import "time"

// StudentStatus captures enrollment lifecycle for a student.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "Active"
	StudentStatusInactive  StudentStatus = "Inactive"
	StudentStatusGraduated StudentStatus = "Graduated"
)

// Student represents a learner on the roster.
type Student struct {
	ID             int64         `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	Email          string        `db:"email" json:"email"`
	Major          string        `db:"major" json:"major"`
	GPA            float64       `db:"gpa" json:"gpa"`
	EnrollmentDate time.Time     `db:"enrollment_date" json:"enrollment_date"`
	Status         StudentStatus `db:"status" json:"status"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	Status   StudentStatus
	Page     int
	PageSize int
}
