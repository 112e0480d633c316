package models

// DefaultGradeCategory is applied when a grade is recorded without a category.
const DefaultGradeCategory = "Homework"

// GradeCategories lists the categories offered when recording a grade.
// Category stays free text; these are suggestions only.
var GradeCategories = []string{"Homework", "Quizzes", "Exams", "Projects", "Labs", "Participation", "Papers", "Essays"}

// Grade is a single graded item in a course grade book.
type Grade struct {
	ID             int64   `db:"id" json:"id"`
	CourseID       int64   `db:"course_id" json:"course_id"`
	AssignmentName string  `db:"assignment_name" json:"assignment_name"`
	Score          float64 `db:"score" json:"score"`
	MaxScore       float64 `db:"max_score" json:"max_score"`
	Weight         float64 `db:"weight" json:"weight"`
	Category       string  `db:"category" json:"category"`
}

// GradeFilter scopes grade listing.
type GradeFilter struct {
	CourseID *int64
}
