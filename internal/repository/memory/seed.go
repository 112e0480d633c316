package memory

import (
	"time"

	"github.com/noah-isme/studydesk-api/internal/models"
)

// Seed loads a small demo catalog. Due dates are laid out around now so the
// dashboard shows overdue, upcoming and completed work straight away.
func (s *Store) Seed(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
	created := now.UTC().AddDate(0, -1, 0)

	courses := []models.Course{
		{Name: "Calculus II", Color: "#6366f1", Instructor: "Dr. Elena Park", Credits: 4},
		{Name: "Modern World History", Color: "#f59e0b", Instructor: "Prof. Samuel Okafor", Credits: 3},
		{Name: "Intro to Computer Science", Color: "#10b981", Instructor: "Dr. Priya Raman", Credits: 4},
		{Name: "English Composition", Color: "#ef4444", Instructor: "Ms. Laura Chen", Credits: 3},
	}
	for i := range courses {
		courses[i].ID = int64(i + 1)
		courses[i].CreatedAt = created
		s.courses[courses[i].ID] = courses[i]
	}

	desc := func(v string) *string { return &v }
	assignments := []models.Assignment{
		{CourseID: 1, Title: "Problem Set 6: Series", DueDate: day.AddDate(0, 0, -2), Priority: models.PriorityHigh},
		{CourseID: 1, Title: "Integration Techniques Quiz", DueDate: day, Priority: models.PriorityMedium},
		{CourseID: 1, Title: "Problem Set 7: Power Series", DueDate: day.AddDate(0, 0, 6), Priority: models.PriorityMedium},
		{CourseID: 2, Title: "Cold War Reading Response", DueDate: day.AddDate(0, 0, 1), Priority: models.PriorityLow, Description: desc("Two pages on containment policy")},
		{CourseID: 2, Title: "Midterm Essay", DueDate: day.AddDate(0, 0, 12), Priority: models.PriorityHigh},
		{CourseID: 3, Title: "Lab 4: Linked Lists", DueDate: day.AddDate(0, 0, -5), Priority: models.PriorityMedium, Completed: true},
		{CourseID: 3, Title: "Project 2: Text Adventure", DueDate: day.AddDate(0, 0, 3), Priority: models.PriorityHigh, Description: desc("Pair project, submit repository link")},
		{CourseID: 4, Title: "Argumentative Essay Draft", DueDate: day.AddDate(0, 0, -1), Priority: models.PriorityMedium, Completed: true},
		{CourseID: 4, Title: "Peer Review Worksheet", DueDate: day.AddDate(0, 0, 20), Priority: models.PriorityLow},
	}
	for i := range assignments {
		assignments[i].ID = int64(i + 1)
		assignments[i].CreatedAt = created
		s.assignments[assignments[i].ID] = assignments[i]
	}

	grades := []models.Grade{
		{CourseID: 1, AssignmentName: "Problem Set 5", Score: 46, MaxScore: 50, Weight: 10, Category: "Homework"},
		{CourseID: 1, AssignmentName: "Quiz 3", Score: 17, MaxScore: 20, Weight: 10, Category: "Quizzes"},
		{CourseID: 1, AssignmentName: "Midterm Exam", Score: 88, MaxScore: 100, Weight: 30, Category: "Exams"},
		{CourseID: 2, AssignmentName: "Primary Source Analysis", Score: 72, MaxScore: 100, Weight: 20, Category: "Papers"},
		{CourseID: 2, AssignmentName: "Map Quiz", Score: 8, MaxScore: 10, Weight: 5, Category: "Quizzes"},
		{CourseID: 3, AssignmentName: "Lab 3: Arrays", Score: 20, MaxScore: 20, Weight: 5, Category: "Labs"},
		{CourseID: 3, AssignmentName: "Project 1", Score: 93, MaxScore: 100, Weight: 20, Category: "Projects"},
		{CourseID: 3, AssignmentName: "Lab 4: Linked Lists", Score: 18, MaxScore: 20, Weight: 5, Category: "Labs"},
	}
	for i := range grades {
		grades[i].ID = int64(i + 1)
		s.grades[grades[i].ID] = grades[i]
	}

	enrolled := func(year int, month time.Month) time.Time { return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC) }
	students := []models.Student{
		{Name: "Maya Thompson", Email: "maya.thompson@studydesk.edu", Major: "Mathematics", GPA: 3.8, EnrollmentDate: enrolled(2022, time.September), Status: models.StudentStatusActive},
		{Name: "Daniel Ortiz", Email: "daniel.ortiz@studydesk.edu", Major: "History", GPA: 3.2, EnrollmentDate: enrolled(2021, time.September), Status: models.StudentStatusActive},
		{Name: "Aisha Bello", Email: "aisha.bello@studydesk.edu", Major: "Computer Science", GPA: 3.95, EnrollmentDate: enrolled(2020, time.January), Status: models.StudentStatusGraduated},
		{Name: "Lucas Meyer", Email: "lucas.meyer@studydesk.edu", Major: "English", GPA: 2.7, EnrollmentDate: enrolled(2023, time.January), Status: models.StudentStatusInactive},
	}
	for i := range students {
		students[i].ID = int64(i + 1)
		s.students[students[i].ID] = students[i]
	}
}
