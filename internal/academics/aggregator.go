// Package academics holds the pure grade aggregation and assignment
// classification rules. Nothing here performs I/O or mutates its input.
package academics

import (
	"math"

	"github.com/noah-isme/studydesk-api/internal/models"
)

// Standing labels a course average for quick display.
type Standing string

const (
	StandingStrong Standing = "strong"
	StandingSteady Standing = "steady"
	StandingAtRisk Standing = "at_risk"
)

// CategorySummary is the unweighted average of one grade category.
type CategorySummary struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}

// Percentage returns score / max score as a percentage. Weight never applies here.
func Percentage(grade models.Grade) float64 {
	return grade.Score / grade.MaxScore * 100
}

// CategoryAverage is the unweighted mean of item percentages.
// An empty list yields NaN; callers skip empty categories instead of reporting them.
func CategoryAverage(grades []models.Grade) float64 {
	if len(grades) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, grade := range grades {
		sum += Percentage(grade)
	}
	return sum / float64(len(grades))
}

// CourseAverage is the weight-weighted mean of item percentages across every
// category of the course. It returns nil when the course has no grades and 0
// when all weights are zero. The result is not clamped to [0, 100].
func CourseAverage(courseID int64, allGrades []models.Grade) *float64 {
	var (
		found              bool
		totalWeightedScore float64
		totalWeight        float64
	)
	for _, grade := range allGrades {
		if grade.CourseID != courseID {
			continue
		}
		found = true
		totalWeightedScore += Percentage(grade) * grade.Weight
		totalWeight += grade.Weight
	}
	if !found {
		return nil
	}
	avg := 0.0
	if totalWeight > 0 {
		avg = totalWeightedScore / totalWeight
	}
	return &avg
}

// OverallAverage is the arithmetic mean of course averages. Courses without
// grades are left out of both the sum and the count; nil means no course has data.
func OverallAverage(courses []models.Course, allGrades []models.Grade) *float64 {
	var (
		sum   float64
		count int
	)
	for _, course := range courses {
		avg := CourseAverage(course.ID, allGrades)
		if avg == nil {
			continue
		}
		sum += *avg
		count++
	}
	if count == 0 {
		return nil
	}
	overall := sum / float64(count)
	return &overall
}

// CategoryBreakdown groups a course's grades by category in first-seen order.
func CategoryBreakdown(courseID int64, allGrades []models.Grade) []CategorySummary {
	order := make([]string, 0)
	groups := make(map[string][]models.Grade)
	for _, grade := range allGrades {
		if grade.CourseID != courseID {
			continue
		}
		if _, seen := groups[grade.Category]; !seen {
			order = append(order, grade.Category)
		}
		groups[grade.Category] = append(groups[grade.Category], grade)
	}

	summaries := make([]CategorySummary, 0, len(order))
	for _, category := range order {
		items := groups[category]
		summaries = append(summaries, CategorySummary{
			Category: category,
			Average:  CategoryAverage(items),
			Count:    len(items),
		})
	}
	return summaries
}

// StandingFor maps an average to a display standing.
func StandingFor(avg float64) Standing {
	switch {
	case avg >= 90:
		return StandingStrong
	case avg >= 70:
		return StandingSteady
	default:
		return StandingAtRisk
	}
}
