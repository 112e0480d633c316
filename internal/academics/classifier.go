package academics

import (
	"errors"
	"sort"
	"time"

	"github.com/noah-isme/studydesk-api/internal/models"
)

// Bucket is one cell of the due-date partition.
type Bucket string

const (
	BucketOverdue   Bucket = "overdue"
	BucketToday     Bucket = "today"
	BucketTomorrow  Bucket = "tomorrow"
	BucketThisWeek  Bucket = "thisWeek"
	BucketLater     Bucket = "later"
	BucketCompleted Bucket = "completed"
)

// FilterName names a predicate used for assignment tabs and counts.
type FilterName string

const (
	FilterAll       FilterName = "all"
	FilterPending   FilterName = "pending"
	FilterOverdue   FilterName = "overdue"
	FilterToday     FilterName = "today"
	FilterThisWeek  FilterName = "thisWeek"
	FilterCompleted FilterName = "completed"
)

// Filters lists every named filter in tab order.
var Filters = []FilterName{FilterAll, FilterPending, FilterOverdue, FilterToday, FilterThisWeek, FilterCompleted}

// ErrUnknownFilter is returned for a filter name outside Filters.
var ErrUnknownFilter = errors.New("unknown assignment filter")

// ParseFilter resolves a raw filter name. Empty input means FilterAll.
func ParseFilter(raw string) (FilterName, error) {
	if raw == "" {
		return FilterAll, nil
	}
	for _, name := range Filters {
		if string(name) == raw {
			return name, nil
		}
	}
	return "", ErrUnknownFilter
}

// Buckets is the result of Classify. Every slice is ordered by due date.
type Buckets struct {
	Overdue   []models.Assignment `json:"overdue"`
	Today     []models.Assignment `json:"today"`
	Tomorrow  []models.Assignment `json:"tomorrow"`
	ThisWeek  []models.Assignment `json:"thisWeek"`
	Later     []models.Assignment `json:"later"`
	Completed []models.Assignment `json:"completed"`
}

// Len is the number of assignments across all buckets.
func (b Buckets) Len() int {
	return len(b.Overdue) + len(b.Today) + len(b.Tomorrow) + len(b.ThisWeek) + len(b.Later) + len(b.Completed)
}

// Classifier evaluates calendar days and weeks for due dates.
// The zero value uses Sunday-start weeks in the reference instant's location.
type Classifier struct {
	WeekStart time.Weekday
	Location  *time.Location
}

// NewClassifier builds a classifier with the given week start and location.
func NewClassifier(weekStart time.Weekday, loc *time.Location) Classifier {
	return Classifier{WeekStart: weekStart, Location: loc}
}

// BucketOf places one assignment. Completed wins over every due-date rule;
// overdue compares against the start of the reference day.
func (c Classifier) BucketOf(a models.Assignment, ref time.Time) Bucket {
	if a.Completed {
		return BucketCompleted
	}
	loc := c.location(ref)
	due := a.DueDate.In(loc)
	today := startOfDay(ref.In(loc))
	switch {
	case due.Before(today):
		return BucketOverdue
	case sameDay(due, today):
		return BucketToday
	case sameDay(due, today.AddDate(0, 0, 1)):
		return BucketTomorrow
	case c.sameWeek(due, today):
		return BucketThisWeek
	default:
		return BucketLater
	}
}

// Classify partitions assignments into buckets relative to ref.
func (c Classifier) Classify(assignments []models.Assignment, ref time.Time) Buckets {
	buckets := Buckets{
		Overdue:   []models.Assignment{},
		Today:     []models.Assignment{},
		Tomorrow:  []models.Assignment{},
		ThisWeek:  []models.Assignment{},
		Later:     []models.Assignment{},
		Completed: []models.Assignment{},
	}
	for _, a := range SortByDueDate(assignments) {
		switch c.BucketOf(a, ref) {
		case BucketCompleted:
			buckets.Completed = append(buckets.Completed, a)
		case BucketOverdue:
			buckets.Overdue = append(buckets.Overdue, a)
		case BucketToday:
			buckets.Today = append(buckets.Today, a)
		case BucketTomorrow:
			buckets.Tomorrow = append(buckets.Tomorrow, a)
		case BucketThisWeek:
			buckets.ThisWeek = append(buckets.ThisWeek, a)
		default:
			buckets.Later = append(buckets.Later, a)
		}
	}
	return buckets
}

// Matches reports whether a single assignment satisfies the named filter.
// The overdue filter compares instants, unlike the overdue bucket.
func (c Classifier) Matches(a models.Assignment, name FilterName, ref time.Time) bool {
	loc := c.location(ref)
	switch name {
	case FilterAll:
		return true
	case FilterPending:
		return !a.Completed
	case FilterOverdue:
		return !a.Completed && a.DueDate.Before(ref)
	case FilterToday:
		return !a.Completed && sameDay(a.DueDate.In(loc), ref.In(loc))
	case FilterThisWeek:
		return !a.Completed && c.sameWeek(a.DueDate.In(loc), ref.In(loc))
	case FilterCompleted:
		return a.Completed
	default:
		return false
	}
}

// Filter keeps the assignments matching the named predicate in input order.
func (c Classifier) Filter(assignments []models.Assignment, name FilterName, ref time.Time) ([]models.Assignment, error) {
	parsed, err := ParseFilter(string(name))
	if err != nil {
		return nil, err
	}
	result := make([]models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if c.Matches(a, parsed, ref) {
			result = append(result, a)
		}
	}
	return result, nil
}

// Counts returns the number of matches for every named filter.
func (c Classifier) Counts(assignments []models.Assignment, ref time.Time) map[FilterName]int {
	counts := make(map[FilterName]int, len(Filters))
	for _, name := range Filters {
		counts[name] = 0
	}
	for _, a := range assignments {
		for _, name := range Filters {
			if c.Matches(a, name, ref) {
				counts[name]++
			}
		}
	}
	return counts
}

// SortByDueDate returns a copy ordered by due date, ties kept in input order.
func SortByDueDate(assignments []models.Assignment) []models.Assignment {
	sorted := make([]models.Assignment, len(assignments))
	copy(sorted, assignments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DueDate.Before(sorted[j].DueDate)
	})
	return sorted
}

func (c Classifier) location(ref time.Time) *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return ref.Location()
}

func (c Classifier) sameWeek(a, b time.Time) bool {
	return c.startOfWeek(a).Equal(c.startOfWeek(b))
}

func (c Classifier) startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) - int(c.WeekStart) + 7) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
