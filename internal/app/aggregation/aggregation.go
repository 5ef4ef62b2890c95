// Package aggregation computes grade and attendance statistics over denormalised fact rows.
//
// All functions are pure: they never fail, and an empty input yields zero values or empty
// slices. Averages are exact decimals; callers round with Round only when presenting results.
package aggregation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yigit/gradebook/internal/app/models"
)

// OutputPlaces is the number of fractional digits averages are presented with
const OutputPlaces = 2

// DefaultSeriesLength is the number of monthly buckets returned when no limit is given
const DefaultSeriesLength = 12

// GradeFilter narrows a fact slice before aggregating. Zero values match everything.
type GradeFilter struct {
	ClassID    int64
	StudentID  int64
	SubjectIDs []int64
	From       *time.Time
	To         *time.Time
}

func (f GradeFilter) match(g models.GradeFact) bool {
	if f.ClassID != 0 && g.ClassID != f.ClassID {
		return false
	}
	if f.StudentID != 0 && g.StudentID != f.StudentID {
		return false
	}
	if f.SubjectIDs != nil && !contains(f.SubjectIDs, g.SubjectID) {
		return false
	}
	if f.From != nil && g.GradedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && g.GradedAt.After(*f.To) {
		return false
	}
	return true
}

// Filter returns the facts matching f, preserving order
func Filter(facts []models.GradeFact, f GradeFilter) []models.GradeFact {
	out := make([]models.GradeFact, 0, len(facts))
	for _, g := range facts {
		if f.match(g) {
			out = append(out, g)
		}
	}
	return out
}

// Mean returns the arithmetic mean of values, or zero for an empty set
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(values[0], values[1:]...).Div(decimal.NewFromInt(int64(len(values))))
}

// Round rounds half away from zero to OutputPlaces
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(OutputPlaces)
}

// Float converts a rounded average for JSON output
func Float(d decimal.Decimal) float64 {
	return Round(d).InexactFloat64()
}

func values(facts []models.GradeFact) []decimal.Decimal {
	out := make([]decimal.Decimal, len(facts))
	for i, g := range facts {
		out[i] = g.Value
	}
	return out
}

// Average is the unrounded mean of every fact's value
func Average(facts []models.GradeFact) decimal.Decimal {
	return Mean(values(facts))
}

// ClassAverage is the mean grade of the facts matching f; zero when nothing matches
func ClassAverage(facts []models.GradeFact, f GradeFilter) decimal.Decimal {
	return Average(Filter(facts, f))
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// NamedAverage is an average attached to a named entity (class, subject)
type NamedAverage struct {
	ID      int64
	Name    string
	Average decimal.Decimal
	Count   int
}

// ClassAverages returns one entry per class in the given order; classes without grades average zero
func ClassAverages(facts []models.GradeFact, classes []models.Class) []NamedAverage {
	byClass := make(map[int64][]decimal.Decimal, len(classes))
	for _, g := range facts {
		byClass[g.ClassID] = append(byClass[g.ClassID], g.Value)
	}

	out := make([]NamedAverage, 0, len(classes))
	for _, c := range classes {
		vals := byClass[c.ID]
		out = append(out, NamedAverage{ID: c.ID, Name: c.Name, Average: Mean(vals), Count: len(vals)})
	}
	return out
}

// SortClasses orders classes by grade number, then name
func SortClasses(classes []models.Class) {
	sort.SliceStable(classes, func(i, j int) bool {
		return models.ClassNameLess(classes[i].Name, classes[j].Name)
	})
}
