package aggregation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yigit/gradebook/internal/app/models"
)

// Direction selects ranking order
type Direction int

const (
	// Top ranks highest averages first
	Top Direction = iota
	// Bottom ranks lowest averages first
	Bottom
)

// ParseDirection maps "bottom"/"weak" to Bottom and anything else to Top
func ParseDirection(s string) Direction {
	switch s {
	case "bottom", "weak", "asc":
		return Bottom
	default:
		return Top
	}
}

// StudentAverage is one ranked student
type StudentAverage struct {
	StudentID int64
	Name      string
	ClassID   int64
	ClassName string
	Average   decimal.Decimal
	Count     int
}

// StudentAverages groups facts per student, ordered by student id.
// Students without facts do not appear.
func StudentAverages(facts []models.GradeFact) []StudentAverage {
	type acc struct {
		row  StudentAverage
		vals []decimal.Decimal
	}
	byStudent := make(map[int64]*acc)
	ids := make([]int64, 0)
	for _, g := range facts {
		a, ok := byStudent[g.StudentID]
		if !ok {
			a = &acc{row: StudentAverage{
				StudentID: g.StudentID,
				Name:      g.StudentName,
				ClassID:   g.ClassID,
				ClassName: g.ClassName,
			}}
			byStudent[g.StudentID] = a
			ids = append(ids, g.StudentID)
		}
		a.vals = append(a.vals, g.Value)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]StudentAverage, 0, len(ids))
	for _, id := range ids {
		a := byStudent[id]
		a.row.Average = Mean(a.vals)
		a.row.Count = len(a.vals)
		out = append(out, a.row)
	}
	return out
}

// RankStudents orders students by mean grade. Equal means keep student id order.
// A non-positive limit returns every ranked student.
func RankStudents(facts []models.GradeFact, limit int, dir Direction) []StudentAverage {
	ranked := StudentAverages(facts)
	sort.SliceStable(ranked, func(i, j int) bool {
		if dir == Bottom {
			return ranked[i].Average.LessThan(ranked[j].Average)
		}
		return ranked[i].Average.GreaterThan(ranked[j].Average)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Position is a 1-based class rank together with the number of ranked students
type Position struct {
	Position    int
	RankedCount int
}

// ClassPosition ranks studentID among classmates who have at least one grade.
// An unranked student is placed after everyone ranked.
func ClassPosition(facts []models.GradeFact, studentID, classID int64) Position {
	ranked := RankStudents(Filter(facts, GradeFilter{ClassID: classID}), 0, Top)
	for i, r := range ranked {
		if r.StudentID == studentID {
			return Position{Position: i + 1, RankedCount: len(ranked)}
		}
	}
	return Position{Position: len(ranked) + 1, RankedCount: len(ranked)}
}
