package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/pkg/helpers"
)

// factColumns names the columns a FactFilter constrains in one query
type factColumns struct {
	class   string
	subject string
	student string
	date    string
}

var (
	gradeColumns      = factColumns{class: "s.class_id", subject: "g.subject_id", student: "g.student_id", date: "g.graded_at"}
	attendanceColumns = factColumns{class: "s.class_id", subject: "a.subject_id", student: "a.student_id", date: "a.date"}
)

// applyFactFilter adds the restrictions of f to q. Callers check f.MatchesNothing first.
func applyFactFilter(q squirrel.SelectBuilder, f models.FactFilter, cols factColumns) squirrel.SelectBuilder {
	if f.ClassIDs != nil {
		q = q.Where(squirrel.Eq{cols.class: f.ClassIDs})
	}
	if f.SubjectIDs != nil {
		q = q.Where(squirrel.Eq{cols.subject: f.SubjectIDs})
	}
	if f.StudentIDs != nil {
		q = q.Where(squirrel.Eq{cols.student: f.StudentIDs})
	}
	if f.Pairs != nil {
		q = q.Where(helpers.PairsIn(cols.class, cols.subject, pairKeys(f.Pairs)))
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{cols.date: *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{cols.date: *f.To})
	}
	return q
}

func pairKeys(pairs []models.ClassSubjectPair) [][2]int64 {
	out := make([][2]int64, len(pairs))
	for i, p := range pairs {
		out[i] = [2]int64{p.ClassID, p.SubjectID}
	}
	return out
}

// idFilter adds "col IN ids" unless ids is nil
func idFilter(q squirrel.SelectBuilder, col string, ids []int64) squirrel.SelectBuilder {
	if ids == nil {
		return q
	}
	return q.Where(squirrel.Eq{col: ids})
}
