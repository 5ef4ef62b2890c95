package aggregation

import (
	"sort"

	"github.com/yigit/gradebook/internal/app/models"
)

// NamedCount is a count attached to a named entity
type NamedCount struct {
	ID    int64
	Name  string
	Count int
}

// CountStatus counts facts with the given status
func CountStatus(facts []models.AttendanceFact, status models.AttendanceStatus) int {
	n := 0
	for _, a := range facts {
		if a.Status == status {
			n++
		}
	}
	return n
}

// AbsencesByClass counts Absent rows per class, one entry per class in the given order
func AbsencesByClass(facts []models.AttendanceFact, classes []models.Class) []NamedCount {
	counts := make(map[int64]int, len(classes))
	for _, a := range facts {
		if a.Status == models.AttendanceAbsent {
			counts[a.ClassID]++
		}
	}
	out := make([]NamedCount, 0, len(classes))
	for _, c := range classes {
		out = append(out, NamedCount{ID: c.ID, Name: c.Name, Count: counts[c.ID]})
	}
	return out
}

// AbsencesBySubject counts Absent rows per subject, most absences first.
// Subjects without absences are omitted.
func AbsencesBySubject(facts []models.AttendanceFact) []NamedCount {
	return rankCounts(facts,
		func(a models.AttendanceFact) int64 { return a.SubjectID },
		func(a models.AttendanceFact) string { return a.SubjectName })
}

// AbsencesByStudent counts Absent rows per student, most absences first.
// Students without absences are omitted.
func AbsencesByStudent(facts []models.AttendanceFact) []NamedCount {
	return rankCounts(facts,
		func(a models.AttendanceFact) int64 { return a.StudentID },
		func(a models.AttendanceFact) string { return a.StudentName })
}

func rankCounts(facts []models.AttendanceFact, id func(models.AttendanceFact) int64, name func(models.AttendanceFact) string) []NamedCount {
	byID := make(map[int64]*NamedCount)
	for _, a := range facts {
		if a.Status != models.AttendanceAbsent {
			continue
		}
		k := id(a)
		c, ok := byID[k]
		if !ok {
			c = &NamedCount{ID: k, Name: name(a)}
			byID[k] = c
		}
		c.Count++
	}

	out := make([]NamedCount, 0, len(byID))
	for _, c := range byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
