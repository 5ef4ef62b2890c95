package aggregation

import (
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/gradebook/internal/app/models"
)

var day = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

func grade(studentID, classID, subjectID int64, value string, at time.Time) models.GradeFact {
	return models.GradeFact{
		StudentID:   studentID,
		StudentName: "Student " + strconv.FormatInt(studentID, 10),
		ClassID:     classID,
		ClassName:   "8A",
		SubjectID:   subjectID,
		SubjectName: "Subject " + strconv.FormatInt(subjectID, 10),
		Value:       decimal.RequireFromString(value),
		GradedAt:    at,
	}
}

func ids(rows []StudentAverage) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.StudentID
	}
	return out
}

func TestClassAverage(t *testing.T) {
	tests := []struct {
		name   string
		facts  []models.GradeFact
		filter GradeFilter
		want   string
	}{
		{name: "empty set", want: "0"},
		{
			name: "single student 4 5 6",
			facts: []models.GradeFact{
				grade(1, 8, 1, "4.00", day),
				grade(1, 8, 1, "5.00", day),
				grade(1, 8, 1, "6.00", day),
			},
			filter: GradeFilter{ClassID: 8, SubjectIDs: []int64{1}},
			want:   "5",
		},
		{
			name: "filter drops other class and subject",
			facts: []models.GradeFact{
				grade(1, 8, 1, "4.00", day),
				grade(2, 9, 1, "2.00", day),
				grade(1, 8, 2, "2.00", day),
			},
			filter: GradeFilter{ClassID: 8, SubjectIDs: []int64{1}},
			want:   "4",
		},
		{
			name: "rounds half away from zero",
			facts: []models.GradeFact{
				grade(1, 8, 1, "5.00", day),
				grade(1, 8, 1, "5.01", day),
			},
			want: "5.01",
		},
		{
			name: "repeating fraction",
			facts: []models.GradeFact{
				grade(1, 8, 1, "4.00", day),
				grade(1, 8, 1, "5.00", day),
				grade(1, 8, 1, "5.00", day),
			},
			want: "4.67",
		},
		{
			name:   "non-nil empty subject list matches nothing",
			facts:  []models.GradeFact{grade(1, 8, 1, "6.00", day)},
			filter: GradeFilter{SubjectIDs: []int64{}},
			want:   "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Round(ClassAverage(tt.facts, tt.filter))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestClassAverage_DateWindow(t *testing.T) {
	from := day.AddDate(0, 0, -1)
	to := day.AddDate(0, 0, 1)
	facts := []models.GradeFact{
		grade(1, 8, 1, "2.00", day.AddDate(0, -1, 0)),
		grade(1, 8, 1, "6.00", day),
		grade(1, 8, 1, "2.00", day.AddDate(0, 1, 0)),
	}
	got := ClassAverage(facts, GradeFilter{From: &from, To: &to})
	assert.True(t, decimal.NewFromInt(6).Equal(got))
}

func TestFloat(t *testing.T) {
	assert.Equal(t, 4.67, Float(decimal.RequireFromString("4.666666")))
	assert.Equal(t, 0.0, Float(decimal.Zero))
}

func TestRankStudents(t *testing.T) {
	facts := []models.GradeFact{
		grade(3, 8, 1, "5.00", day),
		grade(1, 8, 1, "4.00", day),
		grade(2, 8, 1, "6.00", day),
		grade(4, 8, 1, "5.00", day),
		grade(1, 8, 1, "6.00", day),
	}

	t.Run("descending with ties in id order", func(t *testing.T) {
		assert.Equal(t, []int64{2, 1, 3, 4}, ids(RankStudents(facts, 0, Top)))
	})
	t.Run("bottom keeps ties in id order", func(t *testing.T) {
		assert.Equal(t, []int64{1, 3, 4, 2}, ids(RankStudents(facts, 0, Bottom)))
	})
	t.Run("limit truncates", func(t *testing.T) {
		assert.Equal(t, []int64{2, 1}, ids(RankStudents(facts, 2, Top)))
	})
	t.Run("students without grades are absent", func(t *testing.T) {
		assert.Empty(t, RankStudents(nil, 10, Top))
	})
	t.Run("averages and counts", func(t *testing.T) {
		ranked := RankStudents(facts, 0, Top)
		require.Len(t, ranked, 4)
		assert.Equal(t, 2, ranked[1].Count)
		assert.True(t, decimal.NewFromInt(5).Equal(ranked[1].Average))
	})
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Bottom, ParseDirection("bottom"))
	assert.Equal(t, Bottom, ParseDirection("weak"))
	assert.Equal(t, Top, ParseDirection(""))
	assert.Equal(t, Top, ParseDirection("top"))
}

func TestClassPosition(t *testing.T) {
	facts := []models.GradeFact{
		grade(1, 8, 1, "4.00", day),
		grade(2, 8, 1, "6.00", day),
		grade(3, 8, 1, "5.00", day),
		grade(9, 9, 1, "6.00", day),
	}

	tests := []struct {
		name      string
		studentID int64
		want      Position
	}{
		{name: "top", studentID: 2, want: Position{Position: 1, RankedCount: 3}},
		{name: "last", studentID: 1, want: Position{Position: 3, RankedCount: 3}},
		{name: "no grades", studentID: 7, want: Position{Position: 4, RankedCount: 3}},
		{name: "other class ignored", studentID: 9, want: Position{Position: 4, RankedCount: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassPosition(facts, tt.studentID, 8))
		})
	}
}

func TestMonthlySeries(t *testing.T) {
	var facts []models.GradeFact
	start := time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		facts = append(facts, grade(1, 8, 1, "4.00", start.AddDate(0, i, 0)))
	}
	facts = append(facts, grade(1, 8, 1, "6.00", start.AddDate(0, 13, 0)))

	all := MonthlySeries(facts, 0)
	require.Len(t, all, 14)
	assert.Equal(t, 2023, all[0].Year)
	assert.Equal(t, time.January, all[0].Month)

	last := MonthlySeries(facts, DefaultSeriesLength)
	require.Len(t, last, DefaultSeriesLength)
	assert.Equal(t, time.March, last[0].Month)
	tail := last[len(last)-1]
	assert.Equal(t, 2024, tail.Year)
	assert.Equal(t, time.February, tail.Month)
	assert.Equal(t, 2, tail.Count)
	assert.True(t, decimal.NewFromInt(5).Equal(tail.Average))

	assert.Empty(t, MonthlySeries(nil, 12))
}

func TestDailySeries(t *testing.T) {
	facts := []models.GradeFact{
		grade(1, 8, 1, "6.00", day.Add(2*time.Hour)),
		grade(1, 8, 1, "4.00", day),
		grade(1, 8, 1, "3.00", day.AddDate(0, 0, -2)),
	}
	series := DailySeries(facts)
	require.Len(t, series, 2)
	assert.True(t, series[0].Date.Before(series[1].Date))
	assert.True(t, decimal.NewFromInt(3).Equal(series[0].Average))
	assert.True(t, decimal.NewFromInt(5).Equal(series[1].Average))
}

func TestSubjectAverages(t *testing.T) {
	facts := []models.GradeFact{
		grade(1, 8, 2, "6.00", day),
		grade(1, 8, 1, "3.00", day),
		grade(2, 8, 1, "5.00", day),
		grade(1, 8, 3, "4.00", day),
		grade(2, 8, 3, "4.00", day),
	}
	stats := SubjectAverages(facts)
	require.Len(t, stats, 3)

	assert.Equal(t, int64(2), stats[0].SubjectID)
	// subjects 1 and 3 both average 4 and keep id order
	assert.Equal(t, int64(1), stats[1].SubjectID)
	assert.Equal(t, int64(3), stats[2].SubjectID)
	assert.Equal(t, 2, stats[1].Count)
	assert.True(t, stats[1].Values[0].LessThan(stats[1].Values[1]))
}

func TestClassAverages(t *testing.T) {
	classes := []models.Class{{ID: 10, Name: "10A"}, {ID: 8, Name: "8A"}}
	SortClasses(classes)
	require.Equal(t, "8A", classes[0].Name)

	out := ClassAverages([]models.GradeFact{grade(1, 8, 1, "5.00", day)}, classes)
	require.Len(t, out, 2)
	assert.True(t, decimal.NewFromInt(5).Equal(out[0].Average))
	assert.True(t, out[1].Average.IsZero())
	assert.Equal(t, 0, out[1].Count)
}

func TestAbsences(t *testing.T) {
	att := func(studentID, classID, subjectID int64, status models.AttendanceStatus) models.AttendanceFact {
		return models.AttendanceFact{
			StudentID: studentID, StudentName: "s",
			ClassID: classID, ClassName: "c",
			SubjectID: subjectID, SubjectName: "sub",
			Date: day, Status: status,
		}
	}
	facts := []models.AttendanceFact{
		att(1, 8, 1, models.AttendanceAbsent),
		att(1, 8, 2, models.AttendanceAbsent),
		att(2, 8, 2, models.AttendanceAbsent),
		att(2, 8, 2, models.AttendanceLate),
		att(3, 9, 3, models.AttendanceExcused),
	}

	assert.Equal(t, 3, CountStatus(facts, models.AttendanceAbsent))
	assert.Equal(t, 1, CountStatus(facts, models.AttendanceLate))

	byClass := AbsencesByClass(facts, []models.Class{{ID: 8, Name: "8A"}, {ID: 9, Name: "9A"}})
	assert.Equal(t, []NamedCount{{ID: 8, Name: "8A", Count: 3}, {ID: 9, Name: "9A", Count: 0}}, byClass)

	bySubject := AbsencesBySubject(facts)
	require.Len(t, bySubject, 2)
	assert.Equal(t, int64(2), bySubject[0].ID)
	assert.Equal(t, 2, bySubject[0].Count)

	byStudent := AbsencesByStudent(facts)
	require.Len(t, byStudent, 2)
	assert.Equal(t, []int64{1, 2}, []int64{byStudent[0].ID, byStudent[1].ID})
}
