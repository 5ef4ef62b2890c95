package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yigit/gradebook/internal/app/models/dto"
)

func TestBuildClassReport(t *testing.T) {
	report := &dto.ClassReportResponse{
		ClassID:       1,
		ClassName:     "8A",
		From:          "2024-01-01",
		To:            "2024-06-30",
		Average:       4.5,
		StudentCount:  2,
		TotalAbsences: 3,
		TopStudents: []dto.StudentRankResponse{
			{Rank: 1, StudentID: 1, Name: "Ana Petrova", Average: 5.5, GradeCount: 2},
		},
		Subjects: []dto.SubjectReportResponse{
			{SubjectID: 1, Name: "Mathematics", Average: 5, Count: 3, Grades: []float64{4, 5, 6}},
		},
		Absences: []dto.NamedCountResponse{{ID: 2, Name: "Ivan Ivanov", Count: 3}},
	}

	buf, err := BuildClassReport(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetSubjects, SheetTop, SheetAbsences}, f.GetSheetList())

	className, err := f.GetCellValue(SheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "8A", className)

	rows, err := f.GetRows(SheetSubjects)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Mathematics", "5", "3", "4.00, 5.00, 6.00"}, rows[1])

	rows, err = f.GetRows(SheetAbsences)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ivan Ivanov", "3"}, rows[1])
}
