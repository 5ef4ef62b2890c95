// Package excel renders class reports as XLSX workbooks.
package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/yigit/gradebook/internal/app/models/dto"
)

// ContentType is the MIME type of generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names of a class report workbook
const (
	SheetSummary  = "Summary"
	SheetSubjects = "Subjects"
	SheetTop      = "Top students"
	SheetAbsences = "Absences"
)

// BuildClassReport writes the report to a new workbook
func BuildClassReport(report *dto.ClassReportResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	summary := [][]interface{}{
		{"Class", report.ClassName},
		{"From", report.From},
		{"To", report.To},
		{"Average", report.Average},
		{"Students", report.StudentCount},
		{"Absences", report.TotalAbsences},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(summary)), header); err != nil {
		return nil, err
	}

	subjects := [][]interface{}{{"Subject", "Average", "Grades", "Values"}}
	for _, s := range report.Subjects {
		subjects = append(subjects, []interface{}{s.Name, s.Average, s.Count, joinGrades(s.Grades)})
	}
	top := [][]interface{}{{"Rank", "Student", "Average", "Grades"}}
	for _, r := range report.TopStudents {
		top = append(top, []interface{}{r.Rank, r.Name, r.Average, r.GradeCount})
	}
	absences := [][]interface{}{{"Student", "Absences"}}
	for _, a := range report.Absences {
		absences = append(absences, []interface{}{a.Name, a.Count})
	}

	for _, sheet := range []struct {
		name string
		rows [][]interface{}
	}{
		{SheetSubjects, subjects},
		{SheetTop, top},
		{SheetAbsences, absences},
	} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
		}
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return nil, err
		}
		last, _ := excelize.CoordinatesToCellName(len(sheet.rows[0]), 1)
		if err := f.SetCellStyle(sheet.name, "A1", last, header); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func joinGrades(values []float64) string {
	var b bytes.Buffer
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%.2f", v)
	}
	return b.String()
}
