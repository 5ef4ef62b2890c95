package dto

import (
	"fmt"

	"github.com/yigit/gradebook/internal/app/aggregation"
)

// StatsQuery narrows single-aggregation endpoints
type StatsQuery struct {
	ClassID    *int64  `form:"classId" binding:"omitempty,min=1"`
	SubjectID  *int64  `form:"subjectId" binding:"omitempty,min=1"`
	SubjectIDs []int64 `form:"subjectIds" binding:"omitempty,dive,min=1"`
	From       string  `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string  `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Limit      int     `form:"limit" binding:"omitempty,min=1,max=100"`
	Direction  string  `form:"direction" binding:"omitempty,oneof=top bottom"`
}

// Subjects merges subjectId and subjectIds into one set; nil means no subject filter
func (q *StatsQuery) Subjects() []int64 {
	if q.SubjectID == nil && len(q.SubjectIDs) == 0 {
		return nil
	}
	seen := make(map[int64]bool, len(q.SubjectIDs)+1)
	out := make([]int64, 0, len(q.SubjectIDs)+1)
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if q.SubjectID != nil {
		add(*q.SubjectID)
	}
	for _, id := range q.SubjectIDs {
		add(id)
	}
	return out
}

// NamedAverageResponse is an average attached to a class or subject
type NamedAverageResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name" example:"8A"`
	Average float64 `json:"average" example:"4.75"`
	Count   int     `json:"count"`
}

// StudentRankResponse is one row of a ranking
type StudentRankResponse struct {
	Rank       int     `json:"rank" example:"1"`
	StudentID  int64   `json:"studentId"`
	Name       string  `json:"name"`
	ClassName  string  `json:"className"`
	Average    float64 `json:"average" example:"5.67"`
	GradeCount int     `json:"gradeCount"`
}

// SubjectAverageResponse is the grade summary of one subject
type SubjectAverageResponse struct {
	SubjectID int64   `json:"subjectId"`
	Name      string  `json:"name" example:"Mathematics"`
	ShortName string  `json:"shortName,omitempty" example:"MATH"`
	Average   float64 `json:"average" example:"4.80"`
	Count     int     `json:"count"`
}

// MonthPointResponse is one monthly bucket of a grade series
type MonthPointResponse struct {
	Label   string  `json:"label" example:"2024-01"`
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// DayPointResponse is one daily bucket of a grade series
type DayPointResponse struct {
	Label   string  `json:"label" example:"10.01"`
	Average float64 `json:"average"`
}

// NamedCountResponse is a count attached to a class, subject or student
type NamedCountResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ClassAverageResponse answers the single class-average query
type ClassAverageResponse struct {
	ClassID    int64   `json:"classId"`
	SubjectIDs []int64 `json:"subjectIds,omitempty"`
	Average    float64 `json:"average" example:"5.00"`
}

// PositionResponse is a student's place in their class
type PositionResponse struct {
	StudentID   int64 `json:"studentId"`
	ClassID     int64 `json:"classId"`
	Position    int   `json:"position" example:"3"`
	RankedCount int   `json:"rankedCount" example:"24"`
}

// OverviewStatsResponse is the school-wide or teacher-scoped statistics view
type OverviewStatsResponse struct {
	ClassAverages   []NamedAverageResponse   `json:"classAverages"`
	SubjectAverages []SubjectAverageResponse `json:"subjectAverages"`
	TopStudents     []StudentRankResponse    `json:"topStudents"`
	BottomStudents  []StudentRankResponse    `json:"bottomStudents"`
	AbsencesByClass []NamedCountResponse     `json:"absencesByClass"`
	MonthlyAverages []MonthPointResponse     `json:"monthlyAverages"`
}

// StudentStatsResponse is a student's own statistics view
type StudentStatsResponse struct {
	StudentID         int64                    `json:"studentId"`
	ClassName         string                   `json:"className"`
	SubjectAverages   []SubjectAverageResponse `json:"subjectAverages"`
	MonthlyAverages   []MonthPointResponse     `json:"monthlyAverages"`
	Position          int                      `json:"position"`
	RankedCount       int                      `json:"rankedCount"`
	AbsencesBySubject []NamedCountResponse     `json:"absencesBySubject"`
}

// StatisticsResponse carries the view matching the caller's role
type StatisticsResponse struct {
	Role     string                 `json:"role" example:"ADMIN"`
	Overview *OverviewStatsResponse `json:"overview,omitempty"`
	Student  *StudentStatsResponse  `json:"student,omitempty"`
}

// ToNamedAverages converts class averages
func ToNamedAverages(rows []aggregation.NamedAverage) []NamedAverageResponse {
	out := make([]NamedAverageResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, NamedAverageResponse{ID: r.ID, Name: r.Name, Average: aggregation.Float(r.Average), Count: r.Count})
	}
	return out
}

// ToStudentRanks converts a ranking, numbering rows from 1
func ToStudentRanks(rows []aggregation.StudentAverage) []StudentRankResponse {
	out := make([]StudentRankResponse, 0, len(rows))
	for i, r := range rows {
		out = append(out, StudentRankResponse{
			Rank:       i + 1,
			StudentID:  r.StudentID,
			Name:       r.Name,
			ClassName:  r.ClassName,
			Average:    aggregation.Float(r.Average),
			GradeCount: r.Count,
		})
	}
	return out
}

// ToSubjectAverages converts subject summaries
func ToSubjectAverages(rows []aggregation.SubjectStat) []SubjectAverageResponse {
	out := make([]SubjectAverageResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, SubjectAverageResponse{
			SubjectID: r.SubjectID,
			Name:      r.Name,
			ShortName: r.ShortName,
			Average:   aggregation.Float(r.Average),
			Count:     r.Count,
		})
	}
	return out
}

// ToMonthPoints converts a monthly series
func ToMonthPoints(rows []aggregation.MonthPoint) []MonthPointResponse {
	out := make([]MonthPointResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, MonthPointResponse{
			Label:   fmt.Sprintf("%04d-%02d", r.Year, int(r.Month)),
			Year:    r.Year,
			Month:   int(r.Month),
			Average: aggregation.Float(r.Average),
			Count:   r.Count,
		})
	}
	return out
}

// ToDayPoints converts a daily series using "dd.MM" labels
func ToDayPoints(rows []aggregation.DayPoint) []DayPointResponse {
	out := make([]DayPointResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, DayPointResponse{Label: r.Date.Format("02.01"), Average: aggregation.Float(r.Average)})
	}
	return out
}

// ToNamedCounts converts absence counts
func ToNamedCounts(rows []aggregation.NamedCount) []NamedCountResponse {
	out := make([]NamedCountResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, NamedCountResponse{ID: r.ID, Name: r.Name, Count: r.Count})
	}
	return out
}

// AbsenceStatsResponse counts absences per class and per subject
type AbsenceStatsResponse struct {
	ByClass   []NamedCountResponse `json:"byClass"`
	BySubject []NamedCountResponse `json:"bySubject"`
}
