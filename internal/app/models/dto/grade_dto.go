package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yigit/gradebook/internal/app/models"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// CreateGradeRequest records a grade for a student in a subject
type CreateGradeRequest struct {
	StudentID int64           `json:"studentId" binding:"required,min=1"`
	SubjectID int64           `json:"subjectId" binding:"required,min=1"`
	Value     decimal.Decimal `json:"value" binding:"grade" swaggertype:"number" example:"5.50"`
	Type      string          `json:"type" binding:"omitempty,max=30" example:"Test"`
	Comment   *string         `json:"comment,omitempty" binding:"omitempty,max=500"`
	GradedAt  *time.Time      `json:"gradedAt,omitempty"`
}

// UpdateGradeRequest changes the value, type or comment of a grade
type UpdateGradeRequest struct {
	Value   decimal.Decimal `json:"value" binding:"grade" swaggertype:"number" example:"4.00"`
	Type    string          `json:"type" binding:"omitempty,max=30"`
	Comment *string         `json:"comment,omitempty" binding:"omitempty,max=500"`
}

// GradeFilterRequest filters the grade list
type GradeFilterRequest struct {
	ClassID   *int64 `form:"classId" binding:"omitempty,min=1"`
	SubjectID *int64 `form:"subjectId" binding:"omitempty,min=1"`
	StudentID *int64 `form:"studentId" binding:"omitempty,min=1"`
	PaginationRequest
}

// GradeResponse is a grade with the names needed to display it
type GradeResponse struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"studentId"`
	StudentName string    `json:"studentName"`
	ClassName   string    `json:"className"`
	SubjectID   int64     `json:"subjectId"`
	SubjectName string    `json:"subjectName"`
	Value       float64   `json:"value" example:"5.50"`
	Type        string    `json:"type" example:"Oral"`
	Comment     *string   `json:"comment,omitempty"`
	GradedAt    time.Time `json:"gradedAt"`
}

// GradeListResponse is one page of grades
type GradeListResponse struct {
	Grades []GradeResponse `json:"grades"`
	PaginationInfo
}

// ToGradeResponse converts a grade
func ToGradeResponse(g *models.Grade) GradeResponse {
	return GradeResponse{
		ID:          g.ID,
		StudentID:   g.StudentID,
		StudentName: g.StudentName,
		ClassName:   g.ClassName,
		SubjectID:   g.SubjectID,
		SubjectName: g.SubjectName,
		Value:       g.Value.Round(2).InexactFloat64(),
		Type:        g.Type,
		Comment:     g.Comment,
		GradedAt:    g.GradedAt,
	}
}

// ToGradeResponses converts a slice of grades
func ToGradeResponses(grades []models.Grade) []GradeResponse {
	out := make([]GradeResponse, 0, len(grades))
	for i := range grades {
		out = append(out, ToGradeResponse(&grades[i]))
	}
	return out
}
