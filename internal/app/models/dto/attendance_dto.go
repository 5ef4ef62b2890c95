package dto

import (
	"github.com/yigit/gradebook/internal/app/models"
)

// CreateAttendanceRequest records an attendance status for one day
type CreateAttendanceRequest struct {
	StudentID int64                   `json:"studentId" binding:"required,min=1"`
	SubjectID int64                   `json:"subjectId" binding:"required,min=1"`
	Date      string                  `json:"date" binding:"required,datetime=2006-01-02" example:"2024-01-10"`
	Status    models.AttendanceStatus `json:"status" binding:"required,attendancestatus" example:"Absent"`
}

// UpdateAttendanceRequest changes the status of an attendance row
type UpdateAttendanceRequest struct {
	Status models.AttendanceStatus `json:"status" binding:"required,attendancestatus" example:"Excused"`
}

// AttendanceFilterRequest filters the attendance list
type AttendanceFilterRequest struct {
	ClassID   *int64 `form:"classId" binding:"omitempty,min=1"`
	SubjectID *int64 `form:"subjectId" binding:"omitempty,min=1"`
	StudentID *int64 `form:"studentId" binding:"omitempty,min=1"`
	Status    string `form:"status" binding:"omitempty,attendancestatus"`
	PaginationRequest
}

// AttendanceResponse is an attendance row with display names
type AttendanceResponse struct {
	ID          int64  `json:"id"`
	StudentID   int64  `json:"studentId"`
	StudentName string `json:"studentName"`
	ClassName   string `json:"className"`
	SubjectID   int64  `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	Date        string `json:"date" example:"2024-01-10"`
	Status      string `json:"status" example:"Absent"`
}

// AttendanceListResponse is one page of attendance rows
type AttendanceListResponse struct {
	Attendances []AttendanceResponse `json:"attendances"`
	PaginationInfo
}

// ToAttendanceResponse converts an attendance row
func ToAttendanceResponse(a *models.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:          a.ID,
		StudentID:   a.StudentID,
		StudentName: a.StudentName,
		ClassName:   a.ClassName,
		SubjectID:   a.SubjectID,
		SubjectName: a.SubjectName,
		Date:        a.Date.Format(DateLayout),
		Status:      string(a.Status),
	}
}

// ToAttendanceResponses converts a slice of attendance rows
func ToAttendanceResponses(rows []models.Attendance) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToAttendanceResponse(&rows[i]))
	}
	return out
}
