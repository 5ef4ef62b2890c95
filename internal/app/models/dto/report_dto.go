package dto

// ReportRangeRequest bounds a report; both ends default to the last six months
type ReportRangeRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02" example:"2024-01-01"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02" example:"2024-06-30"`
}

// SubjectReportResponse summarises one subject within a class report
type SubjectReportResponse struct {
	SubjectID int64     `json:"subjectId"`
	Name      string    `json:"name"`
	Average   float64   `json:"average"`
	Count     int       `json:"count"`
	Grades    []float64 `json:"grades"`
}

// ClassReportResponse is the performance report of one class over a date range
type ClassReportResponse struct {
	ClassID       int64                   `json:"classId"`
	ClassName     string                  `json:"className"`
	From          string                  `json:"from"`
	To            string                  `json:"to"`
	Average       float64                 `json:"average"`
	StudentCount  int                     `json:"studentCount"`
	TotalAbsences int                     `json:"totalAbsences"`
	TopStudents   []StudentRankResponse   `json:"topStudents"`
	Subjects      []SubjectReportResponse `json:"subjects"`
	Absences      []NamedCountResponse    `json:"absences"`
}

// ExportResponse locates a stored report file
type ExportResponse struct {
	Key      string `json:"key" example:"reports/8A-2f1c.xlsx"`
	FileName string `json:"fileName" example:"8A-report.xlsx"`
	Size     int64  `json:"size"`
}

// ReportFileRequest names a stored report file
type ReportFileRequest struct {
	Key string `form:"key" binding:"required,max=300"`
}
