package dto

import "github.com/yigit/gradebook/internal/app/models"

// AdminDashboardResponse is the school-wide overview
type AdminDashboardResponse struct {
	TotalStudents  int64                    `json:"totalStudents"`
	TotalGrades    int64                    `json:"totalGrades"`
	TotalAbsences  int64                    `json:"totalAbsences"`
	TotalLates     int64                    `json:"totalLates"`
	OverallAverage float64                  `json:"overallAverage" example:"4.62"`
	TopStudents    []StudentRankResponse    `json:"topStudents"`
	TopSubjects    []SubjectAverageResponse `json:"topSubjects"`
	RecentGrades   []GradeResponse          `json:"recentGrades"`
}

// TeacherDashboardResponse is a teacher's overview
type TeacherDashboardResponse struct {
	TeacherID     int64                 `json:"teacherId"`
	TeacherName   string                `json:"teacherName"`
	ClassSubjects []models.ClassSubject `json:"classSubjects"`
	StudentCount  int64                 `json:"studentCount"`
	GradeCount    int64                 `json:"gradeCount"`
	RecentGrades  []GradeResponse       `json:"recentGrades"`
	Schedule      ScheduleResponse      `json:"schedule"`
}

// StudentDashboardResponse is a student's overview
type StudentDashboardResponse struct {
	StudentID    int64                 `json:"studentId"`
	StudentName  string                `json:"studentName"`
	ClassName    string                `json:"className"`
	Grades       []GradeResponse       `json:"grades"`
	Average      float64               `json:"average"`
	Position     int                   `json:"position"`
	ClassSize    int                   `json:"classSize"`
	SchoolTop    []StudentRankResponse `json:"schoolTop"`
	DailySeries  []DayPointResponse    `json:"dailySeries"`
	AbsenceCount int                   `json:"absenceCount"`
}

// DashboardResponse carries the dashboard matching the caller's role
type DashboardResponse struct {
	Role    string                    `json:"role" example:"TEACHER"`
	Admin   *AdminDashboardResponse   `json:"admin,omitempty"`
	Teacher *TeacherDashboardResponse `json:"teacher,omitempty"`
	Student *StudentDashboardResponse `json:"student,omitempty"`
}
