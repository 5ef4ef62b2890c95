package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yigit/gradebook/internal/app/models"
)

// LessonTargetRequest identifies the class and subject a lesson is for
type LessonTargetRequest struct {
	ClassID   int64 `form:"classId" binding:"required,min=1"`
	SubjectID int64 `form:"subjectId" binding:"required,min=1"`
}

// LessonAttendanceInput marks one student as absent or late
type LessonAttendanceInput struct {
	StudentID int64                   `json:"studentId" binding:"required,min=1"`
	Status    models.AttendanceStatus `json:"status" binding:"required,attendancestatus"`
}

// LessonGradeInput grades one student during a lesson; a zero value is ignored
type LessonGradeInput struct {
	StudentID int64           `json:"studentId" binding:"required,min=1"`
	Value     decimal.Decimal `json:"value" swaggertype:"number" example:"5"`
	Type      string          `json:"type" binding:"omitempty,max=30" example:"Oral"`
}

// SaveLessonRequest records today's lesson with its attendance and grades
type SaveLessonRequest struct {
	ClassID    int64                   `json:"classId" binding:"required,min=1"`
	SubjectID  int64                   `json:"subjectId" binding:"required,min=1"`
	Topic      string                  `json:"topic" binding:"max=300" example:"Quadratic equations"`
	Attendance []LessonAttendanceInput `json:"attendance" binding:"dive"`
	Grades     []LessonGradeInput      `json:"grades" binding:"dive"`
}

// SaveLessonResponse reports what a lesson save inserted and what it skipped as already present
type SaveLessonResponse struct {
	LessonID          int64 `json:"lessonId"`
	Created           bool  `json:"created"`
	AttendanceSaved   int   `json:"attendanceSaved"`
	AttendanceSkipped int   `json:"attendanceSkipped"`
	GradesSaved       int   `json:"gradesSaved"`
}

// LessonResponse is a recorded lesson
type LessonResponse struct {
	ID              int64     `json:"id"`
	ClassID         int64     `json:"classId"`
	ClassName       string    `json:"className"`
	SubjectID       int64     `json:"subjectId"`
	SubjectName     string    `json:"subjectName"`
	LessonDate      time.Time `json:"lessonDate"`
	Topic           string    `json:"topic"`
	GradeCount      int       `json:"gradeCount"`
	AttendanceCount int       `json:"attendanceCount"`
}

// TodaySlotResponse is a timetable slot of today, flagged when its lesson is already recorded
type TodaySlotResponse struct {
	models.ScheduleSlot
	LessonID *int64 `json:"lessonId,omitempty"`
}

// TodayLessonsResponse is a teacher's plan for the current day
type TodayLessonsResponse struct {
	Date    string              `json:"date" example:"2024-01-10"`
	Day     string              `json:"day" example:"Wednesday"`
	Slots   []TodaySlotResponse `json:"slots"`
	Lessons []LessonResponse    `json:"lessons"`
}

// LessonStudentResponse is one roster row of a lesson in progress
type LessonStudentResponse struct {
	StudentID int64     `json:"studentId"`
	Name      string    `json:"name"`
	Status    *string   `json:"status,omitempty" example:"Late"`
	Grades    []float64 `json:"grades"`
}

// LessonStartResponse is everything needed to conduct a lesson
type LessonStartResponse struct {
	ClassID     int64                   `json:"classId"`
	ClassName   string                  `json:"className"`
	SubjectID   int64                   `json:"subjectId"`
	SubjectName string                  `json:"subjectName"`
	Date        string                  `json:"date"`
	Lesson      *LessonResponse         `json:"lesson,omitempty"`
	Students    []LessonStudentResponse `json:"students"`
}

// LessonHistoryRequest pages a teacher's lesson history
type LessonHistoryRequest struct {
	Limit int `form:"limit,default=50" binding:"min=1,max=200"`
}

// ToLessonResponse converts a lesson with its counts
func ToLessonResponse(l *models.Lesson, grades, attendance int) LessonResponse {
	return LessonResponse{
		ID:              l.ID,
		ClassID:         l.ClassID,
		ClassName:       l.ClassName,
		SubjectID:       l.SubjectID,
		SubjectName:     l.SubjectName,
		LessonDate:      l.LessonDate,
		Topic:           l.Topic,
		GradeCount:      grades,
		AttendanceCount: attendance,
	}
}
