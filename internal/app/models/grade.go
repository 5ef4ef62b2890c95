package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Grade is a scored assessment for one student in one subject
type Grade struct {
	ID        int64           `json:"id" db:"id"`
	StudentID int64           `json:"studentId" db:"student_id"`
	SubjectID int64           `json:"subjectId" db:"subject_id"`
	Value     decimal.Decimal `json:"value" db:"value"`
	Type      string          `json:"type" db:"type"`
	GradedAt  time.Time       `json:"gradedAt" db:"graded_at"`
	Comment   *string         `json:"comment,omitempty" db:"comment"`

	ClassID     int64  `json:"classId,omitempty" db:"-"`
	StudentName string `json:"studentName,omitempty" db:"-"`
	ClassName   string `json:"className,omitempty" db:"-"`
	SubjectName string `json:"subjectName,omitempty" db:"-"`
}

// Attendance is the daily per-subject presence status of a student
type Attendance struct {
	ID        int64            `json:"id" db:"id"`
	StudentID int64            `json:"studentId" db:"student_id"`
	SubjectID int64            `json:"subjectId" db:"subject_id"`
	Date      time.Time        `json:"date" db:"date"`
	Status    AttendanceStatus `json:"status" db:"status"`

	ClassID     int64  `json:"classId,omitempty" db:"-"`
	StudentName string `json:"studentName,omitempty" db:"-"`
	ClassName   string `json:"className,omitempty" db:"-"`
	SubjectName string `json:"subjectName,omitempty" db:"-"`
}

// Grade value bounds on the school scale
var (
	MinGradeValue = decimal.NewFromInt(2)
	MaxGradeValue = decimal.NewFromInt(6)
)

// LessonRecord is what a teacher submits at the end of a lesson.
// Attendance and Grades only need StudentID plus Status or Value and Type.
type LessonRecord struct {
	TeacherID  int64
	ClassID    int64
	SubjectID  int64
	Date       time.Time
	Topic      string
	Attendance []Attendance
	Grades     []Grade
}

// LessonRecordResult counts the rows a lesson save wrote
type LessonRecordResult struct {
	LessonID          int64
	Created           bool
	AttendanceSaved   int
	AttendanceSkipped int
	GradesSaved       int
}
