package models

import "time"

// Class is a cohort of students sharing grade level and section, e.g. "8A"
type Class struct {
	ID   int64  `json:"id" db:"id" example:"1"`
	Name string `json:"name" db:"name" example:"8A"`
}

// Subject is a taught discipline
type Subject struct {
	ID        int64   `json:"id" db:"id" example:"3"`
	Name      string  `json:"name" db:"name" example:"Mathematics"`
	ShortName *string `json:"shortName,omitempty" db:"short_name" example:"MATH"`
}

// Teacher defines the teacher model based on the 'teachers' table
type Teacher struct {
	ID        int64  `json:"id" db:"id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	UserID    *int64 `json:"userId,omitempty" db:"user_id"`
}

// FullName returns "First Last"
func (t *Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// Student defines the student model based on the 'students' table
type Student struct {
	ID        int64  `json:"id" db:"id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	ClassID   int64  `json:"classId" db:"class_id"`
	ClassName string `json:"className,omitempty" db:"-"`
}

// FullName returns "First Last"
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// ClassSubject links a class, a subject and the teacher delivering it
type ClassSubject struct {
	ID          int64   `json:"id" db:"id"`
	ClassID     int64   `json:"classId" db:"class_id"`
	SubjectID   int64   `json:"subjectId" db:"subject_id"`
	TeacherID   *int64  `json:"teacherId,omitempty" db:"teacher_id"`
	ClassName   string  `json:"className,omitempty" db:"-"`
	SubjectName string  `json:"subjectName,omitempty" db:"-"`
	TeacherName *string `json:"teacherName,omitempty" db:"-"`
}

// ScheduleSlot is a recurring weekly timetable entry
type ScheduleSlot struct {
	ID           int64  `json:"id" db:"id"`
	ClassID      int64  `json:"classId" db:"class_id"`
	SubjectID    int64  `json:"subjectId" db:"subject_id"`
	DayOfWeek    string `json:"dayOfWeek" db:"day_of_week" example:"Monday"`
	PeriodNumber int    `json:"periodNumber" db:"period_number" example:"1"`
	StartTime    string `json:"startTime" db:"start_time" example:"08:00"`
	EndTime      string `json:"endTime" db:"end_time" example:"08:40"`
	ClassName    string `json:"className,omitempty" db:"-"`
	SubjectName  string `json:"subjectName,omitempty" db:"-"`
}

// Lesson records that a teacher delivered a subject to a class on a date
type Lesson struct {
	ID          int64     `json:"id" db:"id"`
	ClassID     int64     `json:"classId" db:"class_id"`
	SubjectID   int64     `json:"subjectId" db:"subject_id"`
	TeacherID   int64     `json:"teacherId" db:"teacher_id"`
	LessonDate  time.Time `json:"lessonDate" db:"lesson_date"`
	Topic       string    `json:"topic" db:"topic"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	ClassName   string    `json:"className,omitempty" db:"-"`
	SubjectName string    `json:"subjectName,omitempty" db:"-"`
}

// LessonSummary is a lesson with the grades and attendance rows recorded on its day
type LessonSummary struct {
	Lesson
	GradeCount      int
	AttendanceCount int
}

// TeacherSlot is a timetable slot attributed to the teacher of its class subject
type TeacherSlot struct {
	TeacherID   int64
	TeacherName string
	Slot        ScheduleSlot
}
