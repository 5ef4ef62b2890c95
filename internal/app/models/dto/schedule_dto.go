package dto

import "github.com/yigit/gradebook/internal/app/models"

// ScheduleSlotRequest creates or replaces a timetable slot
type ScheduleSlotRequest struct {
	ClassID      int64  `json:"classId" binding:"required,min=1"`
	SubjectID    int64  `json:"subjectId" binding:"required,min=1"`
	DayOfWeek    string `json:"dayOfWeek" binding:"required,weekday" example:"Monday"`
	PeriodNumber int    `json:"periodNumber" binding:"required,min=1,max=12" example:"2"`
	StartTime    string `json:"startTime" binding:"required,datetime=15:04" example:"08:50"`
	EndTime      string `json:"endTime" binding:"required,datetime=15:04" example:"09:30"`
}

// ScheduleFilterRequest narrows the schedule to one class
type ScheduleFilterRequest struct {
	ClassID *int64 `form:"classId" binding:"omitempty,min=1"`
}

// ScheduleDayResponse lists one weekday's slots by period
type ScheduleDayResponse struct {
	Day   string               `json:"day" example:"Monday"`
	Slots []models.ScheduleSlot `json:"slots"`
}

// ScheduleResponse is a weekly timetable
type ScheduleResponse struct {
	Days []ScheduleDayResponse `json:"days"`
}

// TeacherConflictResponse flags a teacher booked into several classes in the same period
type TeacherConflictResponse struct {
	TeacherID    int64                `json:"teacherId"`
	TeacherName  string               `json:"teacherName"`
	DayOfWeek    string               `json:"dayOfWeek"`
	PeriodNumber int                  `json:"periodNumber"`
	Slots        []models.ScheduleSlot `json:"slots"`
}

// SaveSlotResponse returns the stored slot with any double-booking warnings
type SaveSlotResponse struct {
	Slot      models.ScheduleSlot       `json:"slot"`
	Conflicts []TeacherConflictResponse `json:"conflicts"`
}

// GroupByDay arranges slots into Monday..Friday buckets, keeping the input order within a day
func GroupByDay(slots []models.ScheduleSlot) ScheduleResponse {
	days := make([]ScheduleDayResponse, len(models.Weekdays))
	for i, d := range models.Weekdays {
		days[i] = ScheduleDayResponse{Day: d, Slots: []models.ScheduleSlot{}}
	}
	for _, s := range slots {
		if i := models.WeekdayIndex(s.DayOfWeek); i >= 0 {
			days[i].Slots = append(days[i].Slots, s)
		}
	}
	return ScheduleResponse{Days: days}
}
