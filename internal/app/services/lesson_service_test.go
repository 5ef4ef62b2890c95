package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

func withClock(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}

func newLessonFixture() (LessonService, *fakeLessons, *fakeCache) {
	lessons := &fakeLessons{}
	c := newFakeCache()
	svc := NewLessonService(lessons, &fakeSchedule{}, &fakeClasses{}, nil, school(), c, zerolog.Nop())
	return svc, lessons, c
}

func TestSaveLesson(t *testing.T) {
	withClock(t, time.Date(2024, time.January, 10, 11, 30, 0, 0, time.Local))
	svc, lessons, c := newLessonFixture()

	resp, err := svc.Save(context.Background(), teacherScope, &dto.SaveLessonRequest{
		ClassID:   8,
		SubjectID: 1,
		Topic:     "  Fractions ",
		Attendance: []dto.LessonAttendanceInput{
			{StudentID: 30, Status: models.AttendanceAbsent},
			{StudentID: 31, Status: models.AttendanceLate},
		},
		Grades: []dto.LessonGradeInput{
			{StudentID: 31, Value: decimal.NewFromInt(5)},
			{StudentID: 30, Value: decimal.Zero},
			{StudentID: 31, Value: decimal.RequireFromString("3.50"), Type: "Test"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.LessonID)
	assert.True(t, resp.Created)
	assert.Equal(t, 2, resp.AttendanceSaved)
	assert.Equal(t, 2, resp.GradesSaved)
	assert.Equal(t, 1, c.invalidated)

	require.Len(t, lessons.saved, 1)
	rec := lessons.saved[0]
	assert.Equal(t, int64(20), rec.TeacherID)
	assert.Equal(t, "Fractions", rec.Topic)
	assert.Equal(t, time.Date(2024, time.January, 10, 0, 0, 0, 0, time.Local), rec.Date)
	require.Len(t, rec.Grades, 2, "zero grades are ignored")
	assert.Equal(t, models.DefaultGradeType, rec.Grades[0].Type)
	assert.Equal(t, "Test", rec.Grades[1].Type)
	for _, g := range rec.Grades {
		assert.Equal(t, time.Date(2024, time.January, 10, 11, 30, 0, 0, time.Local), g.GradedAt, "grades carry the save time")
	}
}

func TestSaveLesson_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		scope  *models.Scope
		req    dto.SaveLessonRequest
		target error
	}{
		{name: "admin is not a teacher", scope: adminScope, req: dto.SaveLessonRequest{ClassID: 8, SubjectID: 1}, target: apperrors.ErrPermissionDenied},
		{name: "unassigned pair", scope: teacherScope, req: dto.SaveLessonRequest{ClassID: 9, SubjectID: 1}, target: apperrors.ErrPermissionDenied},
		{
			name:   "excused is not a lesson status",
			scope:  teacherScope,
			req:    dto.SaveLessonRequest{ClassID: 8, SubjectID: 1, Attendance: []dto.LessonAttendanceInput{{StudentID: 30, Status: models.AttendanceExcused}}},
			target: apperrors.ErrValidationFailed,
		},
		{
			name:   "student from another class",
			scope:  teacherScope,
			req:    dto.SaveLessonRequest{ClassID: 8, SubjectID: 1, Attendance: []dto.LessonAttendanceInput{{StudentID: 40, Status: models.AttendanceAbsent}}},
			target: apperrors.ErrValidationFailed,
		},
		{
			name:   "grade off scale",
			scope:  teacherScope,
			req:    dto.SaveLessonRequest{ClassID: 8, SubjectID: 1, Grades: []dto.LessonGradeInput{{StudentID: 30, Value: decimal.NewFromInt(7)}}},
			target: apperrors.ErrValidationFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, lessons, _ := newLessonFixture()
			_, err := svc.Save(context.Background(), tt.scope, &tt.req)
			assert.ErrorIs(t, err, tt.target)
			assert.Empty(t, lessons.saved)
		})
	}
}

func TestLessonHistory_TeachersOnly(t *testing.T) {
	svc, _, _ := newLessonFixture()
	_, err := svc.History(context.Background(), studentScope, &dto.LessonHistoryRequest{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
