package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

func TestCreateAttendance_DuplicateIsConflict(t *testing.T) {
	repo := &fakeAttendance{byID: map[int64]*models.Attendance{}}
	c := newFakeCache()
	svc := NewAttendanceService(repo, school(), c, zerolog.Nop())
	ctx := context.Background()

	req := &dto.CreateAttendanceRequest{StudentID: 30, SubjectID: 1, Date: "2024-01-10", Status: models.AttendanceAbsent}
	got, err := svc.CreateAttendance(ctx, teacherScope, req)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", got.Date)
	assert.Equal(t, "Absent", got.Status)

	req.Status = models.AttendanceLate
	_, err = svc.CreateAttendance(ctx, teacherScope, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "already recorded")
	assert.Len(t, repo.byID, 1)
	assert.Equal(t, 1, c.invalidated)
}

func TestCreateAttendance_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		scope  *models.Scope
		req    dto.CreateAttendanceRequest
		target error
	}{
		{name: "unknown status", scope: adminScope, req: dto.CreateAttendanceRequest{StudentID: 30, SubjectID: 1, Date: "2024-01-10", Status: "Sick"}, target: apperrors.ErrValidationFailed},
		{name: "bad date", scope: adminScope, req: dto.CreateAttendanceRequest{StudentID: 30, SubjectID: 1, Date: "10.01.2024", Status: models.AttendanceAbsent}, target: apperrors.ErrValidationFailed},
		{name: "teacher outside pair", scope: teacherScope, req: dto.CreateAttendanceRequest{StudentID: 40, SubjectID: 1, Date: "2024-01-10", Status: models.AttendanceAbsent}, target: apperrors.ErrPermissionDenied},
		{name: "student", scope: studentScope, req: dto.CreateAttendanceRequest{StudentID: 30, SubjectID: 1, Date: "2024-01-10", Status: models.AttendanceExcused}, target: apperrors.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAttendanceService(&fakeAttendance{byID: map[int64]*models.Attendance{}}, school(), nil, zerolog.Nop())
			_, err := svc.CreateAttendance(context.Background(), tt.scope, &tt.req)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}
