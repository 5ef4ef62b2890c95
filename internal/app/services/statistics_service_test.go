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

func fact(studentID, classID, subjectID int64, value string) models.GradeFact {
	return models.GradeFact{
		StudentID: studentID,
		ClassID:   classID,
		ClassName: "8A",
		SubjectID: subjectID,
		Value:     decimal.RequireFromString(value),
		GradedAt:  time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC),
	}
}

func newStatsFixture() (StatisticsService, *fakeStats, *fakeCache) {
	stats := &fakeStats{grades: []models.GradeFact{
		fact(30, 8, 1, "4.00"),
		fact(30, 8, 1, "5.00"),
		fact(31, 8, 1, "6.00"),
	}}
	classes := &fakeClasses{rows: []models.Class{{ID: 8, Name: "8A"}, {ID: 9, Name: "9A"}}}
	c := newFakeCache()
	return NewStatisticsService(stats, classes, school(), c, zerolog.Nop()), stats, c
}

func TestOverview_CachedPerCaller(t *testing.T) {
	svc, stats, c := newStatsFixture()
	ctx := context.Background()

	first, err := svc.Overview(ctx, adminScope)
	require.NoError(t, err)
	require.NotNil(t, first.Overview)
	calls := len(stats.filters)

	second, err := svc.Overview(ctx, adminScope)
	require.NoError(t, err)
	assert.Equal(t, calls, len(stats.filters), "second read is served from cache")
	assert.Equal(t, first.Overview.TopStudents, second.Overview.TopStudents)

	require.NoError(t, c.Invalidate(ctx))
	_, err = svc.Overview(ctx, adminScope)
	require.NoError(t, err)
	assert.Greater(t, len(stats.filters), calls)
}

func TestOverview_Student(t *testing.T) {
	svc, _, _ := newStatsFixture()
	resp, err := svc.Overview(context.Background(), studentScope)
	require.NoError(t, err)
	require.NotNil(t, resp.Student)
	assert.Nil(t, resp.Overview)
	assert.Equal(t, 2, resp.Student.Position)
	assert.Equal(t, 2, resp.Student.RankedCount)
	require.Len(t, resp.Student.SubjectAverages, 1)
	assert.Equal(t, 4.5, resp.Student.SubjectAverages[0].Average)
}

func TestClassAverage(t *testing.T) {
	svc, stats, _ := newStatsFixture()
	ctx := context.Background()

	got, err := svc.ClassAverage(ctx, teacherScope, 8, &dto.StatsQuery{SubjectID: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Average)
	last := stats.filters[len(stats.filters)-1]
	assert.Equal(t, []int64{8}, last.ClassIDs)
	assert.Equal(t, []int64{1}, last.SubjectIDs)
	assert.Equal(t, teacherScope.Pairs, last.Pairs)

	_, err = svc.ClassAverage(ctx, teacherScope, 9, &dto.StatsQuery{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.ClassAverage(ctx, adminScope, 8, &dto.StatsQuery{From: "2024-02-01", To: "2024-01-01"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestClassAverage_SubjectSet(t *testing.T) {
	tests := []struct {
		name     string
		scope    *models.Scope
		subjects []int64
		want     []int64
	}{
		{name: "admin takes the whole set", scope: adminScope, subjects: []int64{1, 2}, want: []int64{1, 2}},
		{name: "teacher set stays bounded by taught pairs", scope: teacherScope, subjects: []int64{1, 3}, want: []int64{1, 3}},
		{name: "no set leaves scope", scope: adminScope, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, stats, _ := newStatsFixture()
			got, err := svc.ClassAverage(context.Background(), tt.scope, 8, &dto.StatsQuery{SubjectIDs: tt.subjects})
			require.NoError(t, err)
			assert.Equal(t, tt.subjects, got.SubjectIDs)

			last := stats.filters[len(stats.filters)-1]
			assert.Equal(t, tt.want, last.SubjectIDs)
			assert.Equal(t, []int64{8}, last.ClassIDs)
			assert.Equal(t, tt.scope.GradeFilter().Pairs, last.Pairs)
		})
	}
}

func TestRankingsAndPosition(t *testing.T) {
	svc, _, _ := newStatsFixture()
	ctx := context.Background()

	top, err := svc.Rankings(ctx, adminScope, &dto.StatsQuery{})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(31), top[0].StudentID)
	assert.Equal(t, 1, top[0].Rank)

	bottom, err := svc.Rankings(ctx, adminScope, &dto.StatsQuery{Direction: "bottom", Limit: 1})
	require.NoError(t, err)
	require.Len(t, bottom, 1)
	assert.Equal(t, int64(30), bottom[0].StudentID)

	pos, err := svc.Position(ctx, studentScope, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, pos.Position)

	_, err = svc.Position(ctx, studentScope, 31)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
