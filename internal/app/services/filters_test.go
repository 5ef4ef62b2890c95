package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
)

func TestNarrowIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		id   *int64
		want []int64
	}{
		{name: "no request keeps scope", ids: []int64{1, 2}, want: []int64{1, 2}},
		{name: "unrestricted takes request", id: ptr(5), want: []int64{5}},
		{name: "inside scope", ids: []int64{1, 2}, id: ptr(2), want: []int64{2}},
		{name: "outside scope matches nothing", ids: []int64{1, 2}, id: ptr(3), want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, narrowIDs(tt.ids, tt.id))
		})
	}
	assert.Nil(t, narrowIDs(nil, nil))
}

func TestAggregateFilter(t *testing.T) {
	assert.Equal(t, models.FactFilter{}, aggregateFilter(adminScope))
	assert.Equal(t, []int64{8}, aggregateFilter(studentScope).ClassIDs)
	assert.Equal(t, teacherScope.Pairs, aggregateFilter(teacherScope).Pairs)

	unlinked := &models.Scope{Role: models.RoleStudent, UserID: 9}
	assert.True(t, aggregateFilter(unlinked).MatchesNothing())
}

func TestScopeClassIDs(t *testing.T) {
	assert.Nil(t, scopeClassIDs(adminScope))
	assert.Equal(t, []int64{8}, scopeClassIDs(teacherScope))
	assert.Equal(t, []int64{8}, scopeClassIDs(studentScope))
	assert.Equal(t, []int64{}, scopeClassIDs(&models.Scope{Role: models.RoleTeacher}))
}

func TestWithStatsWindow(t *testing.T) {
	f, err := withStatsWindow(models.FactFilter{}, &dto.StatsQuery{From: "2024-01-01", To: "2024-01-31"})
	require.NoError(t, err)
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)
	assert.Equal(t, time.January, f.To.Month())
	assert.Equal(t, 23, f.To.Hour(), "upper bound covers the whole day")

	f, err = withStatsWindow(models.FactFilter{}, &dto.StatsQuery{})
	require.NoError(t, err)
	assert.Nil(t, f.From)
	assert.Nil(t, f.To)

	_, err = withStatsWindow(models.FactFilter{}, &dto.StatsQuery{From: "2024-13-01"})
	assert.Error(t, err)
}

func TestCanViewRecord(t *testing.T) {
	assert.True(t, canViewRecord(adminScope, 9, 3, 40))
	assert.True(t, canViewRecord(teacherScope, 8, 1, 31))
	assert.False(t, canViewRecord(teacherScope, 8, 2, 31))
	assert.True(t, canViewRecord(studentScope, 8, 2, 30))
	assert.False(t, canViewRecord(studentScope, 8, 1, 31))
}

func TestNarrowIDSet(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		want []int64
		out  []int64
	}{
		{name: "no request keeps scope", ids: []int64{1, 2}, out: []int64{1, 2}},
		{name: "unrestricted takes request", want: []int64{3, 1}, out: []int64{3, 1}},
		{name: "intersects with scope", ids: []int64{1, 2}, want: []int64{2, 3, 1}, out: []int64{2, 1}},
		{name: "disjoint matches nothing", ids: []int64{1}, want: []int64{4}, out: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, narrowIDSet(tt.ids, tt.want))
		})
	}
}

func TestStatsQuery_Subjects(t *testing.T) {
	assert.Nil(t, (&dto.StatsQuery{}).Subjects())
	assert.Equal(t, []int64{2}, (&dto.StatsQuery{SubjectID: ptr(2)}).Subjects())
	assert.Equal(t, []int64{2, 1, 3}, (&dto.StatsQuery{SubjectID: ptr(2), SubjectIDs: []int64{1, 2, 3}}).Subjects())
}
