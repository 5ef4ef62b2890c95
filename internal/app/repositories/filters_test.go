package repositories

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/gradebook/internal/app/models"
)

func TestApplyFactFilter(t *testing.T) {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filter   models.FactFilter
		contains []string
		absent   []string
		args     int
	}{
		{
			name:   "unrestricted",
			filter: models.FactFilter{},
			absent: []string{"WHERE"},
		},
		{
			name:     "classes and subjects",
			filter:   models.FactFilter{ClassIDs: []int64{1, 2}, SubjectIDs: []int64{3}},
			contains: []string{"s.class_id IN ($1,$2)", "g.subject_id IN ($3)"},
			args:     3,
		},
		{
			name:     "teacher pairs",
			filter:   models.FactFilter{Pairs: []models.ClassSubjectPair{{ClassID: 1, SubjectID: 2}, {ClassID: 4, SubjectID: 5}}},
			contains: []string{" OR ", "g.subject_id = $", "s.class_id = $"},
			args:     4,
		},
		{
			name:     "student and window",
			filter:   models.FactFilter{StudentIDs: []int64{7}, From: &from},
			contains: []string{"g.student_id IN ($1)", "g.graded_at >= $2"},
			args:     2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := applyFactFilter(sb.Select("g.id").From("grades g"), tt.filter, gradeColumns).ToSql()
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, query, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, query, s)
			}
			assert.Len(t, args, tt.args)
		})
	}
}

func TestIDFilter(t *testing.T) {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, _, err := idFilter(sb.Select("id").From("classes"), "id", nil).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM classes", query)

	query, args, err := idFilter(sb.Select("id").From("classes"), "id", []int64{4}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM classes WHERE id IN ($1)", query)
	assert.Equal(t, []interface{}{int64(4)}, args)
}

func TestDayGradesQuery_BoundsByLocalDay(t *testing.T) {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sofia := time.FixedZone("EET", 2*60*60)
	savedAt := time.Date(2024, time.January, 10, 0, 30, 0, 0, sofia)

	query, args, err := dayGradesQuery(sb, 8, 1, savedAt).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, query, "::date")
	assert.Contains(t, query, "g.graded_at >= $")
	assert.Contains(t, query, "g.graded_at <= $")
	require.Len(t, args, 4)

	start, end := args[2].(time.Time), args[3].(time.Time)
	assert.Equal(t, time.Date(2024, time.January, 10, 0, 0, 0, 0, sofia), start)
	assert.True(t, end.After(savedAt))
	assert.True(t, end.Before(time.Date(2024, time.January, 11, 0, 0, 0, 0, sofia)))
	// the saved instant is still the 9th in UTC; the bounds keep it on the 10th
	assert.False(t, savedAt.Before(start))
}

func TestContactsQuery_UnreadAndOrder(t *testing.T) {
	// unread per contact counts only incoming messages from that contact, so the sum equals UnreadCount
	assert.Contains(t, contactsQuery, "m.receiver_id = $1 AND m.sender_id = conv.other_id AND NOT m.is_read")
	assert.Contains(t, contactsQuery, "WHERE conv.rn = 1")
	assert.Contains(t, contactsQuery, "ORDER BY conv.sent_at DESC, conv.id DESC")
}
