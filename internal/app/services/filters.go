package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/cache"
	"github.com/yigit/gradebook/internal/pkg/helpers"
)

// timeNow is swapped in tests
var timeNow = time.Now

// narrowIDs intersects an id restriction with one requested id
func narrowIDs(ids []int64, id *int64) []int64 {
	if id == nil {
		return ids
	}
	if ids == nil {
		return []int64{*id}
	}
	for _, v := range ids {
		if v == *id {
			return []int64{*id}
		}
	}
	return []int64{}
}

// narrowIDSet intersects an id restriction with a requested set, keeping the request order.
// A nil request leaves the restriction unchanged.
func narrowIDSet(ids []int64, want []int64) []int64 {
	if want == nil {
		return ids
	}
	out := []int64{}
	for _, id := range want {
		if ids == nil || containsID(ids, id) {
			out = append(out, id)
		}
	}
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// narrow applies optional class, subject and student filters on top of a scope filter
func narrow(f models.FactFilter, classID, subjectID, studentID *int64) models.FactFilter {
	f.ClassIDs = narrowIDs(f.ClassIDs, classID)
	f.SubjectIDs = narrowIDs(f.SubjectIDs, subjectID)
	f.StudentIDs = narrowIDs(f.StudentIDs, studentID)
	return f
}

// aggregateFilter is the fact filter for class-level statistics.
// Students see aggregates over their own class; teachers over their class subjects.
func aggregateFilter(s *models.Scope) models.FactFilter {
	if s.IsStudent() {
		if s.StudentClassID == nil {
			return models.FactFilter{ClassIDs: []int64{}}
		}
		return models.FactFilter{ClassIDs: []int64{*s.StudentClassID}}
	}
	return s.GradeFilter()
}

// scopeClassIDs returns the classes visible to s, nil meaning all
func scopeClassIDs(s *models.Scope) []int64 {
	switch {
	case s.IsAdmin():
		return nil
	case s.IsTeacher():
		if s.ClassIDs == nil {
			return []int64{}
		}
		return s.ClassIDs
	case s.StudentClassID != nil:
		return []int64{*s.StudentClassID}
	}
	return []int64{}
}

// withStatsWindow adds the optional date bounds of a stats query
func withStatsWindow(f models.FactFilter, q *dto.StatsQuery) (models.FactFilter, error) {
	from, err := helpers.ParseDate(q.From)
	if err != nil {
		return f, apperrors.NewValidationError("%s", err.Error())
	}
	to, err := helpers.ParseDate(q.To)
	if err != nil {
		return f, apperrors.NewValidationError("%s", err.Error())
	}
	if to != nil {
		end := helpers.EndOfDay(*to)
		to = &end
	}
	if from != nil && to != nil && from.After(*to) {
		return f, apperrors.NewValidationError("from must not be after to")
	}
	f.From, f.To = from, to
	return f, nil
}

// canViewRecord reports whether a grade or attendance row is visible to s
func canViewRecord(s *models.Scope, classID, subjectID, studentID int64) bool {
	switch {
	case s.IsAdmin():
		return true
	case s.IsTeacher():
		return s.Teaches(classID, subjectID)
	case s.IsStudent():
		return s.StudentID != nil && *s.StudentID == studentID
	}
	return false
}

// invalidateStats drops cached statistics after a write. Failures only cost freshness.
func invalidateStats(ctx context.Context, c cache.Cache, logger zerolog.Logger) {
	if err := c.Invalidate(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate statistics cache")
	}
}
