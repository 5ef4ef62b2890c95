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

// cascadingStudents deletes a student's grade facts with the student, as the schema does
type cascadingStudents struct {
	*fakeStudents
	stats *fakeStats
}

func (f *cascadingStudents) Create(_ context.Context, st *models.Student) error {
	st.ID = int64(len(f.byID) + 100)
	cp := *st
	f.byID[st.ID] = &cp
	return nil
}

func (f *cascadingStudents) Update(_ context.Context, st *models.Student) error {
	if _, ok := f.byID[st.ID]; !ok {
		return apperrors.NewResourceNotFoundError("student not found")
	}
	cp := *st
	f.byID[st.ID] = &cp
	return nil
}

func (f *cascadingStudents) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return apperrors.NewResourceNotFoundError("student not found")
	}
	delete(f.byID, id)
	kept := f.stats.grades[:0]
	for _, g := range f.stats.grades {
		if g.StudentID != id {
			kept = append(kept, g)
		}
	}
	f.stats.grades = kept
	return nil
}

type fakeClassSubjects struct {
	byID map[int64]*models.ClassSubject
}

func (f *fakeClassSubjects) List(context.Context, *int64) ([]models.ClassSubject, error) {
	out := []models.ClassSubject{}
	for _, cs := range f.byID {
		out = append(out, *cs)
	}
	return out, nil
}

func (f *fakeClassSubjects) GetByID(_ context.Context, id int64) (*models.ClassSubject, error) {
	if cs, ok := f.byID[id]; ok {
		cp := *cs
		return &cp, nil
	}
	return nil, apperrors.NewResourceNotFoundError("class subject not found")
}

func (f *fakeClassSubjects) Find(_ context.Context, classID, subjectID int64) (*models.ClassSubject, error) {
	for _, cs := range f.byID {
		if cs.ClassID == classID && cs.SubjectID == subjectID {
			cp := *cs
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("class subject not found")
}

func (f *fakeClassSubjects) Create(_ context.Context, cs *models.ClassSubject) error {
	cs.ID = int64(len(f.byID) + 1)
	cp := *cs
	f.byID[cs.ID] = &cp
	return nil
}

func (f *fakeClassSubjects) Update(_ context.Context, cs *models.ClassSubject) error {
	cp := *cs
	f.byID[cs.ID] = &cp
	return nil
}

func (f *fakeClassSubjects) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return apperrors.NewResourceNotFoundError("class subject not found")
	}
	delete(f.byID, id)
	return nil
}

type rosterFixture struct {
	roster RosterService
	stats  StatisticsService
	facts  *fakeStats
	cache  *fakeCache
}

func newRosterFixture() *rosterFixture {
	facts := &fakeStats{grades: []models.GradeFact{
		fact(30, 8, 1, "4.00"),
		fact(31, 8, 1, "6.00"),
	}}
	students := &cascadingStudents{fakeStudents: school(), stats: facts}
	classes := &fakeClasses{rows: []models.Class{{ID: 8, Name: "8A"}}}
	assignments := &fakeClassSubjects{byID: map[int64]*models.ClassSubject{
		1: {ID: 1, ClassID: 8, SubjectID: 1, TeacherID: ptr(20)},
	}}
	c := newFakeCache()

	return &rosterFixture{
		roster: NewRosterService(classes, nil, nil, students, assignments, c, zerolog.Nop()),
		stats:  NewStatisticsService(facts, classes, students, c, zerolog.Nop()),
		facts:  facts,
		cache:  c,
	}
}

func topStudentIDs(resp *dto.StatisticsResponse) []int64 {
	ids := []int64{}
	for _, r := range resp.Overview.TopStudents {
		ids = append(ids, r.StudentID)
	}
	return ids
}

func TestRoster_DeleteStudentRefreshesStatistics(t *testing.T) {
	f := newRosterFixture()
	ctx := context.Background()

	before, err := f.stats.Overview(ctx, adminScope)
	require.NoError(t, err)
	assert.Equal(t, []int64{31, 30}, topStudentIDs(before))

	require.NoError(t, f.roster.DeleteStudent(ctx, adminScope, 31))
	assert.Equal(t, 1, f.cache.invalidated)

	after, err := f.stats.Overview(ctx, adminScope)
	require.NoError(t, err)
	assert.Equal(t, []int64{30}, topStudentIDs(after))
}

func TestRoster_WritesInvalidateStatistics(t *testing.T) {
	tests := []struct {
		name  string
		write func(ctx context.Context, r RosterService) error
	}{
		{
			name: "create student",
			write: func(ctx context.Context, r RosterService) error {
				_, err := r.CreateStudent(ctx, adminScope, &dto.StudentRequest{FirstName: "Dimitar", LastName: "Georgiev", ClassID: 8})
				return err
			},
		},
		{
			name: "move student to another class",
			write: func(ctx context.Context, r RosterService) error {
				_, err := r.UpdateStudent(ctx, adminScope, 30, &dto.StudentRequest{FirstName: "Ana", LastName: "Petrova", ClassID: 9})
				return err
			},
		},
		{
			name: "delete student",
			write: func(ctx context.Context, r RosterService) error {
				return r.DeleteStudent(ctx, adminScope, 40)
			},
		},
		{
			name: "assign subject",
			write: func(ctx context.Context, r RosterService) error {
				_, err := r.CreateClassSubject(ctx, adminScope, &dto.ClassSubjectRequest{ClassID: 9, SubjectID: 1, TeacherID: ptr(20)})
				return err
			},
		},
		{
			name: "reassign teacher",
			write: func(ctx context.Context, r RosterService) error {
				_, err := r.UpdateClassSubject(ctx, adminScope, 1, &dto.ClassSubjectRequest{ClassID: 8, SubjectID: 1, TeacherID: ptr(21)})
				return err
			},
		},
		{
			name: "remove assignment",
			write: func(ctx context.Context, r RosterService) error {
				return r.DeleteClassSubject(ctx, adminScope, 1)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRosterFixture()
			require.NoError(t, tt.write(context.Background(), f.roster))
			assert.Equal(t, 1, f.cache.invalidated)
		})
	}
}

func TestRoster_FailedWritesKeepCache(t *testing.T) {
	f := newRosterFixture()
	ctx := context.Background()

	err := f.roster.DeleteStudent(ctx, teacherScope, 30)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	err = f.roster.DeleteStudent(ctx, adminScope, 999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	err = f.roster.DeleteClassSubject(ctx, adminScope, 999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	assert.Zero(t, f.cache.invalidated)
}

// invalidatingStats invalidates the cache while facts are being loaded
type invalidatingStats struct {
	*fakeStats
	cache *fakeCache
	once  bool
}

func (f *invalidatingStats) GradeFacts(ctx context.Context, flt models.FactFilter) ([]models.GradeFact, error) {
	if !f.once {
		f.once = true
		_ = f.cache.Invalidate(ctx)
	}
	return f.fakeStats.GradeFacts(ctx, flt)
}

func TestOverview_WriteDuringComputationIsNotCached(t *testing.T) {
	c := newFakeCache()
	facts := &fakeStats{grades: []models.GradeFact{fact(30, 8, 1, "5.00")}}
	stats := &invalidatingStats{fakeStats: facts, cache: c}
	classes := &fakeClasses{rows: []models.Class{{ID: 8, Name: "8A"}}}
	svc := NewStatisticsService(stats, classes, school(), c, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Overview(ctx, adminScope)
	require.NoError(t, err)
	calls := len(facts.filters)

	_, err = svc.Overview(ctx, adminScope)
	require.NoError(t, err)
	assert.Greater(t, len(facts.filters), calls, "a result computed across an invalidation is recomputed")

	calls = len(facts.filters)
	_, err = svc.Overview(ctx, adminScope)
	require.NoError(t, err)
	assert.Equal(t, calls, len(facts.filters), "the clean recomputation is cached")
}
