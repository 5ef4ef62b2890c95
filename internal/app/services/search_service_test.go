package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/repositories"
)

type fakeSearch struct {
	repositories.ISearchRepository
	calls    int
	classIDs []int64
	limit    uint64
}

func (f *fakeSearch) Students(_ context.Context, _ string, classIDs []int64, limit uint64) ([]models.Student, error) {
	f.calls++
	f.classIDs, f.limit = classIDs, limit
	return []models.Student{{ID: 30, FirstName: "Ana", LastName: "Petrova", ClassID: 8, ClassName: "8A"}}, nil
}

func (f *fakeSearch) Teachers(context.Context, string, uint64) ([]models.Teacher, error) {
	return []models.Teacher{{ID: 20, FirstName: "Maria", LastName: "Ivanova"}}, nil
}

func (f *fakeSearch) Subjects(context.Context, string, uint64) ([]models.Subject, error) {
	short := "MATH"
	return []models.Subject{{ID: 1, Name: "Mathematics", ShortName: &short}}, nil
}

func TestSearch(t *testing.T) {
	repo := &fakeSearch{}
	svc := NewSearchService(repo, zerolog.Nop())
	ctx := context.Background()

	resp, err := svc.Search(ctx, teacherScope, " an ")
	require.NoError(t, err)
	assert.Equal(t, "an", resp.Query)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, "Ana Petrova", resp.Students[0].Name)
	assert.Equal(t, "MATH", resp.Subjects[0].ShortName)
	assert.Equal(t, []int64{8}, repo.classIDs)
	assert.Equal(t, uint64(SearchLimit), repo.limit)

	_, err = svc.Live(ctx, adminScope, "an")
	require.NoError(t, err)
	assert.Nil(t, repo.classIDs)
	assert.Equal(t, uint64(LiveSearchLimit), repo.limit)
}

func TestLive_ShortQuery(t *testing.T) {
	repo := &fakeSearch{}
	svc := NewSearchService(repo, zerolog.Nop())

	for _, q := range []string{"", " ", "a", " я "} {
		resp, err := svc.Live(context.Background(), adminScope, q)
		require.NoError(t, err)
		assert.Zero(t, resp.Total)
		assert.NotNil(t, resp.Students)
	}
	assert.Zero(t, repo.calls)
}
