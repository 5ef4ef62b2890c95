package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
)

// Search result limits per entity kind
const (
	SearchLimit       = 10
	LiveSearchLimit   = 5
	LiveSearchMinChar = 2
)

// SearchService finds students, teachers and subjects by name
type SearchService interface {
	Search(ctx context.Context, scope *models.Scope, q string) (*dto.SearchResponse, error)
	Live(ctx context.Context, scope *models.Scope, q string) (*dto.SearchResponse, error)
}

type searchServiceImpl struct {
	searchRepo repositories.ISearchRepository
	logger     zerolog.Logger
}

// NewSearchService creates a new SearchService
func NewSearchService(searchRepo repositories.ISearchRepository, logger zerolog.Logger) SearchService {
	return &searchServiceImpl{searchRepo: searchRepo, logger: logger}
}

func emptySearch(q string) *dto.SearchResponse {
	return &dto.SearchResponse{
		Query:    q,
		Students: []dto.SearchStudentResult{},
		Teachers: []dto.SearchTeacherResult{},
		Subjects: []dto.SearchSubjectResult{},
	}
}

// Search runs the full search page query
func (s *searchServiceImpl) Search(ctx context.Context, scope *models.Scope, q string) (*dto.SearchResponse, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return emptySearch(q), nil
	}
	return s.run(ctx, scope, q, SearchLimit)
}

// Live serves type-ahead suggestions; queries shorter than two characters return nothing
func (s *searchServiceImpl) Live(ctx context.Context, scope *models.Scope, q string) (*dto.SearchResponse, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < LiveSearchMinChar {
		return emptySearch(q), nil
	}
	return s.run(ctx, scope, q, LiveSearchLimit)
}

func (s *searchServiceImpl) run(ctx context.Context, scope *models.Scope, q string, limit uint64) (*dto.SearchResponse, error) {
	var (
		students []models.Student
		teachers []models.Teacher
		subjects []models.Subject
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = s.searchRepo.Students(gctx, q, scopeClassIDs(scope), limit)
		return err
	})
	g.Go(func() (err error) {
		teachers, err = s.searchRepo.Teachers(gctx, q, limit)
		return err
	})
	g.Go(func() (err error) {
		subjects, err = s.searchRepo.Subjects(gctx, q, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := emptySearch(q)
	for i := range students {
		st := &students[i]
		resp.Students = append(resp.Students, dto.SearchStudentResult{
			ID: st.ID, Name: st.FullName(), ClassID: st.ClassID, ClassName: st.ClassName,
		})
	}
	for i := range teachers {
		resp.Teachers = append(resp.Teachers, dto.SearchTeacherResult{ID: teachers[i].ID, Name: teachers[i].FullName()})
	}
	for _, sub := range subjects {
		r := dto.SearchSubjectResult{ID: sub.ID, Name: sub.Name}
		if sub.ShortName != nil {
			r.ShortName = *sub.ShortName
		}
		resp.Subjects = append(resp.Subjects, r)
	}
	resp.Total = len(resp.Students) + len(resp.Teachers) + len(resp.Subjects)
	return resp, nil
}
