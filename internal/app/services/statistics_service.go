package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/gradebook/internal/app/aggregation"
	appauth "github.com/yigit/gradebook/internal/app/auth"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/cache"
)

// OverviewRankLimit is the size of the top and bottom lists in overviews
const OverviewRankLimit = 10

// StatisticsService exposes role-scoped aggregations
type StatisticsService interface {
	Overview(ctx context.Context, scope *models.Scope) (*dto.StatisticsResponse, error)
	ClassAverage(ctx context.Context, scope *models.Scope, classID int64, q *dto.StatsQuery) (*dto.ClassAverageResponse, error)
	Rankings(ctx context.Context, scope *models.Scope, q *dto.StatsQuery) ([]dto.StudentRankResponse, error)
	Position(ctx context.Context, scope *models.Scope, studentID int64) (*dto.PositionResponse, error)
	Series(ctx context.Context, scope *models.Scope, q *dto.StatsQuery) ([]dto.MonthPointResponse, error)
	Absences(ctx context.Context, scope *models.Scope, q *dto.StatsQuery) (*dto.AbsenceStatsResponse, error)
	SubjectAverages(ctx context.Context, scope *models.Scope, q *dto.StatsQuery) ([]dto.SubjectAverageResponse, error)
}

type statisticsServiceImpl struct {
	statsRepo   repositories.IStatsRepository
	classRepo   repositories.IClassRepository
	studentRepo repositories.IStudentRepository
	cache       cache.Cache
	logger      zerolog.Logger
}

// NewStatisticsService creates a new StatisticsService
func NewStatisticsService(
	statsRepo repositories.IStatsRepository,
	classRepo repositories.IClassRepository,
	studentRepo repositories.IStudentRepository,
	c cache.Cache,
	logger zerolog.Logger,
) StatisticsService {
	if c == nil {
		c = cache.Noop{}
	}
	return &statisticsServiceImpl{
		statsRepo:   statsRepo,
		classRepo:   classRepo,
		studentRepo: studentRepo,
		cache:       c,
		logger:      logger,
	}
}

// Overview returns the statistics view of the caller's role, cached per caller
func (s *statisticsServiceImpl) Overview(ctx context.Context, scope *models.Scope) (*dto.StatisticsResponse, error) {
	key := fmt.Sprintf("overview:%s:%d", scope.Role, scope.UserID)

	// A write during the computation bumps the generation, so the result below is stored out of reach
	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		s.logger.Warn().Err(genErr).Msg("Statistics cache generation lookup failed")
	} else {
		var cached dto.StatisticsResponse
		hit, err := s.cache.Get(ctx, gen, key, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Statistics cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	var err error
	resp := &dto.StatisticsResponse{Role: string(scope.Role)}
	if scope.IsStudent() {
		resp.Student, err = s.studentStats(ctx, scope)
	} else {
		resp.Overview, err = s.overview(ctx, scope)
	}
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		if err := s.cache.Set(ctx, gen, key, resp); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Statistics cache write failed")
		}
	}
	return resp, nil
}

func (s *statisticsServiceImpl) overview(ctx context.Context, scope *models.Scope) (*dto.OverviewStatsResponse, error) {
	filter := scope.GradeFilter()

	var (
		grades  []models.GradeFact
		att     []models.AttendanceFact
		classes []models.Class
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		grades, err = s.statsRepo.GradeFacts(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		att, err = s.statsRepo.AttendanceFacts(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		classes, err = s.classRepo.List(gctx, scopeClassIDs(scope))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	aggregation.SortClasses(classes)

	return &dto.OverviewStatsResponse{
		ClassAverages:   dto.ToNamedAverages(aggregation.ClassAverages(grades, classes)),
		SubjectAverages: dto.ToSubjectAverages(aggregation.SubjectAverages(grades)),
		TopStudents:     dto.ToStudentRanks(aggregation.RankStudents(grades, OverviewRankLimit, aggregation.Top)),
		BottomStudents:  dto.ToStudentRanks(aggregation.RankStudents(grades, OverviewRankLimit, aggregation.Bottom)),
		AbsencesByClass: dto.ToNamedCounts(aggregation.AbsencesByClass(att, classes)),
		MonthlyAverages: dto.ToMonthPoints(aggregation.MonthlySeries(grades, aggregation.DefaultSeriesLength)),
	}, nil
}

func (s *statisticsServiceImpl) studentStats(ctx context.Context, scope *models.Scope) (*dto.StudentStatsResponse, error) {
	if scope.StudentID == nil {
		return &dto.StudentStatsResponse{
			SubjectAverages:   []dto.SubjectAverageResponse{},
			MonthlyAverages:   []dto.MonthPointResponse{},
			AbsencesBySubject: []dto.NamedCountResponse{},
		}, nil
	}

	student, err := s.studentRepo.GetByID(ctx, *scope.StudentID)
	if err != nil {
		return nil, err
	}
	own := models.FactFilter{StudentIDs: []int64{student.ID}}

	var (
		classFacts []models.GradeFact
		att        []models.AttendanceFact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		classFacts, err = s.statsRepo.GradeFacts(gctx, models.FactFilter{ClassIDs: []int64{student.ClassID}})
		return err
	})
	g.Go(func() (err error) {
		att, err = s.statsRepo.AttendanceFacts(gctx, own)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mine := aggregation.Filter(classFacts, aggregation.GradeFilter{StudentID: student.ID})
	pos := aggregation.ClassPosition(classFacts, student.ID, student.ClassID)
	return &dto.StudentStatsResponse{
		StudentID:         student.ID,
		ClassName:         student.ClassName,
		SubjectAverages:   dto.ToSubjectAverages(aggregation.SubjectAverages(mine)),
		MonthlyAverages:   dto.ToMonthPoints(aggregation.MonthlySeries(mine, 0)),
		Position:          pos.Position,
		RankedCount:       pos.RankedCount,
		AbsencesBySubject: dto.ToNamedCounts(aggregation.AbsencesBySubject(att)),
	}, nil
}

func (s *statisticsServiceImpl) gradeFacts(ctx context.Context, scope *models.Scope, q *dto.StatsQuery, classID *int64) ([]models.GradeFact, error) {
	f, err := withStatsWindow(statsFilter(scope, q, classID), q)
	if err != nil {
		return nil, err
	}
	return s.statsRepo.GradeFacts(ctx, f)
}

// statsFilter narrows the caller's aggregate scope to a class and a set of subjects
func statsFilter(scope *models.Scope, q *dto.StatsQuery, classID *int64) models.FactFilter {
	f := narrow(aggregateFilter(scope), classID, nil, nil)
	f.SubjectIDs = narrowIDSet(f.SubjectIDs, q.Subjects())
	return f
}

// ClassAverage is the mean grade of one class, optionally over a set of subjects
func (s *statisticsServiceImpl) ClassAverage(ctx context.Context, scope *models.Scope, classID int64, q *dto.StatsQuery) (*dto.ClassAverageResponse, error) {
	if err := appauth.Require(appauth.CanViewClass(scope, classID), "class %d is outside your scope", classID); err != nil {
		return nil, err
	}
	if _, err := s.classRepo.GetByID(ctx, classID); err != nil {
		return nil, err
	}
	facts, err := s.gradeFacts(ctx, scope, q, &classID)
	if err != nil {
		return nil, err
	}
	return &dto.ClassAverageResponse{
		ClassID:    classID,
		SubjectIDs: q.Subjects(),
		Average:    aggregation.Float(aggregation.Average(facts)),
	}, nil
}

// Rankings orders students in scope by average grade
func (s *statisticsServiceImpl) Rankings(ctx context.Context, scope *models.Scope, q *dto.StatsQuery) ([]dto.StudentRankResponse, error) {
	facts, err := s.gradeFacts(ctx, scope, q, q.ClassID)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = OverviewRankLimit
	}
	return dto.ToStudentRanks(aggregation.RankStudents(facts, limit, aggregation.ParseDirection(q.Direction))), nil
}

// Position ranks a student within their class
func (s *statisticsServiceImpl) Position(ctx context.Context, scope *models.Scope, studentID int64) (*dto.PositionResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := appauth.Require(appauth.CanViewStudent(scope, student), "student %d is outside your scope", studentID); err != nil {
		return nil, err
	}

	facts, err := s.statsRepo.GradeFacts(ctx, models.FactFilter{ClassIDs: []int64{student.ClassID}})
	if err != nil {
		return nil, err
	}
	pos := aggregation.ClassPosition(facts, student.ID, student.ClassID)
	return &dto.PositionResponse{
		StudentID:   student.ID,
		ClassID:     student.ClassID,
		Position:    pos.Position,
		RankedCount: pos.RankedCount,
	}, nil
}

// Series averages grades in scope per month
func (s *statisticsServiceImpl) Series(ctx context.Context, scope *models.Scope, q *dto.StatsQuery) ([]dto.MonthPointResponse, error) {
	facts, err := s.gradeFacts(ctx, scope, q, q.ClassID)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = aggregation.DefaultSeriesLength
	}
	return dto.ToMonthPoints(aggregation.MonthlySeries(facts, limit)), nil
}

// Absences counts absences in scope per class and per subject
func (s *statisticsServiceImpl) Absences(ctx context.Context, scope *models.Scope, q *dto.StatsQuery) (*dto.AbsenceStatsResponse, error) {
	f, err := withStatsWindow(statsFilter(scope, q, q.ClassID), q)
	if err != nil {
		return nil, err
	}
	att, err := s.statsRepo.AttendanceFacts(ctx, f)
	if err != nil {
		return nil, err
	}
	classes, err := s.classRepo.List(ctx, narrowIDs(scopeClassIDs(scope), q.ClassID))
	if err != nil {
		return nil, err
	}
	aggregation.SortClasses(classes)

	return &dto.AbsenceStatsResponse{
		ByClass:   dto.ToNamedCounts(aggregation.AbsencesByClass(att, classes)),
		BySubject: dto.ToNamedCounts(aggregation.AbsencesBySubject(att)),
	}, nil
}

// SubjectAverages summarises grades in scope per subject
func (s *statisticsServiceImpl) SubjectAverages(ctx context.Context, scope *models.Scope, q *dto.StatsQuery) ([]dto.SubjectAverageResponse, error) {
	facts, err := s.gradeFacts(ctx, scope, q, q.ClassID)
	if err != nil {
		return nil, err
	}
	return dto.ToSubjectAverages(aggregation.SubjectAverages(facts)), nil
}
