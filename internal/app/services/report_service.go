package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/gradebook/internal/app/aggregation"
	appauth "github.com/yigit/gradebook/internal/app/auth"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/excel"
	"github.com/yigit/gradebook/internal/pkg/filestorage"
	"github.com/yigit/gradebook/internal/pkg/helpers"
)

const (
	// ReportTopStudents is the length of the ranking in a class report
	ReportTopStudents = 5

	reportKeyPrefix = "reports/"
)

// ReportService builds class performance reports and their spreadsheet exports
type ReportService interface {
	Classes(ctx context.Context, scope *models.Scope) ([]models.Class, error)
	ClassReport(ctx context.Context, scope *models.Scope, classID int64, req *dto.ReportRangeRequest) (*dto.ClassReportResponse, error)
	Export(ctx context.Context, scope *models.Scope, classID int64, req *dto.ReportRangeRequest) (*dto.ExportResponse, error)
	Download(ctx context.Context, scope *models.Scope, key string) (io.ReadCloser, string, error)
	DeleteExport(ctx context.Context, scope *models.Scope, key string) error
}

type reportServiceImpl struct {
	statsRepo   repositories.IStatsRepository
	classRepo   repositories.IClassRepository
	studentRepo repositories.IStudentRepository
	storage     filestorage.Storage
	logger      zerolog.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	statsRepo repositories.IStatsRepository,
	classRepo repositories.IClassRepository,
	studentRepo repositories.IStudentRepository,
	storage filestorage.Storage,
	logger zerolog.Logger,
) ReportService {
	return &reportServiceImpl{
		statsRepo:   statsRepo,
		classRepo:   classRepo,
		studentRepo: studentRepo,
		storage:     storage,
		logger:      logger,
	}
}

func requireStaff(scope *models.Scope) error {
	return appauth.Require(!scope.IsStudent(), "reports are available to staff only")
}

// Classes lists the classes the caller can report on, in natural order
func (s *reportServiceImpl) Classes(ctx context.Context, scope *models.Scope) ([]models.Class, error) {
	if err := requireStaff(scope); err != nil {
		return nil, err
	}
	classes, err := s.classRepo.List(ctx, scopeClassIDs(scope))
	if err != nil {
		return nil, err
	}
	aggregation.SortClasses(classes)
	return classes, nil
}

// ClassReport summarises one class over a date range, defaulting to the last six months
func (s *reportServiceImpl) ClassReport(ctx context.Context, scope *models.Scope, classID int64, req *dto.ReportRangeRequest) (*dto.ClassReportResponse, error) {
	if err := requireStaff(scope); err != nil {
		return nil, err
	}
	if err := appauth.Require(appauth.CanViewClass(scope, classID), "class %d is outside your scope", classID); err != nil {
		return nil, err
	}
	from, to, err := helpers.DateRange(req.From, req.To, timeNow())
	if err != nil {
		return nil, apperrors.NewValidationError("%s", err.Error())
	}
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}

	f := narrow(aggregateFilter(scope), &classID, nil, nil)
	f.From, f.To = &from, &to

	var (
		grades   []models.GradeFact
		att      []models.AttendanceFact
		students int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		grades, err = s.statsRepo.GradeFacts(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		att, err = s.statsRepo.AttendanceFacts(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		students, err = s.studentRepo.Count(gctx, []int64{classID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	subjects := aggregation.SubjectAverages(grades)
	report := &dto.ClassReportResponse{
		ClassID:       class.ID,
		ClassName:     class.Name,
		From:          from.Format(helpers.DateLayout),
		To:            to.Format(helpers.DateLayout),
		Average:       aggregation.Float(aggregation.Average(grades)),
		StudentCount:  int(students),
		TotalAbsences: aggregation.CountStatus(att, models.AttendanceAbsent),
		TopStudents:   dto.ToStudentRanks(aggregation.RankStudents(grades, ReportTopStudents, aggregation.Top)),
		Subjects:      make([]dto.SubjectReportResponse, 0, len(subjects)),
		Absences:      dto.ToNamedCounts(aggregation.AbsencesByStudent(att)),
	}
	for _, st := range subjects {
		values := make([]float64, 0, len(st.Values))
		for _, v := range st.Values {
			values = append(values, aggregation.Float(v))
		}
		report.Subjects = append(report.Subjects, dto.SubjectReportResponse{
			SubjectID: st.SubjectID,
			Name:      st.Name,
			Average:   aggregation.Float(st.Average),
			Count:     st.Count,
			Grades:    values,
		})
	}
	return report, nil
}

// Export renders the class report to a workbook and stores it under reports/
func (s *reportServiceImpl) Export(ctx context.Context, scope *models.Scope, classID int64, req *dto.ReportRangeRequest) (*dto.ExportResponse, error) {
	report, err := s.ClassReport(ctx, scope, classID, req)
	if err != nil {
		return nil, err
	}
	buf, err := excel.BuildClassReport(report)
	if err != nil {
		return nil, err
	}

	name := fileSafe(report.ClassName)
	key := fmt.Sprintf("%s%s-%s.xlsx", reportKeyPrefix, name, uuid.New().String())
	size := int64(buf.Len())
	if err := s.storage.Upload(ctx, key, buf, excel.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	s.logger.Info().Str("key", key).Int64("classID", classID).Int64("size", size).Msg("Class report exported")
	return &dto.ExportResponse{
		Key:      key,
		FileName: name + "-report.xlsx",
		Size:     size,
	}, nil
}

func validReportKey(key string) error {
	if !strings.HasPrefix(key, reportKeyPrefix) || strings.Contains(key, "..") || path.Clean(key) != key {
		return apperrors.NewValidationError("invalid report key")
	}
	return nil
}

// Download opens a stored report and returns it with its file name
func (s *reportServiceImpl) Download(ctx context.Context, scope *models.Scope, key string) (io.ReadCloser, string, error) {
	if err := requireStaff(scope); err != nil {
		return nil, "", err
	}
	if err := validReportKey(key); err != nil {
		return nil, "", err
	}
	rc, err := s.storage.Download(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return rc, path.Base(key), nil
}

// DeleteExport removes a stored report
func (s *reportServiceImpl) DeleteExport(ctx context.Context, scope *models.Scope, key string) error {
	if err := appauth.Require(appauth.CanManage(scope), "only administrators can delete reports"); err != nil {
		return err
	}
	if err := validReportKey(key); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		return err
	}
	s.logger.Info().Str("key", key).Msg("Class report deleted")
	return nil
}

func fileSafe(name string) string {
	out := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, name)
	if out == "" {
		return "class"
	}
	return out
}
