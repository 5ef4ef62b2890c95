package services

import (
	"context"

	"github.com/rs/zerolog"

	appauth "github.com/yigit/gradebook/internal/app/auth"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/cache"
	"github.com/yigit/gradebook/internal/pkg/helpers"
)

// AttendanceService defines the interface for attendance operations
type AttendanceService interface {
	ListAttendance(ctx context.Context, scope *models.Scope, req *dto.AttendanceFilterRequest) (*dto.AttendanceListResponse, error)
	GetAttendance(ctx context.Context, scope *models.Scope, id int64) (*dto.AttendanceResponse, error)
	CreateAttendance(ctx context.Context, scope *models.Scope, req *dto.CreateAttendanceRequest) (*dto.AttendanceResponse, error)
	UpdateAttendance(ctx context.Context, scope *models.Scope, id int64, req *dto.UpdateAttendanceRequest) (*dto.AttendanceResponse, error)
	DeleteAttendance(ctx context.Context, scope *models.Scope, id int64) error
}

type attendanceServiceImpl struct {
	attendanceRepo repositories.IAttendanceRepository
	studentRepo    repositories.IStudentRepository
	cache          cache.Cache
	logger         zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(
	attendanceRepo repositories.IAttendanceRepository,
	studentRepo repositories.IStudentRepository,
	c cache.Cache,
	logger zerolog.Logger,
) AttendanceService {
	if c == nil {
		c = cache.Noop{}
	}
	return &attendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		studentRepo:    studentRepo,
		cache:          c,
		logger:         logger,
	}
}

// ListAttendance returns one page of attendance rows visible to the caller, newest first
func (s *attendanceServiceImpl) ListAttendance(ctx context.Context, scope *models.Scope, req *dto.AttendanceFilterRequest) (*dto.AttendanceListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(req.Page, req.PageSize)
	rows, total, err := s.attendanceRepo.List(ctx, repositories.AttendanceQuery{
		Scope:  narrow(scope.GradeFilter(), req.ClassID, req.SubjectID, req.StudentID),
		Status: models.AttendanceStatus(req.Status),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return &dto.AttendanceListResponse{
		Attendances:    dto.ToAttendanceResponses(rows),
		PaginationInfo: helpers.NewPaginationInfo(total, req.Page, req.PageSize),
	}, nil
}

// GetAttendance returns a single attendance row
func (s *attendanceServiceImpl) GetAttendance(ctx context.Context, scope *models.Scope, id int64) (*dto.AttendanceResponse, error) {
	a, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewRecord(scope, a.ClassID, a.SubjectID, a.StudentID) {
		return nil, apperrors.NewForbiddenError("attendance %d is outside your scope", id)
	}
	resp := dto.ToAttendanceResponse(a)
	return &resp, nil
}

// CreateAttendance records a status for a student, subject and day.
// A second row for the same triple is a conflict.
func (s *attendanceServiceImpl) CreateAttendance(ctx context.Context, scope *models.Scope, req *dto.CreateAttendanceRequest) (*dto.AttendanceResponse, error) {
	if !req.Status.Valid() {
		return nil, apperrors.NewValidationError("unknown attendance status %q", req.Status)
	}
	date, err := helpers.ParseDate(req.Date)
	if err != nil || date == nil {
		return nil, apperrors.NewValidationError("date must be YYYY-MM-DD")
	}
	student, err := s.studentRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if err := appauth.Require(appauth.CanTeach(scope, student.ClassID, req.SubjectID),
		"you do not teach subject %d in class %d", req.SubjectID, student.ClassID); err != nil {
		return nil, err
	}

	a := &models.Attendance{
		StudentID: student.ID,
		SubjectID: req.SubjectID,
		Date:      *date,
		Status:    req.Status,
	}
	if err := s.attendanceRepo.Create(ctx, a); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflictError("attendance for student %d in subject %d on %s is already recorded",
				student.ID, req.SubjectID, req.Date)
		}
		return nil, err
	}
	invalidateStats(ctx, s.cache, s.logger)

	s.logger.Info().
		Int64("attendanceID", a.ID).
		Int64("studentID", a.StudentID).
		Str("status", string(a.Status)).
		Msg("Attendance recorded")
	return s.GetAttendance(ctx, scope, a.ID)
}

// UpdateAttendance changes the status of an attendance row
func (s *attendanceServiceImpl) UpdateAttendance(ctx context.Context, scope *models.Scope, id int64, req *dto.UpdateAttendanceRequest) (*dto.AttendanceResponse, error) {
	if !req.Status.Valid() {
		return nil, apperrors.NewValidationError("unknown attendance status %q", req.Status)
	}
	a, err := s.writableAttendance(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.attendanceRepo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache, s.logger)

	a.Status = req.Status
	resp := dto.ToAttendanceResponse(a)
	return &resp, nil
}

// DeleteAttendance removes an attendance row
func (s *attendanceServiceImpl) DeleteAttendance(ctx context.Context, scope *models.Scope, id int64) error {
	if _, err := s.writableAttendance(ctx, scope, id); err != nil {
		return err
	}
	if err := s.attendanceRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateStats(ctx, s.cache, s.logger)
	return nil
}

func (s *attendanceServiceImpl) writableAttendance(ctx context.Context, scope *models.Scope, id int64) (*models.Attendance, error) {
	a, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := appauth.Require(appauth.CanTeach(scope, a.ClassID, a.SubjectID),
		"attendance %d belongs to a class subject you do not teach", id); err != nil {
		return nil, err
	}
	return a, nil
}
