package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	appauth "github.com/yigit/gradebook/internal/app/auth"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/cache"
	"github.com/yigit/gradebook/internal/pkg/helpers"
	"github.com/yigit/gradebook/internal/pkg/validation"
)

// GradeService defines the interface for grade operations
type GradeService interface {
	ListGrades(ctx context.Context, scope *models.Scope, req *dto.GradeFilterRequest) (*dto.GradeListResponse, error)
	GetGrade(ctx context.Context, scope *models.Scope, id int64) (*dto.GradeResponse, error)
	CreateGrade(ctx context.Context, scope *models.Scope, req *dto.CreateGradeRequest) (*dto.GradeResponse, error)
	UpdateGrade(ctx context.Context, scope *models.Scope, id int64, req *dto.UpdateGradeRequest) (*dto.GradeResponse, error)
	DeleteGrade(ctx context.Context, scope *models.Scope, id int64) error
}

type gradeServiceImpl struct {
	gradeRepo   repositories.IGradeRepository
	studentRepo repositories.IStudentRepository
	cache       cache.Cache
	logger      zerolog.Logger
}

// NewGradeService creates a new GradeService
func NewGradeService(
	gradeRepo repositories.IGradeRepository,
	studentRepo repositories.IStudentRepository,
	c cache.Cache,
	logger zerolog.Logger,
) GradeService {
	if c == nil {
		c = cache.Noop{}
	}
	return &gradeServiceImpl{
		gradeRepo:   gradeRepo,
		studentRepo: studentRepo,
		cache:       c,
		logger:      logger,
	}
}

// ListGrades returns one page of the grades visible to the caller, newest first
func (s *gradeServiceImpl) ListGrades(ctx context.Context, scope *models.Scope, req *dto.GradeFilterRequest) (*dto.GradeListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(req.Page, req.PageSize)
	grades, total, err := s.gradeRepo.List(ctx, repositories.GradeQuery{
		Scope:  narrow(scope.GradeFilter(), req.ClassID, req.SubjectID, req.StudentID),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return &dto.GradeListResponse{
		Grades:         dto.ToGradeResponses(grades),
		PaginationInfo: helpers.NewPaginationInfo(total, req.Page, req.PageSize),
	}, nil
}

// GetGrade returns a single grade
func (s *gradeServiceImpl) GetGrade(ctx context.Context, scope *models.Scope, id int64) (*dto.GradeResponse, error) {
	grade, err := s.gradeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewRecord(scope, grade.ClassID, grade.SubjectID, grade.StudentID) {
		return nil, apperrors.NewForbiddenError("grade %d is outside your scope", id)
	}
	resp := dto.ToGradeResponse(grade)
	return &resp, nil
}

// CreateGrade records a grade in a class subject the caller teaches
func (s *gradeServiceImpl) CreateGrade(ctx context.Context, scope *models.Scope, req *dto.CreateGradeRequest) (*dto.GradeResponse, error) {
	if !validation.ValidGrade(req.Value) {
		return nil, apperrors.NewValidationError("grade %s is outside the 2-6 scale", req.Value)
	}
	student, err := s.studentRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if err := appauth.Require(appauth.CanTeach(scope, student.ClassID, req.SubjectID),
		"you do not teach subject %d in class %d", req.SubjectID, student.ClassID); err != nil {
		return nil, err
	}

	grade := &models.Grade{
		StudentID: student.ID,
		SubjectID: req.SubjectID,
		Value:     req.Value,
		Type:      gradeType(req.Type),
		Comment:   req.Comment,
	}
	if req.GradedAt != nil {
		grade.GradedAt = *req.GradedAt
	}
	if err := s.gradeRepo.Create(ctx, grade); err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache, s.logger)

	s.logger.Info().
		Int64("gradeID", grade.ID).
		Int64("studentID", grade.StudentID).
		Int64("subjectID", grade.SubjectID).
		Int64("userID", scope.UserID).
		Msg("Grade created")
	return s.GetGrade(ctx, scope, grade.ID)
}

// UpdateGrade changes the value, type or comment of a grade
func (s *gradeServiceImpl) UpdateGrade(ctx context.Context, scope *models.Scope, id int64, req *dto.UpdateGradeRequest) (*dto.GradeResponse, error) {
	if !validation.ValidGrade(req.Value) {
		return nil, apperrors.NewValidationError("grade %s is outside the 2-6 scale", req.Value)
	}
	grade, err := s.writableGrade(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	grade.Value = req.Value
	if req.Type != "" {
		grade.Type = req.Type
	}
	grade.Comment = req.Comment
	if err := s.gradeRepo.Update(ctx, grade); err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache, s.logger)

	resp := dto.ToGradeResponse(grade)
	return &resp, nil
}

// DeleteGrade removes a grade
func (s *gradeServiceImpl) DeleteGrade(ctx context.Context, scope *models.Scope, id int64) error {
	if _, err := s.writableGrade(ctx, scope, id); err != nil {
		return err
	}
	if err := s.gradeRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateStats(ctx, s.cache, s.logger)
	s.logger.Info().Int64("gradeID", id).Int64("userID", scope.UserID).Msg("Grade deleted")
	return nil
}

func (s *gradeServiceImpl) writableGrade(ctx context.Context, scope *models.Scope, id int64) (*models.Grade, error) {
	grade, err := s.gradeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := appauth.Require(appauth.CanTeach(scope, grade.ClassID, grade.SubjectID),
		"grade %d belongs to a class subject you do not teach", id); err != nil {
		return nil, err
	}
	return grade, nil
}

func gradeType(t string) string {
	if t = strings.TrimSpace(t); t == "" {
		return models.DefaultGradeType
	}
	return t
}
