// Package auth resolves what data an authenticated caller may see.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

// ScopeResolver turns an authenticated identity into its data scope
type ScopeResolver struct {
	userRepo         repositories.IUserRepository
	teacherRepo      repositories.ITeacherRepository
	studentRepo      repositories.IStudentRepository
	classSubjectRepo repositories.IClassSubjectRepository
	logger           zerolog.Logger
}

// NewScopeResolver creates a new ScopeResolver
func NewScopeResolver(
	userRepo repositories.IUserRepository,
	teacherRepo repositories.ITeacherRepository,
	studentRepo repositories.IStudentRepository,
	classSubjectRepo repositories.IClassSubjectRepository,
	logger zerolog.Logger,
) *ScopeResolver {
	return &ScopeResolver{
		userRepo:         userRepo,
		teacherRepo:      teacherRepo,
		studentRepo:      studentRepo,
		classSubjectRepo: classSubjectRepo,
		logger:           logger,
	}
}

// Resolve builds the scope of id. A teacher or student account without a linked
// record gets an empty scope rather than an error.
func (r *ScopeResolver) Resolve(ctx context.Context, id models.Identity) (*models.Scope, error) {
	scope := &models.Scope{Role: id.RoleType, UserID: id.UserID}

	switch id.RoleType {
	case models.RoleAdmin:
		return scope, nil

	case models.RoleTeacher:
		scope.ClassIDs, scope.SubjectIDs, scope.Pairs = []int64{}, []int64{}, []models.ClassSubjectPair{}
		teacher, err := r.teacherRepo.GetByUserID(ctx, id.UserID)
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			r.logger.Debug().Int64("userID", id.UserID).Msg("Teacher account has no teacher record")
			return scope, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load teacher: %w", err)
		}
		scope.TeacherID = &teacher.ID

		assignments, err := r.classSubjectRepo.List(ctx, &teacher.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load teacher assignments: %w", err)
		}
		seenClass, seenSubject := map[int64]bool{}, map[int64]bool{}
		for _, a := range assignments {
			scope.Pairs = append(scope.Pairs, models.ClassSubjectPair{ClassID: a.ClassID, SubjectID: a.SubjectID})
			if !seenClass[a.ClassID] {
				seenClass[a.ClassID] = true
				scope.ClassIDs = append(scope.ClassIDs, a.ClassID)
			}
			if !seenSubject[a.SubjectID] {
				seenSubject[a.SubjectID] = true
				scope.SubjectIDs = append(scope.SubjectIDs, a.SubjectID)
			}
		}
		return scope, nil

	case models.RoleStudent:
		user, err := r.userRepo.GetByID(ctx, id.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		if user.StudentID == nil {
			r.logger.Debug().Int64("userID", id.UserID).Msg("Student account has no student record")
			return scope, nil
		}
		student, err := r.studentRepo.GetByID(ctx, *user.StudentID)
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return scope, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load student: %w", err)
		}
		scope.StudentID = &student.ID
		scope.StudentClassID = &student.ClassID
		return scope, nil
	}

	return nil, apperrors.ErrTokenInvalid
}

// CanManage reports whether the caller may change school-wide data
func CanManage(s *models.Scope) bool {
	return s.IsAdmin()
}

// CanViewClass reports whether the caller may read data of a class
func CanViewClass(s *models.Scope, classID int64) bool {
	switch {
	case s.IsAdmin():
		return true
	case s.IsTeacher():
		return s.HasClass(classID)
	case s.IsStudent():
		return s.StudentClassID != nil && *s.StudentClassID == classID
	}
	return false
}

// CanViewStudent reports whether the caller may read a student's records
func CanViewStudent(s *models.Scope, student *models.Student) bool {
	switch {
	case s.IsAdmin():
		return true
	case s.IsTeacher():
		return s.HasClass(student.ClassID)
	case s.IsStudent():
		return s.StudentID != nil && *s.StudentID == student.ID
	}
	return false
}

// CanTeach reports whether the caller may write grades and attendance for a class subject
func CanTeach(s *models.Scope, classID, subjectID int64) bool {
	switch {
	case s.IsAdmin():
		return true
	case s.IsTeacher():
		return s.Teaches(classID, subjectID)
	}
	return false
}

// Require returns a forbidden error unless allowed
func Require(allowed bool, format string, args ...interface{}) error {
	if allowed {
		return nil
	}
	return apperrors.NewForbiddenError(format, args...)
}
