package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/gradebook/internal/app/auth"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/auth"
)

// AuthService handles authentication and account operations
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, id models.Identity) (*dto.UserResponse, error)
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	EnsureAdmin(ctx context.Context, email, password string) (bool, error)
}

type authServiceImpl struct {
	userRepo    repositories.IUserRepository
	teacherRepo repositories.ITeacherRepository
	studentRepo repositories.IStudentRepository
	resolver    *appauth.ScopeResolver
	jwtService  *auth.JWTService
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	teacherRepo repositories.ITeacherRepository,
	studentRepo repositories.IStudentRepository,
	resolver *appauth.ScopeResolver,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		teacherRepo: teacherRepo,
		studentRepo: studentRepo,
		resolver:    resolver,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// Login checks credentials and issues an access token
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Info().Str("email", email).Msg("Login with unknown email")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Info().Int64("userID", user.ID).Msg("Login with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	scope, err := s.resolver.Resolve(ctx, models.Identity{UserID: user.ID, Email: user.Email, RoleType: user.RoleType})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.RoleType)).Msg("User logged in")
	return &dto.AuthResponse{
		Token: dto.TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresIn: expiresIn},
		User:  dto.ToUserResponse(user, scope),
	}, nil
}

// Me returns the caller's profile with linked student, teacher and class ids
func (s *authServiceImpl) Me(ctx context.Context, id models.Identity) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	scope, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToUserResponse(user, scope)
	return &resp, nil
}

// CreateUser creates an account and links it to an existing student or teacher
func (s *authServiceImpl) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if req.StudentID != nil && req.RoleType != models.RoleStudent {
		return nil, apperrors.NewValidationError("only student accounts can link a student")
	}
	if req.TeacherID != nil && req.RoleType != models.RoleTeacher {
		return nil, apperrors.NewValidationError("only teacher accounts can link a teacher")
	}

	var teacher *models.Teacher
	if req.StudentID != nil {
		if _, err := s.studentRepo.GetByID(ctx, *req.StudentID); err != nil {
			return nil, err
		}
	}
	if req.TeacherID != nil {
		t, err := s.teacherRepo.GetByID(ctx, *req.TeacherID)
		if err != nil {
			return nil, err
		}
		if t.UserID != nil {
			return nil, apperrors.NewConflictError("teacher %d already has an account", t.ID)
		}
		teacher = t
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hash,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		RoleType:  req.RoleType,
		StudentID: req.StudentID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if teacher != nil {
		teacher.UserID = &user.ID
		if err := s.teacherRepo.Update(ctx, teacher); err != nil {
			s.logger.Error().Err(err).Int64("userID", user.ID).Int64("teacherID", teacher.ID).Msg("Failed to link teacher to new account")
			return nil, err
		}
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.RoleType)).Msg("User created")
	resp := dto.ToUserResponse(user, nil)
	if teacher != nil {
		resp.TeacherID = &teacher.ID
	}
	return &resp, nil
}

// EnsureAdmin creates the first administrator unless one exists. It reports whether an account was created.
func (s *authServiceImpl) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	exists, err := s.userRepo.ExistsByRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if email == "" || password == "" {
		s.logger.Warn().Msg("No administrator exists and no seed credentials are configured")
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	admin := &models.User{
		Email:     strings.ToLower(email),
		Password:  hash,
		FirstName: "School",
		LastName:  "Administrator",
		RoleType:  models.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("failed to seed administrator: %w", err)
	}
	s.logger.Info().Str("email", admin.Email).Msg("Seeded administrator account")
	return true, nil
}
