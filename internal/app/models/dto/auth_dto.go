package dto

import "github.com/yigit/gradebook/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@school.test"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"43200"`
}

// UserResponse is the public profile of an account and its linked records
type UserResponse struct {
	ID        int64  `json:"id" example:"1"`
	Email     string `json:"email" example:"teacher@school.test"`
	FirstName string `json:"firstName" example:"Maria"`
	LastName  string `json:"lastName" example:"Ivanova"`
	Role      string `json:"role" example:"TEACHER" enums:"ADMIN,TEACHER,STUDENT"`
	StudentID *int64 `json:"studentId,omitempty"`
	TeacherID *int64 `json:"teacherId,omitempty"`
	ClassID   *int64 `json:"classId,omitempty"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// CreateUserRequest creates an account, optionally linked to an existing student or teacher
type CreateUserRequest struct {
	Email     string          `json:"email" binding:"required,email"`
	Password  string          `json:"password" binding:"required,min=8"`
	FirstName string          `json:"firstName" binding:"required,max=100"`
	LastName  string          `json:"lastName" binding:"required,max=100"`
	RoleType  models.RoleType `json:"roleType" binding:"required,oneof=ADMIN TEACHER STUDENT"`
	StudentID *int64          `json:"studentId,omitempty" binding:"omitempty,min=1"`
	TeacherID *int64          `json:"teacherId,omitempty" binding:"omitempty,min=1"`
}

// ToUserResponse builds a profile from a user and the ids resolved for it
func ToUserResponse(u *models.User, scope *models.Scope) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.RoleType),
		StudentID: u.StudentID,
	}
	if scope != nil {
		resp.TeacherID = scope.TeacherID
		resp.ClassID = scope.StudentClassID
		if scope.StudentID != nil {
			resp.StudentID = scope.StudentID
		}
	}
	return resp
}
