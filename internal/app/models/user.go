package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Email     string    `json:"email" db:"email" example:"teacher@school.test"`
	Password  string    `json:"-" db:"password"`
	FirstName string    `json:"firstName" db:"first_name" example:"Maria"`
	LastName  string    `json:"lastName" db:"last_name" example:"Ivanova"`
	RoleType  RoleType  `json:"roleType" db:"role_type" example:"TEACHER"`
	StudentID *int64    `json:"studentId,omitempty" db:"student_id"` // set only for student accounts
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Identity is the authenticated caller as carried by the access token
type Identity struct {
	UserID   int64
	Email    string
	RoleType RoleType
}
