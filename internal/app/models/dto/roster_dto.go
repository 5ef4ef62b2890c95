package dto

// ClassRequest creates or renames a class
type ClassRequest struct {
	Name string `json:"name" binding:"required,max=20" example:"8A"`
}

// SubjectRequest creates or updates a subject
type SubjectRequest struct {
	Name      string  `json:"name" binding:"required,max=100" example:"Mathematics"`
	ShortName *string `json:"shortName,omitempty" binding:"omitempty,max=20" example:"MATH"`
}

// TeacherRequest creates or updates a teacher
type TeacherRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	UserID    *int64 `json:"userId,omitempty" binding:"omitempty,min=1"`
}

// StudentRequest creates or updates a student
type StudentRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	ClassID   int64  `json:"classId" binding:"required,min=1"`
}

// StudentFilterRequest narrows the student list
type StudentFilterRequest struct {
	ClassID *int64 `form:"classId" binding:"omitempty,min=1"`
}

// ClassSubjectRequest assigns a subject, and optionally its teacher, to a class
type ClassSubjectRequest struct {
	ClassID   int64  `json:"classId" binding:"required,min=1"`
	SubjectID int64  `json:"subjectId" binding:"required,min=1"`
	TeacherID *int64 `json:"teacherId,omitempty" binding:"omitempty,min=1"`
}
