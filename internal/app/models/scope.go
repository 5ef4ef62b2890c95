package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClassSubjectPair is one (class, subject) assignment of a teacher
type ClassSubjectPair struct {
	ClassID   int64 `json:"classId"`
	SubjectID int64 `json:"subjectId"`
}

// Scope is the resolved data-visibility filter of a caller.
// Admins are unrestricted; teachers see their assigned class/subject pairs;
// students see their own records and their class roster.
type Scope struct {
	Role           RoleType
	UserID         int64
	TeacherID      *int64
	StudentID      *int64
	StudentClassID *int64
	ClassIDs       []int64
	SubjectIDs     []int64
	Pairs          []ClassSubjectPair
}

// IsAdmin reports whether the scope is unrestricted
func (s *Scope) IsAdmin() bool { return s.Role == RoleAdmin }

// IsTeacher reports whether the caller is a teacher
func (s *Scope) IsTeacher() bool { return s.Role == RoleTeacher }

// IsStudent reports whether the caller is a student
func (s *Scope) IsStudent() bool { return s.Role == RoleStudent }

// HasClass reports whether a teacher is assigned to the class
func (s *Scope) HasClass(classID int64) bool {
	return containsID(s.ClassIDs, classID)
}

// HasSubject reports whether a teacher teaches the subject in any class
func (s *Scope) HasSubject(subjectID int64) bool {
	return containsID(s.SubjectIDs, subjectID)
}

// Teaches reports whether the (class, subject) pair is assigned to the teacher
func (s *Scope) Teaches(classID, subjectID int64) bool {
	for _, p := range s.Pairs {
		if p.ClassID == classID && p.SubjectID == subjectID {
			return true
		}
	}
	return false
}

// GradeFilter returns the fact filter that limits aggregation to this scope
func (s *Scope) GradeFilter() FactFilter {
	switch s.Role {
	case RoleAdmin:
		return FactFilter{}
	case RoleTeacher:
		pairs := s.Pairs
		if pairs == nil {
			pairs = []ClassSubjectPair{}
		}
		return FactFilter{Pairs: pairs}
	default:
		if s.StudentID == nil {
			return FactFilter{StudentIDs: []int64{}}
		}
		return FactFilter{StudentIDs: []int64{*s.StudentID}}
	}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// FactFilter restricts fact queries. A nil slice means "no restriction";
// a non-nil empty slice matches nothing.
type FactFilter struct {
	ClassIDs   []int64
	SubjectIDs []int64
	StudentIDs []int64
	Pairs      []ClassSubjectPair
	From       *time.Time
	To         *time.Time
}

// MatchesNothing reports whether some restriction is present but empty
func (f FactFilter) MatchesNothing() bool {
	return (f.ClassIDs != nil && len(f.ClassIDs) == 0) ||
		(f.SubjectIDs != nil && len(f.SubjectIDs) == 0) ||
		(f.StudentIDs != nil && len(f.StudentIDs) == 0) ||
		(f.Pairs != nil && len(f.Pairs) == 0)
}

// GradeFact is a denormalised grade row used by aggregation
type GradeFact struct {
	GradeID          int64
	StudentID        int64
	StudentName      string
	ClassID          int64
	ClassName        string
	SubjectID        int64
	SubjectName      string
	SubjectShortName string
	Value            decimal.Decimal
	Type             string
	GradedAt         time.Time
}

// AttendanceFact is a denormalised attendance row used by aggregation
type AttendanceFact struct {
	StudentID   int64
	StudentName string
	ClassID     int64
	ClassName   string
	SubjectID   int64
	SubjectName string
	Date        time.Time
	Status      AttendanceStatus
}
