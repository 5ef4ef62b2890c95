package models

import (
	"strconv"
	"strings"
	"unicode"
)

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin   RoleType = "ADMIN"
	RoleTeacher RoleType = "TEACHER"
	RoleStudent RoleType = "STUDENT"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// AttendanceStatus is the closed set of attendance outcomes
type AttendanceStatus string

const (
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLate    AttendanceStatus = "Late"
	AttendanceExcused AttendanceStatus = "Excused"
)

// Valid reports whether s is a known attendance status
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// Weekdays on which lessons are scheduled, in timetable order
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// WeekdayIndex returns the timetable position of a day name, or -1
func WeekdayIndex(day string) int {
	for i, d := range Weekdays {
		if strings.EqualFold(d, day) {
			return i
		}
	}
	return -1
}

// DefaultGradeType is used when a lesson grade arrives without a type tag
const DefaultGradeType = "Oral"

// ClassNameLess orders class names by their leading grade number, then by full name ("8A" < "10A").
func ClassNameLess(a, b string) bool {
	na, nb := leadingNumber(a), leadingNumber(b)
	if na != nb {
		return na < nb
	}
	return a < b
}

func leadingNumber(name string) int {
	end := strings.IndexFunc(name, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(name)
	}
	n, err := strconv.Atoi(name[:end])
	if err != nil {
		return 0
	}
	return n
}
