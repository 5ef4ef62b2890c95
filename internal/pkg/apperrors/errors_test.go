package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		msg    string
	}{
		{name: "not found", err: NewResourceNotFoundError("student %d not found", 7), target: ErrResourceNotFound, msg: "student 7 not found"},
		{name: "validation", err: NewValidationError("text is required"), target: ErrValidationFailed, msg: "text is required"},
		{name: "conflict", err: NewConflictError("attendance already recorded"), target: ErrConflict, msg: "attendance already recorded"},
		{name: "forbidden", err: NewForbiddenError("not your class"), target: ErrPermissionDenied, msg: "not your class"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("service: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.target))
			assert.Equal(t, tt.msg, Message(wrapped, "fallback"))
		})
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrTokenExpired)
	assert.True(t, Is(err, ErrTokenInvalid, ErrTokenExpired))
	assert.False(t, Is(err, ErrConflict))
}

func TestMessageFallback(t *testing.T) {
	assert.Equal(t, "fallback", Message(errors.New("plain"), "fallback"))
	assert.Equal(t, "validation failed", (&CustomError{Err: ErrValidationFailed}).Error())
}
