package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

func TestTranslate(t *testing.T) {
	boom := errors.New("connection reset")
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "no rows", err: pgx.ErrNoRows, target: apperrors.ErrResourceNotFound},
		{name: "unique", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "attendances_student_subject_date_key"}), target: apperrors.ErrConflict},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, target: apperrors.ErrValidationFailed},
		{name: "check", err: &pgconn.PgError{Code: "23514"}, target: apperrors.ErrValidationFailed},
		{name: "other", err: boom, target: boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Translate(tt.err, "attendance"), tt.target)
		})
	}
	assert.NoError(t, Translate(nil, "attendance"))
}

func TestIsDuplicateConstraintError(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "classes_name_key"}
	assert.True(t, IsDuplicateConstraintError(err, "classes_name_key"))
	assert.False(t, IsDuplicateConstraintError(err, "subjects_name_key"))
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))
}
