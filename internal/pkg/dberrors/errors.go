package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

// PostgreSQL error codes
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// IsUniqueViolation reports whether err is a unique_violation
func IsUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	return code == codeUniqueViolation
}

// IsDuplicateConstraintError checks for a unique violation on a specific constraint
func IsDuplicateConstraintError(err error, constraintName string) bool {
	code, name := pgCode(err)
	return code == codeUniqueViolation && name == constraintName
}

// IsForeignKeyViolation reports whether err references a missing row
func IsForeignKeyViolation(err error) bool {
	code, _ := pgCode(err)
	return code == codeForeignKeyViolation
}

// IsCheckViolation reports whether err violates a CHECK constraint
func IsCheckViolation(err error) bool {
	code, _ := pgCode(err)
	return code == codeCheckViolation
}

// Translate maps storage errors onto the application taxonomy.
// Unknown errors are returned unchanged.
func Translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewResourceNotFoundError("%s not found", entity)
	case IsUniqueViolation(err):
		return apperrors.NewConflictError("%s already exists", entity)
	case IsForeignKeyViolation(err):
		return apperrors.NewValidationError("%s references a record that does not exist", entity)
	case IsCheckViolation(err):
		return apperrors.NewValidationError("%s has an invalid value", entity)
	default:
		return err
	}
}
