package apperr

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// FromDB translates a repository error into an *Error. resource is used in
// the message ("Enrollment not found").
func FromDB(err error, resource string, ctx ...Field) error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(resource+" not found", ctx...)
	case IsUniqueViolation(err):
		return Conflict(resource+" already exists", ctx...).Wrap(err)
	}
	return Internal("database error", err, ctx...)
}

// IsUniqueViolation recognises unique-constraint failures from every driver
// the application can run on.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}
