package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:           http.StatusBadRequest,
		KindUnauthorized:         http.StatusUnauthorized,
		KindForbidden:            http.StatusForbidden,
		KindNotFound:             http.StatusNotFound,
		KindConflict:             http.StatusConflict,
		KindUnsupportedMediaType: http.StatusUnsupportedMediaType,
		KindBadGateway:           http.StatusBadGateway,
		KindInternal:             http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestCtxMasksPasswords(t *testing.T) {
	assert.Equal(t, Field{Key: "password", Value: "********"}, Ctx("password", "secret12"))
	assert.Equal(t, Field{Key: "newPassword", Value: "***"}, Ctx("newPassword", "abc"))
	assert.Equal(t, Field{Key: "email", Value: "a@b.c"}, Ctx("email", "a@b.c"))
	assert.Equal(t, Field{Key: "enrollmentId", Value: "7"}, Ctx("enrollmentId", 7))
}

func TestAsThroughWrapping(t *testing.T) {
	base := NotFound("Program not found", Ctx("programId", 3))
	wrapped := fmt.Errorf("create enrollment: %w", base)

	e, ok := As(wrapped)
	assert.True(t, ok)
	assert.Same(t, base, e)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.True(t, Is(wrapped, KindNotFound))
}

func TestFromDB(t *testing.T) {
	assert.Nil(t, FromDB(nil, "Program"))

	err := FromDB(gorm.ErrRecordNotFound, "Program", Ctx("programId", 1))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Program not found", err.(*Error).Message)

	assert.Equal(t, KindConflict, KindOf(FromDB(gorm.ErrDuplicatedKey, "User")))
	assert.Equal(t, KindConflict, KindOf(FromDB(&pgconn.PgError{Code: pgerrcode.UniqueViolation}, "User")))
	assert.Equal(t, KindConflict, KindOf(FromDB(errors.New("UNIQUE constraint failed: users.email"), "User")))
	assert.Equal(t, KindInternal, KindOf(FromDB(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, "User")))

	own := Forbidden("nope")
	assert.Same(t, own, FromDB(own, "User"))
}
