package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnsupportedMediaType
	KindBadGateway
)

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case KindBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnsupportedMediaType:
		return "unsupported_media_type"
	case KindBadGateway:
		return "bad_gateway"
	default:
		return "internal"
	}
}

// Field is one {key, value} entry of an error's context.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Ctx builds a context field. Values under keys that look like passwords are masked.
func Ctx(key string, value interface{}) Field {
	v := fmt.Sprint(value)
	if strings.Contains(strings.ToLower(key), "password") {
		v = Mask(v)
	}
	return Field{Key: key, Value: v}
}

// Mask replaces every character of s with '*'.
func Mask(s string) string {
	return strings.Repeat("*", len([]rune(s)))
}

type Error struct {
	Kind    Kind
	Message string
	Context []Field
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status mapped from the error kind.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// Wrap attaches a cause to the error and returns it.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func New(kind Kind, message string, ctx ...Field) *Error {
	if ctx == nil {
		ctx = []Field{}
	}
	return &Error{Kind: kind, Message: message, Context: ctx}
}

func Internal(message string, err error, ctx ...Field) *Error {
	return New(KindInternal, message, ctx...).Wrap(err)
}

func Validation(message string, ctx ...Field) *Error {
	return New(KindValidation, message, ctx...)
}

func Unauthorized(message string, ctx ...Field) *Error {
	return New(KindUnauthorized, message, ctx...)
}

func Forbidden(message string, ctx ...Field) *Error {
	return New(KindForbidden, message, ctx...)
}

func NotFound(message string, ctx ...Field) *Error {
	return New(KindNotFound, message, ctx...)
}

func Conflict(message string, ctx ...Field) *Error {
	return New(KindConflict, message, ctx...)
}

func UnsupportedMediaType(message string, ctx ...Field) *Error {
	return New(KindUnsupportedMediaType, message, ctx...)
}

func BadGateway(message string, err error, ctx ...Field) *Error {
	return New(KindBadGateway, message, ctx...).Wrap(err)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
