package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"elearning/apperr"
	"elearning/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("program_type", func(fl validator.FieldLevel) bool {
		return models.ProgramType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("enrollment_status", func(fl validator.FieldLevel) bool {
		switch models.EnrollmentStatus(fl.Field().String()) {
		case models.EnrollmentUnpaid, models.EnrollmentInProgress, models.EnrollmentCompleted, models.EnrollmentExpired:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("invoice_status", func(fl validator.FieldLevel) bool {
		switch models.InvoiceStatus(fl.Field().String()) {
		case models.InvoiceUnverified, models.InvoiceVerified, models.InvoiceExpired:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		switch models.Role(fl.Field().String()) {
		case models.RoleAdmin, models.RoleUser:
			return true
		}
		return false
	})
	return v
}

// Struct validates s and reports every failed field as error context.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal("Validation failed!", err)
	}

	fields := make([]apperr.Field, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.Ctx(fe.Field(), fieldValue(fe.Value())))
	}
	first := verrs[0]
	msg := fmt.Sprintf("%s failed on the '%s' rule", first.Field(), first.Tag())
	return apperr.Validation(msg, fields...)
}

func fieldValue(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		return rv.Elem().Interface()
	}
	return v
}

// Body parses a JSON body into T, validates it and stores it under key.
func Body[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
			return apperr.UnsupportedMediaType("Content-Type must be application/json",
				apperr.Ctx("contentType", c.Get(fiber.HeaderContentType)))
		}
		req := new(T)
		if err := c.BodyParser(req); err != nil {
			return apperr.Validation("Invalid request body!", apperr.Ctx("body", err.Error()))
		}
		if err := Struct(req); err != nil {
			return err
		}
		c.Locals(key, req)
		return c.Next()
	}
}

// Query parses the query string into T, validates it and stores it under key.
func Query[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if err := c.QueryParser(req); err != nil {
			return apperr.Validation("Invalid query parameters!", apperr.Ctx("query", err.Error()))
		}
		if err := Struct(req); err != nil {
			return err
		}
		c.Locals(key, req)
		return c.Next()
	}
}

// Params checks that each named route parameter is a positive integer and
// stores it as uint under its own name.
func Params(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, name := range names {
			raw := strings.TrimSpace(c.Params(name))
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				return apperr.Validation("Invalid "+name+"!", apperr.Ctx(name, raw))
			}
			c.Locals(name, uint(id))
		}
		return c.Next()
	}
}

// Param returns a route parameter stored by Params.
func Param(c *fiber.Ctx, name string) uint {
	id, _ := c.Locals(name).(uint)
	return id
}

// FromLocals returns the request stored by Body or Query.
func FromLocals[T any](c *fiber.Ctx, key string) (*T, error) {
	req, ok := c.Locals(key).(*T)
	if !ok {
		return nil, apperr.Validation("Invalid request data!")
	}
	return req, nil
}
