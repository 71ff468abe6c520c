package middleware

import (
	"errors"

	"elearning/apperr"
	"elearning/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success    bool              `json:"success"`
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Data       interface{}       `json:"data"`
	Pagination *utils.Pagination `json:"pagination,omitempty"`
	Errors     []apperr.Field    `json:"errors"`
}

func JsonResponse(c *fiber.Ctx, statusCode int, success bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(Response{
		Success:    success,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Errors:     []apperr.Field{},
	})
}

func PaginatedResponse(c *fiber.Ctx, message string, data interface{}, pagination utils.Pagination) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success:    true,
		StatusCode: fiber.StatusOK,
		Message:    message,
		Data:       data,
		Pagination: &pagination,
		Errors:     []apperr.Field{},
	})
}

func ErrorResponse(c *fiber.Ctx, statusCode int, message string, errs []apperr.Field) error {
	if errs == nil {
		errs = []apperr.Field{}
	}
	return c.Status(statusCode).JSON(Response{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
		Errors:     errs,
	})
}

// ErrorHandler maps errors returned by handlers onto the envelope. Anything
// that is not an *apperr.Error or *fiber.Error is answered with a bare 500.
func ErrorHandler(log *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := apperr.As(err); ok {
			if e.Kind == apperr.KindInternal || e.Kind == apperr.KindBadGateway {
				log.Errorw("[HTTP] Request failed", "method", c.Method(), "path", c.Path(), "kind", e.Kind.String(), "error", err)
			}
			return ErrorResponse(c, e.Status(), e.Message, e.Context)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ErrorResponse(c, fe.Code, fe.Message, nil)
		}

		log.Errorw("[HTTP] Unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", nil)
	}
}
