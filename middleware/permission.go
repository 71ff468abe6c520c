package middleware

import (
	"elearning/apperr"
	"elearning/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that lets the request through only when
// the caller has one of roles. It must run after Protect.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		if actor.UserID == 0 {
			return apperr.Unauthorized("Unauthorized: User not found in request")
		}
		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}
		return apperr.Forbidden("You do not have permission to access this resource!",
			apperr.Ctx("role", actor.Role))
	}
}
