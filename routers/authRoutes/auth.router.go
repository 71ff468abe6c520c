package authRoutes

import (
	authController "elearning/controllers/auth"
	"elearning/middleware"
	authValidator "elearning/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app fiber.Router, auth *middleware.Auth, ctl *authController.Controller) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", authValidator.Register(), ctl.Register)
	authGroup.Post("/login", authValidator.Login(), ctl.Login)
	authGroup.Post("/logout", auth.Protect(), ctl.Logout)
}
