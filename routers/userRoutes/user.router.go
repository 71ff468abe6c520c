package userRoutes

import (
	userController "elearning/controllers/userControllers"
	"elearning/middleware"
	"elearning/models"
	"elearning/validators"
	userValidator "elearning/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app fiber.Router, auth *middleware.Auth, ctl *userController.Controller) {
	userGroup := app.Group("/users", auth.Protect())

	userGroup.Get("/me", ctl.Me)
	userGroup.Patch("/me", userValidator.UpdateMe(), ctl.UpdateMe)
	userGroup.Put("/me/avatar", userValidator.Avatar(), ctl.UpdateAvatar)

	// Admin only
	admin := middleware.RequireRole(models.RoleAdmin)
	userGroup.Get("/", admin, userValidator.UserList(), ctl.List)
	userGroup.Get("/:id", admin, validators.Params(userValidator.UserIDParam), ctl.GetOne)
	userGroup.Delete("/:id", admin, validators.Params(userValidator.UserIDParam), ctl.Delete)
}
