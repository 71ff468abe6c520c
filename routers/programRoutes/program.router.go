package programRoutes

import (
	programController "elearning/controllers/program"
	"elearning/middleware"
	"elearning/models"
	"elearning/validators"
	programValidator "elearning/validators/program"

	"github.com/gofiber/fiber/v2"
)

// SetupProgramRoutes sets up the catalog. Reads are public.
func SetupProgramRoutes(app fiber.Router, auth *middleware.Auth, ctl *programController.Controller) {
	programGroup := app.Group("/programs")
	programID := validators.Params(programValidator.ProgramIDParam)
	moduleIDs := validators.Params(programValidator.ProgramIDParam, programValidator.ModuleIDParam)
	protect := auth.Protect()
	admin := middleware.RequireRole(models.RoleAdmin)

	programGroup.Get("/", programValidator.ProgramList(), ctl.List)
	programGroup.Get("/:id", programID, ctl.GetOne)
	programGroup.Get("/:id/modules", programID, ctl.ListModules)

	programGroup.Post("/", protect, admin, programValidator.CreateProgram(), ctl.Create)
	programGroup.Patch("/:id", protect, admin, programID, programValidator.UpdateProgram(), ctl.Update)
	programGroup.Delete("/:id", protect, admin, programID, ctl.Delete)

	programGroup.Post("/:id/modules", protect, admin, programID, programValidator.CreateModule(), ctl.CreateModule)
	programGroup.Patch("/:id/modules/:moduleId", protect, admin, moduleIDs, programValidator.UpdateModule(), ctl.UpdateModule)
	programGroup.Delete("/:id/modules/:moduleId", protect, admin, moduleIDs, ctl.DeleteModule)
}
