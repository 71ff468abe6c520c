package enrollmentRoutes

import (
	enrollmentController "elearning/controllers/enrollment"
	"elearning/middleware"
	"elearning/validators"
	enrollmentValidator "elearning/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

func SetupEnrollmentRoutes(app fiber.Router, auth *middleware.Auth, ctl *enrollmentController.Controller) {
	enrollmentGroup := app.Group("/enrollments", auth.Protect())
	enrollmentID := validators.Params(enrollmentValidator.EnrollmentIDParam)

	enrollmentGroup.Post("/", enrollmentValidator.CreateEnrollment(), ctl.Create)
	enrollmentGroup.Get("/", enrollmentValidator.EnrollmentList(), ctl.List)
	enrollmentGroup.Get("/:id", enrollmentID, ctl.GetOne)
	enrollmentGroup.Patch("/:id", enrollmentID, enrollmentValidator.UpdateEnrollment(), ctl.Update)
	enrollmentGroup.Delete("/:id", enrollmentID, ctl.Delete)

	// Module completion (courses only)
	enrollmentGroup.Post("/:id/completed-modules", enrollmentID, enrollmentValidator.CompleteModule(), ctl.CompleteModule)
}
