package certificateRoutes

import (
	certificateController "elearning/controllers/certificate"
	"elearning/middleware"
	"elearning/models"
	"elearning/validators"
	certificateValidator "elearning/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

func SetupCertificateRoutes(app fiber.Router, auth *middleware.Auth, ctl *certificateController.Controller) {
	certificateGroup := app.Group("/certificates", auth.Protect())
	certificateID := validators.Params(certificateValidator.CertificateIDParam)
	admin := middleware.RequireRole(models.RoleAdmin)

	certificateGroup.Get("/", certificateValidator.CertificateList(), ctl.List)
	certificateGroup.Get("/:id", certificateID, ctl.GetOne)

	certificateGroup.Post("/", admin, certificateValidator.CreateCertificate(), ctl.Create)
	certificateGroup.Patch("/:id", admin, certificateID, certificateValidator.UpdateCertificate(), ctl.Update)
	certificateGroup.Delete("/:id", admin, certificateID, ctl.Delete)
}
