package invoiceRoutes

import (
	invoiceController "elearning/controllers/invoice"
	"elearning/middleware"
	"elearning/models"
	"elearning/validators"
	invoiceValidator "elearning/validators/invoice"

	"github.com/gofiber/fiber/v2"
)

func SetupInvoiceRoutes(app fiber.Router, auth *middleware.Auth, ctl *invoiceController.Controller) {
	invoiceGroup := app.Group("/invoices", auth.Protect())
	invoiceID := validators.Params(invoiceValidator.InvoiceIDParam)

	invoiceGroup.Get("/", invoiceValidator.InvoiceList(), ctl.List)
	invoiceGroup.Get("/:id", invoiceID, ctl.GetOne)
	invoiceGroup.Patch("/:id/verify", middleware.RequireRole(models.RoleAdmin), invoiceID, ctl.Verify)
}
