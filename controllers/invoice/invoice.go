package invoiceController

import (
	"elearning/middleware"
	"elearning/models"
	"elearning/services"
	"elearning/validators"
	invoiceValidator "elearning/validators/invoice"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	invoices *services.InvoiceService
}

func New(invoices *services.InvoiceService) *Controller {
	return &Controller{invoices: invoices}
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	q, err := validators.FromLocals[invoiceValidator.InvoiceListQuery](c, invoiceValidator.InvoiceListKey)
	if err != nil {
		return err
	}

	invoices, pagination, err := ctl.invoices.GetMany(c.UserContext(), middleware.ActorFrom(c), services.InvoiceFilter{
		PageQuery:    q.PageQuery,
		UserID:       q.UserID,
		EnrollmentID: q.EnrollmentID,
		Status:       models.InvoiceStatus(q.Status),
	})
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Invoices fetched successfully!", invoices, pagination)
}

func (ctl *Controller) GetOne(c *fiber.Ctx) error {
	invoice, err := ctl.invoices.GetOne(c.UserContext(), middleware.ActorFrom(c), validators.Param(c, invoiceValidator.InvoiceIDParam))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Invoice fetched successfully!", invoice)
}

// Verify confirms the payment of an invoice.
func (ctl *Controller) Verify(c *fiber.Ctx) error {
	invoice, err := ctl.invoices.Verify(c.UserContext(), validators.Param(c, invoiceValidator.InvoiceIDParam))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Invoice verified successfully!", invoice)
}
