package invoiceValidator

import (
	"elearning/utils"
	"elearning/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	InvoiceIDParam = "id"
	InvoiceListKey = "validatedInvoiceList"
)

type InvoiceListQuery struct {
	utils.PageQuery
	UserID       uint   `query:"userId"`
	EnrollmentID uint   `query:"enrollmentId"`
	Status       string `query:"status" validate:"omitempty,invoice_status"`
}

func InvoiceList() fiber.Handler {
	return validators.Query[InvoiceListQuery](InvoiceListKey)
}
