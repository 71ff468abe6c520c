package services

import (
	"context"
	"time"

	"elearning/apperr"
	"elearning/models"
	"elearning/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var invoiceSorts = map[string]string{
	"createdAt":          "created_at",
	"paymentDueDatetime": "payment_due_datetime",
	"amountIdr":          "amount_idr",
	"status":             "status",
}

type InvoiceService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

func NewInvoiceService(d Deps) *InvoiceService {
	return &InvoiceService{db: d.DB, log: d.logger(), now: d.clock()}
}

type InvoiceFilter struct {
	utils.PageQuery
	UserID       uint
	EnrollmentID uint
	Status       models.InvoiceStatus
}

func (s *InvoiceService) ownedBy(userID uint) *gorm.DB {
	return s.db.Unscoped().Model(&models.Enrollment{}).Select("id").Where("user_id = ?", userID)
}

func (s *InvoiceService) filtered(ctx context.Context, f InvoiceFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Invoice{})
	if f.UserID != 0 {
		q = q.Where("enrollment_id IN (?)", s.ownedBy(f.UserID))
	}
	if f.EnrollmentID != 0 {
		q = q.Where("enrollment_id = ?", f.EnrollmentID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func (s *InvoiceService) GetMany(ctx context.Context, actor Actor, f InvoiceFilter) ([]models.Invoice, utils.Pagination, error) {
	if !actor.IsAdmin() {
		f.UserID = actor.UserID
	}
	sort, err := utils.SortScope(f.Sort, invoiceSorts, "-createdAt")
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "Invoice")
	}
	rows := []models.Invoice{}
	if err := s.filtered(ctx, f).Scopes(sort, utils.Paginate(f.PageQuery)).Find(&rows).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "Invoice")
	}
	return rows, utils.NewPagination(f.PageQuery, total, len(rows)), nil
}

func (s *InvoiceService) GetOne(ctx context.Context, actor Actor, id uint) (*models.Invoice, error) {
	db := s.db.WithContext(ctx)

	var inv models.Invoice
	if err := db.First(&inv, id).Error; err != nil {
		return nil, apperr.FromDB(err, "Invoice", apperr.Ctx("invoiceId", id))
	}
	if !actor.IsAdmin() {
		var e models.Enrollment
		if err := db.Unscoped().Select("id", "user_id").First(&e, inv.EnrollmentID).Error; err != nil {
			return nil, apperr.FromDB(err, "Enrollment", apperr.Ctx("enrollmentId", inv.EnrollmentID))
		}
		if e.UserID != actor.UserID {
			return nil, apperr.Forbidden("You do not have access to this invoice", apperr.Ctx("invoiceId", id))
		}
	}
	return &inv, nil
}

// Verify records a payment: the invoice becomes Verified and its unpaid
// enrollment starts.
func (s *InvoiceService) Verify(ctx context.Context, id uint) (*models.Invoice, error) {
	now := s.now().UTC()
	var inv models.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&inv, id).Error; err != nil {
			return apperr.FromDB(err, "Invoice", apperr.Ctx("invoiceId", id))
		}
		if inv.Status != models.InvoiceUnverified {
			return apperr.Validation("Invoice is not awaiting payment", apperr.Ctx("status", inv.Status))
		}
		if inv.PaymentDueDatetime != nil && !inv.PaymentDueDatetime.After(now) {
			return apperr.Validation("Invoice payment window has passed",
				apperr.Ctx("paymentDueDatetime", inv.PaymentDueDatetime.Format(time.RFC3339)))
		}

		if err := tx.Model(&inv).Update("status", models.InvoiceVerified).Error; err != nil {
			return err
		}
		return tx.Model(&models.Enrollment{}).
			Where("id = ? AND status = ?", inv.EnrollmentID, models.EnrollmentUnpaid).
			Update("status", models.EnrollmentInProgress).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "Invoice")
	}

	s.log.Infow("[INVOICE] Verified", "invoiceId", inv.ID, "enrollmentId", inv.EnrollmentID)
	return &inv, nil
}
