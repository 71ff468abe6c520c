package utils

import (
	"context"
	"fmt"
	"time"

	"elearning/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceSweeper expires unpaid invoices whose payment window has passed,
// together with their enrollments.
type InvoiceSweeper struct {
	db        *gorm.DB
	log       *zap.SugaredLogger
	now       func() time.Time
	scheduler *Scheduler
}

func NewInvoiceSweeper(db *gorm.DB, log *zap.SugaredLogger, now func() time.Time, spec string) (*InvoiceSweeper, error) {
	if now == nil {
		now = time.Now
	}
	s := &InvoiceSweeper{
		db:        db,
		log:       log,
		now:       now,
		scheduler: NewScheduler("INVOICE-SWEEPER", log),
	}
	if err := s.scheduler.AddJob("expire-invoices", spec, s.Tick); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *InvoiceSweeper) Start() error {
	return s.scheduler.Start()
}

func (s *InvoiceSweeper) Stop() {
	s.scheduler.Stop()
}

func (s *InvoiceSweeper) Running() bool {
	return s.scheduler.Running()
}

// Tick runs one sweep, logging the outcome. It never panics.
func (s *InvoiceSweeper) Tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("[INVOICE-SWEEPER] Sweep panicked", "panic", r)
		}
	}()

	n, err := s.Sweep(ctx)
	if err != nil {
		s.log.Errorw("[INVOICE-SWEEPER] Sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Infow("[INVOICE-SWEEPER] Expired overdue invoices", "count", n)
	}
}

// Sweep expires every Unverified invoice due at or before now, marks the
// linked enrollments Expired and soft-deletes them, all in one transaction.
// It returns the number of invoices expired.
func (s *InvoiceSweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().UTC()
	expired := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoices []models.Invoice
		if err := tx.
			Where("status = ? AND payment_due_datetime IS NOT NULL AND payment_due_datetime <= ?", models.InvoiceUnverified, cutoff).
			Find(&invoices).Error; err != nil {
			return fmt.Errorf("find overdue invoices: %w", err)
		}
		if len(invoices) == 0 {
			return nil
		}

		enrollmentIDs := make([]uint, 0, len(invoices))
		for _, inv := range invoices {
			// A payment verified after the read must win, so only rows still
			// Unverified are expired.
			res := tx.Model(&models.Invoice{}).
				Where("id = ? AND status = ?", inv.ID, models.InvoiceUnverified).
				Update("status", models.InvoiceExpired)
			if res.Error != nil {
				return fmt.Errorf("expire invoice %d: %w", inv.ID, res.Error)
			}
			if res.RowsAffected == 1 {
				enrollmentIDs = append(enrollmentIDs, inv.EnrollmentID)
			}
		}
		if len(enrollmentIDs) == 0 {
			return nil
		}

		if err := tx.Model(&models.Enrollment{}).Where("id IN ?", enrollmentIDs).
			Update("status", models.EnrollmentExpired).Error; err != nil {
			return fmt.Errorf("expire enrollments: %w", err)
		}
		if err := tx.Where("id IN ?", enrollmentIDs).Delete(&models.Enrollment{}).Error; err != nil {
			return fmt.Errorf("delete enrollments: %w", err)
		}

		expired = len(enrollmentIDs)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
