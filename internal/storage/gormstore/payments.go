package gormstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// CreatePayment records a payment and re-settles its invoice.
func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.Date.IsZero() {
		payment.Date = now()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	payment.Amount = calculator.Money(payment.Amount)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireInvoice(tx, payment.InvoiceID); err != nil {
			return err
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to insert payment: %w", translateError(err))
		}
		return settle(tx, payment.InvoiceID)
	})
}

// GetPayment retrieves a payment by ID.
func (s *Store) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment := &models.Payment{}
	if err := s.db.WithContext(ctx).First(payment, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", translateError(err))
	}
	return payment, nil
}

// ListPayments retrieves payments matching the filter.
func (s *Store) ListPayments(ctx context.Context, filter storage.PaymentFilter) ([]*models.Payment, error) {
	page := filter.Page.Normalize()

	q := s.db.WithContext(ctx).Model(&models.Payment{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.InvoiceID != "" {
		q = q.Where("invoice_id = ?", filter.InvoiceID)
	}

	var payments []*models.Payment
	err := q.Order("created_at ASC, id ASC").Offset(page.Skip).Limit(page.Limit).Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// UpdatePayment saves a payment and re-settles the affected invoices. When
// the payment moves to another invoice both invoices are re-settled.
func (s *Store) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	payment.Amount = calculator.Money(payment.Amount)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := &models.Payment{}
		if err := tx.Select("id", "invoice_id").First(existing, "id = ?", payment.ID).Error; err != nil {
			return fmt.Errorf("failed to get payment: %w", translateError(err))
		}
		if payment.InvoiceID == "" {
			payment.InvoiceID = existing.InvoiceID
		}
		if payment.InvoiceID != existing.InvoiceID {
			if err := requireInvoice(tx, payment.InvoiceID); err != nil {
				return err
			}
		}

		err := tx.Model(&models.Payment{ID: payment.ID}).
			Select("invoice_id", "date", "amount", "method", "status").
			Updates(&models.Payment{
				InvoiceID: payment.InvoiceID,
				Date:      payment.Date,
				Amount:    payment.Amount,
				Method:    payment.Method,
				Status:    payment.Status,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update payment: %w", translateError(err))
		}

		if payment.InvoiceID != existing.InvoiceID {
			if err := settle(tx, existing.InvoiceID); err != nil {
				return err
			}
		}
		return settle(tx, payment.InvoiceID)
	})
}

// DeletePayment removes a payment and re-settles its invoice.
func (s *Store) DeletePayment(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment := &models.Payment{}
		if err := tx.Select("id", "invoice_id").First(payment, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to get payment: %w", translateError(err))
		}
		if err := tx.Delete(&models.Payment{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete payment: %w", translateError(err))
		}
		return settle(tx, payment.InvoiceID)
	})
}

// settle compares the invoice total with its completed payments. A covered
// invoice is marked paid; a paid invoice that is no longer covered goes back
// to sent. An is_paid flag set by hand on an unpaid-status invoice is kept.
func settle(tx *gorm.DB, invoiceID string) error {
	invoice := &models.Invoice{}
	err := tx.Select("id", "status", "total_amount", "is_paid").First(invoice, "id = ?", invoiceID).Error
	if err != nil {
		return fmt.Errorf("failed to load invoice for settlement: %w", translateError(err))
	}

	var payments []models.Payment
	if err := tx.Select("amount", "status").Where("invoice_id = ?", invoiceID).Find(&payments).Error; err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}

	lines := make([]calculator.PaymentLine, len(payments))
	for i, p := range payments {
		lines[i] = calculator.PaymentLine{Amount: p.Amount, Status: p.Status}
	}
	settled := calculator.Settle(invoice.TotalAmount, lines)

	status, isPaid := invoice.Status, invoice.IsPaid
	switch {
	case settled.Paid:
		status, isPaid = models.InvoiceStatusPaid, true
	case invoice.Status == models.InvoiceStatusPaid:
		status, isPaid = models.InvoiceStatusSent, false
	}
	if status == invoice.Status && isPaid == invoice.IsPaid {
		return nil
	}

	err = tx.Model(&models.Invoice{ID: invoiceID}).
		Select("status", "is_paid").
		Updates(&models.Invoice{Status: status, IsPaid: isPaid}).Error
	if err != nil {
		return fmt.Errorf("failed to settle invoice: %w", err)
	}
	return nil
}
