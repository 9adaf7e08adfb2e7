package gormstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// CreateInvoice persists a new invoice with its items in one transaction.
func (s *Store) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	// Generate IDs if not set
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	if invoice.Date.IsZero() {
		invoice.Date = now()
	}
	if invoice.Status == "" {
		invoice.Status = models.InvoiceStatusDraft
	}

	lines := make([]calculator.Line, len(invoice.Items))
	for i := range invoice.Items {
		item := &invoice.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.InvoiceID = invoice.ID
		item.UnitPrice = calculator.Money(item.UnitPrice)
		item.Total = calculator.LineTotal(item.Quantity, item.UnitPrice)
		lines[i] = calculator.Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	invoice.TotalAmount = calculator.InvoiceTotal(lines)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(invoice).Error; err != nil {
			return fmt.Errorf("failed to insert invoice: %w", translateError(err))
		}
		if len(invoice.Items) > 0 {
			if err := tx.Create(&invoice.Items).Error; err != nil {
				return fmt.Errorf("failed to insert invoice items: %w", translateError(err))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if invoice.Items == nil {
		invoice.Items = []models.InvoiceItem{}
	}
	return nil
}

// GetInvoice retrieves an invoice by ID, including its customer and items.
func (s *Store) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	err := withInvoiceAssociations(s.db.WithContext(ctx)).First(invoice, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", translateError(err))
	}
	normalizeItems(invoice)
	return invoice, nil
}

// ListInvoices retrieves invoices matching the filter, with customers and items.
func (s *Store) ListInvoices(ctx context.Context, filter storage.InvoiceFilter) ([]*models.Invoice, error) {
	page := filter.Page.Normalize()

	q := withInvoiceAssociations(s.db.WithContext(ctx).Model(&models.Invoice{}))
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var invoices []*models.Invoice
	err := q.Order("created_at ASC, id ASC").Offset(page.Skip).Limit(page.Limit).Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	for _, invoice := range invoices {
		normalizeItems(invoice)
	}
	return invoices, nil
}

// UpdateInvoice saves customer, date, status and paid flag. The total is
// owned by the item operations and is left untouched.
func (s *Store) UpdateInvoice(ctx context.Context, invoice *models.Invoice) error {
	res := s.db.WithContext(ctx).
		Model(&models.Invoice{ID: invoice.ID}).
		Select("customer_id", "date", "status", "is_paid").
		Updates(&models.Invoice{
			CustomerID: invoice.CustomerID,
			Date:       invoice.Date,
			Status:     invoice.Status,
			IsPaid:     invoice.IsPaid,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update invoice: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("invoice %s: %w", invoice.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteInvoice removes an invoice; its items and payments cascade.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Invoice{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete invoice: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("invoice %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func withInvoiceAssociations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		})
}

// normalizeItems makes an invoice without items serialize as an empty list.
func normalizeItems(invoice *models.Invoice) {
	if invoice.Items == nil {
		invoice.Items = []models.InvoiceItem{}
	}
}

// recomputeTotal sets the invoice total to the sum of its current items and
// re-settles the invoice against its payments.
func recomputeTotal(tx *gorm.DB, invoiceID string) error {
	var items []models.InvoiceItem
	if err := tx.Select("quantity", "unit_price").Where("invoice_id = ?", invoiceID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load invoice items: %w", err)
	}

	lines := make([]calculator.Line, len(items))
	for i, item := range items {
		lines[i] = calculator.Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}

	err := tx.Model(&models.Invoice{ID: invoiceID}).
		Update("total_amount", calculator.InvoiceTotal(lines)).Error
	if err != nil {
		return fmt.Errorf("failed to update invoice total: %w", err)
	}

	return settle(tx, invoiceID)
}
