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

// GetInvoiceItem retrieves a single invoice item by ID.
func (s *Store) GetInvoiceItem(ctx context.Context, id string) (*models.InvoiceItem, error) {
	item := &models.InvoiceItem{}
	if err := s.db.WithContext(ctx).First(item, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get invoice item: %w", translateError(err))
	}
	return item, nil
}

// ListInvoiceItems retrieves the items of an invoice in creation order.
func (s *Store) ListInvoiceItems(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error) {
	items := []models.InvoiceItem{}
	err := s.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice items: %w", err)
	}
	return items, nil
}

// CreateInvoiceItem adds an item to an existing invoice and recomputes the
// invoice total.
func (s *Store) CreateInvoiceItem(ctx context.Context, item *models.InvoiceItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.UnitPrice = calculator.Money(item.UnitPrice)
	item.Total = calculator.LineTotal(item.Quantity, item.UnitPrice)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireInvoice(tx, item.InvoiceID); err != nil {
			return err
		}
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("failed to insert invoice item: %w", translateError(err))
		}
		return recomputeTotal(tx, item.InvoiceID)
	})
}

// UpdateInvoiceItem saves description, quantity and unit price of an item
// and recomputes the invoice total. The item keeps its invoice.
func (s *Store) UpdateInvoiceItem(ctx context.Context, item *models.InvoiceItem) error {
	item.UnitPrice = calculator.Money(item.UnitPrice)
	item.Total = calculator.LineTotal(item.Quantity, item.UnitPrice)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := &models.InvoiceItem{}
		if err := tx.Select("id", "invoice_id").First(existing, "id = ?", item.ID).Error; err != nil {
			return fmt.Errorf("failed to get invoice item: %w", translateError(err))
		}
		item.InvoiceID = existing.InvoiceID

		err := tx.Model(&models.InvoiceItem{ID: item.ID}).
			Select("description", "quantity", "unit_price", "total").
			Updates(&models.InvoiceItem{
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Total:       item.Total,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update invoice item: %w", translateError(err))
		}
		return recomputeTotal(tx, item.InvoiceID)
	})
}

// DeleteInvoiceItem removes an item and recomputes the invoice total.
// Removing the last item drives the total to zero.
func (s *Store) DeleteInvoiceItem(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := &models.InvoiceItem{}
		if err := tx.Select("id", "invoice_id").First(item, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to get invoice item: %w", translateError(err))
		}
		if err := tx.Delete(&models.InvoiceItem{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete invoice item: %w", translateError(err))
		}
		return recomputeTotal(tx, item.InvoiceID)
	})
}

// requireInvoice returns storage.ErrNotFound when the invoice does not exist.
func requireInvoice(tx *gorm.DB, invoiceID string) error {
	var count int64
	if err := tx.Model(&models.Invoice{}).Where("id = ?", invoiceID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check invoice existence: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("invoice %s: %w", invoiceID, storage.ErrNotFound)
	}
	return nil
}
