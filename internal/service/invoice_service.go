package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// ItemInput is one line of an invoice.
type ItemInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// ItemUpdate carries the item fields to change; nil fields are left as they are.
type ItemUpdate struct {
	Description *string
	Quantity    *int
	UnitPrice   *decimal.Decimal
}

// InvoiceInput is the data for a new invoice. Date defaults to now and
// Status to draft.
type InvoiceInput struct {
	CustomerID string
	Date       *time.Time
	Status     models.InvoiceStatus
	Items      []ItemInput
}

// InvoiceUpdate carries the invoice fields to change. There is no total:
// it always follows the items.
type InvoiceUpdate struct {
	CustomerID *string
	Date       *time.Time
	Status     *models.InvoiceStatus
	IsPaid     *bool
}

// InvoiceListOptions narrows an invoice listing.
type InvoiceListOptions struct {
	CustomerID string
	Status     models.InvoiceStatus
	storage.Page
}

// InvoiceService manages invoices and their items.
type InvoiceService struct {
	store storage.Store
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(store storage.Store) *InvoiceService {
	return &InvoiceService{store: store}
}

// Create adds an invoice owned by the requester for a customer the requester
// may access.
func (s *InvoiceService) Create(ctx context.Context, requester *models.User, in InvoiceInput) (*models.Invoice, error) {
	if err := requireUser(requester); err != nil {
		return nil, err
	}
	slog.Info("CreateInvoice request received",
		"user_id", requester.ID,
		"customer_id", in.CustomerID,
		"items_count", len(in.Items),
	)

	if err := s.checkCustomer(ctx, requester, in.CustomerID); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.InvoiceStatusDraft
	}
	if !in.Status.Valid() {
		return nil, invalidf("unknown invoice status %q", in.Status)
	}

	invoice := &models.Invoice{
		UserID:     requester.ID,
		CustomerID: in.CustomerID,
		Status:     in.Status,
		Items:      make([]models.InvoiceItem, 0, len(in.Items)),
	}
	if in.Date != nil {
		invoice.Date = in.Date.UTC()
	}
	for i, item := range in.Items {
		item, err := prepareItem(item)
		if err != nil {
			return nil, invalidf("item %d: %v", i, err)
		}
		invoice.Items = append(invoice.Items, models.InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	if err := checkTotal(invoice.Items); err != nil {
		return nil, err
	}

	if err := s.store.CreateInvoice(ctx, invoice); err != nil {
		slog.Error("CreateInvoice failed", "error", err)
		return nil, err
	}

	slog.Info("Invoice created", "invoice_id", invoice.ID, "total", invoice.TotalAmount)
	return s.store.GetInvoice(ctx, invoice.ID)
}

// List returns the requester's invoices, or every invoice for a super-admin.
func (s *InvoiceService) List(ctx context.Context, requester *models.User, opts InvoiceListOptions) ([]*models.Invoice, error) {
	if err := requireUser(requester); err != nil {
		return nil, err
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, invalidf("unknown invoice status %q", opts.Status)
	}

	invoices, err := s.store.ListInvoices(ctx, storage.InvoiceFilter{
		UserID:     ownerScope(requester),
		CustomerID: opts.CustomerID,
		Status:     opts.Status,
		Page:       opts.Page,
	})
	if err != nil {
		slog.Error("ListInvoices failed", "error", err)
		return nil, err
	}

	slog.Info("ListInvoices successful", "count", len(invoices))
	return invoices, nil
}

// Get returns an invoice the requester may access.
func (s *InvoiceService) Get(ctx context.Context, requester *models.User, id string) (*models.Invoice, error) {
	invoice, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(requester, invoice.UserID); err != nil {
		slog.Warn("GetInvoice denied", "invoice_id", id, "error", err)
		return nil, err
	}
	return invoice, nil
}

// Update changes customer, date, status or paid flag of an invoice.
func (s *InvoiceService) Update(ctx context.Context, requester *models.User, id string, in InvoiceUpdate) (*models.Invoice, error) {
	invoice, err := s.Get(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateInvoice request received", "invoice_id", id)

	if in.CustomerID != nil && *in.CustomerID != invoice.CustomerID {
		if err := s.checkCustomer(ctx, requester, *in.CustomerID); err != nil {
			return nil, err
		}
		invoice.CustomerID = *in.CustomerID
	}
	if in.Date != nil {
		invoice.Date = in.Date.UTC()
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, invalidf("unknown invoice status %q", *in.Status)
		}
		invoice.Status = *in.Status
	}
	if in.IsPaid != nil {
		invoice.IsPaid = *in.IsPaid
	}

	if err := s.store.UpdateInvoice(ctx, invoice); err != nil {
		slog.Error("UpdateInvoice failed", "invoice_id", id, "error", err)
		return nil, err
	}

	slog.Info("Invoice updated", "invoice_id", id)
	return s.store.GetInvoice(ctx, id)
}

// Delete removes an invoice with its items and payments.
func (s *InvoiceService) Delete(ctx context.Context, requester *models.User, id string) error {
	if _, err := s.Get(ctx, requester, id); err != nil {
		return err
	}
	if err := s.store.DeleteInvoice(ctx, id); err != nil {
		slog.Error("DeleteInvoice failed", "invoice_id", id, "error", err)
		return err
	}

	slog.Info("Invoice deleted", "invoice_id", id)
	return nil
}

// AddItem appends an item to an invoice; the invoice total follows.
func (s *InvoiceService) AddItem(ctx context.Context, requester *models.User, invoiceID string, in ItemInput) (*models.InvoiceItem, error) {
	invoice, err := s.Get(ctx, requester, invoiceID)
	if err != nil {
		return nil, err
	}
	in, err = prepareItem(in)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	item := &models.InvoiceItem{
		InvoiceID:   invoiceID,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
	}
	if err := checkTotal(append(invoice.Items, *item)); err != nil {
		return nil, err
	}
	if err := s.store.CreateInvoiceItem(ctx, item); err != nil {
		slog.Error("AddInvoiceItem failed", "invoice_id", invoiceID, "error", err)
		return nil, err
	}

	slog.Info("Invoice item added", "invoice_id", invoiceID, "item_id", item.ID, "total", item.Total)
	return s.store.GetInvoiceItem(ctx, item.ID)
}

// ListItems returns the items of an invoice.
func (s *InvoiceService) ListItems(ctx context.Context, requester *models.User, invoiceID string) ([]models.InvoiceItem, error) {
	if _, err := s.Get(ctx, requester, invoiceID); err != nil {
		return nil, err
	}
	return s.store.ListInvoiceItems(ctx, invoiceID)
}

// UpdateItem changes an item of an invoice; the invoice total follows.
func (s *InvoiceService) UpdateItem(ctx context.Context, requester *models.User, invoiceID, itemID string, in ItemUpdate) (*models.InvoiceItem, error) {
	item, err := s.item(ctx, requester, invoiceID, itemID)
	if err != nil {
		return nil, err
	}

	next := ItemInput{Description: item.Description, Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	if in.Description != nil {
		next.Description = *in.Description
	}
	if in.Quantity != nil {
		next.Quantity = *in.Quantity
	}
	if in.UnitPrice != nil {
		next.UnitPrice = *in.UnitPrice
	}
	next, err = prepareItem(next)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	item.Description, item.Quantity, item.UnitPrice = next.Description, next.Quantity, next.UnitPrice

	items, err := s.store.ListInvoiceItems(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = *item
		}
	}
	if err := checkTotal(items); err != nil {
		return nil, err
	}

	if err := s.store.UpdateInvoiceItem(ctx, item); err != nil {
		slog.Error("UpdateInvoiceItem failed", "item_id", itemID, "error", err)
		return nil, err
	}

	slog.Info("Invoice item updated", "invoice_id", invoiceID, "item_id", itemID)
	return s.store.GetInvoiceItem(ctx, itemID)
}

// DeleteItem removes an item of an invoice; the invoice total follows.
func (s *InvoiceService) DeleteItem(ctx context.Context, requester *models.User, invoiceID, itemID string) error {
	if _, err := s.item(ctx, requester, invoiceID, itemID); err != nil {
		return err
	}
	if err := s.store.DeleteInvoiceItem(ctx, itemID); err != nil {
		slog.Error("DeleteInvoiceItem failed", "item_id", itemID, "error", err)
		return err
	}

	slog.Info("Invoice item deleted", "invoice_id", invoiceID, "item_id", itemID)
	return nil
}

// item loads an item after checking access to its invoice. An item of some
// other invoice is reported as not found.
func (s *InvoiceService) item(ctx context.Context, requester *models.User, invoiceID, itemID string) (*models.InvoiceItem, error) {
	if _, err := s.Get(ctx, requester, invoiceID); err != nil {
		return nil, err
	}
	item, err := s.store.GetInvoiceItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.InvoiceID != invoiceID {
		return nil, storage.ErrNotFound
	}
	return item, nil
}

// checkCustomer verifies the customer exists and the requester may bill it.
func (s *InvoiceService) checkCustomer(ctx context.Context, requester *models.User, customerID string) error {
	if customerID == "" {
		return invalidf("customer_id is required")
	}
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	return authorize(requester, customer.UserID)
}

// prepareItem trims and rounds an item, then checks it can be priced. Money
// is rounded before the checks so a price never rounds past a bound.
func prepareItem(in ItemInput) (ItemInput, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.UnitPrice = calculator.Money(in.UnitPrice)
	if in.Description == "" {
		return in, errors.New("description is required")
	}
	return in, calculator.ValidateLine(calculator.Line{Quantity: in.Quantity, UnitPrice: in.UnitPrice})
}

// checkTotal rejects item sets whose total would not fit a stored amount.
func checkTotal(items []models.InvoiceItem) error {
	lines := make([]calculator.Line, len(items))
	for i, item := range items {
		lines[i] = calculator.Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	if err := calculator.ValidateAmount(calculator.InvoiceTotal(lines)); err != nil {
		return invalidf("invoice total: %v", err)
	}
	return nil
}
