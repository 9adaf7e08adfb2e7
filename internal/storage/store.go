// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/invoicer/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write would break a relational constraint,
	// such as deleting a customer that still has invoices.
	ErrConflict = errors.New("record conflicts with existing data")
)

// DefaultLimit is the page size used when none is given.
const DefaultLimit = 100

// Page selects a window of a listing.
type Page struct {
	Skip  int
	Limit int
}

// Normalize fills in defaults for a zero or out of range page.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 || p.Limit > DefaultLimit {
		p.Limit = DefaultLimit
	}
	return p
}

// CustomerFilter narrows a customer listing. An empty UserID lists every owner.
type CustomerFilter struct {
	UserID string
	Page
}

// InvoiceFilter narrows an invoice listing. Empty fields are not applied.
type InvoiceFilter struct {
	UserID     string
	CustomerID string
	Status     models.InvoiceStatus
	Page
}

// PaymentFilter narrows a payment listing. Empty fields are not applied.
type PaymentFilter struct {
	UserID    string
	InvoiceID string
	Page
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, page Page) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// CustomerStore persists customers.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context, filter CustomerFilter) ([]*models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
}

// InvoiceStore persists invoices and their items. Every item mutation
// recomputes the parent invoice total in the same transaction.
type InvoiceStore interface {
	// CreateInvoice persists the invoice together with invoice.Items.
	// IDs, line totals and the invoice total are filled in by the store.
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error

	// GetInvoice retrieves an invoice with its customer and items.
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)

	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*models.Invoice, error)

	// UpdateInvoice saves customer, status, date and paid flag. The total is not written.
	UpdateInvoice(ctx context.Context, invoice *models.Invoice) error

	DeleteInvoice(ctx context.Context, id string) error

	GetInvoiceItem(ctx context.Context, id string) (*models.InvoiceItem, error)
	ListInvoiceItems(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error)
	CreateInvoiceItem(ctx context.Context, item *models.InvoiceItem) error
	UpdateInvoiceItem(ctx context.Context, item *models.InvoiceItem) error
	DeleteInvoiceItem(ctx context.Context, id string) error
}

// PaymentStore persists payments. Every payment mutation re-settles the
// parent invoice in the same transaction.
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]*models.Payment, error)
	UpdatePayment(ctx context.Context, payment *models.Payment) error
	DeletePayment(ctx context.Context, id string) error
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	CustomerStore
	InvoiceStore
	PaymentStore

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
