package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// PaymentInput is the data for a new payment. Date defaults to now and
// Status to pending.
type PaymentInput struct {
	InvoiceID string
	Date      *time.Time
	Amount    decimal.Decimal
	Method    models.PaymentMethod
	Status    models.PaymentStatus
}

// PaymentUpdate carries the payment fields to change; nil fields are left
// as they are.
type PaymentUpdate struct {
	Date   *time.Time
	Amount *decimal.Decimal
	Method *models.PaymentMethod
	Status *models.PaymentStatus
}

// PaymentListOptions narrows a payment listing.
type PaymentListOptions struct {
	InvoiceID string
	storage.Page
}

// PaymentService records payments against invoices.
type PaymentService struct {
	store storage.Store
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(store storage.Store) *PaymentService {
	return &PaymentService{store: store}
}

// Create records a payment by the requester against an invoice the
// requester may access. A completed payment that covers the invoice marks
// it paid.
func (s *PaymentService) Create(ctx context.Context, requester *models.User, in PaymentInput) (*models.Payment, error) {
	if err := requireUser(requester); err != nil {
		return nil, err
	}
	slog.Info("CreatePayment request received",
		"user_id", requester.ID,
		"invoice_id", in.InvoiceID,
		"amount", in.Amount,
	)

	if in.InvoiceID == "" {
		return nil, invalidf("invoice_id is required")
	}
	invoice, err := s.store.GetInvoice(ctx, in.InvoiceID)
	if err != nil {
		return nil, err
	}
	if err := authorize(requester, invoice.UserID); err != nil {
		slog.Warn("CreatePayment denied", "invoice_id", in.InvoiceID, "error", err)
		return nil, err
	}

	if in.Status == "" {
		in.Status = models.PaymentStatusPending
	}
	in.Amount = calculator.Money(in.Amount)
	if err := validatePayment(in.Amount, in.Method, in.Status); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:    requester.ID,
		InvoiceID: in.InvoiceID,
		Amount:    in.Amount,
		Method:    in.Method,
		Status:    in.Status,
	}
	if in.Date != nil {
		payment.Date = in.Date.UTC()
	}

	if err := s.store.CreatePayment(ctx, payment); err != nil {
		slog.Error("CreatePayment failed", "error", err)
		return nil, err
	}

	slog.Info("Payment created", "payment_id", payment.ID, "invoice_id", payment.InvoiceID)
	return s.store.GetPayment(ctx, payment.ID)
}

// List returns the requester's payments, or every payment for a super-admin.
func (s *PaymentService) List(ctx context.Context, requester *models.User, opts PaymentListOptions) ([]*models.Payment, error) {
	if err := requireUser(requester); err != nil {
		return nil, err
	}

	payments, err := s.store.ListPayments(ctx, storage.PaymentFilter{
		UserID:    ownerScope(requester),
		InvoiceID: opts.InvoiceID,
		Page:      opts.Page,
	})
	if err != nil {
		slog.Error("ListPayments failed", "error", err)
		return nil, err
	}

	slog.Info("ListPayments successful", "count", len(payments))
	return payments, nil
}

// Get returns a payment the requester may access.
func (s *PaymentService) Get(ctx context.Context, requester *models.User, id string) (*models.Payment, error) {
	payment, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(requester, payment.UserID); err != nil {
		slog.Warn("GetPayment denied", "payment_id", id, "error", err)
		return nil, err
	}
	return payment, nil
}

// Update changes date, amount, method or status of a payment. The invoice
// is re-settled afterwards.
func (s *PaymentService) Update(ctx context.Context, requester *models.User, id string, in PaymentUpdate) (*models.Payment, error) {
	payment, err := s.Get(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdatePayment request received", "payment_id", id)

	if in.Date != nil {
		payment.Date = in.Date.UTC()
	}
	if in.Amount != nil {
		payment.Amount = calculator.Money(*in.Amount)
	}
	if in.Method != nil {
		payment.Method = *in.Method
	}
	if in.Status != nil {
		payment.Status = *in.Status
	}
	if err := validatePayment(payment.Amount, payment.Method, payment.Status); err != nil {
		return nil, err
	}

	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		slog.Error("UpdatePayment failed", "payment_id", id, "error", err)
		return nil, err
	}

	slog.Info("Payment updated", "payment_id", id)
	return s.store.GetPayment(ctx, id)
}

// Delete removes a payment. The invoice is re-settled afterwards.
func (s *PaymentService) Delete(ctx context.Context, requester *models.User, id string) error {
	if _, err := s.Get(ctx, requester, id); err != nil {
		return err
	}
	if err := s.store.DeletePayment(ctx, id); err != nil {
		slog.Error("DeletePayment failed", "payment_id", id, "error", err)
		return err
	}

	slog.Info("Payment deleted", "payment_id", id)
	return nil
}

// validatePayment expects the amount already rounded to cents.
func validatePayment(amount decimal.Decimal, method models.PaymentMethod, status models.PaymentStatus) error {
	if !amount.IsPositive() {
		return invalidf("amount must be positive, got %s", amount)
	}
	if err := calculator.ValidateAmount(amount); err != nil {
		return invalidf("%v", err)
	}
	if !method.Valid() {
		return invalidf("unknown payment method %q", method)
	}
	if !status.Valid() {
		return invalidf("unknown payment status %q", status)
	}
	return nil
}
