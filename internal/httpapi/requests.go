package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/service"
	"github.com/mmynk/invoicer/internal/storage"
)

// Request bodies. Update bodies use pointers so absent fields stay unchanged.

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email        *string `json:"email" binding:"omitempty,email,max=100"`
	Password     *string `json:"password" binding:"omitempty,min=8,max=72"`
	IsSuperAdmin *bool   `json:"is_super_admin"`
}

func (r updateUserRequest) toUpdate() service.UserUpdate {
	return service.UserUpdate{
		Name:         r.Name,
		Email:        r.Email,
		Password:     r.Password,
		IsSuperAdmin: r.IsSuperAdmin,
	}
}

type createCustomerRequest struct {
	Name  string              `json:"name" binding:"required,min=1,max=100"`
	Email string              `json:"email" binding:"required,email,max=100"`
	Phone *string             `json:"phone" binding:"omitempty,max=20"`
	Type  models.CustomerType `json:"type" binding:"omitempty,oneof=customer client"`
}

func (r createCustomerRequest) toInput() service.CustomerInput {
	return service.CustomerInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Type: r.Type}
}

type updateCustomerRequest struct {
	Name  *string              `json:"name" binding:"omitempty,min=1,max=100"`
	Email *string              `json:"email" binding:"omitempty,email,max=100"`
	Phone *string              `json:"phone" binding:"omitempty,max=20"`
	Type  *models.CustomerType `json:"type" binding:"omitempty,oneof=customer client"`
}

func (r updateCustomerRequest) toUpdate() service.CustomerUpdate {
	return service.CustomerUpdate{Name: r.Name, Email: r.Email, Phone: r.Phone, Type: r.Type}
}

// Bounds match the INTEGER and NUMERIC(14,2) columns the values land in.

type itemRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=255"`
	Quantity    *int            `json:"quantity" binding:"omitempty,min=1,max=2147483647"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"gte=0,lte=999999999999.99"`
}

// toInput defaults a missing quantity to one.
func (r itemRequest) toInput() service.ItemInput {
	quantity := 1
	if r.Quantity != nil {
		quantity = *r.Quantity
	}
	return service.ItemInput{Description: r.Description, Quantity: quantity, UnitPrice: r.UnitPrice}
}

type updateItemRequest struct {
	Description *string          `json:"description" binding:"omitempty,min=1,max=255"`
	Quantity    *int             `json:"quantity" binding:"omitempty,min=1,max=2147483647"`
	UnitPrice   *decimal.Decimal `json:"unit_price" binding:"omitempty,gte=0,lte=999999999999.99"`
}

func (r updateItemRequest) toUpdate() service.ItemUpdate {
	return service.ItemUpdate{Description: r.Description, Quantity: r.Quantity, UnitPrice: r.UnitPrice}
}

type createInvoiceRequest struct {
	CustomerID string               `json:"customer_id" binding:"required"`
	Date       *time.Time           `json:"date"`
	Status     models.InvoiceStatus `json:"status" binding:"omitempty,oneof=draft sent paid overdue cancelled"`
	Items      []itemRequest        `json:"items" binding:"omitempty,dive"`
}

func (r createInvoiceRequest) toInput() service.InvoiceInput {
	items := make([]service.ItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = item.toInput()
	}
	return service.InvoiceInput{CustomerID: r.CustomerID, Date: r.Date, Status: r.Status, Items: items}
}

type updateInvoiceRequest struct {
	CustomerID *string               `json:"customer_id" binding:"omitempty,min=1"`
	Date       *time.Time            `json:"date"`
	Status     *models.InvoiceStatus `json:"status" binding:"omitempty,oneof=draft sent paid overdue cancelled"`
	IsPaid     *bool                 `json:"is_paid"`
}

func (r updateInvoiceRequest) toUpdate() service.InvoiceUpdate {
	return service.InvoiceUpdate{CustomerID: r.CustomerID, Date: r.Date, Status: r.Status, IsPaid: r.IsPaid}
}

type createPaymentRequest struct {
	InvoiceID string               `json:"invoice_id" binding:"required"`
	Date      *time.Time           `json:"date"`
	Amount    decimal.Decimal      `json:"amount" binding:"gt=0,lte=999999999999.99"`
	Method    models.PaymentMethod `json:"method" binding:"required,oneof=cash bank_transfer credit_card paypal check"`
	Status    models.PaymentStatus `json:"status" binding:"omitempty,oneof=pending completed failed refunded"`
}

func (r createPaymentRequest) toInput() service.PaymentInput {
	return service.PaymentInput{
		InvoiceID: r.InvoiceID,
		Date:      r.Date,
		Amount:    r.Amount,
		Method:    r.Method,
		Status:    r.Status,
	}
}

type updatePaymentRequest struct {
	Date   *time.Time            `json:"date"`
	Amount *decimal.Decimal      `json:"amount" binding:"omitempty,gt=0,lte=999999999999.99"`
	Method *models.PaymentMethod `json:"method" binding:"omitempty,oneof=cash bank_transfer credit_card paypal check"`
	Status *models.PaymentStatus `json:"status" binding:"omitempty,oneof=pending completed failed refunded"`
}

func (r updatePaymentRequest) toUpdate() service.PaymentUpdate {
	return service.PaymentUpdate{Date: r.Date, Amount: r.Amount, Method: r.Method, Status: r.Status}
}

// Query parameters.

type pageQuery struct {
	Skip  int `form:"skip" binding:"min=0"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q pageQuery) page() storage.Page {
	return storage.Page{Skip: q.Skip, Limit: q.Limit}
}

type invoiceQuery struct {
	pageQuery
	CustomerID string               `form:"customer_id"`
	Status     models.InvoiceStatus `form:"status" binding:"omitempty,oneof=draft sent paid overdue cancelled"`
}

type paymentQuery struct {
	pageQuery
	InvoiceID string `form:"invoice_id"`
}
