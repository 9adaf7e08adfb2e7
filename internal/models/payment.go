package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is money recorded against an invoice.
type Payment struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// UserID is the user who recorded the payment.
	UserID string `gorm:"size:36;index;not null" json:"user_id"`

	InvoiceID string          `gorm:"size:36;index;not null" json:"invoice_id"`
	Date      time.Time       `gorm:"not null" json:"date"`
	Amount    decimal.Decimal `gorm:"not null" json:"amount"`
	Method    PaymentMethod   `gorm:"size:20;not null" json:"method"`
	Status    PaymentStatus   `gorm:"size:20;not null;default:pending" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
