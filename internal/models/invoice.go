package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a bill addressed to a customer.
type Invoice struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// UserID is the owner of the invoice.
	UserID string `gorm:"size:36;index;not null" json:"user_id"`

	CustomerID string        `gorm:"size:36;index;not null" json:"customer_id"`
	Date       time.Time     `gorm:"not null" json:"date"`
	Status     InvoiceStatus `gorm:"size:20;not null;default:draft" json:"status"`

	// TotalAmount is the sum of the item totals. It is recomputed on every
	// item mutation and is never set directly.
	TotalAmount decimal.Decimal `gorm:"not null" json:"total_amount"`

	IsPaid bool `gorm:"not null;default:false" json:"is_paid"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
}

// InvoiceItem is a single line on an invoice.
type InvoiceItem struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	InvoiceID   string          `gorm:"size:36;index;not null" json:"invoice_id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"not null" json:"unit_price"`

	// Total is Quantity × UnitPrice.
	Total decimal.Decimal `gorm:"not null" json:"total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
