package models

import "time"

// Customer is a party that invoices are addressed to.
type Customer struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// UserID is the owner of this customer record.
	UserID string `gorm:"size:36;index;not null" json:"user_id"`

	Name  string       `gorm:"size:100;not null" json:"name"`
	Email string       `gorm:"size:100;not null" json:"email"`
	Phone *string      `gorm:"size:20" json:"phone"`
	Type  CustomerType `gorm:"size:20;not null;default:customer" json:"type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
