// Package calculator holds the money arithmetic of the invoicing domain.
// All functions are pure; persistence and rounding of stored values happen
// in the callers.
package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places money is kept at.
const Places = 2

// MaxQuantity is the largest quantity a line may carry; quantities are
// stored as 32-bit integers.
const MaxQuantity = math.MaxInt32

// MaxAmount is the largest money value that fits the NUMERIC(14,2) columns.
var MaxAmount = decimal.New(1, 12).Sub(decimal.New(1, -Places))

// Line represents a single invoice line for total computation.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Money rounds an amount to Places decimal places.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// LineTotal computes quantity × unit price.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return Money(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// InvoiceTotal sums the line totals of the given lines.
// An invoice with no lines totals zero.
func InvoiceTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	return Money(total)
}

// ValidateLine checks that a line can be priced and stored. The unit price
// is checked as given, so round it with Money first.
func ValidateLine(l Line) error {
	if l.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", l.Quantity)
	}
	if l.Quantity > MaxQuantity {
		return fmt.Errorf("quantity must be at most %d, got %d", MaxQuantity, l.Quantity)
	}
	if l.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price cannot be negative, got %s", l.UnitPrice)
	}
	if l.UnitPrice.GreaterThan(MaxAmount) {
		return fmt.Errorf("unit price must be at most %s, got %s", MaxAmount, l.UnitPrice)
	}
	return ValidateAmount(LineTotal(l.Quantity, l.UnitPrice))
}

// ValidateAmount checks that a computed total can be stored.
func ValidateAmount(d decimal.Decimal) error {
	if d.GreaterThan(MaxAmount) {
		return fmt.Errorf("amount must be at most %s, got %s", MaxAmount, d)
	}
	return nil
}
