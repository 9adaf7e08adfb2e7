package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/models"
)

// PaymentLine is the part of a payment that matters for settlement.
type PaymentLine struct {
	Amount decimal.Decimal
	Status models.PaymentStatus
}

// Settled is the payment position of an invoice.
type Settled struct {
	// Completed is the sum of completed payments.
	Completed decimal.Decimal

	// Outstanding is total minus completed, never below zero.
	Outstanding decimal.Decimal

	// Paid is true when a positive total is covered by completed payments.
	Paid bool
}

// Settle computes the payment position of an invoice with the given total.
// Pending, failed and refunded payments are ignored.
func Settle(total decimal.Decimal, payments []PaymentLine) Settled {
	completed := decimal.Zero
	for _, p := range payments {
		if p.Status == models.PaymentStatusCompleted {
			completed = completed.Add(p.Amount)
		}
	}
	completed = Money(completed)

	outstanding := total.Sub(completed)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	return Settled{
		Completed:   completed,
		Outstanding: Money(outstanding),
		Paid:        total.IsPositive() && completed.GreaterThanOrEqual(total),
	}
}
