package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MarkupMax caps the markup fraction applied to a job quote (40%).
var MarkupMax = decimal.NewFromFloat(0.40)

// ComputeJobPricing derives Subtotal and Total from the cost components:
//
//	subtotal = material + labor + overhead
//	total    = subtotal * (1 + markup)
//
// Costs must be non-negative and markup must lie in [0, MarkupMax].
func ComputeJobPricing(material, labor, overhead, markup decimal.Decimal) (JobPricing, error) {
	if material.IsNegative() {
		return JobPricing{}, fmt.Errorf("material cost cannot be negative, got %s", material)
	}
	if labor.IsNegative() {
		return JobPricing{}, fmt.Errorf("labor cost cannot be negative, got %s", labor)
	}
	if overhead.IsNegative() {
		return JobPricing{}, fmt.Errorf("overhead cannot be negative, got %s", overhead)
	}
	if markup.IsNegative() {
		return JobPricing{}, fmt.Errorf("markup cannot be negative, got %s", markup)
	}
	if markup.GreaterThan(MarkupMax) {
		return JobPricing{}, fmt.Errorf("markup %s exceeds maximum %s", markup, MarkupMax)
	}

	subtotal := material.Add(labor).Add(overhead)
	total := subtotal.Mul(decimal.NewFromInt(1).Add(markup)).Round(2)

	return JobPricing{
		MaterialCost: material,
		LaborCost:    labor,
		Overhead:     overhead,
		Subtotal:     subtotal,
		Markup:       markup,
		Total:        total,
	}, nil
}

// NextJobStatus validates a forward-only status transition.
// Quoted -> In-Press -> Ready -> Completed; no skips, no reversals.
func NextJobStatus(current, next JobStatus) error {
	order := map[JobStatus]int{
		JobQuoted:    0,
		JobInPress:   1,
		JobReady:     2,
		JobCompleted: 3,
	}
	cur, ok := order[current]
	if !ok {
		return fmt.Errorf("unknown job status %q", current)
	}
	nxt, ok := order[next]
	if !ok {
		return fmt.Errorf("unknown job status %q", next)
	}
	if nxt != cur+1 {
		return fmt.Errorf("invalid job status transition %s -> %s", current, next)
	}
	return nil
}

// RollPaymentStatus returns the payment status implied by amountPaid vs total.
func RollPaymentStatus(amountPaid, total decimal.Decimal) PaymentStatus {
	switch {
	case amountPaid.LessThanOrEqual(decimal.Zero):
		return PaymentUnpaid
	case amountPaid.GreaterThanOrEqual(total):
		return PaymentPaid
	default:
		return PaymentPartial
	}
}
