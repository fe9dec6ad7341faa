package core_test

import (
	"testing"

	"fuppas-erp/internal/core"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestComputeJobPricing(t *testing.T) {
	tests := []struct {
		name      string
		material  string
		labor     string
		overhead  string
		markup    string
		wantTotal string
		expectErr bool
	}{
		{
			name:     "Happy path (25 percent markup)",
			material: "100.00", labor: "50.00", overhead: "10.00", markup: "0.25",
			wantTotal: "200.00",
		},
		{
			name:     "Zero markup",
			material: "80.00", labor: "20.00", overhead: "0.00", markup: "0",
			wantTotal: "100.00",
		},
		{
			name:     "Markup at the cap",
			material: "100.00", labor: "0.00", overhead: "0.00", markup: "0.40",
			wantTotal: "140.00",
		},
		{
			name:     "Markup above the cap",
			material: "100.00", labor: "0.00", overhead: "0.00", markup: "0.41",
			expectErr: true,
		},
		{
			name:     "Negative markup",
			material: "100.00", labor: "0.00", overhead: "0.00", markup: "-0.10",
			expectErr: true,
		},
		{
			name:     "Negative material cost",
			material: "-1.00", labor: "0.00", overhead: "0.00", markup: "0.10",
			expectErr: true,
		},
		{
			name:     "Total rounds to two places",
			material: "33.33", labor: "33.33", overhead: "33.33", markup: "0.10",
			wantTotal: "109.99", // 99.99 * 1.10 = 109.989 -> 109.99
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pricing, err := core.ComputeJobPricing(d(tc.material), d(tc.labor), d(tc.overhead), d(tc.markup))
			if tc.expectErr {
				if err == nil {
					t.Fatalf("expected error, got pricing %+v", pricing)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !pricing.Total.Equal(d(tc.wantTotal)) {
				t.Errorf("total = %s, want %s", pricing.Total, tc.wantTotal)
			}
			wantSubtotal := d(tc.material).Add(d(tc.labor)).Add(d(tc.overhead))
			if !pricing.Subtotal.Equal(wantSubtotal) {
				t.Errorf("subtotal = %s, want %s", pricing.Subtotal, wantSubtotal)
			}
		})
	}
}

func TestNextJobStatus(t *testing.T) {
	tests := []struct {
		name      string
		current   core.JobStatus
		next      core.JobStatus
		expectErr bool
	}{
		{"Quoted to In-Press", core.JobQuoted, core.JobInPress, false},
		{"In-Press to Ready", core.JobInPress, core.JobReady, false},
		{"Ready to Completed", core.JobReady, core.JobCompleted, false},
		{"Skipping a stage", core.JobQuoted, core.JobReady, true},
		{"Going backwards", core.JobReady, core.JobInPress, true},
		{"Repeating the current stage", core.JobInPress, core.JobInPress, true},
		{"Past Completed", core.JobCompleted, core.JobQuoted, true},
		{"Unknown status", core.JobStatus("Archived"), core.JobCompleted, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := core.NextJobStatus(tc.current, tc.next)
			if tc.expectErr && err == nil {
				t.Errorf("expected error for %s -> %s, got nil", tc.current, tc.next)
			}
			if !tc.expectErr && err != nil {
				t.Errorf("unexpected error for %s -> %s: %v", tc.current, tc.next, err)
			}
		})
	}
}

func TestRollPaymentStatus(t *testing.T) {
	tests := []struct {
		name  string
		paid  string
		total string
		want  core.PaymentStatus
	}{
		{"Nothing paid", "0", "150.00", core.PaymentUnpaid},
		{"Part paid", "50.00", "150.00", core.PaymentPartial},
		{"Fully paid", "150.00", "150.00", core.PaymentPaid},
		{"Overpaid still reads paid", "200.00", "150.00", core.PaymentPaid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := core.RollPaymentStatus(d(tc.paid), d(tc.total))
			if got != tc.want {
				t.Errorf("RollPaymentStatus(%s, %s) = %s, want %s", tc.paid, tc.total, got, tc.want)
			}
		})
	}
}
