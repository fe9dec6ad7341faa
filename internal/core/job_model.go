package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type JobStatus string

const (
	JobQuoted    JobStatus = "Quoted"
	JobInPress   JobStatus = "In-Press"
	JobReady     JobStatus = "Ready"
	JobCompleted JobStatus = "Completed"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "Unpaid"
	PaymentPartial PaymentStatus = "Partially Paid"
	PaymentPaid    PaymentStatus = "Paid"
)

// JobSpecs describe the print run being quoted.
type JobSpecs struct {
	ServiceType string `json:"service_type"`
	Quantity    int    `json:"quantity"`
	PageSize    string `json:"page_size"`
	GSM         *int   `json:"gsm,omitempty"`
}

// JobPricing is the cost build-up for a job quote.
// Subtotal and Total are derived; see ComputeJobPricing.
type JobPricing struct {
	MaterialCost decimal.Decimal `json:"material_cost"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	Overhead     decimal.Decimal `json:"overhead"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Markup       decimal.Decimal `json:"markup"` // fraction, e.g. 0.25 for 25%
	Total        decimal.Decimal `json:"total"`
}

// JobMaterial is one material line consumed when the job goes to press.
type JobMaterial struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

type Job struct {
	ID             int             `json:"id"`
	BranchID       int             `json:"branch_id"`
	CustomerID     *int            `json:"customer_id,omitempty"`
	CustomerName   string          `json:"customer_name"`
	CustomerEmail  *string         `json:"customer_email,omitempty"`
	CustomerPhone  *string         `json:"customer_phone,omitempty"`
	Specs          JobSpecs        `json:"specs"`
	Status         JobStatus       `json:"status"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	Pricing        JobPricing      `json:"pricing"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Materials      []JobMaterial   `json:"materials,omitempty"`
	CompletionNote *string         `json:"completion_note,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
