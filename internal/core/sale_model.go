package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxRetail TransactionType = "RETAIL"
	TxJob    TransactionType = "JOB"
)

// Transaction is a payment record. Voided transactions stay in the ledger with
// is_void set and a reason; they are never deleted.
type Transaction struct {
	ID            int             `json:"id"`
	BranchID      int             `json:"branch_id"`
	ReceiptNumber string          `json:"receipt_number"`
	JobID         *int            `json:"job_id,omitempty"`
	Type          TransactionType `json:"type"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentMethod string          `json:"payment_method"`
	IsVoid        bool            `json:"is_void"`
	VoidReason    *string         `json:"void_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SaleLine is one cart line in a retail sale.
type SaleLine struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}
