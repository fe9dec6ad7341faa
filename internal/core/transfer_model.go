package core

import "time"

type TransferStatus string

const (
	TransferPending  TransferStatus = "PENDING"
	TransferApproved TransferStatus = "APPROVED"
	TransferDenied   TransferStatus = "DENIED"
)

// Terminal reports whether the status admits no further transitions.
func (s TransferStatus) Terminal() bool {
	return s == TransferApproved || s == TransferDenied
}

// StockTransfer is a request to move stock between branches.
// ItemName and SKU are copied from the origin item at creation so the ledger
// row stays readable even if the item is later renamed or deleted.
type StockTransfer struct {
	ID                  int            `json:"id"`
	OriginBranchID      int            `json:"origin_branch_id"`
	DestinationBranchID int            `json:"destination_branch_id"`
	ItemID              int            `json:"item_id"`
	ItemName            string         `json:"item_name"`
	SKU                 string         `json:"sku"`
	Quantity            int            `json:"quantity"`
	Status              TransferStatus `json:"status"`
	CreatedAt           time.Time      `json:"created_at"`
	ResolvedAt          *time.Time     `json:"resolved_at,omitempty"`
}
