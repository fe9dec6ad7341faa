package app

import (
	"github.com/shopspring/decimal"

	"fuppas-erp/internal/core"
)

// CreateBranchRequest is the input for registering a new branch.
type CreateBranchRequest struct {
	Name         string
	Address      string
	BranchNumber string
	BranchEmail  string
}

// CreateManagerRequest is the input for creating a manager account.
type CreateManagerRequest struct {
	Name     string
	Username string
	Password string
	Role     string // "owner" or "manager"
	BranchID *int
}

// CreateItemRequest is the input for adding an inventory item to a branch.
type CreateItemRequest struct {
	BranchID     int
	SKU          string
	Name         string
	Category     string
	ItemType     string
	StockLevel   int
	ReorderPoint int
	UnitCost     decimal.Decimal
	RetailPrice  *decimal.Decimal
}

// TransferRequest is the input for opening a stock transfer request.
type TransferRequest struct {
	OriginBranchID      int
	DestinationBranchID int
	ItemID              int
	Quantity            int
}

// CreateJobRequest is the input for quoting a new printing job.
type CreateJobRequest struct {
	BranchID      int
	CustomerID    *int
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ServiceType   string
	Quantity      int
	PageSize      string
	GSM           *int
	MaterialCost  decimal.Decimal
	LaborCost     decimal.Decimal
	Overhead      decimal.Decimal
	Markup        decimal.Decimal
	Materials     []core.JobMaterial
}

// RecordSaleRequest is the input for a retail point-of-sale transaction.
type RecordSaleRequest struct {
	BranchID      int
	Lines         []core.SaleLine
	PaymentMethod string
}

// CreateCustomerRequest is the input for adding a CRM customer.
type CreateCustomerRequest struct {
	BranchID int
	Name     string
	Email    string
	Phone    string
	Address  string
}
