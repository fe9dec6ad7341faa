package app

import (
	"context"

	"fuppas-erp/internal/core"

	"github.com/shopspring/decimal"
)

// ApplicationService is the single interface the web adapter calls.
// It decouples presentation from business logic. Implementations must contain
// no HTTP types and no display logic of any kind.
type ApplicationService interface {
	// AuthenticateManager verifies credentials and returns a session on success.
	AuthenticateManager(ctx context.Context, username, password string) (*ManagerSession, error)

	// GetManager returns a manager's profile by ID, without the password hash.
	GetManager(ctx context.Context, managerID int) (*ManagerResult, error)

	// Branch directory.
	ListBranches(ctx context.Context) ([]core.Branch, error)
	CreateBranch(ctx context.Context, req CreateBranchRequest, actorID int) (*core.Branch, error)
	UpdateBranch(ctx context.Context, b core.Branch, actorID int) (*core.Branch, error)
	DeactivateBranch(ctx context.Context, branchID, actorID int) error

	// Manager accounts (owner only, enforced by the adapter).
	ListManagers(ctx context.Context) ([]ManagerResult, error)
	CreateManager(ctx context.Context, req CreateManagerRequest, actorID int) (*ManagerResult, error)
	DeactivateManager(ctx context.Context, managerID, actorID int) error

	// Inventory.
	ListInventory(ctx context.Context, branchID int) ([]core.InventoryItem, error)
	CreateItem(ctx context.Context, req CreateItemRequest) (*core.InventoryItem, error)
	UpdateItem(ctx context.Context, item core.InventoryItem) (*core.InventoryItem, error)
	DeleteItem(ctx context.Context, itemID int, actorID int) error
	AdjustStock(ctx context.Context, itemID, delta int, actorID int) (*core.InventoryItem, error)
	GetStockSummary(ctx context.Context, branchID int) (*core.StockSummary, error)

	// Stock transfers.
	RequestTransfer(ctx context.Context, req TransferRequest) (*core.StockTransfer, error)
	// ResolveTransfer approves or denies a PENDING transfer. Already-resolved
	// transfers are an error; stock moves only on approval.
	ResolveTransfer(ctx context.Context, transferID int, approve bool, actorID int) (*core.StockTransfer, error)
	ListTransfers(ctx context.Context, branchID *int, status string) ([]core.StockTransfer, error)

	// Notifications.
	ListNotifications(ctx context.Context, branchID int) ([]core.Notification, error)
	MarkNotificationsRead(ctx context.Context, branchID int) error
	ClearNotifications(ctx context.Context, branchID int) error

	// Printing jobs.
	CreateJob(ctx context.Context, req CreateJobRequest) (*core.Job, error)
	GetJob(ctx context.Context, jobID int) (*core.Job, error)
	ListJobs(ctx context.Context, branchID int, status string) ([]core.Job, error)
	AdvanceJob(ctx context.Context, jobID int, next string, note string) (*core.Job, error)
	RecordJobPayment(ctx context.Context, jobID int, amount decimal.Decimal, method string) (*core.Job, error)

	// Point of sale.
	RecordSale(ctx context.Context, req RecordSaleRequest) (*core.Transaction, error)
	// VoidTransaction marks a transaction void with a mandatory reason and
	// writes an audit entry. Stock is not restored.
	VoidTransaction(ctx context.Context, transactionID int, reason string, actorID int) (*core.Transaction, error)
	ListTransactions(ctx context.Context, branchID int) ([]core.Transaction, error)

	// CRM.
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*core.Customer, error)
	GetCustomer(ctx context.Context, customerID int) (*core.Customer, error)
	ListCustomers(ctx context.Context, branchID int) ([]core.Customer, error)
	UpdateCustomer(ctx context.Context, c core.Customer) (*core.Customer, error)
	LogCommunication(ctx context.Context, customerID int, logType, notes string, actorID int) (*core.CommunicationLog, error)
	ListCommunications(ctx context.Context, customerID int) ([]core.CommunicationLog, error)

	// Reports.
	GetSalesSummary(ctx context.Context, branchID int, fromDate, toDate string) (*core.SalesSummary, error)
	GetJobProfitability(ctx context.Context, branchID int, fromDate, toDate string) (*core.JobProfitability, error)
	GetBranchPerformance(ctx context.Context) ([]core.BranchPerformance, error)

	// Backup and restore.
	// CreateBackup exports the dataset, asks the AI for a manifest (falling back
	// to a canned summary), and logs the result.
	CreateBackup(ctx context.Context, recipient string, actorID int) (*BackupResult, error)
	// RestoreBackup validates and applies an uploaded envelope all-or-nothing.
	RestoreBackup(ctx context.Context, raw []byte, actorID int) error
	ListBackupLogs(ctx context.Context) ([]core.BackupLog, error)

	// Audit trail.
	ListAuditEntries(ctx context.Context, module string, limit int) ([]core.AuditEntry, error)

	// Settings.
	GetGlobalLowStockThreshold(ctx context.Context) (int, error)
	SetGlobalLowStockThreshold(ctx context.Context, threshold int, actorID int) error

	// AskSupport routes a manager's question to the AI support assistant.
	AskSupport(ctx context.Context, question string, actorID int) (*SupportResult, error)
}
