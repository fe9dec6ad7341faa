package app

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"fuppas-erp/internal/ai"
	"fuppas-erp/internal/core"

	"github.com/shopspring/decimal"
)

type appService struct {
	branches  core.BranchService
	managers  core.ManagerService
	inventory core.InventoryService
	transfers core.TransferService
	notify    core.NotificationService
	jobs      core.JobService
	sales     core.SaleService
	customers core.CustomerService
	reporting core.ReportingService
	backup    core.BackupService
	audit     core.AuditService
	settings  core.SettingsService
	agent     ai.AgentService
}

// NewAppService wires the core services behind the ApplicationService interface.
func NewAppService(
	branches core.BranchService,
	managers core.ManagerService,
	inventory core.InventoryService,
	transfers core.TransferService,
	notify core.NotificationService,
	jobs core.JobService,
	sales core.SaleService,
	customers core.CustomerService,
	reporting core.ReportingService,
	backup core.BackupService,
	audit core.AuditService,
	settings core.SettingsService,
	agent ai.AgentService,
) ApplicationService {
	return &appService{
		branches:  branches,
		managers:  managers,
		inventory: inventory,
		transfers: transfers,
		notify:    notify,
		jobs:      jobs,
		sales:     sales,
		customers: customers,
		reporting: reporting,
		backup:    backup,
		audit:     audit,
		settings:  settings,
		agent:     agent,
	}
}

// recordAudit writes an audit entry best-effort. The business operation has
// already committed; a failed audit write is logged, not surfaced.
func (s *appService) recordAudit(ctx context.Context, actorID int, action, module string, before, after any) {
	var userID *int
	if actorID > 0 {
		userID = &actorID
	}
	if err := s.audit.Record(ctx, userID, action, module, before, after); err != nil {
		log.Printf("audit write failed (%s/%s): %v", module, action, err)
	}
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func (s *appService) AuthenticateManager(ctx context.Context, username, password string) (*ManagerSession, error) {
	m, err := s.managers.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, m.ID, "LOGIN", "auth", nil, map[string]string{"username": m.Username})
	return &ManagerSession{
		ManagerID: m.ID,
		Username:  m.Username,
		Name:      m.Name,
		Role:      m.Role,
		BranchID:  m.BranchID,
	}, nil
}

func (s *appService) GetManager(ctx context.Context, managerID int) (*ManagerResult, error) {
	m, err := s.managers.GetByID(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return managerResult(m), nil
}

// ── Branches ──────────────────────────────────────────────────────────────────

func (s *appService) ListBranches(ctx context.Context) ([]core.Branch, error) {
	return s.branches.ListBranches(ctx)
}

func (s *appService) CreateBranch(ctx context.Context, req CreateBranchRequest, actorID int) (*core.Branch, error) {
	created, err := s.branches.CreateBranch(ctx, core.Branch{
		Name:         req.Name,
		Address:      req.Address,
		BranchNumber: req.BranchNumber,
		BranchEmail:  req.BranchEmail,
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "CREATE", "branches", nil, created)
	return created, nil
}

func (s *appService) UpdateBranch(ctx context.Context, b core.Branch, actorID int) (*core.Branch, error) {
	before, err := s.branches.GetBranch(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	updated, err := s.branches.UpdateBranch(ctx, b)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "UPDATE", "branches", before, updated)
	return updated, nil
}

func (s *appService) DeactivateBranch(ctx context.Context, branchID, actorID int) error {
	if err := s.branches.DeactivateBranch(ctx, branchID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "DEACTIVATE", "branches", nil, map[string]int{"branch_id": branchID})
	return nil
}

// ── Managers ──────────────────────────────────────────────────────────────────

func (s *appService) ListManagers(ctx context.Context) ([]ManagerResult, error) {
	all, err := s.managers.ListManagers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ManagerResult, 0, len(all))
	for i := range all {
		out = append(out, *managerResult(&all[i]))
	}
	return out, nil
}

func (s *appService) CreateManager(ctx context.Context, req CreateManagerRequest, actorID int) (*ManagerResult, error) {
	created, err := s.managers.CreateManager(ctx, core.Manager{
		Name:     req.Name,
		Username: req.Username,
		Role:     req.Role,
		BranchID: req.BranchID,
	}, req.Password)
	if err != nil {
		return nil, err
	}
	result := managerResult(created)
	s.recordAudit(ctx, actorID, "CREATE", "managers", nil, result)
	return result, nil
}

func (s *appService) DeactivateManager(ctx context.Context, managerID, actorID int) error {
	if err := s.managers.DeactivateManager(ctx, managerID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "DEACTIVATE", "managers", nil, map[string]int{"manager_id": managerID})
	return nil
}

// ── Inventory ─────────────────────────────────────────────────────────────────

func (s *appService) ListInventory(ctx context.Context, branchID int) ([]core.InventoryItem, error) {
	return s.inventory.ListItems(ctx, branchID)
}

func (s *appService) CreateItem(ctx context.Context, req CreateItemRequest) (*core.InventoryItem, error) {
	return s.inventory.CreateItem(ctx, core.InventoryItem{
		BranchID:     req.BranchID,
		SKU:          req.SKU,
		Name:         req.Name,
		Category:     req.Category,
		ItemType:     core.ItemType(req.ItemType),
		StockLevel:   req.StockLevel,
		ReorderPoint: req.ReorderPoint,
		UnitCost:     req.UnitCost,
		RetailPrice:  req.RetailPrice,
	})
}

func (s *appService) UpdateItem(ctx context.Context, item core.InventoryItem) (*core.InventoryItem, error) {
	return s.inventory.UpdateItem(ctx, item)
}

func (s *appService) DeleteItem(ctx context.Context, itemID int, actorID int) error {
	before, err := s.inventory.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.inventory.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "DELETE", "inventory", before, nil)
	return nil
}

func (s *appService) AdjustStock(ctx context.Context, itemID, delta int, actorID int) (*core.InventoryItem, error) {
	before, err := s.inventory.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	adjusted, err := s.inventory.AdjustStock(ctx, itemID, delta)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "ADJUST", "inventory", before, adjusted)
	return adjusted, nil
}

func (s *appService) GetStockSummary(ctx context.Context, branchID int) (*core.StockSummary, error) {
	return s.inventory.GetStockSummary(ctx, branchID)
}

// ── Transfers ─────────────────────────────────────────────────────────────────

func (s *appService) RequestTransfer(ctx context.Context, req TransferRequest) (*core.StockTransfer, error) {
	return s.transfers.CreateTransferRequest(ctx, req.OriginBranchID, req.DestinationBranchID, req.ItemID, req.Quantity)
}

func (s *appService) ResolveTransfer(ctx context.Context, transferID int, approve bool, actorID int) (*core.StockTransfer, error) {
	resolved, err := s.transfers.ResolveTransfer(ctx, transferID, approve)
	if err != nil {
		return nil, err
	}
	action := "DENY"
	if approve {
		action = "APPROVE"
	}
	s.recordAudit(ctx, actorID, action, "transfers", nil, resolved)
	return resolved, nil
}

func (s *appService) ListTransfers(ctx context.Context, branchID *int, status string) ([]core.StockTransfer, error) {
	var st *core.TransferStatus
	if status != "" {
		switch core.TransferStatus(status) {
		case core.TransferPending, core.TransferApproved, core.TransferDenied:
			v := core.TransferStatus(status)
			st = &v
		default:
			return nil, fmt.Errorf("unknown transfer status %q", status)
		}
	}
	return s.transfers.ListTransfers(ctx, branchID, st)
}

// ── Notifications ─────────────────────────────────────────────────────────────

func (s *appService) ListNotifications(ctx context.Context, branchID int) ([]core.Notification, error) {
	return s.notify.ListForBranch(ctx, branchID, 100)
}

func (s *appService) MarkNotificationsRead(ctx context.Context, branchID int) error {
	return s.notify.MarkAllRead(ctx, branchID)
}

func (s *appService) ClearNotifications(ctx context.Context, branchID int) error {
	return s.notify.Clear(ctx, branchID)
}

// ── Jobs ──────────────────────────────────────────────────────────────────────

func (s *appService) CreateJob(ctx context.Context, req CreateJobRequest) (*core.Job, error) {
	job := core.Job{
		BranchID:     req.BranchID,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Specs: core.JobSpecs{
			ServiceType: req.ServiceType,
			Quantity:    req.Quantity,
			PageSize:    req.PageSize,
			GSM:         req.GSM,
		},
		Pricing: core.JobPricing{
			MaterialCost: req.MaterialCost,
			LaborCost:    req.LaborCost,
			Overhead:     req.Overhead,
			Markup:       req.Markup,
		},
		Materials: req.Materials,
	}
	if req.CustomerEmail != "" {
		job.CustomerEmail = &req.CustomerEmail
	}
	if req.CustomerPhone != "" {
		job.CustomerPhone = &req.CustomerPhone
	}
	return s.jobs.CreateJob(ctx, job)
}

func (s *appService) GetJob(ctx context.Context, jobID int) (*core.Job, error) {
	return s.jobs.GetJob(ctx, jobID)
}

func (s *appService) ListJobs(ctx context.Context, branchID int, status string) ([]core.Job, error) {
	var st *core.JobStatus
	if status != "" {
		v := core.JobStatus(status)
		st = &v
	}
	return s.jobs.ListJobs(ctx, branchID, st)
}

func (s *appService) AdvanceJob(ctx context.Context, jobID int, next string, note string) (*core.Job, error) {
	return s.jobs.AdvanceJob(ctx, jobID, core.JobStatus(next), note)
}

func (s *appService) RecordJobPayment(ctx context.Context, jobID int, amount decimal.Decimal, method string) (*core.Job, error) {
	return s.jobs.RecordJobPayment(ctx, jobID, amount, method)
}

// ── Point of sale ─────────────────────────────────────────────────────────────

func (s *appService) RecordSale(ctx context.Context, req RecordSaleRequest) (*core.Transaction, error) {
	return s.sales.RecordSale(ctx, req.BranchID, req.Lines, req.PaymentMethod)
}

func (s *appService) VoidTransaction(ctx context.Context, transactionID int, reason string, actorID int) (*core.Transaction, error) {
	before, err := s.sales.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	voided, err := s.sales.VoidTransaction(ctx, transactionID, reason)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "VOID", "transactions", before, voided)
	return voided, nil
}

func (s *appService) ListTransactions(ctx context.Context, branchID int) ([]core.Transaction, error) {
	return s.sales.ListTransactions(ctx, branchID, 200)
}

// ── CRM ───────────────────────────────────────────────────────────────────────

func (s *appService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*core.Customer, error) {
	c := core.Customer{BranchID: req.BranchID, Name: req.Name}
	if req.Email != "" {
		c.Email = &req.Email
	}
	if req.Phone != "" {
		c.Phone = &req.Phone
	}
	if req.Address != "" {
		c.Address = &req.Address
	}
	return s.customers.CreateCustomer(ctx, c)
}

func (s *appService) GetCustomer(ctx context.Context, customerID int) (*core.Customer, error) {
	return s.customers.GetCustomer(ctx, customerID)
}

func (s *appService) ListCustomers(ctx context.Context, branchID int) ([]core.Customer, error) {
	return s.customers.ListCustomers(ctx, branchID)
}

func (s *appService) UpdateCustomer(ctx context.Context, c core.Customer) (*core.Customer, error) {
	return s.customers.UpdateCustomer(ctx, c)
}

func (s *appService) LogCommunication(ctx context.Context, customerID int, logType, notes string, actorID int) (*core.CommunicationLog, error) {
	var userID *int
	if actorID > 0 {
		userID = &actorID
	}
	return s.customers.LogCommunication(ctx, customerID, logType, notes, userID)
}

func (s *appService) ListCommunications(ctx context.Context, customerID int) ([]core.CommunicationLog, error) {
	return s.customers.ListCommunications(ctx, customerID)
}

// ── Reports ───────────────────────────────────────────────────────────────────

func (s *appService) GetSalesSummary(ctx context.Context, branchID int, fromDate, toDate string) (*core.SalesSummary, error) {
	return s.reporting.GetSalesSummary(ctx, branchID, fromDate, toDate)
}

func (s *appService) GetJobProfitability(ctx context.Context, branchID int, fromDate, toDate string) (*core.JobProfitability, error) {
	return s.reporting.GetJobProfitability(ctx, branchID, fromDate, toDate)
}

func (s *appService) GetBranchPerformance(ctx context.Context) ([]core.BranchPerformance, error) {
	return s.reporting.GetBranchPerformance(ctx)
}

// ── Backup ────────────────────────────────────────────────────────────────────

func (s *appService) CreateBackup(ctx context.Context, recipient string, actorID int) (*BackupResult, error) {
	env, raw, err := s.backup.Export(ctx)
	if err != nil {
		if logErr := s.backup.LogBackup(ctx, "FAILED", fmt.Sprintf("export failed: %v", err), 0, recipient); logErr != nil {
			log.Printf("backup log write failed: %v", logErr)
		}
		return nil, err
	}

	summary := s.backupSummary(ctx, env)
	sizeKB := core.SizeKB(raw)
	if err := s.backup.LogBackup(ctx, "SUCCESS", summary, sizeKB, recipient); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "EXPORT", "backup", nil, map[string]any{"size_kb": sizeKB, "recipient": recipient})

	return &BackupResult{Envelope: raw, Summary: summary, SizeKB: sizeKB}, nil
}

// backupSummary asks the AI for a manifest and falls back to a canned line
// when the API is unavailable.
func (s *appService) backupSummary(ctx context.Context, env *core.BackupEnvelope) string {
	if s.agent != nil {
		manifest, err := s.agent.WriteBackupManifest(ctx, env)
		if err == nil {
			if manifest.RiskNote != "" {
				return manifest.Summary + " " + manifest.RiskNote
			}
			return manifest.Summary
		}
		log.Printf("backup manifest generation failed, using fallback: %v", err)
	}
	return fmt.Sprintf("Full data export: %d branches, %d inventory records, %d transfers, %d jobs, %d transactions.",
		len(env.Data.Branches), len(env.Data.Inventory), len(env.Data.Transfers),
		len(env.Data.Jobs), len(env.Data.Transactions))
}

func (s *appService) RestoreBackup(ctx context.Context, raw []byte, actorID int) error {
	env, err := core.ParseBackupEnvelope(raw)
	if err != nil {
		return err
	}
	if err := s.backup.Restore(ctx, env); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "RESTORE", "backup", nil, map[string]any{
		"version":      env.Version,
		"generated_at": env.GeneratedAt,
	})
	return nil
}

func (s *appService) ListBackupLogs(ctx context.Context) ([]core.BackupLog, error) {
	return s.backup.ListBackupLogs(ctx, 50)
}

// ── Audit ─────────────────────────────────────────────────────────────────────

func (s *appService) ListAuditEntries(ctx context.Context, module string, limit int) ([]core.AuditEntry, error) {
	return s.audit.List(ctx, module, limit)
}

// ── Settings ──────────────────────────────────────────────────────────────────

func (s *appService) GetGlobalLowStockThreshold(ctx context.Context) (int, error) {
	return s.settings.GlobalLowStockThreshold(ctx)
}

func (s *appService) SetGlobalLowStockThreshold(ctx context.Context, threshold int, actorID int) error {
	if threshold < 0 {
		return fmt.Errorf("threshold cannot be negative, got %d", threshold)
	}
	if err := s.settings.Set(ctx, "global_low_stock_threshold", strconv.Itoa(threshold)); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "UPDATE", "settings", nil, map[string]int{"global_low_stock_threshold": threshold})
	return nil
}

// ── AI support ────────────────────────────────────────────────────────────────

func (s *appService) AskSupport(ctx context.Context, question string, actorID int) (*SupportResult, error) {
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}
	if s.agent == nil {
		return nil, fmt.Errorf("support assistant is not configured")
	}

	shopContext := "Unknown manager."
	if m, err := s.managers.GetByID(ctx, actorID); err == nil {
		if m.BranchID != nil {
			shopContext = fmt.Sprintf("%s (%s), branch ID %d.", m.Name, m.Role, *m.BranchID)
		} else {
			shopContext = fmt.Sprintf("%s (%s), all branches.", m.Name, m.Role)
		}
	}

	reply, err := s.agent.AnswerSupportQuestion(ctx, question, shopContext)
	if err != nil {
		return nil, err
	}
	return &SupportResult{Message: reply.Message, SuggestedActions: reply.SuggestedActions}, nil
}
