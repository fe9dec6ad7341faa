package app_test

import (
	"context"
	"os"
	"testing"

	"fuppas-erp/internal/app"
	"fuppas-erp/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupAppTest(t *testing.T) (*pgxpool.Pool, app.ApplicationService, core.AuditService) {
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE transactions, job_materials, jobs, communication_logs, customers,
			app_notifications, stock_transfers, inventory_items, receipt_sequences,
			backup_logs, audit_entries, managers, branches RESTART IDENTITY CASCADE;

		INSERT INTO branches (id, name, address, branch_number, branch_email, status) VALUES
		(1, 'Accra Main', '12 High Street', 'B001', 'accra@test.local', 'ACTIVE');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	settings := core.NewSettingsService(pool)
	notify := core.NewNotificationService(pool)
	inventory := core.NewInventoryService(pool, settings)
	transfers := core.NewTransferService(pool, inventory, notify)
	branches := core.NewBranchService(pool, 0)
	managers := core.NewManagerService(pool)
	receipts := core.NewReceiptService(pool)
	jobs := core.NewJobService(pool, inventory, receipts)
	sales := core.NewSaleService(pool, receipts)
	customers := core.NewCustomerService(pool)
	reporting := core.NewReportingService(pool, settings)
	backup := core.NewBackupService(pool)
	audit := core.NewAuditService(pool)

	svc := app.NewAppService(branches, managers, inventory, transfers, notify,
		jobs, sales, customers, reporting, backup, audit, settings, nil)
	return pool, svc, audit
}

func TestApp_StockMutationsAreAudited(t *testing.T) {
	pool, svc, audit := setupAppTest(t)
	defer pool.Close()
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, app.CreateItemRequest{
		BranchID:   1,
		SKU:        "PAPER-A4-80",
		Name:       "A4 Paper 80gsm",
		Category:   "Paper",
		ItemType:   string(core.RawMaterial),
		StockLevel: 30,
		UnitCost:   decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	if _, err := svc.AdjustStock(ctx, item.ID, -5, 42); err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if err := svc.DeleteItem(ctx, item.ID, 42); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	entries, err := audit.List(ctx, "inventory", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(entries))
	}
	// Newest first: the delete, then the adjustment.
	if entries[0].Action != "DELETE" || entries[1].Action != "ADJUST" {
		t.Errorf("audit actions = %s/%s, want DELETE/ADJUST", entries[0].Action, entries[1].Action)
	}
	for _, e := range entries {
		if e.UserID == nil || *e.UserID != 42 {
			t.Errorf("audit %s user = %v, want 42", e.Action, e.UserID)
		}
		if len(e.Before) == 0 {
			t.Errorf("audit %s missing before snapshot", e.Action)
		}
	}
	if len(entries[1].After) == 0 {
		t.Error("adjustment missing after snapshot")
	}
}
