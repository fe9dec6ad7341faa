package core_test

import (
	"context"
	"os"
	"testing"

	"fuppas-erp/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE transactions, job_materials, jobs, communication_logs, customers,
			app_notifications, stock_transfers, inventory_items, receipt_sequences,
			backup_logs, audit_entries, managers, branches RESTART IDENTITY CASCADE;

		INSERT INTO branches (id, name, address, branch_number, branch_email, status) VALUES
		(1, 'Accra Main', '12 High Street', 'B001', 'accra@test.local', 'ACTIVE'),
		(2, 'Kumasi', '4 Market Road', 'B002', 'kumasi@test.local', 'ACTIVE'),
		(3, 'Closed Branch', '9 Old Lane', 'B003', 'closed@test.local', 'INACTIVE');

		SELECT setval(pg_get_serial_sequence('branches', 'id'), 10, true);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func newTransferFixture(pool *pgxpool.Pool) (core.TransferService, core.InventoryService, core.NotificationService) {
	settings := core.NewSettingsService(pool)
	inventory := core.NewInventoryService(pool, settings)
	notify := core.NewNotificationService(pool)
	return core.NewTransferService(pool, inventory, notify), inventory, notify
}

func seedItem(t *testing.T, inventory core.InventoryService, branchID int, sku string, stock int) *core.InventoryItem {
	t.Helper()
	item, err := inventory.CreateItem(context.Background(), core.InventoryItem{
		BranchID:     branchID,
		SKU:          sku,
		Name:         "A4 Paper 80gsm",
		Category:     "Paper",
		ItemType:     core.RawMaterial,
		StockLevel:   stock,
		ReorderPoint: 10,
		UnitCost:     decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func TestTransfer_ApproveMovesStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers, inventory, notify := newTransferFixture(pool)
	ctx := context.Background()

	item := seedItem(t, inventory, 1, "PAPER-A4-80", 100)

	transfer, err := transfers.CreateTransferRequest(ctx, 1, 2, item.ID, 40)
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	if transfer.Status != core.TransferPending {
		t.Fatalf("new transfer status = %s, want PENDING", transfer.Status)
	}

	// Pending request must not move stock.
	origin, err := inventory.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if origin.StockLevel != 100 {
		t.Fatalf("origin stock after request = %d, want 100", origin.StockLevel)
	}

	resolved, err := transfers.ResolveTransfer(ctx, transfer.ID, true)
	if err != nil {
		t.Fatalf("approve transfer: %v", err)
	}
	if resolved.Status != core.TransferApproved {
		t.Errorf("status = %s, want APPROVED", resolved.Status)
	}
	if resolved.ResolvedAt == nil {
		t.Error("resolved_at not set on approval")
	}

	origin, err = inventory.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if origin.StockLevel != 60 {
		t.Errorf("origin stock after approval = %d, want 60", origin.StockLevel)
	}

	// Destination had never stocked the SKU: a fresh record must appear with
	// the origin's attributes copied over.
	destItems, err := inventory.ListItems(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(destItems) != 1 {
		t.Fatalf("destination item count = %d, want 1", len(destItems))
	}
	dest := destItems[0]
	if dest.SKU != "PAPER-A4-80" || dest.StockLevel != 40 {
		t.Errorf("destination record = %s/%d units, want PAPER-A4-80/40", dest.SKU, dest.StockLevel)
	}
	if dest.Name != "A4 Paper 80gsm" || dest.Category != "Paper" {
		t.Errorf("destination attributes not copied: name=%q category=%q", dest.Name, dest.Category)
	}

	// Both branches get a SUCCESS notification; the destination also still has
	// the INFO from the original request.
	originNotes, err := notify.ListForBranch(ctx, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if countKind(originNotes, core.NotifySuccess) != 1 {
		t.Errorf("origin SUCCESS notifications = %d, want 1", countKind(originNotes, core.NotifySuccess))
	}
	destNotes, err := notify.ListForBranch(ctx, 2, 50)
	if err != nil {
		t.Fatal(err)
	}
	if countKind(destNotes, core.NotifySuccess) != 1 || countKind(destNotes, core.NotifyInfo) != 1 {
		t.Errorf("destination notifications: %d SUCCESS / %d INFO, want 1 / 1",
			countKind(destNotes, core.NotifySuccess), countKind(destNotes, core.NotifyInfo))
	}
}

func TestTransfer_ResolveIsTerminal(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers, inventory, _ := newTransferFixture(pool)
	ctx := context.Background()

	item := seedItem(t, inventory, 1, "INK-BLK", 50)
	transfer, err := transfers.CreateTransferRequest(ctx, 1, 2, item.ID, 10)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := transfers.ResolveTransfer(ctx, transfer.ID, true); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	// Second resolve must fail and must not move stock again.
	if _, err := transfers.ResolveTransfer(ctx, transfer.ID, true); err == nil {
		t.Fatal("expected error resolving an APPROVED transfer, got nil")
	}
	if _, err := transfers.ResolveTransfer(ctx, transfer.ID, false); err == nil {
		t.Fatal("expected error denying an APPROVED transfer, got nil")
	}

	origin, err := inventory.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if origin.StockLevel != 40 {
		t.Errorf("origin stock = %d, want 40 (debited exactly once)", origin.StockLevel)
	}
}

func TestTransfer_DenyLeavesStockUntouched(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers, inventory, notify := newTransferFixture(pool)
	ctx := context.Background()

	item := seedItem(t, inventory, 1, "CARD-300", 30)
	transfer, err := transfers.CreateTransferRequest(ctx, 1, 2, item.ID, 5)
	if err != nil {
		t.Fatal(err)
	}

	resolved, err := transfers.ResolveTransfer(ctx, transfer.ID, false)
	if err != nil {
		t.Fatalf("deny transfer: %v", err)
	}
	if resolved.Status != core.TransferDenied {
		t.Errorf("status = %s, want DENIED", resolved.Status)
	}

	origin, err := inventory.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if origin.StockLevel != 30 {
		t.Errorf("origin stock after denial = %d, want 30", origin.StockLevel)
	}
	destItems, err := inventory.ListItems(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(destItems) != 0 {
		t.Errorf("destination gained %d items on a denied transfer", len(destItems))
	}

	originNotes, err := notify.ListForBranch(ctx, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if countKind(originNotes, core.NotifyWarning) != 1 {
		t.Errorf("origin WARNING notifications = %d, want 1", countKind(originNotes, core.NotifyWarning))
	}
}

func TestTransfer_CreateRejectsInsufficientStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers, inventory, _ := newTransferFixture(pool)
	ctx := context.Background()

	item := seedItem(t, inventory, 1, "TONER-C", 10)
	if _, err := transfers.CreateTransferRequest(ctx, 1, 2, item.ID, 15); err == nil {
		t.Fatal("expected error requesting 15 of 10 in stock, got nil")
	}
}

func TestTransfer_CreateRejectsInactiveDestination(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers, inventory, _ := newTransferFixture(pool)
	ctx := context.Background()

	item := seedItem(t, inventory, 1, "STAPLES", 20)
	if _, err := transfers.CreateTransferRequest(ctx, 1, 3, item.ID, 5); err == nil {
		t.Fatal("expected error transferring to an INACTIVE branch, got nil")
	}
}

func TestTransfer_ApproveClampsWhenStockDropped(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers, inventory, _ := newTransferFixture(pool)
	ctx := context.Background()

	item := seedItem(t, inventory, 1, "GLUE-STK", 50)
	transfer, err := transfers.CreateTransferRequest(ctx, 1, 2, item.ID, 40)
	if err != nil {
		t.Fatal(err)
	}

	// Stock shrinks between request and approval. Approval still succeeds:
	// the origin clamps at zero and the destination is credited in full.
	if _, err := inventory.AdjustStock(ctx, item.ID, -30); err != nil {
		t.Fatal(err)
	}

	if _, err := transfers.ResolveTransfer(ctx, transfer.ID, true); err != nil {
		t.Fatalf("approve after stock dropped: %v", err)
	}

	origin, err := inventory.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if origin.StockLevel != 0 {
		t.Errorf("origin stock = %d, want 0 (clamped)", origin.StockLevel)
	}
	destItems, err := inventory.ListItems(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(destItems) != 1 || destItems[0].StockLevel != 40 {
		t.Errorf("destination not credited in full: %+v", destItems)
	}
}

func TestTransfer_ApproveSurvivesDeletedOriginItem(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers, inventory, _ := newTransferFixture(pool)
	ctx := context.Background()

	item := seedItem(t, inventory, 1, "ENV-DL", 25)
	transfer, err := transfers.CreateTransferRequest(ctx, 1, 2, item.ID, 10)
	if err != nil {
		t.Fatal(err)
	}

	// The origin record disappears before approval. The debit is a no-op and
	// the destination is still credited from the ledger's denormalized copy.
	if err := inventory.DeleteItem(ctx, item.ID); err != nil {
		t.Fatal(err)
	}

	resolved, err := transfers.ResolveTransfer(ctx, transfer.ID, true)
	if err != nil {
		t.Fatalf("approve after origin item deleted: %v", err)
	}
	if resolved.Status != core.TransferApproved {
		t.Errorf("status = %s, want APPROVED", resolved.Status)
	}

	destItems, err := inventory.ListItems(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(destItems) != 1 || destItems[0].StockLevel != 10 {
		t.Fatalf("destination not credited: %+v", destItems)
	}
	// No surviving record of the SKU anywhere, so the name falls back to it.
	if destItems[0].Name != "ENV-DL" {
		t.Errorf("destination name = %q, want SKU fallback \"ENV-DL\"", destItems[0].Name)
	}
}

func countKind(notes []core.Notification, kind core.NotificationKind) int {
	n := 0
	for _, note := range notes {
		if note.Kind == kind {
			n++
		}
	}
	return n
}

func TestNotification_ClearKeepsBroadcastsForOtherBranches(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	notify := core.NewNotificationService(pool)
	ctx := context.Background()

	one, two := 1, 2
	if err := notify.Emit(ctx, &one, "accra only", core.NotifyInfo); err != nil {
		t.Fatal(err)
	}
	if err := notify.Emit(ctx, &two, "kumasi only", core.NotifyInfo); err != nil {
		t.Fatal(err)
	}
	if err := notify.Emit(ctx, nil, "closing early on Friday", core.NotifyWarning); err != nil {
		t.Fatal(err)
	}

	if err := notify.Clear(ctx, 1); err != nil {
		t.Fatalf("clear: %v", err)
	}

	mine, err := notify.ListForBranch(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	// Only the broadcast remains visible, now read.
	if len(mine) != 1 || mine[0].BranchID != nil {
		t.Fatalf("branch 1 notifications after clear: %+v", mine)
	}
	if !mine[0].IsRead {
		t.Error("broadcast not marked read after clear")
	}

	theirs, err := notify.ListForBranch(ctx, 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(theirs) != 2 {
		t.Fatalf("branch 2 notifications after branch 1 clear = %d, want 2", len(theirs))
	}
}
