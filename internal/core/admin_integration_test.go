package core_test

import (
	"context"
	"fmt"
	"testing"

	"fuppas-erp/internal/core"
)

func TestBranch_CreationCap(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	branches := core.NewBranchService(pool, 0)
	ctx := context.Background()

	// A tighter installation cap binds immediately.
	capped := core.NewBranchService(pool, 3)
	if _, err := capped.CreateBranch(ctx, core.Branch{
		Name:         "Over Tight Cap",
		BranchNumber: "B900",
	}); err == nil {
		t.Fatal("expected error creating a fourth branch under a cap of 3, got nil")
	}

	// Three branches are seeded; fill the remaining slots.
	for i := 4; i <= core.MaxBranches; i++ {
		_, err := branches.CreateBranch(ctx, core.Branch{
			Name:         fmt.Sprintf("Branch %d", i),
			BranchNumber: fmt.Sprintf("B%03d", i),
		})
		if err != nil {
			t.Fatalf("create branch %d: %v", i, err)
		}
	}

	if _, err := branches.CreateBranch(ctx, core.Branch{
		Name:         "One Too Many",
		BranchNumber: "B999",
	}); err == nil {
		t.Fatal("expected error creating branch beyond the cap, got nil")
	}
}

func TestManager_Authentication(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	managers := core.NewManagerService(pool)
	ctx := context.Background()

	branchID := 1
	created, err := managers.CreateManager(ctx, core.Manager{
		Name:     "Kofi Annor",
		Username: "kofi",
		Role:     "manager",
		BranchID: &branchID,
	}, "correct-horse-battery")
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}

	// A branch manager must be tied to a branch.
	if _, err := managers.CreateManager(ctx, core.Manager{
		Name: "No Branch", Username: "nobranch", Role: "manager",
	}, "longenoughpass"); err == nil {
		t.Error("expected error creating a manager without a branch, got nil")
	}

	m, err := managers.Authenticate(ctx, "kofi", "correct-horse-battery")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if m.ID != created.ID {
		t.Errorf("authenticated ID = %d, want %d", m.ID, created.ID)
	}
	if m.LastLogin == nil {
		t.Error("last login not stamped on authentication")
	}

	if _, err := managers.Authenticate(ctx, "kofi", "wrong"); err == nil {
		t.Error("expected error for wrong password, got nil")
	}
	if _, err := managers.Authenticate(ctx, "nobody", "correct-horse-battery"); err == nil {
		t.Error("expected error for unknown username, got nil")
	}

	// Deactivated accounts cannot log in.
	if err := managers.DeactivateManager(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := managers.Authenticate(ctx, "kofi", "correct-horse-battery"); err == nil {
		t.Error("expected error for deactivated account, got nil")
	}
}

func TestBackup_ExportRestoreRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	settings := core.NewSettingsService(pool)
	inventory := core.NewInventoryService(pool, settings)
	receipts := core.NewReceiptService(pool)
	jobs := core.NewJobService(pool, inventory, receipts)
	customers := core.NewCustomerService(pool)
	backup := core.NewBackupService(pool)
	ctx := context.Background()

	paper := seedItem(t, inventory, 1, "PAPER-A4-80", 75)
	seedItem(t, inventory, 2, "INK-CYAN", 12)

	customer, err := customers.CreateCustomer(ctx, core.Customer{
		BranchID: 1, Name: "Ama Mensah",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if _, err := customers.LogCommunication(ctx, customer.ID, "PHONE", "confirmed artwork", nil); err != nil {
		t.Fatalf("log communication: %v", err)
	}

	job, err := jobs.CreateJob(ctx, core.Job{
		BranchID:     1,
		CustomerID:   &customer.ID,
		CustomerName: customer.Name,
		Specs:        core.JobSpecs{ServiceType: "Flyers", Quantity: 100},
		Pricing: core.JobPricing{
			MaterialCost: d("40.00"),
			LaborCost:    d("30.00"),
			Overhead:     d("10.00"),
			Markup:       d("0.25"),
		},
		Materials: []core.JobMaterial{{ItemID: paper.ID, Quantity: 25}},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	env, raw, err := backup.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if env.Version != core.BackupVersion {
		t.Errorf("envelope version = %d, want %d", env.Version, core.BackupVersion)
	}
	if len(env.Data.Branches) != 3 || len(env.Data.Inventory) != 2 {
		t.Fatalf("export counts: %d branches / %d items, want 3 / 2",
			len(env.Data.Branches), len(env.Data.Inventory))
	}
	if len(env.Data.Jobs) != 1 || len(env.Data.Jobs[0].Materials) != 1 {
		t.Fatalf("exported job missing its materials: %+v", env.Data.Jobs)
	}
	if len(env.Data.Communications) != 1 {
		t.Fatalf("export carries %d communication logs, want 1", len(env.Data.Communications))
	}

	// Wreck the live data, then restore from the export.
	if _, err := pool.Exec(ctx, `
		DELETE FROM job_materials;
		DELETE FROM jobs;
		DELETE FROM communication_logs;
		DELETE FROM inventory_items;
		UPDATE branches SET name = 'Scrambled';
	`); err != nil {
		t.Fatal(err)
	}

	parsed, err := core.ParseBackupEnvelope(raw)
	if err != nil {
		t.Fatalf("parse exported envelope: %v", err)
	}
	if err := backup.Restore(ctx, parsed); err != nil {
		t.Fatalf("restore: %v", err)
	}

	items, err := inventory.ListItems(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].SKU != "PAPER-A4-80" || items[0].StockLevel != 75 {
		t.Errorf("inventory not restored: %+v", items)
	}

	branches := core.NewBranchService(pool, 0)
	b, err := branches.GetBranch(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "Accra Main" {
		t.Errorf("branch name after restore = %q, want Accra Main", b.Name)
	}

	logs, err := customers.ListCommunications(ctx, customer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].Notes != "confirmed artwork" {
		t.Errorf("communication history not restored: %+v", logs)
	}

	restored, err := jobs.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(restored.Materials) != 1 || restored.Materials[0].Quantity != 25 {
		t.Fatalf("job materials not restored: %+v", restored.Materials)
	}
	// The restored bill of materials must still drive stock consumption.
	if _, err := jobs.AdvanceJob(ctx, job.ID, core.JobInPress, ""); err != nil {
		t.Fatalf("advance restored job: %v", err)
	}
	afterPress, err := inventory.GetItem(ctx, paper.ID)
	if err != nil {
		t.Fatal(err)
	}
	if afterPress.StockLevel != 50 {
		t.Errorf("paper stock after press = %d, want 50", afterPress.StockLevel)
	}

	// ID sequences must continue past the restored rows.
	created, err := inventory.CreateItem(ctx, core.InventoryItem{
		BranchID: 1, SKU: "NEW-AFTER-RESTORE", Name: "Fresh Item", StockLevel: 1,
	})
	if err != nil {
		t.Fatalf("create after restore: %v", err)
	}
	if created.ID <= items[0].ID {
		t.Errorf("new item ID %d not past restored IDs", created.ID)
	}
}
