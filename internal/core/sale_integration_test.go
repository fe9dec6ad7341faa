package core_test

import (
	"context"
	"fmt"
	"testing"

	"fuppas-erp/internal/core"

	"github.com/shopspring/decimal"
)

func seedRetailItem(t *testing.T, inventory core.InventoryService, branchID int, sku string, stock int, price string) *core.InventoryItem {
	t.Helper()
	retail := d(price)
	item, err := inventory.CreateItem(context.Background(), core.InventoryItem{
		BranchID:    branchID,
		SKU:         sku,
		Name:        "Ballpoint Pen",
		Category:    "Stationery",
		ItemType:    core.RetailProduct,
		StockLevel:  stock,
		UnitCost:    decimal.NewFromInt(1),
		RetailPrice: &retail,
	})
	if err != nil {
		t.Fatalf("seed retail item: %v", err)
	}
	return item
}

func TestSale_RecordDeductsStockAndNumbersReceipts(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	settings := core.NewSettingsService(pool)
	inventory := core.NewInventoryService(pool, settings)
	receipts := core.NewReceiptService(pool)
	sales := core.NewSaleService(pool, receipts)
	ctx := context.Background()

	item := seedRetailItem(t, inventory, 1, "PEN-BLUE", 50, "1.50")

	// Receipt numbers are per branch, gapless, and zero padded.
	for i := 1; i <= 3; i++ {
		txn, err := sales.RecordSale(ctx, 1, []core.SaleLine{{ItemID: item.ID, Quantity: 2}}, "Cash")
		if err != nil {
			t.Fatalf("sale %d: %v", i, err)
		}
		want := fmt.Sprintf("RCT-B1-%05d", i)
		if txn.ReceiptNumber != want {
			t.Errorf("receipt number = %s, want %s", txn.ReceiptNumber, want)
		}
		if !txn.AmountPaid.Equal(d("3.00")) {
			t.Errorf("total = %s, want 3.00", txn.AmountPaid)
		}
	}

	after, err := inventory.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.StockLevel != 44 {
		t.Errorf("stock after three sales of 2 = %d, want 44", after.StockLevel)
	}
}

func TestSale_InsufficientStockAbortsWholeSale(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	settings := core.NewSettingsService(pool)
	inventory := core.NewInventoryService(pool, settings)
	receipts := core.NewReceiptService(pool)
	sales := core.NewSaleService(pool, receipts)
	ctx := context.Background()

	plenty := seedRetailItem(t, inventory, 1, "PEN-RED", 100, "1.50")
	scarce := seedRetailItem(t, inventory, 1, "RULER-30", 1, "4.00")

	_, err := sales.RecordSale(ctx, 1, []core.SaleLine{
		{ItemID: plenty.ID, Quantity: 10},
		{ItemID: scarce.ID, Quantity: 5},
	}, "Cash")
	if err == nil {
		t.Fatal("expected error selling 5 of 1 in stock, got nil")
	}

	// The first line must have been rolled back with the rest.
	first, err := inventory.GetItem(ctx, plenty.ID)
	if err != nil {
		t.Fatal(err)
	}
	if first.StockLevel != 100 {
		t.Errorf("stock after aborted sale = %d, want 100", first.StockLevel)
	}
}

func TestSale_RejectsRawMaterialLines(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	settings := core.NewSettingsService(pool)
	inventory := core.NewInventoryService(pool, settings)
	receipts := core.NewReceiptService(pool)
	sales := core.NewSaleService(pool, receipts)
	ctx := context.Background()

	// A priced raw material still stays off the counter.
	price := d("3.00")
	raw, err := inventory.CreateItem(ctx, core.InventoryItem{
		BranchID:    1,
		SKU:         "PAPER-A3-120",
		Name:        "A3 Card 120gsm",
		Category:    "Paper",
		ItemType:    core.RawMaterial,
		StockLevel:  200,
		UnitCost:    decimal.NewFromInt(2),
		RetailPrice: &price,
	})
	if err != nil {
		t.Fatalf("seed raw material: %v", err)
	}

	if _, err := sales.RecordSale(ctx, 1, []core.SaleLine{{ItemID: raw.ID, Quantity: 1}}, "Cash"); err == nil {
		t.Fatal("expected error selling a raw material, got nil")
	}
	after, err := inventory.GetItem(ctx, raw.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.StockLevel != 200 {
		t.Errorf("raw material stock = %d, want 200", after.StockLevel)
	}
}

func TestSale_VoidKeepsRowAndStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	settings := core.NewSettingsService(pool)
	inventory := core.NewInventoryService(pool, settings)
	receipts := core.NewReceiptService(pool)
	sales := core.NewSaleService(pool, receipts)
	ctx := context.Background()

	item := seedRetailItem(t, inventory, 1, "NOTE-A5", 20, "2.00")
	txn, err := sales.RecordSale(ctx, 1, []core.SaleLine{{ItemID: item.ID, Quantity: 4}}, "Card")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := sales.VoidTransaction(ctx, txn.ID, ""); err == nil {
		t.Fatal("expected error voiding without a reason, got nil")
	}

	voided, err := sales.VoidTransaction(ctx, txn.ID, "wrong item rung up")
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if !voided.IsVoid || voided.VoidReason == nil || *voided.VoidReason != "wrong item rung up" {
		t.Errorf("void not recorded: %+v", voided)
	}

	// Void does not restock: the correction is a separate stock adjustment.
	after, err := inventory.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.StockLevel != 16 {
		t.Errorf("stock after void = %d, want 16", after.StockLevel)
	}

	if _, err := sales.VoidTransaction(ctx, txn.ID, "again"); err == nil {
		t.Fatal("expected error voiding an already void transaction, got nil")
	}
}

func TestJob_LifecycleConsumesMaterialsAndRollsPayments(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	settings := core.NewSettingsService(pool)
	inventory := core.NewInventoryService(pool, settings)
	receipts := core.NewReceiptService(pool)
	jobs := core.NewJobService(pool, inventory, receipts)
	ctx := context.Background()

	paper := seedItem(t, inventory, 1, "PAPER-A4-80", 500)

	job, err := jobs.CreateJob(ctx, core.Job{
		BranchID:     1,
		CustomerName: "Ama Mensah",
		Specs: core.JobSpecs{
			ServiceType: "Flyers",
			Quantity:    200,
			PageSize:    "A5",
		},
		Pricing: core.JobPricing{
			MaterialCost: d("40.00"),
			LaborCost:    d("30.00"),
			Overhead:     d("10.00"),
			Markup:       d("0.25"),
		},
		Materials: []core.JobMaterial{{ItemID: paper.ID, Quantity: 100}},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if job.Status != core.JobQuoted {
		t.Fatalf("new job status = %s, want Quoted", job.Status)
	}
	if !job.Pricing.Total.Equal(d("100.00")) {
		t.Errorf("quoted total = %s, want 100.00", job.Pricing.Total)
	}

	// Quoted cannot jump straight to Ready.
	if _, err := jobs.AdvanceJob(ctx, job.ID, core.JobReady, ""); err == nil {
		t.Fatal("expected error skipping In-Press, got nil")
	}

	// Going to press consumes the material lines.
	if _, err := jobs.AdvanceJob(ctx, job.ID, core.JobInPress, ""); err != nil {
		t.Fatalf("advance to In-Press: %v", err)
	}
	after, err := inventory.GetItem(ctx, paper.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.StockLevel != 400 {
		t.Errorf("paper stock after press = %d, want 400", after.StockLevel)
	}

	// Partial then final payment.
	job, err = jobs.RecordJobPayment(ctx, job.ID, d("60.00"), "Mobile Money")
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if job.PaymentStatus != core.PaymentPartial {
		t.Errorf("payment status = %s, want Partially Paid", job.PaymentStatus)
	}
	job, err = jobs.RecordJobPayment(ctx, job.ID, d("40.00"), "Cash")
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if job.PaymentStatus != core.PaymentPaid {
		t.Errorf("payment status = %s, want Paid", job.PaymentStatus)
	}
	if _, err := jobs.RecordJobPayment(ctx, job.ID, d("0.01"), "Cash"); err == nil {
		t.Error("expected payment beyond job total to be rejected")
	}

	if _, err := jobs.AdvanceJob(ctx, job.ID, core.JobReady, ""); err != nil {
		t.Fatalf("advance to Ready: %v", err)
	}
	job, err = jobs.AdvanceJob(ctx, job.ID, core.JobCompleted, "collected by customer")
	if err != nil {
		t.Fatalf("advance to Completed: %v", err)
	}
	if job.CompletionNote == nil || *job.CompletionNote != "collected by customer" {
		t.Errorf("completion note not stored: %+v", job.CompletionNote)
	}
}
