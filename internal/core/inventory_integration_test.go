package core_test

import (
	"context"
	"testing"

	"fuppas-erp/internal/core"

	"github.com/shopspring/decimal"
)

func TestInventory_CreateItemDefaults(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	settings := core.NewSettingsService(pool)
	inventory := core.NewInventoryService(pool, settings)
	ctx := context.Background()

	item, err := inventory.CreateItem(ctx, core.InventoryItem{
		BranchID:   1,
		SKU:        "MISC-001",
		Name:       "Binder Clips",
		StockLevel: 12,
		UnitCost:   decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Category != "General" {
		t.Errorf("category = %q, want General", item.Category)
	}
	if item.ItemType != core.RawMaterial {
		t.Errorf("item type = %q, want RAW_MATERIAL", item.ItemType)
	}
	if item.ReorderPoint != 5 {
		t.Errorf("reorder point = %d, want 5", item.ReorderPoint)
	}

	// Same SKU at the same branch is a constraint violation.
	if _, err := inventory.CreateItem(ctx, core.InventoryItem{
		BranchID: 1, SKU: "MISC-001", Name: "Binder Clips", StockLevel: 1,
	}); err == nil {
		t.Error("expected error creating duplicate SKU at branch, got nil")
	}

	// The same SKU at a different branch is fine.
	if _, err := inventory.CreateItem(ctx, core.InventoryItem{
		BranchID: 2, SKU: "MISC-001", Name: "Binder Clips", StockLevel: 1,
	}); err != nil {
		t.Errorf("same SKU at another branch should succeed: %v", err)
	}
}

func TestInventory_AdjustStockClampsAtZero(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	settings := core.NewSettingsService(pool)
	inventory := core.NewInventoryService(pool, settings)
	ctx := context.Background()

	item := seedItem(t, inventory, 1, "TAPE-50", 8)

	adjusted, err := inventory.AdjustStock(ctx, item.ID, -20)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if adjusted.StockLevel != 0 {
		t.Errorf("stock after over-deduction = %d, want 0", adjusted.StockLevel)
	}

	adjusted, err = inventory.AdjustStock(ctx, item.ID, 15)
	if err != nil {
		t.Fatal(err)
	}
	if adjusted.StockLevel != 15 {
		t.Errorf("stock after restock = %d, want 15", adjusted.StockLevel)
	}
}

func TestInventory_StockSummaryFlagsLowStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	settings := core.NewSettingsService(pool)
	inventory := core.NewInventoryService(pool, settings)
	ctx := context.Background()

	// reorder point 10, stock 8: low.
	low := seedItem(t, inventory, 1, "LOW-ONE", 8)
	// reorder point 10, stock 40: fine.
	seedItem(t, inventory, 1, "OK-ONE", 40)
	// sold out retail product, 2.50 a piece.
	sold := seedRetailItem(t, inventory, 1, "PEN-BLUE", 0, "2.50")

	summary, err := inventory.GetStockSummary(ctx, 1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalItems != 3 || summary.TotalUnits != 48 {
		t.Errorf("totals = %d items / %d units, want 3 / 48", summary.TotalItems, summary.TotalUnits)
	}
	if summary.OutOfStock != 1 {
		t.Errorf("out of stock count = %d, want 1", summary.OutOfStock)
	}
	// The raw materials cost 2 per unit; the sold-out pen adds nothing.
	if !summary.StockValue.Equal(decimal.NewFromInt(96)) {
		t.Errorf("stock value = %s, want 96", summary.StockValue)
	}
	if !summary.RetailValue.IsZero() {
		t.Errorf("retail value = %s, want 0", summary.RetailValue)
	}
	// The sold-out pen falls under the global threshold too.
	lowIDs := make(map[int]bool)
	for _, it := range summary.LowStockItems {
		lowIDs[it.ID] = true
	}
	if len(lowIDs) != 2 || !lowIDs[low.ID] || !lowIDs[sold.ID] {
		t.Errorf("low stock items = %+v, want %s and %s", summary.LowStockItems, low.SKU, sold.SKU)
	}
}

func TestSettings_GlobalLowStockThreshold(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	settings := core.NewSettingsService(pool)
	ctx := context.Background()

	if err := settings.Set(ctx, "global_low_stock_threshold", "25"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := settings.GlobalLowStockThreshold(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != 25 {
		t.Errorf("threshold = %d, want 25", got)
	}

	// An unreadable value falls back to the default instead of erroring.
	if err := settings.Set(ctx, "global_low_stock_threshold", "not-a-number"); err != nil {
		t.Fatal(err)
	}
	got, err = settings.GlobalLowStockThreshold(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Errorf("threshold with bad value = %d, want default 5", got)
	}

	// Restore the default for other tests.
	if err := settings.Set(ctx, "global_low_stock_threshold", "5"); err != nil {
		t.Fatal(err)
	}
}
