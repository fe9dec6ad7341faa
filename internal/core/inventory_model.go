package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemType string

const (
	RawMaterial   ItemType = "RAW_MATERIAL"
	RetailProduct ItemType = "RETAIL_PRODUCT"
)

// InventoryItem is one SKU's stock record at one branch.
// A SKU appears at most once per branch; transfers locate stock by (BranchID, SKU).
type InventoryItem struct {
	ID           int              `json:"id"`
	BranchID     int              `json:"branch_id"`
	SKU          string           `json:"sku"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	ItemType     ItemType         `json:"item_type"`
	StockLevel   int              `json:"stock_level"`
	ReorderPoint int              `json:"reorder_point"`
	UnitCost     decimal.Decimal  `json:"unit_cost"`
	RetailPrice  *decimal.Decimal `json:"retail_price,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// LowStock reports whether the item is at or below its effective reorder point.
// globalThreshold applies when the item's own reorder point is zero.
func (i InventoryItem) LowStock(globalThreshold int) bool {
	point := i.ReorderPoint
	if point <= 0 {
		point = globalThreshold
	}
	return i.StockLevel <= point
}

// StockSummary is an aggregate view of one branch's inventory.
type StockSummary struct {
	BranchID      int             `json:"branch_id"`
	TotalItems    int             `json:"total_items"`
	TotalUnits    int             `json:"total_units"`
	OutOfStock    int             `json:"out_of_stock"`
	StockValue    decimal.Decimal `json:"stock_value"`
	RetailValue   decimal.Decimal `json:"retail_value"`
	LowStockItems []InventoryItem `json:"low_stock_items"`
}
