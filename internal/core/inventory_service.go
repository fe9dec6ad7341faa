package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InventoryService manages per-branch stock records.
// Stock levels are whole units and never go below zero.
type InventoryService interface {
	// Standalone operations (manage their own transactions).
	ListItems(ctx context.Context, branchID int) ([]InventoryItem, error)
	GetItem(ctx context.Context, itemID int) (*InventoryItem, error)
	CreateItem(ctx context.Context, item InventoryItem) (*InventoryItem, error)
	UpdateItem(ctx context.Context, item InventoryItem) (*InventoryItem, error)
	DeleteItem(ctx context.Context, itemID int) error
	// AdjustStock applies a signed delta to an item's stock level, clamped at zero.
	AdjustStock(ctx context.Context, itemID, delta int) (*InventoryItem, error)
	// GetStockSummary aggregates one branch's inventory, flagging items at or
	// below their effective reorder point.
	GetStockSummary(ctx context.Context, branchID int) (*StockSummary, error)

	// TX-scoped operations: work within a caller-provided transaction.
	// Used by TransferService, SaleService, and JobService to keep stock changes
	// atomic with their state transitions.

	// DebitStockTx deducts qty units from the branch's record for sku, clamped at zero.
	// A missing record is a no-op: the stock that left is simply not there to debit.
	DebitStockTx(ctx context.Context, tx pgx.Tx, branchID int, sku string, qty int) error
	// CreditStockTx adds qty units to the branch's record for sku, creating the
	// record if the branch has never stocked that SKU. New records copy name and
	// attributes from any existing record of the same SKU at another branch.
	CreditStockTx(ctx context.Context, tx pgx.Tx, branchID int, sku string, qty int) error
	// DebitItemTx deducts qty units from a specific item row, clamped at zero.
	DebitItemTx(ctx context.Context, tx pgx.Tx, itemID, qty int) error
}

type inventoryService struct {
	pool     *pgxpool.Pool
	settings SettingsService
}

func NewInventoryService(pool *pgxpool.Pool, settings SettingsService) InventoryService {
	return &inventoryService{pool: pool, settings: settings}
}

const itemColumns = `id, branch_id, sku, name, category, item_type, stock_level, reorder_point, unit_cost, retail_price, updated_at`

func scanItem(row pgx.Row) (*InventoryItem, error) {
	var it InventoryItem
	err := row.Scan(&it.ID, &it.BranchID, &it.SKU, &it.Name, &it.Category, &it.ItemType,
		&it.StockLevel, &it.ReorderPoint, &it.UnitCost, &it.RetailPrice, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *inventoryService) ListItems(ctx context.Context, branchID int) ([]InventoryItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE branch_id = $1
		ORDER BY name, sku`,
		branchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *inventoryService) GetItem(ctx context.Context, itemID int) (*InventoryItem, error) {
	it, err := scanItem(s.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("inventory item %d not found", itemID)
		}
		return nil, fmt.Errorf("get inventory item %d: %w", itemID, err)
	}
	return it, nil
}

func (s *inventoryService) CreateItem(ctx context.Context, item InventoryItem) (*InventoryItem, error) {
	if item.SKU == "" {
		return nil, fmt.Errorf("item SKU is required")
	}
	if item.Name == "" {
		return nil, fmt.Errorf("item name is required")
	}
	if item.StockLevel < 0 {
		return nil, fmt.Errorf("stock level cannot be negative, got %d", item.StockLevel)
	}
	if item.Category == "" {
		item.Category = "General"
	}
	if item.ItemType == "" {
		item.ItemType = RawMaterial
	}
	if item.ReorderPoint <= 0 {
		item.ReorderPoint = 5
	}

	created, err := scanItem(s.pool.QueryRow(ctx, `
		INSERT INTO inventory_items (branch_id, sku, name, category, item_type, stock_level, reorder_point, unit_cost, retail_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+itemColumns,
		item.BranchID, item.SKU, item.Name, item.Category, string(item.ItemType),
		item.StockLevel, item.ReorderPoint, item.UnitCost, item.RetailPrice,
	))
	if err != nil {
		return nil, fmt.Errorf("insert inventory item: %w", err)
	}
	return created, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, item InventoryItem) (*InventoryItem, error) {
	updated, err := scanItem(s.pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET name = $1, category = $2, item_type = $3, stock_level = GREATEST($4, 0),
		    reorder_point = $5, unit_cost = $6, retail_price = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING `+itemColumns,
		item.Name, item.Category, string(item.ItemType), item.StockLevel,
		item.ReorderPoint, item.UnitCost, item.RetailPrice, item.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("inventory item %d not found", item.ID)
		}
		return nil, fmt.Errorf("update inventory item %d: %w", item.ID, err)
	}
	return updated, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, itemID int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM inventory_items WHERE id = $1", itemID)
	if err != nil {
		return fmt.Errorf("delete inventory item %d: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inventory item %d not found", itemID)
	}
	return nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, itemID, delta int) (*InventoryItem, error) {
	updated, err := scanItem(s.pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET stock_level = GREATEST(stock_level + $1, 0), updated_at = NOW()
		WHERE id = $2
		RETURNING `+itemColumns,
		delta, itemID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("inventory item %d not found", itemID)
		}
		return nil, fmt.Errorf("adjust stock for item %d: %w", itemID, err)
	}
	return updated, nil
}

func (s *inventoryService) GetStockSummary(ctx context.Context, branchID int) (*StockSummary, error) {
	threshold, err := s.settings.GlobalLowStockThreshold(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.ListItems(ctx, branchID)
	if err != nil {
		return nil, err
	}

	summary := &StockSummary{BranchID: branchID}
	for _, it := range items {
		summary.TotalItems++
		summary.TotalUnits += it.StockLevel
		units := decimal.NewFromInt(int64(it.StockLevel))
		summary.StockValue = summary.StockValue.Add(it.UnitCost.Mul(units))
		if it.RetailPrice != nil {
			summary.RetailValue = summary.RetailValue.Add(it.RetailPrice.Mul(units))
		}
		if it.StockLevel == 0 {
			summary.OutOfStock++
		}
		if it.LowStock(threshold) {
			summary.LowStockItems = append(summary.LowStockItems, it)
		}
	}
	return summary, nil
}

// ── TX-scoped operations ──────────────────────────────────────────────────────

func (s *inventoryService) DebitStockTx(ctx context.Context, tx pgx.Tx, branchID int, sku string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("debit quantity must be positive, got %d", qty)
	}

	var itemID int
	err := tx.QueryRow(ctx,
		"SELECT id FROM inventory_items WHERE branch_id = $1 AND sku = $2 FOR UPDATE",
		branchID, sku,
	).Scan(&itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Record already gone at the origin; nothing left to debit.
		return nil
	}
	if err != nil {
		return fmt.Errorf("lock inventory item %s at branch %d: %w", sku, branchID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE inventory_items
		SET stock_level = GREATEST(stock_level - $1, 0), updated_at = NOW()
		WHERE id = $2`,
		qty, itemID,
	)
	if err != nil {
		return fmt.Errorf("debit stock for %s at branch %d: %w", sku, branchID, err)
	}
	return nil
}

func (s *inventoryService) CreditStockTx(ctx context.Context, tx pgx.Tx, branchID int, sku string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("credit quantity must be positive, got %d", qty)
	}

	var itemID int
	err := tx.QueryRow(ctx,
		"SELECT id FROM inventory_items WHERE branch_id = $1 AND sku = $2 FOR UPDATE",
		branchID, sku,
	).Scan(&itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		// First time this branch stocks the SKU. Copy the catalog attributes
		// from any other branch's record; fall back to defaults if none exists.
		_, err = tx.Exec(ctx, `
			INSERT INTO inventory_items (branch_id, sku, name, category, item_type, stock_level, reorder_point, unit_cost, retail_price)
			SELECT $1, $2,
			       COALESCE(src.name, $2),
			       COALESCE(src.category, 'General'),
			       COALESCE(src.item_type, 'RAW_MATERIAL'),
			       $3,
			       COALESCE(src.reorder_point, 5),
			       COALESCE(src.unit_cost, 0),
			       src.retail_price
			FROM (SELECT 1) one
			LEFT JOIN LATERAL (
				SELECT name, category, item_type, reorder_point, unit_cost, retail_price
				FROM inventory_items
				WHERE sku = $2
				ORDER BY id
				LIMIT 1
			) src ON true`,
			branchID, sku, qty,
		)
		if err != nil {
			return fmt.Errorf("create inventory record for %s at branch %d: %w", sku, branchID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("lock inventory item %s at branch %d: %w", sku, branchID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE inventory_items
		SET stock_level = stock_level + $1, updated_at = NOW()
		WHERE id = $2`,
		qty, itemID,
	)
	if err != nil {
		return fmt.Errorf("credit stock for %s at branch %d: %w", sku, branchID, err)
	}
	return nil
}

func (s *inventoryService) DebitItemTx(ctx context.Context, tx pgx.Tx, itemID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("debit quantity must be positive, got %d", qty)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE inventory_items
		SET stock_level = GREATEST(stock_level - $1, 0), updated_at = NOW()
		WHERE id = $2`,
		qty, itemID,
	)
	if err != nil {
		return fmt.Errorf("debit stock for item %d: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inventory item %d not found", itemID)
	}
	return nil
}
