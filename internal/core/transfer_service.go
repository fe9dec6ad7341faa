package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransferService runs the inter-branch stock transfer ledger.
//
// A transfer starts PENDING and resolves exactly once to APPROVED or DENIED.
// Stock moves only on approval: the origin is debited and the destination
// credited in the same transaction that flips the status, so a crash can never
// leave stock moved without a resolved ledger row or vice versa.
type TransferService interface {
	// CreateTransferRequest opens a PENDING transfer after verifying the origin
	// item exists, belongs to the origin branch, and has enough stock on hand.
	// No stock moves at this point.
	CreateTransferRequest(ctx context.Context, originBranchID, destBranchID, itemID, quantity int) (*StockTransfer, error)
	// ResolveTransfer approves or denies a PENDING transfer. Resolving a transfer
	// that is already APPROVED or DENIED is an error; terminal states never move
	// stock twice.
	ResolveTransfer(ctx context.Context, transferID int, approve bool) (*StockTransfer, error)
	// GetTransfer returns one transfer by ID.
	GetTransfer(ctx context.Context, transferID int) (*StockTransfer, error)
	// ListTransfers returns transfers newest first. branchID, when non-nil,
	// restricts to transfers where the branch is origin or destination.
	// status, when non-nil, restricts to that status.
	ListTransfers(ctx context.Context, branchID *int, status *TransferStatus) ([]StockTransfer, error)
}

type transferService struct {
	pool      *pgxpool.Pool
	inventory InventoryService
	notify    NotificationService
}

func NewTransferService(pool *pgxpool.Pool, inventory InventoryService, notify NotificationService) TransferService {
	return &transferService{pool: pool, inventory: inventory, notify: notify}
}

const transferColumns = `id, origin_branch_id, destination_branch_id, item_id, item_name, sku, quantity, status, created_at, resolved_at`

func scanTransfer(row pgx.Row) (*StockTransfer, error) {
	var t StockTransfer
	err := row.Scan(&t.ID, &t.OriginBranchID, &t.DestinationBranchID, &t.ItemID,
		&t.ItemName, &t.SKU, &t.Quantity, &t.Status, &t.CreatedAt, &t.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *transferService) CreateTransferRequest(ctx context.Context, originBranchID, destBranchID, itemID, quantity int) (*StockTransfer, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("transfer quantity must be positive, got %d", quantity)
	}
	if originBranchID == destBranchID {
		return nil, fmt.Errorf("origin and destination branch must differ")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var itemBranchID, stockLevel int
	var itemName, sku string
	err = tx.QueryRow(ctx,
		"SELECT branch_id, name, sku, stock_level FROM inventory_items WHERE id = $1 FOR UPDATE",
		itemID,
	).Scan(&itemBranchID, &itemName, &sku, &stockLevel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("inventory item %d not found", itemID)
		}
		return nil, fmt.Errorf("fetch inventory item %d: %w", itemID, err)
	}
	if itemBranchID != originBranchID {
		return nil, fmt.Errorf("inventory item %d does not belong to branch %d", itemID, originBranchID)
	}
	if stockLevel < quantity {
		return nil, fmt.Errorf("insufficient stock for %s: %d on hand, %d requested", itemName, stockLevel, quantity)
	}

	var originName, destName string
	if err := tx.QueryRow(ctx,
		"SELECT name FROM branches WHERE id = $1 AND status = 'ACTIVE'", destBranchID,
	).Scan(&destName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("destination branch %d not found or inactive", destBranchID)
		}
		return nil, fmt.Errorf("fetch destination branch %d: %w", destBranchID, err)
	}
	if err := tx.QueryRow(ctx,
		"SELECT name FROM branches WHERE id = $1", originBranchID,
	).Scan(&originName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("origin branch %d not found", originBranchID)
		}
		return nil, fmt.Errorf("fetch origin branch %d: %w", originBranchID, err)
	}

	transfer, err := scanTransfer(tx.QueryRow(ctx, `
		INSERT INTO stock_transfers (origin_branch_id, destination_branch_id, item_id, item_name, sku, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+transferColumns,
		originBranchID, destBranchID, itemID, itemName, sku, quantity,
	))
	if err != nil {
		return nil, fmt.Errorf("insert stock transfer: %w", err)
	}

	destID := destBranchID
	msg := fmt.Sprintf("Incoming transfer request: %d x %s (%s) from %s awaiting your approval.",
		quantity, itemName, sku, originName)
	if err := s.notify.EmitTx(ctx, tx, &destID, msg, NotifyInfo); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transfer request: %w", err)
	}
	return transfer, nil
}

func (s *transferService) ResolveTransfer(ctx context.Context, transferID int, approve bool) (*StockTransfer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	transfer, err := scanTransfer(tx.QueryRow(ctx,
		"SELECT "+transferColumns+" FROM stock_transfers WHERE id = $1 FOR UPDATE",
		transferID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("stock transfer %d not found", transferID)
		}
		return nil, fmt.Errorf("fetch stock transfer %d: %w", transferID, err)
	}

	if transfer.Status.Terminal() {
		return nil, fmt.Errorf("stock transfer %d already resolved: status is %s", transferID, transfer.Status)
	}

	newStatus := TransferDenied
	if approve {
		newStatus = TransferApproved

		// Debit by (branch, sku) rather than item ID: the origin record may have
		// been deleted or replaced since the request was filed. Debit clamps at
		// zero, credit creates the destination record if needed.
		if err := s.inventory.DebitStockTx(ctx, tx, transfer.OriginBranchID, transfer.SKU, transfer.Quantity); err != nil {
			return nil, err
		}
		if err := s.inventory.CreditStockTx(ctx, tx, transfer.DestinationBranchID, transfer.SKU, transfer.Quantity); err != nil {
			return nil, err
		}
	}

	resolved, err := scanTransfer(tx.QueryRow(ctx, `
		UPDATE stock_transfers
		SET status = $1, resolved_at = NOW()
		WHERE id = $2
		RETURNING `+transferColumns,
		string(newStatus), transferID,
	))
	if err != nil {
		return nil, fmt.Errorf("update stock transfer %d: %w", transferID, err)
	}

	originID := transfer.OriginBranchID
	destID := transfer.DestinationBranchID
	if approve {
		outMsg := fmt.Sprintf("Transfer approved: %d x %s (%s) sent to branch %d.",
			transfer.Quantity, transfer.ItemName, transfer.SKU, destID)
		inMsg := fmt.Sprintf("Transfer approved: %d x %s (%s) received from branch %d.",
			transfer.Quantity, transfer.ItemName, transfer.SKU, originID)
		if err := s.notify.EmitTx(ctx, tx, &originID, outMsg, NotifySuccess); err != nil {
			return nil, err
		}
		if err := s.notify.EmitTx(ctx, tx, &destID, inMsg, NotifySuccess); err != nil {
			return nil, err
		}
	} else {
		msg := fmt.Sprintf("Transfer denied: %d x %s (%s) to branch %d was rejected.",
			transfer.Quantity, transfer.ItemName, transfer.SKU, destID)
		if err := s.notify.EmitTx(ctx, tx, &originID, msg, NotifyWarning); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transfer resolution: %w", err)
	}
	return resolved, nil
}

func (s *transferService) GetTransfer(ctx context.Context, transferID int) (*StockTransfer, error) {
	transfer, err := scanTransfer(s.pool.QueryRow(ctx,
		"SELECT "+transferColumns+" FROM stock_transfers WHERE id = $1", transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("stock transfer %d not found", transferID)
		}
		return nil, fmt.Errorf("get stock transfer %d: %w", transferID, err)
	}
	return transfer, nil
}

func (s *transferService) ListTransfers(ctx context.Context, branchID *int, status *TransferStatus) ([]StockTransfer, error) {
	query := "SELECT " + transferColumns + " FROM stock_transfers WHERE 1=1"
	var args []any

	if branchID != nil {
		args = append(args, *branchID)
		query += fmt.Sprintf(" AND (origin_branch_id = $%d OR destination_branch_id = $%d)", len(args), len(args))
	}
	if status != nil {
		args = append(args, string(*status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transfers: %w", err)
	}
	defer rows.Close()

	var transfers []StockTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock transfer: %w", err)
		}
		transfers = append(transfers, *t)
	}
	return transfers, rows.Err()
}
