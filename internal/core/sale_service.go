package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SaleService records retail point-of-sale transactions.
type SaleService interface {
	// RecordSale prices the cart from each item's retail price, deducts stock,
	// assigns a receipt number, and books the transaction. The whole sale is one
	// transaction: any insufficient line aborts everything.
	RecordSale(ctx context.Context, branchID int, lines []SaleLine, paymentMethod string) (*Transaction, error)
	// VoidTransaction marks a transaction void with a reason. Voided rows are
	// kept for the audit trail; stock is not restored.
	VoidTransaction(ctx context.Context, transactionID int, reason string) (*Transaction, error)
	GetTransaction(ctx context.Context, transactionID int) (*Transaction, error)
	// ListTransactions returns a branch's transactions newest first, voids included.
	ListTransactions(ctx context.Context, branchID int, limit int) ([]Transaction, error)
}

type saleService struct {
	pool     *pgxpool.Pool
	receipts ReceiptService
}

func NewSaleService(pool *pgxpool.Pool, receipts ReceiptService) SaleService {
	return &saleService{pool: pool, receipts: receipts}
}

const transactionColumns = `id, branch_id, receipt_number, job_id, tx_type, amount_paid, payment_method, is_void, void_reason, created_at`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.BranchID, &t.ReceiptNumber, &t.JobID, &t.Type,
		&t.AmountPaid, &t.PaymentMethod, &t.IsVoid, &t.VoidReason, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *saleService) RecordSale(ctx context.Context, branchID int, lines []SaleLine, paymentMethod string) (*Transaction, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("sale must have at least one line")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var total decimal.Decimal
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("sale quantity for item %d must be positive", line.ItemID)
		}

		var itemBranchID, stockLevel int
		var name, itemType string
		var retailPrice *decimal.Decimal
		err := tx.QueryRow(ctx,
			"SELECT branch_id, name, item_type, stock_level, retail_price FROM inventory_items WHERE id = $1 FOR UPDATE",
			line.ItemID,
		).Scan(&itemBranchID, &name, &itemType, &stockLevel, &retailPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("inventory item %d not found", line.ItemID)
			}
			return nil, fmt.Errorf("lock inventory item %d: %w", line.ItemID, err)
		}
		if itemBranchID != branchID {
			return nil, fmt.Errorf("inventory item %d does not belong to branch %d", line.ItemID, branchID)
		}
		if itemType != string(RetailProduct) {
			return nil, fmt.Errorf("item %s is a raw material and cannot be sold over the counter", name)
		}
		if retailPrice == nil {
			return nil, fmt.Errorf("item %s has no retail price and cannot be sold", name)
		}
		if stockLevel < line.Quantity {
			return nil, fmt.Errorf("insufficient stock for %s: %d on hand, %d requested", name, stockLevel, line.Quantity)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE inventory_items
			SET stock_level = stock_level - $1, updated_at = NOW()
			WHERE id = $2`,
			line.Quantity, line.ItemID,
		); err != nil {
			return nil, fmt.Errorf("deduct stock for item %d: %w", line.ItemID, err)
		}

		total = total.Add(retailPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	receiptNumber, err := s.receipts.NextNumberTx(ctx, tx, branchID, "RCT")
	if err != nil {
		return nil, err
	}

	created, err := scanTransaction(tx.QueryRow(ctx, `
		INSERT INTO transactions (branch_id, receipt_number, tx_type, amount_paid, payment_method)
		VALUES ($1, $2, 'RETAIL', $3, $4)
		RETURNING `+transactionColumns,
		branchID, receiptNumber, total, paymentMethod,
	))
	if err != nil {
		return nil, fmt.Errorf("insert sale transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit sale: %w", err)
	}
	return created, nil
}

func (s *saleService) VoidTransaction(ctx context.Context, transactionID int, reason string) (*Transaction, error) {
	if reason == "" {
		return nil, fmt.Errorf("void reason is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var isVoid bool
	if err := tx.QueryRow(ctx,
		"SELECT is_void FROM transactions WHERE id = $1 FOR UPDATE", transactionID,
	).Scan(&isVoid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d not found", transactionID)
		}
		return nil, fmt.Errorf("fetch transaction %d: %w", transactionID, err)
	}
	if isVoid {
		return nil, fmt.Errorf("transaction %d is already void", transactionID)
	}

	voided, err := scanTransaction(tx.QueryRow(ctx, `
		UPDATE transactions
		SET is_void = true, void_reason = $1
		WHERE id = $2
		RETURNING `+transactionColumns,
		reason, transactionID,
	))
	if err != nil {
		return nil, fmt.Errorf("void transaction %d: %w", transactionID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit void: %w", err)
	}
	return voided, nil
}

func (s *saleService) GetTransaction(ctx context.Context, transactionID int) (*Transaction, error) {
	t, err := scanTransaction(s.pool.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1", transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d not found", transactionID)
		}
		return nil, fmt.Errorf("get transaction %d: %w", transactionID, err)
	}
	return t, nil
}

func (s *saleService) ListTransactions(ctx context.Context, branchID int, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE branch_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2",
		branchID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}
