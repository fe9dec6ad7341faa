package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReceiptService issues gapless, per-branch document numbers for receipts and
// invoices. Numbers are assigned inside the caller's transaction so a rolled
// back sale never burns a number.
type ReceiptService interface {
	// NextNumber assigns the next number in its own transaction.
	NextNumber(ctx context.Context, branchID int, docType string) (string, error)
	// NextNumberTx assigns the next number within the caller's transaction.
	NextNumberTx(ctx context.Context, tx pgx.Tx, branchID int, docType string) (string, error)
}

type receiptService struct {
	pool *pgxpool.Pool
}

func NewReceiptService(pool *pgxpool.Pool) ReceiptService {
	return &receiptService{pool: pool}
}

func (s *receiptService) NextNumber(ctx context.Context, branchID int, docType string) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := nextNumberWithTx(ctx, tx, branchID, docType)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit receipt number: %w", err)
	}
	return number, nil
}

func (s *receiptService) NextNumberTx(ctx context.Context, tx pgx.Tx, branchID int, docType string) (string, error) {
	return nextNumberWithTx(ctx, tx, branchID, docType)
}

// nextNumberWithTx increments the per-branch sequence with an upsert so the
// first document for a branch creates its counter row.
func nextNumberWithTx(ctx context.Context, tx pgx.Tx, branchID int, docType string) (string, error) {
	if docType != "RCT" && docType != "INV" {
		return "", fmt.Errorf("unknown document type %q", docType)
	}

	var lastNumber int64
	err := tx.QueryRow(ctx, `
		INSERT INTO receipt_sequences (branch_id, doc_type, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (branch_id, doc_type)
		DO UPDATE SET last_number = receipt_sequences.last_number + 1
		RETURNING last_number`,
		branchID, docType,
	).Scan(&lastNumber)
	if err != nil {
		return "", fmt.Errorf("generate gapless sequence number: %w", err)
	}

	return fmt.Sprintf("%s-B%d-%05d", docType, branchID, lastNumber), nil
}
