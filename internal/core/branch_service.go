package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BranchService administers the branch directory.
type BranchService interface {
	// CreateBranch registers a new branch. The installation is capped;
	// creation fails once the cap is reached.
	CreateBranch(ctx context.Context, b Branch) (*Branch, error)
	GetBranch(ctx context.Context, branchID int) (*Branch, error)
	ListBranches(ctx context.Context) ([]Branch, error)
	UpdateBranch(ctx context.Context, b Branch) (*Branch, error)
	// DeactivateBranch marks a branch INACTIVE. Its records remain for history.
	DeactivateBranch(ctx context.Context, branchID int) error
}

type branchService struct {
	pool        *pgxpool.Pool
	maxBranches int
}

// NewBranchService builds a branch directory capped at maxBranches;
// zero or negative falls back to MaxBranches.
func NewBranchService(pool *pgxpool.Pool, maxBranches int) BranchService {
	if maxBranches <= 0 {
		maxBranches = MaxBranches
	}
	return &branchService{pool: pool, maxBranches: maxBranches}
}

const branchColumns = `id, name, address, branch_number, branch_email, status, established_at`

func scanBranch(row pgx.Row) (*Branch, error) {
	var b Branch
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.BranchNumber, &b.BranchEmail, &b.Status, &b.EstablishedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *branchService) CreateBranch(ctx context.Context, b Branch) (*Branch, error) {
	if b.Name == "" {
		return nil, fmt.Errorf("branch name is required")
	}
	if b.BranchNumber == "" {
		return nil, fmt.Errorf("branch number is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize creations so two concurrent requests cannot both pass the cap check.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext('branch_create'))"); err != nil {
		return nil, fmt.Errorf("acquire branch creation lock: %w", err)
	}
	var count int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM branches").Scan(&count); err != nil {
		return nil, fmt.Errorf("count branches: %w", err)
	}
	if count >= s.maxBranches {
		return nil, fmt.Errorf("branch limit reached: at most %d branches are supported", s.maxBranches)
	}

	created, err := scanBranch(tx.QueryRow(ctx, `
		INSERT INTO branches (name, address, branch_number, branch_email)
		VALUES ($1, $2, $3, $4)
		RETURNING `+branchColumns,
		b.Name, b.Address, b.BranchNumber, b.BranchEmail,
	))
	if err != nil {
		return nil, fmt.Errorf("insert branch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit branch creation: %w", err)
	}
	return created, nil
}

func (s *branchService) GetBranch(ctx context.Context, branchID int) (*Branch, error) {
	b, err := scanBranch(s.pool.QueryRow(ctx,
		"SELECT "+branchColumns+" FROM branches WHERE id = $1", branchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("branch %d not found", branchID)
		}
		return nil, fmt.Errorf("get branch %d: %w", branchID, err)
	}
	return b, nil
}

func (s *branchService) ListBranches(ctx context.Context) ([]Branch, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+branchColumns+" FROM branches ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		branches = append(branches, *b)
	}
	return branches, rows.Err()
}

func (s *branchService) UpdateBranch(ctx context.Context, b Branch) (*Branch, error) {
	updated, err := scanBranch(s.pool.QueryRow(ctx, `
		UPDATE branches
		SET name = $1, address = $2, branch_email = $3
		WHERE id = $4
		RETURNING `+branchColumns,
		b.Name, b.Address, b.BranchEmail, b.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("branch %d not found", b.ID)
		}
		return nil, fmt.Errorf("update branch %d: %w", b.ID, err)
	}
	return updated, nil
}

func (s *branchService) DeactivateBranch(ctx context.Context, branchID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE branches SET status = 'INACTIVE' WHERE id = $1", branchID)
	if err != nil {
		return fmt.Errorf("deactivate branch %d: %w", branchID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("branch %d not found", branchID)
	}
	return nil
}
