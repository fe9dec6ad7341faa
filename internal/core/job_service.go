package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// JobService manages printing jobs from quote to completion.
// Status moves forward only; materials are deducted from branch stock when the
// job enters In-Press, atomically with the status change.
type JobService interface {
	CreateJob(ctx context.Context, job Job) (*Job, error)
	GetJob(ctx context.Context, jobID int) (*Job, error)
	ListJobs(ctx context.Context, branchID int, status *JobStatus) ([]Job, error)
	// AdvanceJob moves the job to the next status. The transition must be the
	// immediate successor of the current status. Moving to In-Press consumes the
	// job's material lines from branch stock. note is stored on Completed.
	AdvanceJob(ctx context.Context, jobID int, next JobStatus, note string) (*Job, error)
	// RecordJobPayment books a payment transaction against the job, assigns a
	// receipt number, and rolls the payment status from the cumulative total.
	RecordJobPayment(ctx context.Context, jobID int, amount decimal.Decimal, method string) (*Job, error)
}

type jobService struct {
	pool      *pgxpool.Pool
	inventory InventoryService
	receipts  ReceiptService
}

func NewJobService(pool *pgxpool.Pool, inventory InventoryService, receipts ReceiptService) JobService {
	return &jobService{pool: pool, inventory: inventory, receipts: receipts}
}

const jobColumns = `id, branch_id, customer_id, customer_name, customer_email, customer_phone,
	service_type, status, payment_status, quantity, page_size, gsm,
	material_cost, labor_cost, overhead, subtotal, markup, total, amount_paid,
	completion_note, created_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.BranchID, &j.CustomerID, &j.CustomerName, &j.CustomerEmail, &j.CustomerPhone,
		&j.Specs.ServiceType, &j.Status, &j.PaymentStatus, &j.Specs.Quantity, &j.Specs.PageSize, &j.Specs.GSM,
		&j.Pricing.MaterialCost, &j.Pricing.LaborCost, &j.Pricing.Overhead,
		&j.Pricing.Subtotal, &j.Pricing.Markup, &j.Pricing.Total, &j.AmountPaid,
		&j.CompletionNote, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *jobService) CreateJob(ctx context.Context, job Job) (*Job, error) {
	if job.CustomerName == "" {
		return nil, fmt.Errorf("customer name is required")
	}
	if job.Specs.ServiceType == "" {
		return nil, fmt.Errorf("service type is required")
	}
	if job.Specs.Quantity <= 0 {
		return nil, fmt.Errorf("job quantity must be positive, got %d", job.Specs.Quantity)
	}
	if job.Specs.PageSize == "" {
		job.Specs.PageSize = "A4"
	}

	pricing, err := ComputeJobPricing(job.Pricing.MaterialCost, job.Pricing.LaborCost,
		job.Pricing.Overhead, job.Pricing.Markup)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := scanJob(tx.QueryRow(ctx, `
		INSERT INTO jobs (branch_id, customer_id, customer_name, customer_email, customer_phone,
		                  service_type, quantity, page_size, gsm,
		                  material_cost, labor_cost, overhead, subtotal, markup, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+jobColumns,
		job.BranchID, job.CustomerID, job.CustomerName, job.CustomerEmail, job.CustomerPhone,
		job.Specs.ServiceType, job.Specs.Quantity, job.Specs.PageSize, job.Specs.GSM,
		pricing.MaterialCost, pricing.LaborCost, pricing.Overhead,
		pricing.Subtotal, pricing.Markup, pricing.Total,
	))
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	for _, m := range job.Materials {
		if m.Quantity <= 0 {
			return nil, fmt.Errorf("material quantity for item %d must be positive", m.ItemID)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO job_materials (job_id, item_id, quantity) VALUES ($1, $2, $3)",
			created.ID, m.ItemID, m.Quantity,
		); err != nil {
			return nil, fmt.Errorf("insert job material for item %d: %w", m.ItemID, err)
		}
	}
	created.Materials = job.Materials

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit job creation: %w", err)
	}
	return created, nil
}

func (s *jobService) GetJob(ctx context.Context, jobID int) (*Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE id = $1", jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %d not found", jobID)
		}
		return nil, fmt.Errorf("get job %d: %w", jobID, err)
	}

	materials, err := s.fetchMaterials(ctx, jobID)
	if err != nil {
		return nil, err
	}
	j.Materials = materials
	return j, nil
}

func (s *jobService) ListJobs(ctx context.Context, branchID int, status *JobStatus) ([]Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs WHERE branch_id = $1"
	args := []any{branchID}
	if status != nil {
		args = append(args, string(*status))
		query += " AND status = $2"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (s *jobService) AdvanceJob(ctx context.Context, jobID int, next JobStatus, note string) (*Job, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current JobStatus
	if err := tx.QueryRow(ctx,
		"SELECT status FROM jobs WHERE id = $1 FOR UPDATE", jobID,
	).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %d not found", jobID)
		}
		return nil, fmt.Errorf("fetch job %d: %w", jobID, err)
	}

	if err := NextJobStatus(current, next); err != nil {
		return nil, err
	}

	// Going to press consumes the job's materials from branch stock.
	if next == JobInPress {
		materials, err := s.fetchMaterialsTx(ctx, tx, jobID)
		if err != nil {
			return nil, err
		}
		for _, m := range materials {
			if err := s.inventory.DebitItemTx(ctx, tx, m.ItemID, m.Quantity); err != nil {
				return nil, err
			}
		}
	}

	var completionNote *string
	if next == JobCompleted && note != "" {
		completionNote = &note
	}

	updated, err := scanJob(tx.QueryRow(ctx, `
		UPDATE jobs
		SET status = $1, completion_note = COALESCE($2, completion_note)
		WHERE id = $3
		RETURNING `+jobColumns,
		string(next), completionNote, jobID,
	))
	if err != nil {
		return nil, fmt.Errorf("update job %d status: %w", jobID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit job status change: %w", err)
	}
	return updated, nil
}

func (s *jobService) RecordJobPayment(ctx context.Context, jobID int, amount decimal.Decimal, method string) (*Job, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, fmt.Errorf("payment amount must be positive, got %s", amount)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var branchID int
	var total, paid decimal.Decimal
	if err := tx.QueryRow(ctx,
		"SELECT branch_id, total, amount_paid FROM jobs WHERE id = $1 FOR UPDATE", jobID,
	).Scan(&branchID, &total, &paid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %d not found", jobID)
		}
		return nil, fmt.Errorf("fetch job %d: %w", jobID, err)
	}

	if paid.Add(amount).GreaterThan(total) {
		return nil, fmt.Errorf("payment of %s exceeds outstanding balance of %s on job %d", amount, total.Sub(paid), jobID)
	}

	receiptNumber, err := s.receipts.NextNumberTx(ctx, tx, branchID, "RCT")
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO transactions (branch_id, receipt_number, job_id, tx_type, amount_paid, payment_method)
		VALUES ($1, $2, $3, 'JOB', $4, $5)`,
		branchID, receiptNumber, jobID, amount, method,
	); err != nil {
		return nil, fmt.Errorf("insert job payment transaction: %w", err)
	}

	newPaid := paid.Add(amount)
	updated, err := scanJob(tx.QueryRow(ctx, `
		UPDATE jobs
		SET amount_paid = $1, payment_status = $2
		WHERE id = $3
		RETURNING `+jobColumns,
		newPaid, string(RollPaymentStatus(newPaid, total)), jobID,
	))
	if err != nil {
		return nil, fmt.Errorf("update job %d payment: %w", jobID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit job payment: %w", err)
	}
	return updated, nil
}

func (s *jobService) fetchMaterials(ctx context.Context, jobID int) ([]JobMaterial, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT item_id, quantity FROM job_materials WHERE job_id = $1 ORDER BY id", jobID)
	if err != nil {
		return nil, fmt.Errorf("fetch job materials for job %d: %w", jobID, err)
	}
	defer rows.Close()
	return collectMaterials(rows)
}

func (s *jobService) fetchMaterialsTx(ctx context.Context, tx pgx.Tx, jobID int) ([]JobMaterial, error) {
	rows, err := tx.Query(ctx,
		"SELECT item_id, quantity FROM job_materials WHERE job_id = $1 ORDER BY id", jobID)
	if err != nil {
		return nil, fmt.Errorf("fetch job materials for job %d: %w", jobID, err)
	}
	defer rows.Close()
	return collectMaterials(rows)
}

func collectMaterials(rows pgx.Rows) ([]JobMaterial, error) {
	var materials []JobMaterial
	for rows.Next() {
		var m JobMaterial
		if err := rows.Scan(&m.ItemID, &m.Quantity); err != nil {
			return nil, fmt.Errorf("scan job material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}
