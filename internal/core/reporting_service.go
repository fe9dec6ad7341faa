package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SalesSummary aggregates one branch's non-void takings over a date range.
type SalesSummary struct {
	BranchID    int                        `json:"branch_id"`
	FromDate    string                     `json:"from_date"`
	ToDate      string                     `json:"to_date"`
	GrossSales  decimal.Decimal            `json:"gross_sales"`
	RetailSales decimal.Decimal            `json:"retail_sales"`
	JobPayments decimal.Decimal            `json:"job_payments"`
	TxCount     int                        `json:"tx_count"`
	VoidedCount int                        `json:"voided_count"`
	ByMethod    map[string]decimal.Decimal `json:"by_method"`
}

// JobProfitability is the margin view of completed jobs in a period.
type JobProfitability struct {
	BranchID      int             `json:"branch_id"`
	CompletedJobs int             `json:"completed_jobs"`
	TotalQuoted   decimal.Decimal `json:"total_quoted"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	TotalMargin   decimal.Decimal `json:"total_margin"`
}

// BranchPerformance is a one-row health snapshot per branch.
type BranchPerformance struct {
	BranchID        int             `json:"branch_id"`
	BranchName      string          `json:"branch_name"`
	StockValue      decimal.Decimal `json:"stock_value"`
	RetailValue     decimal.Decimal `json:"retail_value"`
	GrossSales      decimal.Decimal `json:"gross_sales"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
	OpenJobs        int             `json:"open_jobs"`
	LowStockSKU     int             `json:"low_stock_skus"`
}

// ReportingService produces read-only aggregates for the reports screens.
type ReportingService interface {
	GetSalesSummary(ctx context.Context, branchID int, fromDate, toDate string) (*SalesSummary, error)
	GetJobProfitability(ctx context.Context, branchID int, fromDate, toDate string) (*JobProfitability, error)
	GetBranchPerformance(ctx context.Context) ([]BranchPerformance, error)
}

type reportingService struct {
	pool     *pgxpool.Pool
	settings SettingsService
}

func NewReportingService(pool *pgxpool.Pool, settings SettingsService) ReportingService {
	return &reportingService{pool: pool, settings: settings}
}

func (s *reportingService) GetSalesSummary(ctx context.Context, branchID int, fromDate, toDate string) (*SalesSummary, error) {
	summary := &SalesSummary{
		BranchID: branchID,
		FromDate: fromDate,
		ToDate:   toDate,
		ByMethod: make(map[string]decimal.Decimal),
	}

	rows, err := s.pool.Query(ctx, `
		SELECT tx_type, payment_method, is_void, amount_paid
		FROM transactions
		WHERE branch_id = $1
		  AND created_at >= $2::date
		  AND created_at < ($3::date + INTERVAL '1 day')`,
		branchID, fromDate, toDate,
	)
	if err != nil {
		return nil, fmt.Errorf("query sales summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txType, method string
		var isVoid bool
		var amount decimal.Decimal
		if err := rows.Scan(&txType, &method, &isVoid, &amount); err != nil {
			return nil, fmt.Errorf("scan sales row: %w", err)
		}
		if isVoid {
			summary.VoidedCount++
			continue
		}
		summary.TxCount++
		summary.GrossSales = summary.GrossSales.Add(amount)
		summary.ByMethod[method] = summary.ByMethod[method].Add(amount)
		if txType == string(TxRetail) {
			summary.RetailSales = summary.RetailSales.Add(amount)
		} else {
			summary.JobPayments = summary.JobPayments.Add(amount)
		}
	}
	return summary, rows.Err()
}

func (s *reportingService) GetJobProfitability(ctx context.Context, branchID int, fromDate, toDate string) (*JobProfitability, error) {
	report := &JobProfitability{BranchID: branchID}
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total), 0),
		       COALESCE(SUM(subtotal), 0)
		FROM jobs
		WHERE branch_id = $1
		  AND status = 'Completed'
		  AND created_at >= $2::date
		  AND created_at < ($3::date + INTERVAL '1 day')`,
		branchID, fromDate, toDate,
	).Scan(&report.CompletedJobs, &report.TotalQuoted, &report.TotalCost)
	if err != nil {
		return nil, fmt.Errorf("query job profitability: %w", err)
	}
	report.TotalMargin = report.TotalQuoted.Sub(report.TotalCost)
	return report, nil
}

func (s *reportingService) GetBranchPerformance(ctx context.Context) ([]BranchPerformance, error) {
	threshold, err := s.settings.GlobalLowStockThreshold(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT b.id, b.name,
		       COALESCE((SELECT SUM(ii.unit_cost * ii.stock_level) FROM inventory_items ii WHERE ii.branch_id = b.id), 0),
		       COALESCE((SELECT SUM(ii.retail_price * ii.stock_level) FROM inventory_items ii WHERE ii.branch_id = b.id AND ii.retail_price IS NOT NULL), 0),
		       COALESCE((SELECT SUM(t.amount_paid) FROM transactions t WHERE t.branch_id = b.id AND NOT t.is_void), 0),
		       COALESCE((SELECT SUM(j.total - j.amount_paid) FROM jobs j WHERE j.branch_id = b.id AND j.payment_status <> 'Paid'), 0),
		       (SELECT COUNT(*) FROM jobs j WHERE j.branch_id = b.id AND j.status <> 'Completed'),
		       (SELECT COUNT(*) FROM inventory_items ii WHERE ii.branch_id = b.id
		          AND ii.stock_level <= CASE WHEN ii.reorder_point > 0 THEN ii.reorder_point ELSE $1 END)
		FROM branches b
		WHERE b.status = 'ACTIVE'
		ORDER BY b.id`,
		threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("query branch performance: %w", err)
	}
	defer rows.Close()

	var out []BranchPerformance
	for rows.Next() {
		var p BranchPerformance
		if err := rows.Scan(&p.BranchID, &p.BranchName, &p.StockValue, &p.RetailValue, &p.GrossSales, &p.OutstandingDebt, &p.OpenJobs, &p.LowStockSKU); err != nil {
			return nil, fmt.Errorf("scan branch performance: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
