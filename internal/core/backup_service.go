package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BackupService exports the installation's dataset to a versioned envelope and
// restores from one. Restore replaces each table section present in the
// envelope inside a single transaction: either every section lands or none do.
type BackupService interface {
	Export(ctx context.Context) (*BackupEnvelope, []byte, error)
	// Restore applies a validated envelope. The caller records the outcome via
	// LogBackup.
	Restore(ctx context.Context, env *BackupEnvelope) error
	LogBackup(ctx context.Context, status, summary string, sizeKB int, recipient string) error
	ListBackupLogs(ctx context.Context, limit int) ([]BackupLog, error)
}

type backupService struct {
	pool *pgxpool.Pool
}

func NewBackupService(pool *pgxpool.Pool) BackupService {
	return &backupService{pool: pool}
}

func (s *backupService) Export(ctx context.Context) (*BackupEnvelope, []byte, error) {
	env := &BackupEnvelope{
		Version:     BackupVersion,
		GeneratedAt: time.Now().UTC(),
	}

	var err error
	if env.Data.Branches, err = exportRows[Branch](ctx, s.pool,
		"SELECT "+branchColumns+" FROM branches ORDER BY id",
		func(row pgx.Row) (*Branch, error) { return scanBranch(row) },
	); err != nil {
		return nil, nil, err
	}
	if env.Data.Managers, err = exportRows[Manager](ctx, s.pool,
		"SELECT "+managerColumns+" FROM managers ORDER BY id",
		func(row pgx.Row) (*Manager, error) { return scanManager(row) },
	); err != nil {
		return nil, nil, err
	}
	if env.Data.Inventory, err = exportRows[InventoryItem](ctx, s.pool,
		"SELECT "+itemColumns+" FROM inventory_items ORDER BY id",
		func(row pgx.Row) (*InventoryItem, error) { return scanItem(row) },
	); err != nil {
		return nil, nil, err
	}
	if env.Data.Transfers, err = exportRows[StockTransfer](ctx, s.pool,
		"SELECT "+transferColumns+" FROM stock_transfers ORDER BY id",
		func(row pgx.Row) (*StockTransfer, error) { return scanTransfer(row) },
	); err != nil {
		return nil, nil, err
	}
	if env.Data.Customers, err = exportRows[Customer](ctx, s.pool,
		"SELECT "+customerColumns+" FROM customers ORDER BY id",
		func(row pgx.Row) (*Customer, error) { return scanCustomer(row) },
	); err != nil {
		return nil, nil, err
	}
	if env.Data.Communications, err = exportRows[CommunicationLog](ctx, s.pool, `
		SELECT id, customer_id, log_type, notes, user_id, created_at
		FROM communication_logs ORDER BY id`,
		func(row pgx.Row) (*CommunicationLog, error) {
			var l CommunicationLog
			if err := row.Scan(&l.ID, &l.CustomerID, &l.LogType, &l.Notes, &l.UserID, &l.CreatedAt); err != nil {
				return nil, err
			}
			return &l, nil
		},
	); err != nil {
		return nil, nil, err
	}
	if env.Data.Transactions, err = exportRows[Transaction](ctx, s.pool,
		"SELECT "+transactionColumns+" FROM transactions ORDER BY id",
		func(row pgx.Row) (*Transaction, error) { return scanTransaction(row) },
	); err != nil {
		return nil, nil, err
	}
	if env.Data.Jobs, err = exportRows[Job](ctx, s.pool,
		"SELECT "+jobColumns+" FROM jobs ORDER BY id",
		func(row pgx.Row) (*Job, error) { return scanJob(row) },
	); err != nil {
		return nil, nil, err
	}
	if err = s.attachJobMaterials(ctx, env.Data.Jobs); err != nil {
		return nil, nil, err
	}
	if env.Data.Notifications, err = exportRows[Notification](ctx, s.pool, `
		SELECT id, branch_id, message, kind, is_read, created_at
		FROM app_notifications ORDER BY id`,
		func(row pgx.Row) (*Notification, error) {
			var n Notification
			if err := row.Scan(&n.ID, &n.BranchID, &n.Message, &n.Kind, &n.IsRead, &n.CreatedAt); err != nil {
				return nil, err
			}
			return &n, nil
		},
	); err != nil {
		return nil, nil, err
	}

	env.Data.Settings = map[string]string{}
	rows, err := s.pool.Query(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, nil, fmt.Errorf("export settings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, nil, fmt.Errorf("scan setting: %w", err)
		}
		env.Data.Settings[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal backup envelope: %w", err)
	}
	return env, raw, nil
}

// attachJobMaterials fills each exported job's bill of materials so a restore
// can rebuild job_materials alongside the jobs themselves.
func (s *backupService) attachJobMaterials(ctx context.Context, jobs []Job) error {
	rows, err := s.pool.Query(ctx,
		"SELECT job_id, item_id, quantity FROM job_materials ORDER BY job_id, id")
	if err != nil {
		return fmt.Errorf("export job materials: %w", err)
	}
	defer rows.Close()

	byJob := make(map[int][]JobMaterial)
	for rows.Next() {
		var jobID int
		var m JobMaterial
		if err := rows.Scan(&jobID, &m.ItemID, &m.Quantity); err != nil {
			return fmt.Errorf("scan job material: %w", err)
		}
		byJob[jobID] = append(byJob[jobID], m)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range jobs {
		jobs[i].Materials = byJob[jobs[i].ID]
	}
	return nil
}

func exportRows[T any](ctx context.Context, pool *pgxpool.Pool, query string, scan func(pgx.Row) (*T, error)) ([]T, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("export query: %w", err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("export scan: %w", err)
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (s *backupService) Restore(ctx context.Context, env *BackupEnvelope) error {
	if err := env.Validate(); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Clear in dependency order so foreign keys never dangle mid-restore.
	// Only sections present in the envelope are replaced.
	clearOrder := []struct {
		table   string
		present bool
	}{
		{"transactions", env.Data.Transactions != nil},
		{"job_materials", env.Data.Jobs != nil},
		{"jobs", env.Data.Jobs != nil},
		{"communication_logs", env.Data.Communications != nil || env.Data.Customers != nil},
		{"customers", env.Data.Customers != nil},
		{"app_notifications", env.Data.Notifications != nil},
		{"stock_transfers", env.Data.Transfers != nil},
		{"inventory_items", env.Data.Inventory != nil},
		{"managers", env.Data.Managers != nil},
		{"branches", env.Data.Branches != nil},
	}
	for _, c := range clearOrder {
		if !c.present {
			continue
		}
		if _, err := tx.Exec(ctx, "DELETE FROM "+c.table); err != nil {
			return fmt.Errorf("clear %s: %w", c.table, err)
		}
	}

	for _, b := range env.Data.Branches {
		if _, err := tx.Exec(ctx, `
			INSERT INTO branches (id, name, address, branch_number, branch_email, status, established_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			b.ID, b.Name, b.Address, b.BranchNumber, b.BranchEmail, string(b.Status), b.EstablishedAt,
		); err != nil {
			return fmt.Errorf("restore branch %d: %w", b.ID, err)
		}
	}
	for _, m := range env.Data.Managers {
		if _, err := tx.Exec(ctx, `
			INSERT INTO managers (id, name, username, password_hash, role, branch_id, is_active, last_login, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			m.ID, m.Name, m.Username, m.PasswordHash, m.Role, m.BranchID, m.IsActive, m.LastLogin, m.CreatedAt,
		); err != nil {
			return fmt.Errorf("restore manager %d: %w", m.ID, err)
		}
	}
	for _, it := range env.Data.Inventory {
		if _, err := tx.Exec(ctx, `
			INSERT INTO inventory_items (id, branch_id, sku, name, category, item_type, stock_level, reorder_point, unit_cost, retail_price, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			it.ID, it.BranchID, it.SKU, it.Name, it.Category, string(it.ItemType),
			it.StockLevel, it.ReorderPoint, it.UnitCost, it.RetailPrice, it.UpdatedAt,
		); err != nil {
			return fmt.Errorf("restore inventory item %d: %w", it.ID, err)
		}
	}
	for _, t := range env.Data.Transfers {
		if _, err := tx.Exec(ctx, `
			INSERT INTO stock_transfers (id, origin_branch_id, destination_branch_id, item_id, item_name, sku, quantity, status, created_at, resolved_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			t.ID, t.OriginBranchID, t.DestinationBranchID, t.ItemID, t.ItemName, t.SKU,
			t.Quantity, string(t.Status), t.CreatedAt, t.ResolvedAt,
		); err != nil {
			return fmt.Errorf("restore stock transfer %d: %w", t.ID, err)
		}
	}
	for _, n := range env.Data.Notifications {
		if _, err := tx.Exec(ctx, `
			INSERT INTO app_notifications (id, branch_id, message, kind, is_read, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			n.ID, n.BranchID, n.Message, string(n.Kind), n.IsRead, n.CreatedAt,
		); err != nil {
			return fmt.Errorf("restore notification %d: %w", n.ID, err)
		}
	}
	for _, c := range env.Data.Customers {
		if _, err := tx.Exec(ctx, `
			INSERT INTO customers (id, branch_id, name, email, phone, address, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.BranchID, c.Name, c.Email, c.Phone, c.Address, c.CreatedAt,
		); err != nil {
			return fmt.Errorf("restore customer %d: %w", c.ID, err)
		}
	}
	for _, l := range env.Data.Communications {
		if _, err := tx.Exec(ctx, `
			INSERT INTO communication_logs (id, customer_id, log_type, notes, user_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.CustomerID, l.LogType, l.Notes, l.UserID, l.CreatedAt,
		); err != nil {
			return fmt.Errorf("restore communication log %d: %w", l.ID, err)
		}
	}
	for _, j := range env.Data.Jobs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO jobs (id, branch_id, customer_id, customer_name, customer_email, customer_phone,
			                  service_type, status, payment_status, quantity, page_size, gsm,
			                  material_cost, labor_cost, overhead, subtotal, markup, total, amount_paid,
			                  completion_note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
			j.ID, j.BranchID, j.CustomerID, j.CustomerName, j.CustomerEmail, j.CustomerPhone,
			j.Specs.ServiceType, string(j.Status), string(j.PaymentStatus), j.Specs.Quantity, j.Specs.PageSize, j.Specs.GSM,
			j.Pricing.MaterialCost, j.Pricing.LaborCost, j.Pricing.Overhead,
			j.Pricing.Subtotal, j.Pricing.Markup, j.Pricing.Total, j.AmountPaid,
			j.CompletionNote, j.CreatedAt,
		); err != nil {
			return fmt.Errorf("restore job %d: %w", j.ID, err)
		}
		for _, m := range j.Materials {
			if _, err := tx.Exec(ctx, `
				INSERT INTO job_materials (job_id, item_id, quantity)
				VALUES ($1, $2, $3)`,
				j.ID, m.ItemID, m.Quantity,
			); err != nil {
				return fmt.Errorf("restore materials for job %d: %w", j.ID, err)
			}
		}
	}
	for _, t := range env.Data.Transactions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO transactions (id, branch_id, receipt_number, job_id, tx_type, amount_paid, payment_method, is_void, void_reason, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			t.ID, t.BranchID, t.ReceiptNumber, t.JobID, string(t.Type), t.AmountPaid,
			t.PaymentMethod, t.IsVoid, t.VoidReason, t.CreatedAt,
		); err != nil {
			return fmt.Errorf("restore transaction %d: %w", t.ID, err)
		}
	}
	for k, v := range env.Data.Settings {
		if _, err := tx.Exec(ctx, `
			INSERT INTO settings (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
			k, v,
		); err != nil {
			return fmt.Errorf("restore setting %q: %w", k, err)
		}
	}

	// Re-sync serial sequences after inserting explicit IDs.
	resync := []struct {
		table   string
		present bool
	}{
		{"branches", env.Data.Branches != nil},
		{"managers", env.Data.Managers != nil},
		{"inventory_items", env.Data.Inventory != nil},
		{"stock_transfers", env.Data.Transfers != nil},
		{"app_notifications", env.Data.Notifications != nil},
		{"customers", env.Data.Customers != nil},
		{"communication_logs", env.Data.Communications != nil},
		{"jobs", env.Data.Jobs != nil},
		{"transactions", env.Data.Transactions != nil},
	}
	for _, r := range resync {
		if !r.present {
			continue
		}
		q := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)",
			r.table, r.table,
		)
		if _, err := tx.Exec(ctx, q); err != nil {
			return fmt.Errorf("resync sequence for %s: %w", r.table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}
	return nil
}

func (s *backupService) LogBackup(ctx context.Context, status, summary string, sizeKB int, recipient string) error {
	if status != "SUCCESS" && status != "FAILED" {
		return fmt.Errorf("invalid backup status %q", status)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO backup_logs (status, summary, size_kb, recipient)
		VALUES ($1, $2, $3, $4)`,
		status, summary, sizeKB, recipient,
	)
	if err != nil {
		return fmt.Errorf("insert backup log: %w", err)
	}
	return nil
}

func (s *backupService) ListBackupLogs(ctx context.Context, limit int) ([]BackupLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, status, summary, size_kb, recipient, created_at
		FROM backup_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list backup logs: %w", err)
	}
	defer rows.Close()

	var logs []BackupLog
	for rows.Next() {
		var l BackupLog
		if err := rows.Scan(&l.ID, &l.Status, &l.Summary, &l.SizeKB, &l.Recipient, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backup log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
