package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditService appends to and reads the immutable audit trail.
// Entries are written best-effort by callers; a failed audit write must not
// abort the business operation it describes.
type AuditService interface {
	// Record writes one entry. before and after are optional snapshots,
	// marshalled to JSON.
	Record(ctx context.Context, userID *int, action, module string, before, after any) error
	// List returns the most recent entries, optionally filtered by module.
	List(ctx context.Context, module string, limit int) ([]AuditEntry, error)
}

type auditService struct {
	pool *pgxpool.Pool
}

func NewAuditService(pool *pgxpool.Pool) AuditService {
	return &auditService{pool: pool}
}

func (s *auditService) Record(ctx context.Context, userID *int, action, module string, before, after any) error {
	beforeJSON, err := marshalSnapshot(before)
	if err != nil {
		return fmt.Errorf("marshal before snapshot: %w", err)
	}
	afterJSON, err := marshalSnapshot(after)
	if err != nil {
		return fmt.Errorf("marshal after snapshot: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO audit_entries (user_id, action, module, before, after)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, action, module, beforeJSON, afterJSON,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func marshalSnapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (s *auditService) List(ctx context.Context, module string, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, user_id, action, module, before, after, created_at
		FROM audit_entries`
	args := []any{}
	if module != "" {
		query += " WHERE module = $1"
		args = append(args, module)
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Module, &e.Before, &e.After, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
