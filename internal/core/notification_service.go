package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationService delivers in-app notifications to branches.
type NotificationService interface {
	// Emit creates a notification in its own connection. branchID nil broadcasts.
	Emit(ctx context.Context, branchID *int, message string, kind NotificationKind) error
	// EmitTx creates a notification within the caller's transaction. Used by
	// workflows that must deliver notifications atomically with their state change.
	EmitTx(ctx context.Context, tx pgx.Tx, branchID *int, message string, kind NotificationKind) error
	// ListForBranch returns notifications visible to a branch: its own plus broadcasts,
	// newest first, capped at limit.
	ListForBranch(ctx context.Context, branchID int, limit int) ([]Notification, error)
	// MarkAllRead marks every notification visible to the branch as read.
	MarkAllRead(ctx context.Context, branchID int) error
	// Clear deletes the branch's own notifications. Broadcasts are shared with
	// every other branch, so they are only marked read.
	Clear(ctx context.Context, branchID int) error
}

type notificationService struct {
	pool *pgxpool.Pool
}

func NewNotificationService(pool *pgxpool.Pool) NotificationService {
	return &notificationService{pool: pool}
}

func (s *notificationService) Emit(ctx context.Context, branchID *int, message string, kind NotificationKind) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO app_notifications (branch_id, message, kind)
		VALUES ($1, $2, $3)`,
		branchID, message, string(kind),
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *notificationService) EmitTx(ctx context.Context, tx pgx.Tx, branchID *int, message string, kind NotificationKind) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO app_notifications (branch_id, message, kind)
		VALUES ($1, $2, $3)`,
		branchID, message, string(kind),
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *notificationService) ListForBranch(ctx context.Context, branchID int, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, branch_id, message, kind, is_read, created_at
		FROM app_notifications
		WHERE branch_id = $1 OR branch_id IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		branchID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.BranchID, &n.Message, &n.Kind, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *notificationService) MarkAllRead(ctx context.Context, branchID int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE app_notifications SET is_read = true
		WHERE (branch_id = $1 OR branch_id IS NULL) AND is_read = false`,
		branchID,
	)
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

func (s *notificationService) Clear(ctx context.Context, branchID int) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM app_notifications WHERE branch_id = $1`,
		branchID,
	)
	if err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE app_notifications SET is_read = true
		WHERE branch_id IS NULL AND is_read = false`,
	)
	if err != nil {
		return fmt.Errorf("mark broadcasts read: %w", err)
	}
	return nil
}
