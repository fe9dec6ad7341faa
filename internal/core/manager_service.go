package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ManagerService administers manager accounts and verifies credentials.
type ManagerService interface {
	// CreateManager creates an account, hashing the plaintext password with bcrypt.
	CreateManager(ctx context.Context, m Manager, password string) (*Manager, error)
	GetByUsername(ctx context.Context, username string) (*Manager, error)
	GetByID(ctx context.Context, managerID int) (*Manager, error)
	ListManagers(ctx context.Context) ([]Manager, error)
	// Authenticate verifies username/password and stamps last_login on success.
	Authenticate(ctx context.Context, username, password string) (*Manager, error)
	// SetPassword replaces the account's password hash.
	SetPassword(ctx context.Context, managerID int, password string) error
	DeactivateManager(ctx context.Context, managerID int) error
}

type managerService struct {
	pool *pgxpool.Pool
}

func NewManagerService(pool *pgxpool.Pool) ManagerService {
	return &managerService{pool: pool}
}

const managerColumns = `id, name, username, password_hash, role, branch_id, is_active, last_login, created_at`

func scanManager(row pgx.Row) (*Manager, error) {
	var m Manager
	err := row.Scan(&m.ID, &m.Name, &m.Username, &m.PasswordHash, &m.Role,
		&m.BranchID, &m.IsActive, &m.LastLogin, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *managerService) CreateManager(ctx context.Context, m Manager, password string) (*Manager, error) {
	if m.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if m.Role != "owner" && m.Role != "manager" {
		return nil, fmt.Errorf("invalid role %q", m.Role)
	}
	if m.Role == "manager" && m.BranchID == nil {
		return nil, fmt.Errorf("manager accounts must be assigned to a branch")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := scanManager(s.pool.QueryRow(ctx, `
		INSERT INTO managers (name, username, password_hash, role, branch_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+managerColumns,
		m.Name, m.Username, string(hash), m.Role, m.BranchID,
	))
	if err != nil {
		return nil, fmt.Errorf("insert manager: %w", err)
	}
	return created, nil
}

func (s *managerService) GetByUsername(ctx context.Context, username string) (*Manager, error) {
	m, err := scanManager(s.pool.QueryRow(ctx,
		"SELECT "+managerColumns+" FROM managers WHERE username = $1 AND is_active = true LIMIT 1",
		username,
	))
	if err != nil {
		return nil, fmt.Errorf("manager %q not found: %w", username, err)
	}
	return m, nil
}

func (s *managerService) GetByID(ctx context.Context, managerID int) (*Manager, error) {
	m, err := scanManager(s.pool.QueryRow(ctx,
		"SELECT "+managerColumns+" FROM managers WHERE id = $1", managerID))
	if err != nil {
		return nil, fmt.Errorf("manager id=%d not found: %w", managerID, err)
	}
	return m, nil
}

func (s *managerService) ListManagers(ctx context.Context) ([]Manager, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+managerColumns+" FROM managers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	defer rows.Close()

	var managers []Manager
	for rows.Next() {
		m, err := scanManager(rows)
		if err != nil {
			return nil, fmt.Errorf("scan manager: %w", err)
		}
		managers = append(managers, *m)
	}
	return managers, rows.Err()
}

func (s *managerService) Authenticate(ctx context.Context, username, password string) (*Manager, error) {
	m, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if _, err := s.pool.Exec(ctx,
		"UPDATE managers SET last_login = NOW() WHERE id = $1", m.ID,
	); err != nil {
		return nil, fmt.Errorf("record login for manager %d: %w", m.ID, err)
	}
	return m, nil
}

func (s *managerService) SetPassword(ctx context.Context, managerID int, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE managers SET password_hash = $1 WHERE id = $2", string(hash), managerID)
	if err != nil {
		return fmt.Errorf("set password for manager %d: %w", managerID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("manager %d not found", managerID)
	}
	return nil
}

func (s *managerService) DeactivateManager(ctx context.Context, managerID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE managers SET is_active = false WHERE id = $1", managerID)
	if err != nil {
		return fmt.Errorf("deactivate manager %d: %w", managerID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("manager %d not found", managerID)
	}
	return nil
}
