package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerService manages the customer book and per-customer communication logs.
type CustomerService interface {
	CreateCustomer(ctx context.Context, c Customer) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int) (*Customer, error)
	ListCustomers(ctx context.Context, branchID int) ([]Customer, error)
	UpdateCustomer(ctx context.Context, c Customer) (*Customer, error)
	// LogCommunication appends a dated note to the customer's history.
	LogCommunication(ctx context.Context, customerID int, logType, notes string, userID *int) (*CommunicationLog, error)
	ListCommunications(ctx context.Context, customerID int) ([]CommunicationLog, error)
}

type customerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

const customerColumns = `id, branch_id, name, email, phone, address, created_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.BranchID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("customer name is required")
	}

	created, err := scanCustomer(s.pool.QueryRow(ctx, `
		INSERT INTO customers (branch_id, name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+customerColumns,
		c.BranchID, c.Name, c.Email, c.Phone, c.Address,
	))
	if err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return created, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int) (*Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1", customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d not found", customerID)
		}
		return nil, fmt.Errorf("get customer %d: %w", customerID, err)
	}
	return c, nil
}

func (s *customerService) ListCustomers(ctx context.Context, branchID int) ([]Customer, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE branch_id = $1 ORDER BY name", branchID)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (s *customerService) UpdateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	updated, err := scanCustomer(s.pool.QueryRow(ctx, `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, address = $4
		WHERE id = $5
		RETURNING `+customerColumns,
		c.Name, c.Email, c.Phone, c.Address, c.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d not found", c.ID)
		}
		return nil, fmt.Errorf("update customer %d: %w", c.ID, err)
	}
	return updated, nil
}

func (s *customerService) LogCommunication(ctx context.Context, customerID int, logType, notes string, userID *int) (*CommunicationLog, error) {
	switch logType {
	case "PHONE", "EMAIL", "IN_PERSON", "SYSTEM":
	default:
		return nil, fmt.Errorf("invalid communication log type %q", logType)
	}
	if notes == "" {
		return nil, fmt.Errorf("communication notes are required")
	}

	var log CommunicationLog
	err := s.pool.QueryRow(ctx, `
		INSERT INTO communication_logs (customer_id, log_type, notes, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, customer_id, log_type, notes, user_id, created_at`,
		customerID, logType, notes, userID,
	).Scan(&log.ID, &log.CustomerID, &log.LogType, &log.Notes, &log.UserID, &log.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert communication log: %w", err)
	}
	return &log, nil
}

func (s *customerService) ListCommunications(ctx context.Context, customerID int) ([]CommunicationLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, customer_id, log_type, notes, user_id, created_at
		FROM communication_logs
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list communication logs: %w", err)
	}
	defer rows.Close()

	var logs []CommunicationLog
	for rows.Next() {
		var l CommunicationLog
		if err := rows.Scan(&l.ID, &l.CustomerID, &l.LogType, &l.Notes, &l.UserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan communication log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
