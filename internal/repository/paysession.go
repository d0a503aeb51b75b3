package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaiyapat/siampos/internal/domain/checkout"
	"github.com/chaiyapat/siampos/internal/domain/sale"
)

const (
	getPaymentSessionSQL = `SELECT method, amount, ref_no, created_at
		FROM payment_sessions
		WHERE employee_id = $1
		ORDER BY created_at, id`

	addPaymentSessionSQL = `INSERT INTO payment_sessions (employee_id, method, amount, ref_no)
		VALUES ($1, $2, $3, $4)`

	clearPaymentSessionSQL = `DELETE FROM payment_sessions WHERE employee_id = $1`
)

var _ checkout.PaymentSessionStore = (*PaymentSessionStore)(nil)

// PaymentSessionStore persists in-progress payment entries so a terminal can
// resume a checkout after a restart.
type PaymentSessionStore struct {
	pool *pgxpool.Pool
}

// NewPaymentSessionStore returns a PaymentSessionStore that uses the given pool.
func NewPaymentSessionStore(pool *pgxpool.Pool) *PaymentSessionStore {
	return &PaymentSessionStore{pool: pool}
}

// Get returns the pending payment entries for one employee, oldest first.
func (s *PaymentSessionStore) Get(ctx context.Context, employeeID string) ([]sale.PaymentDetail, error) {
	rows, err := s.pool.Query(ctx, getPaymentSessionSQL, employeeID)
	if err != nil {
		return nil, fmt.Errorf("getting payment session: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (sale.PaymentDetail, error) {
		var d sale.PaymentDetail
		err := row.Scan(&d.Method, &d.Amount, &d.RefNo, &d.Timestamp)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting payment session: %w", err)
	}
	return entries, nil
}

// Add appends payment entries to the employee's session.
func (s *PaymentSessionStore) Add(ctx context.Context, employeeID string, entries []sale.PaymentDetail) error {
	batch := &pgx.Batch{}
	for _, d := range entries {
		batch.Queue(addPaymentSessionSQL, employeeID, d.Method, d.Amount, d.RefNo)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer func() { _ = res.Close() }()

	for range entries {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("adding payment session entry: %w", err)
		}
	}
	return nil
}

// Clear removes all pending payment entries for the employee.
func (s *PaymentSessionStore) Clear(ctx context.Context, employeeID string) error {
	if _, err := s.pool.Exec(ctx, clearPaymentSessionSQL, employeeID); err != nil {
		return fmt.Errorf("clearing payment session: %w", err)
	}
	return nil
}
