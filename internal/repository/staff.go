package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaiyapat/siampos/internal/domain/staff"
)

const (
	listStaffSQL = `SELECT id, name, role, passcode_hash FROM staff ORDER BY name`

	getStaffByIDSQL = `SELECT id, name, role, passcode_hash FROM staff WHERE id = $1`

	upsertStaffSQL = `INSERT INTO staff (id, name, role, passcode_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			passcode_hash = EXCLUDED.passcode_hash`
)

var _ staff.Repository = (*StaffRepository)(nil)

// StaffRepository implements staff.Repository backed by PostgreSQL.
type StaffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository returns a StaffRepository that uses the given pool.
func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

// List returns all registered staff, ordered by name.
func (r *StaffRepository) List(ctx context.Context) ([]staff.Staff, error) {
	rows, err := r.pool.Query(ctx, listStaffSQL)
	if err != nil {
		return nil, fmt.Errorf("listing staff: %w", err)
	}
	members, err := pgx.CollectRows(rows, scanStaff)
	if err != nil {
		return nil, fmt.Errorf("listing staff: %w", err)
	}
	return members, nil
}

// GetByID returns one staff member by id.
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*staff.Staff, error) {
	rows, err := r.pool.Query(ctx, getStaffByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting staff %q: %w", id, err)
	}

	member, err := pgx.CollectExactlyOneRow(rows, scanStaff)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, staff.ErrNotFound
		}
		return nil, fmt.Errorf("getting staff %q: %w", id, err)
	}
	return &member, nil
}

// Upsert inserts or updates one staff member. It exists for the seeding tool.
func (r *StaffRepository) Upsert(ctx context.Context, m *staff.Staff) error {
	_, err := r.pool.Exec(ctx, upsertStaffSQL, m.ID, m.Name, m.Role, m.PasscodeHash)
	if err != nil {
		return fmt.Errorf("upserting staff %q: %w", m.ID, err)
	}
	return nil
}

func scanStaff(row pgx.CollectableRow) (staff.Staff, error) {
	var m staff.Staff
	err := row.Scan(&m.ID, &m.Name, &m.Role, &m.PasscodeHash)
	return m, err
}
