package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaiyapat/siampos/internal/domain/discount"
)

const (
	findDiscountSQL = `SELECT code, type, value, min_subtotal, description, active
		FROM discounts WHERE code = $1`

	upsertDiscountSQL = `INSERT INTO discounts (code, type, value, min_subtotal, description, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO UPDATE SET
			type = EXCLUDED.type,
			value = EXCLUDED.value,
			min_subtotal = EXCLUDED.min_subtotal,
			description = EXCLUDED.description,
			active = EXCLUDED.active`
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByCode returns the discount rule for code. Unknown codes map to
// discount.ErrInvalidCode so callers need not distinguish missing from bad.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Rule, error) {
	rows, err := r.pool.Query(ctx, findDiscountSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount %q: %w", code, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (discount.Rule, error) {
		var (
			d   discount.Rule
			typ string
		)
		err := row.Scan(&d.Code, &typ, &d.Value, &d.MinSubtotal, &d.Description, &d.Active)
		d.Type = discount.Type(typ)
		return d, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrInvalidCode
		}
		return nil, fmt.Errorf("finding discount %q: %w", code, err)
	}
	return &rule, nil
}

// Upsert inserts or updates one discount rule. It exists for the seeding tool.
func (r *DiscountRepository) Upsert(ctx context.Context, d *discount.Rule) error {
	_, err := r.pool.Exec(ctx, upsertDiscountSQL,
		d.Code, string(d.Type), d.Value, d.MinSubtotal, d.Description, d.Active)
	if err != nil {
		return fmt.Errorf("upserting discount %q: %w", d.Code, err)
	}
	return nil
}
