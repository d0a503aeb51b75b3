package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/chaiyapat/siampos/internal/domain/cart"
)

const (
	getCartItemsSQL = `SELECT unique_id, product_id, name, price
		FROM cart_items WHERE employee_id = $1 ORDER BY added_at`

	getCartHeldSQL = `SELECT held FROM cart_holds WHERE employee_id = $1`

	addCartItemSQL = `INSERT INTO cart_items (unique_id, employee_id, product_id, name, price)
		VALUES ($1, $2, $3, $4, $5)`

	removeCartItemSQL = `DELETE FROM cart_items
		WHERE employee_id = $1 AND unique_id = $2`

	updateCartItemPriceSQL = `UPDATE cart_items SET price = $3
		WHERE employee_id = $1 AND unique_id = $2`

	clearCartSQL = `DELETE FROM cart_items WHERE employee_id = $1`

	clearHoldSQL = `DELETE FROM cart_holds WHERE employee_id = $1`

	setHeldSQL = `INSERT INTO cart_holds (employee_id, held) VALUES ($1, $2)
		ON CONFLICT (employee_id) DO UPDATE SET held = EXCLUDED.held`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get returns the employee's cart with its checkout-hold flag. An employee
// with no rows gets an empty, unheld cart.
func (r *CartRepository) Get(ctx context.Context, employeeID string) (*cart.Cart, error) {
	rows, err := r.pool.Query(ctx, getCartItemsSQL, employeeID)
	if err != nil {
		return nil, fmt.Errorf("getting cart items: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Item, error) {
		var it cart.Item
		err := row.Scan(&it.UniqueID, &it.ProductID, &it.Name, &it.Price)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting cart items: %w", err)
	}

	c := &cart.Cart{EmployeeID: employeeID, Items: items}
	err = r.pool.QueryRow(ctx, getCartHeldSQL, employeeID).Scan(&c.Held)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("getting cart hold: %w", err)
	}
	return c, nil
}

// AddItem appends one entry to the employee's cart.
func (r *CartRepository) AddItem(ctx context.Context, employeeID string, item cart.Item) error {
	_, err := r.pool.Exec(ctx, addCartItemSQL,
		item.UniqueID, employeeID, item.ProductID, item.Name, item.Price,
	)
	if err != nil {
		return fmt.Errorf("adding cart item: %w", err)
	}
	return nil
}

// RemoveItem deletes one entry by its unique id.
func (r *CartRepository) RemoveItem(ctx context.Context, employeeID, uniqueID string) error {
	tag, err := r.pool.Exec(ctx, removeCartItemSQL, employeeID, uniqueID)
	if err != nil {
		return fmt.Errorf("removing cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// UpdateItemPrice overrides the charged price of one entry.
func (r *CartRepository) UpdateItemPrice(ctx context.Context, employeeID, uniqueID string, price decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx, updateCartItemPriceSQL, employeeID, uniqueID, price)
	if err != nil {
		return fmt.Errorf("updating cart item price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// Clear removes all entries and the hold flag for the employee.
func (r *CartRepository) Clear(ctx context.Context, employeeID string) error {
	if _, err := r.pool.Exec(ctx, clearCartSQL, employeeID); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	if _, err := r.pool.Exec(ctx, clearHoldSQL, employeeID); err != nil {
		return fmt.Errorf("clearing cart hold: %w", err)
	}
	return nil
}

// SetHeld stores the checkout-hold flag.
func (r *CartRepository) SetHeld(ctx context.Context, employeeID string, held bool) error {
	if _, err := r.pool.Exec(ctx, setHeldSQL, employeeID, held); err != nil {
		return fmt.Errorf("setting cart hold: %w", err)
	}
	return nil
}
