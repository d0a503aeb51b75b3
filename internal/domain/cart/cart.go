// Package cart manages each staff member's in-progress sale: the line items
// being rung up before checkout.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for cart operations.
var (
	ErrItemNotFound = errors.New("cart item not found")
	ErrCartHeld     = errors.New("cart is held by a checkout session")
	ErrCartNotHeld  = errors.New("no checkout session to cancel")
)

// Item is one cart entry. Quantity is modelled as distinct entries: scanning
// the same product twice produces two items, each individually removable and
// repriceable.
type Item struct {
	UniqueID  string          `json:"uniqueId"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

// Cart is one staff member's current cart plus its checkout-hold flag.
type Cart struct {
	EmployeeID string `json:"employeeId"`
	Items      []Item `json:"items"`
	// Held marks an open checkout session: the cart is frozen until the
	// payment completes or the hold is cancelled.
	Held bool `json:"held"`
}

// Total sums the item prices.
func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.Price)
	}
	return sum
}

// Repository defines persistence operations for carts.
type Repository interface {
	Get(ctx context.Context, employeeID string) (*Cart, error)
	AddItem(ctx context.Context, employeeID string, item Item) error
	RemoveItem(ctx context.Context, employeeID, uniqueID string) error
	UpdateItemPrice(ctx context.Context, employeeID, uniqueID string, price decimal.Decimal) error
	Clear(ctx context.Context, employeeID string) error
	SetHeld(ctx context.Context, employeeID string, held bool) error
}
