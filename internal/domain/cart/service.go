package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chaiyapat/siampos/internal/domain/product"
)

// ErrEmptyCart is returned when a checkout hold is requested on an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// ErrInvalidPrice is returned for a non-positive price override.
var ErrInvalidPrice = errors.New("price must be greater than 0")

// Service encapsulates cart business logic: adding catalog items, scanner
// lookups, price overrides, and checkout holds.
type Service struct {
	products product.Repository
	barcodes *product.BarcodeIndex
	carts    Repository
}

// NewService creates a cart Service with the required dependencies.
func NewService(products product.Repository, barcodes *product.BarcodeIndex, carts Repository) *Service {
	return &Service{
		products: products,
		barcodes: barcodes,
		carts:    carts,
	}
}

// Get returns the employee's current cart.
func (s *Service) Get(ctx context.Context, employeeID string) (*Cart, error) {
	c, err := s.carts.Get(ctx, employeeID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	return c, nil
}

// AddProduct appends one entry for the given catalog product.
func (s *Service) AddProduct(ctx context.Context, employeeID, productID string) (*Item, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.add(ctx, employeeID, p)
}

// AddByBarcode resolves a scanned barcode through the prefilter and appends
// one entry for the matching product.
func (s *Service) AddByBarcode(ctx context.Context, employeeID, barcode string) (*Item, error) {
	p, err := s.barcodes.Lookup(ctx, barcode)
	if err != nil {
		return nil, err
	}
	return s.add(ctx, employeeID, p)
}

func (s *Service) add(ctx context.Context, employeeID string, p *product.Product) (*Item, error) {
	if err := s.ensureNotHeld(ctx, employeeID); err != nil {
		return nil, err
	}

	item := Item{
		UniqueID:  uuid.New().String(),
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
	}
	if err := s.carts.AddItem(ctx, employeeID, item); err != nil {
		return nil, errors.Wrap(err, "add cart item")
	}
	return &item, nil
}

// Remove deletes one cart entry by its unique id.
func (s *Service) Remove(ctx context.Context, employeeID, uniqueID string) error {
	if err := s.ensureNotHeld(ctx, employeeID); err != nil {
		return err
	}
	return s.carts.RemoveItem(ctx, employeeID, uniqueID)
}

// UpdatePrice overrides the charged price of one cart entry.
func (s *Service) UpdatePrice(ctx context.Context, employeeID, uniqueID string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if err := s.ensureNotHeld(ctx, employeeID); err != nil {
		return err
	}
	return s.carts.UpdateItemPrice(ctx, employeeID, uniqueID, price.Round(2))
}

// Hold freezes the cart for an open checkout session.
func (s *Service) Hold(ctx context.Context, employeeID string) error {
	c, err := s.carts.Get(ctx, employeeID)
	if err != nil {
		return errors.Wrap(err, "get cart")
	}
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}
	if c.Held {
		return ErrCartHeld
	}
	return s.carts.SetHeld(ctx, employeeID, true)
}

// CancelHold releases a checkout hold without completing the sale.
func (s *Service) CancelHold(ctx context.Context, employeeID string) error {
	c, err := s.carts.Get(ctx, employeeID)
	if err != nil {
		return errors.Wrap(err, "get cart")
	}
	if !c.Held {
		return ErrCartNotHeld
	}
	return s.carts.SetHeld(ctx, employeeID, false)
}

func (s *Service) ensureNotHeld(ctx context.Context, employeeID string) error {
	c, err := s.carts.Get(ctx, employeeID)
	if err != nil {
		return errors.Wrap(err, "get cart")
	}
	if c.Held {
		return ErrCartHeld
	}
	return nil
}
