package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chaiyapat/siampos/internal/domain/cart"
	"github.com/chaiyapat/siampos/internal/domain/payment"
	"github.com/chaiyapat/siampos/internal/domain/sale"
	"github.com/chaiyapat/siampos/internal/domain/tax"
)

// ErrNoPayments is returned when a confirmation carries no payment entries.
var ErrNoPayments = errors.New("payments required")

// ErrNegativeDiscount is returned when a confirmation carries a discount
// below zero, which would inflate the payable instead of reducing it.
var ErrNegativeDiscount = errors.New("discount amount must not be negative")

// PaymentSessionStore persists partial payments collected ahead of the final
// confirmation, keyed by employee. A crashed terminal can resume from it.
type PaymentSessionStore interface {
	Get(ctx context.Context, employeeID string) ([]sale.PaymentDetail, error)
	Add(ctx context.Context, employeeID string, entries []sale.PaymentDetail) error
	Clear(ctx context.Context, employeeID string) error
}

// ConfirmRequest is the finalization payload for a sale.
type ConfirmRequest struct {
	SellerID           string
	Payments           []sale.PaymentDetail
	Customer           *sale.Customer
	TaxInvoice         bool
	DiscountAmount     decimal.Decimal
	VATMode            tax.VATMode
	WithholdingPercent decimal.Decimal
	WithholdingBase    tax.WithholdingBase
	Note               string
}

// ConfirmResult identifies the recorded transaction.
type ConfirmResult struct {
	TransactionID string
	DocumentID    string
	TotalAmount   decimal.Decimal
	Change        decimal.Decimal
}

// Service finalizes sales: it revalidates the settlement against the cart
// and tax configuration, records the sale, and releases the cart.
type Service struct {
	carts    cart.Repository
	sales    sale.Repository
	sessions PaymentSessionStore
	now      func() time.Time
}

// NewService creates a checkout Service with the required dependencies.
func NewService(carts cart.Repository, sales sale.Repository, sessions PaymentSessionStore) *Service {
	return &Service{
		carts:    carts,
		sales:    sales,
		sessions: sessions,
		now:      time.Now,
	}
}

// Confirm validates and records a finalized sale. The tendered amounts are
// recomputed against the cart server-side: the sum of payment entries must
// cover the net payable within the settlement tolerance. On success the cart
// and any payment session are cleared.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	if len(req.Payments) == 0 {
		return nil, ErrNoPayments
	}
	for _, p := range req.Payments {
		if !p.Amount.IsPositive() {
			return nil, &payment.InvalidAmountError{Amount: p.Amount}
		}
	}
	if req.DiscountAmount.IsNegative() {
		return nil, ErrNegativeDiscount
	}

	c, err := s.carts.Get(ctx, req.SellerID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if len(c.Items) == 0 {
		return nil, cart.ErrEmptyCart
	}

	// Payable = items total - discount, floored at zero.
	payable := c.Total().Sub(req.DiscountAmount)
	if payable.IsNegative() {
		payable = decimal.Zero
	}

	cfg := tax.Config{
		TaxInvoice:         req.TaxInvoice,
		VATMode:            req.VATMode,
		WithholdingPercent: req.WithholdingPercent,
		WithholdingBase:    req.WithholdingBase,
	}.Normalize()
	breakdown, err := tax.Compute(payable, cfg)
	if err != nil {
		return nil, err
	}

	paid := decimal.Zero
	for _, p := range req.Payments {
		paid = paid.Add(p.Amount)
	}
	if paid.Add(tax.Epsilon).LessThan(breakdown.NetPayable) {
		return nil, &payment.IncompletePaymentError{
			Remaining: breakdown.NetPayable.Sub(paid).Round(2),
		}
	}

	change := paid.Sub(breakdown.NetPayable)
	if change.IsNegative() {
		change = decimal.Zero
	}

	docID, err := s.sales.NextDocumentID(ctx, req.TaxInvoice)
	if err != nil {
		return nil, errors.Wrap(err, "allocate document number")
	}

	items := make([]sale.Item, len(c.Items))
	for i, it := range c.Items {
		items[i] = sale.Item{
			UniqueID:  it.UniqueID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
		}
	}

	rec := &sale.Sale{
		ID:                 uuid.New().String(),
		DocumentID:         docID,
		SellerID:           req.SellerID,
		Items:              items,
		Payable:            payable.Round(2),
		DiscountAmount:     req.DiscountAmount.Round(2),
		TaxInvoice:         cfg.TaxInvoice,
		VATMode:            cfg.VATMode,
		WithholdingPercent: cfg.WithholdingPercent,
		WithholdingBase:    cfg.WithholdingBase,
		Note:               req.Note,
		Customer:           req.Customer,
		Payments:           req.Payments,
		Change:             change.Round(2),
		CreatedAt:          s.now(),
	}
	if err := s.sales.Create(ctx, rec); err != nil {
		return nil, errors.Wrap(err, "create sale")
	}

	// Release the cart and any staged payment session. Failures here leave
	// the sale recorded; the caller surfaces them instead of retrying.
	if err := s.carts.Clear(ctx, req.SellerID); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}
	if err := s.sessions.Clear(ctx, req.SellerID); err != nil {
		return nil, errors.Wrap(err, "clear payment session")
	}

	return &ConfirmResult{
		TransactionID: rec.ID,
		DocumentID:    rec.DocumentID,
		TotalAmount:   breakdown.GrandTotal.Round(2),
		Change:        rec.Change,
	}, nil
}
