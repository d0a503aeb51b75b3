// Package sale defines the persisted transaction record produced by a
// confirmed checkout, and its history queries.
package sale

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/chaiyapat/siampos/internal/domain/tax"
)

// ErrNotFound is returned when a requested sale does not exist.
var ErrNotFound = errors.New("sale not found")

// Item is one sold line, captured at its charged price.
type Item struct {
	UniqueID  string          `json:"uniqueId"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

// PaymentDetail is one settlement entry as persisted with the sale. The
// shape matches what checkout confirmation sends to the backend.
type PaymentDetail struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	RefNo     string          `json:"refNo,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// Customer is the formal customer block printed on tax invoices.
type Customer struct {
	Name    string `json:"name,omitempty"`
	TaxID   string `json:"taxId,omitempty"`
	Address string `json:"address,omitempty"`
}

// Sale is a finalized transaction. The tax figures are not stored; renderers
// recompute them from Payable and the persisted tax configuration.
type Sale struct {
	ID         string
	DocumentID string
	SellerID   string
	Items      []Item

	// Payable is the amount the tax computation ran against at sale time:
	// items total minus discount.
	Payable        decimal.Decimal
	DiscountAmount decimal.Decimal

	TaxInvoice         bool
	VATMode            tax.VATMode
	WithholdingPercent decimal.Decimal
	WithholdingBase    tax.WithholdingBase

	Note      string
	Customer  *Customer
	Payments  []PaymentDetail
	Change    decimal.Decimal
	CreatedAt time.Time
}

// TaxConfig rebuilds the tax configuration the sale was settled under.
func (s *Sale) TaxConfig() tax.Config {
	return tax.Config{
		TaxInvoice:         s.TaxInvoice,
		VATMode:            s.VATMode,
		WithholdingPercent: s.WithholdingPercent,
		WithholdingBase:    s.WithholdingBase,
	}
}

// Breakdown recomputes the tax figures from the persisted fields.
func (s *Sale) Breakdown() (tax.Breakdown, error) {
	return tax.Compute(s.Payable, s.TaxConfig())
}

// Page is one page of sales history, newest first.
type Page struct {
	Sales []Sale `json:"sales"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total int    `json:"total"`
}

// Repository defines persistence operations for sales.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, id string) (*Sale, error)
	History(ctx context.Context, employeeID string, page, limit int) (*Page, error)
	// NextDocumentID allocates the next document number. Tax invoices and
	// plain receipts draw from separate monotonic series.
	NextDocumentID(ctx context.Context, taxInvoice bool) (string, error)
}
