// Package tax computes the VAT and withholding-tax breakdown for a payable
// amount. All amounts are decimal; rounding to two fraction digits happens
// only at display boundaries, not inside the computation.
package tax

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// VATMode selects how VAT relates to the payable amount.
type VATMode string

const (
	// VATIncluded means the payable total already contains VAT; VAT is
	// extracted backward from it.
	VATIncluded VATMode = "included"
	// VATExcluded means VAT is added on top of the payable total.
	VATExcluded VATMode = "excluded"
	// VATOff disables VAT entirely.
	VATOff VATMode = "off"
)

// WithholdingBase selects which figure the withholding percentage applies to.
type WithholdingBase string

const (
	// BasePreVAT computes withholding off the pre-VAT subtotal.
	BasePreVAT WithholdingBase = "pre-vat"
	// BasePostVAT computes withholding off the VAT-inclusive grand total.
	BasePostVAT WithholdingBase = "post-vat"
)

// ErrInvalidVATMode is returned when a Config carries an unknown VAT mode.
var ErrInvalidVATMode = errors.New("invalid vat mode")

var (
	// vatRate is the statutory VAT rate (7%). Fixed per domain; only the
	// mode (included/excluded/off) varies per transaction.
	vatRate  = decimal.NewFromFloat(0.07)
	vatDiv   = decimal.NewFromFloat(1.07)
	hundred  = decimal.NewFromInt(100)
	maxWHPct = decimal.NewFromInt(100)
)

// Epsilon is the tolerance used for sufficiency and remaining-balance
// comparisons across the checkout core. Inherited from the original
// float-based arithmetic; kept so stored amounts produced by older clients
// still settle.
var Epsilon = decimal.NewFromFloat(0.001)

// Config describes the tax treatment of a single sale.
type Config struct {
	// TaxInvoice marks the sale as a formal tax invoice. When false, VAT
	// and withholding never apply regardless of the other fields.
	TaxInvoice bool
	// VATMode selects included/excluded/off VAT handling.
	VATMode VATMode
	// WithholdingPercent in [0,100]; zero disables withholding.
	WithholdingPercent decimal.Decimal
	// WithholdingBase selects the pre- or post-VAT base figure.
	WithholdingBase WithholdingBase
}

// Normalize enforces the config invariants: non-invoice sales carry no
// withholding, percentages are clamped to [0,100], and empty enums fall back
// to their defaults.
func (c Config) Normalize() Config {
	if !c.TaxInvoice {
		c.WithholdingPercent = decimal.Zero
	}
	if c.WithholdingPercent.IsNegative() {
		c.WithholdingPercent = decimal.Zero
	}
	if c.WithholdingPercent.GreaterThan(maxWHPct) {
		c.WithholdingPercent = maxWHPct
	}
	if c.VATMode == "" {
		c.VATMode = VATIncluded
	}
	if c.WithholdingBase == "" {
		c.WithholdingBase = BasePreVAT
	}
	return c
}

// Breakdown is the derived tax figures for one payable amount. It is never
// stored; renderers recompute it from the persisted payable and Config.
type Breakdown struct {
	SubTotalBeforeVAT decimal.Decimal
	VATAmount         decimal.Decimal
	GrandTotal        decimal.Decimal
	WithholdingAmount decimal.Decimal
	// NetPayable is the amount actually collected from the customer:
	// GrandTotal minus WithholdingAmount. Withholding is always a
	// deduction at source, in collection and in receipt reconstruction.
	NetPayable decimal.Decimal
}

// Compute derives the full tax breakdown for payable under cfg.
// It is a pure function: identical inputs always yield identical outputs.
func Compute(payable decimal.Decimal, cfg Config) (Breakdown, error) {
	cfg = cfg.Normalize()

	if payable.IsNegative() {
		payable = decimal.Zero
	}

	b := Breakdown{}

	if !cfg.TaxInvoice {
		b.SubTotalBeforeVAT = payable
		b.GrandTotal = payable
		b.VATAmount = decimal.Zero
		b.WithholdingAmount = decimal.Zero
		b.NetPayable = payable
		return b, nil
	}

	switch cfg.VATMode {
	case VATIncluded:
		b.GrandTotal = payable
		b.SubTotalBeforeVAT = payable.Div(vatDiv)
		b.VATAmount = b.GrandTotal.Sub(b.SubTotalBeforeVAT)
	case VATExcluded:
		b.SubTotalBeforeVAT = payable
		b.VATAmount = payable.Mul(vatRate)
		b.GrandTotal = b.SubTotalBeforeVAT.Add(b.VATAmount)
	case VATOff:
		b.SubTotalBeforeVAT = payable
		b.GrandTotal = payable
		b.VATAmount = decimal.Zero
	default:
		return Breakdown{}, errors.Wrapf(ErrInvalidVATMode, "%q", cfg.VATMode)
	}

	if cfg.WithholdingPercent.IsPositive() {
		base := b.GrandTotal
		// With VAT off there is no meaningful pre-VAT figure; the base
		// falls back to the grand total.
		if cfg.WithholdingBase == BasePreVAT && cfg.VATMode != VATOff {
			base = b.SubTotalBeforeVAT
		}
		b.WithholdingAmount = base.Mul(cfg.WithholdingPercent).Div(hundred)
	}

	b.NetPayable = b.GrandTotal.Sub(b.WithholdingAmount)
	return b, nil
}

// Round returns a copy of the breakdown with every figure rounded to two
// fraction digits, for display and persistence boundaries.
func (b Breakdown) Round() Breakdown {
	return Breakdown{
		SubTotalBeforeVAT: b.SubTotalBeforeVAT.Round(2),
		VATAmount:         b.VATAmount.Round(2),
		GrandTotal:        b.GrandTotal.Round(2),
		WithholdingAmount: b.WithholdingAmount.Round(2),
		NetPayable:        b.NetPayable.Round(2),
	}
}

// WithinEpsilon reports whether a and b differ by no more than Epsilon.
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}
