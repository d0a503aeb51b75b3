// Package discount computes promo-code discounts against a sale subtotal.
package discount

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage applies a percentage-based discount to the subtotal.
	TypePercentage Type = "percentage"
	// TypeFixed applies a fixed monetary discount capped at the subtotal.
	TypeFixed Type = "fixed"
)

// ErrInvalidCode is returned when a discount code is not found, inactive, or
// the subtotal does not meet the rule's minimum.
var ErrInvalidCode = errors.New("invalid discount code")

var hundred = decimal.NewFromInt(100)

// Rule defines a discount's behaviour and eligibility constraints.
type Rule struct {
	Code        string
	Type        Type
	Value       decimal.Decimal
	MinSubtotal decimal.Decimal
	Description string
	Active      bool
}

// Discount holds the computed amount and a human-readable description.
type Discount struct {
	Amount      decimal.Decimal
	Description string
}

// Repository provides lookup of discount rules by code.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
}

// Apply calculates the discount for the given rule and subtotal. It returns
// ErrInvalidCode when the subtotal does not satisfy the rule's minimum.
func Apply(rule *Rule, subtotal decimal.Decimal) (Discount, error) {
	if rule.MinSubtotal.IsPositive() && subtotal.LessThan(rule.MinSubtotal) {
		return Discount{}, ErrInvalidCode
	}

	var amount decimal.Decimal
	switch rule.Type {
	case TypePercentage:
		amount = subtotal.Mul(rule.Value).Div(hundred)
	case TypeFixed:
		amount = decimal.Min(rule.Value, subtotal)
	default:
		return Discount{}, errors.Errorf("unsupported discount type: %q", rule.Type)
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}

	return Discount{
		Amount:      amount.Round(2),
		Description: rule.Description,
	}, nil
}

// Validator validates a discount code against a subtotal and returns the
// computed discount.
type Validator struct {
	repo Repository
}

// NewValidator creates a Validator backed by the given Repository.
func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo}
}

// Validate looks up the rule for code, checks that it is active, and applies
// it to the subtotal.
func (v *Validator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, error) {
	rule, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, errors.Wrap(err, "lookup discount")
	}
	if !rule.Active {
		return nil, ErrInvalidCode
	}

	d, err := Apply(rule, subtotal)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
