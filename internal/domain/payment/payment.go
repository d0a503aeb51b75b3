// Package payment holds the settlement entry type, the per-method payment
// strategies, and the mixed-payment ledger used by checkout.
package payment

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Method identifies how a settlement entry was paid.
type Method string

const (
	MethodCash      Method = "cash"
	MethodTransfer  Method = "transfer"
	MethodPromptPay Method = "promptpay"
	MethodOnline    Method = "online"
	MethodCard      Method = "card"
	MethodCredit    Method = "credit"
	MethodApp       Method = "app"
	MethodMixed     Method = "mixed"
)

// Payment is one settlement entry. It is created only when a method's
// contribution is finalized and never mutated afterwards.
type Payment struct {
	Method  Method            `json:"method"`
	Amount  decimal.Decimal   `json:"amount"`
	Note    string            `json:"note,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// clone returns a deep copy so committed entries stay immutable.
func (p Payment) clone() Payment {
	if p.Details != nil {
		d := make(map[string]string, len(p.Details))
		for k, v := range p.Details {
			d[k] = v
		}
		p.Details = d
	}
	return p
}

// Sentinel errors for settlement validation.
var (
	ErrUnknownMethod     = errors.New("unknown payment method")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrIncompletePayment = errors.New("payment incomplete")
	ErrInsufficientCash  = errors.New("insufficient cash")
	ErrMissingSelection  = errors.New("missing selection")
)

// InsufficientCashError reports a cash tender below the required amount.
type InsufficientCashError struct {
	Tendered decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientCashError) Error() string {
	return fmt.Sprintf("insufficient cash: tendered %s, required %s",
		e.Tendered.StringFixed(2), e.Required.StringFixed(2))
}

func (e *InsufficientCashError) Unwrap() error { return ErrInsufficientCash }

// Shortfall returns how much more cash is needed.
func (e *InsufficientCashError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Tendered)
}

// IncompletePaymentError reports a mixed settlement with an outstanding
// remaining balance.
type IncompletePaymentError struct {
	Remaining decimal.Decimal
}

func (e *IncompletePaymentError) Error() string {
	return fmt.Sprintf("payment incomplete: %s remaining", e.Remaining.StringFixed(2))
}

func (e *IncompletePaymentError) Unwrap() error { return ErrIncompletePayment }

// InvalidAmountError reports a rejected amount and the bound it violated.
type InvalidAmountError struct {
	Amount decimal.Decimal
	// Max is the highest acceptable amount, zero when the violation is
	// non-positivity rather than an upper bound.
	Max decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	if e.Max.IsPositive() {
		return fmt.Sprintf("invalid amount %s: must be positive and at most %s",
			e.Amount.StringFixed(2), e.Max.StringFixed(2))
	}
	return fmt.Sprintf("invalid amount %s: must be positive", e.Amount.StringFixed(2))
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// MissingSelectionError reports a method confirmed without a required
// detail, e.g. a bank account for transfers or a network for cards.
type MissingSelectionError struct {
	Method Method
	Field  string
}

func (e *MissingSelectionError) Error() string {
	return fmt.Sprintf("%s payment requires %s", e.Method, e.Field)
}

func (e *MissingSelectionError) Unwrap() error { return ErrMissingSelection }

// Total sums the amounts of the given settlement entries.
func Total(payments []Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}
