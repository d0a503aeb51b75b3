package payment

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chaiyapat/siampos/internal/domain/tax"
)

// Input carries the method-specific data a strategy needs to settle.
type Input struct {
	// Tendered is the cash physically handed over; cash only.
	Tendered decimal.Decimal
	// Details holds method-specific selections (bank account, card
	// network, transaction reference).
	Details map[string]string
	// Note is free text attached to every produced entry when non-empty.
	Note string
	// Ledger is the accumulated partial payments; mixed only.
	Ledger *Ledger
}

// Result is a strategy's finalized contribution to the settlement.
type Result struct {
	Payments []Payment
	Change   decimal.Decimal
}

// Strategy turns the final payable amount plus method-specific input into
// settlement entries, or fails validation without side effects.
type Strategy interface {
	Method() Method
	Settle(payable decimal.Decimal, in Input) (Result, error)
}

// Registry maps method tags to strategies. Adding a payment method is a
// closed-extension operation: register a strategy, nothing else branches on
// the tag.
type Registry struct {
	strategies map[Method]Strategy
}

// NewRegistry returns a registry with every built-in method registered.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[Method]Strategy)}
	r.Register(cashStrategy{})
	for _, m := range []Method{MethodTransfer, MethodPromptPay, MethodOnline, MethodCard, MethodCredit, MethodApp} {
		r.Register(singleStrategy{method: m})
	}
	r.Register(mixedStrategy{})
	return r
}

// Register adds or replaces the strategy for its method.
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Method()] = s
}

// ForMethod returns the strategy registered for m.
func (r *Registry) ForMethod(m Method) (Strategy, error) {
	s, ok := r.strategies[m]
	if !ok {
		return nil, &UnknownMethodError{Method: m}
	}
	return s, nil
}

// UnknownMethodError reports a method tag with no registered strategy.
type UnknownMethodError struct {
	Method Method
}

func (e *UnknownMethodError) Error() string {
	return "unknown payment method " + string(e.Method)
}

func (e *UnknownMethodError) Unwrap() error { return ErrUnknownMethod }

// requiredDetails lists the selection a method cannot settle without.
var requiredDetails = map[Method]string{
	MethodTransfer: "bank_account",
	MethodCard:     "network",
}

type cashStrategy struct{}

func (cashStrategy) Method() Method { return MethodCash }

// Settle validates the tendered cash covers the payable and computes change.
func (cashStrategy) Settle(payable decimal.Decimal, in Input) (Result, error) {
	required := payable.Round(2)
	if in.Tendered.Add(tax.Epsilon).LessThan(required) {
		return Result{}, &InsufficientCashError{Tendered: in.Tendered, Required: required}
	}

	change := in.Tendered.Sub(required)
	if change.IsNegative() {
		// Covered only by the epsilon allowance above.
		change = decimal.Zero
	}

	return Result{
		Payments: []Payment{{
			Method:  MethodCash,
			Amount:  required,
			Note:    in.Note,
			Details: in.Details,
		}},
		Change: change.Round(2),
	}, nil
}

// singleStrategy settles the full payable with one non-cash entry.
type singleStrategy struct {
	method Method
}

func (s singleStrategy) Method() Method { return s.method }

func (s singleStrategy) Settle(payable decimal.Decimal, in Input) (Result, error) {
	if !payable.IsPositive() {
		return Result{}, &InvalidAmountError{Amount: payable}
	}
	if field, ok := requiredDetails[s.method]; ok {
		if strings.TrimSpace(in.Details[field]) == "" {
			return Result{}, &MissingSelectionError{Method: s.method, Field: field}
		}
	}

	return Result{
		Payments: []Payment{{
			Method:  s.method,
			Amount:  payable.Round(2),
			Note:    in.Note,
			Details: in.Details,
		}},
		Change: decimal.Zero,
	}, nil
}

type mixedStrategy struct{}

func (mixedStrategy) Method() Method { return MethodMixed }

// Settle finalizes the ledger's committed entries. The remaining balance
// must be fully covered; an overpaid ledger (not reachable through the
// validated add path) yields the surplus as change.
func (mixedStrategy) Settle(payable decimal.Decimal, in Input) (Result, error) {
	if in.Ledger == nil {
		return Result{}, &IncompletePaymentError{Remaining: payable.Round(2)}
	}

	remaining := in.Ledger.Remaining()
	if remaining.GreaterThan(tax.Epsilon) {
		return Result{}, &IncompletePaymentError{Remaining: remaining.Round(2)}
	}

	change := decimal.Zero
	if remaining.IsNegative() {
		change = remaining.Abs().Round(2)
	}

	payments := in.Ledger.Payments()
	if in.Note != "" {
		for i := range payments {
			if payments[i].Note == "" {
				payments[i].Note = in.Note
			}
		}
	}

	return Result{Payments: payments, Change: change}, nil
}
