package payment

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/chaiyapat/siampos/internal/domain/tax"
)

// LedgerState is the mixed-payment ledger's position in its add/confirm flow.
type LedgerState string

const (
	// StateListing shows committed entries; add and remove are allowed.
	StateListing LedgerState = "listing"
	// StateAdding collects an amount for the method chosen via StartAdd.
	StateAdding LedgerState = "adding"
	// StateConfirming holds a pending entry awaiting explicit operator
	// confirmation, modelling money physically changing hands.
	StateConfirming LedgerState = "confirming"
	// StateSuccess is the transient display state after a commit; Ack
	// returns to listing.
	StateSuccess LedgerState = "success"
)

// TransitionError reports an operation invoked from the wrong ledger state.
type TransitionError struct {
	State LedgerState
	Op    string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from %s state", e.Op, e.State)
}

// Ledger accumulates partial payments against a target amount. The remaining
// balance is always recomputed from the committed entries, never cached, and
// can never be driven below -Epsilon through the validated add path.
//
// A ledger is created empty when mixed mode is entered and discarded when the
// mode changes or the payment surface closes unconfirmed; it is never
// persisted on its own.
type Ledger struct {
	target    decimal.Decimal
	committed []Payment

	state         LedgerState
	pendingMethod Method
	pendingAmount decimal.Decimal
	pending       *Payment
}

// NewLedger creates an empty ledger in the listing state.
func NewLedger(target decimal.Decimal) *Ledger {
	return &Ledger{target: target, state: StateListing}
}

// State returns the current flow state.
func (l *Ledger) State() LedgerState { return l.state }

// Target returns the amount the ledger is settling toward.
func (l *Ledger) Target() decimal.Decimal { return l.target }

// Payments returns a copy of the committed entries in insertion order.
func (l *Ledger) Payments() []Payment {
	out := make([]Payment, len(l.committed))
	for i, p := range l.committed {
		out[i] = p.clone()
	}
	return out
}

// TotalPaid returns the sum of committed entry amounts.
func (l *Ledger) TotalPaid() decimal.Decimal {
	return Total(l.committed)
}

// Remaining returns target minus the committed total.
func (l *Ledger) Remaining() decimal.Decimal {
	return l.target.Sub(l.TotalPaid())
}

// Settled reports whether the remaining balance is within Epsilon of zero.
func (l *Ledger) Settled() bool {
	return l.Remaining().LessThanOrEqual(tax.Epsilon)
}

// PendingAmount returns the amount field value for the adding state. After
// StartAdd it is prefilled with the remaining balance as a convenience, not
// a commitment; after Cancel it preserves the operator's last input.
func (l *Ledger) PendingAmount() decimal.Decimal { return l.pendingAmount }

// PendingMethod returns the method chosen via StartAdd.
func (l *Ledger) PendingMethod() Method { return l.pendingMethod }

// StartAdd begins adding a partial payment for the given method, prefilling
// the amount with the current remaining balance rounded to two digits.
func (l *Ledger) StartAdd(m Method) error {
	if l.state != StateListing {
		return &TransitionError{State: l.state, Op: "start add"}
	}
	l.pendingMethod = m
	l.pendingAmount = l.Remaining().Round(2)
	l.state = StateAdding
	return nil
}

// ConfirmAdd validates the entered amount and stages a pending entry for
// operator confirmation. On a validation failure the ledger stays in the
// adding state with nothing mutated.
func (l *Ledger) ConfirmAdd(amount decimal.Decimal, details map[string]string) error {
	if l.state != StateAdding {
		return &TransitionError{State: l.state, Op: "confirm add"}
	}

	remaining := l.Remaining()
	if !amount.IsPositive() {
		return &InvalidAmountError{Amount: amount}
	}
	if amount.GreaterThan(remaining.Add(tax.Epsilon)) {
		return &InvalidAmountError{Amount: amount, Max: remaining.Round(2)}
	}

	l.pendingAmount = amount
	l.pending = &Payment{
		Method:  l.pendingMethod,
		Amount:  amount.Round(2),
		Details: details,
	}
	l.state = StateConfirming
	return nil
}

// Confirm commits the pending entry. The caller is confirming that the money
// was actually received.
func (l *Ledger) Confirm() error {
	if l.state != StateConfirming || l.pending == nil {
		return &TransitionError{State: l.state, Op: "confirm"}
	}
	l.committed = append(l.committed, l.pending.clone())
	l.pending = nil
	l.state = StateSuccess
	return nil
}

// Ack acknowledges the success display and returns to listing.
func (l *Ledger) Ack() error {
	if l.state != StateSuccess {
		return &TransitionError{State: l.state, Op: "ack"}
	}
	l.state = StateListing
	return nil
}

// Cancel discards the pending entry and returns to the adding state with the
// entered amount preserved for editing.
func (l *Ledger) Cancel() error {
	if l.state != StateConfirming {
		return &TransitionError{State: l.state, Op: "cancel"}
	}
	l.pending = nil
	l.state = StateAdding
	return nil
}

// CancelAdd abandons the add flow entirely and returns to listing.
func (l *Ledger) CancelAdd() error {
	if l.state != StateAdding {
		return &TransitionError{State: l.state, Op: "cancel add"}
	}
	l.pending = nil
	l.pendingMethod = ""
	l.pendingAmount = decimal.Zero
	l.state = StateListing
	return nil
}

// Remove deletes an already-committed entry by index, immediately increasing
// the remaining balance. Allowed only from listing.
func (l *Ledger) Remove(index int) error {
	if l.state != StateListing {
		return &TransitionError{State: l.state, Op: "remove"}
	}
	if index < 0 || index >= len(l.committed) {
		return errors.Errorf("no committed payment at index %d", index)
	}
	l.committed = append(l.committed[:index], l.committed[index+1:]...)
	return nil
}
