// Package checkout orchestrates payment collection: method selection, tax
// configuration, validation, and assembly of the final settlement.
package checkout

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/chaiyapat/siampos/internal/domain/payment"
	"github.com/chaiyapat/siampos/internal/domain/tax"
)

// SaleMode selects which payment methods the terminal offers.
type SaleMode string

const (
	// ModeRetail is a walk-in sale.
	ModeRetail SaleMode = "retail"
	// ModeCompany is a sale to a registered company; adds credit terms.
	ModeCompany SaleMode = "company"
)

// OfferedMethods returns the payment method tabs for a sale mode, in display
// order. The first entry is the default selection after a session reset.
func OfferedMethods(mode SaleMode) []payment.Method {
	if mode == ModeCompany {
		return []payment.Method{
			payment.MethodCash,
			payment.MethodTransfer,
			payment.MethodCredit,
			payment.MethodPromptPay,
			payment.MethodCard,
			payment.MethodMixed,
		}
	}
	return []payment.Method{
		payment.MethodCash,
		payment.MethodPromptPay,
		payment.MethodTransfer,
		payment.MethodCard,
		payment.MethodOnline,
		payment.MethodApp,
		payment.MethodMixed,
	}
}

// State is the session's position in its lifecycle.
type State string

const (
	// StatePaying accepts configuration changes and confirmation attempts.
	StatePaying State = "paying"
	// StateSettled is terminal for the session; it holds the final
	// settlement until the transaction is finished.
	StateSettled State = "settled"
)

// Session lifecycle errors.
var (
	ErrNotPaying        = errors.New("session is not in paying state")
	ErrNotSettled       = errors.New("session is not settled")
	ErrProcessing       = errors.New("confirmation already in flight")
	ErrMethodNotOffered = errors.New("payment method not offered for sale mode")
)

// Settlement is the immutable outcome of a confirmed checkout: the final
// list of payment entries plus the change owed to the customer.
type Settlement struct {
	Payments []payment.Payment
	Change   decimal.Decimal
}

// Session is the ephemeral state of one payment surface. It is exclusively
// owned by its caller; all transitions are synchronous. Every time the
// surface opens, or the payable total changes, Reset must be called — no
// state survives a reset.
type Session struct {
	registry *payment.Registry

	state      State
	mode       SaleMode
	payable    decimal.Decimal
	method     payment.Method
	taxCfg     tax.Config
	note       string
	tendered   decimal.Decimal
	details    map[string]string
	ledger     *payment.Ledger
	processing bool
	settlement *Settlement
}

// NewSession creates a session for the given payable total and sale mode.
func NewSession(registry *payment.Registry, payable decimal.Decimal, mode SaleMode) *Session {
	s := &Session{registry: registry}
	s.Reset(payable, mode)
	return s
}

// Reset unconditionally returns the session to its defaults: first offered
// method selected, ledger discarded, note cleared, tax invoice off, VAT mode
// included. Called on every open of the payment surface and whenever the
// payable total changes.
func (s *Session) Reset(payable decimal.Decimal, mode SaleMode) {
	s.state = StatePaying
	s.mode = mode
	s.payable = payable
	s.method = OfferedMethods(mode)[0]
	s.taxCfg = tax.Config{VATMode: tax.VATIncluded, WithholdingBase: tax.BasePreVAT}
	s.note = ""
	s.tendered = decimal.Zero
	s.details = nil
	s.ledger = nil
	s.processing = false
	s.settlement = nil
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Mode returns the sale mode the session was reset with.
func (s *Session) Mode() SaleMode { return s.mode }

// Method returns the selected payment method.
func (s *Session) Method() payment.Method { return s.method }

// Note returns the free-text note.
func (s *Session) Note() string { return s.note }

// Payable returns the raw payable total the session was opened with.
func (s *Session) Payable() decimal.Decimal { return s.payable }

// TaxConfig returns the current tax configuration.
func (s *Session) TaxConfig() tax.Config { return s.taxCfg }

// Ledger returns the mixed-payment ledger, nil unless mixed is selected.
func (s *Session) Ledger() *payment.Ledger { return s.ledger }

// Settlement returns the final settlement, nil before confirmation.
func (s *Session) Settlement() *Settlement { return s.settlement }

// SelectMethod switches the active payment method tab. Entering mixed mode
// creates a fresh ledger targeting the current net payable; leaving it
// discards the ledger and everything in it.
func (s *Session) SelectMethod(m payment.Method) error {
	if s.state != StatePaying {
		return ErrNotPaying
	}
	if !s.offered(m) {
		return errors.Wrapf(ErrMethodNotOffered, "%s in %s mode", m, s.mode)
	}
	if m == s.method {
		return nil
	}

	s.method = m
	s.tendered = decimal.Zero
	s.details = nil
	s.ledger = nil
	if m == payment.MethodMixed {
		return s.resetLedger()
	}
	return nil
}

// SetTaxInvoice toggles formal tax treatment for the sale.
func (s *Session) SetTaxInvoice(on bool) error {
	s.taxCfg.TaxInvoice = on
	return s.onTaxChange()
}

// SetVATMode selects included/excluded/off VAT handling. Unknown modes are
// rejected without touching the session.
func (s *Session) SetVATMode(m tax.VATMode) error {
	switch m {
	case tax.VATIncluded, tax.VATExcluded, tax.VATOff:
	default:
		return errors.Wrapf(tax.ErrInvalidVATMode, "%q", m)
	}
	s.taxCfg.VATMode = m
	return s.onTaxChange()
}

// SetWithholding configures the withholding percentage and base.
func (s *Session) SetWithholding(percent decimal.Decimal, base tax.WithholdingBase) error {
	s.taxCfg.WithholdingPercent = percent
	s.taxCfg.WithholdingBase = base
	return s.onTaxChange()
}

// SetNote sets the free-text note attached to the settlement entries.
func (s *Session) SetNote(note string) { s.note = note }

// SetTendered records the cash amount handed over by the customer.
func (s *Session) SetTendered(amount decimal.Decimal) { s.tendered = amount }

// SetDetail records a method-specific selection, e.g. the bank account for
// a transfer or the network for a card.
func (s *Session) SetDetail(key, value string) {
	if s.details == nil {
		s.details = make(map[string]string)
	}
	s.details[key] = value
}

// SetProcessing flags an outstanding persistence call. While set, further
// confirmation attempts are rejected instead of overlapping.
func (s *Session) SetProcessing(on bool) { s.processing = on }

// Breakdown computes the tax figures for the session's payable under the
// current configuration.
func (s *Session) Breakdown() (tax.Breakdown, error) {
	return tax.Compute(s.payable, s.taxCfg)
}

// NetPayable returns the amount to collect: grand total minus withholding.
func (s *Session) NetPayable() (decimal.Decimal, error) {
	b, err := s.Breakdown()
	if err != nil {
		return decimal.Zero, err
	}
	return b.NetPayable, nil
}

// ConfirmPayment recomputes the net payable, dispatches to the selected
// method's strategy, and on success stores the settlement and moves the
// session to settled. Validation failures leave the session untouched in
// the paying state; the caller surfaces them as a blocking dialog.
func (s *Session) ConfirmPayment() (*Settlement, error) {
	if s.state != StatePaying {
		return nil, ErrNotPaying
	}
	if s.processing {
		return nil, ErrProcessing
	}

	net, err := s.NetPayable()
	if err != nil {
		return nil, err
	}

	strategy, err := s.registry.ForMethod(s.method)
	if err != nil {
		return nil, err
	}

	res, err := strategy.Settle(net, payment.Input{
		Tendered: s.tendered,
		Details:  s.details,
		Note:     s.note,
		Ledger:   s.ledger,
	})
	if err != nil {
		return nil, err
	}

	s.settlement = &Settlement{Payments: res.Payments, Change: res.Change}
	s.state = StateSettled
	return s.settlement, nil
}

// Finish tears the session down after a settled transaction, ready for the
// next Reset.
func (s *Session) Finish() error {
	if s.state != StateSettled {
		return ErrNotSettled
	}
	s.Reset(decimal.Zero, s.mode)
	return nil
}

func (s *Session) offered(m payment.Method) bool {
	for _, o := range OfferedMethods(s.mode) {
		if o == m {
			return true
		}
	}
	return false
}

// onTaxChange keeps a mixed ledger's target in sync with the net payable;
// partial payments entered against a stale target are discarded.
func (s *Session) onTaxChange() error {
	if s.method == payment.MethodMixed {
		return s.resetLedger()
	}
	return nil
}

func (s *Session) resetLedger() error {
	net, err := s.NetPayable()
	if err != nil {
		return errors.Wrap(err, "net payable")
	}
	s.ledger = payment.NewLedger(net)
	return nil
}
