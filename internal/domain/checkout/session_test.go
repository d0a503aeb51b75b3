package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaiyapat/siampos/internal/domain/payment"
	"github.com/chaiyapat/siampos/internal/domain/tax"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newSession(payable string) *Session {
	return NewSession(payment.NewRegistry(), dec(payable), ModeRetail)
}

func TestSession_DefaultsAfterReset(t *testing.T) {
	s := newSession("100")

	assert.Equal(t, StatePaying, s.State())
	assert.Equal(t, payment.MethodCash, s.Method())
	assert.False(t, s.TaxConfig().TaxInvoice)
	assert.Equal(t, tax.VATIncluded, s.TaxConfig().VATMode)
	assert.Empty(t, s.Note())
	assert.Nil(t, s.Ledger())
}

func TestSession_ResetDropsEverything(t *testing.T) {
	s := newSession("100")
	require.NoError(t, s.SelectMethod(payment.MethodMixed))
	s.SetNote("first customer")
	require.NoError(t, s.SetTaxInvoice(true))
	require.NoError(t, s.Ledger().StartAdd(payment.MethodCash))
	require.NoError(t, s.Ledger().ConfirmAdd(dec("50"), nil))
	require.NoError(t, s.Ledger().Confirm())
	require.NoError(t, s.Ledger().Ack())

	// Reopening with a different payable carries nothing over.
	s.Reset(dec("250"), ModeRetail)

	assert.Equal(t, payment.MethodCash, s.Method())
	assert.Empty(t, s.Note())
	assert.False(t, s.TaxConfig().TaxInvoice)
	assert.Nil(t, s.Ledger())
	assert.True(t, s.Payable().Equal(dec("250")))
}

func TestSession_MethodNotOfferedForMode(t *testing.T) {
	s := newSession("100")
	err := s.SelectMethod(payment.MethodCredit)
	require.ErrorIs(t, err, ErrMethodNotOffered)

	s.Reset(dec("100"), ModeCompany)
	require.NoError(t, s.SelectMethod(payment.MethodCredit))
}

func TestSession_CashConfirm(t *testing.T) {
	s := newSession("85.50")
	s.SetTendered(dec("100"))

	settlement, err := s.ConfirmPayment()
	require.NoError(t, err)
	require.Len(t, settlement.Payments, 1)
	assert.True(t, settlement.Payments[0].Amount.Equal(dec("85.50")))
	assert.True(t, settlement.Change.Equal(dec("14.50")))
	assert.Equal(t, StateSettled, s.State())
}

func TestSession_CashInsufficientStaysPaying(t *testing.T) {
	s := newSession("85.50")
	s.SetTendered(dec("80"))

	_, err := s.ConfirmPayment()
	require.ErrorIs(t, err, payment.ErrInsufficientCash)
	assert.Equal(t, StatePaying, s.State())
	assert.Nil(t, s.Settlement())

	// Operator adds more cash and retries.
	s.SetTendered(dec("90"))
	settlement, err := s.ConfirmPayment()
	require.NoError(t, err)
	assert.True(t, settlement.Change.Equal(dec("4.50")))
}

func TestSession_ProcessingBlocksConfirm(t *testing.T) {
	s := newSession("50")
	s.SetTendered(dec("50"))
	s.SetProcessing(true)

	_, err := s.ConfirmPayment()
	require.ErrorIs(t, err, ErrProcessing)

	s.SetProcessing(false)
	_, err = s.ConfirmPayment()
	require.NoError(t, err)
}

func TestSession_ConfirmTwiceFails(t *testing.T) {
	s := newSession("50")
	s.SetTendered(dec("50"))

	_, err := s.ConfirmPayment()
	require.NoError(t, err)
	_, err = s.ConfirmPayment()
	require.ErrorIs(t, err, ErrNotPaying)
}

func TestSession_NoteAttachedToSettlement(t *testing.T) {
	s := newSession("120")
	require.NoError(t, s.SelectMethod(payment.MethodPromptPay))
	s.SetNote("member 552")

	settlement, err := s.ConfirmPayment()
	require.NoError(t, err)
	assert.Equal(t, "member 552", settlement.Payments[0].Note)
}

func TestSession_TransferRequiresBankAccount(t *testing.T) {
	s := newSession("120")
	require.NoError(t, s.SelectMethod(payment.MethodTransfer))

	_, err := s.ConfirmPayment()
	require.ErrorIs(t, err, payment.ErrMissingSelection)

	s.SetDetail("bank_account", "kbank-001")
	_, err = s.ConfirmPayment()
	require.NoError(t, err)
}

func TestSession_TaxInvoiceChangesNetPayable(t *testing.T) {
	s := newSession("1000")
	require.NoError(t, s.SetTaxInvoice(true))
	require.NoError(t, s.SetWithholding(dec("3"), tax.BasePreVAT))

	net, err := s.NetPayable()
	require.NoError(t, err)
	// 1000 - 3% of (1000 / 1.07) ~= 971.96
	assert.True(t, net.Sub(dec("971.96")).Abs().LessThan(dec("0.01")),
		"net = %s", net)

	// Cash for the old grand total no longer suffices only if below net.
	s.SetTendered(dec("971.97"))
	_, err = s.ConfirmPayment()
	require.NoError(t, err)
}

func TestSession_MixedLedgerTargetsNetPayable(t *testing.T) {
	s := newSession("1000")
	require.NoError(t, s.SetTaxInvoice(true))
	require.NoError(t, s.SelectMethod(payment.MethodMixed))

	require.NotNil(t, s.Ledger())
	assert.True(t, s.Ledger().Target().Equal(dec("1000")))

	// Changing the tax config resets the ledger against the new target.
	require.NoError(t, s.SetWithholding(dec("3"), tax.BasePostVAT))
	assert.True(t, s.Ledger().Target().Equal(dec("970")))
	assert.Empty(t, s.Ledger().Payments())
}

func TestSession_RejectsUnknownVATMode(t *testing.T) {
	s := newSession("1000")
	require.NoError(t, s.SetTaxInvoice(true))
	require.NoError(t, s.SelectMethod(payment.MethodMixed))

	err := s.SetVATMode(tax.VATMode("vat?"))
	require.ErrorIs(t, err, tax.ErrInvalidVATMode)

	// The session keeps its previous mode and the ledger target is intact.
	assert.Equal(t, tax.VATIncluded, s.TaxConfig().VATMode)
	assert.True(t, s.Ledger().Target().Equal(dec("1000")))

	require.NoError(t, s.SetVATMode(tax.VATOff))
	assert.Equal(t, tax.VATOff, s.TaxConfig().VATMode)
}

func TestSession_MixedEndToEnd(t *testing.T) {
	s := newSession("500")
	require.NoError(t, s.SelectMethod(payment.MethodMixed))

	l := s.Ledger()
	for _, step := range []struct {
		method payment.Method
		amount string
	}{
		{payment.MethodCash, "300"},
		{payment.MethodTransfer, "200"},
	} {
		require.NoError(t, l.StartAdd(step.method))
		require.NoError(t, l.ConfirmAdd(dec(step.amount), nil))
		require.NoError(t, l.Confirm())
		require.NoError(t, l.Ack())
	}

	settlement, err := s.ConfirmPayment()
	require.NoError(t, err)
	require.Len(t, settlement.Payments, 2)
	assert.True(t, payment.Total(settlement.Payments).Equal(dec("500")))
	assert.True(t, settlement.Change.IsZero())
}

func TestSession_MixedIncompleteBlocksConfirm(t *testing.T) {
	s := newSession("500")
	require.NoError(t, s.SelectMethod(payment.MethodMixed))

	l := s.Ledger()
	require.NoError(t, l.StartAdd(payment.MethodCash))
	require.NoError(t, l.ConfirmAdd(dec("300"), nil))
	require.NoError(t, l.Confirm())
	require.NoError(t, l.Ack())

	_, err := s.ConfirmPayment()
	require.ErrorIs(t, err, payment.ErrIncompletePayment)
	assert.Equal(t, StatePaying, s.State())
}

func TestSession_SwitchingAwayFromMixedDiscardsLedger(t *testing.T) {
	s := newSession("500")
	require.NoError(t, s.SelectMethod(payment.MethodMixed))
	require.NoError(t, s.Ledger().StartAdd(payment.MethodCash))
	require.NoError(t, s.Ledger().ConfirmAdd(dec("100"), nil))
	require.NoError(t, s.Ledger().Confirm())
	require.NoError(t, s.Ledger().Ack())

	require.NoError(t, s.SelectMethod(payment.MethodCash))
	assert.Nil(t, s.Ledger())

	// Re-entering mixed starts from a fresh, empty ledger.
	require.NoError(t, s.SelectMethod(payment.MethodMixed))
	assert.Empty(t, s.Ledger().Payments())
}

func TestSession_FinishTearsDown(t *testing.T) {
	s := newSession("50")

	require.ErrorIs(t, s.Finish(), ErrNotSettled)

	s.SetTendered(dec("50"))
	_, err := s.ConfirmPayment()
	require.NoError(t, err)

	require.NoError(t, s.Finish())
	assert.Equal(t, StatePaying, s.State())
	assert.Nil(t, s.Settlement())
	assert.True(t, s.Payable().IsZero())
}
