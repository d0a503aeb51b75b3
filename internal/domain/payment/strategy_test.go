package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRegistry_AllMethodsRegistered(t *testing.T) {
	r := NewRegistry()
	for _, m := range []Method{
		MethodCash, MethodTransfer, MethodPromptPay, MethodOnline,
		MethodCard, MethodCredit, MethodApp, MethodMixed,
	} {
		s, err := r.ForMethod(m)
		require.NoError(t, err, "method %s", m)
		assert.Equal(t, m, s.Method())
	}
}

func TestRegistry_UnknownMethod(t *testing.T) {
	r := NewRegistry()
	_, err := r.ForMethod("loyalty")
	require.ErrorIs(t, err, ErrUnknownMethod)

	var umErr *UnknownMethodError
	require.ErrorAs(t, err, &umErr)
	assert.Equal(t, Method("loyalty"), umErr.Method)
}

func TestCash_ExactAndChange(t *testing.T) {
	r := NewRegistry()
	s, err := r.ForMethod(MethodCash)
	require.NoError(t, err)

	res, err := s.Settle(dec("85.50"), Input{Tendered: dec("100")})
	require.NoError(t, err)
	require.Len(t, res.Payments, 1)
	assert.True(t, res.Payments[0].Amount.Equal(dec("85.50")))
	assert.True(t, res.Change.Equal(dec("14.50")), "change = %s", res.Change)
}

func TestCash_Insufficient(t *testing.T) {
	r := NewRegistry()
	s, err := r.ForMethod(MethodCash)
	require.NoError(t, err)

	_, err = s.Settle(dec("85.50"), Input{Tendered: dec("80")})
	require.ErrorIs(t, err, ErrInsufficientCash)

	var icErr *InsufficientCashError
	require.ErrorAs(t, err, &icErr)
	assert.True(t, icErr.Shortfall().Equal(dec("5.50")))
}

func TestCash_ToleranceAllowsRoundingGap(t *testing.T) {
	r := NewRegistry()
	s, err := r.ForMethod(MethodCash)
	require.NoError(t, err)

	res, err := s.Settle(dec("100"), Input{Tendered: dec("99.9995")})
	require.NoError(t, err)
	assert.True(t, res.Change.IsZero())
}

func TestSingle_FullPayable(t *testing.T) {
	r := NewRegistry()

	for _, m := range []Method{MethodPromptPay, MethodOnline, MethodCredit, MethodApp} {
		s, err := r.ForMethod(m)
		require.NoError(t, err)

		res, err := s.Settle(dec("199.99"), Input{Note: "table 4"})
		require.NoError(t, err, "method %s", m)
		require.Len(t, res.Payments, 1)
		assert.Equal(t, m, res.Payments[0].Method)
		assert.True(t, res.Payments[0].Amount.Equal(dec("199.99")))
		assert.Equal(t, "table 4", res.Payments[0].Note)
		assert.True(t, res.Change.IsZero())
	}
}

func TestSingle_NonPositivePayable(t *testing.T) {
	r := NewRegistry()
	s, err := r.ForMethod(MethodPromptPay)
	require.NoError(t, err)

	_, err = s.Settle(decimal.Zero, Input{})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSingle_MissingSelection(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		method Method
		field  string
	}{
		{MethodTransfer, "bank_account"},
		{MethodCard, "network"},
	}

	for _, tt := range tests {
		s, err := r.ForMethod(tt.method)
		require.NoError(t, err)

		_, err = s.Settle(dec("50"), Input{})
		require.ErrorIs(t, err, ErrMissingSelection, "method %s", tt.method)

		var msErr *MissingSelectionError
		require.ErrorAs(t, err, &msErr)
		assert.Equal(t, tt.field, msErr.Field)

		// Providing the selection settles normally.
		res, err := s.Settle(dec("50"), Input{Details: map[string]string{tt.field: "x"}})
		require.NoError(t, err)
		require.Len(t, res.Payments, 1)
	}
}

func TestMixed_Incomplete(t *testing.T) {
	r := NewRegistry()
	s, err := r.ForMethod(MethodMixed)
	require.NoError(t, err)

	l := NewLedger(dec("500"))
	commitPayment(t, l, MethodCash, dec("300"))

	_, err = s.Settle(dec("500"), Input{Ledger: l})
	require.ErrorIs(t, err, ErrIncompletePayment)

	var ipErr *IncompletePaymentError
	require.ErrorAs(t, err, &ipErr)
	assert.True(t, ipErr.Remaining.Equal(dec("200")))
}

func TestMixed_NilLedger(t *testing.T) {
	r := NewRegistry()
	s, err := r.ForMethod(MethodMixed)
	require.NoError(t, err)

	_, err = s.Settle(dec("500"), Input{})
	require.ErrorIs(t, err, ErrIncompletePayment)
}

func TestMixed_FullyCovered(t *testing.T) {
	r := NewRegistry()
	s, err := r.ForMethod(MethodMixed)
	require.NoError(t, err)

	l := NewLedger(dec("500"))
	commitPayment(t, l, MethodCash, dec("300"))
	commitPayment(t, l, MethodTransfer, dec("200"))

	res, err := s.Settle(dec("500"), Input{Ledger: l, Note: "split bill"})
	require.NoError(t, err)
	require.Len(t, res.Payments, 2)
	assert.True(t, Total(res.Payments).Equal(dec("500")))
	assert.True(t, res.Change.IsZero())
	assert.Equal(t, "split bill", res.Payments[0].Note)
	assert.Equal(t, "split bill", res.Payments[1].Note)
}
