package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commitPayment drives the full add flow for one entry: start, enter amount,
// operator confirm, acknowledge.
func commitPayment(t *testing.T, l *Ledger, m Method, amount decimal.Decimal) {
	t.Helper()
	require.NoError(t, l.StartAdd(m))
	require.NoError(t, l.ConfirmAdd(amount, nil))
	require.NoError(t, l.Confirm())
	require.NoError(t, l.Ack())
}

func TestLedger_StartsEmptyListing(t *testing.T) {
	l := NewLedger(dec("500"))

	assert.Equal(t, StateListing, l.State())
	assert.Empty(t, l.Payments())
	assert.True(t, l.Remaining().Equal(dec("500")))
	assert.False(t, l.Settled())
}

func TestLedger_AddFlow(t *testing.T) {
	l := NewLedger(dec("500"))

	require.NoError(t, l.StartAdd(MethodCash))
	assert.Equal(t, StateAdding, l.State())
	// Amount field prefilled with the remaining balance.
	assert.True(t, l.PendingAmount().Equal(dec("500")))

	require.NoError(t, l.ConfirmAdd(dec("300"), nil))
	assert.Equal(t, StateConfirming, l.State())
	// Nothing committed until the operator confirms.
	assert.Empty(t, l.Payments())
	assert.True(t, l.Remaining().Equal(dec("500")))

	require.NoError(t, l.Confirm())
	assert.Equal(t, StateSuccess, l.State())
	require.NoError(t, l.Ack())
	assert.Equal(t, StateListing, l.State())

	assert.Len(t, l.Payments(), 1)
	assert.True(t, l.TotalPaid().Equal(dec("300")))
	assert.True(t, l.Remaining().Equal(dec("200")))
}

func TestLedger_MixedScenario(t *testing.T) {
	l := NewLedger(dec("500"))

	commitPayment(t, l, MethodCash, dec("300"))
	assert.True(t, l.Remaining().Equal(dec("200")))

	commitPayment(t, l, MethodTransfer, dec("200"))
	assert.True(t, l.Remaining().IsZero())
	assert.True(t, l.Settled())

	payments := l.Payments()
	require.Len(t, payments, 2)
	assert.Equal(t, MethodCash, payments[0].Method)
	assert.Equal(t, MethodTransfer, payments[1].Method)
	assert.True(t, Total(payments).Equal(dec("500")))
}

func TestLedger_ConfirmAddRejectsBadAmounts(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-5"},
		{"exceeds remaining", "500.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger(dec("500"))
			require.NoError(t, l.StartAdd(MethodCash))

			err := l.ConfirmAdd(dec(tt.amount), nil)
			require.ErrorIs(t, err, ErrInvalidAmount)

			// Rejection mutates nothing and stays in adding.
			assert.Equal(t, StateAdding, l.State())
			assert.Empty(t, l.Payments())
			assert.True(t, l.Remaining().Equal(dec("500")))
		})
	}
}

func TestLedger_ConfirmAddToleratesRoundingGap(t *testing.T) {
	l := NewLedger(dec("100"))
	require.NoError(t, l.StartAdd(MethodCash))
	// Within the 0.001 tolerance above the remaining balance.
	require.NoError(t, l.ConfirmAdd(dec("100.0005"), nil))
}

func TestLedger_NeverOverpaysThroughValidatedPath(t *testing.T) {
	l := NewLedger(dec("100"))
	commitPayment(t, l, MethodCash, dec("60"))
	commitPayment(t, l, MethodTransfer, dec("40"))

	require.NoError(t, l.StartAdd(MethodPromptPay))
	err := l.ConfirmAdd(dec("10"), nil)
	require.ErrorIs(t, err, ErrInvalidAmount)

	assert.True(t, l.Remaining().GreaterThanOrEqual(dec("-0.001")))
	assert.Len(t, l.Payments(), 2)
}

func TestLedger_RemainingAlwaysRecomputed(t *testing.T) {
	l := NewLedger(dec("500"))
	commitPayment(t, l, MethodCash, dec("120"))
	commitPayment(t, l, MethodTransfer, dec("80"))
	commitPayment(t, l, MethodPromptPay, dec("100"))

	require.NoError(t, l.Remove(1))
	assert.True(t, l.Remaining().Equal(dec("280")), "remaining = %s", l.Remaining())

	require.NoError(t, l.Remove(0))
	assert.True(t, l.Remaining().Equal(dec("400")))

	assert.True(t, l.Remaining().Equal(l.Target().Sub(Total(l.Payments()))))
}

func TestLedger_CancelPreservesAmount(t *testing.T) {
	l := NewLedger(dec("500"))
	require.NoError(t, l.StartAdd(MethodCash))
	require.NoError(t, l.ConfirmAdd(dec("250"), nil))

	require.NoError(t, l.Cancel())
	assert.Equal(t, StateAdding, l.State())
	assert.True(t, l.PendingAmount().Equal(dec("250")))
	assert.Empty(t, l.Payments())
}

func TestLedger_CancelAddReturnsToListing(t *testing.T) {
	l := NewLedger(dec("500"))
	require.NoError(t, l.StartAdd(MethodCash))
	require.NoError(t, l.CancelAdd())

	assert.Equal(t, StateListing, l.State())
	assert.True(t, l.PendingAmount().IsZero())
}

func TestLedger_InvalidTransitions(t *testing.T) {
	l := NewLedger(dec("500"))

	var trErr *TransitionError

	require.ErrorAs(t, l.Confirm(), &trErr)
	require.ErrorAs(t, l.Cancel(), &trErr)
	require.ErrorAs(t, l.Ack(), &trErr)
	require.ErrorAs(t, l.ConfirmAdd(dec("10"), nil), &trErr)

	require.NoError(t, l.StartAdd(MethodCash))
	require.ErrorAs(t, l.StartAdd(MethodCash), &trErr)
	require.ErrorAs(t, l.Remove(0), &trErr)
}

func TestLedger_RemoveBounds(t *testing.T) {
	l := NewLedger(dec("500"))
	commitPayment(t, l, MethodCash, dec("100"))

	require.Error(t, l.Remove(-1))
	require.Error(t, l.Remove(1))
	require.NoError(t, l.Remove(0))
	assert.Empty(t, l.Payments())
}

func TestLedger_PaymentsReturnsCopies(t *testing.T) {
	l := NewLedger(dec("100"))
	require.NoError(t, l.StartAdd(MethodCard))
	require.NoError(t, l.ConfirmAdd(dec("100"), map[string]string{"network": "visa"}))
	require.NoError(t, l.Confirm())
	require.NoError(t, l.Ack())

	got := l.Payments()
	got[0].Amount = dec("1")
	got[0].Details["network"] = "tampered"

	fresh := l.Payments()
	assert.True(t, fresh[0].Amount.Equal(dec("100")))
	assert.Equal(t, "visa", fresh[0].Details["network"])
}
