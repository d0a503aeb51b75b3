package checkout

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaiyapat/siampos/internal/domain/cart"
	"github.com/chaiyapat/siampos/internal/domain/payment"
	"github.com/chaiyapat/siampos/internal/domain/sale"
	"github.com/chaiyapat/siampos/internal/domain/tax"
)

// --- Mock implementations ---

type mockCartRepo struct {
	cart    *cart.Cart
	cleared bool
}

func (m *mockCartRepo) Get(_ context.Context, _ string) (*cart.Cart, error) {
	return m.cart, nil
}

func (m *mockCartRepo) AddItem(_ context.Context, _ string, _ cart.Item) error { return nil }
func (m *mockCartRepo) RemoveItem(_ context.Context, _, _ string) error        { return nil }
func (m *mockCartRepo) UpdateItemPrice(_ context.Context, _, _ string, _ decimal.Decimal) error {
	return nil
}

func (m *mockCartRepo) Clear(_ context.Context, _ string) error {
	m.cleared = true
	m.cart.Items = nil
	return nil
}

func (m *mockCartRepo) SetHeld(_ context.Context, _ string, held bool) error {
	m.cart.Held = held
	return nil
}

type mockSaleRepo struct {
	lastSale  *sale.Sale
	createErr error
	docSeq    int
}

func (m *mockSaleRepo) Create(_ context.Context, s *sale.Sale) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lastSale = s
	return nil
}

func (m *mockSaleRepo) GetByID(_ context.Context, _ string) (*sale.Sale, error) {
	return nil, sale.ErrNotFound
}

func (m *mockSaleRepo) History(_ context.Context, _ string, _, _ int) (*sale.Page, error) {
	return &sale.Page{}, nil
}

func (m *mockSaleRepo) NextDocumentID(_ context.Context, taxInvoice bool) (string, error) {
	m.docSeq++
	prefix := "R"
	if taxInvoice {
		prefix = "INV"
	}
	return fmt.Sprintf("%s-%04d", prefix, m.docSeq), nil
}

type mockSessionStore struct {
	entries map[string][]sale.PaymentDetail
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{entries: make(map[string][]sale.PaymentDetail)}
}

func (m *mockSessionStore) Get(_ context.Context, id string) ([]sale.PaymentDetail, error) {
	return m.entries[id], nil
}

func (m *mockSessionStore) Add(_ context.Context, id string, e []sale.PaymentDetail) error {
	m.entries[id] = append(m.entries[id], e...)
	return nil
}

func (m *mockSessionStore) Clear(_ context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

// --- Helpers ---

func newTestCart(prices ...string) *cart.Cart {
	c := &cart.Cart{EmployeeID: "emp-1"}
	for i, p := range prices {
		c.Items = append(c.Items, cart.Item{
			UniqueID:  fmt.Sprintf("u%d", i),
			ProductID: fmt.Sprintf("p%d", i),
			Name:      fmt.Sprintf("item %d", i),
			Price:     dec(p),
		})
	}
	return c
}

func newTestService(c *cart.Cart) (*Service, *mockCartRepo, *mockSaleRepo, *mockSessionStore) {
	carts := &mockCartRepo{cart: c}
	sales := &mockSaleRepo{}
	sessions := newMockSessionStore()
	return NewService(carts, sales, sessions), carts, sales, sessions
}

// --- Tests ---

func TestConfirm_NoPayments(t *testing.T) {
	svc, _, _, _ := newTestService(newTestCart("100"))

	_, err := svc.Confirm(context.Background(), ConfirmRequest{SellerID: "emp-1"})
	require.ErrorIs(t, err, ErrNoPayments)
}

func TestConfirm_EmptyCart(t *testing.T) {
	svc, _, _, _ := newTestService(newTestCart())

	_, err := svc.Confirm(context.Background(), ConfirmRequest{
		SellerID: "emp-1",
		Payments: []sale.PaymentDetail{{Method: "cash", Amount: dec("100")}},
	})
	require.ErrorIs(t, err, cart.ErrEmptyCart)
}

func TestConfirm_NonPositivePaymentAmount(t *testing.T) {
	svc, _, _, _ := newTestService(newTestCart("100"))

	_, err := svc.Confirm(context.Background(), ConfirmRequest{
		SellerID: "emp-1",
		Payments: []sale.PaymentDetail{{Method: "cash", Amount: decimal.Zero}},
	})
	require.ErrorIs(t, err, payment.ErrInvalidAmount)
}

func TestConfirm_NegativeDiscount(t *testing.T) {
	svc, carts, sales, _ := newTestService(newTestCart("100"))

	_, err := svc.Confirm(context.Background(), ConfirmRequest{
		SellerID:       "emp-1",
		DiscountAmount: dec("-20"),
		Payments:       []sale.PaymentDetail{{Method: "cash", Amount: dec("120")}},
	})
	require.ErrorIs(t, err, ErrNegativeDiscount)

	assert.Nil(t, sales.lastSale)
	assert.False(t, carts.cleared)
}

func TestConfirm_InsufficientTotal(t *testing.T) {
	svc, carts, sales, _ := newTestService(newTestCart("60", "40"))

	_, err := svc.Confirm(context.Background(), ConfirmRequest{
		SellerID: "emp-1",
		Payments: []sale.PaymentDetail{{Method: "transfer", Amount: dec("99")}},
	})
	require.ErrorIs(t, err, payment.ErrIncompletePayment)

	var ipErr *payment.IncompletePaymentError
	require.ErrorAs(t, err, &ipErr)
	assert.True(t, ipErr.Remaining.Equal(dec("1")))

	// Nothing recorded, cart untouched.
	assert.Nil(t, sales.lastSale)
	assert.False(t, carts.cleared)
}

func TestConfirm_RecordsSaleAndClears(t *testing.T) {
	svc, carts, sales, sessions := newTestService(newTestCart("60", "40"))
	require.NoError(t, sessions.Add(context.Background(), "emp-1",
		[]sale.PaymentDetail{{Method: "cash", Amount: dec("100")}}))

	res, err := svc.Confirm(context.Background(), ConfirmRequest{
		SellerID: "emp-1",
		Payments: []sale.PaymentDetail{{Method: "cash", Amount: dec("120")}},
		Note:     "regular",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.TransactionID)
	assert.Equal(t, "R-0001", res.DocumentID)
	assert.True(t, res.TotalAmount.Equal(dec("100")))
	assert.True(t, res.Change.Equal(dec("20")))

	require.NotNil(t, sales.lastSale)
	assert.Equal(t, "emp-1", sales.lastSale.SellerID)
	assert.Len(t, sales.lastSale.Items, 2)
	assert.Equal(t, "regular", sales.lastSale.Note)
	assert.True(t, carts.cleared)

	staged, err := sessions.Get(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestConfirm_DiscountReducesPayable(t *testing.T) {
	svc, _, sales, _ := newTestService(newTestCart("100"))

	res, err := svc.Confirm(context.Background(), ConfirmRequest{
		SellerID:       "emp-1",
		DiscountAmount: dec("20"),
		Payments:       []sale.PaymentDetail{{Method: "promptpay", Amount: dec("80")}},
	})
	require.NoError(t, err)
	assert.True(t, res.TotalAmount.Equal(dec("80")))
	assert.True(t, sales.lastSale.Payable.Equal(dec("80")))
	assert.True(t, sales.lastSale.DiscountAmount.Equal(dec("20")))
}

func TestConfirm_TaxInvoiceDocumentSeries(t *testing.T) {
	svc, _, sales, _ := newTestService(newTestCart("1000"))

	res, err := svc.Confirm(context.Background(), ConfirmRequest{
		SellerID:           "emp-1",
		TaxInvoice:         true,
		VATMode:            tax.VATIncluded,
		WithholdingPercent: dec("3"),
		WithholdingBase:    tax.BasePreVAT,
		Customer:           &sale.Customer{Name: "Acme Co", TaxID: "0105540000000"},
		Payments:           []sale.PaymentDetail{{Method: "transfer", Amount: dec("971.97")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", res.DocumentID)
	// Grand total is the VAT-inclusive figure, not the net collected.
	assert.True(t, res.TotalAmount.Equal(dec("1000")))
	require.NotNil(t, sales.lastSale.Customer)
	assert.Equal(t, "Acme Co", sales.lastSale.Customer.Name)
	assert.True(t, sales.lastSale.WithholdingPercent.Equal(dec("3")))
}

func TestConfirm_MixedPaymentsPersisted(t *testing.T) {
	svc, _, sales, _ := newTestService(newTestCart("500"))

	_, err := svc.Confirm(context.Background(), ConfirmRequest{
		SellerID: "emp-1",
		Payments: []sale.PaymentDetail{
			{Method: "cash", Amount: dec("300")},
			{Method: "transfer", Amount: dec("200"), RefNo: "TX-881"},
		},
	})
	require.NoError(t, err)

	require.Len(t, sales.lastSale.Payments, 2)
	assert.Equal(t, "TX-881", sales.lastSale.Payments[1].RefNo)
	total := sales.lastSale.Payments[0].Amount.Add(sales.lastSale.Payments[1].Amount)
	assert.True(t, total.Equal(dec("500")))
}
