package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chaiyapat/siampos/internal/domain/checkout"
	"github.com/chaiyapat/siampos/internal/domain/sale"
	"github.com/chaiyapat/siampos/internal/domain/tax"
)

type paymentEntry struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	RefNo     string          `json:"refNo,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// GetPayment returns the payment entries collected so far for the
// employee's in-progress checkout.
func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	emp, ok := employeeID(w, r)
	if !ok {
		return
	}

	entries, err := h.sessions.Get(r.Context(), emp)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"payments": toPaymentDTOs(entries),
		"total":    total.InexactFloat64(),
	})
}

// AddPayment appends payment entries to the in-progress checkout.
func (h *Handlers) AddPayment(w http.ResponseWriter, r *http.Request) {
	emp, ok := employeeID(w, r)
	if !ok {
		return
	}
	var req struct {
		Payments []paymentEntry `json:"payments"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Payments) == 0 {
		writeError(w, r, http.StatusBadRequest, "payments are required")
		return
	}
	for _, p := range req.Payments {
		if !p.Amount.IsPositive() {
			writeError(w, r, http.StatusUnprocessableEntity, "payment amounts must be positive")
			return
		}
	}

	entries := make([]sale.PaymentDetail, len(req.Payments))
	now := time.Now()
	for i, p := range req.Payments {
		entries[i] = sale.PaymentDetail{
			Method:    p.Method,
			Amount:    p.Amount,
			RefNo:     p.RefNo,
			Timestamp: now,
		}
	}

	if err := h.sessions.Add(r.Context(), emp, entries); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]string{"status": "added"})
}

type confirmPaymentRequest struct {
	SellerID           string          `json:"sellerId"`
	PaymentDetails     []paymentEntry  `json:"paymentDetails"`
	TaxInvoice         bool            `json:"isTaxInvoice"`
	VATMode            string          `json:"vatMode"`
	WithholdingPercent decimal.Decimal `json:"withholdingPercent"`
	WithholdingBase    string          `json:"withholdingBase"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	DiscountCode       string          `json:"discountCode"`
	Customer           *sale.Customer  `json:"customer"`
	Note               string          `json:"note"`
}

// ConfirmPayment finalizes the sale: payments from the body, or the stored
// session when the body carries none, are validated against the cart total
// and the sale is persisted with a freshly allocated document number. The
// seller comes from the body's sellerId; the employeeId query parameter is
// accepted as a fallback for terminal clients.
func (h *Handlers) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req confirmPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	emp := req.SellerID
	if emp == "" {
		emp = r.URL.Query().Get("employeeId")
	}
	if emp == "" {
		writeError(w, r, http.StatusBadRequest, "sellerId is required")
		return
	}

	entries := make([]sale.PaymentDetail, len(req.PaymentDetails))
	now := time.Now()
	for i, p := range req.PaymentDetails {
		ts := p.Timestamp
		if ts.IsZero() {
			ts = now
		}
		entries[i] = sale.PaymentDetail{
			Method:    p.Method,
			Amount:    p.Amount,
			RefNo:     p.RefNo,
			Timestamp: ts,
		}
	}
	if len(entries) == 0 {
		stored, err := h.sessions.Get(r.Context(), emp)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		entries = stored
	}

	discountAmount := req.DiscountAmount
	if req.DiscountCode != "" {
		c, err := h.carts.Get(r.Context(), emp)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		d, err := h.discounts.Validate(r.Context(), req.DiscountCode, c.Total())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		discountAmount = d.Amount
	}

	result, err := h.checkouts.Confirm(r.Context(), checkout.ConfirmRequest{
		SellerID:           emp,
		Payments:           entries,
		Customer:           req.Customer,
		TaxInvoice:         req.TaxInvoice,
		DiscountAmount:     discountAmount,
		VATMode:            tax.VATMode(req.VATMode),
		WithholdingPercent: req.WithholdingPercent,
		WithholdingBase:    tax.WithholdingBase(req.WithholdingBase),
		Note:               req.Note,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"transactionId": result.TransactionID,
		"documentId":    result.DocumentID,
		"totalAmount":   result.TotalAmount.InexactFloat64(),
		"change":        result.Change.InexactFloat64(),
	})
}

// ValidateDiscount checks a discount code against the employee's current
// cart subtotal and returns the resulting amount.
func (h *Handlers) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	emp, ok := employeeID(w, r)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" {
		writeError(w, r, http.StatusBadRequest, "code is required")
		return
	}

	c, err := h.carts.Get(r.Context(), emp)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	d, err := h.discounts.Validate(r.Context(), req.Code, c.Total())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"amount":      d.Amount.InexactFloat64(),
		"description": d.Description,
	})
}
