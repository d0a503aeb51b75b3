// Package api exposes the point-of-sale HTTP surface consumed by the
// register terminals.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/chaiyapat/siampos/internal/domain/cart"
	"github.com/chaiyapat/siampos/internal/domain/checkout"
	"github.com/chaiyapat/siampos/internal/domain/discount"
	"github.com/chaiyapat/siampos/internal/domain/payment"
	"github.com/chaiyapat/siampos/internal/domain/product"
	"github.com/chaiyapat/siampos/internal/domain/sale"
	"github.com/chaiyapat/siampos/internal/domain/staff"
	"github.com/chaiyapat/siampos/internal/domain/tax"
)

// Handlers groups the HTTP handler methods and their dependencies.
type Handlers struct {
	carts     *cart.Service
	checkouts *checkout.Service
	sessions  checkout.PaymentSessionStore
	sales     sale.Repository
	products  product.Repository
	staff     staff.Repository
	verifier  *staff.Verifier
	discounts *discount.Validator
}

// NewHandlers wires the handler set from its dependencies.
func NewHandlers(
	carts *cart.Service,
	checkouts *checkout.Service,
	sessions checkout.PaymentSessionStore,
	sales sale.Repository,
	products product.Repository,
	staffRepo staff.Repository,
	verifier *staff.Verifier,
	discounts *discount.Validator,
) *Handlers {
	return &Handlers{
		carts:     carts,
		checkouts: checkouts,
		sessions:  sessions,
		sales:     sales,
		products:  products,
		staff:     staffRepo,
		verifier:  verifier,
		discounts: discounts,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("Encode response", zap.Error(err))
	}
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Code: status, Message: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func employeeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("employeeId")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "employeeId is required")
		return "", false
	}
	return id, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// writeDomainError maps known domain errors to HTTP statuses. Anything
// unrecognized is logged and reported as a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, sale.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, staff.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, staff.ErrInvalidPasscode):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, cart.ErrCartHeld),
		errors.Is(err, cart.ErrCartNotHeld):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, tax.ErrInvalidVATMode),
		errors.Is(err, discount.ErrInvalidCode),
		errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidPrice),
		errors.Is(err, checkout.ErrNoPayments),
		errors.Is(err, checkout.ErrNegativeDiscount),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrIncompletePayment),
		errors.Is(err, payment.ErrUnknownMethod):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		zctx.From(r.Context()).Error("Handler failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
