package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// GetCart returns the current cart for one employee.
func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	emp, ok := employeeID(w, r)
	if !ok {
		return
	}

	c, err := h.carts.Get(r.Context(), emp)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCartDTO(c))
}

// AddToCart adds one unit of a catalog product to the cart.
func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	emp, ok := employeeID(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeError(w, r, http.StatusBadRequest, "productId is required")
		return
	}

	item, err := h.carts.AddProduct(r.Context(), emp, productID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toCartItemDTO(*item))
}

// AddToCartByBarcode resolves a scanned barcode and adds the matching
// product to the cart.
func (h *Handlers) AddToCartByBarcode(w http.ResponseWriter, r *http.Request) {
	emp, ok := employeeID(w, r)
	if !ok {
		return
	}
	var req struct {
		Barcode string `json:"barcode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Barcode == "" {
		writeError(w, r, http.StatusBadRequest, "barcode is required")
		return
	}

	item, err := h.carts.AddByBarcode(r.Context(), emp, req.Barcode)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toCartItemDTO(*item))
}

// RemoveFromCart removes one cart line by its unique id.
func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	emp, ok := employeeID(w, r)
	if !ok {
		return
	}
	uniqueID := chi.URLParam(r, "uniqueId")

	if err := h.carts.Remove(r.Context(), emp, uniqueID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "removed"})
}

// UpdateCartItem overrides the charged price of one cart line.
func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	emp, ok := employeeID(w, r)
	if !ok {
		return
	}
	uniqueID := chi.URLParam(r, "uniqueId")

	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.carts.UpdatePrice(r.Context(), emp, uniqueID, req.Price); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}

// Checkout places the cart on hold so payment collection can begin.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	emp, ok := employeeID(w, r)
	if !ok {
		return
	}

	if err := h.carts.Hold(r.Context(), emp); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "checkout"})
}

// CancelCheckout releases the cart hold and discards collected payments.
func (h *Handlers) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	emp, ok := employeeID(w, r)
	if !ok {
		return
	}

	if err := h.carts.CancelHold(r.Context(), emp); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.sessions.Clear(r.Context(), emp); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "cancelled"})
}
