package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter mounts every POS route under /api.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		// Catalog.
		r.Get("/products", h.ListProducts)

		// Cart.
		r.Get("/get-cart", h.GetCart)
		r.Post("/add-to-cart/{productId}", h.AddToCart)
		r.Post("/add-to-cart-barcode", h.AddToCartByBarcode)
		r.Delete("/remove-from-cart/{uniqueId}", h.RemoveFromCart)
		r.Patch("/update-cart-item/{uniqueId}", h.UpdateCartItem)

		// Checkout lifecycle.
		r.Post("/checkout", h.Checkout)
		r.Post("/cancel-checkout", h.CancelCheckout)
		r.Post("/validate-discount", h.ValidateDiscount)

		// Payment collection.
		r.Get("/get-payment", h.GetPayment)
		r.Post("/add-payment", h.AddPayment)
		r.Post("/confirm-payment", h.ConfirmPayment)

		// Records.
		r.Get("/history", h.History)
		r.Get("/receipt/{transactionId}", h.Receipt)

		// Staff.
		r.Get("/staff", h.ListStaff)
		r.Post("/staff/verify", h.VerifyStaff)
	})

	return r
}
