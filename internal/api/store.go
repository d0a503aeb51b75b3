package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/chaiyapat/siampos/internal/receipt"
)

// ListProducts returns the full catalog.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	dtos := make([]productDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"products": dtos})
}

// History returns one page of past sales, newest first.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.sales.History(r.Context(),
		q.Get("employeeId"),
		parseIntDefault(q.Get("page"), 1),
		parseIntDefault(q.Get("limit"), 20),
	)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toHistoryDTO(page))
}

// Receipt renders the stored sale as printable text. The formal tax-invoice
// projection is selected with ?format=invoice.
func (h *Handlers) Receipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "transactionId")

	s, err := h.sales.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var text string
	switch r.URL.Query().Get("format") {
	case "invoice":
		inv, err := receipt.RenderInvoice(s)
		if err != nil {
			if errors.Is(err, receipt.ErrNotTaxInvoice) {
				writeError(w, r, http.StatusUnprocessableEntity, err.Error())
				return
			}
			writeDomainError(w, r, err)
			return
		}
		text = inv.Text()
	default:
		th, err := receipt.RenderThermal(s)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		text = th.Text()
	}

	writeJSON(w, r, http.StatusOK, map[string]string{
		"documentId": s.DocumentID,
		"text":       text,
	})
}

type staffEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// ListStaff returns registered staff without their passcode hashes.
func (h *Handlers) ListStaff(w http.ResponseWriter, r *http.Request) {
	members, err := h.staff.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	entries := make([]staffEntry, len(members))
	for i, m := range members {
		entries[i] = staffEntry{ID: m.ID, Name: m.Name, Role: m.Role}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"staff": entries})
}

// VerifyStaff checks a staff passcode for the register switch screen.
func (h *Handlers) VerifyStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       string `json:"id"`
		Passcode string `json:"passcode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" || req.Passcode == "" {
		writeError(w, r, http.StatusBadRequest, "id and passcode are required")
		return
	}

	m, err := h.verifier.Verify(r.Context(), req.ID, req.Passcode)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, staffEntry{ID: m.ID, Name: m.Name, Role: m.Role})
}
