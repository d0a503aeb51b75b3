package receipt

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/chaiyapat/siampos/internal/domain/sale"
)

// ErrNotTaxInvoice is returned when the formal projection is requested for a
// sale that was not flagged as a tax invoice.
var ErrNotTaxInvoice = errors.New("sale is not a tax invoice")

// Invoice is the formal A4 tax-invoice projection. It carries the same
// recomputed totals as the thermal receipt plus the customer block and the
// withholding line, which only the formal document shows.
type Invoice struct {
	DocumentID string               `json:"documentId"`
	SellerID   string               `json:"sellerId"`
	Customer   sale.Customer        `json:"customer"`
	Items      []sale.Item          `json:"items"`
	Totals     Totals               `json:"totals"`
	Payments   []sale.PaymentDetail `json:"payments"`
	Note       string               `json:"note,omitempty"`
}

// RenderInvoice projects a persisted sale onto the formal tax invoice.
// Only tax-invoice sales have one.
func RenderInvoice(s *sale.Sale) (*Invoice, error) {
	if !s.TaxInvoice {
		return nil, ErrNotTaxInvoice
	}

	totals, err := deriveTotals(s)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		DocumentID: s.DocumentID,
		SellerID:   s.SellerID,
		Items:      s.Items,
		Totals:     totals,
		Payments:   s.Payments,
		Note:       s.Note,
	}
	if s.Customer != nil {
		inv.Customer = *s.Customer
	}
	return inv, nil
}

// Text renders the invoice as plain text for preview and testing; the PDF
// layout downstream consumes the struct directly.
func (i *Invoice) Text() string {
	var b strings.Builder

	b.WriteString("TAX INVOICE ")
	b.WriteString(i.DocumentID)
	b.WriteByte('\n')

	if i.Customer.Name != "" {
		fmt.Fprintf(&b, "Customer: %s\n", i.Customer.Name)
	}
	if i.Customer.TaxID != "" {
		fmt.Fprintf(&b, "Tax ID: %s\n", i.Customer.TaxID)
	}
	if i.Customer.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", i.Customer.Address)
	}
	b.WriteByte('\n')

	for _, it := range i.Items {
		fmt.Fprintf(&b, "%-40s %12s\n", it.Name, it.Price.StringFixed(2))
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "%-40s %12s\n", "Subtotal before VAT", i.Totals.SubTotalBeforeVAT.StringFixed(2))
	fmt.Fprintf(&b, "%-40s %12s\n", "VAT 7%", i.Totals.VATAmount.StringFixed(2))
	fmt.Fprintf(&b, "%-40s %12s\n", "Grand total", i.Totals.GrandTotal.StringFixed(2))
	if i.Totals.WithholdingAmount.IsPositive() {
		fmt.Fprintf(&b, "%-40s %12s\n", "Withholding tax", i.Totals.WithholdingAmount.Neg().StringFixed(2))
		fmt.Fprintf(&b, "%-40s %12s\n", "Net payable", i.Totals.NetPayable.StringFixed(2))
	}

	return b.String()
}
