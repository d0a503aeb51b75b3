// Package receipt renders persisted sales for printing. Two independent
// projections exist — the short thermal receipt and the formal tax invoice —
// and both re-derive the tax figures from the stored sale rather than
// trusting any cached totals, so they always agree with what checkout
// computed at sale time.
package receipt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chaiyapat/siampos/internal/domain/sale"
)

const thermalWidth = 32

// Totals is the numeric block shared by both projections.
type Totals struct {
	ItemsTotal        decimal.Decimal `json:"itemsTotal"`
	Discount          decimal.Decimal `json:"discount"`
	SubTotalBeforeVAT decimal.Decimal `json:"subTotalBeforeVat"`
	VATAmount         decimal.Decimal `json:"vatAmount"`
	GrandTotal        decimal.Decimal `json:"grandTotal"`
	WithholdingAmount decimal.Decimal `json:"withholdingAmount"`
	NetPayable        decimal.Decimal `json:"netPayable"`
	Change            decimal.Decimal `json:"change"`
}

// deriveTotals recomputes the tax breakdown from the persisted sale fields.
func deriveTotals(s *sale.Sale) (Totals, error) {
	b, err := s.Breakdown()
	if err != nil {
		return Totals{}, err
	}
	b = b.Round()

	itemsTotal := decimal.Zero
	for _, it := range s.Items {
		itemsTotal = itemsTotal.Add(it.Price)
	}

	return Totals{
		ItemsTotal:        itemsTotal.Round(2),
		Discount:          s.DiscountAmount.Round(2),
		SubTotalBeforeVAT: b.SubTotalBeforeVAT,
		VATAmount:         b.VATAmount,
		GrandTotal:        b.GrandTotal,
		WithholdingAmount: b.WithholdingAmount,
		NetPayable:        b.NetPayable,
		Change:            s.Change.Round(2),
	}, nil
}

// Thermal is the short receipt printed on the 58mm roll.
type Thermal struct {
	DocumentID string               `json:"documentId"`
	SellerID   string               `json:"sellerId"`
	Items      []sale.Item          `json:"items"`
	Totals     Totals               `json:"totals"`
	Payments   []sale.PaymentDetail `json:"payments"`
	Note       string               `json:"note,omitempty"`
}

// RenderThermal projects a persisted sale onto the thermal receipt.
func RenderThermal(s *sale.Sale) (*Thermal, error) {
	totals, err := deriveTotals(s)
	if err != nil {
		return nil, err
	}
	return &Thermal{
		DocumentID: s.DocumentID,
		SellerID:   s.SellerID,
		Items:      s.Items,
		Totals:     totals,
		Payments:   s.Payments,
		Note:       s.Note,
	}, nil
}

// Text renders the receipt as fixed-width printer text.
func (t *Thermal) Text() string {
	var b strings.Builder

	center(&b, "RECEIPT")
	line(&b, "Doc", t.DocumentID)
	rule(&b)

	for _, it := range t.Items {
		amountLine(&b, it.Name, it.Price)
	}
	rule(&b)

	amountLine(&b, "Items", t.Totals.ItemsTotal)
	if t.Totals.Discount.IsPositive() {
		amountLine(&b, "Discount", t.Totals.Discount.Neg())
	}
	if t.Totals.VATAmount.IsPositive() {
		amountLine(&b, "Before VAT", t.Totals.SubTotalBeforeVAT)
		amountLine(&b, "VAT 7%", t.Totals.VATAmount)
	}
	amountLine(&b, "Total", t.Totals.GrandTotal)
	if t.Totals.WithholdingAmount.IsPositive() {
		amountLine(&b, "WHT", t.Totals.WithholdingAmount.Neg())
		amountLine(&b, "Net", t.Totals.NetPayable)
	}
	rule(&b)

	for _, p := range t.Payments {
		amountLine(&b, strings.ToUpper(p.Method), p.Amount)
	}
	if t.Totals.Change.IsPositive() {
		amountLine(&b, "Change", t.Totals.Change)
	}
	if t.Note != "" {
		rule(&b)
		b.WriteString(t.Note)
		b.WriteByte('\n')
	}

	return b.String()
}

func center(b *strings.Builder, s string) {
	pad := (thermalWidth - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(s)
	b.WriteByte('\n')
}

func rule(b *strings.Builder) {
	b.WriteString(strings.Repeat("-", thermalWidth))
	b.WriteByte('\n')
}

func line(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func amountLine(b *strings.Builder, label string, amount decimal.Decimal) {
	v := amount.StringFixed(2)
	gap := thermalWidth - len(label) - len(v)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(label)
	b.WriteString(strings.Repeat(" ", gap))
	b.WriteString(v)
	b.WriteByte('\n')
}
