package api

import (
	"time"

	"github.com/chaiyapat/siampos/internal/domain/cart"
	"github.com/chaiyapat/siampos/internal/domain/product"
	"github.com/chaiyapat/siampos/internal/domain/sale"
)

// Response DTOs. Monetary values cross the wire as JSON numbers, so decimals
// are converted at this boundary and nowhere else.

type productDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
	Barcode  string  `json:"barcode,omitempty"`
	Image    string  `json:"image,omitempty"`
}

func toProductDTO(p product.Product) productDTO {
	return productDTO{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price.InexactFloat64(),
		Category: p.Category,
		Barcode:  p.Barcode,
		Image:    p.Image,
	}
}

type cartItemDTO struct {
	UniqueID  string  `json:"uniqueId"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

func toCartItemDTO(it cart.Item) cartItemDTO {
	return cartItemDTO{
		UniqueID:  it.UniqueID,
		ProductID: it.ProductID,
		Name:      it.Name,
		Price:     it.Price.InexactFloat64(),
	}
}

type cartDTO struct {
	EmployeeID string        `json:"employeeId"`
	Items      []cartItemDTO `json:"items"`
	Held       bool          `json:"held"`
	Total      float64       `json:"total"`
}

func toCartDTO(c *cart.Cart) cartDTO {
	items := make([]cartItemDTO, len(c.Items))
	for i, it := range c.Items {
		items[i] = toCartItemDTO(it)
	}
	return cartDTO{
		EmployeeID: c.EmployeeID,
		Items:      items,
		Held:       c.Held,
		Total:      c.Total().InexactFloat64(),
	}
}

type paymentDTO struct {
	Method    string    `json:"method"`
	Amount    float64   `json:"amount"`
	RefNo     string    `json:"refNo,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

func toPaymentDTOs(entries []sale.PaymentDetail) []paymentDTO {
	out := make([]paymentDTO, len(entries))
	for i, e := range entries {
		out[i] = paymentDTO{
			Method:    e.Method,
			Amount:    e.Amount.InexactFloat64(),
			RefNo:     e.RefNo,
			Timestamp: e.Timestamp,
		}
	}
	return out
}

type saleItemDTO struct {
	UniqueID  string  `json:"uniqueId"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type saleDTO struct {
	TransactionID      string         `json:"transactionId"`
	DocumentID         string         `json:"documentId"`
	SellerID           string         `json:"sellerId"`
	Items              []saleItemDTO  `json:"items"`
	Payable            float64        `json:"payable"`
	DiscountAmount     float64        `json:"discountAmount"`
	TaxInvoice         bool           `json:"taxInvoice"`
	VATMode            string         `json:"vatMode"`
	WithholdingPercent float64        `json:"withholdingPercent"`
	WithholdingBase    string         `json:"withholdingBase"`
	Note               string         `json:"note,omitempty"`
	Customer           *sale.Customer `json:"customer,omitempty"`
	Payments           []paymentDTO   `json:"payments"`
	Change             float64        `json:"change"`
	CreatedAt          time.Time      `json:"createdAt"`
}

func toSaleDTO(s sale.Sale) saleDTO {
	items := make([]saleItemDTO, len(s.Items))
	for i, it := range s.Items {
		items[i] = saleItemDTO{
			UniqueID:  it.UniqueID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.InexactFloat64(),
		}
	}
	return saleDTO{
		TransactionID:      s.ID,
		DocumentID:         s.DocumentID,
		SellerID:           s.SellerID,
		Items:              items,
		Payable:            s.Payable.InexactFloat64(),
		DiscountAmount:     s.DiscountAmount.InexactFloat64(),
		TaxInvoice:         s.TaxInvoice,
		VATMode:            string(s.VATMode),
		WithholdingPercent: s.WithholdingPercent.InexactFloat64(),
		WithholdingBase:    string(s.WithholdingBase),
		Note:               s.Note,
		Customer:           s.Customer,
		Payments:           toPaymentDTOs(s.Payments),
		Change:             s.Change.InexactFloat64(),
		CreatedAt:          s.CreatedAt,
	}
}

type historyDTO struct {
	Sales []saleDTO `json:"sales"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Total int       `json:"total"`
}

func toHistoryDTO(p *sale.Page) historyDTO {
	sales := make([]saleDTO, len(p.Sales))
	for i, s := range p.Sales {
		sales[i] = toSaleDTO(s)
	}
	return historyDTO{Sales: sales, Page: p.Page, Limit: p.Limit, Total: p.Total}
}
