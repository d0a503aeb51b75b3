package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaiyapat/siampos/internal/domain/sale"
	"github.com/chaiyapat/siampos/internal/domain/tax"
)

const (
	createSaleSQL = `INSERT INTO sales (id, document_id, seller_id, items, payable,
			discount_amount, tax_invoice, vat_mode, withholding_percent,
			withholding_base, note, customer, payments, change_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	saleColumns = `id, document_id, seller_id, items, payable, discount_amount,
		tax_invoice, vat_mode, withholding_percent, withholding_base, note,
		customer, payments, change_amount, created_at`

	getSaleByIDSQL = `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`

	historySQL = `SELECT ` + saleColumns + ` FROM sales
		WHERE ($1 = '' OR seller_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	historyCountSQL = `SELECT count(*) FROM sales WHERE ($1 = '' OR seller_id = $1)`

	nextReceiptDocSQL = `SELECT 'RC-' || to_char(now(), 'YYYYMM') || '-' ||
		lpad(nextval('receipt_doc_seq')::text, 6, '0')`

	nextInvoiceDocSQL = `SELECT 'TI-' || to_char(now(), 'YYYYMM') || '-' ||
		lpad(nextval('invoice_doc_seq')::text, 6, '0')`
)

var _ sale.Repository = (*SaleRepository)(nil)

// SaleRepository implements sale.Repository backed by PostgreSQL.
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository returns a SaleRepository that uses the given pool.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

// Create persists a finalized sale. Items, customer, and payments are
// serialized to JSON for storage in JSONB columns.
func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	itemsJSON, err := json.Marshal(s.Items)
	if err != nil {
		return fmt.Errorf("marshaling sale items: %w", err)
	}
	paymentsJSON, err := json.Marshal(s.Payments)
	if err != nil {
		return fmt.Errorf("marshaling sale payments: %w", err)
	}

	var customerJSON []byte
	if s.Customer != nil {
		customerJSON, err = json.Marshal(s.Customer)
		if err != nil {
			return fmt.Errorf("marshaling sale customer: %w", err)
		}
	}

	_, err = r.pool.Exec(ctx, createSaleSQL,
		s.ID, s.DocumentID, s.SellerID, itemsJSON, s.Payable,
		s.DiscountAmount, s.TaxInvoice, string(s.VATMode), s.WithholdingPercent,
		string(s.WithholdingBase), s.Note, customerJSON, paymentsJSON, s.Change, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating sale %q: %w", s.ID, err)
	}
	return nil
}

// GetByID returns one sale by its transaction id.
func (r *SaleRepository) GetByID(ctx context.Context, id string) (*sale.Sale, error) {
	rows, err := r.pool.Query(ctx, getSaleByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting sale %q: %w", id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSale)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sale.ErrNotFound
		}
		return nil, fmt.Errorf("getting sale %q: %w", id, err)
	}
	return &s, nil
}

// History returns one page of past sales, newest first. An empty employeeID
// spans all sellers.
func (r *SaleRepository) History(ctx context.Context, employeeID string, page, limit int) (*sale.Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	rows, err := r.pool.Query(ctx, historySQL, employeeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing sales history: %w", err)
	}
	sales, err := pgx.CollectRows(rows, scanSale)
	if err != nil {
		return nil, fmt.Errorf("listing sales history: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, historyCountSQL, employeeID).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting sales history: %w", err)
	}

	return &sale.Page{Sales: sales, Page: page, Limit: limit, Total: total}, nil
}

// NextDocumentID allocates the next document number from the receipt or
// tax-invoice series.
func (r *SaleRepository) NextDocumentID(ctx context.Context, taxInvoice bool) (string, error) {
	q := nextReceiptDocSQL
	if taxInvoice {
		q = nextInvoiceDocSQL
	}

	var doc string
	if err := r.pool.QueryRow(ctx, q).Scan(&doc); err != nil {
		return "", fmt.Errorf("allocating document number: %w", err)
	}
	return doc, nil
}

func scanSale(row pgx.CollectableRow) (sale.Sale, error) {
	var (
		s            sale.Sale
		vatMode      string
		whBase       string
		itemsJSON    []byte
		customerJSON []byte
		paymentsJSON []byte
	)

	err := row.Scan(
		&s.ID, &s.DocumentID, &s.SellerID, &itemsJSON, &s.Payable,
		&s.DiscountAmount, &s.TaxInvoice, &vatMode, &s.WithholdingPercent,
		&whBase, &s.Note, &customerJSON, &paymentsJSON, &s.Change, &s.CreatedAt,
	)
	if err != nil {
		return sale.Sale{}, err
	}

	s.VATMode = tax.VATMode(vatMode)
	s.WithholdingBase = tax.WithholdingBase(whBase)

	if err := json.Unmarshal(itemsJSON, &s.Items); err != nil {
		return sale.Sale{}, fmt.Errorf("unmarshaling sale items: %w", err)
	}
	if err := json.Unmarshal(paymentsJSON, &s.Payments); err != nil {
		return sale.Sale{}, fmt.Errorf("unmarshaling sale payments: %w", err)
	}
	if len(customerJSON) > 0 {
		s.Customer = &sale.Customer{}
		if err := json.Unmarshal(customerJSON, s.Customer); err != nil {
			return sale.Sale{}, fmt.Errorf("unmarshaling sale customer: %w", err)
		}
	}
	return s, nil
}
