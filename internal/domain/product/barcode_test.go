package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	products map[string]Product // keyed by barcode
	lookups  int
}

func (m *countingRepo) List(_ context.Context) ([]Product, error) {
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *countingRepo) GetByID(_ context.Context, id string) (*Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *countingRepo) GetByBarcode(_ context.Context, barcode string) (*Product, error) {
	m.lookups++
	p, ok := m.products[barcode]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *countingRepo) ListBarcodes(_ context.Context) ([]string, error) {
	codes := make([]string, 0, len(m.products))
	for code := range m.products {
		codes = append(codes, code)
	}
	return codes, nil
}

func TestBarcodeIndex_Lookup(t *testing.T) {
	repo := &countingRepo{products: map[string]Product{
		"8850001000011": {ID: "p-001", Name: "Jasmine Rice 5kg", Price: decimal.RequireFromString("189.00"), Barcode: "8850001000011"},
		"8850001000028": {ID: "p-002", Name: "Drinking Water", Price: decimal.RequireFromString("7.00"), Barcode: "8850001000028"},
	}}

	idx, err := NewBarcodeIndex(context.Background(), repo)
	require.NoError(t, err)

	p, err := idx.Lookup(context.Background(), "8850001000011")
	require.NoError(t, err)
	assert.Equal(t, "p-001", p.ID)
	assert.Equal(t, 1, repo.lookups)
}

func TestBarcodeIndex_UnknownSkipsRepository(t *testing.T) {
	repo := &countingRepo{products: map[string]Product{
		"8850001000011": {ID: "p-001", Barcode: "8850001000011"},
	}}

	idx, err := NewBarcodeIndex(context.Background(), repo)
	require.NoError(t, err)

	_, err = idx.Lookup(context.Background(), "0000000000000")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, repo.lookups, "unknown code must not reach the repository")

	_, err = idx.Lookup(context.Background(), "")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, repo.lookups)
}

func TestBarcodeIndex_Add(t *testing.T) {
	repo := &countingRepo{products: map[string]Product{}}

	idx, err := NewBarcodeIndex(context.Background(), repo)
	require.NoError(t, err)

	_, err = idx.Lookup(context.Background(), "8850001000035")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, repo.lookups)

	repo.products["8850001000035"] = Product{ID: "p-003", Barcode: "8850001000035"}
	idx.Add("8850001000035")

	p, err := idx.Lookup(context.Background(), "8850001000035")
	require.NoError(t, err)
	assert.Equal(t, "p-003", p.ID)
}
