package product

import (
	"context"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

const barcodeFPR = 0.001

// BarcodeIndex answers barcode lookups through a bloom-filter prefilter, so
// mis-scans and unknown codes skip the database entirely. False positives
// fall through to the repository, which stays authoritative.
type BarcodeIndex struct {
	repo   Repository
	filter *bloom.BloomFilter
}

// NewBarcodeIndex builds the prefilter from every barcode currently in the
// catalog.
func NewBarcodeIndex(ctx context.Context, repo Repository) (*BarcodeIndex, error) {
	codes, err := repo.ListBarcodes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list barcodes")
	}

	capacity := uint(len(codes))
	if capacity < 1024 {
		capacity = 1024
	}
	filter := bloom.NewWithEstimates(capacity, barcodeFPR)
	for _, c := range codes {
		filter.AddString(c)
	}

	return &BarcodeIndex{repo: repo, filter: filter}, nil
}

// Add registers a newly created barcode with the prefilter.
func (i *BarcodeIndex) Add(barcode string) {
	i.filter.AddString(barcode)
}

// Lookup resolves a scanned barcode to a product. Codes the filter has never
// seen return ErrNotFound without touching the repository.
func (i *BarcodeIndex) Lookup(ctx context.Context, barcode string) (*Product, error) {
	if barcode == "" {
		return nil, ErrNotFound
	}
	if !i.filter.TestString(barcode) {
		return nil, ErrNotFound
	}
	return i.repo.GetByBarcode(ctx, barcode)
}
