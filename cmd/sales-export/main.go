// Command sales-export streams the sales history into a gzip-compressed
// NDJSON file, one sale per line, for offline reporting.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/chaiyapat/siampos/internal/domain/sale"
	"github.com/chaiyapat/siampos/internal/repository"
)

const (
	batchSize     = 500
	progressEvery = 10_000
)

func main() {
	var (
		databaseURL string
		outputPath  string
		employeeID  string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&outputPath, "output", "sales.ndjson.gz", "output file path")
	flag.StringVar(&employeeID, "employee-id", "", "restrict export to one seller (default: all)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, outputPath, employeeID); err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("export completed successfully", slog.String("output", outputPath))
}

func run(ctx context.Context, databaseURL, outputPath, employeeID string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	repo := repository.NewSaleRepository(pool)

	out, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrapf(err, "create %s", outputPath)
	}
	defer func() { _ = out.Close() }()

	gz := pgzip.NewWriter(out)

	sales := make(chan sale.Sale, batchSize)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(fetchSales(ctx, repo, employeeID, sales))
	g.Go(encodeSales(ctx, gz, sales))

	if err := g.Wait(); err != nil {
		return err
	}

	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "flush gzip stream")
	}
	return out.Close()
}

// fetchSales pages through the sales history and feeds each sale into ch.
func fetchSales(ctx context.Context, repo *repository.SaleRepository, employeeID string, ch chan<- sale.Sale) func() error {
	return func() error {
		defer close(ch)

		for page := 1; ; page++ {
			p, err := repo.History(ctx, employeeID, page, batchSize)
			if err != nil {
				return errors.Wrapf(err, "fetch page %d", page)
			}
			if len(p.Sales) == 0 {
				return nil
			}

			for _, s := range p.Sales {
				select {
				case ch <- s:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			if len(p.Sales) < batchSize {
				return nil
			}
		}
	}
}

// encodeSales drains ch, writing one JSON object per line.
func encodeSales(ctx context.Context, gz *pgzip.Writer, ch <-chan sale.Sale) func() error {
	return func() error {
		var (
			enc   jx.Encoder
			count uint64
		)

		for s := range ch {
			if err := ctx.Err(); err != nil {
				return err
			}

			enc.Reset()
			encodeSale(&enc, &s)

			if _, err := gz.Write(append(enc.Bytes(), '\n')); err != nil {
				return errors.Wrap(err, "write sale")
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("export progress", slog.Uint64("sales", count))
			}
		}

		slog.Info("export complete", slog.Uint64("total_sales", count))
		return nil
	}
}

func encodeSale(enc *jx.Encoder, s *sale.Sale) {
	enc.Obj(func(enc *jx.Encoder) {
		enc.Field("transactionId", func(enc *jx.Encoder) { enc.Str(s.ID) })
		enc.Field("documentId", func(enc *jx.Encoder) { enc.Str(s.DocumentID) })
		enc.Field("sellerId", func(enc *jx.Encoder) { enc.Str(s.SellerID) })
		enc.Field("payable", func(enc *jx.Encoder) { enc.RawStr(s.Payable.String()) })
		enc.Field("discountAmount", func(enc *jx.Encoder) { enc.RawStr(s.DiscountAmount.String()) })
		enc.Field("taxInvoice", func(enc *jx.Encoder) { enc.Bool(s.TaxInvoice) })
		enc.Field("vatMode", func(enc *jx.Encoder) { enc.Str(string(s.VATMode)) })
		enc.Field("withholdingPercent", func(enc *jx.Encoder) { enc.RawStr(s.WithholdingPercent.String()) })
		enc.Field("withholdingBase", func(enc *jx.Encoder) { enc.Str(string(s.WithholdingBase)) })
		enc.Field("change", func(enc *jx.Encoder) { enc.RawStr(s.Change.String()) })
		enc.Field("createdAt", func(enc *jx.Encoder) { enc.Str(s.CreatedAt.Format("2006-01-02T15:04:05Z07:00")) })

		enc.Field("items", func(enc *jx.Encoder) {
			enc.Arr(func(enc *jx.Encoder) {
				for _, it := range s.Items {
					enc.Obj(func(enc *jx.Encoder) {
						enc.Field("uniqueId", func(enc *jx.Encoder) { enc.Str(it.UniqueID) })
						enc.Field("productId", func(enc *jx.Encoder) { enc.Str(it.ProductID) })
						enc.Field("name", func(enc *jx.Encoder) { enc.Str(it.Name) })
						enc.Field("price", func(enc *jx.Encoder) { enc.RawStr(it.Price.String()) })
					})
				}
			})
		})

		enc.Field("payments", func(enc *jx.Encoder) {
			enc.Arr(func(enc *jx.Encoder) {
				for _, p := range s.Payments {
					enc.Obj(func(enc *jx.Encoder) {
						enc.Field("method", func(enc *jx.Encoder) { enc.Str(p.Method) })
						enc.Field("amount", func(enc *jx.Encoder) { enc.RawStr(p.Amount.String()) })
						if p.RefNo != "" {
							enc.Field("refNo", func(enc *jx.Encoder) { enc.Str(p.RefNo) })
						}
					})
				}
			})
		})
	})
}
