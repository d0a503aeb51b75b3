package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/chaiyapat/siampos/internal/domain/discount"
	"github.com/chaiyapat/siampos/internal/domain/product"
	"github.com/chaiyapat/siampos/internal/domain/staff"
	"github.com/chaiyapat/siampos/internal/repository"
)

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Barcode  string          `json:"barcode"`
	Image    string          `json:"image"`
}

type staffJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Passcode string `json:"passcode"`
}

func main() {
	var (
		databaseURL    string
		productsFile   string
		staffFile      string
		passcodePepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&staffFile, "staff-file", "db/seed/staff.json", "path to staff JSON file")
	flag.StringVar(&passcodePepper, "passcode-pepper", "", "HMAC pepper for passcode hashing (or POS_PASSCODE_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if passcodePepper == "" {
		passcodePepper = os.Getenv("POS_PASSCODE_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, staffFile, passcodePepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, staffFile, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, repository.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedStaff(ctx, repository.NewStaffRepository(pool), staffFile, pepper); err != nil {
		return errors.Wrap(err, "seed staff")
	}

	if err := seedDiscounts(ctx, repository.NewDiscountRepository(pool)); err != nil {
		return errors.Wrap(err, "seed discounts")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if err := repo.Upsert(ctx, product.Product{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Category: p.Category,
			Barcode:  p.Barcode,
			Image:    p.Image,
		}); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedStaff(ctx context.Context, repo *repository.StaffRepository, staffFile, pepper string) error {
	slog.Info("reading staff file", slog.String("path", staffFile))

	data, err := os.ReadFile(staffFile)
	if err != nil {
		return errors.Wrap(err, "read staff file")
	}

	var members []staffJSON
	if err := json.Unmarshal(data, &members); err != nil {
		return errors.Wrap(err, "parse staff JSON")
	}

	slog.Info("upserting staff", slog.Int("count", len(members)))

	for _, m := range members {
		if err := repo.Upsert(ctx, &staff.Staff{
			ID:           m.ID,
			Name:         m.Name,
			Role:         m.Role,
			PasscodeHash: staff.HashPasscode(m.Passcode, []byte(pepper)),
		}); err != nil {
			return errors.Wrapf(err, "upsert staff %s", m.ID)
		}

		slog.Info("upserted staff", slog.String("id", m.ID), slog.String("name", m.Name))
	}

	return nil
}

func seedDiscounts(ctx context.Context, repo *repository.DiscountRepository) error {
	slog.Info("seeding demo discounts")

	rules := []discount.Rule{
		{
			Code:        "OPENING5",
			Type:        discount.TypePercentage,
			Value:       decimal.NewFromInt(5),
			Description: "Grand opening: 5% off entire sale",
			Active:      true,
		},
		{
			Code:        "MEMBER20",
			Type:        discount.TypeFixed,
			Value:       decimal.NewFromInt(20),
			MinSubtotal: decimal.NewFromInt(200),
			Description: "Member: 20 baht off sales over 200",
			Active:      true,
		},
	}

	for _, d := range rules {
		if err := repo.Upsert(ctx, &d); err != nil {
			return errors.Wrapf(err, "upsert discount %s", d.Code)
		}

		slog.Info("upserted discount", slog.String("code", d.Code), slog.String("description", d.Description))
	}

	return nil
}
