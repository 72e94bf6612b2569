package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	productsvc "github.com/milletmart/milletmart-backend/internal/products"
	usersvc "github.com/milletmart/milletmart-backend/internal/users"
	"github.com/milletmart/milletmart-backend/pkg/config"
	"github.com/milletmart/milletmart-backend/pkg/db"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
	"github.com/milletmart/milletmart-backend/pkg/logger"
	"github.com/milletmart/milletmart-backend/pkg/migrate"
	"github.com/milletmart/milletmart-backend/pkg/security"
	"github.com/milletmart/milletmart-backend/pkg/types"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	adminUsername := flag.String("admin-username", "admin", "admin account username")
	adminPassword := flag.String("admin-password", "", "admin account password (required)")
	withCatalog := flag.Bool("catalog", true, "seed the starter product catalog")
	flag.Parse()

	if *adminPassword == "" {
		logg.Error(ctx, "missing -admin-password", errors.New("an admin password is required"))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	if err := seedAdmin(ctx, dbClient, cfg, *adminUsername, *adminPassword); err != nil {
		logg.Error(ctx, "failed to seed admin account", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "username", *adminUsername), "admin account ready")

	if *withCatalog {
		created, err := seedCatalog(ctx, dbClient)
		if err != nil {
			logg.Error(ctx, "failed to seed catalog", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "created", created), "catalog ready")
	}
}

// seedAdmin creates the admin account when absent. An existing account keeps
// its password; rotation goes through the API, not the seeder.
func seedAdmin(ctx context.Context, client *db.Client, cfg *config.Config, username, password string) error {
	users := usersvc.NewGormRepository(client)

	if _, err := users.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := security.HashPassword(password, cfg.Password)
	if err != nil {
		return err
	}

	_, err = users.Create(ctx, &models.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      true,
	})
	return err
}

func seedCatalog(ctx context.Context, client *db.Client) (int, error) {
	svc, err := productsvc.NewService(productsvc.NewGormRepository(client))
	if err != nil {
		return 0, err
	}

	created := 0
	for _, input := range starterCatalog() {
		if _, err := svc.GetBySlug(ctx, productsvc.Slugify(input.Name)); err == nil {
			continue
		}
		if _, err := svc.Create(ctx, input); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func starterCatalog() []productsvc.CreateProductInput {
	nutrition := func(s string) *string { return &s }

	return []productsvc.CreateProductInput{
		{
			Name:          "Foxtail Millet",
			Description:   "Unpolished foxtail millet, slow-grown and stone cleaned.",
			Price:         decimal.NewFromInt(95),
			Category:      "grains",
			InStock:       true,
			StockQty:      120,
			Featured:      true,
			NutritionText: nutrition("Rich in iron and dietary fibre. 351 kcal per 100g."),
			WeightOptions: []string{"500g", "1kg"},
			WeightPrices: types.WeightPrices{
				"500g": decimal.NewFromInt(95),
				"1kg":  decimal.NewFromInt(180),
			},
		},
		{
			Name:          "Ragi Flour",
			Description:   "Sprouted finger millet flour, ground fresh every week.",
			Price:         decimal.NewFromInt(80),
			Category:      "flours",
			InStock:       true,
			StockQty:      200,
			Featured:      true,
			WeightOptions: []string{"500g", "1kg"},
			WeightPrices: types.WeightPrices{
				"500g": decimal.NewFromInt(80),
				"1kg":  decimal.NewFromInt(150),
			},
		},
		{
			Name:        "Little Millet",
			Description: "Little millet pearls that cook up light and fluffy.",
			Price:       decimal.NewFromInt(90),
			Category:    "grains",
			InStock:     true,
			StockQty:    80,
		},
		{
			Name:        "Barnyard Millet",
			Description: "Quick-cooking barnyard millet for everyday khichdi.",
			Price:       decimal.NewFromInt(110),
			Category:    "grains",
			InStock:     true,
			StockQty:    60,
		},
		{
			Name:        "Millet Dosa Mix",
			Description: "Three-millet dosa batter mix, ferments overnight.",
			Price:       decimal.NewFromInt(140),
			Category:    "mixes",
			InStock:     true,
			StockQty:    45,
			Featured:    true,
		},
	}
}
