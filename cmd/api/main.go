package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/milletmart/milletmart-backend/api/controllers"
	"github.com/milletmart/milletmart-backend/api/routes"
	authsvc "github.com/milletmart/milletmart-backend/internal/auth"
	cartsvc "github.com/milletmart/milletmart-backend/internal/cart"
	contactsvc "github.com/milletmart/milletmart-backend/internal/contacts"
	"github.com/milletmart/milletmart-backend/internal/pricing"
	productsvc "github.com/milletmart/milletmart-backend/internal/products"
	usersvc "github.com/milletmart/milletmart-backend/internal/users"
	"github.com/milletmart/milletmart-backend/pkg/auth/session"
	"github.com/milletmart/milletmart-backend/pkg/config"
	"github.com/milletmart/milletmart-backend/pkg/db"
	"github.com/milletmart/milletmart-backend/pkg/logger"
	"github.com/milletmart/milletmart-backend/pkg/metrics"
	"github.com/milletmart/milletmart-backend/pkg/migrate"
	redisclient "github.com/milletmart/milletmart-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	readiness := map[string]controllers.Pinger{}

	var (
		productRepo productsvc.Repository
		cartRepo    cartsvc.Repository
		contactRepo contactsvc.Repository
		userRepo    usersvc.Repository
	)

	if cfg.FeatureFlags.UseMemoryStore {
		memProducts := productsvc.NewMemoryRepository()
		productRepo = memProducts
		cartRepo = cartsvc.NewMemoryRepository(memProducts)
		contactRepo = contactsvc.NewMemoryRepository()
		userRepo = usersvc.NewMemoryRepository()
		logg.Warn(context.Background(), "running with in-memory stores, data will not survive restarts")
	} else {
		dbClient, err := db.New(context.Background(), cfg.DB, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()

		if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
			logg.Error(context.Background(), "failed to run dev migrations", err)
			os.Exit(1)
		}

		productRepo = productsvc.NewGormRepository(dbClient)
		cartRepo = cartsvc.NewGormRepository(dbClient)
		contactRepo = contactsvc.NewGormRepository(dbClient)
		userRepo = usersvc.NewGormRepository(dbClient)
		readiness["db"] = dbClient
	}

	redisClient, err := redisclient.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()
	readiness["redis"] = redisClient

	sessionManager, err := session.NewManager(redisClient, cfg.Admin.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	productService, err := productsvc.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartRepo, productRepo, pricing.RulesFromConfig(cfg.Pricing))
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	contactService, err := contactsvc.NewService(contactRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(userRepo, sessionManager, cfg.Admin)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:    cfg,
			Logger:    logg,
			Metrics:   metrics.NewHTTPMetrics(),
			Redis:     redisClient,
			Sessions:  sessionManager,
			Readiness: readiness,
			Products:  productService,
			Cart:      cartService,
			Contacts:  contactService,
			Auth:      authService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
