package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/milletmart/milletmart-backend/api/controllers"
	"github.com/milletmart/milletmart-backend/api/middleware"
	authsvc "github.com/milletmart/milletmart-backend/internal/auth"
	cartsvc "github.com/milletmart/milletmart-backend/internal/cart"
	contactsvc "github.com/milletmart/milletmart-backend/internal/contacts"
	productsvc "github.com/milletmart/milletmart-backend/internal/products"
	"github.com/milletmart/milletmart-backend/pkg/auth/session"
	"github.com/milletmart/milletmart-backend/pkg/config"
	"github.com/milletmart/milletmart-backend/pkg/logger"
	"github.com/milletmart/milletmart-backend/pkg/metrics"
	redisclient "github.com/milletmart/milletmart-backend/pkg/redis"
)

// Dependencies bundles everything the router wires into handlers. Redis and
// Sessions may be nil when the store runs fully in memory; the admin surface
// then only admits shared-key callers and login rate limiting is disabled.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.HTTPMetrics
	Redis    *redisclient.Client
	Sessions session.Validator

	Readiness map[string]controllers.Pinger

	Products productsvc.Service
	Cart     cartsvc.Service
	Contacts contactsvc.Service
	Auth     authsvc.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	verifiers := []middleware.AdminVerifier{middleware.NewKeyVerifier(cfg.Admin)}
	if deps.Sessions != nil {
		verifiers = append(verifiers, middleware.NewSessionVerifier(cfg.Admin, deps.Sessions))
	}
	adminPolicy := middleware.NewAdminPolicy(verifiers...)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, logg))
		r.Get("/featured", controllers.ListFeaturedProducts(deps.Products, logg))
		r.Get("/search", controllers.SearchProducts(deps.Products, logg))
		r.Get("/category/{category}", controllers.ListProductsByCategory(deps.Products, logg))
		r.Get("/slug/{slug}", controllers.GetProductBySlug(deps.Products, logg))
		r.Get("/{id}", controllers.GetProduct(deps.Products, logg))
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(middleware.CartSession(logg))
		r.Get("/", controllers.GetCart(deps.Cart, logg))
		r.Post("/", controllers.AddCartItem(deps.Cart, logg))
		r.Delete("/", controllers.ClearCart(deps.Cart, logg))
		r.Get("/summary", controllers.CartSummary(deps.Cart, logg))
		r.Put("/{id}", controllers.UpdateCartItem(deps.Cart, logg))
		r.Delete("/{id}", controllers.DeleteCartItem(deps.Cart, logg))
	})

	r.Post("/api/contact", controllers.SubmitContact(deps.Contacts, logg))

	r.Route("/api/admin", func(r chi.Router) {
		loginLimiter := middleware.AuthRateLimit(cfg.AuthRateLimit, deps.Redis, logg)
		r.With(loginLimiter).Post("/login", controllers.AdminLogin(deps.Auth, cfg.Admin, logg))
		r.With(loginLimiter).Post("/verify-otp", controllers.AdminVerifyOTP(deps.Auth, cfg.Admin, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(adminPolicy, logg))

			r.Get("/session", controllers.AdminSession(deps.Auth, logg))
			r.Post("/setup-otp", controllers.AdminSetupOTP(deps.Auth, logg))
			r.Post("/verify-setup", controllers.AdminVerifySetup(deps.Auth, logg))
			r.Post("/logout", controllers.AdminLogout(deps.Auth, cfg.Admin, logg))

			r.Get("/contacts", controllers.ListContacts(deps.Contacts, logg))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.CreateProduct(deps.Products, logg))
				r.Put("/{id}", controllers.UpdateProduct(deps.Products, logg))
				r.Delete("/{id}", controllers.DeleteProduct(deps.Products, logg))
				r.Post("/{id}/reviews", controllers.AddProductReview(deps.Products, logg))
				r.Delete("/{id}/reviews/{index}", controllers.DeleteProductReview(deps.Products, logg))
			})
		})
	})

	return r
}
