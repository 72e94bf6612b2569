package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	productsvc "github.com/milletmart/milletmart-backend/internal/products"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
	pkgerrors "github.com/milletmart/milletmart-backend/pkg/errors"
	"github.com/milletmart/milletmart-backend/pkg/logger"
	"github.com/milletmart/milletmart-backend/pkg/pagination"
	"github.com/milletmart/milletmart-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type stubProductService struct {
	products  []models.Product
	product   *models.Product
	err       error
	lastQuery string
	lastPage  pagination.Params
}

func (s *stubProductService) List(_ context.Context, page pagination.Params) ([]models.Product, error) {
	s.lastPage = page
	return s.products, s.err
}

func (s *stubProductService) ListFeatured(context.Context) ([]models.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) ListByCategory(_ context.Context, category string) ([]models.Product, error) {
	s.lastQuery = category
	return s.products, s.err
}

func (s *stubProductService) Search(_ context.Context, query string) ([]models.Product, error) {
	s.lastQuery = query
	return s.products, s.err
}

func (s *stubProductService) GetByID(context.Context, uuid.UUID) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) GetBySlug(context.Context, string) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) Create(context.Context, productsvc.CreateProductInput) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) Update(context.Context, uuid.UUID, productsvc.UpdateProductInput) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) Delete(context.Context, uuid.UUID) error {
	return s.err
}

func (s *stubProductService) AddReview(context.Context, uuid.UUID, productsvc.ReviewInput) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) DeleteReview(context.Context, uuid.UUID, int) (*models.Product, error) {
	return s.product, s.err
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func withTwoURLParams(r *http.Request, k1, v1, k2, v2 string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(k1, v1)
	routeCtx.URLParams.Add(k2, v2)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func TestListProductsPassesPagination(t *testing.T) {
	stub := &stubProductService{products: []models.Product{{Name: "Foxtail Millet"}}}

	req := httptest.NewRequest(http.MethodGet, "/api/products?limit=5&offset=10", nil)
	rec := httptest.NewRecorder()
	ListProducts(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.lastPage.Limit != 5 || stub.lastPage.Offset != 10 {
		t.Errorf("page = %+v, want limit 5 offset 10", stub.lastPage)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data == nil {
		t.Fatal("empty data envelope")
	}
}

func TestListProductsRejectsBadLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products?limit=abc", nil)
	rec := httptest.NewRecorder()
	ListProducts(&stubProductService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric limit, got %d", rec.Code)
	}
}

func TestSearchProductsForwardsQuery(t *testing.T) {
	stub := &stubProductService{}

	req := httptest.NewRequest(http.MethodGet, "/api/products/search?q=Ragi", nil)
	rec := httptest.NewRecorder()
	SearchProducts(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.lastQuery != "Ragi" {
		t.Errorf("query = %q, want Ragi", stub.lastQuery)
	}
}

func TestGetProductInvalidID(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/nope", nil), "id", "nope")
	rec := httptest.NewRecorder()
	GetProduct(&stubProductService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d", rec.Code)
	}
}

func TestGetProductNotFoundPassesThrough(t *testing.T) {
	stub := &stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/x", nil), "id", uuid.NewString())
	rec := httptest.NewRecorder()
	GetProduct(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetProductBySlug(t *testing.T) {
	stub := &stubProductService{product: &models.Product{Slug: "ragi-flour", Name: "Ragi Flour"}}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/slug/ragi-flour", nil), "slug", "ragi-flour")
	rec := httptest.NewRecorder()
	GetProductBySlug(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
