package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/milletmart/milletmart-backend/pkg/db/models"
	pkgerrors "github.com/milletmart/milletmart-backend/pkg/errors"
)

func TestCreateProduct(t *testing.T) {
	stub := &stubProductService{product: &models.Product{Name: "Barnyard Millet", Price: decimal.NewFromInt(120)}}

	body := `{"name":"Barnyard Millet","description":"Whole grain","price":"120","category":"grains"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	CreateProduct(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateProductRequiresName(t *testing.T) {
	body := `{"description":"no name","price":"10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	CreateProduct(&stubProductService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateProductDuplicateSlug(t *testing.T) {
	stub := &stubProductService{err: pkgerrors.New(pkgerrors.CodeConflict, "a product with this slug already exists")}

	body := `{"name":"Ragi Flour","description":"d","price":"80"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	CreateProduct(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestUpdateProductInvalidID(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/admin/products/bad", strings.NewReader(`{}`)), "id", "bad")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	UpdateProduct(&stubProductService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d", rec.Code)
	}
}

func TestDeleteProduct(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/admin/products/x", nil), "id", uuid.NewString())
	rec := httptest.NewRecorder()
	DeleteProduct(&stubProductService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "deleted") {
		t.Errorf("body = %s, want deleted status", rec.Body.String())
	}
}

func TestAddProductReview(t *testing.T) {
	stub := &stubProductService{product: &models.Product{Name: "Ragi Flour", Rating: 4, ReviewCount: 1}}

	body := `{"author":"Asha","rating":4,"comment":"Fresh and well packed"}`
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/admin/products/x/reviews", strings.NewReader(body)), "id", uuid.NewString())
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AddProductReview(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAddProductReviewRatingBounds(t *testing.T) {
	for _, body := range []string{
		`{"author":"Asha","rating":0}`,
		`{"author":"Asha","rating":6}`,
	} {
		req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/admin/products/x/reviews", strings.NewReader(body)), "id", uuid.NewString())
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		AddProductReview(&stubProductService{}, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rec.Code)
		}
	}
}

func TestDeleteProductReviewBadIndex(t *testing.T) {
	req := withTwoURLParams(httptest.NewRequest(http.MethodDelete, "/api/admin/products/x/reviews/first", nil), "id", uuid.NewString(), "index", "first")
	rec := httptest.NewRecorder()
	DeleteProductReview(&stubProductService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-numeric index, got %d", rec.Code)
	}
}

func TestDeleteProductReview(t *testing.T) {
	stub := &stubProductService{product: &models.Product{Name: "Ragi Flour"}}

	req := withTwoURLParams(httptest.NewRequest(http.MethodDelete, "/api/admin/products/x/reviews/0", nil), "id", uuid.NewString(), "index", "0")
	rec := httptest.NewRecorder()
	DeleteProductReview(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
