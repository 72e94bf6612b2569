package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/milletmart/milletmart-backend/api/responses"
	"github.com/milletmart/milletmart-backend/api/validators"
	productsvc "github.com/milletmart/milletmart-backend/internal/products"
	pkgerrors "github.com/milletmart/milletmart-backend/pkg/errors"
	"github.com/milletmart/milletmart-backend/pkg/logger"
	"github.com/milletmart/milletmart-backend/pkg/types"
)

type createProductRequest struct {
	Slug           string             `json:"slug,omitempty"`
	Name           string             `json:"name" validate:"required"`
	Description    string             `json:"description,omitempty"`
	Price          decimal.Decimal    `json:"price" validate:"required"`
	CompareAtPrice *decimal.Decimal   `json:"compare_at_price,omitempty"`
	Category       string             `json:"category,omitempty"`
	ImageURL       string             `json:"image_url,omitempty"`
	Gallery        []string           `json:"gallery,omitempty"`
	InStock        *bool              `json:"in_stock,omitempty"`
	StockQty       int                `json:"stock_qty,omitempty" validate:"omitempty,min=0"`
	Featured       bool               `json:"featured,omitempty"`
	NutritionText  *string            `json:"nutrition_text,omitempty"`
	CookingText    *string            `json:"cooking_text,omitempty"`
	WeightOptions  []string           `json:"weight_options,omitempty"`
	WeightPrices   types.WeightPrices `json:"weight_prices,omitempty"`
}

func (p createProductRequest) toInput() productsvc.CreateProductInput {
	inStock := true
	if p.InStock != nil {
		inStock = *p.InStock
	}
	return productsvc.CreateProductInput{
		Slug:           p.Slug,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Category:       p.Category,
		ImageURL:       p.ImageURL,
		Gallery:        p.Gallery,
		InStock:        inStock,
		StockQty:       p.StockQty,
		Featured:       p.Featured,
		NutritionText:  p.NutritionText,
		CookingText:    p.CookingText,
		WeightOptions:  p.WeightOptions,
		WeightPrices:   p.WeightPrices,
	}
}

type updateProductRequest struct {
	Name           *string             `json:"name,omitempty"`
	Description    *string             `json:"description,omitempty"`
	Price          *decimal.Decimal    `json:"price,omitempty"`
	CompareAtPrice *decimal.Decimal    `json:"compare_at_price,omitempty"`
	Category       *string             `json:"category,omitempty"`
	ImageURL       *string             `json:"image_url,omitempty"`
	Gallery        *[]string           `json:"gallery,omitempty"`
	InStock        *bool               `json:"in_stock,omitempty"`
	StockQty       *int                `json:"stock_qty,omitempty" validate:"omitempty,min=0"`
	Featured       *bool               `json:"featured,omitempty"`
	NutritionText  *string             `json:"nutrition_text,omitempty"`
	CookingText    *string             `json:"cooking_text,omitempty"`
	WeightOptions  *[]string           `json:"weight_options,omitempty"`
	WeightPrices   *types.WeightPrices `json:"weight_prices,omitempty"`
}

func (p updateProductRequest) toInput() productsvc.UpdateProductInput {
	return productsvc.UpdateProductInput{
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Category:       p.Category,
		ImageURL:       p.ImageURL,
		Gallery:        p.Gallery,
		InStock:        p.InStock,
		StockQty:       p.StockQty,
		Featured:       p.Featured,
		NutritionText:  p.NutritionText,
		CookingText:    p.CookingText,
		WeightOptions:  p.WeightOptions,
		WeightPrices:   p.WeightPrices,
	}
}

// CreateProduct handles admin product creation.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct handles partial admin product updates.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes a product from the catalog.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type addReviewRequest struct {
	Author  string `json:"author" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty"`
}

// AddProductReview appends a review to the product and recomputes its
// aggregate rating.
func AddProductReview(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		var payload addReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AddReview(r.Context(), id, productsvc.ReviewInput{
			Author:  payload.Author,
			Rating:  payload.Rating,
			Comment: payload.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// DeleteProductReview removes the review at the given position.
func DeleteProductReview(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "review not found"))
			return
		}

		product, err := svc.DeleteReview(r.Context(), id, index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
