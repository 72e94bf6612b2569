package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/milletmart/milletmart-backend/pkg/db"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
	pkgerrors "github.com/milletmart/milletmart-backend/pkg/errors"
	"github.com/milletmart/milletmart-backend/pkg/pagination"
	"github.com/milletmart/milletmart-backend/pkg/types"
)

// Service exposes catalog read paths and admin product management.
type Service interface {
	List(ctx context.Context, page pagination.Params) ([]models.Product, error)
	ListFeatured(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddReview(ctx context.Context, productID uuid.UUID, input ReviewInput) (*models.Product, error)
	DeleteReview(ctx context.Context, productID uuid.UUID, index int) (*models.Product, error)
}

// CreateProductInput holds the validated payload to create a catalog product.
type CreateProductInput struct {
	Slug           string
	Name           string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Category       string
	ImageURL       string
	Gallery        []string
	InStock        bool
	StockQty       int
	Featured       bool
	NutritionText  *string
	CookingText    *string
	WeightOptions  []string
	WeightPrices   types.WeightPrices
}

// UpdateProductInput holds optional mutation values. Nil fields are left alone.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Category       *string
	ImageURL       *string
	Gallery        *[]string
	InStock        *bool
	StockQty       *int
	Featured       *bool
	NutritionText  *string
	CookingText    *string
	WeightOptions  *[]string
	WeightPrices   *types.WeightPrices
}

// ReviewInput is a single customer review attached by an admin.
type ReviewInput struct {
	Author  string
	Rating  int
	Comment string
}

type service struct {
	repo Repository
}

// NewService constructs the product service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, page pagination.Params) ([]models.Product, error) {
	rows, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

func (s *service) ListFeatured(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListFeatured(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured products")
	}
	return rows, nil
}

func (s *service) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	rows, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products by category")
	}
	return rows, nil
}

func (s *service) Search(ctx context.Context, query string) ([]models.Product, error) {
	rows, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return rows, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, asLookupError(err, "product not found")
	}
	return product, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, asLookupError(err, "product not found")
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(input.Name)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name or slug required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	product := &models.Product{
		Slug:           slug,
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		Price:          input.Price,
		CompareAtPrice: input.CompareAtPrice,
		Category:       strings.TrimSpace(input.Category),
		ImageURL:       input.ImageURL,
		Gallery:        input.Gallery,
		InStock:        input.InStock,
		StockQty:       input.StockQty,
		Featured:       input.Featured,
		NutritionText:  input.NutritionText,
		CookingText:    input.CookingText,
		WeightOptions:  input.WeightOptions,
		WeightPrices:   input.WeightPrices,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("slug %q already in use", slug))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, asLookupError(err, "product not found")
	}

	applyUpdate(product, input)
	if product.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return asLookupError(err, "product not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		// Cart lines reference products without cascade, so a product in an
		// active cart cannot be removed until those carts drop it.
		if db.IsForeignKeyViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product is in active carts")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) AddReview(ctx context.Context, productID uuid.UUID, input ReviewInput) (*models.Product, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, asLookupError(err, "product not found")
	}

	product.Reviews = append(product.Reviews, types.Review{
		Author:    strings.TrimSpace(input.Author),
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	})
	recomputeRating(product)

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review")
	}
	return updated, nil
}

func (s *service) DeleteReview(ctx context.Context, productID uuid.UUID, index int) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, asLookupError(err, "product not found")
	}
	if index < 0 || index >= len(product.Reviews) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}

	product.Reviews = append(product.Reviews[:index], product.Reviews[index+1:]...)
	recomputeRating(product)

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	return updated, nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.CompareAtPrice != nil {
		product.CompareAtPrice = input.CompareAtPrice
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.Gallery != nil {
		product.Gallery = *input.Gallery
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}
	if input.StockQty != nil {
		product.StockQty = *input.StockQty
	}
	if input.Featured != nil {
		product.Featured = *input.Featured
	}
	if input.NutritionText != nil {
		product.NutritionText = input.NutritionText
	}
	if input.CookingText != nil {
		product.CookingText = input.CookingText
	}
	if input.WeightOptions != nil {
		product.WeightOptions = *input.WeightOptions
	}
	if input.WeightPrices != nil {
		product.WeightPrices = *input.WeightPrices
	}
}

func recomputeRating(product *models.Product) {
	product.ReviewCount = len(product.Reviews)
	product.Rating = product.Reviews.AverageRating()
}

func asLookupError(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses runs of non-alphanumerics to
// single hyphens.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}
