package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milletmart/milletmart-backend/pkg/db"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
	"github.com/milletmart/milletmart-backend/pkg/pagination"
)

// Repository defines persistence operations for catalog products.
type Repository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, page pagination.Params) ([]models.Product, error)
	ListFeatured(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
}

// GormRepository is the production repository backed by the shared DB client.
// Every operation runs under the client's bounded connection retry.
type GormRepository struct {
	client *db.Client
}

// NewGormRepository builds a repository tied to the provided DB client.
func NewGormRepository(client *db.Client) *GormRepository {
	return &GormRepository{client: client}
}

// Create inserts a new product row.
func (r *GormRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).Create(product).Error
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves the full product row.
func (r *GormRepository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).Save(product).Error
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product by ID.
func (r *GormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
	})
}

// GetByID loads a product by its primary key.
func (r *GormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).First(&product, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetBySlug loads a product by its URL slug.
func (r *GormRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).First(&product, "slug = ?", slug).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns the catalog page ordered newest first.
func (r *GormRepository) List(ctx context.Context, page pagination.Params) ([]models.Product, error) {
	page = page.Normalize()
	var rows []models.Product
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).
			Order("created_at DESC").
			Limit(page.Limit).
			Offset(page.Offset).
			Find(&rows).
			Error
	})
	return rows, err
}

// ListFeatured returns only products flagged as featured.
func (r *GormRepository) ListFeatured(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).
			Where("featured = ?", true).
			Order("created_at DESC").
			Find(&rows).
			Error
	})
	return rows, err
}

// ListByCategory returns products in the named category.
func (r *GormRepository) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var rows []models.Product
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).
			Where("LOWER(category) = ?", strings.ToLower(category)).
			Order("created_at DESC").
			Find(&rows).
			Error
	})
	return rows, err
}

// Search performs a case-insensitive substring match over name, description,
// and category. An empty query returns the full catalog.
func (r *GormRepository) Search(ctx context.Context, query string) ([]models.Product, error) {
	var rows []models.Product
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		err := r.client.Retry(ctx, func(conn *gorm.DB) error {
			return conn.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
		})
		return rows, err
	}

	pattern := "%" + strings.ToLower(trimmed) + "%"
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).
			Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern, pattern).
			Order("created_at DESC").
			Find(&rows).
			Error
	})
	return rows, err
}
