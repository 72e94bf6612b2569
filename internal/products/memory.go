package product

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milletmart/milletmart-backend/pkg/db/models"
	"github.com/milletmart/milletmart-backend/pkg/pagination"
)

// MemoryRepository is a map-backed repository for local development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]models.Product
}

// NewMemoryRepository builds an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]models.Product)}
}

func (r *MemoryRepository) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	for _, existing := range r.items {
		if existing.Slug == product.Slug {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	r.items[product.ID] = *product
	return product, nil
}

func (r *MemoryRepository) Update(_ context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[product.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	product.UpdatedAt = time.Now().UTC()
	r.items[product.ID] = *product
	return product, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (r *MemoryRepository) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Slug == slug {
			found := item
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MemoryRepository) List(_ context.Context, page pagination.Params) ([]models.Product, error) {
	page = page.Normalize()
	all := r.snapshot(func(models.Product) bool { return true })

	if page.Offset >= len(all) {
		return []models.Product{}, nil
	}
	end := page.Offset + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[page.Offset:end], nil
}

func (r *MemoryRepository) ListFeatured(_ context.Context) ([]models.Product, error) {
	return r.snapshot(func(p models.Product) bool { return p.Featured }), nil
}

func (r *MemoryRepository) ListByCategory(_ context.Context, category string) ([]models.Product, error) {
	want := strings.ToLower(category)
	return r.snapshot(func(p models.Product) bool {
		return strings.ToLower(p.Category) == want
	}), nil
}

func (r *MemoryRepository) Search(_ context.Context, query string) ([]models.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return r.snapshot(func(models.Product) bool { return true }), nil
	}
	return r.snapshot(func(p models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle)
	}), nil
}

// snapshot copies matching rows ordered newest first.
func (r *MemoryRepository) snapshot(match func(models.Product) bool) []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]models.Product, 0, len(r.items))
	for _, item := range r.items {
		if match(item) {
			rows = append(rows, item)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID.String() > rows[j].ID.String()
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows
}
