package cart

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milletmart/milletmart-backend/pkg/db/models"
)

// productGetter loads products for line preloading.
type productGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// MemoryRepository is a map-backed cart store for local development and
// tests. Lines are preloaded through the provided product repository.
type MemoryRepository struct {
	mu       sync.Mutex
	items    map[uuid.UUID]models.CartItem
	products productGetter
}

// NewMemoryRepository builds an empty in-memory cart repository.
func NewMemoryRepository(products productGetter) *MemoryRepository {
	return &MemoryRepository{
		items:    make(map[uuid.UUID]models.CartItem),
		products: products,
	}
}

func (r *MemoryRepository) ListBySession(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	r.mu.Lock()
	rows := make([]models.CartItem, 0)
	for _, item := range r.items {
		if item.SessionID == sessionID {
			rows = append(rows, item)
		}
	}
	r.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })

	for i := range rows {
		if err := r.preload(ctx, &rows[i]); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	r.mu.Lock()
	item, ok := r.items[id]
	r.mu.Unlock()

	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := r.preload(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MemoryRepository) FindLine(ctx context.Context, sessionID string, productID uuid.UUID, selectedWeight string) (*models.CartItem, error) {
	r.mu.Lock()
	item, ok := r.findLineLocked(sessionID, productID, selectedWeight)
	r.mu.Unlock()

	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := r.preload(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MemoryRepository) AddLine(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	r.mu.Lock()
	if existing, ok := r.findLineLocked(item.SessionID, item.ProductID, item.SelectedWeight); ok {
		existing.Quantity += item.Quantity
		existing.UpdatedAt = time.Now().UTC()
		r.items[existing.ID] = existing
		r.mu.Unlock()
		return r.GetByID(ctx, existing.ID)
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = *item
	r.mu.Unlock()

	return r.GetByID(ctx, item.ID)
}

func (r *MemoryRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) (*models.CartItem, error) {
	r.mu.Lock()
	item, ok := r.items[id]
	if !ok {
		r.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item
	r.mu.Unlock()

	return r.GetByID(ctx, id)
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) ClearSession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		if item.SessionID == sessionID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *MemoryRepository) findLineLocked(sessionID string, productID uuid.UUID, selectedWeight string) (models.CartItem, bool) {
	for _, item := range r.items {
		if item.SessionID == sessionID && item.ProductID == productID && item.SelectedWeight == selectedWeight {
			return item, true
		}
	}
	return models.CartItem{}, false
}

// preload attaches the referenced product. A line whose product has been
// deleted keeps a nil Product, matching gorm's Preload behavior.
func (r *MemoryRepository) preload(ctx context.Context, item *models.CartItem) error {
	if r.products == nil {
		return nil
	}
	product, err := r.products.GetByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item.Product = nil
			return nil
		}
		return err
	}
	item.Product = product
	return nil
}
