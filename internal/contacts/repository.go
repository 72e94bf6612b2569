package contact

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milletmart/milletmart-backend/pkg/db"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
)

// Repository defines persistence for contact form submissions. The table is
// append only.
type Repository interface {
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	List(ctx context.Context) ([]models.Contact, error)
}

// GormRepository is the production contact store.
type GormRepository struct {
	client *db.Client
}

// NewGormRepository builds a contact repository tied to the provided DB client.
func NewGormRepository(client *db.Client) *GormRepository {
	return &GormRepository{client: client}
}

// Create inserts a submission.
func (r *GormRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).Create(contact).Error
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// List returns all submissions, newest first.
func (r *GormRepository) List(ctx context.Context) ([]models.Contact, error) {
	var rows []models.Contact
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	})
	return rows, err
}

// MemoryRepository is a map-backed contact store for local development and
// tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]models.Contact
}

// NewMemoryRepository builds an empty in-memory contact repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]models.Contact)}
}

func (r *MemoryRepository) Create(_ context.Context, contact *models.Contact) (*models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now().UTC()
	}
	r.items[contact.ID] = *contact
	return contact, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]models.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]models.Contact, 0, len(r.items))
	for _, item := range r.items {
		rows = append(rows, item)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID.String() > rows[j].ID.String()
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows, nil
}
