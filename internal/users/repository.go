package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milletmart/milletmart-backend/pkg/db"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
)

// Repository defines persistence for accounts.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}

// GormRepository is the production account store.
type GormRepository struct {
	client *db.Client
}

// NewGormRepository builds a user repository tied to the provided DB client.
func NewGormRepository(client *db.Client) *GormRepository {
	return &GormRepository{client: client}
}

func (r *GormRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).First(&u, "username = ?", username).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).First(&u, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *GormRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).Save(user).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// MemoryRepository is a map-backed account store for local development and
// tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]models.User
}

// NewMemoryRepository builds an empty in-memory user repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]models.User)}
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	for _, existing := range r.items {
		if existing.Username == user.Username {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.items[user.ID] = *user
	return user, nil
}

func (r *MemoryRepository) Update(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[user.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	r.items[user.ID] = *user
	return user, nil
}
