package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/milletmart/milletmart-backend/pkg/db"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
)

// Repository defines persistence for session carts.
type Repository interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.CartItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	FindLine(ctx context.Context, sessionID string, productID uuid.UUID, selectedWeight string) (*models.CartItem, error)
	AddLine(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) (*models.CartItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ClearSession(ctx context.Context, sessionID string) error
}

// GormRepository is the production cart store. Operations run under the
// shared client's bounded connection retry.
type GormRepository struct {
	client *db.Client
}

// NewGormRepository builds a cart repository tied to the provided DB client.
func NewGormRepository(client *db.Client) *GormRepository {
	return &GormRepository{client: client}
}

// ListBySession returns the session's cart lines with products preloaded,
// oldest line first.
func (r *GormRepository) ListBySession(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).
			Preload("Product").
			Where("session_id = ?", sessionID).
			Order("created_at ASC").
			Find(&rows).
			Error
	})
	return rows, err
}

// GetByID loads a single cart line with its product.
func (r *GormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).Preload("Product").First(&item, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindLine locates the at-most-one row for a (session, product, weight)
// triple, product preloaded. The empty weight is a real key value, so lines
// without a weight selection match only each other.
func (r *GormRepository) FindLine(ctx context.Context, sessionID string, productID uuid.UUID, selectedWeight string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).
			Preload("Product").
			Where("session_id = ? AND product_id = ? AND selected_weight = ?", sessionID, productID, selectedWeight).
			First(&item).
			Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddLine inserts the line, or bumps the quantity of the existing line for
// the same (session, product, weight) triple. Concurrent adds funnel through
// the idx_cart_line unique index, so the merge is race free.
func (r *GormRepository) AddLine(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "session_id"},
					{Name: "product_id"},
					{Name: "selected_weight"},
				},
				DoUpdates: clause.Assignments(map[string]any{
					"quantity": gorm.Expr("cart_items.quantity + ?", item.Quantity),
				}),
			}).
			Create(item).
			Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindLine(ctx, item.SessionID, item.ProductID, item.SelectedWeight)
}

// UpdateQuantity sets the line's quantity.
func (r *GormRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) (*models.CartItem, error) {
	err := r.client.Retry(ctx, func(conn *gorm.DB) error {
		result := conn.WithContext(ctx).
			Model(&models.CartItem{}).
			Where("id = ?", id).
			Update("quantity", quantity)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a single cart line.
func (r *GormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).Where("id = ?", id).Delete(&models.CartItem{}).Error
	})
}

// ClearSession removes every line belonging to the named session and no
// others.
func (r *GormRepository) ClearSession(ctx context.Context, sessionID string) error {
	return r.client.Retry(ctx, func(conn *gorm.DB) error {
		return conn.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&models.CartItem{}).Error
	})
}
