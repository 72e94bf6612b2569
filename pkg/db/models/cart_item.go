package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one line in an anonymous, session-keyed cart. SelectedWeight is
// empty when the product was added without picking a weight variant; the
// composite unique index makes repeat adds of the same variant an upsert
// instead of a duplicate row.
type CartItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID         *uuid.UUID `gorm:"column:user_id;type:uuid" json:"user_id,omitempty"`
	SessionID      string     `gorm:"column:session_id;not null;uniqueIndex:idx_cart_line,priority:1" json:"session_id"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_line,priority:2" json:"product_id"`
	Product        *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity       int        `gorm:"column:quantity;not null;default:1" json:"quantity"`
	SelectedWeight string     `gorm:"column:selected_weight;not null;default:'';uniqueIndex:idx_cart_line,priority:3" json:"selected_weight,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (c *CartItem) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
