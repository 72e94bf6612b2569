package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/milletmart/milletmart-backend/pkg/types"
)

// Product is a catalog listing. Slug is unique and immutable after creation
// by convention; only the uniqueness is enforced.
type Product struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Slug           string             `gorm:"column:slug;not null;uniqueIndex:idx_products_slug" json:"slug"`
	Name           string             `gorm:"column:name;not null" json:"name"`
	Description    string             `gorm:"column:description;not null" json:"description"`
	Price          decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	CompareAtPrice *decimal.Decimal   `gorm:"column:compare_at_price;type:numeric(10,2)" json:"compare_at_price,omitempty"`
	Category       string             `gorm:"column:category;not null;index" json:"category"`
	ImageURL       string             `gorm:"column:image_url" json:"image_url"`
	Gallery        []string           `gorm:"column:gallery;type:jsonb;serializer:json" json:"gallery,omitempty"`
	InStock        bool               `gorm:"column:in_stock;not null;default:true" json:"in_stock"`
	StockQty       int                `gorm:"column:stock_qty;not null;default:0" json:"stock_qty"`
	Featured       bool               `gorm:"column:featured;not null;default:false" json:"featured"`
	NutritionText  *string            `gorm:"column:nutrition_text" json:"nutrition_text,omitempty"`
	CookingText    *string            `gorm:"column:cooking_text" json:"cooking_text,omitempty"`
	Rating         float64            `gorm:"column:rating;not null;default:0" json:"rating"`
	ReviewCount    int                `gorm:"column:review_count;not null;default:0" json:"review_count"`
	WeightOptions  []string           `gorm:"column:weight_options;type:jsonb;serializer:json" json:"weight_options,omitempty"`
	WeightPrices   types.WeightPrices `gorm:"column:weight_prices;type:jsonb;serializer:json" json:"weight_prices,omitempty"`
	Reviews        types.Reviews      `gorm:"column:reviews;type:jsonb;serializer:json" json:"reviews,omitempty"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
