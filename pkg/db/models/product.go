package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ovenline/storefront-backend/pkg/types"
)

// Product is a menu item. Variants carry full unit prices; addons are
// per-unit extras. Prices are integer minor units.
type Product struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID     uuid.UUID             `gorm:"column:category_id;type:uuid;not null;index"`
	Name           string                `gorm:"column:name;not null"`
	Slug           string                `gorm:"column:slug;not null;uniqueIndex"`
	Description    *string               `gorm:"column:description"`
	ImageURL       *string               `gorm:"column:image_url"`
	BasePriceMinor int64                 `gorm:"column:base_price_minor;not null"`
	IsActive       bool                  `gorm:"column:is_active;not null;default:true"`
	Variants       types.ProductVariants `gorm:"column:variants;type:jsonb;serializer:json"`
	Addons         types.ProductAddons   `gorm:"column:addons;type:jsonb;serializer:json"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// UnitPriceMinor resolves the price for the selected variant, falling back
// to the base price when no variant is chosen.
func (p *Product) UnitPriceMinor(variantKey string) (int64, bool) {
	if variantKey == "" {
		return p.BasePriceMinor, true
	}
	variant, ok := p.Variants.Find(variantKey)
	if !ok {
		return 0, false
	}
	return variant.PriceMinor, true
}
