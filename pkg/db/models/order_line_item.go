package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ovenline/storefront-backend/pkg/types"
)

// OrderLineItem is an immutable snapshot of a cart line at checkout time.
// Prices are captured, not referenced, so later catalog edits cannot change
// a placed order.
type OrderLineItem struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID        `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	Name           string           `gorm:"column:name;not null"`
	VariantKey     *string          `gorm:"column:variant_key"`
	UnitPriceMinor int64            `gorm:"column:unit_price_minor;not null"`
	Quantity       int              `gorm:"column:quantity;not null"`
	Addons         types.LineAddons `gorm:"column:addons;type:jsonb;serializer:json"`
	LineTotalMinor int64            `gorm:"column:line_total_minor;not null"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
}
