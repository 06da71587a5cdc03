package models

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a physical storefront location. GST rate is in basis points
// (500 = 5%); the country code decides the billing currency.
type Branch struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Slug         string    `gorm:"column:slug;not null;uniqueIndex"`
	City         string    `gorm:"column:city;not null"`
	CountryCode  string    `gorm:"column:country_code;not null;default:'GB'"`
	GSTRateBasis int       `gorm:"column:gst_rate_basis;not null;default:500"`
	Address      string    `gorm:"column:address;not null"`
	Phone        *string   `gorm:"column:phone"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
