package models

import (
	"time"

	"github.com/google/uuid"
)

// Deal is a time-bounded promotional bundle shown on a branch page.
type Deal struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID   uuid.UUID  `gorm:"column:branch_id;type:uuid;not null;index"`
	Title      string     `gorm:"column:title;not null"`
	ImageURL   *string    `gorm:"column:image_url"`
	PriceMinor int64      `gorm:"column:price_minor;not null"`
	StartsAt   *time.Time `gorm:"column:starts_at"`
	EndsAt     *time.Time `gorm:"column:ends_at"`
	IsActive   bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// LiveAt reports whether the deal should be displayed at the given time.
func (d *Deal) LiveAt(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return false
	}
	if d.EndsAt != nil && now.After(*d.EndsAt) {
		return false
	}
	return true
}
