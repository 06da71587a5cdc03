package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ovenline/storefront-backend/pkg/types"
)

// BranchDTO is the public shape of a branch.
type BranchDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	City     string    `json:"city"`
	Country  string    `json:"country"`
	Address  string    `json:"address"`
	Phone    *string   `json:"phone,omitempty"`
	Currency string    `json:"currency"`
	GSTRate  float64   `json:"gst_rate"`
}

// CategoryDTO is the public shape of a category.
type CategoryDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	ImageURL string    `json:"image_url,omitempty"`
	Position int       `json:"position"`
}

// ProductDTO is the public shape of a product.
type ProductDTO struct {
	ID             uuid.UUID             `json:"id"`
	Name           string                `json:"name"`
	Slug           string                `json:"slug"`
	Description    string                `json:"description,omitempty"`
	ImageURL       string                `json:"image_url,omitempty"`
	BasePriceMinor int64                 `json:"base_price_minor"`
	Variants       types.ProductVariants `json:"variants,omitempty"`
	Addons         types.ProductAddons   `json:"addons,omitempty"`
}

// DealDTO is the public shape of a deal.
type DealDTO struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	ImageURL   string     `json:"image_url,omitempty"`
	PriceMinor int64      `json:"price_minor"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
}

// normalizeImageURL is the single place legacy image values get cleaned up.
// The source data mixed absolute URLs with bare storage paths; everything
// else in the system sees one canonical form.
func normalizeImageURL(raw *string) string {
	if raw == nil {
		return ""
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return "/media/" + strings.TrimPrefix(value, "/")
}
