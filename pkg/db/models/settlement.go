package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ovenline/storefront-backend/pkg/enums"
)

// Settlement records a gateway payment outcome that arrived before (or
// without) a matching order. It exists so a confirmed payment is never
// silently dropped; the unique intent id keeps webhook redelivery from
// duplicating rows.
type Settlement struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StripePaymentIntentID string              `gorm:"column:stripe_payment_intent_id;not null;uniqueIndex"`
	AmountMinor           int64               `gorm:"column:amount_minor;not null"`
	Currency              enums.Currency      `gorm:"column:currency;type:text;not null"`
	Status                enums.PaymentStatus `gorm:"column:status;type:text;not null"`
	FailureReason         *string             `gorm:"column:failure_reason"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
