package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ovenline/storefront-backend/pkg/enums"
)

// Order is the durable record produced at checkout. The checkout service
// creates it; only the webhook reconciler moves payment_status afterwards.
// The customer linkage is the user_id foreign key, so a retried insert can
// never duplicate a history entry.
type Order struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	BranchID              uuid.UUID           `gorm:"column:branch_id;type:uuid;not null"`
	DeliveryAddress       string              `gorm:"column:delivery_address;not null"`
	Phone                 string              `gorm:"column:phone;not null"`
	Currency              enums.Currency      `gorm:"column:currency;type:text;not null;default:'GBP'"`
	SubtotalMinor         int64               `gorm:"column:subtotal_minor;not null"`
	GSTMinor              int64               `gorm:"column:gst_minor;not null;default:0"`
	TotalMinor            int64               `gorm:"column:total_minor;not null"`
	PaymentMethod         enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'cash'"`
	PaymentStatus         enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	StripePaymentIntentID *string             `gorm:"column:stripe_payment_intent_id;uniqueIndex"`
	FailureReason         *string             `gorm:"column:failure_reason"`
	Lines                 []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
