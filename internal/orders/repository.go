package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ovenline/storefront-backend/pkg/db/models"
	"github.com/ovenline/storefront-backend/pkg/enums"
)

// Repository persists orders and their line snapshots.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the order together with its line items.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// ListByUser returns a customer's orders, newest first, lines included.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// FindByID loads a single order with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIntentID loads the order attached to a payment intent.
func (r *Repository) FindByIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", intentID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// AttachIntentID records the payment intent on an order the user owns. The
// update is scoped to the owner and to orders without an intent yet, so an
// intent cannot be re-pointed.
func (r *Repository) AttachIntentID(ctx context.Context, orderID, userID uuid.UUID, intentID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND user_id = ? AND stripe_payment_intent_id IS NULL", orderID, userID).
		Update("stripe_payment_intent_id", intentID)
	return res.RowsAffected, res.Error
}

// UpdatePaymentStatusByIntentID moves payment_status for the order holding
// the intent. The write is a plain overwrite: applying the same event twice
// lands on the same state.
func (r *Repository) UpdatePaymentStatusByIntentID(ctx context.Context, intentID string, status enums.PaymentStatus, failureReason *string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("stripe_payment_intent_id = ?", intentID).
		Updates(map[string]any{
			"payment_status": status,
			"failure_reason": failureReason,
		})
	return res.RowsAffected, res.Error
}
