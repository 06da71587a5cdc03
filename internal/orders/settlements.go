package orders

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ovenline/storefront-backend/pkg/db/models"
)

// SettlementRepository stores gateway outcomes that have no matching order.
type SettlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

// Record inserts a settlement, ignoring the write when one already exists
// for the intent. Webhook redelivery therefore cannot duplicate rows.
func (r *SettlementRepository) Record(ctx context.Context, settlement *models.Settlement) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_payment_intent_id"}},
			DoNothing: true,
		}).
		Create(settlement).Error
}

// FindByIntentID loads the settlement recorded for an intent, if any.
func (r *SettlementRepository) FindByIntentID(ctx context.Context, intentID string) (*models.Settlement, error) {
	var settlement models.Settlement
	err := r.db.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", intentID).
		First(&settlement).Error
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}
