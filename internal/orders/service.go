package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ovenline/storefront-backend/pkg/db/models"
	"github.com/ovenline/storefront-backend/pkg/enums"
	pkgerrors "github.com/ovenline/storefront-backend/pkg/errors"
	"github.com/ovenline/storefront-backend/pkg/types"
)

// LineDTO is the public shape of an order line snapshot.
type LineDTO struct {
	ProductID      uuid.UUID        `json:"product_id"`
	Name           string           `json:"name"`
	VariantKey     *string          `json:"variant_key,omitempty"`
	UnitPriceMinor int64            `json:"unit_price_minor"`
	Quantity       int              `json:"quantity"`
	Addons         types.LineAddons `json:"addons,omitempty"`
	LineTotalMinor int64            `json:"line_total_minor"`
}

// OrderDTO is the public shape of an order.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	BranchID        uuid.UUID           `json:"branch_id"`
	DeliveryAddress string              `json:"delivery_address"`
	Phone           string              `json:"phone"`
	Currency        enums.Currency      `json:"currency"`
	SubtotalMinor   int64               `json:"subtotal_minor"`
	GSTMinor        int64               `json:"gst_minor"`
	TotalMinor      int64               `json:"total_minor"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	FailureReason   *string             `json:"failure_reason,omitempty"`
	Lines           []LineDTO           `json:"lines"`
	CreatedAt       time.Time           `json:"created_at"`
}

// Service exposes a customer's order history. All reads are scoped to the
// requesting user; there is no cross-customer access.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	return &Service{repo: repo}, nil
}

// ListForUser returns the user's order history, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	dtos := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, ToDTO(&orders[i]))
	}
	return dtos, nil
}

// GetForUser returns one order, refusing to serve another customer's order.
func (s *Service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		// Indistinguishable from a missing order on purpose.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := ToDTO(order)
	return &dto, nil
}

// AttachIntent links a payment intent to the user's order.
func (s *Service) AttachIntent(ctx context.Context, userID, orderID uuid.UUID, intentID string) error {
	affected, err := s.repo.AttachIntentID(ctx, orderID, userID, intentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach payment intent")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found or already has a payment intent")
	}
	return nil
}

// ToDTO converts a stored order to its public shape.
func ToDTO(order *models.Order) OrderDTO {
	lines := make([]LineDTO, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, LineDTO{
			ProductID:      line.ProductID,
			Name:           line.Name,
			VariantKey:     line.VariantKey,
			UnitPriceMinor: line.UnitPriceMinor,
			Quantity:       line.Quantity,
			Addons:         line.Addons,
			LineTotalMinor: line.LineTotalMinor,
		})
	}
	return OrderDTO{
		ID:              order.ID,
		BranchID:        order.BranchID,
		DeliveryAddress: order.DeliveryAddress,
		Phone:           order.Phone,
		Currency:        order.Currency,
		SubtotalMinor:   order.SubtotalMinor,
		GSTMinor:        order.GSTMinor,
		TotalMinor:      order.TotalMinor,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		FailureReason:   order.FailureReason,
		Lines:           lines,
		CreatedAt:       order.CreatedAt,
	}
}
