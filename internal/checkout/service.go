package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ovenline/storefront-backend/internal/cart"
	"github.com/ovenline/storefront-backend/internal/orders"
	"github.com/ovenline/storefront-backend/pkg/db/models"
	"github.com/ovenline/storefront-backend/pkg/enums"
	pkgerrors "github.com/ovenline/storefront-backend/pkg/errors"
	"github.com/ovenline/storefront-backend/pkg/logger"
	"github.com/ovenline/storefront-backend/pkg/money"
)

// cartReader is the slice of the cart service checkout depends on.
type cartReader interface {
	Snapshot(ctx context.Context, token string) (*cart.Cart, error)
	Branch(ctx context.Context, c *cart.Cart) (*models.Branch, error)
	Clear(ctx context.Context, token string) error
}

// txRunner runs a function inside a database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PlaceOrderInput is the checkout request body.
type PlaceOrderInput struct {
	CartToken       string              `json:"cart_token" validate:"required"`
	DeliveryAddress string              `json:"delivery_address" validate:"required,min=5"`
	Phone           string              `json:"phone" validate:"required,min=7"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method" validate:"required"`
}

// Service turns a priced cart into a durable order. Every precondition is
// re-checked here: the handler's validation is a convenience, not the
// authority.
type Service struct {
	carts  cartReader
	repo   *orders.Repository
	tx     txRunner
	logger *logger.Logger
}

// NewService wires the checkout service.
func NewService(carts cartReader, repo *orders.Repository, tx txRunner, logg *logger.Logger) (*Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart reader is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{carts: carts, repo: repo, tx: tx, logger: logg}, nil
}

// PlaceOrder snapshots the cart into an order. The cart is cleared only
// after the transaction commits, so a failed insert leaves the cart intact
// for a retry.
func (s *Service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*orders.OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to place an order")
	}
	address := strings.TrimSpace(input.DeliveryAddress)
	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone number is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	snapshot, err := s.carts.Snapshot(ctx, input.CartToken)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	branch, err := s.carts.Branch(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	if !branch.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch is not taking orders")
	}

	order := buildOrder(userID, snapshot, branch, address, phone, input.PaymentMethod)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, order)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	// Best effort: the order exists either way, and an uncleaned cart only
	// risks a duplicate the customer can see and cancel.
	if err := s.carts.Clear(ctx, input.CartToken); err != nil {
		wctx := s.logger.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"error":    err.Error(),
		})
		s.logger.Warn(wctx, "cart not cleared after checkout")
	}

	dto := orders.ToDTO(order)
	return &dto, nil
}

// buildOrder freezes the cart into order rows. Prices and totals are
// recomputed from the captured line prices so the stored order is
// internally consistent regardless of what any client displayed.
func buildOrder(userID uuid.UUID, snapshot *cart.Cart, branch *models.Branch, address, phone string, method enums.PaymentMethod) *models.Order {
	lines := make([]models.OrderLineItem, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		var variantKey *string
		if line.VariantKey != "" {
			v := line.VariantKey
			variantKey = &v
		}
		lines = append(lines, models.OrderLineItem{
			ProductID:      line.ProductID,
			Name:           line.Name,
			VariantKey:     variantKey,
			UnitPriceMinor: line.UnitPriceMinor,
			Quantity:       line.Quantity,
			Addons:         line.Addons,
			LineTotalMinor: line.TotalMinor(),
		})
	}

	subtotal := snapshot.SubtotalMinor()
	gst := money.GSTMinor(subtotal, branch.GSTRateBasis)

	return &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		BranchID:        branch.ID,
		DeliveryAddress: address,
		Phone:           phone,
		Currency:        money.CurrencyForCountry(branch.CountryCode),
		SubtotalMinor:   subtotal,
		GSTMinor:        gst,
		TotalMinor:      subtotal + gst,
		PaymentMethod:   method,
		PaymentStatus:   enums.PaymentStatusPending,
		Lines:           lines,
	}
}
