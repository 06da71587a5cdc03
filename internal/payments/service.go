package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/ovenline/storefront-backend/pkg/enums"
	pkgerrors "github.com/ovenline/storefront-backend/pkg/errors"
	"github.com/ovenline/storefront-backend/pkg/logger"
	"github.com/ovenline/storefront-backend/pkg/metrics"
	"github.com/ovenline/storefront-backend/pkg/money"
)

// intentAttacher links a created intent to a customer's order.
type intentAttacher interface {
	AttachIntent(ctx context.Context, userID, orderID uuid.UUID, intentID string) error
}

// CreateIntentInput is the /createPaymentIntent request body. Amount is in
// minor units of the currency; the order id is optional so a client can
// open the payment sheet before the order row exists.
type CreateIntentInput struct {
	AmountMinor int64      `json:"amount" validate:"required"`
	Currency    string     `json:"currency"`
	OrderID     *uuid.UUID `json:"order_id"`
}

// IntentDTO is what the client needs to confirm a payment. The client
// secret is returned exactly once and never logged or stored.
type IntentDTO struct {
	IntentID     string `json:"payment_intent_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	Status       string `json:"status"`
	AmountMinor  int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Service creates and verifies Stripe payment intents. It never moves
// order payment status; that belongs to the webhook reconciler alone.
type Service struct {
	gateway StripeIntentClient
	orders  intentAttacher
	metrics *metrics.PaymentMetrics
	logger  *logger.Logger
}

// NewService wires the payment service.
func NewService(gateway StripeIntentClient, orders intentAttacher, m *metrics.PaymentMetrics, logg *logger.Logger) (*Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("stripe intent client is required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order attacher is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{gateway: gateway, orders: orders, metrics: m, logger: logg}, nil
}

// CreateIntent validates the request and opens a payment intent at the
// gateway. Validation is strictly ordered: a non-positive amount wins over
// a too-small amount, which wins over an unknown currency, and the gateway
// is never called for a request that fails any of the three.
func (s *Service) CreateIntent(ctx context.Context, userID uuid.UUID, input CreateIntentInput) (*IntentDTO, error) {
	if strings.TrimSpace(input.Currency) == "" {
		input.Currency = enums.CurrencyGBP.String()
	}
	if input.AmountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a positive integer in minor units")
	}
	if input.AmountMinor < money.MinimumChargeMinor {
		label := money.MinimumChargeLabel(labelCurrency(input.Currency))
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("amount must be at least %s", label))
	}
	currency, err := enums.ParseCurrency(input.Currency)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %q", input.Currency))
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(input.AmountMinor),
		Currency: stripe.String(strings.ToLower(currency.String())),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		SetupFutureUsage: stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession)),
	}
	if input.OrderID != nil {
		params.AddMetadata("order_id", input.OrderID.String())
	}

	intent, err := s.gateway.Create(ctx, params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	ictx := s.logger.WithIntentID(ctx, intent.ID)
	if input.OrderID != nil {
		if err := s.orders.AttachIntent(ctx, userID, *input.OrderID, intent.ID); err != nil {
			// The intent exists at the gateway either way; surface the
			// attachment failure instead of pretending it linked.
			s.logger.Error(ictx, "intent created but not attached to order", err)
			return nil, err
		}
	}

	s.metrics.IncIntentCreated(currency.String())
	s.logger.Info(ictx, "payment intent created")

	return &IntentDTO{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
		AmountMinor:  intent.Amount,
		Currency:     strings.ToUpper(string(intent.Currency)),
	}, nil
}

// VerifyIntent reads the gateway's current view of an intent. It is a
// read-only poll for clients; the durable order state still comes from the
// webhook.
func (s *Service) VerifyIntent(ctx context.Context, intentID string) (*IntentDTO, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}

	intent, err := s.gateway.Get(ctx, intentID, nil)
	if err != nil {
		return nil, mapStripeError(err)
	}

	return &IntentDTO{
		IntentID:    intent.ID,
		Status:      string(intent.Status),
		AmountMinor: intent.Amount,
		Currency:    strings.ToUpper(string(intent.Currency)),
	}, nil
}

// labelCurrency picks the currency used to spell out the minimum charge in
// a too-small-amount message. An unparseable currency falls back to GBP;
// the request will still be rejected, just with the amount message first.
func labelCurrency(raw string) enums.Currency {
	currency, err := enums.ParseCurrency(raw)
	if err != nil {
		return enums.CurrencyGBP
	}
	return currency
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe request failed")
	}
	switch {
	case stripeErr.Type == stripe.ErrorTypeCard:
		return pkgerrors.Wrap(pkgerrors.CodeCardDeclined, err, "card was declined")
	case stripeErr.Code == stripe.ErrorCodeResourceMissing:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "payment intent not found")
	case stripeErr.Type == stripe.ErrorTypeInvalidRequest:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "stripe rejected the request")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe request failed")
	}
}
