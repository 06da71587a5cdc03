package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	"github.com/ovenline/storefront-backend/pkg/db/models"
	"github.com/ovenline/storefront-backend/pkg/enums"
	pkgerrors "github.com/ovenline/storefront-backend/pkg/errors"
	"github.com/ovenline/storefront-backend/pkg/logger"
	"github.com/ovenline/storefront-backend/pkg/metrics"
)

type orderStatusWriter interface {
	UpdatePaymentStatusByIntentID(ctx context.Context, intentID string, status enums.PaymentStatus, failureReason *string) (int64, error)
}

type settlementRecorder interface {
	Record(ctx context.Context, settlement *models.Settlement) error
}

type ServiceParams struct {
	Orders      orderStatusWriter
	Settlements settlementRecorder
	Metrics     *metrics.PaymentMetrics
	Logger      *logger.Logger
}

// Service is the single writer of order payment status. Every transition
// is an overwrite keyed by intent id, so redelivered and out-of-order
// events converge on the gateway's latest word.
type Service struct {
	orders      orderStatusWriter
	settlements settlementRecorder
	metrics     *metrics.PaymentMetrics
	logger      *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order status writer required")
	}
	if params.Settlements == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "settlement recorder required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		orders:      params.Orders,
		settlements: params.Settlements,
		metrics:     params.Metrics,
		logger:      params.Logger,
	}, nil
}

// HandleEvent applies one authenticated Stripe event. Event types outside
// the payment-intent lifecycle are acknowledged and ignored.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		return s.applyOutcome(ctx, event, enums.PaymentStatusPaid)
	case stripe.EventTypePaymentIntentPaymentFailed:
		return s.applyOutcome(ctx, event, enums.PaymentStatusFailed)
	default:
		s.metrics.IncWebhookEvent(string(event.Type), "ignored")
		return nil
	}
}

func (s *Service) applyOutcome(ctx context.Context, event *stripe.Event, status enums.PaymentStatus) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		s.metrics.IncWebhookEvent(string(event.Type), "error")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	if intent.ID == "" {
		s.metrics.IncWebhookEvent(string(event.Type), "error")
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing from event")
	}

	ictx := s.logger.WithIntentID(ctx, intent.ID)
	failureReason := extractFailureReason(&intent, status)

	affected, err := s.orders.UpdatePaymentStatusByIntentID(ctx, intent.ID, status, failureReason)
	if err != nil {
		s.metrics.IncWebhookEvent(string(event.Type), "error")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order payment status")
	}
	if affected > 0 {
		s.metrics.IncWebhookEvent(string(event.Type), "applied")
		s.logger.Info(ictx, "order payment status updated from webhook")
		return nil
	}

	// No order carries this intent: keep the outcome anyway. The unique
	// intent id means redelivery cannot create a second row.
	if err := s.settlements.Record(ctx, &models.Settlement{
		StripePaymentIntentID: intent.ID,
		AmountMinor:           intent.Amount,
		Currency:              currencyFromIntent(&intent),
		Status:                status,
		FailureReason:         failureReason,
	}); err != nil {
		s.metrics.IncWebhookEvent(string(event.Type), "error")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record settlement fallback")
	}
	s.metrics.IncWebhookEvent(string(event.Type), "fallback")
	s.metrics.IncSettlementFallback(status.String())
	s.logger.Warn(ictx, "payment outcome recorded without a matching order")
	return nil
}

func extractFailureReason(intent *stripe.PaymentIntent, status enums.PaymentStatus) *string {
	if status != enums.PaymentStatusFailed {
		return nil
	}
	if intent.LastPaymentError != nil {
		if msg := intent.LastPaymentError.Msg; msg != "" {
			return &msg
		}
		if code := string(intent.LastPaymentError.Code); code != "" {
			return &code
		}
	}
	reason := "payment failed"
	return &reason
}

func currencyFromIntent(intent *stripe.PaymentIntent) enums.Currency {
	currency, err := enums.ParseCurrency(string(intent.Currency))
	if err != nil {
		return enums.CurrencyGBP
	}
	return currency
}
