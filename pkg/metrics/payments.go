package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records gateway interaction outcomes.
type PaymentMetrics struct {
	intentsCreated *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	intents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_intents_created_total",
		Help: "Payment intents created, by currency.",
	}, []string{"currency"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stripe_webhook_events_total",
		Help: "Stripe webhook events received, by type and outcome.",
	}, []string{"type", "outcome"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_settlement_fallbacks_total",
		Help: "Webhook events settled without a matching order.",
	}, []string{"status"})
	reg.MustRegister(intents, events, fallbacks)
	return &PaymentMetrics{
		intentsCreated: intents,
		webhookEvents:  events,
		fallbacks:      fallbacks,
	}
}

// IncIntentCreated counts a successfully created payment intent.
func (p *PaymentMetrics) IncIntentCreated(currency string) {
	if p == nil || p.intentsCreated == nil {
		return
	}
	p.intentsCreated.WithLabelValues(normalizeLabel(currency)).Inc()
}

// IncWebhookEvent counts a processed webhook event.
func (p *PaymentMetrics) IncWebhookEvent(eventType, outcome string) {
	if p == nil || p.webhookEvents == nil {
		return
	}
	p.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// IncSettlementFallback counts a webhook event that created a settlement
// record because no order carried its intent id.
func (p *PaymentMetrics) IncSettlementFallback(status string) {
	if p == nil || p.fallbacks == nil {
		return
	}
	p.fallbacks.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
