package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ovenline/storefront-backend/api/middleware"
	"github.com/ovenline/storefront-backend/api/responses"
	"github.com/ovenline/storefront-backend/api/validators"
	"github.com/ovenline/storefront-backend/internal/payments"
	"github.com/ovenline/storefront-backend/pkg/logger"
)

// CreatePaymentIntent opens a payment intent for the requested amount. The
// response carries the client secret exactly once; it is never logged or
// persisted server-side.
func CreatePaymentIntent(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input payments.CreateIntentInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID := middleware.UserUUIDFromContext(r.Context())
		intent, err := svc.CreateIntent(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, intent)
	}
}

// VerifyPaymentIntent reports the gateway's current view of an intent. The
// id arrives as a path param, query param, or legacy POST body.
func VerifyPaymentIntent(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID := strings.TrimSpace(chi.URLParam(r, "intentId"))
		if intentID == "" {
			intentID = strings.TrimSpace(r.URL.Query().Get("payment_intent_id"))
		}
		if intentID == "" && r.Method == http.MethodPost {
			var body struct {
				IntentID string `json:"intentId"`
			}
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			intentID = strings.TrimSpace(body.IntentID)
		}
		intent, err := svc.VerifyIntent(r.Context(), intentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, intent)
	}
}
