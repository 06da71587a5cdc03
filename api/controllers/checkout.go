package controllers

import (
	"net/http"

	"github.com/ovenline/storefront-backend/api/middleware"
	"github.com/ovenline/storefront-backend/api/responses"
	"github.com/ovenline/storefront-backend/api/validators"
	"github.com/ovenline/storefront-backend/internal/checkout"
	"github.com/ovenline/storefront-backend/pkg/logger"
)

// PlaceOrder converts the caller's cart into a durable order.
func PlaceOrder(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input checkout.PlaceOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID := middleware.UserUUIDFromContext(r.Context())
		order, err := svc.PlaceOrder(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
