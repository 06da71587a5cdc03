package cart

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ovenline/storefront-backend/api/responses"
	"github.com/ovenline/storefront-backend/api/validators"
	internalcart "github.com/ovenline/storefront-backend/internal/cart"
	pkgerrors "github.com/ovenline/storefront-backend/pkg/errors"
	"github.com/ovenline/storefront-backend/pkg/logger"
)

// CartTokenHeader carries the session cart token. The server mints one on
// the first add and echoes it back on every cart response.
const CartTokenHeader = "X-Cart-Token"

type updateLineRequest struct {
	Quantity int `json:"quantity"`
}

func cartToken(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(CartTokenHeader))
}

func writeQuote(w http.ResponseWriter, quote *internalcart.Quote) {
	w.Header().Set(CartTokenHeader, quote.Token)
	responses.WriteSuccess(w, quote)
}

// Get returns the priced cart for the caller's token.
func Get(svc *internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quote, err := svc.Get(r.Context(), cartToken(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeQuote(w, quote)
	}
}

// AddItem adds a product line to the cart.
func AddItem(svc *internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalcart.AddItemInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.AddItem(r.Context(), cartToken(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeQuote(w, quote)
	}
}

// UpdateLine sets a line's quantity; zero removes the line.
func UpdateLine(svc *internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineKey := strings.TrimSpace(chi.URLParam(r, "lineKey"))
		if lineKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line key is required"))
			return
		}
		var input updateLineRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.SetQuantity(r.Context(), cartToken(r), lineKey, input.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeQuote(w, quote)
	}
}

// RemoveLine deletes a line from the cart.
func RemoveLine(svc *internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineKey := strings.TrimSpace(chi.URLParam(r, "lineKey"))
		if lineKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line key is required"))
			return
		}
		quote, err := svc.RemoveLine(r.Context(), cartToken(r), lineKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeQuote(w, quote)
	}
}

// Clear empties the cart.
func Clear(svc *internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context(), cartToken(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}
