package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ovenline/storefront-backend/pkg/db/models"
	"github.com/ovenline/storefront-backend/pkg/enums"
	pkgerrors "github.com/ovenline/storefront-backend/pkg/errors"
	"github.com/ovenline/storefront-backend/pkg/money"
	"github.com/ovenline/storefront-backend/pkg/types"
)

// MaxLineQuantity caps a single line so a fat-fingered quantity cannot
// produce an absurd order.
const MaxLineQuantity = 50

// productReader is the slice of the catalog the cart needs.
type productReader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBranchForProduct(ctx context.Context, productID uuid.UUID) (*models.Branch, error)
	FindBranchByID(ctx context.Context, id uuid.UUID) (*models.Branch, error)
}

// AddItemInput describes one add-to-cart request.
type AddItemInput struct {
	ProductID  uuid.UUID        `json:"product_id" validate:"required"`
	VariantKey string           `json:"variant_key"`
	Quantity   int              `json:"quantity" validate:"required,gt=0"`
	Addons     types.LineAddons `json:"addons"`
}

// Quote is the priced view of a cart: subtotal, GST at the branch rate, and
// the resulting total, all in minor units of the branch currency.
type Quote struct {
	Token         string         `json:"token"`
	BranchID      *uuid.UUID     `json:"branch_id,omitempty"`
	Currency      enums.Currency `json:"currency"`
	Lines         []Line         `json:"lines"`
	ItemCount     int            `json:"item_count"`
	SubtotalMinor int64          `json:"subtotal_minor"`
	GSTMinor      int64          `json:"gst_minor"`
	TotalMinor    int64          `json:"total_minor"`
}

// Service owns cart mutation and pricing. All operations return the fresh
// quote so clients never have to price locally.
type Service struct {
	store    *Store
	products productReader
}

// NewService builds the cart service.
func NewService(store *Store, products productReader) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader is required")
	}
	return &Service{store: store, products: products}, nil
}

// Get returns the priced cart for the token. An unknown or empty token
// yields an empty quote with a freshly minted token.
func (s *Service) Get(ctx context.Context, token string) (*Quote, error) {
	cart, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.quote(ctx, cart)
}

// AddItem adds a product to the cart, merging into an existing line when the
// product and variant match. The first add pins the cart to the product's
// branch; items from other branches are rejected until the cart is cleared.
func (s *Service) AddItem(ctx context.Context, token string, input AddItemInput) (*Quote, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.products.FindProductByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	unitPrice, ok := product.UnitPriceMinor(input.VariantKey)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown variant for product")
	}
	addons, err := resolveAddons(product.Addons, input.Addons)
	if err != nil {
		return nil, err
	}

	branch, err := s.products.FindBranchForProduct(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product branch")
	}

	cart, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart.BranchID == uuid.Nil {
		cart.BranchID = branch.ID
	} else if cart.BranchID != branch.ID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart holds items from another branch")
	}

	lineKey := LineKeyFor(product.ID, input.VariantKey)
	if idx := cart.FindLine(lineKey); idx >= 0 {
		cart.Lines[idx].Quantity = clampQuantity(cart.Lines[idx].Quantity + input.Quantity)
		// Addons on a merged add replace the line's addons; the captured
		// unit price stays as it was when the line was created.
		if len(addons) > 0 {
			cart.Lines[idx].Addons = addons
		}
	} else {
		cart.Lines = append(cart.Lines, Line{
			LineKey:        lineKey,
			ProductID:      product.ID,
			Name:           product.Name,
			VariantKey:     input.VariantKey,
			UnitPriceMinor: unitPrice,
			Quantity:       clampQuantity(input.Quantity),
			Addons:         addons,
		})
	}

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return s.quoteWithBranch(cart, branch)
}

// SetQuantity sets a line's quantity. Zero or negative removes the line,
// so "set to 0" and "remove" are the same operation.
func (s *Service) SetQuantity(ctx context.Context, token, lineKey string, quantity int) (*Quote, error) {
	if lineKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line key is required")
	}
	cart, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	idx := cart.FindLine(lineKey)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	if quantity <= 0 {
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	} else {
		cart.Lines[idx].Quantity = clampQuantity(quantity)
	}
	if cart.IsEmpty() {
		cart.BranchID = uuid.Nil
	}
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return s.quote(ctx, cart)
}

// RemoveLine removes a line outright.
func (s *Service) RemoveLine(ctx context.Context, token, lineKey string) (*Quote, error) {
	return s.SetQuantity(ctx, token, lineKey, 0)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, token string) error {
	if err := s.store.Clear(ctx, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Snapshot returns the raw cart document. Checkout uses it to freeze line
// items without re-pricing.
func (s *Service) Snapshot(ctx context.Context, token string) (*Cart, error) {
	cart, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

// Branch resolves the branch the cart is pinned to.
func (s *Service) Branch(ctx context.Context, cart *Cart) (*models.Branch, error) {
	if cart == nil || cart.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart has no branch")
	}
	branch, err := s.products.FindBranchByID(ctx, cart.BranchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	return branch, nil
}

func (s *Service) quote(ctx context.Context, cart *Cart) (*Quote, error) {
	if cart.BranchID == uuid.Nil {
		return emptyQuote(cart), nil
	}
	branch, err := s.products.FindBranchByID(ctx, cart.BranchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Branch was retired under a live cart. Treat the cart as
			// unpriceable rather than guessing a rate.
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart branch no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	return s.quoteWithBranch(cart, branch)
}

func (s *Service) quoteWithBranch(cart *Cart, branch *models.Branch) (*Quote, error) {
	subtotal := cart.SubtotalMinor()
	gst := money.GSTMinor(subtotal, branch.GSTRateBasis)
	branchID := branch.ID
	return &Quote{
		Token:         cart.Token,
		BranchID:      &branchID,
		Currency:      money.CurrencyForCountry(branch.CountryCode),
		Lines:         cart.Lines,
		ItemCount:     cart.ItemCount(),
		SubtotalMinor: subtotal,
		GSTMinor:      gst,
		TotalMinor:    subtotal + gst,
	}, nil
}

func emptyQuote(cart *Cart) *Quote {
	return &Quote{
		Token:    cart.Token,
		Currency: enums.CurrencyGBP,
		Lines:    []Line{},
	}
}

func resolveAddons(available types.ProductAddons, requested types.LineAddons) (types.LineAddons, error) {
	if len(requested) == 0 {
		return nil, nil
	}
	resolved := make(types.LineAddons, len(requested))
	for key, addon := range requested {
		def, ok := available.Find(key)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown addon for product")
		}
		qty := addon.Quantity
		if qty <= 0 {
			qty = 1
		}
		// Price comes from the catalog, never from the client.
		resolved[key] = types.LineAddon{PriceMinor: def.PriceMinor, Quantity: qty}
	}
	return resolved, nil
}

func clampQuantity(q int) int {
	if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}
