package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ovenline/storefront-backend/pkg/db/models"
	"github.com/ovenline/storefront-backend/pkg/enums"
	pkgerrors "github.com/ovenline/storefront-backend/pkg/errors"
	"github.com/ovenline/storefront-backend/pkg/types"
)

type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}}
}

func (m *memoryKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (m *memoryKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryKV) Expire(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

type plainKeyer struct{}

func (plainKeyer) CartKey(token string) string { return "cart:" + token }

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
	branches map[uuid.UUID]*models.Branch
	owner    map[uuid.UUID]uuid.UUID
}

func (s *stubCatalog) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (s *stubCatalog) FindBranchByID(_ context.Context, id uuid.UUID) (*models.Branch, error) {
	branch, ok := s.branches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return branch, nil
}

func (s *stubCatalog) FindBranchForProduct(_ context.Context, productID uuid.UUID) (*models.Branch, error) {
	branchID, ok := s.owner[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s.branches[branchID], nil
}

func newCartFixture(t *testing.T) (*Service, *stubCatalog, *models.Branch, *models.Product) {
	t.Helper()

	branch := &models.Branch{
		ID:           uuid.New(),
		Name:         "Mall Road",
		Slug:         "mall-road",
		CountryCode:  "GB",
		GSTRateBasis: 500,
	}
	product := &models.Product{
		ID:             uuid.New(),
		Name:           "Chocolate Fudge Cake",
		Slug:           "chocolate-fudge-cake",
		BasePriceMinor: 1500,
		IsActive:       true,
		Addons: types.ProductAddons{
			{Key: "candles", Label: "Candles", PriceMinor: 200},
		},
	}
	catalog := &stubCatalog{
		products: map[uuid.UUID]*models.Product{product.ID: product},
		branches: map[uuid.UUID]*models.Branch{branch.ID: branch},
		owner:    map[uuid.UUID]uuid.UUID{product.ID: branch.ID},
	}
	store := &Store{kv: newMemoryKV(), keyer: plainKeyer{}, ttl: time.Hour}
	svc, err := NewService(store, catalog)
	require.NoError(t, err)
	return svc, catalog, branch, product
}

func TestAddItemPricesCartWithGST(t *testing.T) {
	svc, _, branch, product := newCartFixture(t)
	ctx := context.Background()

	quote, err := svc.AddItem(ctx, "", AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	assert.NotEmpty(t, quote.Token)
	require.NotNil(t, quote.BranchID)
	assert.Equal(t, branch.ID, *quote.BranchID)
	assert.Equal(t, enums.CurrencyGBP, quote.Currency)
	assert.Equal(t, 2, quote.ItemCount)
	assert.Equal(t, int64(3000), quote.SubtotalMinor)
	assert.Equal(t, int64(150), quote.GSTMinor)
	assert.Equal(t, int64(3150), quote.TotalMinor)
}

func TestAddItemMergesSameProductAndVariant(t *testing.T) {
	svc, _, _, product := newCartFixture(t)
	ctx := context.Background()

	first, err := svc.AddItem(ctx, "", AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	second, err := svc.AddItem(ctx, first.Token, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, second.Lines, 1)
	assert.Equal(t, 3, second.Lines[0].Quantity)
}

func TestAddItemKeepsVariantsOnSeparateLines(t *testing.T) {
	svc, catalog, branch, product := newCartFixture(t)
	ctx := context.Background()

	variantProduct := &models.Product{
		ID:             uuid.New(),
		Name:           "Family Pizza",
		Slug:           "family-pizza",
		BasePriceMinor: 1000,
		IsActive:       true,
		Variants: types.ProductVariants{
			{Key: "small", Label: "Small", PriceMinor: 1000},
			{Key: "large", Label: "Large", PriceMinor: 1800},
		},
	}
	catalog.products[variantProduct.ID] = variantProduct
	catalog.owner[variantProduct.ID] = branch.ID

	quote, err := svc.AddItem(ctx, "", AddItemInput{ProductID: variantProduct.ID, VariantKey: "small", Quantity: 1})
	require.NoError(t, err)
	quote, err = svc.AddItem(ctx, quote.Token, AddItemInput{ProductID: variantProduct.ID, VariantKey: "large", Quantity: 1})
	require.NoError(t, err)
	quote, err = svc.AddItem(ctx, quote.Token, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, quote.Lines, 3)
	assert.Equal(t, int64(1000+1800+1500), quote.SubtotalMinor)
}

func TestAddItemRejectsUnknownVariant(t *testing.T) {
	svc, _, _, product := newCartFixture(t)

	_, err := svc.AddItem(context.Background(), "", AddItemInput{ProductID: product.ID, VariantKey: "nonexistent", Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestAddItemRejectsSecondBranch(t *testing.T) {
	svc, catalog, _, product := newCartFixture(t)
	ctx := context.Background()

	otherBranch := &models.Branch{ID: uuid.New(), Name: "Canal View", Slug: "canal-view", CountryCode: "PK", GSTRateBasis: 500}
	otherProduct := &models.Product{ID: uuid.New(), Name: "Seekh Kebab Roll", Slug: "seekh-kebab-roll", BasePriceMinor: 450, IsActive: true}
	catalog.branches[otherBranch.ID] = otherBranch
	catalog.products[otherProduct.ID] = otherProduct
	catalog.owner[otherProduct.ID] = otherBranch.ID

	quote, err := svc.AddItem(ctx, "", AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, quote.Token, AddItemInput{ProductID: otherProduct.ID, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestAddItemPricesAddonsFromCatalog(t *testing.T) {
	svc, _, _, product := newCartFixture(t)
	ctx := context.Background()

	// The client-supplied price is ignored in favour of the catalog's.
	quote, err := svc.AddItem(ctx, "", AddItemInput{
		ProductID: product.ID,
		Quantity:  1,
		Addons:    types.LineAddons{"candles": {PriceMinor: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	require.Len(t, quote.Lines, 1)
	assert.Equal(t, int64(200), quote.Lines[0].Addons["candles"].PriceMinor)
	assert.Equal(t, int64(1500+400), quote.SubtotalMinor)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	svc, _, _, product := newCartFixture(t)
	ctx := context.Background()

	quote, err := svc.AddItem(ctx, "", AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	lineKey := quote.Lines[0].LineKey

	quote, err = svc.SetQuantity(ctx, quote.Token, lineKey, 0)
	require.NoError(t, err)

	assert.Empty(t, quote.Lines)
	assert.Zero(t, quote.SubtotalMinor)
	assert.Zero(t, quote.TotalMinor)
	assert.Nil(t, quote.BranchID)
}

func TestSetQuantityUpdatesTotals(t *testing.T) {
	svc, _, _, product := newCartFixture(t)
	ctx := context.Background()

	quote, err := svc.AddItem(ctx, "", AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	quote, err = svc.SetQuantity(ctx, quote.Token, quote.Lines[0].LineKey, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(4500), quote.SubtotalMinor)
	assert.Equal(t, int64(225), quote.GSTMinor)
	assert.Equal(t, int64(4725), quote.TotalMinor)
}

func TestSetQuantityUnknownLine(t *testing.T) {
	svc, _, _, product := newCartFixture(t)
	ctx := context.Background()

	quote, err := svc.AddItem(ctx, "", AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.SetQuantity(ctx, quote.Token, "no-such-line", 2)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestGetUnknownTokenReturnsEmptyQuote(t *testing.T) {
	svc, _, _, _ := newCartFixture(t)

	quote, err := svc.Get(context.Background(), "missing-token")
	require.NoError(t, err)

	assert.Equal(t, "missing-token", quote.Token)
	assert.Empty(t, quote.Lines)
	assert.Zero(t, quote.TotalMinor)
}

func TestClearEmptiesCart(t *testing.T) {
	svc, _, _, product := newCartFixture(t)
	ctx := context.Background()

	quote, err := svc.AddItem(ctx, "", AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, quote.Token))

	quote, err = svc.Get(ctx, quote.Token)
	require.NoError(t, err)
	assert.Empty(t, quote.Lines)
}
