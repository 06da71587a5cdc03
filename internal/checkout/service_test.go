package checkout

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ovenline/storefront-backend/internal/cart"
	"github.com/ovenline/storefront-backend/internal/orders"
	"github.com/ovenline/storefront-backend/pkg/db/models"
	"github.com/ovenline/storefront-backend/pkg/enums"
	pkgerrors "github.com/ovenline/storefront-backend/pkg/errors"
	"github.com/ovenline/storefront-backend/pkg/logger"
)

type stubCarts struct {
	snapshot *cart.Cart
	branch   *models.Branch
	cleared  []string
	clearErr error
}

func (s *stubCarts) Snapshot(_ context.Context, token string) (*cart.Cart, error) {
	if s.snapshot == nil {
		return &cart.Cart{Token: token}, nil
	}
	return s.snapshot, nil
}

func (s *stubCarts) Branch(_ context.Context, _ *cart.Cart) (*models.Branch, error) {
	if s.branch == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart has no branch")
	}
	return s.branch, nil
}

func (s *stubCarts) Clear(_ context.Context, token string) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = append(s.cleared, token)
	return nil
}

type gormTxRunner struct{ db *gorm.DB }

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type failingTxRunner struct{}

func (failingTxRunner) WithTx(context.Context, func(tx *gorm.DB) error) error {
	return fmt.Errorf("connection reset")
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderLineItem{}))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "checkout-test", Output: io.Discard})
}

func fixtureCart() (*cart.Cart, *models.Branch) {
	branch := &models.Branch{
		ID:           uuid.New(),
		Name:         "Mall Road",
		CountryCode:  "PK",
		GSTRateBasis: 500,
		IsActive:     true,
	}
	snapshot := &cart.Cart{
		Token:    "tok_cart",
		BranchID: branch.ID,
		Lines: []cart.Line{
			{
				LineKey:        "line-1",
				ProductID:      uuid.New(),
				Name:           "Chocolate Fudge Cake",
				UnitPriceMinor: 1500,
				Quantity:       2,
			},
		},
	}
	return snapshot, branch
}

func TestPlaceOrderPersistsSnapshotAndClearsCart(t *testing.T) {
	db := openTestDB(t)
	snapshot, branch := fixtureCart()
	carts := &stubCarts{snapshot: snapshot, branch: branch}
	repo := orders.NewRepository(db)

	svc, err := NewService(carts, repo, gormTxRunner{db}, testLogger())
	require.NoError(t, err)

	userID := uuid.New()
	dto, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		CartToken:       "tok_cart",
		DeliveryAddress: "14 Mall Road, Lahore",
		Phone:           "+92 300 0000000",
		PaymentMethod:   enums.PaymentMethodCard,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.CurrencyPKR, dto.Currency)
	assert.Equal(t, int64(3000), dto.SubtotalMinor)
	assert.Equal(t, int64(150), dto.GSTMinor)
	assert.Equal(t, int64(3150), dto.TotalMinor)
	assert.Equal(t, enums.PaymentStatusPending, dto.PaymentStatus)
	require.Len(t, dto.Lines, 1)
	assert.Equal(t, int64(3000), dto.Lines[0].LineTotalMinor)
	assert.Equal(t, []string{"tok_cart"}, carts.cleared)

	stored, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, dto.ID, stored[0].ID)
	require.Len(t, stored[0].Lines, 1)
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	db := openTestDB(t)
	carts := &stubCarts{}
	svc, err := NewService(carts, orders.NewRepository(db), gormTxRunner{db}, testLogger())
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{
		CartToken:       "tok_empty",
		DeliveryAddress: "14 Mall Road, Lahore",
		Phone:           "+92 300 0000000",
		PaymentMethod:   enums.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestPlaceOrderRequiresAddressAndPhone(t *testing.T) {
	db := openTestDB(t)
	snapshot, branch := fixtureCart()
	carts := &stubCarts{snapshot: snapshot, branch: branch}
	svc, err := NewService(carts, orders.NewRepository(db), gormTxRunner{db}, testLogger())
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{
		CartToken:     "tok_cart",
		Phone:         "+92 300 0000000",
		PaymentMethod: enums.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{
		CartToken:       "tok_cart",
		DeliveryAddress: "14 Mall Road, Lahore",
		PaymentMethod:   enums.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestPlaceOrderRequiresAuthenticatedUser(t *testing.T) {
	db := openTestDB(t)
	snapshot, branch := fixtureCart()
	carts := &stubCarts{snapshot: snapshot, branch: branch}
	svc, err := NewService(carts, orders.NewRepository(db), gormTxRunner{db}, testLogger())
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), uuid.Nil, PlaceOrderInput{
		CartToken:       "tok_cart",
		DeliveryAddress: "14 Mall Road, Lahore",
		Phone:           "+92 300 0000000",
		PaymentMethod:   enums.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestPlaceOrderKeepsCartWhenPersistFails(t *testing.T) {
	db := openTestDB(t)
	snapshot, branch := fixtureCart()
	carts := &stubCarts{snapshot: snapshot, branch: branch}
	svc, err := NewService(carts, orders.NewRepository(db), failingTxRunner{}, testLogger())
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{
		CartToken:       "tok_cart",
		DeliveryAddress: "14 Mall Road, Lahore",
		Phone:           "+92 300 0000000",
		PaymentMethod:   enums.PaymentMethodCard,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	assert.Empty(t, carts.cleared, "cart must survive a failed checkout")
}
