package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ovenline/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ovenline/storefront-backend/pkg/errors"
	"github.com/ovenline/storefront-backend/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Branch{},
		&models.Category{},
		&models.Product{},
		&models.Deal{},
	))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedBranch(t *testing.T, db *gorm.DB, slug, country string, active bool) *models.Branch {
	t.Helper()
	branch := &models.Branch{
		ID:           uuid.New(),
		Name:         "Branch " + slug,
		Slug:         slug,
		City:         "Lahore",
		CountryCode:  country,
		GSTRateBasis: 500,
		Address:      "14 Mall Road",
		IsActive:     active,
	}
	require.NoError(t, db.Create(branch).Error)
	return branch
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestListBranchesDerivesCurrencyFromCountry(t *testing.T) {
	db := openTestDB(t)
	seedBranch(t, db, "lahore", "PK", true)
	seedBranch(t, db, "london", "GB", true)
	seedBranch(t, db, "closed", "GB", false)

	svc := newTestService(t, db)
	branches, err := svc.ListBranches(context.Background())
	require.NoError(t, err)
	require.Len(t, branches, 2)

	byCountry := map[string]BranchDTO{}
	for _, b := range branches {
		byCountry[b.Country] = b
	}
	assert.Equal(t, "PKR", byCountry["PK"].Currency)
	assert.Equal(t, "GBP", byCountry["GB"].Currency)
	assert.Equal(t, 0.05, byCountry["PK"].GSTRate)
}

func TestGetBranchUnknownSlug(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.GetBranch(context.Background(), "nowhere")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = svc.GetBranch(context.Background(), "")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestListCategoriesInDisplayOrder(t *testing.T) {
	db := openTestDB(t)
	branch := seedBranch(t, db, "lahore", "PK", true)

	for i, name := range []string{"Cakes", "Savouries", "Drinks"} {
		require.NoError(t, db.Create(&models.Category{
			ID:       uuid.New(),
			BranchID: branch.ID,
			Name:     name,
			Slug:     fmt.Sprintf("cat-%d", i),
			Position: 3 - i,
		}).Error)
	}

	svc := newTestService(t, db)
	categories, err := svc.ListCategories(context.Background(), "lahore")
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Drinks", categories[0].Name)
	assert.Equal(t, "Cakes", categories[2].Name)
}

func TestListProductsSkipsInactiveAndNormalizesImages(t *testing.T) {
	db := openTestDB(t)
	branch := seedBranch(t, db, "lahore", "PK", true)
	category := &models.Category{
		ID:       uuid.New(),
		BranchID: branch.ID,
		Name:     "Cakes",
		Slug:     "cakes",
	}
	require.NoError(t, db.Create(category).Error)

	relImage := "uploads/fudge.jpg"
	absImage := "https://cdn.example.com/brownie.jpg"
	require.NoError(t, db.Create(&models.Product{
		ID:             uuid.New(),
		CategoryID:     category.ID,
		Name:           "Chocolate Fudge Cake",
		Slug:           "chocolate-fudge-cake",
		ImageURL:       &relImage,
		BasePriceMinor: 1200,
		IsActive:       true,
		Variants: types.ProductVariants{
			{Key: "large", Label: "Large", PriceMinor: 1500},
		},
	}).Error)
	require.NoError(t, db.Create(&models.Product{
		ID:             uuid.New(),
		CategoryID:     category.ID,
		Name:           "Brownie",
		Slug:           "brownie",
		ImageURL:       &absImage,
		BasePriceMinor: 450,
		IsActive:       true,
	}).Error)
	require.NoError(t, db.Create(&models.Product{
		ID:             uuid.New(),
		CategoryID:     category.ID,
		Name:           "Retired Item",
		Slug:           "retired-item",
		BasePriceMinor: 100,
		IsActive:       false,
	}).Error)

	svc := newTestService(t, db)
	products, err := svc.ListProducts(context.Background(), category.ID)
	require.NoError(t, err)
	require.Len(t, products, 2)

	bySlug := map[string]ProductDTO{}
	for _, p := range products {
		bySlug[p.Slug] = p
	}
	assert.Equal(t, "/media/uploads/fudge.jpg", bySlug["chocolate-fudge-cake"].ImageURL)
	assert.Equal(t, absImage, bySlug["brownie"].ImageURL)
	assert.Equal(t, int64(1500), bySlug["chocolate-fudge-cake"].Variants[0].PriceMinor)
}

func TestGetProductBySlug(t *testing.T) {
	db := openTestDB(t)
	branch := seedBranch(t, db, "lahore", "PK", true)
	category := &models.Category{ID: uuid.New(), BranchID: branch.ID, Name: "Cakes", Slug: "cakes"}
	require.NoError(t, db.Create(category).Error)
	require.NoError(t, db.Create(&models.Product{
		ID:             uuid.New(),
		CategoryID:     category.ID,
		Name:           "Brownie",
		Slug:           "brownie",
		BasePriceMinor: 450,
		IsActive:       true,
	}).Error)

	svc := newTestService(t, db)
	product, err := svc.GetProduct(context.Background(), "brownie")
	require.NoError(t, err)
	assert.Equal(t, int64(450), product.BasePriceMinor)

	_, err = svc.GetProduct(context.Background(), "croissant")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestListDealsFiltersByWindow(t *testing.T) {
	db := openTestDB(t)
	branch := seedBranch(t, db, "lahore", "PK", true)

	now := time.Now()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	require.NoError(t, db.Create(&models.Deal{
		ID:         uuid.New(),
		BranchID:   branch.ID,
		Title:      "Tea Time Box",
		PriceMinor: 999,
		StartsAt:   &past,
		EndsAt:     &future,
		IsActive:   true,
	}).Error)
	require.NoError(t, db.Create(&models.Deal{
		ID:         uuid.New(),
		BranchID:   branch.ID,
		Title:      "Expired Offer",
		PriceMinor: 499,
		StartsAt:   &past,
		EndsAt:     &past,
		IsActive:   true,
	}).Error)
	require.NoError(t, db.Create(&models.Deal{
		ID:         uuid.New(),
		BranchID:   branch.ID,
		Title:      "Disabled Offer",
		PriceMinor: 299,
		IsActive:   false,
	}).Error)

	svc := newTestService(t, db)
	deals, err := svc.ListDeals(context.Background(), "lahore")
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "Tea Time Box", deals[0].Title)
}
