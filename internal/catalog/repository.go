package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ovenline/storefront-backend/pkg/db/models"
)

// Repository reads the storefront catalog. The catalog surface is
// read-only; writes happen through migrations and back-office tooling.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository on the shared connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListBranches returns active branches ordered by name.
func (r *Repository) ListBranches(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name asc").
		Find(&branches).Error
	return branches, err
}

// FindBranchBySlug returns the branch with the given slug.
func (r *Repository) FindBranchBySlug(ctx context.Context, slug string) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

// FindBranchByID returns the branch with the given id.
func (r *Repository) FindBranchByID(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

// ListCategories returns a branch's categories in display order.
func (r *Repository) ListCategories(ctx context.Context, branchID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("position asc, name asc").
		Find(&categories).Error
	return categories, err
}

// ListProducts returns the active products of a category.
func (r *Repository) ListProducts(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("name asc").
		Find(&products).Error
	return products, err
}

// FindProductBySlug returns a single product by slug.
func (r *Repository) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductByID returns a single product by id.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBranchForProduct resolves the branch a product is sold from via its
// category.
func (r *Repository) FindBranchForProduct(ctx context.Context, productID uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).
		Joins("JOIN categories ON categories.branch_id = branches.id").
		Joins("JOIN products ON products.category_id = categories.id").
		Where("products.id = ?", productID).
		First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

// ListDeals returns the deals of a branch that are live at the given time.
func (r *Repository) ListDeals(ctx context.Context, branchID uuid.UUID, now time.Time) ([]models.Deal, error) {
	var deals []models.Deal
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND is_active = ?", branchID, true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("created_at desc").
		Find(&deals).Error
	return deals, err
}
