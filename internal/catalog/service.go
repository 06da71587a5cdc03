package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ovenline/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ovenline/storefront-backend/pkg/errors"
	"github.com/ovenline/storefront-backend/pkg/money"
)

// Service exposes the read-only catalog surface.
type Service interface {
	ListBranches(ctx context.Context) ([]BranchDTO, error)
	GetBranch(ctx context.Context, slug string) (*BranchDTO, error)
	ListCategories(ctx context.Context, branchSlug string) ([]CategoryDTO, error)
	ListProducts(ctx context.Context, categoryID uuid.UUID) ([]ProductDTO, error)
	GetProduct(ctx context.Context, slug string) (*ProductDTO, error)
	ListDeals(ctx context.Context, branchSlug string) ([]DealDTO, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService builds the catalog service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) ListBranches(ctx context.Context) ([]BranchDTO, error) {
	branches, err := s.repo.ListBranches(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list branches")
	}
	dtos := make([]BranchDTO, 0, len(branches))
	for i := range branches {
		dtos = append(dtos, toBranchDTO(&branches[i]))
	}
	return dtos, nil
}

func (s *service) GetBranch(ctx context.Context, slug string) (*BranchDTO, error) {
	branch, err := s.findBranch(ctx, slug)
	if err != nil {
		return nil, err
	}
	dto := toBranchDTO(branch)
	return &dto, nil
}

func (s *service) ListCategories(ctx context.Context, branchSlug string) ([]CategoryDTO, error) {
	branch, err := s.findBranch(ctx, branchSlug)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.ListCategories(ctx, branch.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for _, category := range categories {
		dtos = append(dtos, CategoryDTO{
			ID:       category.ID,
			Name:     category.Name,
			Slug:     category.Slug,
			ImageURL: normalizeImageURL(category.ImageURL),
			Position: category.Position,
		})
	}
	return dtos, nil
}

func (s *service) ListProducts(ctx context.Context, categoryID uuid.UUID) ([]ProductDTO, error) {
	if categoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	products, err := s.repo.ListProducts(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, toProductDTO(&products[i]))
	}
	return dtos, nil
}

func (s *service) GetProduct(ctx context.Context, slug string) (*ProductDTO, error) {
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	dto := toProductDTO(product)
	return &dto, nil
}

func (s *service) ListDeals(ctx context.Context, branchSlug string) ([]DealDTO, error) {
	branch, err := s.findBranch(ctx, branchSlug)
	if err != nil {
		return nil, err
	}
	deals, err := s.repo.ListDeals(ctx, branch.ID, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deals")
	}
	dtos := make([]DealDTO, 0, len(deals))
	for _, deal := range deals {
		dtos = append(dtos, DealDTO{
			ID:         deal.ID,
			Title:      deal.Title,
			ImageURL:   normalizeImageURL(deal.ImageURL),
			PriceMinor: deal.PriceMinor,
			EndsAt:     deal.EndsAt,
		})
	}
	return dtos, nil
}

func (s *service) findBranch(ctx context.Context, slug string) (*models.Branch, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch slug is required")
	}
	branch, err := s.repo.FindBranchBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	return branch, nil
}

func toBranchDTO(branch *models.Branch) BranchDTO {
	return BranchDTO{
		ID:       branch.ID,
		Name:     branch.Name,
		Slug:     branch.Slug,
		City:     branch.City,
		Country:  branch.CountryCode,
		Address:  branch.Address,
		Phone:    branch.Phone,
		Currency: money.CurrencyForCountry(branch.CountryCode).String(),
		GSTRate:  float64(branch.GSTRateBasis) / 10000,
	}
}

func toProductDTO(product *models.Product) ProductDTO {
	description := ""
	if product.Description != nil {
		description = *product.Description
	}
	return ProductDTO{
		ID:             product.ID,
		Name:           product.Name,
		Slug:           product.Slug,
		Description:    description,
		ImageURL:       normalizeImageURL(product.ImageURL),
		BasePriceMinor: product.BasePriceMinor,
		Variants:       product.Variants,
		Addons:         product.Addons,
	}
}
