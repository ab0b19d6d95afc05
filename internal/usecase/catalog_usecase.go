package usecase

import (
	"context"
	"fmt"
	"strings"

	"ghorihut-backend/config"
	"ghorihut-backend/internal/domain"
	"ghorihut-backend/pkg/cache"
	"ghorihut-backend/pkg/utils"
)

type CatalogUsecase struct {
	productRepo domain.ProductRepository
	cache       cache.CacheService
	cfg         *config.Config
}

func NewCatalogUsecase(productRepo domain.ProductRepository, c cache.CacheService, cfg *config.Config) *CatalogUsecase {
	return &CatalogUsecase{productRepo: productRepo, cache: c, cfg: cfg}
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	// Public listings only see active products.
	active := true
	filter.Active = &active
	return u.productRepo.List(ctx, filter)
}

func (u *CatalogUsecase) ListProductsAdmin(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	return u.productRepo.List(ctx, filter)
}

func (u *CatalogUsecase) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	cacheKey := "catalog:product:" + slug
	if v, found := u.cache.Get(cacheKey); found {
		if p, ok := v.(*domain.Product); ok {
			return p, nil
		}
	}

	product, err := u.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	u.cache.Set(cacheKey, product, u.cfg.CacheProductTTL)
	return product, nil
}

func (u *CatalogUsecase) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return u.productRepo.GetByID(ctx, id)
}

func (u *CatalogUsecase) CreateProduct(ctx context.Context, p *domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if p.BasePrice < 0 {
		return fmt.Errorf("base price must not be negative")
	}
	if p.SalePrice != nil && (*p.SalePrice < 0 || *p.SalePrice > p.BasePrice) {
		return fmt.Errorf("sale price must be between 0 and the base price")
	}

	p.ID = utils.GenerateUUID()
	if p.Slug == "" {
		p.Slug = utils.GenerateSlug(p.Brand + " " + p.Name)
	}
	return u.productRepo.Create(ctx, p)
}

func (u *CatalogUsecase) UpdateProduct(ctx context.Context, p *domain.Product) error {
	existing, err := u.productRepo.GetByID(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("product not found")
	}
	if p.Slug == "" {
		p.Slug = existing.Slug
	}
	if err := u.productRepo.Update(ctx, p); err != nil {
		return err
	}
	u.cache.Delete("catalog:product:" + existing.Slug)
	u.cache.Delete("catalog:product:" + p.Slug)
	return nil
}

func (u *CatalogUsecase) DeleteProduct(ctx context.Context, id string) error {
	existing, err := u.productRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("product not found")
	}
	if err := u.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	u.cache.Delete("catalog:product:" + existing.Slug)
	return nil
}

func (u *CatalogUsecase) AdjustStock(ctx context.Context, id string, delta int) error {
	return u.productRepo.AdjustStock(ctx, id, delta)
}
