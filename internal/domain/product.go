package domain

import (
	"context"
	"time"
)

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Product is a watch listing. Watch-specific attributes (movement, case
// size, water resistance) live in Specs so the catalog schema stays flat.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	BasePrice   float64  `json:"basePrice"` // BDT
	SalePrice   *float64 `json:"salePrice"`
	Stock       int      `json:"stock"`
	IsFeatured  bool     `json:"isFeatured"`
	IsActive    bool     `json:"isActive"`
	Images      []string `json:"images"`
	Specs       JSONB    `json:"specs"` // movement, caseSizeMm, strap, waterResistance...

	Gender   string `json:"gender"` // "men", "women", "unisex"
	Movement string `json:"movement"`

	MetaTitle       string    `json:"metaTitle"`
	MetaDescription string    `json:"metaDescription"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// EffectivePrice returns the sale price when set, otherwise the base price.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.BasePrice
}

type ProductFilter struct {
	Page     int
	Limit    int
	Brand    string
	Gender   string
	Search   string
	Featured *bool
	Active   *bool
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	Update(ctx context.Context, p *Product) error
	AdjustStock(ctx context.Context, id string, delta int) error
	Delete(ctx context.Context, id string) error
}
