package pgxrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ghorihut-backend/internal/domain"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

type productRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) domain.ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, name, slug, brand, description, base_price, sale_price, stock,
	is_featured, is_active, images, specs, gender, movement,
	meta_title, meta_description, created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	_, err = db(ctx, r.pool).Exec(ctx,
		`INSERT INTO products (id, name, slug, brand, description, base_price, sale_price, stock,
		   is_featured, is_active, images, specs, gender, movement, meta_title, meta_description)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		p.ID, p.Name, p.Slug, p.Brand, p.Description, p.BasePrice, p.SalePrice, p.Stock,
		p.IsFeatured, p.IsActive, images, p.Specs, p.Gender, p.Movement,
		p.MetaTitle, p.MetaDescription,
	)
	return err
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := db(ctx, r.pool).QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	row := db(ctx, r.pool).QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
	return scanProduct(row)
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Brand != "" {
		where = append(where, "brand ILIKE "+arg(filter.Brand))
	}
	if filter.Gender != "" {
		where = append(where, "gender = "+arg(filter.Gender))
	}
	if filter.Search != "" {
		where = append(where, "(name ILIKE "+arg("%"+filter.Search+"%")+" OR brand ILIKE "+arg("%"+filter.Search+"%")+")")
	}
	if filter.Featured != nil {
		where = append(where, "is_featured = "+arg(*filter.Featured))
	}
	if filter.Active != nil {
		where = append(where, "is_active = "+arg(*filter.Active))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT count(*) FROM products WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + whereClause +
		` ORDER BY created_at DESC LIMIT ` + arg(int32(limit)) + ` OFFSET ` + arg(int32(offset))

	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	tag, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE products
		 SET name=$2, slug=$3, brand=$4, description=$5, base_price=$6, sale_price=$7,
		     stock=$8, is_featured=$9, is_active=$10, images=$11, specs=$12,
		     gender=$13, movement=$14, meta_title=$15, meta_description=$16, updated_at=now()
		 WHERE id=$1`,
		p.ID, p.Name, p.Slug, p.Brand, p.Description, p.BasePrice, p.SalePrice,
		p.Stock, p.IsFeatured, p.IsActive, images, p.Specs,
		p.Gender, p.Movement, p.MetaTitle, p.MetaDescription,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// AdjustStock applies a signed delta and refuses to go below zero, which
// guards checkout against overselling under concurrency.
func (r *productRepository) AdjustStock(ctx context.Context, id string, delta int) error {
	tag, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now()
		 WHERE id = $1 AND stock + $2 >= 0`,
		id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("insufficient stock for product %s", id)
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	_, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p                    domain.Product
		images               []byte
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Brand, &p.Description,
		&p.BasePrice, &p.SalePrice, &p.Stock, &p.IsFeatured, &p.IsActive,
		&images, &p.Specs, &p.Gender, &p.Movement,
		&p.MetaTitle, &p.MetaDescription, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, err
		}
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}
