package pgxrepo

import (
	"context"
	"time"

	"ghorihut-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type couponRepository struct {
	pool *pgxpool.Pool
}

func NewCouponRepository(pool *pgxpool.Pool) domain.CouponRepository {
	return &couponRepository{pool: pool}
}

const couponColumns = `id, code, type, value, min_spend, usage_limit, used_count, start_at, expires_at, is_active, created_at`

func (r *couponRepository) CreateCoupon(ctx context.Context, c *domain.Coupon) error {
	var id pgtype.UUID
	var createdAt pgtype.Timestamptz
	err := db(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO coupons (code, type, value, min_spend, usage_limit, start_at, expires_at, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		c.Code, c.Type, c.Value, c.MinSpend, c.UsageLimit,
		timestampPtr(c.StartAt), timestampPtr(c.ExpiresAt), c.IsActive,
	).Scan(&id, &createdAt)
	if err != nil {
		return err
	}
	c.ID = uuid.UUID(id.Bytes)
	c.CreatedAt = createdAt.Time
	return nil
}

func (r *couponRepository) GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	row := db(ctx, r.pool).QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code)
	return scanCoupon(row)
}

func (r *couponRepository) GetCouponByID(ctx context.Context, id uuid.UUID) (*domain.Coupon, error) {
	row := db(ctx, r.pool).QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE id = $1`,
		pgtype.UUID{Bytes: id, Valid: true})
	return scanCoupon(row)
}

func (r *couponRepository) ListCoupons(ctx context.Context, limit, offset int) ([]domain.Coupon, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *couponRepository) CountCoupons(ctx context.Context) (int64, error) {
	var count int64
	err := db(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM coupons`).Scan(&count)
	return count, err
}

func (r *couponRepository) UpdateCoupon(ctx context.Context, c *domain.Coupon) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE coupons
		 SET code = $2, type = $3, value = $4, min_spend = $5, usage_limit = $6,
		     start_at = $7, expires_at = $8, is_active = $9
		 WHERE id = $1`,
		pgtype.UUID{Bytes: c.ID, Valid: true},
		c.Code, c.Type, c.Value, c.MinSpend, c.UsageLimit,
		timestampPtr(c.StartAt), timestampPtr(c.ExpiresAt), c.IsActive,
	)
	return err
}

func (r *couponRepository) IncrementCouponUsage(ctx context.Context, id uuid.UUID) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE coupons SET used_count = used_count + 1 WHERE id = $1`,
		pgtype.UUID{Bytes: id, Valid: true})
	return err
}

func (r *couponRepository) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`DELETE FROM coupons WHERE id = $1`,
		pgtype.UUID{Bytes: id, Valid: true})
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(row rowScanner) (*domain.Coupon, error) {
	var (
		id                 pgtype.UUID
		c                  domain.Coupon
		startAt, expiresAt pgtype.Timestamptz
		createdAt          pgtype.Timestamptz
	)
	err := row.Scan(&id, &c.Code, &c.Type, &c.Value, &c.MinSpend,
		&c.UsageLimit, &c.UsedCount, &startAt, &expiresAt, &c.IsActive, &createdAt)
	if err != nil {
		return nil, err
	}
	c.ID = uuid.UUID(id.Bytes)
	c.StartAt = timePtr(startAt)
	c.ExpiresAt = timePtr(expiresAt)
	c.CreatedAt = createdAt.Time
	return &c, nil
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if t.Valid {
		return &t.Time
	}
	return nil
}

func timestampPtr(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
