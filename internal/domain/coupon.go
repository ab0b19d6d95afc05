package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Coupon discount types.
const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

type Coupon struct {
	ID         uuid.UUID  `json:"id"`
	Code       string     `json:"code"`
	Type       string     `json:"type"` // percentage, fixed
	Value      float64    `json:"value"`
	MinSpend   float64    `json:"minSpend"`
	UsageLimit int        `json:"usageLimit"` // 0 = unlimited
	UsedCount  int        `json:"usedCount"`
	StartAt    *time.Time `json:"startAt"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ActiveAt reports whether the coupon can be redeemed at the given instant:
// enabled, inside its window, and under its usage limit. The marquee
// promotion workflow uses the same check, so a coupon never surfaces on the
// storefront banner outside the window it is redeemable in.
func (c *Coupon) ActiveAt(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.StartAt != nil && now.Before(*c.StartAt) {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return false
	}
	return true
}

// Discount computes the discount this coupon grants on a subtotal, capped
// at the subtotal so totals never go negative. Returns 0 when the subtotal
// is under the minimum spend.
func (c *Coupon) Discount(subtotal float64) float64 {
	if subtotal < c.MinSpend {
		return 0
	}
	var discount float64
	if c.Type == CouponTypePercentage {
		discount = subtotal * (c.Value / 100)
	} else {
		discount = c.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount
}

// PromotedCoupon is the denormalized "currently promoted coupon" blob kept
// under the marquee.coupon setting. It mirrors the coupons table; the
// coupon usecase keeps the two in sync.
type PromotedCoupon struct {
	CouponID   uuid.UUID  `json:"couponId"`
	Code       string     `json:"code"`
	Type       string     `json:"type"`
	Value      float64    `json:"value"`
	MinSpend   float64    `json:"minSpend"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	PromotedAt time.Time  `json:"promotedAt"`
}

type CouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *Coupon) error
	GetCouponByCode(ctx context.Context, code string) (*Coupon, error)
	GetCouponByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	ListCoupons(ctx context.Context, limit, offset int) ([]Coupon, error)
	CountCoupons(ctx context.Context) (int64, error)
	UpdateCoupon(ctx context.Context, coupon *Coupon) error
	IncrementCouponUsage(ctx context.Context, id uuid.UUID) error
	DeleteCoupon(ctx context.Context, id uuid.UUID) error
}
