package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCouponActiveAt(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	t.Run("active inside window", func(t *testing.T) {
		c := Coupon{IsActive: true, StartAt: &before, ExpiresAt: &after}
		assert.True(t, c.ActiveAt(now))
	})

	t.Run("disabled flag wins", func(t *testing.T) {
		c := Coupon{IsActive: false, StartAt: &before, ExpiresAt: &after}
		assert.False(t, c.ActiveAt(now))
	})

	t.Run("not yet started", func(t *testing.T) {
		c := Coupon{IsActive: true, StartAt: &after}
		assert.False(t, c.ActiveAt(now))
	})

	t.Run("expired", func(t *testing.T) {
		c := Coupon{IsActive: true, ExpiresAt: &before}
		assert.False(t, c.ActiveAt(now))
	})

	t.Run("usage limit exhausted", func(t *testing.T) {
		c := Coupon{IsActive: true, UsageLimit: 5, UsedCount: 5}
		assert.False(t, c.ActiveAt(now))
	})

	t.Run("zero limit is unlimited", func(t *testing.T) {
		c := Coupon{IsActive: true, UsedCount: 100000}
		assert.True(t, c.ActiveAt(now))
	})
}

func TestCouponDiscount(t *testing.T) {
	t.Run("percentage", func(t *testing.T) {
		c := Coupon{Type: CouponTypePercentage, Value: 10}
		assert.Equal(t, 150.0, c.Discount(1500))
	})

	t.Run("fixed", func(t *testing.T) {
		c := Coupon{Type: CouponTypeFixed, Value: 200}
		assert.Equal(t, 200.0, c.Discount(1500))
	})

	t.Run("fixed capped at subtotal", func(t *testing.T) {
		c := Coupon{Type: CouponTypeFixed, Value: 2000}
		assert.Equal(t, 1500.0, c.Discount(1500))
	})

	t.Run("below min spend grants nothing", func(t *testing.T) {
		c := Coupon{Type: CouponTypeFixed, Value: 200, MinSpend: 1000}
		assert.Equal(t, 0.0, c.Discount(999))
		assert.Equal(t, 200.0, c.Discount(1000))
	})
}
