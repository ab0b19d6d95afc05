package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ghorihut-backend/internal/domain"
	"ghorihut-backend/pkg/cache"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const promotedCouponCacheKey = "marquee:promoted"

// CouponUsecase handles coupon management and keeps the denormalized
// marquee promotion setting consistent with the coupons table. A coupon is
// only ever surfaced in the storefront marquee while it is redeemable.
type CouponUsecase struct {
	couponRepo   domain.CouponRepository
	settingsRepo domain.SettingsRepository
	cache        cache.CacheService
}

func NewCouponUsecase(couponRepo domain.CouponRepository, settingsRepo domain.SettingsRepository, c cache.CacheService) *CouponUsecase {
	return &CouponUsecase{
		couponRepo:   couponRepo,
		settingsRepo: settingsRepo,
		cache:        c,
	}
}

type CouponRequest struct {
	Code       string  `json:"code"`
	Type       string  `json:"type"` // "percentage" or "fixed"
	Value      float64 `json:"value"`
	MinSpend   float64 `json:"minSpend"`
	UsageLimit int     `json:"usageLimit"`
	StartAt    string  `json:"startAt"`   // ISO8601
	ExpiresAt  string  `json:"expiresAt"` // ISO8601
	IsActive   bool    `json:"isActive"`
}

func (req *CouponRequest) toCoupon() (*domain.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, fmt.Errorf("coupon code is required")
	}
	if req.Type != domain.CouponTypePercentage && req.Type != domain.CouponTypeFixed {
		return nil, fmt.Errorf("coupon type must be 'percentage' or 'fixed'")
	}
	if req.Value <= 0 {
		return nil, fmt.Errorf("coupon value must be greater than 0")
	}
	if req.Type == domain.CouponTypePercentage && req.Value > 100 {
		return nil, fmt.Errorf("percentage discount cannot exceed 100%%")
	}

	coupon := &domain.Coupon{
		Code:       code,
		Type:       req.Type,
		Value:      req.Value,
		MinSpend:   req.MinSpend,
		UsageLimit: req.UsageLimit,
		IsActive:   req.IsActive,
	}

	if req.StartAt != "" {
		t, err := parseISO8601(req.StartAt)
		if err != nil {
			return nil, fmt.Errorf("invalid startAt: %w", err)
		}
		coupon.StartAt = &t
	}
	if req.ExpiresAt != "" {
		t, err := parseISO8601(req.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("invalid expiresAt: %w", err)
		}
		coupon.ExpiresAt = &t
	}
	if coupon.StartAt != nil && coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(*coupon.StartAt) {
		return nil, fmt.Errorf("expiresAt must be after startAt")
	}
	return coupon, nil
}

func (uc *CouponUsecase) CreateCoupon(ctx context.Context, req CouponRequest) (*domain.Coupon, error) {
	coupon, err := req.toCoupon()
	if err != nil {
		return nil, err
	}

	existing, _ := uc.couponRepo.GetCouponByCode(ctx, coupon.Code)
	if existing != nil {
		return nil, fmt.Errorf("coupon code '%s' already exists", coupon.Code)
	}

	if err := uc.couponRepo.CreateCoupon(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return coupon, nil
}

func (uc *CouponUsecase) ListCoupons(ctx context.Context, limit, offset int) ([]domain.Coupon, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	coupons, err := uc.couponRepo.ListCoupons(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	total, err := uc.couponRepo.CountCoupons(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}
	return coupons, total, nil
}

func (uc *CouponUsecase) GetCoupon(ctx context.Context, id string) (*domain.Coupon, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid coupon ID")
	}
	coupon, err := uc.couponRepo.GetCouponByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("coupon not found")
	}
	return coupon, nil
}

func (uc *CouponUsecase) UpdateCoupon(ctx context.Context, id string, req CouponRequest) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid coupon ID")
	}
	existing, err := uc.couponRepo.GetCouponByID(ctx, uid)
	if err != nil {
		return fmt.Errorf("coupon not found")
	}

	coupon, err := req.toCoupon()
	if err != nil {
		return err
	}
	coupon.ID = uid

	if coupon.Code != existing.Code {
		dup, _ := uc.couponRepo.GetCouponByCode(ctx, coupon.Code)
		if dup != nil {
			return fmt.Errorf("coupon code '%s' already exists", coupon.Code)
		}
	}

	if err := uc.couponRepo.UpdateCoupon(ctx, coupon); err != nil {
		return err
	}

	// The edit may have deactivated or rescheduled a promoted coupon;
	// re-check the marquee so the banner never advertises a dead code.
	coupon.UsedCount = existing.UsedCount
	if !coupon.ActiveAt(time.Now()) {
		uc.demoteIfPromoted(ctx, uid)
	}
	return nil
}

func (uc *CouponUsecase) DeleteCoupon(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid coupon ID")
	}
	if _, err := uc.couponRepo.GetCouponByID(ctx, uid); err != nil {
		return fmt.Errorf("coupon not found")
	}
	if err := uc.couponRepo.DeleteCoupon(ctx, uid); err != nil {
		return err
	}
	uc.demoteIfPromoted(ctx, uid)
	return nil
}

// --- Marquee promotion ---

// PromoteCoupon surfaces a coupon in the site-wide marquee banner. Only a
// coupon inside its active window may be promoted.
func (uc *CouponUsecase) PromoteCoupon(ctx context.Context, id string) (*domain.PromotedCoupon, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid coupon ID")
	}
	coupon, err := uc.couponRepo.GetCouponByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("coupon not found")
	}
	if !coupon.ActiveAt(time.Now()) {
		return nil, fmt.Errorf("coupon '%s' is outside its active window and cannot be promoted", coupon.Code)
	}

	promo := &domain.PromotedCoupon{
		CouponID:   coupon.ID,
		Code:       coupon.Code,
		Type:       coupon.Type,
		Value:      coupon.Value,
		MinSpend:   coupon.MinSpend,
		ExpiresAt:  coupon.ExpiresAt,
		PromotedAt: time.Now(),
	}

	blob, err := json.Marshal(promo)
	if err != nil {
		return nil, err
	}
	if err := uc.settingsRepo.Upsert(ctx, domain.SettingMarqueeCoupon, domain.RawJSON(blob)); err != nil {
		return nil, fmt.Errorf("failed to promote coupon: %w", err)
	}
	uc.cache.Delete(promotedCouponCacheKey)
	return promo, nil
}

// DemoteCoupon clears the marquee promotion.
func (uc *CouponUsecase) DemoteCoupon(ctx context.Context) error {
	if err := uc.settingsRepo.Delete(ctx, domain.SettingMarqueeCoupon); err != nil {
		return err
	}
	uc.cache.Delete(promotedCouponCacheKey)
	return nil
}

// PromotedCoupon returns the coupon currently promoted in the marquee, or
// nil when none is. The denormalized blob is re-verified against the
// coupons table on every read; a stale promotion (coupon deleted, expired,
// or exhausted since) is cleared instead of being served.
func (uc *CouponUsecase) PromotedCoupon(ctx context.Context) (*domain.PromotedCoupon, error) {
	if v, found := uc.cache.Get(promotedCouponCacheKey); found {
		if promo, ok := v.(*domain.PromotedCoupon); ok {
			return promo, nil
		}
	}

	raw, err := uc.settingsRepo.Get(ctx, domain.SettingMarqueeCoupon)
	if err != nil {
		if errors.Is(err, domain.ErrSettingNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var promo domain.PromotedCoupon
	if err := json.Unmarshal(raw, &promo); err != nil {
		return nil, fmt.Errorf("corrupt promoted coupon setting: %w", err)
	}

	coupon, err := uc.couponRepo.GetCouponByID(ctx, promo.CouponID)
	if err != nil || !coupon.ActiveAt(time.Now()) {
		_ = uc.DemoteCoupon(ctx)
		return nil, nil
	}

	uc.cache.Set(promotedCouponCacheKey, &promo, 5*time.Minute)
	return &promo, nil
}

func (uc *CouponUsecase) demoteIfPromoted(ctx context.Context, id uuid.UUID) {
	raw, err := uc.settingsRepo.Get(ctx, domain.SettingMarqueeCoupon)
	if err != nil {
		return
	}
	var promo domain.PromotedCoupon
	if err := json.Unmarshal(raw, &promo); err != nil || promo.CouponID != id {
		return
	}
	_ = uc.DemoteCoupon(ctx)
}

// parseISO8601 parses common ISO8601 date layouts.
func parseISO8601(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format")
}
