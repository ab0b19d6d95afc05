package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ghorihut-backend/internal/domain"
	"ghorihut-backend/pkg/cache"

	"github.com/goccy/go-json"
)

const settingsSnapshotCacheKey = "settings:snapshot"

// EnumsCacheKey caches the storefront bootstrap payload, which embeds zone
// and currency configuration. Settings writes invalidate it together with
// the snapshot.
const EnumsCacheKey = "system:config:enums"

// SettingsUsecase owns the shipping/currency configuration snapshots.
// Snapshots are validated eagerly on save, so the evaluator never has to
// defend against an invalid stored configuration; reads tolerate whatever
// is stored and fill omitted keys with defaults.
type SettingsUsecase struct {
	settingsRepo domain.SettingsRepository
	cache        cache.CacheService
	snapshotTTL  time.Duration
}

func NewSettingsUsecase(settingsRepo domain.SettingsRepository, c cache.CacheService, snapshotTTL time.Duration) *SettingsUsecase {
	return &SettingsUsecase{
		settingsRepo: settingsRepo,
		cache:        c,
		snapshotTTL:  snapshotTTL,
	}
}

// Snapshot returns the current settings snapshot. The snapshot is immutable
// once built and shared by reference across concurrent quote evaluations.
func (u *SettingsUsecase) Snapshot(ctx context.Context) (*domain.SettingsSnapshot, error) {
	if v, found := u.cache.Get(settingsSnapshotCacheKey); found {
		if snap, ok := v.(*domain.SettingsSnapshot); ok {
			return snap, nil
		}
	}

	shippingRaw, err := u.getBlob(ctx, domain.SettingShippingBD)
	if err != nil {
		return nil, err
	}
	intlRaw, err := u.getBlob(ctx, domain.SettingShippingIntl)
	if err != nil {
		return nil, err
	}
	currencyRaw, err := u.getBlob(ctx, domain.SettingCurrency)
	if err != nil {
		return nil, err
	}

	shipping, err := domain.DecodeShippingSettings(shippingRaw)
	if err != nil {
		return nil, err
	}
	intl, err := domain.DecodeInternationalSettings(intlRaw)
	if err != nil {
		return nil, err
	}
	currency, err := domain.DecodeCurrencySettings(currencyRaw)
	if err != nil {
		return nil, err
	}

	snap := &domain.SettingsSnapshot{
		Shipping:      shipping,
		International: intl,
		Currency:      currency,
	}
	u.cache.Set(settingsSnapshotCacheKey, snap, u.snapshotTTL)
	return snap, nil
}

func (u *SettingsUsecase) getBlob(ctx context.Context, key string) (domain.RawJSON, error) {
	raw, err := u.settingsRepo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrSettingNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load setting %s: %w", key, err)
	}
	return raw, nil
}

// UpdateShippingSettings validates and stores a new domestic snapshot,
// replacing the previous one wholesale.
func (u *SettingsUsecase) UpdateShippingSettings(ctx context.Context, raw domain.RawJSON) (*domain.ShippingSettings, error) {
	s, err := domain.DecodeShippingSettings(raw)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shipping settings: %w", err)
	}
	return &s, u.store(ctx, domain.SettingShippingBD, s)
}

func (u *SettingsUsecase) UpdateInternationalSettings(ctx context.Context, raw domain.RawJSON) (*domain.InternationalSettings, error) {
	s, err := domain.DecodeInternationalSettings(raw)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid international settings: %w", err)
	}
	return &s, u.store(ctx, domain.SettingShippingIntl, s)
}

func (u *SettingsUsecase) UpdateCurrencySettings(ctx context.Context, raw domain.RawJSON) (*domain.CurrencySettings, error) {
	s, err := domain.DecodeCurrencySettings(raw)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid currency settings: %w", err)
	}
	return &s, u.store(ctx, domain.SettingCurrency, s)
}

// store marshals the decoded settings back to canonical JSON, so the blob
// at rest always carries every key with defaults resolved.
func (u *SettingsUsecase) store(ctx context.Context, key string, value interface{}) error {
	blob, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := u.settingsRepo.Upsert(ctx, key, domain.RawJSON(blob)); err != nil {
		return fmt.Errorf("store setting %s: %w", key, err)
	}
	u.cache.Delete(settingsSnapshotCacheKey)
	u.cache.Delete(EnumsCacheKey)
	return nil
}
