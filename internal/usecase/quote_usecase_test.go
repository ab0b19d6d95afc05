package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"ghorihut-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSettingsRepo is an in-memory SettingsRepository.
type fakeSettingsRepo struct {
	mu    sync.Mutex
	blobs map[string]domain.RawJSON
	gets  int
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{blobs: map[string]domain.RawJSON{}}
}

func (r *fakeSettingsRepo) Get(ctx context.Context, key string) (domain.RawJSON, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	blob, ok := r.blobs[key]
	if !ok {
		return nil, domain.ErrSettingNotFound
	}
	return blob, nil
}

func (r *fakeSettingsRepo) Upsert(ctx context.Context, key string, value domain.RawJSON) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[key] = value
	return nil
}

func (r *fakeSettingsRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blobs[key]; !ok {
		return domain.ErrSettingNotFound
	}
	delete(r.blobs, key)
	return nil
}

// fakeCache is an in-memory CacheService without expiry.
type fakeCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]interface{}{}}
}

func (c *fakeCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value interface{}, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *fakeCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *fakeCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]interface{}{}
}

func testSnapshot() *domain.SettingsSnapshot {
	cap := 20000.0
	return &domain.SettingsSnapshot{
		Shipping: domain.ShippingSettings{
			Enabled: true,
			Zones: []domain.ShippingZone{
				{ZoneKey: "dhaka", Name: "Inside Dhaka", FeeBDT: 60, FreeShippingMinSubtotalBDT: 2000, DeliveryETAText: "1-2 days", Cities: []string{"Dhaka"}},
				{ZoneKey: "outside_dhaka", Name: "Outside Dhaka", FeeBDT: 120, DeliveryETAText: "3-5 days"},
			},
			COD:     domain.CODRules{AllowForAll: true, BlockAboveTotal: &cap, BlockZones: []string{"remote"}},
			Address: domain.AddressRequirements{Division: true, District: true},
		},
		International: domain.InternationalSettings{
			Enabled:        true,
			Rules:          []domain.InternationalShippingRule{{Country: "IN", Currency: "BDT", BaseFee: 1500}},
			DefaultETAText: "10-21 days",
		},
		Currency: domain.CurrencySettings{
			BaseCurrency:      "BDT",
			AllowedCurrencies: []string{"BDT", "USD"},
			ManualRates:       map[string]float64{"USD": 0.0084},
			Rounding:          domain.Rounding2DP,
		},
	}
}

func TestEvaluateQuote(t *testing.T) {
	snap := testSnapshot()

	t.Run("domestic zone with fee", func(t *testing.T) {
		res, err := EvaluateQuote(snap, QuoteRequest{City: "Dhaka", Subtotal: 500})
		require.NoError(t, err)
		assert.Equal(t, "dhaka", res.ZoneKey)
		assert.Equal(t, 60.0, res.Fee)
		assert.False(t, res.FreeShipping)
		assert.True(t, res.CODEligible)
		assert.Equal(t, "1-2 days", res.ETAText)
		assert.Equal(t, "BDT", res.Currency)
	})

	t.Run("empty country treated as domestic", func(t *testing.T) {
		res, err := EvaluateQuote(snap, QuoteRequest{City: "Sylhet", Subtotal: 500})
		require.NoError(t, err)
		assert.Equal(t, "outside_dhaka", res.ZoneKey)
		assert.Equal(t, 120.0, res.Fee)
	})

	t.Run("free shipping at inclusive threshold", func(t *testing.T) {
		res, err := EvaluateQuote(snap, QuoteRequest{City: "Dhaka", Subtotal: 2000})
		require.NoError(t, err)
		assert.True(t, res.FreeShipping)
		assert.Equal(t, 0.0, res.Fee)
	})

	t.Run("order total defaults to subtotal plus fee for COD", func(t *testing.T) {
		// 19960 + 60 = 20020 > 20000 cap
		res, err := EvaluateQuote(snap, QuoteRequest{City: "Dhaka", Subtotal: 19960})
		require.NoError(t, err)
		assert.False(t, res.CODEligible)

		// Explicit order total under the cap wins over the default.
		res, err = EvaluateQuote(snap, QuoteRequest{City: "Dhaka", Subtotal: 19960, OrderTotal: 18000})
		require.NoError(t, err)
		assert.True(t, res.CODEligible)
	})

	t.Run("international quote never offers COD", func(t *testing.T) {
		res, err := EvaluateQuote(snap, QuoteRequest{Country: "IN", Subtotal: 10000})
		require.NoError(t, err)
		assert.Equal(t, "IN", res.Country)
		assert.Equal(t, 1500.0, res.Fee)
		assert.False(t, res.CODEligible)
		assert.Equal(t, "10-21 days", res.ETAText)
	})

	t.Run("unsupported destination", func(t *testing.T) {
		_, err := EvaluateQuote(snap, QuoteRequest{Country: "FR", Subtotal: 10000})
		assert.ErrorIs(t, err, domain.ErrUnsupportedDestination)
	})

	t.Run("display currency conversion", func(t *testing.T) {
		res, err := EvaluateQuote(snap, QuoteRequest{City: "Dhaka", Subtotal: 500, DisplayCurrency: "usd"})
		require.NoError(t, err)
		require.NotNil(t, res.DisplayFee)
		// 60 * 0.0084 = 0.504 -> 0.50
		assert.Equal(t, 0.5, *res.DisplayFee)
		assert.Equal(t, "USD", res.DisplayIn)
	})

	t.Run("unknown display currency fails the quote", func(t *testing.T) {
		_, err := EvaluateQuote(snap, QuoteRequest{City: "Dhaka", Subtotal: 500, DisplayCurrency: "GBP"})
		assert.ErrorIs(t, err, domain.ErrUnknownCurrency)
	})

	t.Run("negative subtotal rejected", func(t *testing.T) {
		_, err := EvaluateQuote(snap, QuoteRequest{City: "Dhaka", Subtotal: -1})
		assert.ErrorIs(t, err, domain.ErrInvalidSubtotal)
	})

	t.Run("disabled shipping module", func(t *testing.T) {
		off := testSnapshot()
		off.Shipping.Enabled = false
		_, err := EvaluateQuote(off, QuoteRequest{City: "Dhaka", Subtotal: 500})
		assert.ErrorIs(t, err, domain.ErrModuleDisabled)
	})
}

func TestQuoteUsecaseSnapshotCaching(t *testing.T) {
	repo := newFakeSettingsRepo()
	c := newFakeCache()
	settingsUC := NewSettingsUsecase(repo, c, time.Minute)
	quoteUC := NewQuoteUsecase(settingsUC)

	ctx := context.Background()

	// No stored settings: defaults apply (dhaka 60 / outside_dhaka 120).
	res, err := quoteUC.Quote(ctx, QuoteRequest{City: "dhaka", Subtotal: 500})
	require.NoError(t, err)
	assert.Equal(t, 60.0, res.Fee)

	firstGets := repo.gets
	_, err = quoteUC.Quote(ctx, QuoteRequest{City: "Sylhet", Subtotal: 500})
	require.NoError(t, err)
	assert.Equal(t, firstGets, repo.gets, "second quote should hit the snapshot cache")

	// Updating settings invalidates the snapshot.
	_, err = settingsUC.UpdateShippingSettings(ctx, domain.RawJSON(`{
		"enabled": true,
		"zones": [{"zoneKey": "flat", "feeBdt": 99}],
		"cod": {"allowForAll": true}
	}`))
	require.NoError(t, err)

	res, err = quoteUC.Quote(ctx, QuoteRequest{City: "Dhaka", Subtotal: 500})
	require.NoError(t, err)
	assert.Equal(t, 99.0, res.Fee)
	assert.Equal(t, "flat", res.ZoneKey)
}

func TestSettingsUpdateInvalidatesEnumsCache(t *testing.T) {
	repo := newFakeSettingsRepo()
	c := newFakeCache()
	settingsUC := NewSettingsUsecase(repo, c, time.Minute)
	ctx := context.Background()

	c.Set(EnumsCacheKey, map[string]string{"stale": "payload"}, time.Minute)

	_, err := settingsUC.UpdateCurrencySettings(ctx, domain.RawJSON(`{
		"baseCurrency": "BDT",
		"allowedCurrencies": ["BDT"]
	}`))
	require.NoError(t, err)

	_, found := c.Get(EnumsCacheKey)
	assert.False(t, found, "enums payload embeds zone and currency configuration")
}

func TestSettingsUsecaseRejectsInvalid(t *testing.T) {
	repo := newFakeSettingsRepo()
	settingsUC := NewSettingsUsecase(repo, newFakeCache(), time.Minute)
	ctx := context.Background()

	_, err := settingsUC.UpdateShippingSettings(ctx, domain.RawJSON(`{
		"zones": [{"zoneKey": "a", "feeBdt": 50}, {"zoneKey": "b", "feeBdt": 60}]
	}`))
	assert.Error(t, err, "two fallback zones must be rejected")
	assert.Empty(t, repo.blobs, "nothing should be stored on validation failure")

	_, err = settingsUC.UpdateCurrencySettings(ctx, domain.RawJSON(`{
		"baseCurrency": "BDT",
		"allowedCurrencies": ["USD"],
		"manualRates": {}
	}`))
	assert.Error(t, err, "allowed currency without a rate must be rejected")
}
