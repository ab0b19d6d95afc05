package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testZones() []ShippingZone {
	return []ShippingZone{
		{ZoneKey: "dhaka", Name: "Inside Dhaka", FeeBDT: 60, FreeShippingMinSubtotalBDT: 2000, DeliveryETAText: "1-2 days", Cities: []string{"Dhaka"}},
		{ZoneKey: "ctg", Name: "Chattogram", FeeBDT: 100, Cities: []string{"Chattogram", "Chittagong"}},
		{ZoneKey: "outside_dhaka", Name: "Outside Dhaka", FeeBDT: 120, DeliveryETAText: "3-5 days"},
	}
}

func TestResolveZone(t *testing.T) {
	zones := testZones()

	t.Run("explicit match", func(t *testing.T) {
		zone, err := ResolveZone("Dhaka", zones)
		require.NoError(t, err)
		assert.Equal(t, "dhaka", zone.ZoneKey)
	})

	t.Run("case insensitive with whitespace", func(t *testing.T) {
		zone, err := ResolveZone("  dhaka ", zones)
		require.NoError(t, err)
		assert.Equal(t, "dhaka", zone.ZoneKey)

		zone, err = ResolveZone("CHITTAGONG", zones)
		require.NoError(t, err)
		assert.Equal(t, "ctg", zone.ZoneKey)
	})

	t.Run("unlisted city falls back", func(t *testing.T) {
		zone, err := ResolveZone("Sylhet", zones)
		require.NoError(t, err)
		assert.Equal(t, "outside_dhaka", zone.ZoneKey)
	})

	t.Run("city listed in two zones resolves to first in order", func(t *testing.T) {
		dup := []ShippingZone{
			{ZoneKey: "a", FeeBDT: 50, Cities: []string{"Khulna"}},
			{ZoneKey: "b", FeeBDT: 70, Cities: []string{"Khulna"}},
		}
		zone, err := ResolveZone("Khulna", dup)
		require.NoError(t, err)
		assert.Equal(t, "a", zone.ZoneKey)
	})

	t.Run("no zones configured", func(t *testing.T) {
		_, err := ResolveZone("Dhaka", nil)
		assert.ErrorIs(t, err, ErrNoZoneConfigured)
	})

	t.Run("no fallback and no match", func(t *testing.T) {
		_, err := ResolveZone("Sylhet", zones[:2])
		assert.ErrorIs(t, err, ErrNoZoneConfigured)
	})

	t.Run("two fallbacks resolve to first", func(t *testing.T) {
		zones := []ShippingZone{
			{ZoneKey: "f1", FeeBDT: 80},
			{ZoneKey: "f2", FeeBDT: 90},
		}
		zone, err := ResolveZone("Anywhere", zones)
		require.NoError(t, err)
		assert.Equal(t, "f1", zone.ZoneKey)
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		first, err := ResolveZone("Bogura", zones)
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			again, err := ResolveZone("Bogura", zones)
			require.NoError(t, err)
			assert.Equal(t, first.ZoneKey, again.ZoneKey)
		}
	})
}

func TestComputeFee(t *testing.T) {
	zone := &ShippingZone{ZoneKey: "dhaka", FeeBDT: 60, FreeShippingMinSubtotalBDT: 2000}

	t.Run("below threshold charges fee", func(t *testing.T) {
		res, err := ComputeFee(zone, 1999)
		require.NoError(t, err)
		assert.Equal(t, 60.0, res.Fee)
		assert.False(t, res.FreeShipping)
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		res, err := ComputeFee(zone, 2000)
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.Fee)
		assert.True(t, res.FreeShipping)
	})

	t.Run("zero threshold means never free", func(t *testing.T) {
		z := &ShippingZone{ZoneKey: "ctg", FeeBDT: 100}
		res, err := ComputeFee(z, 1_000_000)
		require.NoError(t, err)
		assert.Equal(t, 100.0, res.Fee)
		assert.False(t, res.FreeShipping)
	})

	t.Run("zero subtotal is valid", func(t *testing.T) {
		res, err := ComputeFee(zone, 0)
		require.NoError(t, err)
		assert.Equal(t, 60.0, res.Fee)
	})

	t.Run("invalid subtotals rejected", func(t *testing.T) {
		for _, subtotal := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
			_, err := ComputeFee(zone, subtotal)
			assert.ErrorIs(t, err, ErrInvalidSubtotal)
		}
	})
}

func TestCODRulesEligible(t *testing.T) {
	cap := 20000.0

	t.Run("blocked zone wins over everything", func(t *testing.T) {
		rules := CODRules{AllowForAll: true, BlockZones: []string{"ctg"}}
		assert.False(t, rules.Eligible(100, "ctg"))
		assert.True(t, rules.Eligible(100, "dhaka"))
	})

	t.Run("blanket disable", func(t *testing.T) {
		rules := CODRules{AllowForAll: false}
		assert.False(t, rules.Eligible(100, "dhaka"))
	})

	t.Run("value cap is exclusive at the boundary", func(t *testing.T) {
		rules := CODRules{AllowForAll: true, BlockAboveTotal: &cap}
		assert.True(t, rules.Eligible(20000, "dhaka"))
		assert.False(t, rules.Eligible(20000.01, "dhaka"))
	})

	t.Run("nil cap means no value limit", func(t *testing.T) {
		rules := CODRules{AllowForAll: true}
		assert.True(t, rules.Eligible(10_000_000, "dhaka"))
	})

	t.Run("rules are conjunctive", func(t *testing.T) {
		rules := CODRules{AllowForAll: true, BlockAboveTotal: &cap, BlockZones: []string{"remote"}}
		assert.False(t, rules.Eligible(100, "remote"))
		assert.False(t, rules.Eligible(25000, "dhaka"))
		assert.True(t, rules.Eligible(15000, "dhaka"))
	})
}

func TestShippingSettingsQuote(t *testing.T) {
	settings := ShippingSettings{Enabled: true, Zones: testZones()}

	t.Run("resolves and prices in one call", func(t *testing.T) {
		zone, res, err := settings.Quote("Dhaka", 500)
		require.NoError(t, err)
		assert.Equal(t, "dhaka", zone.ZoneKey)
		assert.Equal(t, 60.0, res.Fee)
	})

	t.Run("disabled module", func(t *testing.T) {
		disabled := ShippingSettings{Enabled: false, Zones: testZones()}
		_, _, err := disabled.Quote("Dhaka", 500)
		assert.ErrorIs(t, err, ErrModuleDisabled)
	})

	t.Run("invalid subtotal rejected before resolution", func(t *testing.T) {
		_, _, err := settings.Quote("Dhaka", -5)
		assert.ErrorIs(t, err, ErrInvalidSubtotal)
	})
}

func TestInternationalQuote(t *testing.T) {
	settings := InternationalSettings{
		Enabled: true,
		Rules: []InternationalShippingRule{
			{Country: "IN", Currency: "BDT", BaseFee: 1500, FreeShippingMinSubtotal: 50000},
			{Country: "US", Currency: "BDT", BaseFee: 4000},
		},
		DefaultETAText: "10-21 days",
	}

	t.Run("per country fee", func(t *testing.T) {
		rule, res, err := settings.Quote("IN", 10000)
		require.NoError(t, err)
		assert.Equal(t, "IN", rule.Country)
		assert.Equal(t, 1500.0, res.Fee)
	})

	t.Run("country match is case insensitive", func(t *testing.T) {
		rule, _, err := settings.Quote(" us ", 10000)
		require.NoError(t, err)
		assert.Equal(t, "US", rule.Country)
	})

	t.Run("inclusive free shipping threshold", func(t *testing.T) {
		_, res, err := settings.Quote("IN", 50000)
		require.NoError(t, err)
		assert.True(t, res.FreeShipping)
		assert.Equal(t, 0.0, res.Fee)
	})

	t.Run("unsupported destination is a hard failure", func(t *testing.T) {
		_, _, err := settings.Quote("FR", 10000)
		assert.ErrorIs(t, err, ErrUnsupportedDestination)
	})

	t.Run("disabled module", func(t *testing.T) {
		disabled := InternationalSettings{Rules: settings.Rules}
		_, _, err := disabled.Quote("IN", 10000)
		assert.ErrorIs(t, err, ErrModuleDisabled)
	})
}

func TestAddressRequirementsMissing(t *testing.T) {
	reqs := AddressRequirements{Division: true, District: true, Zip: true}

	missing := reqs.Missing(JSONB{"division": "Dhaka", "zip": "  "})
	assert.ElementsMatch(t, []string{"district", "zip"}, missing)

	missing = reqs.Missing(JSONB{"division": "Dhaka", "district": "Dhaka", "zip": "1207"})
	assert.Empty(t, missing)
}
