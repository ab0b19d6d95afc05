package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeShippingSettings(t *testing.T) {
	t.Run("nil blob yields defaults", func(t *testing.T) {
		s, err := DecodeShippingSettings(nil)
		require.NoError(t, err)
		assert.True(t, s.Enabled)
		require.Len(t, s.Zones, 2)
		assert.Equal(t, "dhaka", s.Zones[0].ZoneKey)
		assert.Equal(t, "outside_dhaka", s.Zones[1].ZoneKey)
		assert.True(t, s.Zones[1].IsFallback())
	})

	t.Run("partial blob keeps defaults for omitted keys", func(t *testing.T) {
		s, err := DecodeShippingSettings(RawJSON(`{"enabled": false}`))
		require.NoError(t, err)
		assert.False(t, s.Enabled)
		assert.Len(t, s.Zones, 2)
		assert.True(t, s.COD.AllowForAll)
	})

	t.Run("stored zones replace defaults wholesale", func(t *testing.T) {
		s, err := DecodeShippingSettings(RawJSON(`{"zones": [{"zoneKey": "all", "feeBdt": 99}]}`))
		require.NoError(t, err)
		require.Len(t, s.Zones, 1)
		assert.Equal(t, "all", s.Zones[0].ZoneKey)
	})

	t.Run("malformed blob fails", func(t *testing.T) {
		_, err := DecodeShippingSettings(RawJSON(`{nope`))
		assert.Error(t, err)
	})
}

func TestDecodeCurrencySettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := DecodeCurrencySettings(nil)
		require.NoError(t, err)
		assert.Equal(t, "BDT", s.BaseCurrency)
		assert.Equal(t, Rounding0DP, s.Rounding)
	})

	t.Run("rate keys normalized to upper case", func(t *testing.T) {
		s, err := DecodeCurrencySettings(RawJSON(`{"manualRates": {"usd": 0.0084}}`))
		require.NoError(t, err)
		_, ok := s.ManualRates["USD"]
		assert.True(t, ok)
	})
}

func TestShippingSettingsValidate(t *testing.T) {
	valid := func() ShippingSettings {
		return ShippingSettings{
			Enabled: true,
			Zones: []ShippingZone{
				{ZoneKey: "dhaka", FeeBDT: 60, Cities: []string{"Dhaka"}},
				{ZoneKey: "rest", FeeBDT: 120},
			},
			COD: CODRules{AllowForAll: true},
		}
	}

	t.Run("valid settings pass", func(t *testing.T) {
		s := valid()
		assert.NoError(t, s.Validate())
	})

	t.Run("duplicate zone key rejected", func(t *testing.T) {
		s := valid()
		s.Zones = append(s.Zones, ShippingZone{ZoneKey: "dhaka", FeeBDT: 10, Cities: []string{"Savar"}})
		assert.Error(t, s.Validate())
	})

	t.Run("empty zone key rejected", func(t *testing.T) {
		s := valid()
		s.Zones[0].ZoneKey = " "
		assert.Error(t, s.Validate())
	})

	t.Run("negative fee rejected", func(t *testing.T) {
		s := valid()
		s.Zones[0].FeeBDT = -1
		assert.Error(t, s.Validate())
	})

	t.Run("second fallback rejected", func(t *testing.T) {
		s := valid()
		s.Zones = append(s.Zones, ShippingZone{ZoneKey: "rest2", FeeBDT: 150})
		assert.Error(t, s.Validate())
	})

	t.Run("cod block referencing unknown zone rejected", func(t *testing.T) {
		s := valid()
		s.COD.BlockZones = []string{"nowhere"}
		assert.Error(t, s.Validate())
	})

	t.Run("negative cod cap rejected", func(t *testing.T) {
		s := valid()
		cap := -1.0
		s.COD.BlockAboveTotal = &cap
		assert.Error(t, s.Validate())
	})
}

func TestInternationalSettingsValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s := InternationalSettings{Rules: []InternationalShippingRule{{Country: "in", BaseFee: 1500}}}
		assert.NoError(t, s.Validate())
	})

	t.Run("bad country code", func(t *testing.T) {
		s := InternationalSettings{Rules: []InternationalShippingRule{{Country: "IND"}}}
		assert.Error(t, s.Validate())
	})

	t.Run("duplicate country", func(t *testing.T) {
		s := InternationalSettings{Rules: []InternationalShippingRule{
			{Country: "IN", BaseFee: 1500},
			{Country: "in", BaseFee: 1600},
		}}
		assert.Error(t, s.Validate())
	})

	t.Run("negative fee", func(t *testing.T) {
		s := InternationalSettings{Rules: []InternationalShippingRule{{Country: "IN", BaseFee: -1}}}
		assert.Error(t, s.Validate())
	})
}

func TestCurrencySettingsValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s := CurrencySettings{
			BaseCurrency:      "BDT",
			AllowedCurrencies: []string{"BDT", "USD"},
			ManualRates:       map[string]float64{"USD": 0.0084},
			Rounding:          Rounding2DP,
		}
		assert.NoError(t, s.Validate())
	})

	t.Run("allowed currency without a rate rejected", func(t *testing.T) {
		s := CurrencySettings{
			BaseCurrency:      "BDT",
			AllowedCurrencies: []string{"USD"},
			ManualRates:       map[string]float64{},
			Rounding:          Rounding0DP,
		}
		assert.Error(t, s.Validate())
	})

	t.Run("non-positive rate rejected", func(t *testing.T) {
		s := CurrencySettings{
			BaseCurrency:      "BDT",
			AllowedCurrencies: []string{"USD"},
			ManualRates:       map[string]float64{"USD": 0},
			Rounding:          Rounding0DP,
		}
		assert.Error(t, s.Validate())
	})

	t.Run("unknown rounding rejected", func(t *testing.T) {
		s := CurrencySettings{BaseCurrency: "BDT", Rounding: "3dp"}
		assert.Error(t, s.Validate())
	})

	t.Run("base never needs a rate", func(t *testing.T) {
		s := CurrencySettings{
			BaseCurrency:      "BDT",
			AllowedCurrencies: []string{"bdt"},
			Rounding:          Rounding0DP,
		}
		assert.NoError(t, s.Validate())
	})
}
