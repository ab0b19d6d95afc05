package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCurrencySettings() CurrencySettings {
	return CurrencySettings{
		BaseCurrency:      "BDT",
		AllowedCurrencies: []string{"BDT", "USD", "EUR"},
		ManualRates:       map[string]float64{"USD": 0.0084, "EUR": 0.0077},
		Rounding:          Rounding2DP,
	}
}

func TestCurrencyConvert(t *testing.T) {
	c := testCurrencySettings()

	t.Run("base currency returned untouched", func(t *testing.T) {
		got, err := c.Convert(1234.5678, "BDT")
		require.NoError(t, err)
		assert.Equal(t, 1234.5678, got)
	})

	t.Run("base currency match ignores case and spaces", func(t *testing.T) {
		got, err := c.Convert(99.99, " bdt ")
		require.NoError(t, err)
		assert.Equal(t, 99.99, got)
	})

	t.Run("converts with manual rate and rounds half up to 2dp", func(t *testing.T) {
		// 1000 * 0.0084 = 8.4
		got, err := c.Convert(1000, "USD")
		require.NoError(t, err)
		assert.Equal(t, 8.4, got)

		// 601 * 0.0084 = 5.0484 -> 5.05
		got, err = c.Convert(601, "usd")
		require.NoError(t, err)
		assert.Equal(t, 5.05, got)
	})

	t.Run("exact half rounds up", func(t *testing.T) {
		c := CurrencySettings{BaseCurrency: "BDT", ManualRates: map[string]float64{"USD": 0.5}, Rounding: Rounding2DP}
		// 0.01 * 0.5 = 0.005 -> 0.01
		got, err := c.Convert(0.01, "USD")
		require.NoError(t, err)
		assert.Equal(t, 0.01, got)
	})

	t.Run("0dp rounding", func(t *testing.T) {
		c := testCurrencySettings()
		c.Rounding = Rounding0DP
		// 1000 * 0.0084 = 8.4 -> 8
		got, err := c.Convert(1000, "USD")
		require.NoError(t, err)
		assert.Equal(t, 8.0, got)

		// 60 * 0.0084 = 0.504, floor(0.504 + 0.5) = 1
		got, err = c.Convert(60, "USD")
		require.NoError(t, err)
		assert.Equal(t, 1.0, got)
	})

	t.Run("missing rate fails explicitly", func(t *testing.T) {
		_, err := c.Convert(100, "GBP")
		assert.ErrorIs(t, err, ErrUnknownCurrency)
	})

	t.Run("round trip stays within rounding tolerance", func(t *testing.T) {
		amount := 2500.0
		usd, err := c.Convert(amount, "USD")
		require.NoError(t, err)

		rate, err := c.Rate("USD")
		require.NoError(t, err)
		back := usd / rate
		// Tolerance from rounding USD to cents: half a cent back in BDT.
		assert.InDelta(t, amount, back, 0.005/rate+1e-9)
	})
}

func TestCurrencyAllowed(t *testing.T) {
	c := testCurrencySettings()
	assert.True(t, c.Allowed("usd"))
	assert.True(t, c.Allowed("BDT"))
	assert.False(t, c.Allowed("GBP"))
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 3.0, roundHalfUp(2.5, Rounding0DP))
	assert.Equal(t, 2.0, roundHalfUp(2.4999, Rounding0DP))
	assert.Equal(t, 2.35, roundHalfUp(2.346, Rounding2DP))
	assert.Equal(t, 0.0, roundHalfUp(0, Rounding2DP))
	assert.False(t, math.Signbit(roundHalfUp(0, Rounding0DP)))
}
