package domain

import (
	"errors"
	"math"
	"strings"
)

var ErrUnknownCurrency = errors.New("currency not present in manual rates")

// Rounding policies for converted display prices.
const (
	Rounding0DP = "0dp"
	Rounding2DP = "2dp"
)

// CurrencySettings holds manually maintained conversion rates anchored on a
// base currency. Every fee and threshold in the system is authored in the
// base currency; conversions exist only for display.
type CurrencySettings struct {
	BaseCurrency      string             `json:"baseCurrency"`
	AllowedCurrencies []string           `json:"allowedCurrencies"`
	ManualRates       map[string]float64 `json:"manualRates"` // 1 base unit -> target units
	Rounding          string             `json:"rounding"`    // "0dp" or "2dp"
}

// Allowed reports whether a currency may be requested for display.
func (c *CurrencySettings) Allowed(currency string) bool {
	currency = normalizeCurrency(currency)
	if currency == normalizeCurrency(c.BaseCurrency) {
		return true
	}
	for _, a := range c.AllowedCurrencies {
		if normalizeCurrency(a) == currency {
			return true
		}
	}
	return false
}

// Convert converts an amount in the base currency to the target currency.
//
// The base currency is returned untouched: it is already canonical and no
// rounding policy applies to it. Any other target multiplies by its manual
// rate and rounds half-up to whole units (0dp) or cents (2dp). The sign of
// the amount is never special-cased; non-negativity is the caller's concern.
func (c *CurrencySettings) Convert(amount float64, target string) (float64, error) {
	target = normalizeCurrency(target)
	if target == normalizeCurrency(c.BaseCurrency) {
		return amount, nil
	}
	rate, ok := c.ManualRates[target]
	if !ok {
		return 0, ErrUnknownCurrency
	}
	return roundHalfUp(amount*rate, c.Rounding), nil
}

// Rate returns the manual rate from the base currency to target.
func (c *CurrencySettings) Rate(target string) (float64, error) {
	rate, ok := c.ManualRates[normalizeCurrency(target)]
	if !ok {
		return 0, ErrUnknownCurrency
	}
	return rate, nil
}

func roundHalfUp(v float64, rounding string) float64 {
	if rounding == Rounding2DP {
		return math.Floor(v*100+0.5) / 100
	}
	return math.Floor(v + 0.5)
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
