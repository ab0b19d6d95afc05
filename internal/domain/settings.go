package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Settings store keys. Each key holds one opaque JSON blob that replaces
// the previous snapshot wholesale on save.
const (
	SettingShippingBD    = "shipping.bd"
	SettingShippingIntl  = "shipping.international"
	SettingCurrency      = "currency.settings"
	SettingMarqueeCoupon = "marquee.coupon"
)

var ErrSettingNotFound = errors.New("setting not found")

// SettingsRepository persists opaque settings blobs keyed by string.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (RawJSON, error)
	Upsert(ctx context.Context, key string, value RawJSON) error
	Delete(ctx context.Context, key string) error
}

// SettingsSnapshot is the immutable configuration the evaluator reads per
// order computation. It is shared by reference across concurrent requests;
// nothing mutates it after load.
type SettingsSnapshot struct {
	Shipping      ShippingSettings      `json:"shipping"`
	International InternationalSettings `json:"international"`
	Currency      CurrencySettings      `json:"currency"`
}

// DefaultShippingSettings returns the out-of-the-box domestic configuration.
func DefaultShippingSettings() ShippingSettings {
	return ShippingSettings{
		Enabled: true,
		Zones: []ShippingZone{
			{ZoneKey: "dhaka", Name: "Inside Dhaka", FeeBDT: 60, DeliveryETAText: "1-2 days", Cities: []string{"Dhaka"}},
			{ZoneKey: "outside_dhaka", Name: "Outside Dhaka", FeeBDT: 120, DeliveryETAText: "3-5 days"},
		},
		COD: CODRules{AllowForAll: true},
		Address: AddressRequirements{
			Division: true,
			District: true,
		},
	}
}

// DefaultInternationalSettings returns the out-of-the-box cross-border
// configuration: disabled, no rules.
func DefaultInternationalSettings() InternationalSettings {
	return InternationalSettings{DefaultETAText: "10-21 days"}
}

// DefaultCurrencySettings returns the out-of-the-box currency configuration.
func DefaultCurrencySettings() CurrencySettings {
	return CurrencySettings{
		BaseCurrency:      "BDT",
		AllowedCurrencies: []string{"BDT"},
		ManualRates:       map[string]float64{},
		Rounding:          Rounding0DP,
	}
}

// DecodeShippingSettings unmarshals a stored blob over the defaults, so any
// key the blob omits keeps its default value. A nil blob yields defaults.
func DecodeShippingSettings(raw RawJSON) (ShippingSettings, error) {
	s := DefaultShippingSettings()
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return ShippingSettings{}, fmt.Errorf("decode %s: %w", SettingShippingBD, err)
	}
	return s, nil
}

func DecodeInternationalSettings(raw RawJSON) (InternationalSettings, error) {
	s := DefaultInternationalSettings()
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return InternationalSettings{}, fmt.Errorf("decode %s: %w", SettingShippingIntl, err)
	}
	return s, nil
}

func DecodeCurrencySettings(raw RawJSON) (CurrencySettings, error) {
	s := DefaultCurrencySettings()
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return CurrencySettings{}, fmt.Errorf("decode %s: %w", SettingCurrency, err)
	}
	// Rate keys are matched case-insensitively everywhere else.
	rates := make(map[string]float64, len(s.ManualRates))
	for code, rate := range s.ManualRates {
		rates[normalizeCurrency(code)] = rate
	}
	s.ManualRates = rates
	return s, nil
}

// Validate rejects a domestic shipping snapshot before it reaches the store:
// zone keys must be unique, at most one zone may be the fallback, and fees
// and thresholds are never negative.
func (s *ShippingSettings) Validate() error {
	seen := make(map[string]bool, len(s.Zones))
	fallbacks := 0
	for i := range s.Zones {
		z := &s.Zones[i]
		key := strings.TrimSpace(z.ZoneKey)
		if key == "" {
			return fmt.Errorf("zone %d: zone key is required", i)
		}
		if seen[key] {
			return fmt.Errorf("duplicate zone key %q", key)
		}
		seen[key] = true
		if z.FeeBDT < 0 {
			return fmt.Errorf("zone %q: fee must not be negative", key)
		}
		if z.FreeShippingMinSubtotalBDT < 0 {
			return fmt.Errorf("zone %q: free shipping threshold must not be negative", key)
		}
		if z.IsFallback() {
			fallbacks++
		}
	}
	if fallbacks > 1 {
		return fmt.Errorf("at most one fallback zone is allowed, found %d", fallbacks)
	}
	if s.COD.BlockAboveTotal != nil && *s.COD.BlockAboveTotal < 0 {
		return fmt.Errorf("cod order total limit must not be negative")
	}
	for _, zoneKey := range s.COD.BlockZones {
		if !seen[zoneKey] {
			return fmt.Errorf("cod block references unknown zone %q", zoneKey)
		}
	}
	return nil
}

func (s *InternationalSettings) Validate() error {
	seen := make(map[string]bool, len(s.Rules))
	for i := range s.Rules {
		r := &s.Rules[i]
		country := strings.ToUpper(strings.TrimSpace(r.Country))
		if len(country) != 2 {
			return fmt.Errorf("rule %d: country must be an ISO 3166-1 alpha-2 code", i)
		}
		if seen[country] {
			return fmt.Errorf("duplicate international rule for %q", country)
		}
		seen[country] = true
		if r.BaseFee < 0 {
			return fmt.Errorf("rule %q: base fee must not be negative", country)
		}
		if r.FreeShippingMinSubtotal < 0 {
			return fmt.Errorf("rule %q: free shipping threshold must not be negative", country)
		}
	}
	return nil
}

// Validate requires a manual rate for every allowed currency except the base.
func (c *CurrencySettings) Validate() error {
	base := normalizeCurrency(c.BaseCurrency)
	if base == "" {
		return fmt.Errorf("base currency is required")
	}
	if c.Rounding != Rounding0DP && c.Rounding != Rounding2DP {
		return fmt.Errorf("rounding must be %q or %q", Rounding0DP, Rounding2DP)
	}
	for _, code := range c.AllowedCurrencies {
		code = normalizeCurrency(code)
		if code == base {
			continue
		}
		rate, ok := c.ManualRates[code]
		if !ok {
			return fmt.Errorf("missing manual rate for allowed currency %q", code)
		}
		if rate <= 0 {
			return fmt.Errorf("manual rate for %q must be positive", code)
		}
	}
	return nil
}
