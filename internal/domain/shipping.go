package domain

import (
	"errors"
	"math"
	"strings"
)

// Shipping evaluation errors. All of these are recoverable conditions the
// checkout flow must surface to the customer, never panics.
var (
	ErrNoZoneConfigured       = errors.New("no shipping zone configured for destination")
	ErrInvalidSubtotal        = errors.New("subtotal must be a non-negative finite number")
	ErrUnsupportedDestination = errors.New("no international shipping rule for destination")
	ErrModuleDisabled         = errors.New("shipping module is disabled")
)

// ShippingZone is a named delivery region. Fees and thresholds are authored
// in whole BDT by the admin. A zone with an empty city list is the fallback
// zone: it matches any city no other zone claims.
type ShippingZone struct {
	ZoneKey                    string   `json:"zoneKey"`
	Name                       string   `json:"name"`
	FeeBDT                     int64    `json:"feeBdt"`
	FreeShippingMinSubtotalBDT int64    `json:"freeShippingMinSubtotalBdt"`
	DeliveryETAText            string   `json:"deliveryEtaText"`
	Cities                     []string `json:"cities"`
}

// IsFallback reports whether this zone is the catch-all zone.
func (z *ShippingZone) IsFallback() bool {
	return len(z.Cities) == 0
}

// MatchesCity reports whether the zone explicitly lists the given city.
// Comparison trims whitespace and ignores case. The fallback zone never
// matches explicitly.
func (z *ShippingZone) MatchesCity(city string) bool {
	city = strings.TrimSpace(city)
	for _, c := range z.Cities {
		if strings.EqualFold(strings.TrimSpace(c), city) {
			return true
		}
	}
	return false
}

// ResolveZone maps a delivery city to a shipping zone.
//
// Zones are scanned in their configured order and the first explicit city
// match wins. List order is the deliberate tie-break for a city the admin
// accidentally listed in two zones. When no zone lists the city, the first
// fallback zone (empty city list) is returned. With neither, resolution
// fails with ErrNoZoneConfigured; callers must not fall back to zero-fee
// shipping.
func ResolveZone(city string, zones []ShippingZone) (*ShippingZone, error) {
	for i := range zones {
		if zones[i].IsFallback() {
			continue
		}
		if zones[i].MatchesCity(city) {
			return &zones[i], nil
		}
	}
	// More than one fallback zone is a configuration error the settings
	// validator rejects, but an already-stored snapshot must still resolve
	// deterministically: first in list order wins.
	for i := range zones {
		if zones[i].IsFallback() {
			return &zones[i], nil
		}
	}
	return nil, ErrNoZoneConfigured
}

// FeeResult is the outcome of a fee computation.
type FeeResult struct {
	Fee          float64 `json:"fee"`
	FreeShipping bool    `json:"freeShipping"`
}

func validSubtotal(subtotal float64) bool {
	return subtotal >= 0 && !math.IsInf(subtotal, 0) && !math.IsNaN(subtotal)
}

// ComputeFee computes the shipping fee for a zone and order subtotal.
// The free-shipping threshold is inclusive: subtotal == threshold ships free.
// A threshold of 0 means no free-shipping override for the zone.
func ComputeFee(zone *ShippingZone, subtotal float64) (FeeResult, error) {
	if !validSubtotal(subtotal) {
		return FeeResult{}, ErrInvalidSubtotal
	}
	if zone.FreeShippingMinSubtotalBDT > 0 && subtotal >= float64(zone.FreeShippingMinSubtotalBDT) {
		return FeeResult{Fee: 0, FreeShipping: true}, nil
	}
	return FeeResult{Fee: float64(zone.FeeBDT)}, nil
}

// CODRules configures when cash-on-delivery is offered.
type CODRules struct {
	AllowForAll     bool     `json:"allowForAll"`
	BlockAboveTotal *float64 `json:"blockIfOrderTotalAbove"`
	BlockZones      []string `json:"blockZones"`
}

// Eligible decides whether COD is permitted for an order total and resolved
// zone. The zone block is the strictest rule and short-circuits everything
// else; the checks are conjunctive, so "no COD over 20,000 BDT" and "never
// COD to zone X" both hold at once.
func (r CODRules) Eligible(orderTotal float64, zoneKey string) bool {
	for _, blocked := range r.BlockZones {
		if blocked == zoneKey {
			return false
		}
	}
	if !r.AllowForAll {
		return false
	}
	if r.BlockAboveTotal != nil && orderTotal > *r.BlockAboveTotal {
		return false
	}
	return true
}

// InternationalShippingRule is a per-country shipping override. International
// orders never merge with the domestic zone list.
type InternationalShippingRule struct {
	Country                 string  `json:"country"` // ISO 3166-1 alpha-2
	Currency                string  `json:"currency"`
	BaseFee                 float64 `json:"baseFee"`
	FreeShippingMinSubtotal float64 `json:"freeShippingMinSubtotal"`
}

// ShippingSettings is the domestic (Bangladesh) shipping configuration
// snapshot the evaluator reads per order computation.
type ShippingSettings struct {
	Enabled bool                `json:"enabled"`
	Zones   []ShippingZone      `json:"zones"`
	COD     CODRules            `json:"cod"`
	Address AddressRequirements `json:"addressRequirements"`
}

// Quote resolves the zone for a domestic destination and computes its fee.
func (s *ShippingSettings) Quote(city string, subtotal float64) (*ShippingZone, FeeResult, error) {
	if !s.Enabled {
		return nil, FeeResult{}, ErrModuleDisabled
	}
	if !validSubtotal(subtotal) {
		return nil, FeeResult{}, ErrInvalidSubtotal
	}
	zone, err := ResolveZone(city, s.Zones)
	if err != nil {
		return nil, FeeResult{}, err
	}
	res, err := ComputeFee(zone, subtotal)
	if err != nil {
		return nil, FeeResult{}, err
	}
	return zone, res, nil
}

// InternationalSettings is the cross-border shipping configuration.
// Only a default ETA text exists; there is no default fee, so a destination
// without an explicit rule is a hard failure, never an implicit zero.
type InternationalSettings struct {
	Enabled        bool                        `json:"enabled"`
	Rules          []InternationalShippingRule `json:"rules"`
	DefaultETAText string                      `json:"defaultEtaText"`
}

// Rule returns the rule for a country code (exact match, case-insensitive).
func (s *InternationalSettings) Rule(country string) (*InternationalShippingRule, bool) {
	country = strings.ToUpper(strings.TrimSpace(country))
	for i := range s.Rules {
		if strings.ToUpper(strings.TrimSpace(s.Rules[i].Country)) == country {
			return &s.Rules[i], true
		}
	}
	return nil, false
}

// Quote computes the shipping fee for an international destination.
func (s *InternationalSettings) Quote(country string, subtotal float64) (*InternationalShippingRule, FeeResult, error) {
	if !s.Enabled {
		return nil, FeeResult{}, ErrModuleDisabled
	}
	if !validSubtotal(subtotal) {
		return nil, FeeResult{}, ErrInvalidSubtotal
	}
	rule, ok := s.Rule(country)
	if !ok {
		return nil, FeeResult{}, ErrUnsupportedDestination
	}
	if rule.FreeShippingMinSubtotal > 0 && subtotal >= rule.FreeShippingMinSubtotal {
		return rule, FeeResult{Fee: 0, FreeShipping: true}, nil
	}
	return rule, FeeResult{Fee: rule.BaseFee}, nil
}

// AddressRequirements toggles which checkout address fields are mandatory.
// Pure validation configuration; it never feeds the fee computation.
type AddressRequirements struct {
	Division bool `json:"division"`
	District bool `json:"district"`
	Thana    bool `json:"thana"`
	Area     bool `json:"area"`
	Zip      bool `json:"zip"`
}

// Missing returns the names of required address fields absent or blank in
// the submitted address.
func (a AddressRequirements) Missing(addr JSONB) []string {
	var missing []string
	check := func(required bool, field string) {
		if !required {
			return
		}
		v, ok := addr[field].(string)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	check(a.Division, "division")
	check(a.District, "district")
	check(a.Thana, "thana")
	check(a.Area, "area")
	check(a.Zip, "zip")
	return missing
}
