package usecase

import (
	"context"
	"strings"

	"ghorihut-backend/internal/domain"
)

// QuoteRequest describes one order's destination and amounts.
// City drives domestic zone resolution; a non-BD Country switches to the
// international rule set instead. OrderTotal feeds the COD check; when the
// caller sends 0 it defaults to subtotal plus fee.
type QuoteRequest struct {
	City            string  `json:"city"`
	Country         string  `json:"country"`
	Subtotal        float64 `json:"subtotal"`
	OrderTotal      float64 `json:"orderTotal"`
	DisplayCurrency string  `json:"displayCurrency"`
}

// QuoteResult is the evaluator output the storefront renders at checkout.
type QuoteResult struct {
	ZoneKey      string   `json:"zoneKey,omitempty"`
	ZoneName     string   `json:"zoneName,omitempty"`
	Country      string   `json:"country,omitempty"`
	Fee          float64  `json:"fee"`
	FreeShipping bool     `json:"freeShipping"`
	CODEligible  bool     `json:"codEligible"`
	ETAText      string   `json:"etaText,omitempty"`
	Currency     string   `json:"currency"`
	DisplayFee   *float64 `json:"displayFee,omitempty"`
	DisplayIn    string   `json:"displayCurrency,omitempty"`
}

// QuoteUsecase runs the shipping rule evaluator against the current
// settings snapshot. The evaluation itself is pure; this layer only loads
// the snapshot and assembles the response.
type QuoteUsecase struct {
	settings *SettingsUsecase
}

func NewQuoteUsecase(settings *SettingsUsecase) *QuoteUsecase {
	return &QuoteUsecase{settings: settings}
}

func isDomestic(country string) bool {
	country = strings.ToUpper(strings.TrimSpace(country))
	return country == "" || country == "BD"
}

// Quote computes zone, fee, COD eligibility and optional display-currency
// conversion for a destination. Every failure is a typed domain error the
// handler maps to a user-facing message; nothing here panics or guesses.
func (u *QuoteUsecase) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	snap, err := u.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return EvaluateQuote(snap, req)
}

// EvaluateQuote is the pure core of Quote: fixed (snapshot, request) inputs
// always produce the same result.
func EvaluateQuote(snap *domain.SettingsSnapshot, req QuoteRequest) (*QuoteResult, error) {
	res := &QuoteResult{Currency: snap.Currency.BaseCurrency}

	if isDomestic(req.Country) {
		zone, fee, err := snap.Shipping.Quote(req.City, req.Subtotal)
		if err != nil {
			return nil, err
		}
		orderTotal := req.OrderTotal
		if orderTotal == 0 {
			orderTotal = req.Subtotal + fee.Fee
		}
		res.ZoneKey = zone.ZoneKey
		res.ZoneName = zone.Name
		res.Fee = fee.Fee
		res.FreeShipping = fee.FreeShipping
		res.ETAText = zone.DeliveryETAText
		res.CODEligible = snap.Shipping.COD.Eligible(orderTotal, zone.ZoneKey)
	} else {
		rule, fee, err := snap.International.Quote(req.Country, req.Subtotal)
		if err != nil {
			return nil, err
		}
		res.Country = rule.Country
		res.Fee = fee.Fee
		res.FreeShipping = fee.FreeShipping
		res.ETAText = snap.International.DefaultETAText
		// COD is settled at a Bangladeshi doorstep; never offered abroad.
		res.CODEligible = false
	}

	if req.DisplayCurrency != "" {
		display, err := snap.Currency.Convert(res.Fee, req.DisplayCurrency)
		if err != nil {
			return nil, err
		}
		res.DisplayFee = &display
		res.DisplayIn = strings.ToUpper(strings.TrimSpace(req.DisplayCurrency))
	}

	return res, nil
}
