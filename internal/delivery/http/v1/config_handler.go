package v1

import (
	"net/http"
	"time"

	"ghorihut-backend/internal/domain"
	"ghorihut-backend/internal/usecase"
	"ghorihut-backend/pkg/cache"
	"ghorihut-backend/pkg/utils"
)

// ConfigHandler serves the storefront bootstrap payload: fixed enums plus
// the configured shipping zones and currencies, so the frontend never
// hardcodes either.
type ConfigHandler struct {
	cache      cache.CacheService
	settingsUC *usecase.SettingsUsecase
	enumsTTL   time.Duration
}

func NewConfigHandler(c cache.CacheService, settingsUC *usecase.SettingsUsecase, enumsTTL time.Duration) *ConfigHandler {
	return &ConfigHandler{cache: c, settingsUC: settingsUC, enumsTTL: enumsTTL}
}

func (h *ConfigHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if val, found := h.cache.Get(usecase.EnumsCacheKey); found {
		utils.WriteJSON(w, http.StatusOK, val)
		return
	}

	snap, err := h.settingsUC.Snapshot(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load configuration")
		return
	}

	type zoneInfo struct {
		ZoneKey string `json:"zoneKey"`
		Name    string `json:"name"`
		ETAText string `json:"etaText,omitempty"`
	}
	zones := make([]zoneInfo, 0, len(snap.Shipping.Zones))
	for _, z := range snap.Shipping.Zones {
		zones = append(zones, zoneInfo{ZoneKey: z.ZoneKey, Name: z.Name, ETAText: z.DeliveryETAText})
	}

	countries := make([]string, 0, len(snap.International.Rules))
	for _, rule := range snap.International.Rules {
		countries = append(countries, rule.Country)
	}

	response := map[string]interface{}{
		"orderStatuses":      domain.OrderStatuses,
		"paymentStatuses":    domain.PaymentStatuses,
		"paymentMethods":     domain.PaymentMethods,
		"shippingZones":      zones,
		"shippingCountries":  countries,
		"baseCurrency":       snap.Currency.BaseCurrency,
		"allowedCurrencies":  snap.Currency.AllowedCurrencies,
		"shippingEnabled":    snap.Shipping.Enabled,
		"internationalShips": snap.International.Enabled,
	}

	h.cache.Set(usecase.EnumsCacheKey, response, h.enumsTTL)
	utils.WriteJSON(w, http.StatusOK, response)
}
