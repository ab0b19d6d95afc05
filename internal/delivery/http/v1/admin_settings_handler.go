package v1

import (
	"io"
	"net/http"

	"ghorihut-backend/internal/domain"
	"ghorihut-backend/internal/usecase"
	"ghorihut-backend/pkg/logger"
	"ghorihut-backend/pkg/utils"
)

// AdminSettingsHandler manages the three evaluator configuration blobs.
// Reads return the decoded settings with defaults resolved; writes replace
// the stored blob wholesale after validation.
type AdminSettingsHandler struct {
	settingsUC *usecase.SettingsUsecase
}

func NewAdminSettingsHandler(settingsUC *usecase.SettingsUsecase) *AdminSettingsHandler {
	return &AdminSettingsHandler{settingsUC: settingsUC}
}

func (h *AdminSettingsHandler) GetShippingSettings(w http.ResponseWriter, r *http.Request) {
	snap, err := h.settingsUC.Snapshot(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap.Shipping)
}

func (h *AdminSettingsHandler) GetInternationalSettings(w http.ResponseWriter, r *http.Request) {
	snap, err := h.settingsUC.Snapshot(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap.International)
}

func (h *AdminSettingsHandler) GetCurrencySettings(w http.ResponseWriter, r *http.Request) {
	snap, err := h.settingsUC.Snapshot(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap.Currency)
}

func (h *AdminSettingsHandler) UpdateShippingSettings(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.readBody(w, r)
	if !ok {
		return
	}
	updated, err := h.settingsUC.UpdateShippingSettings(r.Context(), raw)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.WithContext(r.Context()).Info().Int("zones", len(updated.Zones)).Msg("Shipping settings updated")
	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *AdminSettingsHandler) UpdateInternationalSettings(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.readBody(w, r)
	if !ok {
		return
	}
	updated, err := h.settingsUC.UpdateInternationalSettings(r.Context(), raw)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.WithContext(r.Context()).Info().Int("rules", len(updated.Rules)).Msg("International shipping settings updated")
	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *AdminSettingsHandler) UpdateCurrencySettings(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.readBody(w, r)
	if !ok {
		return
	}
	updated, err := h.settingsUC.UpdateCurrencySettings(r.Context(), raw)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.WithContext(r.Context()).Info().Str("base", updated.BaseCurrency).Msg("Currency settings updated")
	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *AdminSettingsHandler) readBody(w http.ResponseWriter, r *http.Request) (domain.RawJSON, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(body) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Request body required")
		return nil, false
	}
	return domain.RawJSON(body), true
}
