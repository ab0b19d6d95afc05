package v1

import (
	"errors"
	"net/http"

	"ghorihut-backend/internal/domain"
	"ghorihut-backend/internal/usecase"
	"ghorihut-backend/pkg/logger"
	"ghorihut-backend/pkg/utils"

	"github.com/goccy/go-json"
)

// QuoteHandler exposes the shipping rule evaluator to the storefront so the
// checkout page can show fee, COD availability and ETA before an order is
// placed.
type QuoteHandler struct {
	quoteUC *usecase.QuoteUsecase
}

func NewQuoteHandler(quoteUC *usecase.QuoteUsecase) *QuoteHandler {
	return &QuoteHandler{quoteUC: quoteUC}
}

func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req usecase.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.quoteUC.Quote(r.Context(), req)
	if err != nil {
		status, msg := quoteErrorStatus(err)
		if status >= 500 {
			logger.WithContext(r.Context()).Error().Err(err).Str("city", req.City).
				Str("country", req.Country).Msg("Shipping quote failed")
		}
		utils.WriteError(w, status, msg)
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

// quoteErrorStatus maps evaluator errors to HTTP responses. Configuration
// gaps are server-side problems; bad destinations and amounts are the
// caller's.
func quoteErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrModuleDisabled):
		return http.StatusServiceUnavailable, "Shipping is temporarily unavailable"
	case errors.Is(err, domain.ErrNoZoneConfigured):
		return http.StatusServiceUnavailable, "Shipping is not configured for this destination"
	case errors.Is(err, domain.ErrUnsupportedDestination):
		return http.StatusUnprocessableEntity, "We do not ship to this destination"
	case errors.Is(err, domain.ErrUnknownCurrency):
		return http.StatusBadRequest, "Unsupported display currency"
	case errors.Is(err, domain.ErrInvalidSubtotal):
		return http.StatusBadRequest, "Invalid order subtotal"
	default:
		return http.StatusInternalServerError, "Failed to compute shipping quote"
	}
}
