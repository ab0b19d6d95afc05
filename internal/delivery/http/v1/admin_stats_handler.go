package v1

import (
	"net/http"
	"time"

	"ghorihut-backend/internal/domain"
	"ghorihut-backend/pkg/utils"
)

type AdminStatsHandler struct {
	statsRepo domain.StatsRepository
}

func NewAdminStatsHandler(statsRepo domain.StatsRepository) *AdminStatsHandler {
	return &AdminStatsHandler{statsRepo: statsRepo}
}

func (h *AdminStatsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsRepo.GetDashboardStats(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

// GetDailySales returns per-day order counts and revenue for a date range.
// Defaults to the last 30 days.
func (h *AdminStatsHandler) GetDailySales(w http.ResponseWriter, r *http.Request) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	q := r.URL.Query()
	if s := q.Get("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		start = t
	}
	if e := q.Get("end"); e != "" {
		t, err := time.Parse("2006-01-02", e)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
			return
		}
		// Inclusive end date.
		end = t.AddDate(0, 0, 1)
	}
	if !start.Before(end) {
		utils.WriteError(w, http.StatusBadRequest, "start must be before end")
		return
	}

	sales, err := h.statsRepo.GetDailySales(r.Context(), start, end)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load sales")
		return
	}
	utils.WriteJSON(w, http.StatusOK, sales)
}
