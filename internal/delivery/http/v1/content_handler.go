package v1

import (
	"errors"
	"io"
	"net/http"
	"time"

	"ghorihut-backend/internal/domain"
	"ghorihut-backend/internal/usecase"
	"ghorihut-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type ContentHandler struct {
	contentUC usecase.ContentUsecase
	couponUC  *usecase.CouponUsecase
}

func NewContentHandler(contentUC usecase.ContentUsecase, couponUC *usecase.CouponUsecase) *ContentHandler {
	return &ContentHandler{contentUC: contentUC, couponUC: couponUC}
}

// GetContent serves an active content block to the storefront. Inactive or
// out-of-schedule blocks are indistinguishable from missing ones.
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	block, err := h.contentUC.GetActiveContent(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrContentNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Content not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load content")
		return
	}
	utils.WriteJSON(w, http.StatusOK, block)
}

// GetMarquee returns the marquee ticker payload: the scheduled ticker text
// plus the currently promoted coupon, already re-verified against the
// coupons table.
func (h *ContentHandler) GetMarquee(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{}

	if block, err := h.contentUC.GetActiveContent(r.Context(), "marquee"); err == nil {
		resp["content"] = block.Content
	}

	promo, err := h.couponUC.PromotedCoupon(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load marquee")
		return
	}
	if promo != nil {
		resp["coupon"] = promo
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

// --- Admin ---

func (h *ContentHandler) GetContentAdmin(w http.ResponseWriter, r *http.Request) {
	block, err := h.contentUC.GetContent(r.Context(), r.PathValue("key"))
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Content not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, block)
}

func (h *ContentHandler) UpsertContent(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(body) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Request body required")
		return
	}

	block, err := h.contentUC.UpsertContent(r.Context(), key, domain.RawJSON(body))
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save content")
		return
	}
	utils.WriteJSON(w, http.StatusOK, block)
}

type scheduleReq struct {
	IsActive bool       `json:"isActive"`
	StartAt  *time.Time `json:"startAt"`
	EndAt    *time.Time `json:"endAt"`
}

func (h *ContentHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.contentUC.UpdateSchedule(r.Context(), r.PathValue("key"), req.IsActive, req.StartAt, req.EndAt); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update schedule")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
