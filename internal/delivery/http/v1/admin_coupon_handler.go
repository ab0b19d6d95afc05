package v1

import (
	"errors"
	"net/http"

	"ghorihut-backend/internal/domain"
	"ghorihut-backend/internal/usecase"
	"ghorihut-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type AdminCouponHandler struct {
	couponUC *usecase.CouponUsecase
}

func NewAdminCouponHandler(couponUC *usecase.CouponUsecase) *AdminCouponHandler {
	return &AdminCouponHandler{couponUC: couponUC}
}

func (h *AdminCouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 20)
	offset := utils.ParseInt(r.URL.Query().Get("offset"), 0)

	coupons, total, err := h.couponUC.ListCoupons(r.Context(), limit, offset)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list coupons")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"coupons": coupons,
		"total":   total,
	})
}

func (h *AdminCouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.couponUC.GetCoupon(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, coupon)
}

func (h *AdminCouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req usecase.CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	coupon, err := h.couponUC.CreateCoupon(r.Context(), req)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusCreated, coupon)
}

func (h *AdminCouponHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req usecase.CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.couponUC.UpdateCoupon(r.Context(), r.PathValue("id"), req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *AdminCouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.couponUC.DeleteCoupon(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// PromoteCoupon puts a coupon into the storefront marquee.
func (h *AdminCouponHandler) PromoteCoupon(w http.ResponseWriter, r *http.Request) {
	promo, err := h.couponUC.PromoteCoupon(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, promo)
}

// DemoteCoupon clears the marquee promotion, whichever coupon holds it.
func (h *AdminCouponHandler) DemoteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.couponUC.DemoteCoupon(r.Context()); err != nil {
		if errors.Is(err, domain.ErrSettingNotFound) {
			utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "no promotion active"})
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to demote coupon")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "demoted"})
}
