package coupon

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/common"
)

// AdminHandler manages coupon rules from the back office.
type AdminHandler struct {
	Store    Store
	Validate *validator.Validate
}

type upsertCouponRequest struct {
	Code      string     `json:"code" validate:"required,min=2,max=32"`
	RateBps   int        `json:"rateBps" validate:"required,gt=0,lte=10000"`
	ValidFrom *time.Time `json:"validFrom"`
	ValidTo   *time.Time `json:"validTo"`
	Active    bool       `json:"active"`
}

// Upsert creates or replaces a coupon rule.
func (h *AdminHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon store not configured", nil)
		return
	}
	var req upsertCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.StructCtx(r.Context(), req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
	}
	if req.ValidFrom != nil && req.ValidTo != nil && req.ValidTo.Before(*req.ValidFrom) {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "validTo must not precede validFrom", nil)
		return
	}
	rule := &Rule{
		Code:      NormalizeCode(req.Code),
		RateBps:   req.RateBps,
		ValidFrom: req.ValidFrom,
		ValidTo:   req.ValidTo,
		Active:    req.Active,
	}
	if err := h.Store.Upsert(r.Context(), rule); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to save coupon", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rule})
}

// Get returns one coupon rule by code.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon store not configured", nil)
		return
	}
	code := NormalizeCode(r.URL.Query().Get("code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	rule, err := h.Store.FindByCode(r.Context(), code)
	if err != nil {
		if err == ErrCouponNotFound {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "coupon not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load coupon", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rule})
}
