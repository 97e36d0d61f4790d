package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/common"
)

// AdminHandler exposes back-office order management endpoints.
type AdminHandler struct {
	Svc *Service
}

type patchStatusRequest struct {
	Status string `json:"status"`
}

// PatchStatus moves an order to a new status and appends a tracking entry.
// Re-submitting the current status is accepted without growing the history.
func (h *AdminHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order service not configured", nil)
		return
	}
	orderID := chi.URLParam(r, "orderId")

	var req patchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if req.Status == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "status is required", nil)
		return
	}

	next, err := ParseStatus(req.Status)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_STATUS", err.Error(), nil)
		return
	}

	o, appended, err := h.Svc.ApplyStatus(r.Context(), orderID, next)
	if err != nil {
		writeError(w, err)
		return
	}

	body := map[string]any{
		"orderId":  o.ID,
		"status":   o.Status,
		"appended": appended,
	}
	if entry, ok := o.LastTracking(); ok && appended {
		body["trackingEntry"] = entry
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": body})
}

// Get returns any order by id regardless of owner.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order service not configured", nil)
		return
	}
	o, err := h.Svc.Get(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}
