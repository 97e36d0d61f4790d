package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/common"
)

// Handler exposes customer-facing order endpoints.
type Handler struct {
	Svc     *Service
	PerPage int
}

// List returns the requesting customer's orders, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order service not configured", nil)
		return
	}
	customerID, ok := common.CustomerID(r.Context())
	if !ok || customerID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "customer identification required", nil)
		return
	}
	perPageDefault := h.PerPage
	if perPageDefault <= 0 {
		perPageDefault = 20
	}
	page, perPage := common.ParsePagination(r, perPageDefault)
	orders, total, err := h.Svc.List(r.Context(), customerID, page, perPage)
	if err != nil {
		writeError(w, err)
		return
	}
	response := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		response = append(response, orderSummary(o))
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": response,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: int(total),
		},
	})
}

// Get returns one of the requesting customer's orders in full.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}

// Tracking returns the append-only tracking history for an order.
func (h *Handler) Tracking(w http.ResponseWriter, r *http.Request) {
	o, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"orderId":         o.ID,
			"status":          o.Status,
			"trackingHistory": o.TrackingHistory,
		},
	})
}

func (h *Handler) loadOwned(w http.ResponseWriter, r *http.Request) (*Order, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order service not configured", nil)
		return nil, false
	}
	customerID, ok := common.CustomerID(r.Context())
	if !ok || customerID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "customer identification required", nil)
		return nil, false
	}
	orderID := chi.URLParam(r, "orderId")
	o, err := h.Svc.Get(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	// Order ownership is part of the lookup key; a foreign order is simply
	// not found from this customer's perspective.
	if o.CustomerID != customerID {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
		return nil, false
	}
	return o, true
}

func orderSummary(o *Order) map[string]any {
	return map[string]any{
		"id":              o.ID,
		"status":          o.Status,
		"shippingMethod":  o.ShippingMethod,
		"paymentCurrency": o.PaymentCurrency,
		"subTotal":        o.SubTotal,
		"shippingRate":    o.ShippingRate,
		"totalDiscount":   o.TotalDiscount,
		"totalAmount":     o.TotalAmount,
		"createdAt":       o.CreatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
	case errors.Is(err, ErrOrderNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
	case errors.Is(err, ErrEmptyOrder):
		common.JSONError(w, http.StatusBadRequest, "EMPTY_ORDER", "no items to order", nil)
	case errors.Is(err, ErrInvalidStatus):
		common.JSONError(w, http.StatusBadRequest, "INVALID_STATUS", err.Error(), nil)
	case errors.Is(err, ErrInvalidTransition):
		common.JSONError(w, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
	case errors.Is(err, ErrConflict):
		common.JSONError(w, http.StatusConflict, "CONFLICT", "order was modified concurrently, retry", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		if appErr, ok := common.AsAppError(err); ok {
			status := appErr.HTTPStatus
			if status == 0 {
				status = http.StatusBadRequest
			}
			common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order operation failed", nil)
	}
}
