package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/catalog"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/common"
)

// Handler exposes the cart endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type addItemRequest struct {
	Slug     string `json:"slug" validate:"required"`
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

// Create opens an empty cart for the requesting customer.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customer(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Create(r.Context(), customerID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create cart", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": c})
}

// Get returns a cart with its running subtotal.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customer(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Get(r.Context(), customerID, chi.URLParam(r, "cartId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"cart":     c,
			"subtotal": c.Subtotal(),
		},
	})
}

// AddItem writes a line into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customer(w, r)
	if !ok {
		return
	}
	var req addItemRequest
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
	c, err := h.Svc.AddItem(r.Context(), customerID, chi.URLParam(r, "cartId"), req.Slug, req.Color, req.Size, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// RemoveItem drops a line from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customer(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.RemoveItem(
		r.Context(),
		customerID,
		chi.URLParam(r, "cartId"),
		chi.URLParam(r, "productId"),
		r.URL.Query().Get("color"),
		r.URL.Query().Get("size"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

func (h *Handler) customer(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return "", false
	}
	customerID, ok := common.CustomerID(r.Context())
	if !ok || customerID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "customer identification required", nil)
		return "", false
	}
	return customerID, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCartNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrForbidden):
		// A foreign cart id reads as missing; the id is the only capability.
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrInvalidQuantity):
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, catalog.ErrProductNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart operation failed", nil)
	}
}
