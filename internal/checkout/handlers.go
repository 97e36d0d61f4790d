package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/cart"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/catalog"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/common"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/order"
)

// Handler exposes the checkout endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type inlineItemRequest struct {
	Slug     string `json:"slug" validate:"required"`
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

type checkoutRequest struct {
	CartID          string              `json:"cartId"`
	Items           []inlineItemRequest `json:"items" validate:"dive"`
	ShippingMethod  string              `json:"shippingMethod" validate:"required,oneof=air sea"`
	DeliveryType    string              `json:"deliveryType"`
	PaymentMethod   string              `json:"paymentMethod"`
	PaymentCurrency string              `json:"paymentCurrency" validate:"omitempty,oneof=BDT USD CNY"`
	CouponCode      string              `json:"couponCode"`
}

// Create places an order from a cart or an inline item list.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	customerID, ok := common.CustomerID(r.Context())
	if !ok || customerID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "customer identification required", nil)
		return
	}

	var req checkoutRequest
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

	var payCur currency.Currency
	if req.PaymentCurrency != "" {
		payCur, _ = currency.Parse(req.PaymentCurrency)
	}

	items := make([]InlineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, InlineItem{Slug: it.Slug, Color: it.Color, Size: it.Size, Quantity: it.Quantity})
	}

	o, err := h.Svc.Checkout(r.Context(), Input{
		CustomerID:      customerID,
		CartID:          req.CartID,
		Items:           items,
		ShippingMethod:  order.ShippingMethod(req.ShippingMethod),
		DeliveryType:    req.DeliveryType,
		PaymentMethod:   req.PaymentMethod,
		PaymentCurrency: payCur,
		CouponCode:      req.CouponCode,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": o})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyOrder):
		common.JSONError(w, http.StatusBadRequest, "EMPTY_ORDER", "no items to order", nil)
	case errors.Is(err, order.ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, cart.ErrCartNotFound), errors.Is(err, cart.ErrForbidden):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, catalog.ErrProductNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout failed", nil)
	}
}
