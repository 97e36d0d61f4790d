package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/common"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
)

// AdminHandler manages products from the back office.
type AdminHandler struct {
	Svc      *Service
	Validate *validator.Validate
}

type tierRequest struct {
	MinQty int             `json:"minQty" validate:"required,gte=1"`
	MaxQty int             `json:"maxQty" validate:"gte=0"`
	Price  decimal.Decimal `json:"price"`
}

type upsertProductRequest struct {
	Slug          string          `json:"slug" validate:"required,min=2,max=120"`
	Title         string          `json:"title" validate:"required,min=2,max=200"`
	Category      string          `json:"category" validate:"max=80"`
	Description   string          `json:"description"`
	Images        []string        `json:"images" validate:"dive,url"`
	Colors        []string        `json:"colors"`
	Sizes         []string        `json:"sizes"`
	InputCurrency string          `json:"inputCurrency" validate:"required"`
	BasePrice     decimal.Decimal `json:"basePrice"`
	Tiers         []tierRequest   `json:"tiers" validate:"dive"`
	Rates         currency.Rates  `json:"rates"`
	Active        bool            `json:"active"`
}

// Upsert creates or replaces a product, normalizing all prices into the
// three settlement currencies.
func (h *AdminHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	var req upsertProductRequest
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
	input, err := currency.Parse(req.InputCurrency)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	tiers := make([]TierInput, 0, len(req.Tiers))
	for _, t := range req.Tiers {
		tiers = append(tiers, TierInput{MinQty: t.MinQty, MaxQty: t.MaxQty, Price: t.Price})
	}

	p, err := h.Svc.Upsert(r.Context(), ProductInput{
		Slug:          req.Slug,
		Title:         req.Title,
		Category:      req.Category,
		Description:   req.Description,
		Images:        req.Images,
		Colors:        req.Colors,
		Sizes:         req.Sizes,
		InputCurrency: input,
		BasePrice:     req.BasePrice,
		Tiers:         tiers,
		Rates:         req.Rates,
		Active:        req.Active,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidProduct) {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to save product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}
