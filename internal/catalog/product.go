package catalog

import (
	"time"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/pricing"
)

// Product is the catalog aggregate, persisted as a single document. Price is
// the normalized base price; Tiers hold quantity-banded overrides resolved at
// cart time. Rates are the conversion rates the prices were normalized with.
type Product struct {
	ID            string            `json:"id"`
	Slug          string            `json:"slug"`
	Title         string            `json:"title"`
	Category      string            `json:"category,omitempty"`
	Description   string            `json:"description,omitempty"`
	Images        []string          `json:"images,omitempty"`
	InputCurrency currency.Currency `json:"inputCurrency"`
	Price         currency.Money    `json:"price"`
	Tiers         []pricing.Tier    `json:"tiers,omitempty"`
	Rates         currency.Rates    `json:"rates"`
	Colors        []string          `json:"colors,omitempty"`
	Sizes         []string          `json:"sizes,omitempty"`
	Active        bool              `json:"active"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// UnitPriceFor resolves the unit price for an ordered quantity, falling back
// to the base price when no tier covers it.
func (p *Product) UnitPriceFor(qty int) currency.Money {
	return pricing.ResolveUnitPrice(qty, p.Tiers, p.Price)
}
