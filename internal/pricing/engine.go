package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
)

// Tier describes a quantity-banded unit price. MaxQty of zero means the band
// is unbounded above.
type Tier struct {
	MinQty int            `json:"minQty"`
	MaxQty int            `json:"maxQty,omitempty"`
	Price  currency.Money `json:"price"`
}

// Contains reports whether qty falls inside the tier's band.
func (t Tier) Contains(qty int) bool {
	if qty < t.MinQty {
		return false
	}
	return t.MaxQty == 0 || qty <= t.MaxQty
}

// ResolveUnitPrice selects the unit price for the ordered quantity. Tiers are
// scanned in stored order and the first band containing qty wins; overlapping
// bands therefore resolve to the earlier one. When no band matches the base
// price is returned unchanged.
func ResolveUnitPrice(qty int, tiers []Tier, base currency.Money) currency.Money {
	if qty < 1 {
		return base
	}
	for _, tier := range tiers {
		if tier.Contains(qty) {
			return tier.Price
		}
	}
	return base
}

// Item describes a line item used for totals calculation. TotalPrice is the
// frozen line total computed when the item entered the cart.
type Item struct {
	Qty        int
	TotalPrice currency.Money
}

// Summary aggregates computed order totals. Every component carries all three
// currencies; per-currency figures are summed independently, never converted
// across each other.
type Summary struct {
	Subtotal currency.Money
	Shipping currency.Money
	Discount currency.Money
	Total    currency.Money
}

// Compute calculates order totals given frozen line prices, a shipping rate
// and a fractional discount rate.
func Compute(items []Item, shipping currency.Money, discountRate decimal.Decimal) Summary {
	subtotal := currency.Zero()
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal = subtotal.Add(it.TotalPrice)
	}
	discount := subtotal.MulRate(discountRate)
	total := subtotal.Add(shipping).Sub(discount)
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    total.Round(),
	}
}
