package cart

import (
	"time"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
)

// Item is one cart line. UnitPrice is resolved from the product's quantity
// tiers when the line is written and never recomputed afterwards; TotalPrice
// is UnitPrice scaled by Quantity.
type Item struct {
	ProductID  string         `json:"productId"`
	Slug       string         `json:"slug"`
	Title      string         `json:"title"`
	Color      string         `json:"color,omitempty"`
	Size       string         `json:"size,omitempty"`
	Quantity   int            `json:"quantity"`
	UnitPrice  currency.Money `json:"unitPrice"`
	TotalPrice currency.Money `json:"totalPrice"`
}

// Cart is a session-scoped collection of frozen lines.
type Cart struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	Items      []Item    `json:"items"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Subtotal sums the frozen line totals.
func (c *Cart) Subtotal() currency.Money {
	sum := currency.Zero()
	for _, it := range c.Items {
		sum = sum.Add(it.TotalPrice)
	}
	return sum
}

func lineKey(productID, color, size string) string {
	return productID + "|" + color + "|" + size
}
