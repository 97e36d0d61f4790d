package order

import (
	"time"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
)

// ShippingMethod selects the flat-rate shipping lane for an order.
type ShippingMethod string

const (
	ShipAir ShippingMethod = "air"
	ShipSea ShippingMethod = "sea"
)

// Valid reports whether m is a known shipping method.
func (m ShippingMethod) Valid() bool {
	return m == ShipAir || m == ShipSea
}

// LineItem is a frozen snapshot of a cart line. UnitPrice is resolved from the
// product's quantity tiers when the item enters the cart and TotalPrice is
// UnitPrice scaled by Quantity; neither is recomputed if tiers change later.
type LineItem struct {
	ProductID  string         `json:"productId"`
	Color      string         `json:"color,omitempty"`
	Size       string         `json:"size,omitempty"`
	Quantity   int            `json:"quantity"`
	UnitPrice  currency.Money `json:"unitPrice"`
	TotalPrice currency.Money `json:"totalPrice"`
}

// TrackingEntry is one immutable step in an order's tracking history.
type TrackingEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location"`
	Notes     string    `json:"notes"`
}

// Transaction records a single payment against an order.
type Transaction struct {
	ID         string         `json:"id"`
	Method     string         `json:"method"`
	Amount     currency.Money `json:"amount"`
	RecordedAt time.Time      `json:"recordedAt"`
}

// PaymentDetails tracks the payment side of an order.
type PaymentDetails struct {
	Status       string        `json:"status"`
	Transactions []Transaction `json:"transactions"`
}

// Payment status values.
const (
	PaymentPending       = "pending"
	PaymentPaid          = "paid"
	PaymentRefundPending = "refund-pending"
)

// Order is the aggregate root persisted as a single document. Totals satisfy
// totalAmount = subTotal + shippingRate - totalDiscount per currency, computed
// once at creation. TrackingHistory is append-only.
type Order struct {
	ID              string            `json:"id"`
	CustomerID      string            `json:"customerId"`
	LineItems       []LineItem        `json:"lineItems"`
	ShippingMethod  ShippingMethod    `json:"shippingMethod"`
	DeliveryType    string            `json:"deliveryType,omitempty"`
	PaymentMethod   string            `json:"paymentMethod,omitempty"`
	PaymentCurrency currency.Currency `json:"paymentCurrency"`
	Rates           currency.Rates    `json:"rates"`
	CouponCode      string            `json:"couponCode,omitempty"`
	ShippingRate    currency.Money    `json:"shippingRate"`
	TotalDiscount   currency.Money    `json:"totalDiscount"`
	SubTotal        currency.Money    `json:"subTotal"`
	TotalAmount     currency.Money    `json:"totalAmount"`
	Status          Status            `json:"status"`
	TrackingHistory []TrackingEntry   `json:"trackingHistory"`
	PaymentDetails  PaymentDetails    `json:"paymentDetails"`
	DeliveredAt     *time.Time        `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// LastTracking returns the most recent tracking entry, if any.
func (o *Order) LastTracking() (TrackingEntry, bool) {
	if len(o.TrackingHistory) == 0 {
		return TrackingEntry{}, false
	}
	return o.TrackingHistory[len(o.TrackingHistory)-1], true
}
