package order

import (
	"fmt"
	"strings"
)

// Status is the closed set of order lifecycle states.
type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusProcessing     Status = "processing"
	StatusShipped        Status = "shipped"
	StatusInTransit      Status = "in-transit"
	StatusOutForDelivery Status = "out-for-delivery"
	StatusDelivered      Status = "delivered"
	StatusCanceled       Status = "canceled"
	StatusReturned       Status = "returned"
)

// ParseStatus converts a status label into a Status, rejecting anything
// outside the enumerated set.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status: %q", value)
	}
	return s, nil
}

// Valid reports whether s belongs to the enumerated state set.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusInTransit, StatusOutForDelivery, StatusDelivered,
		StatusCanceled, StatusReturned:
		return true
	}
	return false
}

// Terminal reports whether no further transitions may leave s.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCanceled, StatusReturned:
		return true
	}
	return false
}

// nextForward maps each state to its successor in the fulfilment chain.
var nextForward = map[Status]Status{
	StatusPending:        StatusConfirmed,
	StatusConfirmed:      StatusProcessing,
	StatusProcessing:     StatusShipped,
	StatusShipped:        StatusInTransit,
	StatusInTransit:      StatusOutForDelivery,
	StatusOutForDelivery: StatusDelivered,
}

// CanTransition reports whether an order in state from may move to state to.
// Forward movement may skip intermediate steps (an admin can confirm and ship
// in one update); canceled and returned are reachable from any non-terminal
// state; terminal states accept nothing.
func CanTransition(from, to Status) bool {
	if from.Terminal() || !to.Valid() || from == to {
		return false
	}
	if to == StatusCanceled || to == StatusReturned {
		return true
	}
	return forwardRank(to) > forwardRank(from)
}

func forwardRank(s Status) int {
	rank := 0
	for cur := StatusPending; ; rank++ {
		if cur == s {
			return rank
		}
		next, ok := nextForward[cur]
		if !ok {
			return -1
		}
		cur = next
	}
}

// trackingTemplate is the fixed location/notes pair appended for a status.
type trackingTemplate struct {
	Location string
	Notes    string
}

var trackingTemplates = map[Status]trackingTemplate{
	StatusPending: {
		Location: "Order Processing Center",
		Notes:    "Order received and pending processing",
	},
	StatusConfirmed: {
		Location: "Order Processing Center",
		Notes:    "Your order has been confirmed.",
	},
	StatusProcessing: {
		Location: "Supplier Warehouse, China",
		Notes:    "Your order is being prepared by the supplier.",
	},
	StatusShipped: {
		Location: "China",
		Notes:    "Your order has been shipped from China.",
	},
	StatusInTransit: {
		Location: "International Transit",
		Notes:    "Your order is on the way to the destination country.",
	},
	StatusOutForDelivery: {
		Location: "Local Delivery Hub",
		Notes:    "Your order is out for delivery.",
	},
	StatusDelivered: {
		Location: "Delivery Address",
		Notes:    "Your order has been delivered.",
	},
	StatusCanceled: {
		Location: "Order System",
		Notes:    "Your order has been canceled.",
	},
	StatusReturned: {
		Location: "Order System",
		Notes:    "Your order has been returned.",
	},
}

// trackingFor builds the tracking entry template for a status.
func trackingFor(s Status) trackingTemplate {
	if tpl, ok := trackingTemplates[s]; ok {
		return tpl
	}
	// Valid() gates every caller; this is only reachable if the state set
	// grows without a matching template.
	return trackingTemplate{
		Location: "Order System",
		Notes:    fmt.Sprintf("Order status updated to %s.", s),
	}
}
