package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/events"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/obs"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/pricing"
)

var (
	// ErrEmptyOrder is returned when an order is built with no line items.
	ErrEmptyOrder = errors.New("order has no line items")
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatus is returned for status values outside the enumerated set.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrInvalidTransition is returned when the transition table forbids the move.
	ErrInvalidTransition = errors.New("order status transition not allowed")
	// ErrConflict indicates a concurrent update won the compare-and-set.
	ErrConflict = errors.New("order was modified concurrently")
	// ErrInvalidInput is returned when the provided payload is invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// Locker serialises work per key. Satisfied by lock.Locker.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Service owns order construction and the status/tracking state machine.
type Service struct {
	Store   Store
	Lock    Locker
	LockTTL time.Duration
	Events  *events.Bus
	Log     zerolog.Logger

	// Rates snapshotted onto new orders; shipping table quoted in BDT.
	Rates          currency.Rates
	ShippingAirBDT decimal.Decimal
	ShippingSeaBDT decimal.Decimal

	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// BuildInput carries everything needed to construct an order. DiscountRate is
// already resolved by the coupon collaborator (zero when no valid coupon).
type BuildInput struct {
	CustomerID      string
	Items           []LineItem
	ShippingMethod  ShippingMethod
	DeliveryType    string
	PaymentMethod   string
	PaymentCurrency currency.Currency
	CouponCode      string
	DiscountRate    decimal.Decimal
}

// Build computes totals, seeds the tracking history and persists the order.
// An empty item list is rejected before any store call.
func (s *Service) Build(ctx context.Context, in BuildInput) (*Order, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("order service not configured")
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !in.ShippingMethod.Valid() {
		return nil, fmt.Errorf("shipping method %q: %w", in.ShippingMethod, ErrInvalidInput)
	}
	if in.PaymentCurrency == "" {
		in.PaymentCurrency = currency.BDT
	}
	if !in.PaymentCurrency.Valid() {
		return nil, fmt.Errorf("payment currency %q: %w", in.PaymentCurrency, ErrInvalidInput)
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("quantity must be positive for product %s: %w", it.ProductID, ErrInvalidInput)
		}
	}

	rates := s.Rates.Normalize()
	shipping := s.shippingRate(in.ShippingMethod, rates)

	items := make([]pricing.Item, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, pricing.Item{Qty: it.Quantity, TotalPrice: it.TotalPrice})
	}
	summary := pricing.Compute(items, shipping, in.DiscountRate)

	now := s.now()
	seed := trackingFor(StatusPending)
	o := &Order{
		ID:              uuid.NewString(),
		CustomerID:      in.CustomerID,
		LineItems:       in.Items,
		ShippingMethod:  in.ShippingMethod,
		DeliveryType:    in.DeliveryType,
		PaymentMethod:   in.PaymentMethod,
		PaymentCurrency: in.PaymentCurrency,
		Rates:           rates,
		CouponCode:      in.CouponCode,
		ShippingRate:    summary.Shipping,
		TotalDiscount:   summary.Discount,
		SubTotal:        summary.Subtotal,
		TotalAmount:     summary.Total,
		Status:          StatusPending,
		TrackingHistory: []TrackingEntry{{
			Status:    StatusPending,
			Timestamp: now,
			Location:  seed.Location,
			Notes:     seed.Notes,
		}},
		PaymentDetails: PaymentDetails{Status: PaymentPending},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.Store.Save(ctx, o); err != nil {
		countOrderCreated("error")
		return nil, err
	}
	countOrderCreated("ok")

	if s.Events != nil {
		if _, err := s.Events.Emit(ctx, events.TopicOrderCreated, o.ID, map[string]any{
			"orderId":    o.ID,
			"customerId": o.CustomerID,
			"status":     o.Status,
			"total":      o.TotalAmount,
		}); err != nil {
			s.Log.Warn().Err(err).Str("order_id", o.ID).Str("topic", events.TopicOrderCreated).Msg("failed to emit order event")
		}
	}
	return o, nil
}

func (s *Service) shippingRate(method ShippingMethod, rates currency.Rates) currency.Money {
	switch method {
	case ShipSea:
		return currency.FromBDT(s.ShippingSeaBDT, rates)
	default:
		return currency.FromBDT(s.ShippingAirBDT, rates)
	}
}

// ApplyStatus transitions an order and appends exactly one tracking entry.
// A same-status call is a no-op: the returned bool reports whether an entry
// was appended. The load-compute-store sequence runs under a per-order lock
// with a compare-and-set on updatedAt as the backstop.
func (s *Service) ApplyStatus(ctx context.Context, id string, next Status) (*Order, bool, error) {
	if s == nil || s.Store == nil {
		return nil, false, errors.New("order service not configured")
	}
	if !next.Valid() {
		countTransition(string(next), "invalid")
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}

	var (
		updated  *Order
		appended bool
	)
	apply := func(ctx context.Context) error {
		o, err := s.Store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status == next {
			updated = o
			return nil
		}
		if !CanTransition(o.Status, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
		}

		ts := s.now()
		if last, ok := o.LastTracking(); ok && !ts.After(last.Timestamp) {
			// Clock went backwards or stood still; keep timestamps strictly increasing.
			ts = last.Timestamp.Add(time.Millisecond)
		}
		tpl := trackingFor(next)
		prevUpdated := o.UpdatedAt
		o.TrackingHistory = append(o.TrackingHistory, TrackingEntry{
			Status:    next,
			Timestamp: ts,
			Location:  tpl.Location,
			Notes:     tpl.Notes,
		})
		o.Status = next
		o.UpdatedAt = ts
		switch next {
		case StatusDelivered:
			o.DeliveredAt = &ts
		case StatusCanceled, StatusReturned:
			if o.PaymentDetails.Status == PaymentPaid {
				o.PaymentDetails.Status = PaymentRefundPending
			}
		}

		if err := s.Store.Replace(ctx, o, prevUpdated); err != nil {
			return err
		}
		updated = o
		appended = true
		return nil
	}

	var err error
	if s.Lock != nil {
		err = s.Lock.WithLock(ctx, "lock:order:"+id, s.LockTTL, apply)
	} else {
		err = apply(ctx)
	}
	if err != nil {
		countTransition(string(next), "error")
		return nil, false, err
	}
	if !appended {
		countTransition(string(next), "noop")
		return updated, false, nil
	}
	countTransition(string(next), "ok")

	if s.Events != nil {
		if _, err := s.Events.Emit(ctx, events.TopicOrderStatusChanged, updated.ID, map[string]any{
			"orderId":    updated.ID,
			"customerId": updated.CustomerID,
			"status":     updated.Status,
		}); err != nil {
			s.Log.Warn().Err(err).Str("order_id", updated.ID).Str("topic", events.TopicOrderStatusChanged).Msg("failed to emit order event")
		}
		if extra := topicForStatus(next); extra != "" {
			if _, err := s.Events.Emit(ctx, extra, updated.ID, map[string]any{
				"orderId": updated.ID,
				"status":  updated.Status,
			}); err != nil {
				s.Log.Warn().Err(err).Str("order_id", updated.ID).Str("topic", extra).Msg("failed to emit order event")
			}
		}
	}
	return updated, true, nil
}

// Get loads one order.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("order service not configured")
	}
	return s.Store.FindByID(ctx, id)
}

// List returns a page of a customer's orders plus the total count.
func (s *Service) List(ctx context.Context, customerID string, page, perPage int) ([]*Order, int64, error) {
	if s == nil || s.Store == nil {
		return nil, 0, errors.New("order service not configured")
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	total, err := s.Store.CountByCustomer(ctx, customerID)
	if err != nil {
		return nil, 0, err
	}
	orders, err := s.Store.ListByCustomer(ctx, customerID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func topicForStatus(s Status) string {
	switch s {
	case StatusDelivered:
		return events.TopicOrderDelivered
	case StatusCanceled:
		return events.TopicOrderCanceled
	case StatusReturned:
		return events.TopicOrderReturned
	}
	return ""
}

func countOrderCreated(result string) {
	if obs.OrdersCreatedTotal != nil {
		obs.OrdersCreatedTotal.WithLabelValues(result).Inc()
	}
}

func countTransition(status, result string) {
	if obs.OrderStatusTransitionsTotal != nil {
		obs.OrderStatusTransitionsTotal.WithLabelValues(status, result).Inc()
	}
}
