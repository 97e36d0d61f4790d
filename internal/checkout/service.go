package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/cart"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/catalog"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/order"
)

// Carts is the slice of the cart service checkout needs.
type Carts interface {
	Get(ctx context.Context, customerID, cartID string) (*cart.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

// Coupons resolves a coupon code to a discount rate; zero when invalid.
type Coupons interface {
	DiscountRate(ctx context.Context, code string) (decimal.Decimal, error)
}

// Orders builds and persists the order aggregate.
type Orders interface {
	Build(ctx context.Context, in order.BuildInput) (*order.Order, error)
}

// Products resolves inline checkout lines that bypass the cart.
type Products interface {
	GetBySlug(ctx context.Context, slug string) (*catalog.Product, error)
}

// Service turns a cart or an inline item list into a persisted order.
type Service struct {
	Carts    Carts
	Coupons  Coupons
	Orders   Orders
	Products Products
	Log      zerolog.Logger
}

// InlineItem is a checkout line submitted without a cart.
type InlineItem struct {
	Slug     string
	Color    string
	Size     string
	Quantity int
}

// Input carries one checkout request. Exactly one of CartID or Items must be
// set.
type Input struct {
	CustomerID      string
	CartID          string
	Items           []InlineItem
	ShippingMethod  order.ShippingMethod
	DeliveryType    string
	PaymentMethod   string
	PaymentCurrency currency.Currency
	CouponCode      string
}

// Checkout resolves the line items, applies any coupon and builds the order.
// The source cart is cleared only after the order is persisted.
func (s *Service) Checkout(ctx context.Context, in Input) (*order.Order, error) {
	if s == nil || s.Orders == nil {
		return nil, errors.New("checkout service not configured")
	}
	if in.CartID != "" && len(in.Items) > 0 {
		return nil, fmt.Errorf("%w: provide either cartId or items, not both", order.ErrInvalidInput)
	}

	lines, err := s.resolveLines(ctx, in)
	if err != nil {
		return nil, err
	}

	rate := decimal.Zero
	if s.Coupons != nil && in.CouponCode != "" {
		rate, err = s.Coupons.DiscountRate(ctx, in.CouponCode)
		if err != nil {
			// A coupon backend outage must not block checkout; the order
			// simply proceeds undiscounted.
			s.Log.Warn().Err(err).Str("code", in.CouponCode).Msg("coupon lookup failed, proceeding without discount")
			rate = decimal.Zero
		}
	}

	o, err := s.Orders.Build(ctx, order.BuildInput{
		CustomerID:      in.CustomerID,
		Items:           lines,
		ShippingMethod:  in.ShippingMethod,
		DeliveryType:    in.DeliveryType,
		PaymentMethod:   in.PaymentMethod,
		PaymentCurrency: in.PaymentCurrency,
		CouponCode:      in.CouponCode,
		DiscountRate:    rate,
	})
	if err != nil {
		return nil, err
	}

	if in.CartID != "" && s.Carts != nil {
		if err := s.Carts.Clear(ctx, in.CartID); err != nil {
			s.Log.Warn().Err(err).Str("cart_id", in.CartID).Str("order_id", o.ID).Msg("failed to clear cart after checkout")
		}
	}
	return o, nil
}

func (s *Service) resolveLines(ctx context.Context, in Input) ([]order.LineItem, error) {
	if in.CartID != "" {
		if s.Carts == nil {
			return nil, errors.New("checkout service not configured")
		}
		c, err := s.Carts.Get(ctx, in.CustomerID, in.CartID)
		if err != nil {
			return nil, err
		}
		lines := make([]order.LineItem, 0, len(c.Items))
		for _, it := range c.Items {
			lines = append(lines, order.LineItem{
				ProductID:  it.ProductID,
				Color:      it.Color,
				Size:       it.Size,
				Quantity:   it.Quantity,
				UnitPrice:  it.UnitPrice,
				TotalPrice: it.TotalPrice,
			})
		}
		return lines, nil
	}

	if s.Products == nil {
		return nil, errors.New("checkout service not configured")
	}
	lines := make([]order.LineItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("quantity must be positive for %q: %w", it.Slug, order.ErrInvalidInput)
		}
		p, err := s.Products.GetBySlug(ctx, it.Slug)
		if err != nil {
			return nil, err
		}
		unit := p.UnitPriceFor(it.Quantity)
		lines = append(lines, order.LineItem{
			ProductID:  p.ID,
			Color:      it.Color,
			Size:       it.Size,
			Quantity:   it.Quantity,
			UnitPrice:  unit,
			TotalPrice: unit.MulInt(int64(it.Quantity)).Round(),
		})
	}
	return lines, nil
}
