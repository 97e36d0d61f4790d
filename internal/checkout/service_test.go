package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/cart"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/catalog"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/order"
)

type memCarts struct {
	carts      map[string]*cart.Cart
	clearCalls []string
}

func (m *memCarts) Get(_ context.Context, customerID, cartID string) (*cart.Cart, error) {
	c, ok := m.carts[cartID]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	if c.CustomerID != customerID {
		return nil, cart.ErrForbidden
	}
	return c, nil
}

func (m *memCarts) Clear(_ context.Context, cartID string) error {
	m.clearCalls = append(m.clearCalls, cartID)
	return nil
}

type fixedCoupons struct {
	rate decimal.Decimal
	err  error
}

func (f *fixedCoupons) DiscountRate(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.rate, f.err
}

type memProducts struct {
	products map[string]*catalog.Product
}

func (m *memProducts) GetBySlug(_ context.Context, slug string) (*catalog.Product, error) {
	p, ok := m.products[slug]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func money(t *testing.T, bdt string) currency.Money {
	t.Helper()
	return currency.Money{
		BDT: decimal.RequireFromString(bdt),
		USD: decimal.Zero,
		CNY: decimal.Zero,
	}
}

func newOrderService() (*order.Service, *orderMemStore) {
	store := newOrderMemStore()
	return &order.Service{
		Store: store,
		Rates: currency.Rates{
			USDToBDT: decimal.RequireFromString("120"),
			CNYToBDT: decimal.RequireFromString("15"),
		},
		ShippingAirBDT: decimal.RequireFromString("1500"),
		ShippingSeaBDT: decimal.RequireFromString("1000"),
		Now:            func() time.Time { return time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC) },
	}, store
}

// orderMemStore is the minimal order.Store used to observe persisted orders.
type orderMemStore struct {
	orders map[string]*order.Order
}

func newOrderMemStore() *orderMemStore {
	return &orderMemStore{orders: map[string]*order.Order{}}
}

func (m *orderMemStore) Save(_ context.Context, o *order.Order) error {
	m.orders[o.ID] = o
	return nil
}

func (m *orderMemStore) FindByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (m *orderMemStore) Replace(_ context.Context, o *order.Order, _ time.Time) error {
	m.orders[o.ID] = o
	return nil
}

func (m *orderMemStore) ListByCustomer(_ context.Context, _ string, _, _ int) ([]*order.Order, error) {
	return nil, nil
}

func (m *orderMemStore) CountByCustomer(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

func newService(t *testing.T) (*Service, *memCarts, *orderMemStore) {
	t.Helper()
	orders, store := newOrderService()
	carts := &memCarts{carts: map[string]*cart.Cart{
		"cart-1": {
			ID:         "cart-1",
			CustomerID: "c1",
			Items: []cart.Item{{
				ProductID:  "prod-1",
				Slug:       "mug",
				Quantity:   2,
				UnitPrice:  money(t, "2500"),
				TotalPrice: money(t, "5000"),
			}},
		},
	}}
	return &Service{
		Carts:   carts,
		Coupons: &fixedCoupons{rate: decimal.Zero},
		Orders:  orders,
		Products: &memProducts{products: map[string]*catalog.Product{
			"mug": {ID: "prod-1", Slug: "mug", Title: "Mug", Price: money(t, "2500")},
		}},
	}, carts, store
}

func TestCheckoutFromCart(t *testing.T) {
	svc, carts, _ := newService(t)

	o, err := svc.Checkout(context.Background(), Input{
		CustomerID:     "c1",
		CartID:         "cart-1",
		ShippingMethod: order.ShipAir,
	})
	require.NoError(t, err)
	require.True(t, o.TotalAmount.BDT.Equal(decimal.RequireFromString("6500")), "total = %s", o.TotalAmount.BDT)
	require.Equal(t, []string{"cart-1"}, carts.clearCalls, "cart must be cleared after checkout")
}

func TestCheckoutWithCoupon(t *testing.T) {
	svc, _, _ := newService(t)
	svc.Coupons = &fixedCoupons{rate: decimal.RequireFromString("0.05")}

	o, err := svc.Checkout(context.Background(), Input{
		CustomerID:     "c1",
		CartID:         "cart-1",
		ShippingMethod: order.ShipAir,
		CouponCode:     "SAVE5",
	})
	require.NoError(t, err)
	require.True(t, o.TotalDiscount.BDT.Equal(decimal.RequireFromString("250")))
	require.True(t, o.TotalAmount.BDT.Equal(decimal.RequireFromString("6250")))
}

func TestCheckoutInlineItems(t *testing.T) {
	svc, carts, _ := newService(t)

	o, err := svc.Checkout(context.Background(), Input{
		CustomerID:     "c1",
		ShippingMethod: order.ShipSea,
		Items:          []InlineItem{{Slug: "mug", Quantity: 2}},
	})
	require.NoError(t, err)
	require.True(t, o.SubTotal.BDT.Equal(decimal.RequireFromString("5000")))
	require.True(t, o.ShippingRate.BDT.Equal(decimal.RequireFromString("1000")))
	require.Empty(t, carts.clearCalls)
}

func TestCheckoutRejectsCartAndItemsTogether(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Checkout(context.Background(), Input{
		CustomerID:     "c1",
		CartID:         "cart-1",
		Items:          []InlineItem{{Slug: "mug", Quantity: 1}},
		ShippingMethod: order.ShipAir,
	})
	require.ErrorIs(t, err, order.ErrInvalidInput)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, carts, _ := newService(t)
	carts.carts["cart-empty"] = &cart.Cart{ID: "cart-empty", CustomerID: "c1"}

	_, err := svc.Checkout(context.Background(), Input{
		CustomerID:     "c1",
		CartID:         "cart-empty",
		ShippingMethod: order.ShipAir,
	})
	require.ErrorIs(t, err, order.ErrEmptyOrder)
	require.Empty(t, carts.clearCalls, "failed checkout must not clear the cart")
}

func TestCheckoutUnknownCart(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Checkout(context.Background(), Input{
		CustomerID:     "c1",
		CartID:         "ghost",
		ShippingMethod: order.ShipAir,
	})
	require.ErrorIs(t, err, cart.ErrCartNotFound)
}

func TestCheckoutCouponOutageDoesNotBlock(t *testing.T) {
	svc, _, _ := newService(t)
	svc.Coupons = &fixedCoupons{err: context.DeadlineExceeded}

	o, err := svc.Checkout(context.Background(), Input{
		CustomerID:     "c1",
		CartID:         "cart-1",
		ShippingMethod: order.ShipAir,
		CouponCode:     "SAVE5",
	})
	require.NoError(t, err)
	require.True(t, o.TotalDiscount.IsZero())
}
