package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/catalog"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/pricing"
)

type memCatalog struct {
	products map[string]*catalog.Product
}

func (m *memCatalog) GetBySlug(_ context.Context, slug string) (*catalog.Product, error) {
	p, ok := m.products[slug]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func money(t *testing.T, bdt, usd, cny string) currency.Money {
	t.Helper()
	return currency.Money{
		BDT: decimal.RequireFromString(bdt),
		USD: decimal.RequireFromString(usd),
		CNY: decimal.RequireFromString(cny),
	}
}

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cat := &memCatalog{products: map[string]*catalog.Product{
		"mug": {
			ID:    "prod-mug",
			Slug:  "mug",
			Title: "Mug",
			Price: money(t, "300", "2.5", "17.5"),
			Tiers: []pricing.Tier{
				{MinQty: 10, MaxQty: 0, Price: money(t, "240", "2", "14")},
			},
		},
	}}

	return &Service{
		Store:   &RedisStore{Client: client, TTL: time.Hour},
		Catalog: cat,
		Now:     func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) },
	}, mr
}

func TestAddItemFreezesTierPrice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "c1")
	require.NoError(t, err)

	c, err = svc.AddItem(ctx, "c1", c.ID, "mug", "blue", "", 5)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	require.True(t, c.Items[0].UnitPrice.BDT.Equal(decimal.RequireFromString("300")), "base price expected below tier")
	require.True(t, c.Items[0].TotalPrice.BDT.Equal(decimal.RequireFromString("1500")))

	// Raising the quantity into the tier band re-resolves the unit price.
	c, err = svc.AddItem(ctx, "c1", c.ID, "mug", "blue", "", 5)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	require.Equal(t, 10, c.Items[0].Quantity)
	require.True(t, c.Items[0].UnitPrice.BDT.Equal(decimal.RequireFromString("240")))
	require.True(t, c.Items[0].TotalPrice.BDT.Equal(decimal.RequireFromString("2400")))
}

func TestAddItemSeparatesVariants(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "c1")
	require.NoError(t, err)

	c, err = svc.AddItem(ctx, "c1", c.ID, "mug", "blue", "", 2)
	require.NoError(t, err)
	c, err = svc.AddItem(ctx, "c1", c.ID, "mug", "red", "", 3)
	require.NoError(t, err)
	require.Len(t, c.Items, 2)

	sub := c.Subtotal()
	require.True(t, sub.BDT.Equal(decimal.RequireFromString("1500")), "subtotal = %s", sub.BDT)
}

func TestAddItemValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "c1")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "c1", c.ID, "mug", "", "", 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddItem(ctx, "c1", c.ID, "ghost", "", "", 1)
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "c1")
	require.NoError(t, err)

	_, err = svc.Get(ctx, "someone-else", c.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestRemoveItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "c1")
	require.NoError(t, err)
	c, err = svc.AddItem(ctx, "c1", c.ID, "mug", "blue", "", 2)
	require.NoError(t, err)

	c, err = svc.RemoveItem(ctx, "c1", c.ID, "prod-mug", "blue", "")
	require.NoError(t, err)
	require.Empty(t, c.Items)

	// Removing an absent line is a no-op.
	c, err = svc.RemoveItem(ctx, "c1", c.ID, "prod-mug", "blue", "")
	require.NoError(t, err)
	require.Empty(t, c.Items)
}

func TestClearDeletesCart(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "c1")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, c.ID))

	_, err = svc.Get(ctx, "c1", c.ID)
	require.ErrorIs(t, err, ErrCartNotFound)
}

func TestCartExpires(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "c1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = svc.Get(ctx, "c1", c.ID)
	require.ErrorIs(t, err, ErrCartNotFound)
}
