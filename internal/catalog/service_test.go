package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
)

type memStore struct {
	products  map[string]*Product
	findCalls int
}

func newMemStore() *memStore {
	return &memStore{products: map[string]*Product{}}
}

func (m *memStore) Save(_ context.Context, p *Product) error {
	cp := *p
	m.products[p.Slug] = &cp
	return nil
}

func (m *memStore) FindBySlug(_ context.Context, slug string) (*Product, error) {
	m.findCalls++
	p, ok := m.products[slug]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) List(_ context.Context, category string, limit, offset int) ([]*Product, error) {
	var out []*Product
	for _, p := range m.products {
		if p.Active && (category == "" || p.Category == category) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) Count(_ context.Context, category string) (int64, error) {
	ps, _ := m.List(context.Background(), category, 0, 0)
	return int64(len(ps)), nil
}

func testRates() currency.Rates {
	return currency.Rates{
		USDToBDT: decimal.RequireFromString("120"),
		CNYToBDT: decimal.RequireFromString("15"),
	}
}

func newTestService(t *testing.T, store Store) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Service{
		Store: store,
		Cache: &Cache{Client: client, TTL: time.Minute},
		Rates: testRates(),
		Now:   func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	}, mr
}

func TestUpsertNormalizesPrices(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, store)

	p, err := svc.Upsert(context.Background(), ProductInput{
		Slug:          "Denim-Jacket",
		Title:         "Denim Jacket",
		Category:      "apparel",
		InputCurrency: currency.CNY,
		BasePrice:     decimal.RequireFromString("100"),
		Tiers: []TierInput{
			{MinQty: 10, MaxQty: 49, Price: decimal.RequireFromString("90")},
			{MinQty: 50, Price: decimal.RequireFromString("80")},
		},
		Active: true,
	})
	require.NoError(t, err)
	require.Equal(t, "denim-jacket", p.Slug)

	// 100 CNY at CNYToBDT=15 and default USD/CNY cross rate of 7.
	require.True(t, p.Price.BDT.Equal(decimal.RequireFromString("1500")), "bdt = %s", p.Price.BDT)
	require.True(t, p.Price.CNY.Equal(decimal.RequireFromString("100")))
	require.True(t, p.Price.USD.Equal(decimal.RequireFromString("14.29")), "usd = %s", p.Price.USD)

	require.Len(t, p.Tiers, 2)
	require.True(t, p.Tiers[1].Price.BDT.Equal(decimal.RequireFromString("1200")))

	unit := p.UnitPriceFor(25)
	require.True(t, unit.CNY.Equal(decimal.RequireFromString("90")))
	unit = p.UnitPriceFor(5)
	require.True(t, unit.CNY.Equal(decimal.RequireFromString("100")), "base price expected below first tier")
}

func TestUpsertRejectsInvalidInput(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, store)

	cases := []ProductInput{
		{Slug: "Bad Slug!", Title: "x", InputCurrency: currency.USD, BasePrice: decimal.NewFromInt(1)},
		{Slug: "ok-slug", Title: "", InputCurrency: currency.USD, BasePrice: decimal.NewFromInt(1)},
		{Slug: "ok-slug", Title: "x", InputCurrency: currency.BDT, BasePrice: decimal.NewFromInt(1)},
		{Slug: "ok-slug", Title: "x", InputCurrency: currency.USD, BasePrice: decimal.Zero},
		{Slug: "ok-slug", Title: "x", InputCurrency: currency.USD, BasePrice: decimal.NewFromInt(1),
			Tiers: []TierInput{{MinQty: 5, MaxQty: 2, Price: decimal.NewFromInt(1)}}},
	}
	for i, in := range cases {
		_, err := svc.Upsert(context.Background(), in)
		require.ErrorIs(t, err, ErrInvalidProduct, "case %d", i)
	}
}

func TestUpsertKeepsIdentityAcrossUpdates(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, store)

	in := ProductInput{
		Slug:          "tea-kettle",
		Title:         "Tea Kettle",
		InputCurrency: currency.USD,
		BasePrice:     decimal.NewFromInt(20),
		Active:        true,
	}
	first, err := svc.Upsert(context.Background(), in)
	require.NoError(t, err)

	in.Title = "Steel Tea Kettle"
	second, err := svc.Upsert(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.Equal(t, "Steel Tea Kettle", second.Title)
}

func TestGetBySlugUsesCache(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, store)

	_, err := svc.Upsert(context.Background(), ProductInput{
		Slug:          "mug",
		Title:         "Mug",
		InputCurrency: currency.USD,
		BasePrice:     decimal.NewFromInt(5),
		Active:        true,
	})
	require.NoError(t, err)

	baseline := store.findCalls
	first, err := svc.GetBySlug(context.Background(), "mug")
	require.NoError(t, err)
	require.Equal(t, baseline+1, store.findCalls)

	second, err := svc.GetBySlug(context.Background(), "MUG ")
	require.NoError(t, err)
	require.Equal(t, baseline+1, store.findCalls, "second read must hit the cache")
	require.Equal(t, first.ID, second.ID)
}

func TestUpsertInvalidatesCache(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, store)

	in := ProductInput{
		Slug:          "mug",
		Title:         "Mug",
		InputCurrency: currency.USD,
		BasePrice:     decimal.NewFromInt(5),
		Active:        true,
	}
	_, err := svc.Upsert(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.GetBySlug(context.Background(), "mug")
	require.NoError(t, err)

	in.Title = "Bigger Mug"
	_, err = svc.Upsert(context.Background(), in)
	require.NoError(t, err)

	p, err := svc.GetBySlug(context.Background(), "mug")
	require.NoError(t, err)
	require.Equal(t, "Bigger Mug", p.Title)
}

func TestGetBySlugNotFound(t *testing.T) {
	svc, _ := newTestService(t, newMemStore())

	_, err := svc.GetBySlug(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrProductNotFound)
}
