package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	rules map[string]*Rule
	err   error
}

func (m *memStore) FindByCode(_ context.Context, code string) (*Rule, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.rules[code]
	if !ok {
		return nil, ErrCouponNotFound
	}
	return r, nil
}

func (m *memStore) Upsert(_ context.Context, r *Rule) error {
	if m.rules == nil {
		m.rules = map[string]*Rule{}
	}
	m.rules[r.Code] = r
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestDiscountRateFromStore(t *testing.T) {
	store := &memStore{rules: map[string]*Rule{
		"SAVE5": {Code: "SAVE5", RateBps: 500, Active: true},
	}}
	svc := &Service{Store: store, Now: fixedNow}

	rate, err := svc.DiscountRate(context.Background(), " save5 ")
	require.NoError(t, err)
	require.True(t, rate.Equal(decimal.RequireFromString("0.05")), "rate = %s", rate)
}

func TestDiscountRateUnknownCodeIsZero(t *testing.T) {
	svc := &Service{Store: &memStore{}, Now: fixedNow}

	rate, err := svc.DiscountRate(context.Background(), "NOPE")
	require.NoError(t, err)
	require.True(t, rate.IsZero())
}

func TestDiscountRateEmptyCodeIsZero(t *testing.T) {
	svc := &Service{Store: &memStore{}, Now: fixedNow}

	rate, err := svc.DiscountRate(context.Background(), "")
	require.NoError(t, err)
	require.True(t, rate.IsZero())
}

func TestDiscountRateInactiveRule(t *testing.T) {
	store := &memStore{rules: map[string]*Rule{
		"OLD": {Code: "OLD", RateBps: 1000, Active: false},
	}}
	svc := &Service{Store: store, Now: fixedNow}

	rate, err := svc.DiscountRate(context.Background(), "OLD")
	require.NoError(t, err)
	require.True(t, rate.IsZero())
}

func TestDiscountRateValidityWindow(t *testing.T) {
	past := fixedNow().Add(-time.Hour)
	future := fixedNow().Add(time.Hour)

	store := &memStore{rules: map[string]*Rule{
		"EXPIRED":  {Code: "EXPIRED", RateBps: 500, Active: true, ValidTo: &past},
		"UPCOMING": {Code: "UPCOMING", RateBps: 500, Active: true, ValidFrom: &future},
		"LIVE":     {Code: "LIVE", RateBps: 500, Active: true, ValidFrom: &past, ValidTo: &future},
	}}
	svc := &Service{Store: store, Now: fixedNow}

	rate, err := svc.DiscountRate(context.Background(), "EXPIRED")
	require.NoError(t, err)
	require.True(t, rate.IsZero())

	rate, err = svc.DiscountRate(context.Background(), "UPCOMING")
	require.NoError(t, err)
	require.True(t, rate.IsZero())

	rate, err = svc.DiscountRate(context.Background(), "LIVE")
	require.NoError(t, err)
	require.True(t, rate.Equal(decimal.RequireFromString("0.05")))
}

func TestDiscountRateFallbackRule(t *testing.T) {
	svc := &Service{
		Store:    &memStore{},
		Fallback: &Rule{Code: "LAUNCH10", RateBps: 1000, Active: true},
		Now:      fixedNow,
	}

	rate, err := svc.DiscountRate(context.Background(), "launch10")
	require.NoError(t, err)
	require.True(t, rate.Equal(decimal.RequireFromString("0.1")), "rate = %s", rate)
}

func TestDiscountRateStoreRuleWinsOverFallback(t *testing.T) {
	store := &memStore{rules: map[string]*Rule{
		"LAUNCH10": {Code: "LAUNCH10", RateBps: 250, Active: true},
	}}
	svc := &Service{
		Store:    store,
		Fallback: &Rule{Code: "LAUNCH10", RateBps: 1000, Active: true},
		Now:      fixedNow,
	}

	rate, err := svc.DiscountRate(context.Background(), "LAUNCH10")
	require.NoError(t, err)
	require.True(t, rate.Equal(decimal.RequireFromString("0.025")))
}

func TestDiscountRateStoreFailure(t *testing.T) {
	svc := &Service{Store: &memStore{err: errors.New("connection refused")}, Now: fixedNow}

	_, err := svc.DiscountRate(context.Background(), "SAVE5")
	require.Error(t, err)
}
