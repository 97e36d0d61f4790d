package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/obs"
)

// Service resolves coupon codes to discount rates. An invalid, expired or
// unknown code resolves to a zero rate rather than an error, so checkout
// never fails on a bad coupon.
type Service struct {
	Store Store
	// Fallback is an optional config-supplied rule checked when the store
	// has no row for the code. Lets a deployment run a single campaign
	// without touching the database.
	Fallback *Rule
	Log      zerolog.Logger
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// DiscountRate resolves code to a fractional discount rate. Returns zero for
// empty, unknown, inactive or out-of-window codes; errors only surface for
// infrastructure failures.
func (s *Service) DiscountRate(ctx context.Context, code string) (decimal.Decimal, error) {
	code = NormalizeCode(code)
	if code == "" {
		return decimal.Zero, nil
	}

	rule, err := s.lookup(ctx, code)
	if err != nil {
		countLookup("error")
		return decimal.Zero, err
	}
	if rule == nil || !rule.ValidAt(s.now()) {
		countLookup("invalid")
		s.Log.Debug().Str("code", code).Msg("coupon rejected")
		return decimal.Zero, nil
	}
	countLookup("ok")
	return rule.Rate(), nil
}

func (s *Service) lookup(ctx context.Context, code string) (*Rule, error) {
	if s.Store != nil {
		rule, err := s.Store.FindByCode(ctx, code)
		switch {
		case err == nil:
			return rule, nil
		case !errors.Is(err, ErrCouponNotFound):
			return nil, err
		}
	}
	if s.Fallback != nil && NormalizeCode(s.Fallback.Code) == code {
		return s.Fallback, nil
	}
	return nil, nil
}

func countLookup(result string) {
	if obs.CouponLookupsTotal != nil {
		obs.CouponLookupsTotal.WithLabelValues(result).Inc()
	}
}
