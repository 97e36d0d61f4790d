package coupon

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCouponNotFound indicates no rule exists for the code.
var ErrCouponNotFound = errors.New("coupon not found")

// Store abstracts coupon rule persistence.
type Store interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	Upsert(ctx context.Context, r *Rule) error
}

// PGStore keeps coupon rules in Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

// FindByCode loads the rule for a canonicalised code.
func (s *PGStore) FindByCode(ctx context.Context, code string) (*Rule, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("coupon store not configured")
	}
	var r Rule
	err := s.Pool.QueryRow(ctx, `
		SELECT code, rate_bps, valid_from, valid_to, active
		FROM coupons WHERE code = $1`,
		code,
	).Scan(&r.Code, &r.RateBps, &r.ValidFrom, &r.ValidTo, &r.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("load coupon: %w", err)
	}
	return &r, nil
}

// Upsert creates or replaces a coupon rule.
func (s *PGStore) Upsert(ctx context.Context, r *Rule) error {
	if s == nil || s.Pool == nil {
		return errors.New("coupon store not configured")
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO coupons (code, rate_bps, valid_from, valid_to, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			rate_bps = EXCLUDED.rate_bps,
			valid_from = EXCLUDED.valid_from,
			valid_to = EXCLUDED.valid_to,
			active = EXCLUDED.active`,
		r.Code, r.RateBps, r.ValidFrom, r.ValidTo, r.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert coupon: %w", err)
	}
	return nil
}
