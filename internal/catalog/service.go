package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/pricing"
)

// ErrInvalidProduct is returned when a product payload fails validation.
var ErrInvalidProduct = errors.New("invalid product")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Service owns the product catalog: price normalization on write forward,
// cache-aside reads.
type Service struct {
	Store Store
	Cache *Cache
	// Rates used when an incoming product does not carry its own quote.
	Rates currency.Rates
	Log   zerolog.Logger
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// ProductInput is an admin-submitted product with prices quoted in a single
// input currency.
type ProductInput struct {
	Slug          string
	Title         string
	Category      string
	Description   string
	Images        []string
	Colors        []string
	Sizes         []string
	InputCurrency currency.Currency
	BasePrice     decimal.Decimal
	// Tiers quoted in the same input currency; MaxQty 0 means unbounded.
	Tiers []TierInput
	// Rates override the service-level rates when positive.
	Rates  currency.Rates
	Active bool
}

// TierInput is one quantity band with its unit price in the input currency.
type TierInput struct {
	MinQty int
	MaxQty int
	Price  decimal.Decimal
}

// Upsert validates and normalizes a product and writes it through the store,
// invalidating any cached copy.
func (s *Service) Upsert(ctx context.Context, in ProductInput) (*Product, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("catalog service not configured")
	}
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: slug %q", ErrInvalidProduct, in.Slug)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidProduct)
	}
	if in.InputCurrency != currency.USD && in.InputCurrency != currency.CNY {
		return nil, fmt.Errorf("%w: input currency must be USD or CNY, got %q", ErrInvalidProduct, in.InputCurrency)
	}
	if in.BasePrice.Sign() <= 0 {
		return nil, fmt.Errorf("%w: base price must be positive", ErrInvalidProduct)
	}

	rates := in.Rates
	if rates.USDToBDT.Sign() <= 0 || rates.CNYToBDT.Sign() <= 0 {
		rates = s.Rates
	}
	rates = rates.Normalize()
	if err := rates.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}

	tiers := make([]pricing.Tier, 0, len(in.Tiers))
	for _, t := range in.Tiers {
		if t.MinQty < 1 {
			return nil, fmt.Errorf("%w: tier minQty must be at least 1", ErrInvalidProduct)
		}
		if t.MaxQty != 0 && t.MaxQty < t.MinQty {
			return nil, fmt.Errorf("%w: tier maxQty %d below minQty %d", ErrInvalidProduct, t.MaxQty, t.MinQty)
		}
		if t.Price.Sign() <= 0 {
			return nil, fmt.Errorf("%w: tier price must be positive", ErrInvalidProduct)
		}
		tiers = append(tiers, pricing.Tier{
			MinQty: t.MinQty,
			MaxQty: t.MaxQty,
			Price:  currency.Normalize(t.Price, in.InputCurrency, rates),
		})
	}

	now := s.now()
	p := &Product{
		ID:            uuid.NewString(),
		Slug:          slug,
		Title:         strings.TrimSpace(in.Title),
		Category:      strings.TrimSpace(in.Category),
		Description:   in.Description,
		Images:        in.Images,
		Colors:        in.Colors,
		Sizes:         in.Sizes,
		InputCurrency: in.InputCurrency,
		Price:         currency.Normalize(in.BasePrice, in.InputCurrency, rates),
		Tiers:         tiers,
		Rates:         rates,
		Active:        in.Active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if existing, err := s.Store.FindBySlug(ctx, slug); err == nil {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, ErrProductNotFound) {
		return nil, err
	}

	if err := s.Store.Save(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Cache.Invalidate(ctx, slug); err != nil {
		s.Log.Warn().Err(err).Str("slug", slug).Msg("failed to invalidate product cache")
	}
	return p, nil
}

// GetBySlug loads a product, consulting the cache first.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("catalog service not configured")
	}
	slug = strings.ToLower(strings.TrimSpace(slug))

	if cached, err := s.Cache.Get(ctx, slug); err != nil {
		s.Log.Warn().Err(err).Str("slug", slug).Msg("product cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	p, err := s.Store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, p); err != nil {
		s.Log.Warn().Err(err).Str("slug", slug).Msg("product cache write failed")
	}
	return p, nil
}

// List returns a page of active products plus the total count.
func (s *Service) List(ctx context.Context, category string, page, perPage int) ([]*Product, int64, error) {
	if s == nil || s.Store == nil {
		return nil, 0, errors.New("catalog service not configured")
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	total, err := s.Store.Count(ctx, category)
	if err != nil {
		return nil, 0, err
	}
	products, err := s.Store.List(ctx, category, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
