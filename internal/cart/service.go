package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/catalog"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/obs"
)

// ErrInvalidQuantity is returned when a line is written with a non-positive
// or shrunken-to-nothing quantity.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// ErrForbidden is returned when a customer touches someone else's cart.
var ErrForbidden = errors.New("cart belongs to another customer")

// Catalog is the product lookup the cart needs for price resolution.
type Catalog interface {
	GetBySlug(ctx context.Context, slug string) (*catalog.Product, error)
}

// Service owns cart lifecycle and line management. Unit prices are resolved
// against the product's quantity tiers at write time and frozen into the
// line.
type Service struct {
	Store   Store
	Catalog Catalog
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Create opens an empty cart for a customer.
func (s *Service) Create(ctx context.Context, customerID string) (*Cart, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("cart service not configured")
	}
	now := s.now()
	c := &Cart{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Store.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get loads a cart, enforcing ownership.
func (s *Service) Get(ctx context.Context, customerID, cartID string) (*Cart, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.CustomerID != customerID {
		return nil, ErrForbidden
	}
	return c, nil
}

// AddItem puts a line in the cart. An existing line for the same product,
// color and size is replaced, with the unit price re-resolved against the
// new total quantity.
func (s *Service) AddItem(ctx context.Context, customerID, cartID, slug, color, size string, qty int) (*Cart, error) {
	if s == nil || s.Store == nil || s.Catalog == nil {
		return nil, errors.New("cart service not configured")
	}
	if qty < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}

	c, err := s.Get(ctx, customerID, cartID)
	if err != nil {
		return nil, err
	}
	p, err := s.Catalog.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	key := lineKey(p.ID, color, size)
	total := qty
	for _, it := range c.Items {
		if lineKey(it.ProductID, it.Color, it.Size) == key {
			total += it.Quantity
		}
	}

	unit := p.UnitPriceFor(total)
	line := Item{
		ProductID:  p.ID,
		Slug:       p.Slug,
		Title:      p.Title,
		Color:      color,
		Size:       size,
		Quantity:   total,
		UnitPrice:  unit,
		TotalPrice: unit.MulInt(int64(total)).Round(),
	}

	replaced := false
	for i, it := range c.Items {
		if lineKey(it.ProductID, it.Color, it.Size) == key {
			c.Items[i] = line
			replaced = true
			break
		}
	}
	if !replaced {
		c.Items = append(c.Items, line)
	}
	c.UpdatedAt = s.now()

	if err := s.Store.Put(ctx, c); err != nil {
		return nil, err
	}
	if obs.CartItemsAddedTotal != nil {
		obs.CartItemsAddedTotal.Inc()
	}
	return c, nil
}

// RemoveItem drops a line from the cart. Removing an absent line is a no-op.
func (s *Service) RemoveItem(ctx context.Context, customerID, cartID, productID, color, size string) (*Cart, error) {
	c, err := s.Get(ctx, customerID, cartID)
	if err != nil {
		return nil, err
	}
	key := lineKey(productID, color, size)
	kept := c.Items[:0]
	for _, it := range c.Items {
		if lineKey(it.ProductID, it.Color, it.Size) != key {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	c.UpdatedAt = s.now()
	if err := s.Store.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear deletes the cart outright, typically after a successful checkout.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	return s.Store.Delete(ctx, cartID)
}
