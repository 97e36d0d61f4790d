package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProductNotFound indicates no product exists for the slug.
var ErrProductNotFound = errors.New("product not found")

// Store abstracts product persistence.
type Store interface {
	Save(ctx context.Context, p *Product) error
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, category string, limit, offset int) ([]*Product, error)
	Count(ctx context.Context, category string) (int64, error)
}

// PGStore persists products as JSONB documents keyed by slug.
type PGStore struct {
	Pool *pgxpool.Pool
}

// Save inserts or replaces a product document.
func (s *PGStore) Save(ctx context.Context, p *Product) error {
	if s == nil || s.Pool == nil {
		return errors.New("catalog store not configured")
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO products (id, slug, category, active, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (slug) DO UPDATE SET
			category = EXCLUDED.category,
			active = EXCLUDED.active,
			doc = EXCLUDED.doc,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.Slug, p.Category, p.Active, doc, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

// FindBySlug loads one product document.
func (s *PGStore) FindBySlug(ctx context.Context, slug string) (*Product, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("catalog store not configured")
	}
	var doc []byte
	err := s.Pool.QueryRow(ctx, `SELECT doc FROM products WHERE slug = $1`, slug).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	var p Product
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &p, nil
}

// List returns active products, optionally filtered by category.
func (s *PGStore) List(ctx context.Context, category string, limit, offset int) ([]*Product, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("catalog store not configured")
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT doc FROM products
		WHERE active AND ($1 = '' OR category = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		category, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		var p Product
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

// Count returns the number of active products in a category, or all active
// products when category is empty.
func (s *PGStore) Count(ctx context.Context, category string) (int64, error) {
	if s == nil || s.Pool == nil {
		return 0, errors.New("catalog store not configured")
	}
	var total int64
	err := s.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE active AND ($1 = '' OR category = $1)`,
		category,
	).Scan(&total)
	return total, err
}
