package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store abstracts order persistence with document-store semantics: each order
// is one document, written and replaced atomically.
type Store interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	// Replace swaps the stored document for id, guarded by a compare-and-set
	// on the previously observed updatedAt. ErrConflict when the guard fails.
	Replace(ctx context.Context, o *Order, expectedUpdatedAt time.Time) error
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*Order, error)
	CountByCustomer(ctx context.Context, customerID string) (int64, error)
}

// PGStore persists orders as JSONB documents, one row per aggregate. The
// status and updated_at columns are duplicated out of the document so lookups
// and the CAS guard stay on indexed columns.
type PGStore struct {
	Pool *pgxpool.Pool
}

// Save inserts a new order document.
func (s *PGStore) Save(ctx context.Context, o *Order) error {
	if s == nil || s.Pool == nil {
		return errors.New("order store not configured")
	}
	doc, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO orders (id, customer_id, status, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.CustomerID, string(o.Status), doc, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// FindByID loads one order document.
func (s *PGStore) FindByID(ctx context.Context, id string) (*Order, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("order store not configured")
	}
	var doc []byte
	err := s.Pool.QueryRow(ctx, `SELECT doc FROM orders WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	var o Order
	if err := json.Unmarshal(doc, &o); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &o, nil
}

// Replace overwrites the document atomically. The updated_at equality check
// serialises concurrent transitions on the same order.
func (s *PGStore) Replace(ctx context.Context, o *Order, expectedUpdatedAt time.Time) error {
	if s == nil || s.Pool == nil {
		return errors.New("order store not configured")
	}
	doc, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	tag, err := s.Pool.Exec(ctx, `
		UPDATE orders SET doc = $2, status = $3, updated_at = $4
		WHERE id = $1 AND updated_at = $5`,
		o.ID, doc, string(o.Status), o.UpdatedAt, expectedUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("replace order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if checkErr := s.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, o.ID).Scan(&exists); checkErr == nil && !exists {
			return ErrOrderNotFound
		}
		return ErrConflict
	}
	return nil
}

// ListByCustomer returns a customer's orders, newest first.
func (s *PGStore) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*Order, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("order store not configured")
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT doc FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		customerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		var o Order
		if err := json.Unmarshal(doc, &o); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

// CountByCustomer returns the number of orders a customer has placed.
func (s *PGStore) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	if s == nil || s.Pool == nil {
		return 0, errors.New("order store not configured")
	}
	var total int64
	err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID).Scan(&total)
	return total, err
}
