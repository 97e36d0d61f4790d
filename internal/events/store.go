package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists domain events to the order_events table.
type PGStore struct {
	Pool *pgxpool.Pool
}

// InsertEvent appends one event row and returns the stored record.
func (s *PGStore) InsertEvent(ctx context.Context, topic, aggregateID string, payload []byte) (Event, error) {
	if s == nil || s.Pool == nil {
		return Event{}, errors.New("events: pool not configured")
	}
	ev := Event{
		ID:          uuid.NewString(),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now().UTC(),
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO order_events (id, topic, aggregate_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		ev.ID, ev.Topic, ev.AggregateID, payload, ev.OccurredAt,
	)
	if err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}
	return ev, nil
}
