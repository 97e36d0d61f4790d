package notify

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/events"
)

// Task type names registered on the asynq mux.
const (
	TypeOrderStatusEmail = "notify:order_status"
)

// OrderStatusPayload is the task body for order lifecycle notifications.
type OrderStatusPayload struct {
	EventID    string `json:"eventId"`
	Topic      string `json:"topic"`
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId,omitempty"`
	Status     string `json:"status,omitempty"`
}

// NewOrderStatusTask builds the asynq task for an emitted order event.
func NewOrderStatusTask(ev events.Event) (*asynq.Task, error) {
	var body struct {
		CustomerID string `json:"customerId"`
		Status     string `json:"status"`
	}
	// Payload shape varies by topic; missing fields stay empty.
	_ = json.Unmarshal(ev.Payload, &body)

	payload, err := json.Marshal(OrderStatusPayload{
		EventID:    ev.ID,
		Topic:      ev.Topic,
		OrderID:    ev.AggregateID,
		CustomerID: body.CustomerID,
		Status:     body.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("encode notify task: %w", err)
	}
	return asynq.NewTask(TypeOrderStatusEmail, payload, asynq.MaxRetry(5)), nil
}
