package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/common"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/events"
)

// Worker handles queued notification tasks.
type Worker struct {
	Email common.EmailSender
	// Recipient resolves a customer id to an email address. Returning an
	// empty address skips the send without failing the task.
	Recipient func(ctx context.Context, customerID string) (string, error)
	Log       zerolog.Logger
}

// Register attaches the worker's handlers to an asynq mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOrderStatusEmail, w.HandleOrderStatus)
}

// HandleOrderStatus sends the customer an email about an order lifecycle
// event.
func (w *Worker) HandleOrderStatus(ctx context.Context, task *asynq.Task) error {
	var p OrderStatusPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		// A malformed payload will never succeed; drop it instead of
		// retrying.
		return fmt.Errorf("decode notify payload: %v: %w", err, asynq.SkipRetry)
	}

	logger := w.Log.With().
		Str("event_id", p.EventID).
		Str("topic", p.Topic).
		Str("order_id", p.OrderID).
		Logger()

	if w.Email == nil || w.Recipient == nil || p.CustomerID == "" {
		logger.Debug().Msg("notification skipped, no recipient path")
		countTask("skipped")
		return nil
	}

	to, err := w.Recipient(ctx, p.CustomerID)
	if err != nil {
		countTask("recipient_error")
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if to == "" {
		logger.Debug().Str("customer_id", p.CustomerID).Msg("customer has no email address")
		countTask("skipped")
		return nil
	}

	subject, html := renderOrderStatus(p)
	if err := w.Email.Send(to, subject, html); err != nil {
		countTask("send_error")
		return fmt.Errorf("send notification: %w", err)
	}
	countTask("sent")
	logger.Info().Str("to", to).Msg("order notification sent")
	return nil
}

func renderOrderStatus(p OrderStatusPayload) (subject, html string) {
	switch p.Topic {
	case events.TopicOrderCreated:
		subject = "We received your order"
		html = fmt.Sprintf("<p>Your order <strong>%s</strong> has been received and is pending processing.</p>", p.OrderID)
	case events.TopicOrderDelivered:
		subject = "Your order has been delivered"
		html = fmt.Sprintf("<p>Order <strong>%s</strong> was delivered. Thank you for shopping with us.</p>", p.OrderID)
	case events.TopicOrderCanceled:
		subject = "Your order has been canceled"
		html = fmt.Sprintf("<p>Order <strong>%s</strong> has been canceled. Any completed payment will be refunded.</p>", p.OrderID)
	case events.TopicOrderReturned:
		subject = "Your return has been registered"
		html = fmt.Sprintf("<p>Order <strong>%s</strong> has been returned. Any completed payment will be refunded.</p>", p.OrderID)
	default:
		subject = "Your order status has changed"
		html = fmt.Sprintf("<p>Order <strong>%s</strong> is now <strong>%s</strong>.</p>", p.OrderID, p.Status)
	}
	return subject, html
}
