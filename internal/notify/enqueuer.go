package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/events"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/obs"
)

// TaskClient is the slice of asynq.Client the enqueuer needs.
type TaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer bridges the in-process event bus to the asynq queue. It implements
// events.Notifier: each emitted order event becomes one queued task consumed
// by the worker binary.
type Enqueuer struct {
	Client TaskClient
	Queue  string
}

var _ events.Notifier = (*Enqueuer)(nil)

// Notify queues a notification task for the event.
func (e *Enqueuer) Notify(ctx context.Context, ev events.Event) error {
	if e == nil || e.Client == nil {
		return errors.New("notify: task client not configured")
	}
	task, err := NewOrderStatusTask(ev)
	if err != nil {
		return err
	}
	opts := []asynq.Option{}
	if e.Queue != "" {
		opts = append(opts, asynq.Queue(e.Queue))
	}
	if _, err := e.Client.EnqueueContext(ctx, task, opts...); err != nil {
		countTask("enqueue_error")
		return fmt.Errorf("notify: enqueue: %w", err)
	}
	countTask("enqueued")
	return nil
}

func countTask(result string) {
	if obs.NotifyTasksTotal != nil {
		obs.NotifyTasksTotal.WithLabelValues(result).Inc()
	}
}
