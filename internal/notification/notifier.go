package notification

import (
	"context"
	"fmt"
	"ticketsale/internal/domain/sales"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

// Notifier exposes the two delivery conventions used by the payment flows.
type Notifier struct {
	deliverer Deliverer
	queue     *Queue
}

func NewNotifier(deliverer Deliverer, queue *Queue) *Notifier {
	if deliverer == nil {
		panic("missing deliverer")
	}
	if queue == nil {
		panic("missing queue")
	}

	return &Notifier{deliverer: deliverer, queue: queue}
}

// DeliverOrFail sends the email now. Any failure is reported as sales.ErrEmailDeliveryFailed
// so the caller can roll back the state change it gates.
func (n *Notifier) DeliverOrFail(ctx context.Context, job Job) error {
	job.Attempts++
	if err := n.deliverer.Deliver(ctx, job); err != nil {
		jobsTotal.WithLabelValues(string(job.Type), outcomeDropped).Inc()
		return fmt.Errorf("%w: %s email for %s: %w", sales.ErrEmailDeliveryFailed, job.Type, job.Reference(), err)
	}
	jobsTotal.WithLabelValues(string(job.Type), outcomeDelivered).Inc()
	return nil
}

// NotifyBestEffort queues the email and returns immediately.
func (n *Notifier) NotifyBestEffort(ctx context.Context, job Job) {
	n.queue.Enqueue(job)

	log.FromContext(ctx).
		WithField("job_id", job.ID).
		WithField("type", job.Type).
		WithField("reference", job.Reference()).
		WithField("priority", job.Priority).
		Debug("Notification queued")
}
