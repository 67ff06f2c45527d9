package notification

import (
	"context"
	"fmt"
	"ticketsale/internal/domain/sales"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

const DefaultSendTimeout = 30 * time.Second

//go:generate mockgen -destination=mocks/mailer_mock.go -package=mocks . Mailer
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) (string, error)
}

//go:generate mockgen -destination=mocks/deliverer_mock.go -package=mocks . Deliverer
type Deliverer interface {
	Deliver(ctx context.Context, job Job) error
}

// Dispatcher renders a job and hands it to the mail transport within a bounded time.
type Dispatcher struct {
	renderer *Renderer
	mailer   Mailer
	timeout  time.Duration
}

func NewDispatcher(renderer *Renderer, mailer Mailer, timeout time.Duration) *Dispatcher {
	if renderer == nil {
		panic("missing renderer")
	}
	if mailer == nil {
		panic("missing mailer")
	}
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}

	return &Dispatcher{
		renderer: renderer,
		mailer:   mailer,
		timeout:  timeout,
	}
}

type sendResult struct {
	messageID string
	err       error
}

// Deliver returns sales.TransientError for transport failures and timeouts.
// Rendering failures, including unknown job types, are permanent.
func (d *Dispatcher) Deliver(ctx context.Context, job Job) error {
	msg, err := d.renderer.Render(job)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// On timeout the send goroutine is abandoned and may keep the SMTP
	// connection until gomail returns.
	done := make(chan sendResult, 1)
	go func() {
		id, err := d.mailer.Send(ctx, msg.To, msg.Subject, msg.HTML)
		done <- sendResult{messageID: id, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return sales.Transient(fmt.Errorf("failed to send %s email for %s: %w", job.Type, job.Reference(), res.err))
		}
		log.FromContext(ctx).
			WithField("job_id", job.ID).
			WithField("type", job.Type).
			WithField("reference", job.Reference()).
			WithField("message_id", res.messageID).
			Info("Email sent")
		return nil
	case <-ctx.Done():
		return sales.Transient(fmt.Errorf("sending %s email for %s timed out after %s: %w", job.Type, job.Reference(), d.timeout, ctx.Err()))
	}
}
