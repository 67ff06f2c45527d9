package reminders

import (
	"context"
	"fmt"
	"github.com/AlekSi/pointer"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"ticketsale/internal/domain/sales"
	"ticketsale/internal/entities"
	"ticketsale/internal/notification"
	"time"
)

const (
	DefaultReminderAfter = 24 * time.Hour
	DefaultMaxWait       = 72 * time.Hour
	// a sale is reminded about at most once per interval
	reminderInterval = 24 * time.Hour
)

//go:generate mockgen -destination=mocks/sales_store_mock.go -package=mocks . SalesStore
type SalesStore interface {
	FindPendingApproval(ctx context.Context, markedBefore, remindedBefore time.Time) ([]sales.TicketSale, error)
	UpdateByReference(
		ctx context.Context,
		reference string,
		updateFn func(ctx context.Context, sale *sales.TicketSale) error,
	) (sales.TicketSale, error)
}

//go:generate mockgen -destination=mocks/deliverer_mock.go -package=mocks . Deliverer
type Deliverer interface {
	DeliverOrFail(ctx context.Context, job notification.Job) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

type Config struct {
	ReminderAfter time.Duration
	MaxWait       time.Duration
	Now           func() time.Time
}

type RemindersUsecase struct {
	store     SalesStore
	deliverer Deliverer
	events    EventPublisher

	reminderAfter time.Duration
	maxWait       time.Duration
	now           func() time.Time
}

func NewRemindersUsecase(store SalesStore, deliverer Deliverer, events EventPublisher, cfg Config) *RemindersUsecase {
	if store == nil {
		panic("missing store")
	}
	if deliverer == nil {
		panic("missing deliverer")
	}
	if events == nil {
		panic("missing event publisher")
	}
	if cfg.ReminderAfter <= 0 {
		cfg.ReminderAfter = DefaultReminderAfter
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &RemindersUsecase{
		store:         store,
		deliverer:     deliverer,
		events:        events,
		reminderAfter: cfg.ReminderAfter,
		maxWait:       cfg.MaxWait,
		now:           cfg.Now,
	}
}

type SweepReport struct {
	Candidates int `json:"candidates"`
	Sent       int `json:"sent"`
	Suspicious int `json:"suspicious"`
	Failed     int `json:"failed"`
}

// Sweep reminds customers whose reported transfer is still waiting for an admin.
// A failure on one sale is logged and counted, the sweep goes on with the next.
func (u *RemindersUsecase) Sweep(ctx context.Context) (SweepReport, error) {
	now := u.now().UTC()
	logger := log.FromContext(ctx)

	candidates, err := u.store.FindPendingApproval(ctx, now.Add(-u.reminderAfter), now.Add(-reminderInterval))
	if err != nil {
		return SweepReport{}, fmt.Errorf("failed to find pending approvals: %w", err)
	}

	report := SweepReport{Candidates: len(candidates)}
	if len(candidates) == 0 {
		logger.Info("No unverified payments found")
		return report, nil
	}

	for _, sale := range candidates {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		suspicious := sale.PendingSince().Before(now.Add(-u.maxWait))
		saleLogger := logger.WithField("reference", sale.Reference()).WithField("suspicious", suspicious)

		if err := u.deliverer.DeliverOrFail(ctx, notification.ReminderJob(sale, suspicious, now)); err != nil {
			report.Failed++
			saleLogger.WithError(err).Error("Failed to send payment reminder")
			continue
		}

		_, err := u.store.UpdateByReference(ctx, sale.Reference(), func(ctx context.Context, sale *sales.TicketSale) error {
			sale.PaymentInfo.LastReminderSent = pointer.To(now)
			return nil
		})
		if err != nil {
			report.Failed++
			saleLogger.WithError(err).Error("Failed to record reminder")
			continue
		}
		report.Sent++

		if suspicious {
			report.Suspicious++
			u.alertSuspicious(ctx, sale, now)
		}
	}

	logger.
		WithField("candidates", report.Candidates).
		WithField("sent", report.Sent).
		WithField("suspicious", report.Suspicious).
		WithField("failed", report.Failed).
		Info("Payment reminder sweep finished")

	return report, nil
}

func (u *RemindersUsecase) alertSuspicious(ctx context.Context, sale sales.TicketSale, now time.Time) {
	pendingSince := sale.PendingSince()
	daysPending := int(now.Sub(pendingSince) / (24 * time.Hour))

	err := u.events.Publish(ctx, entities.SuspiciousPayment_v1{
		Header:       entities.NewEventHeaderWithIdempotencyKey(fmt.Sprintf("suspicious-%s-%s", sale.Reference(), now.Format("2006-01-02"))),
		Sale:         entities.SummaryOf(sale),
		PendingSince: pendingSince,
		DaysPending:  daysPending,
	})
	if err != nil {
		log.FromContext(ctx).
			WithError(err).
			WithField("reference", sale.Reference()).
			Warn("Failed to raise suspicious payment alert")
	}
}
