package events

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/google/uuid"
	"ticketsale/internal/entities"
)

//go:generate mockgen -destination=mocks/admin_alerter_mock.go -package=mocks . AdminAlerter
type AdminAlerter interface {
	Notify(ctx context.Context, phones []string, message string) bool
}

//go:generate mockgen -destination=mocks/event_store_mock.go -package=mocks . EventStore
type EventStore interface {
	SaveEvent(ctx context.Context, event entities.SaleEvent) error
}

type Handler struct {
	alerter     AdminAlerter
	adminPhones []string
	eventStore  EventStore
}

func NewHandler(
	alerter AdminAlerter,
	adminPhones []string,
	eventStore EventStore,
) *Handler {
	if alerter == nil {
		panic("missing alerter")
	}
	if eventStore == nil {
		panic("missing eventStore")
	}

	return &Handler{
		alerter:     alerter,
		adminPhones: adminPhones,
		eventStore:  eventStore,
	}
}

func (h *Handler) Handlers() []cqrs.EventHandler {
	return []cqrs.EventHandler{
		cqrs.NewEventHandler("admin_transfer_alert", h.AdminTransferAlert),
		cqrs.NewEventHandler("admin_suspicious_alert", h.AdminSuspiciousAlert),

		storeSaleEventHandler[entities.TransferMarked_v1](h.eventStore),
		storeSaleEventHandler[entities.PaymentApproved_v1](h.eventStore),
		storeSaleEventHandler[entities.PaymentRejected_v1](h.eventStore),
		storeSaleEventHandler[entities.PaymentFailed_v1](h.eventStore),
		storeSaleEventHandler[entities.SuspiciousPayment_v1](h.eventStore),
		storeSaleEventHandler[entities.TicketVerified_v1](h.eventStore),
	}
}

// AdminTransferAlert asks the admins to verify a transfer the customer reported.
// Delivery is best effort, the handler never fails.
func (h *Handler) AdminTransferAlert(ctx context.Context, event *entities.TransferMarked_v1) error {
	sent := h.alerter.Notify(ctx, h.adminPhones, TransferAlertMessage(event.Sale))

	log.FromContext(ctx).
		WithField("reference", event.Sale.Reference).
		WithField("sent", sent).
		Info("Admin transfer alert handled")
	return nil
}

func (h *Handler) AdminSuspiciousAlert(ctx context.Context, event *entities.SuspiciousPayment_v1) error {
	sent := h.alerter.Notify(ctx, h.adminPhones, SuspiciousAlertMessage(event.Sale, event.DaysPending))

	log.FromContext(ctx).
		WithField("reference", event.Sale.Reference).
		WithField("days_pending", event.DaysPending).
		WithField("sent", sent).
		Warn("Suspicious payment alert handled")
	return nil
}

func storeSaleEventHandler[T any, PT interface {
	*T
	entities.Event
}](store EventStore) cqrs.EventHandler {
	var zero T
	name := cqrs.StructName(zero)

	return cqrs.NewEventHandler(
		"store_sale_event."+name,
		func(ctx context.Context, event *T) error {
			e := PT(event)
			header := e.GetHeader()

			id, err := uuid.Parse(header.Id)
			if err != nil {
				return fmt.Errorf("%w: invalid event id %q: %w", ErrJsonUnmarshal, header.Id, err)
			}

			payload, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to marshal %s: %w", name, err)
			}

			return store.SaveEvent(ctx, entities.SaleEvent{
				Id:          id,
				PublishedAt: header.PublishedAt,
				EventName:   name,
				Reference:   e.SaleReference(),
				Payload:     payload,
			})
		},
	)
}
