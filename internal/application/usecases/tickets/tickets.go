package tickets

import (
	"context"
	"errors"
	"fmt"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"strings"
	"ticketsale/internal/domain/sales"
	"ticketsale/internal/entities"
	"ticketsale/internal/idempotency"
	"time"
)

type SalesStore interface {
	FindByTicketID(ctx context.Context, ticketID string) (sales.TicketSale, error)
	UpdateByReference(
		ctx context.Context,
		reference string,
		updateFn func(ctx context.Context, sale *sales.TicketSale) error,
	) (sales.TicketSale, error)
	SoldByType(ctx context.Context) (map[sales.TicketType]int, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

type TicketsUsecase struct {
	store  SalesStore
	events EventPublisher
	now    func() time.Time
}

func NewTicketsUsecase(store SalesStore, events EventPublisher, now func() time.Time) *TicketsUsecase {
	if store == nil {
		panic("missing store")
	}
	if events == nil {
		panic("missing event publisher")
	}
	if now == nil {
		now = time.Now
	}

	return &TicketsUsecase{
		store:  store,
		events: events,
		now:    now,
	}
}

type Verification struct {
	TicketID     string    `json:"ticketId"`
	Reference    string    `json:"reference"`
	CustomerName string    `json:"customerName"`
	TicketType   string    `json:"ticketType"`
	Quantity     int       `json:"quantity"`
	VerifiedAt   time.Time `json:"verifiedAt"`
	VerifiedBy   string    `json:"verifiedBy"`
}

// VerifyTicket admits ticketID at the door. A second call fails with
// sales.ErrAlreadyUsed and returns the values recorded by the first one.
func (u *TicketsUsecase) VerifyTicket(ctx context.Context, ticketID, verifiedBy string) (Verification, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return Verification{}, sales.NewValidationError("ticketId", "is required")
	}

	sale, err := u.store.FindByTicketID(ctx, ticketID)
	if err != nil {
		return Verification{}, err
	}

	now := u.now().UTC()
	var ticket sales.Ticket

	verified, err := u.store.UpdateByReference(ctx, sale.Reference(), func(ctx context.Context, sale *sales.TicketSale) error {
		var err error
		ticket, err = sale.VerifyTicket(ticketID, verifiedBy, now)
		return err
	})
	if errors.Is(err, sales.ErrAlreadyUsed) {
		log.FromContext(ctx).
			WithField("ticket_id", ticketID).
			WithField("used_at", ticket.UsedAt).
			Info("Ticket presented again")
		return verificationOf(sale, ticket), err
	}
	if err != nil {
		return Verification{}, err
	}

	log.FromContext(ctx).
		WithField("ticket_id", ticketID).
		WithField("reference", verified.Reference()).
		WithField("verified_by", ticket.VerifiedBy).
		Info("Ticket verified")

	err = u.events.Publish(ctx, entities.TicketVerified_v1{
		Header:     entities.NewEventHeaderWithIdempotencyKey(idempotency.KeyFor(ctx, ticketID)),
		Reference:  verified.Reference(),
		TicketID:   ticketID,
		VerifiedBy: ticket.VerifiedBy,
		VerifiedAt: now,
	})
	if err != nil {
		log.FromContext(ctx).WithError(err).Warn("Failed to publish TicketVerified_v1")
	}

	return verificationOf(verified, ticket), nil
}

func verificationOf(sale sales.TicketSale, ticket sales.Ticket) Verification {
	v := Verification{
		TicketID:     ticket.TicketID,
		Reference:    sale.Reference(),
		CustomerName: sale.CustomerInfo.FullName(),
		TicketType:   sale.TicketInfo.TypeName,
		Quantity:     sale.TicketInfo.Quantity,
		VerifiedBy:   ticket.VerifiedBy,
	}
	if ticket.UsedAt != nil {
		v.VerifiedAt = *ticket.UsedAt
	}
	return v
}

type TierAvailability struct {
	sales.Tier
	Sold      int `json:"sold"`
	Available int `json:"available"`
}

// Catalog lists the ticket tiers with what is left of each.
func (u *TicketsUsecase) Catalog(ctx context.Context) ([]TierAvailability, error) {
	sold, err := u.store.SoldByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count sold tickets: %w", err)
	}

	tiers := sales.Catalog()
	out := make([]TierAvailability, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, TierAvailability{
			Tier:      tier,
			Sold:      sold[tier.Type],
			Available: max(tier.Capacity-sold[tier.Type], 0),
		})
	}
	return out, nil
}
