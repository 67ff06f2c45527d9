package payments

import (
	"context"
	"fmt"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"ticketsale/internal/domain/sales"
	"ticketsale/internal/entities"
	"ticketsale/internal/notification"
	"time"
)

type ApproveRequest struct {
	Reference  string
	ApprovedBy string
	// AllowLegacy accepts approval from any state but completed, for the
	// direct approve-transfer route.
	AllowLegacy bool
}

// Approve completes a sale after an admin has seen the money arrive. The ticket
// email is sent before the new state is stored: if it cannot be delivered the
// sale keeps its previous state and ErrEmailDeliveryFailed is returned.
func (u *Usecase) Approve(ctx context.Context, req ApproveRequest) (sales.TicketSale, error) {
	now := u.now().UTC()
	transition := sales.TransitionApprove
	if req.AllowLegacy {
		transition = sales.TransitionLegacyApprove
	}

	approved, err := u.store.UpdateByReference(ctx, req.Reference, func(ctx context.Context, sale *sales.TicketSale) error {
		if err := sales.CheckTransition(transition, sale.PaymentInfo.Status); err != nil {
			return err
		}

		qrCode, tickets, err := u.issueTickets(ctx, sale, now)
		if err != nil {
			return err
		}

		err = sale.Approve(sales.Approval{
			ApprovedBy: req.ApprovedBy,
			QRCode:     qrCode,
			Tickets:    tickets,
			Legacy:     req.AllowLegacy,
		}, now)
		if err != nil {
			return err
		}

		job := notification.TicketEmailJob(*sale, now).WithPriority(notification.PriorityHigh)
		return u.notifier.DeliverOrFail(ctx, job)
	})
	if err != nil {
		return sales.TicketSale{}, err
	}

	log.FromContext(ctx).
		WithField("reference", approved.Reference()).
		WithField("approved_by", req.ApprovedBy).
		WithField("legacy", req.AllowLegacy).
		Info("Payment approved")

	u.publish(ctx, entities.PaymentApproved_v1{
		Header:     entities.NewEventHeaderWithIdempotencyKey("payment-approved-" + approved.Reference()),
		Sale:       entities.SummaryOf(approved),
		ApprovedBy: req.ApprovedBy,
		Method:     string(approved.PaymentInfo.Method),
		PaidAt:     now,
	})

	return approved, nil
}

type RejectRequest struct {
	Reference  string
	RejectedBy string
	Reason     string
}

// Reject closes a sale whose transfer never arrived. Like Approve, the state
// change only sticks when the rejection email was delivered.
func (u *Usecase) Reject(ctx context.Context, req RejectRequest) (sales.TicketSale, error) {
	now := u.now().UTC()

	rejected, err := u.store.UpdateByReference(ctx, req.Reference, func(ctx context.Context, sale *sales.TicketSale) error {
		if err := sale.Reject(req.RejectedBy, req.Reason, now); err != nil {
			return err
		}

		job := notification.RejectionJob(*sale, now).WithPriority(notification.PriorityHigh)
		return u.notifier.DeliverOrFail(ctx, job)
	})
	if err != nil {
		return sales.TicketSale{}, err
	}

	log.FromContext(ctx).
		WithField("reference", rejected.Reference()).
		WithField("rejected_by", req.RejectedBy).
		WithField("reason", rejected.PaymentInfo.RejectionReason).
		Info("Payment rejected")

	u.publish(ctx, entities.PaymentRejected_v1{
		Header:     entities.NewEventHeaderWithIdempotencyKey("payment-rejected-" + rejected.Reference()),
		Sale:       entities.SummaryOf(rejected),
		RejectedBy: req.RejectedBy,
		Reason:     rejected.PaymentInfo.RejectionReason,
		RejectedAt: now,
	})

	return rejected, nil
}

// issueTickets renders the sale-level QR code and, for sales of more than one
// ticket, one ticket with its own ID and QR code per admission.
func (u *Usecase) issueTickets(ctx context.Context, sale *sales.TicketSale, now time.Time) (string, []sales.Ticket, error) {
	qrCode, err := u.renderQR(sale, sale.TicketID, now)
	if err != nil {
		return "", nil, err
	}

	if sale.TicketInfo.Quantity <= 1 {
		return qrCode, nil, nil
	}

	minted := map[string]bool{sale.TicketID: true}
	taken := func(ctx context.Context, candidate string) (bool, error) {
		if minted[candidate] {
			return true, nil
		}
		return u.identifierTaken(ctx, candidate)
	}

	tickets := make([]sales.Ticket, 0, sale.TicketInfo.Quantity)
	for i := 0; i < sale.TicketInfo.Quantity; i++ {
		ticketID, err := u.references.Generate(ctx, sale.CustomerInfo.FirstName, taken)
		if err != nil {
			return "", nil, fmt.Errorf("failed to generate ticket id: %w", err)
		}
		minted[ticketID] = true

		ticketQR, err := u.renderQR(sale, ticketID, now)
		if err != nil {
			return "", nil, err
		}
		tickets = append(tickets, sales.Ticket{TicketID: ticketID, QRCode: ticketQR})
	}

	return qrCode, tickets, nil
}

func (u *Usecase) renderQR(sale *sales.TicketSale, ticketID string, now time.Time) (string, error) {
	payload, err := sale.QRPayload(ticketID, u.event, now)
	if err != nil {
		return "", err
	}
	qrCode, err := u.qr.Render(payload)
	if err != nil {
		return "", fmt.Errorf("failed to render qr code for %s: %w", ticketID, err)
	}
	return qrCode, nil
}
