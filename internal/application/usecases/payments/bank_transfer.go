package payments

import (
	"context"
	"errors"
	"fmt"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"strings"
	"ticketsale/internal/domain/sales"
	"ticketsale/internal/entities"
	"ticketsale/internal/notification"
	"time"
)

type InitiateRequest struct {
	FullName   string
	Email      string
	Phone      string
	TicketType string
	Quantity   int
}

func (r InitiateRequest) customer() sales.CustomerInfo {
	first, last := sales.SplitFullName(r.FullName)
	return sales.CustomerInfo{
		FirstName: first,
		LastName:  last,
		Email:     strings.TrimSpace(strings.ToLower(r.Email)),
		Phone:     strings.TrimSpace(r.Phone),
	}
}

// InitiateBankTransfer records a sale awaiting a bank transfer from the customer.
func (u *Usecase) InitiateBankTransfer(ctx context.Context, req InitiateRequest) (sales.TicketSale, error) {
	return u.createSale(ctx, req, sales.MethodBankTransfer)
}

func (u *Usecase) createSale(ctx context.Context, req InitiateRequest, method sales.Method) (sales.TicketSale, error) {
	var sale sales.TicketSale

	err := u.tx.Do(ctx, func(ctx context.Context) error {
		customer := req.customer()

		reference, err := u.references.Generate(ctx, customer.FirstName, u.identifierTaken)
		if err != nil {
			return err
		}

		sale, err = sales.NewSale(sales.NewSaleParams{
			Customer:   customer,
			TicketType: req.TicketType,
			Quantity:   req.Quantity,
			Method:     method,
			Reference:  reference,
			Now:        u.now().UTC(),
		})
		if err != nil {
			return err
		}

		if err := u.checkAvailability(ctx, sale.TicketInfo.Type, sale.TicketInfo.Quantity); err != nil {
			return err
		}

		if err := u.store.Create(ctx, sale); err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return sales.TicketSale{}, err
	}

	log.FromContext(ctx).
		WithField("reference", sale.Reference()).
		WithField("method", method).
		WithField("ticket_type", sale.TicketInfo.Type).
		WithField("quantity", sale.TicketInfo.Quantity).
		Info("Sale created")

	return sale, nil
}

func (u *Usecase) identifierTaken(ctx context.Context, candidate string) (bool, error) {
	taken, err := u.store.ReferenceExists(ctx, candidate)
	if err != nil || taken {
		return taken, err
	}
	return u.store.TicketIDExists(ctx, candidate)
}

func (u *Usecase) checkAvailability(ctx context.Context, ticketType sales.TicketType, quantity int) error {
	tier, _ := sales.TierFor(ticketType)

	sold, err := u.store.SoldByType(ctx)
	if err != nil {
		return fmt.Errorf("failed to count sold tickets: %w", err)
	}

	available := tier.Capacity - sold[ticketType]
	if quantity > available {
		return fmt.Errorf("tickets available: %d, requested: %d, %w", max(available, 0), quantity, sales.ErrSoldOut)
	}
	return nil
}

// MarkTransferCompleted records the customer's claim that the transfer was sent
// and moves the sale to pending_approval.
func (u *Usecase) MarkTransferCompleted(ctx context.Context, reference, clientIP string) (sales.TicketSale, error) {
	now := u.now().UTC()

	sale, err := u.store.FindByReference(ctx, reference)
	if err != nil {
		return sales.TicketSale{}, err
	}

	if err := u.limiter.Check(ctx, sale, clientIP, now); err != nil {
		var limited *sales.RateLimitedError
		if errors.As(err, &limited) {
			log.FromContext(ctx).
				WithField("reference", reference).
				WithField("client_ip", clientIP).
				WithField("scope", limited.Scope).
				WithField("wait_seconds", limited.WaitSeconds).
				Info("Transfer click rate limited")
		}
		return sales.TicketSale{}, err
	}

	marked, err := u.store.UpdateByReference(ctx, reference, func(ctx context.Context, sale *sales.TicketSale) error {
		return sale.MarkTransferCompleted(clientIP, now)
	})
	if err != nil {
		return sales.TicketSale{}, err
	}

	u.notifier.NotifyBestEffort(ctx, notification.TransferCompletedJob(marked, now))

	u.publish(ctx, entities.TransferMarked_v1{
		Header:     entities.NewEventHeaderWithIdempotencyKey("transfer-marked-" + marked.Reference()),
		Sale:       entities.SummaryOf(marked),
		ClientIP:   clientIP,
		ClickCount: marked.PaymentInfo.TransferClickCount,
		MarkedAt:   now,
	})

	return marked, nil
}

// PendingTransfers lists the sales waiting for an admin decision, newest claim first.
func (u *Usecase) PendingTransfers(ctx context.Context) ([]sales.TicketSale, error) {
	pending, err := u.store.ListPendingTransfers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending transfers: %w", err)
	}
	return pending, nil
}

type StatusView struct {
	Reference    string              `json:"reference"`
	Status       sales.PaymentStatus `json:"status"`
	SaleStatus   sales.SaleStatus    `json:"saleStatus"`
	Amount       int64               `json:"amount"`
	Currency     string              `json:"currency"`
	CustomerName string              `json:"customerName"`
	TicketType   string              `json:"ticketType"`
	Quantity     int                 `json:"quantity"`
	CreatedAt    time.Time           `json:"createdAt"`
	PaidAt       *time.Time          `json:"paidAt,omitempty"`
}

// PaymentStatus is the public view of a sale, safe to show to anyone holding the reference.
func (u *Usecase) PaymentStatus(ctx context.Context, reference string) (StatusView, error) {
	sale, err := u.store.FindByReference(ctx, reference)
	if err != nil {
		return StatusView{}, err
	}

	return StatusView{
		Reference:    sale.Reference(),
		Status:       sale.PaymentInfo.Status,
		SaleStatus:   sale.Status,
		Amount:       sale.PaymentInfo.Amount,
		Currency:     sale.PaymentInfo.Currency,
		CustomerName: sale.CustomerInfo.FullName(),
		TicketType:   sale.TicketInfo.TypeName,
		Quantity:     sale.TicketInfo.Quantity,
		CreatedAt:    sale.CreatedAt,
		PaidAt:       sale.PaymentInfo.PaidAt,
	}, nil
}
