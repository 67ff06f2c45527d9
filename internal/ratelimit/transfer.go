package ratelimit

import (
	"context"
	"fmt"
	"math"
	"ticketsale/internal/domain/sales"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

const (
	DefaultReferenceWindow  = 2 * time.Minute
	DefaultTicketTypeWindow = 90 * time.Second
)

//go:generate mockgen -destination=mocks/click_finder_mock.go -package=mocks . ClickFinder
type ClickFinder interface {
	FindRecentTransferClick(
		ctx context.Context,
		clientIP string,
		ticketType sales.TicketType,
		since time.Time,
		excludeReference string,
	) (*time.Time, error)
}

// TransferLimiter guards the "transfer completed" action. Its state lives in the
// persisted transferClickedAt and userIpAddress fields of the sales.
type TransferLimiter struct {
	clicks           ClickFinder
	referenceWindow  time.Duration
	ticketTypeWindow time.Duration
}

func NewTransferLimiter(clicks ClickFinder, referenceWindow, ticketTypeWindow time.Duration) *TransferLimiter {
	if clicks == nil {
		panic("missing clicks")
	}
	if referenceWindow <= 0 {
		referenceWindow = DefaultReferenceWindow
	}
	if ticketTypeWindow <= 0 {
		ticketTypeWindow = DefaultTicketTypeWindow
	}

	return &TransferLimiter{
		clicks:           clicks,
		referenceWindow:  referenceWindow,
		ticketTypeWindow: ticketTypeWindow,
	}
}

// Check returns *sales.RateLimitedError when clientIP marked another sale of the
// same ticket type, or this very sale, too recently.
func (l *TransferLimiter) Check(ctx context.Context, sale sales.TicketSale, clientIP string, now time.Time) error {
	ticketType := sale.TicketInfo.Type

	clickedAt, err := l.clicks.FindRecentTransferClick(
		ctx,
		clientIP,
		ticketType,
		now.Add(-l.ticketTypeWindow),
		sale.Reference(),
	)
	if err != nil {
		return fmt.Errorf("failed to check recent transfer clicks: %w", err)
	}
	if clickedAt != nil {
		wait := WaitSeconds(l.ticketTypeWindow, now.Sub(*clickedAt))
		log.FromContext(ctx).WithField("ticket_type", ticketType).
			WithField("client_ip", clientIP).
			WithField("wait_seconds", wait).
			Info("Transfer click rate limited on ticket type")

		return &sales.RateLimitedError{
			WaitSeconds: wait,
			Scope:       sales.ScopeTicketType,
			TicketType:  string(ticketType),
		}
	}

	last := sale.PaymentInfo.TransferClickedAt
	if last != nil && sale.PaymentInfo.UserIPAddress == clientIP {
		if elapsed := now.Sub(*last); elapsed < l.referenceWindow {
			wait := WaitSeconds(l.referenceWindow, elapsed)
			log.FromContext(ctx).WithField("reference", sale.Reference()).
				WithField("client_ip", clientIP).
				WithField("wait_seconds", wait).
				Info("Transfer click rate limited on reference")

			return &sales.RateLimitedError{
				WaitSeconds: wait,
				Scope:       sales.ScopeReference,
				TicketType:  string(ticketType),
			}
		}
	}

	return nil
}

// WaitSeconds is the remaining part of window after elapsed, rounded up, at least 1.
func WaitSeconds(window, elapsed time.Duration) int {
	wait := int(math.Ceil((window - elapsed).Seconds()))
	if wait < 1 {
		return 1
	}
	return wait
}
