package notification_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ticketsale/internal/domain/sales"
	"ticketsale/internal/notification"
)

var (
	now   = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	event = sales.EventDetails{Date: "2025-10-05", Time: "18:00", Venue: "Main Auditorium"}
)

func newSale(t *testing.T, quantity int) sales.TicketSale {
	t.Helper()
	sale, err := sales.NewSale(sales.NewSaleParams{
		Customer: sales.CustomerInfo{
			FirstName: "Ada",
			LastName:  "Obi",
			Email:     "ada@example.com",
			Phone:     "+2348000000000",
		},
		TicketType: "regular",
		Quantity:   quantity,
		Method:     sales.MethodBankTransfer,
		Reference:  "ADA1234",
		Now:        now,
	})
	require.NoError(t, err)
	return sale
}

func newRenderer(t *testing.T) *notification.Renderer {
	t.Helper()
	r, err := notification.NewRenderer(event)
	require.NoError(t, err)
	return r
}
