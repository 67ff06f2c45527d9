package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketsale/internal/domain/sales"
	"ticketsale/internal/notification"
)

func TestRenderer_Render(t *testing.T) {
	r := newRenderer(t)
	sale := newSale(t, 2)
	sale.Tickets = []sales.Ticket{
		{TicketID: "ADA1234-1", QRCode: "data:image/png;base64,AAAA"},
		{TicketID: "ADA1234-2", QRCode: "javascript:alert(1)"},
	}

	testCases := []struct {
		name    string
		job     notification.Job
		subject string
		body    []string
	}{
		{
			name:    "transfer completed",
			job:     notification.TransferCompletedJob(sale, now),
			subject: "Transfer Confirmed - DNCV Concert Tickets",
			body:    []string{"Ada Obi", "ADA1234", "₦10,000"},
		},
		{
			name:    "ticket email",
			job:     notification.TicketEmailJob(sale, now),
			subject: "Your DNCV Concert Tickets - QR Codes Inside!",
			body:    []string{"ADA1234-1", "ADA1234-2", "data:image/png;base64,AAAA", "Main Auditorium"},
		},
		{
			name: "rejection",
			job: func() notification.Job {
				j := notification.RejectionJob(sale, now)
				j.Reason = "Amount mismatch"
				return j
			}(),
			subject: "Payment Verification Required - DNCV Concert",
			body:    []string{"Amount mismatch"},
		},
		{
			name:    "reminder",
			job:     notification.ReminderJob(sale, false, now),
			subject: "Payment Verification Reminder - ADA1234",
		},
		{
			name:    "suspicious reminder",
			job:     notification.ReminderJob(sale, true, now),
			subject: "URGENT: Payment Verification Required - ADA1234",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := r.Render(tc.job)
			require.NoError(t, err)

			assert.Equal(t, "ada@example.com", msg.To)
			assert.Equal(t, tc.subject, msg.Subject)
			for _, s := range tc.body {
				assert.Contains(t, msg.HTML, s)
			}
			assert.NotContains(t, msg.HTML, "javascript:alert")
		})
	}
}

func TestRenderer_unknownType(t *testing.T) {
	r := newRenderer(t)

	_, err := r.Render(notification.NewJob("newsletter", newSale(t, 1), now))
	assert.ErrorIs(t, err, notification.ErrUnknownJobType)
}

func TestFormatNaira(t *testing.T) {
	assert.Equal(t, "₦0", notification.FormatNaira(0))
	assert.Equal(t, "₦999", notification.FormatNaira(999))
	assert.Equal(t, "₦5,000", notification.FormatNaira(5000))
	assert.Equal(t, "₦150,000", notification.FormatNaira(150000))
	assert.Equal(t, "₦1,200,000", notification.FormatNaira(1200000))
	assert.Equal(t, "-₦2,000", notification.FormatNaira(-2000))
}
