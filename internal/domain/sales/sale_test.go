package sales_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketsale/internal/domain/sales"
)

var now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func newBankTransferSale(t *testing.T, ticketType string, quantity int) sales.TicketSale {
	t.Helper()
	sale, err := sales.NewSale(sales.NewSaleParams{
		Customer: sales.CustomerInfo{
			FirstName: "Ada",
			LastName:  "Obi",
			Email:     "ada@example.com",
			Phone:     "+2348000000000",
		},
		TicketType: ticketType,
		Quantity:   quantity,
		Method:     sales.MethodBankTransfer,
		Reference:  "ADA1234",
		Now:        now,
	})
	require.NoError(t, err)
	return sale
}

func TestNewSale(t *testing.T) {
	sale := newBankTransferSale(t, "regular", 2)

	assert.Equal(t, sales.PaymentPendingTransfer, sale.PaymentInfo.Status)
	assert.Equal(t, sales.SalePendingPayment, sale.Status)
	assert.Equal(t, int64(5000), sale.TicketInfo.UnitPrice)
	assert.Equal(t, int64(10000), sale.TicketInfo.TotalAmount)
	assert.Equal(t, int64(10000), sale.PaymentInfo.Amount)
	assert.Equal(t, "NGN", sale.PaymentInfo.Currency)
	assert.Equal(t, "ADA1234", sale.TicketID)
	assert.Equal(t, "ADA1234", sale.Reference())
}

func TestNewSale_validation(t *testing.T) {
	valid := sales.NewSaleParams{
		Customer:   sales.CustomerInfo{FirstName: "Ada", Email: "ada@example.com", Phone: "1"},
		TicketType: "regular",
		Quantity:   1,
		Method:     sales.MethodBankTransfer,
		Reference:  "ADA1111",
		Now:        now,
	}

	testCases := []struct {
		name   string
		modify func(p *sales.NewSaleParams)
		field  string
	}{
		{"missing name", func(p *sales.NewSaleParams) { p.Customer.FirstName = "" }, "fullName"},
		{"bad email", func(p *sales.NewSaleParams) { p.Customer.Email = "nope" }, "email"},
		{"missing phone", func(p *sales.NewSaleParams) { p.Customer.Phone = "" }, "phone"},
		{"zero quantity", func(p *sales.NewSaleParams) { p.Quantity = 0 }, "quantity"},
		{"unknown type", func(p *sales.NewSaleParams) { p.TicketType = "balcony" }, "ticketType"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := valid
			tc.modify(&params)

			_, err := sales.NewSale(params)

			var validationErr *sales.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestTicketSale_MarkTransferCompleted(t *testing.T) {
	sale := newBankTransferSale(t, "regular", 2)

	require.NoError(t, sale.MarkTransferCompleted("10.0.0.1", now))

	assert.Equal(t, sales.PaymentPendingApproval, sale.PaymentInfo.Status)
	assert.Equal(t, 1, sale.PaymentInfo.TransferClickCount)
	assert.Equal(t, "10.0.0.1", sale.PaymentInfo.UserIPAddress)
	assert.Equal(t, now, *sale.PaymentInfo.TransferMarkedAt)
	assert.Equal(t, now, *sale.PaymentInfo.TransferClickedAt)

	err := sale.MarkTransferCompleted("10.0.0.1", now.Add(time.Hour))
	assert.ErrorIs(t, err, sales.ErrAlreadyProcessed)
	assert.Equal(t, 1, sale.PaymentInfo.TransferClickCount)
}

func TestTicketSale_Approve(t *testing.T) {
	t.Run("from pending approval", func(t *testing.T) {
		sale := newBankTransferSale(t, "regular", 1)
		require.NoError(t, sale.MarkTransferCompleted("ip", now))

		err := sale.Approve(sales.Approval{ApprovedBy: "DNCV-1001", QRCode: "data:image/png;base64,AAA"}, now)
		require.NoError(t, err)

		assert.Equal(t, sales.PaymentCompleted, sale.PaymentInfo.Status)
		assert.Equal(t, sales.SaleConfirmed, sale.Status)
		assert.Equal(t, "DNCV-1001", sale.PaymentInfo.ApprovedBy)
		assert.Equal(t, "data:image/png;base64,AAA", sale.QRCode)
		assert.NotNil(t, sale.PaymentInfo.PaidAt)

		err = sale.Approve(sales.Approval{ApprovedBy: "DNCV-1001"}, now)
		assert.ErrorIs(t, err, sales.ErrAlreadyApproved)
	})

	t.Run("strict path requires pending approval", func(t *testing.T) {
		sale := newBankTransferSale(t, "regular", 1)

		err := sale.Approve(sales.Approval{ApprovedBy: "DNCV-1001"}, now)
		assert.ErrorIs(t, err, sales.ErrAlreadyProcessed)
		assert.Equal(t, sales.PaymentPendingTransfer, sale.PaymentInfo.Status)
	})

	t.Run("legacy path from pending transfer", func(t *testing.T) {
		sale := newBankTransferSale(t, "regular", 1)

		err := sale.Approve(sales.Approval{ApprovedBy: "DNCV-1001", Legacy: true}, now)
		require.NoError(t, err)
		assert.Equal(t, sales.PaymentCompleted, sale.PaymentInfo.Status)
	})
}

func TestTicketSale_Reject(t *testing.T) {
	t.Run("default reason", func(t *testing.T) {
		sale := newBankTransferSale(t, "student", 1)
		require.NoError(t, sale.MarkTransferCompleted("ip", now))

		require.NoError(t, sale.Reject("DNCV-1001", "  ", now))

		assert.Equal(t, sales.PaymentRejected, sale.PaymentInfo.Status)
		assert.Equal(t, sales.SaleRejected, sale.Status)
		assert.Equal(t, sales.DefaultRejectionReason, sale.PaymentInfo.RejectionReason)
		assert.Equal(t, "DNCV-1001", sale.PaymentInfo.RejectedBy)
	})

	t.Run("completed sale cannot be rejected", func(t *testing.T) {
		sale := newBankTransferSale(t, "student", 1)
		require.NoError(t, sale.MarkTransferCompleted("ip", now))
		require.NoError(t, sale.Approve(sales.Approval{ApprovedBy: "a"}, now))

		err := sale.Reject("DNCV-1001", "fake receipt", now)
		assert.ErrorIs(t, err, sales.ErrAlreadyApproved)
		assert.Equal(t, sales.PaymentCompleted, sale.PaymentInfo.Status)
	})
}

func TestTicketSale_Gateway(t *testing.T) {
	sale, err := sales.NewSale(sales.NewSaleParams{
		Customer:   sales.CustomerInfo{FirstName: "Ada", Email: "ada@example.com", Phone: "1"},
		TicketType: "vip-single",
		Quantity:   1,
		Method:     sales.MethodPaystack,
		Reference:  "ADA9999",
		Now:        now,
	})
	require.NoError(t, err)
	assert.Equal(t, sales.PaymentPending, sale.PaymentInfo.Status)

	require.NoError(t, sale.CompleteByGateway("qr", nil, nil, now))
	assert.Equal(t, sales.PaymentCompleted, sale.PaymentInfo.Status)

	assert.ErrorIs(t, sale.CompleteByGateway("qr", nil, nil, now), sales.ErrAlreadyApproved)
	assert.ErrorIs(t, sale.FailByGateway("declined", nil, now), sales.ErrAlreadyProcessed)
	assert.Equal(t, sales.PaymentCompleted, sale.PaymentInfo.Status)
}

func TestTicketSale_VerifyTicket(t *testing.T) {
	t.Run("sale level ticket", func(t *testing.T) {
		sale := newBankTransferSale(t, "regular", 1)
		_, err := sale.VerifyTicket("ADA1234", "gate-1", now)
		assert.ErrorIs(t, err, sales.ErrNotFound, "payment not completed yet")

		require.NoError(t, sale.Approve(sales.Approval{ApprovedBy: "a", Legacy: true}, now))

		ticket, err := sale.VerifyTicket("ADA1234", "", now)
		require.NoError(t, err)
		assert.True(t, ticket.IsUsed)
		assert.Equal(t, sales.DefaultVerifier, ticket.VerifiedBy)

		later := now.Add(time.Hour)
		again, err := sale.VerifyTicket("ADA1234", "gate-2", later)
		assert.ErrorIs(t, err, sales.ErrAlreadyUsed)
		assert.Equal(t, now, *again.UsedAt)
		assert.Equal(t, sales.DefaultVerifier, again.VerifiedBy)
	})

	t.Run("per ticket", func(t *testing.T) {
		sale := newBankTransferSale(t, "regular", 2)
		require.NoError(t, sale.Approve(sales.Approval{
			ApprovedBy: "a",
			Legacy:     true,
			Tickets:    []sales.Ticket{{TicketID: "ADA1111"}, {TicketID: "ADA2222"}},
		}, now))

		_, err := sale.VerifyTicket("ADA2222", "gate-1", now)
		require.NoError(t, err)

		_, err = sale.VerifyTicket("ADA1111", "gate-1", now)
		require.NoError(t, err)

		_, err = sale.VerifyTicket("ADA2222", "gate-1", now)
		assert.ErrorIs(t, err, sales.ErrAlreadyUsed)

		_, err = sale.VerifyTicket("ADA1234", "gate-1", now)
		assert.ErrorIs(t, err, sales.ErrNotFound, "sale level id is not an admission unit")
	})
}

func TestSplitFullName(t *testing.T) {
	first, last := sales.SplitFullName("  Ada  Chioma Obi ")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "Chioma Obi", last)

	first, last = sales.SplitFullName("")
	assert.Empty(t, first)
	assert.Empty(t, last)
}
