package events

import (
	"fmt"
	"strings"
	"ticketsale/internal/entities"
	"ticketsale/internal/notification"
)

func TransferAlertMessage(sale entities.SaleSummary) string {
	var b strings.Builder
	b.WriteString("🚨 *URGENT: PAYMENT APPROVAL NEEDED*\n\n")
	writeSaleLines(&b, sale)
	fmt.Fprintf(&b, "*Contact:* %s\n\n", sale.CustomerPhone)
	b.WriteString("Customer has marked their bank transfer as completed. Please verify and approve ASAP.")
	return b.String()
}

func SuspiciousAlertMessage(sale entities.SaleSummary, daysPending int) string {
	var b strings.Builder
	b.WriteString("⚠️ *SUSPICIOUS PAYMENT*\n\n")
	writeSaleLines(&b, sale)
	fmt.Fprintf(&b, "*Contact:* %s\n", sale.CustomerPhone)
	fmt.Fprintf(&b, "*Pending for:* %d days\n\n", daysPending)
	b.WriteString("This transfer has been waiting for approval too long. Verify it or reject it.")
	return b.String()
}

func writeSaleLines(b *strings.Builder, sale entities.SaleSummary) {
	fmt.Fprintf(b, "*Reference:* %s\n", sale.Reference)
	fmt.Fprintf(b, "*Customer:* %s\n", sale.CustomerName)
	fmt.Fprintf(b, "*Ticket:* %s\n", sale.TicketType)
	fmt.Fprintf(b, "*Quantity:* %d\n", sale.Quantity)
	fmt.Fprintf(b, "*Amount:* %s\n", notification.FormatNaira(sale.Amount))
}
