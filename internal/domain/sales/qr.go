package sales

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventDetails is printed on every ticket.
type EventDetails struct {
	Date  string `json:"eventDate"`
	Time  string `json:"eventTime"`
	Venue string `json:"venue"`
}

type QRPayload struct {
	TicketID     string `json:"ticketId"`
	Reference    string `json:"reference"`
	CustomerName string `json:"customerName"`
	TicketType   string `json:"ticketType"`
	Quantity     int    `json:"quantity"`
	EventDetails
	GeneratedAt time.Time `json:"generatedAt"`
}

// QRPayload builds the JSON encoded in the QR code of ticketID.
func (s *TicketSale) QRPayload(ticketID string, event EventDetails, now time.Time) (string, error) {
	quantity := s.TicketInfo.Quantity
	if ticketID != s.TicketID {
		quantity = 1
	}
	payload, err := json.Marshal(QRPayload{
		TicketID:     ticketID,
		Reference:    s.Reference(),
		CustomerName: s.CustomerInfo.FullName(),
		TicketType:   s.TicketInfo.TypeName,
		Quantity:     quantity,
		EventDetails: event,
		GeneratedAt:  now.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal qr payload: %w", err)
	}
	return string(payload), nil
}
