package sales

import (
	"encoding/json"
	"net/mail"
	"strings"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/google/uuid"
)

const (
	DefaultRejectionReason = "Payment not verified"
	DefaultVerifier        = "System"
)

type CustomerInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (c CustomerInfo) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// SplitFullName treats the first word as the first name and the rest as the last name.
func SplitFullName(fullName string) (string, string) {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

type TicketInfo struct {
	Type        TicketType `json:"typeId"`
	TypeName    string     `json:"typeName"`
	Quantity    int        `json:"quantity"`
	UnitPrice   int64      `json:"unitPrice"`
	TotalAmount int64      `json:"totalAmount"`
}

type PaymentInfo struct {
	Method    Method        `json:"method"`
	Status    PaymentStatus `json:"status"`
	Reference string        `json:"reference"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency"`

	TransferMarkedAt  *time.Time `json:"transferMarkedAt,omitempty"`
	TransferClickedAt *time.Time `json:"transferClickedAt,omitempty"`
	PaidAt            *time.Time `json:"paidAt,omitempty"`
	RejectedAt        *time.Time `json:"rejectedAt,omitempty"`
	FailedAt          *time.Time `json:"failedAt,omitempty"`
	LastReminderSent  *time.Time `json:"lastReminderSent,omitempty"`

	TransferClickCount int    `json:"transferClickCount"`
	UserIPAddress      string `json:"userIpAddress,omitempty"`

	ApprovedBy      string `json:"approvedBy,omitempty"`
	RejectedBy      string `json:"rejectedBy,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
	FailureReason   string `json:"failureReason,omitempty"`

	GatewayData json.RawMessage `json:"gatewayData,omitempty"`
}

// Ticket is one admission unit of a multi-ticket sale.
type Ticket struct {
	TicketID   string     `json:"ticketId"`
	QRCode     string     `json:"qrCode,omitempty"`
	IsUsed     bool       `json:"isUsed"`
	UsedAt     *time.Time `json:"usedAt,omitempty"`
	VerifiedBy string     `json:"verifiedBy,omitempty"`
}

type TicketSale struct {
	ID           uuid.UUID    `json:"id"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
	TicketInfo   TicketInfo   `json:"ticketInfo"`
	PaymentInfo  PaymentInfo  `json:"paymentInfo"`

	TicketID string     `json:"ticketId"`
	QRCode   string     `json:"qrCode,omitempty"`
	Status   SaleStatus `json:"status"`
	Tickets  []Ticket   `json:"tickets,omitempty"`

	// sale-level admission state, used when Tickets is empty
	IsUsed     bool       `json:"isUsed"`
	UsedAt     *time.Time `json:"usedAt,omitempty"`
	VerifiedBy string     `json:"verifiedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewSaleParams struct {
	Customer   CustomerInfo
	TicketType string
	Quantity   int
	Method     Method
	Reference  string
	Now        time.Time
}

func NewSale(p NewSaleParams) (TicketSale, error) {
	if strings.TrimSpace(p.Customer.FirstName) == "" {
		return TicketSale{}, NewValidationError("fullName", "is required")
	}
	if _, err := mail.ParseAddress(p.Customer.Email); err != nil {
		return TicketSale{}, NewValidationError("email", "valid email address is required")
	}
	if strings.TrimSpace(p.Customer.Phone) == "" {
		return TicketSale{}, NewValidationError("phone", "is required")
	}
	if p.Quantity < 1 {
		return TicketSale{}, NewValidationError("quantity", "must be at least 1")
	}
	ticketType, err := ParseTicketType(p.TicketType)
	if err != nil {
		return TicketSale{}, err
	}
	if p.Reference == "" {
		return TicketSale{}, NewValidationError("reference", "is required")
	}
	tier, _ := TierFor(ticketType)

	status := PaymentPending
	if p.Method == MethodBankTransfer {
		status = PaymentPendingTransfer
	}
	total := tier.Price * int64(p.Quantity)

	return TicketSale{
		ID:           uuid.New(),
		CustomerInfo: p.Customer,
		TicketInfo: TicketInfo{
			Type:        ticketType,
			TypeName:    tier.Name,
			Quantity:    p.Quantity,
			UnitPrice:   tier.Price,
			TotalAmount: total,
		},
		PaymentInfo: PaymentInfo{
			Method:    p.Method,
			Status:    status,
			Reference: p.Reference,
			Amount:    total,
			Currency:  DefaultCurrency,
		},
		TicketID:  p.Reference,
		Status:    SaleStatusFor(status),
		CreatedAt: p.Now,
		UpdatedAt: p.Now,
	}, nil
}

func (s *TicketSale) Reference() string {
	return s.PaymentInfo.Reference
}

func (s *TicketSale) setPaymentStatus(status PaymentStatus, now time.Time) {
	s.PaymentInfo.Status = status
	s.Status = SaleStatusFor(status)
	s.UpdatedAt = now
}

func (s *TicketSale) MarkTransferCompleted(clientIP string, now time.Time) error {
	if err := CheckTransition(TransitionMarkTransfer, s.PaymentInfo.Status); err != nil {
		return err
	}
	s.setPaymentStatus(PaymentPendingApproval, now)
	s.PaymentInfo.TransferMarkedAt = pointer.To(now)
	s.PaymentInfo.TransferClickedAt = pointer.To(now)
	s.PaymentInfo.UserIPAddress = clientIP
	s.PaymentInfo.TransferClickCount++
	return nil
}

type Approval struct {
	ApprovedBy string
	QRCode     string
	Tickets    []Ticket
	// Legacy allows approval from any state but completed.
	Legacy bool
}

func (s *TicketSale) Approve(a Approval, now time.Time) error {
	transition := TransitionApprove
	if a.Legacy {
		transition = TransitionLegacyApprove
	}
	if err := CheckTransition(transition, s.PaymentInfo.Status); err != nil {
		return err
	}
	s.complete(a.QRCode, a.Tickets, now)
	s.PaymentInfo.ApprovedBy = a.ApprovedBy
	return nil
}

func (s *TicketSale) complete(qrCode string, tickets []Ticket, now time.Time) {
	s.setPaymentStatus(PaymentCompleted, now)
	s.PaymentInfo.PaidAt = pointer.To(now)
	s.QRCode = qrCode
	if len(tickets) > 0 {
		s.Tickets = tickets
	}
}

func (s *TicketSale) Reject(rejectedBy, reason string, now time.Time) error {
	if err := CheckTransition(TransitionReject, s.PaymentInfo.Status); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultRejectionReason
	}
	s.setPaymentStatus(PaymentRejected, now)
	s.PaymentInfo.RejectedAt = pointer.To(now)
	s.PaymentInfo.RejectedBy = rejectedBy
	s.PaymentInfo.RejectionReason = reason
	return nil
}

func (s *TicketSale) CompleteByGateway(qrCode string, tickets []Ticket, gatewayData json.RawMessage, now time.Time) error {
	if err := CheckTransition(TransitionGatewaySuccess, s.PaymentInfo.Status); err != nil {
		return err
	}
	s.complete(qrCode, tickets, now)
	s.PaymentInfo.GatewayData = gatewayData
	return nil
}

func (s *TicketSale) FailByGateway(reason string, gatewayData json.RawMessage, now time.Time) error {
	if err := CheckTransition(TransitionGatewayFailure, s.PaymentInfo.Status); err != nil {
		return err
	}
	if reason == "" {
		reason = "Payment failed"
	}
	s.setPaymentStatus(PaymentFailed, now)
	s.PaymentInfo.FailedAt = pointer.To(now)
	s.PaymentInfo.FailureReason = reason
	s.PaymentInfo.GatewayData = gatewayData
	return nil
}

// HasTicket reports whether ticketID admits into this sale.
func (s *TicketSale) HasTicket(ticketID string) bool {
	if len(s.Tickets) > 0 {
		for _, t := range s.Tickets {
			if t.TicketID == ticketID {
				return true
			}
		}
		return false
	}
	return s.TicketID == ticketID
}

// VerifyTicket marks an admission unit as used. On ErrAlreadyUsed the returned
// ticket carries the original usedAt and verifiedBy.
func (s *TicketSale) VerifyTicket(ticketID, verifiedBy string, now time.Time) (Ticket, error) {
	if s.PaymentInfo.Status != PaymentCompleted || !s.HasTicket(ticketID) {
		return Ticket{}, ErrNotFound
	}
	if strings.TrimSpace(verifiedBy) == "" {
		verifiedBy = DefaultVerifier
	}

	if len(s.Tickets) > 0 {
		for i := range s.Tickets {
			t := &s.Tickets[i]
			if t.TicketID != ticketID {
				continue
			}
			if t.IsUsed {
				return *t, ErrAlreadyUsed
			}
			t.IsUsed = true
			t.UsedAt = pointer.To(now)
			t.VerifiedBy = verifiedBy
			s.UpdatedAt = now
			return *t, nil
		}
	}

	if s.IsUsed {
		return s.saleLevelTicket(), ErrAlreadyUsed
	}
	s.IsUsed = true
	s.UsedAt = pointer.To(now)
	s.VerifiedBy = verifiedBy
	s.UpdatedAt = now
	return s.saleLevelTicket(), nil
}

func (s *TicketSale) saleLevelTicket() Ticket {
	return Ticket{
		TicketID:   s.TicketID,
		QRCode:     s.QRCode,
		IsUsed:     s.IsUsed,
		UsedAt:     s.UsedAt,
		VerifiedBy: s.VerifiedBy,
	}
}

// PendingSince is the time the customer reported the transfer, zero when unset.
func (s *TicketSale) PendingSince() time.Time {
	return pointer.Get(s.PaymentInfo.TransferMarkedAt)
}
