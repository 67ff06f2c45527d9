package entities

import (
	"ticketsale/internal/domain/sales"
	"time"
)

type Event interface {
	GetHeader() EventHeader
	SaleReference() string
}

type SaleSummary struct {
	Reference     string `json:"reference"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	TicketType    string `json:"ticketType"`
	Quantity      int    `json:"quantity"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

type TransferMarked_v1 struct {
	Header EventHeader `json:"header"`
	Sale   SaleSummary `json:"sale"`

	ClientIP   string    `json:"clientIp"`
	ClickCount int       `json:"clickCount"`
	MarkedAt   time.Time `json:"markedAt"`
}

func (e TransferMarked_v1) GetHeader() EventHeader { return e.Header }
func (e TransferMarked_v1) SaleReference() string  { return e.Sale.Reference }

type PaymentApproved_v1 struct {
	Header EventHeader `json:"header"`
	Sale   SaleSummary `json:"sale"`

	ApprovedBy string    `json:"approvedBy"`
	Method     string    `json:"method"`
	PaidAt     time.Time `json:"paidAt"`
}

func (e PaymentApproved_v1) GetHeader() EventHeader { return e.Header }
func (e PaymentApproved_v1) SaleReference() string  { return e.Sale.Reference }

type PaymentRejected_v1 struct {
	Header EventHeader `json:"header"`
	Sale   SaleSummary `json:"sale"`

	RejectedBy string    `json:"rejectedBy"`
	Reason     string    `json:"reason"`
	RejectedAt time.Time `json:"rejectedAt"`
}

func (e PaymentRejected_v1) GetHeader() EventHeader { return e.Header }
func (e PaymentRejected_v1) SaleReference() string  { return e.Sale.Reference }

type PaymentFailed_v1 struct {
	Header EventHeader `json:"header"`
	Sale   SaleSummary `json:"sale"`

	Provider string    `json:"provider"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failedAt"`
}

func (e PaymentFailed_v1) GetHeader() EventHeader { return e.Header }
func (e PaymentFailed_v1) SaleReference() string  { return e.Sale.Reference }

type SuspiciousPayment_v1 struct {
	Header EventHeader `json:"header"`
	Sale   SaleSummary `json:"sale"`

	PendingSince time.Time `json:"pendingSince"`
	DaysPending  int       `json:"daysPending"`
}

func (e SuspiciousPayment_v1) GetHeader() EventHeader { return e.Header }
func (e SuspiciousPayment_v1) SaleReference() string  { return e.Sale.Reference }

type TicketVerified_v1 struct {
	Header EventHeader `json:"header"`

	Reference  string    `json:"reference"`
	TicketID   string    `json:"ticketId"`
	VerifiedBy string    `json:"verifiedBy"`
	VerifiedAt time.Time `json:"verifiedAt"`
}

func (e TicketVerified_v1) GetHeader() EventHeader { return e.Header }
func (e TicketVerified_v1) SaleReference() string  { return e.Reference }

func SummaryOf(sale sales.TicketSale) SaleSummary {
	return SaleSummary{
		Reference:     sale.Reference(),
		CustomerName:  sale.CustomerInfo.FullName(),
		CustomerEmail: sale.CustomerInfo.Email,
		CustomerPhone: sale.CustomerInfo.Phone,
		TicketType:    sale.TicketInfo.TypeName,
		Quantity:      sale.TicketInfo.Quantity,
		Amount:        sale.PaymentInfo.Amount,
		Currency:      sale.PaymentInfo.Currency,
	}
}
