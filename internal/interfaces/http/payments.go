package http

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"io"
	"net/http"
	"ticketsale/internal/application/usecases/payments"
	"ticketsale/internal/domain/sales"
	"time"
)

const maxWebhookBody = 1 << 20

type InitiatePaymentRequest struct {
	FullName   string `json:"fullName" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	TicketType string `json:"ticketType" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

func (r InitiatePaymentRequest) toUsecase() payments.InitiateRequest {
	return payments.InitiateRequest{
		FullName:   r.FullName,
		Email:      r.Email,
		Phone:      r.Phone,
		TicketType: r.TicketType,
		Quantity:   r.Quantity,
	}
}

type BankTransferResponse struct {
	Reference    string           `json:"reference"`
	CustomerName string           `json:"customerName"`
	Amount       int64            `json:"amount"`
	Currency     string           `json:"currency"`
	TicketType   sales.TicketType `json:"ticketType"`
	Quantity     int              `json:"quantity"`
}

func (s *Server) bindInitiate(c echo.Context) (payments.InitiateRequest, error) {
	var request InitiatePaymentRequest
	if err := c.Bind(&request); err != nil {
		return payments.InitiateRequest{}, err
	}
	if err := c.Validate(&request); err != nil {
		return payments.InitiateRequest{}, err
	}
	return request.toUsecase(), nil
}

func (s *Server) InitiateBankTransferHandler(c echo.Context) error {
	request, err := s.bindInitiate(c)
	if err != nil {
		return err
	}

	sale, err := s.payments.InitiateBankTransfer(c.Request().Context(), request)
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "Payment reference generated successfully.", BankTransferResponse{
		Reference:    sale.Reference(),
		CustomerName: sale.CustomerInfo.FullName(),
		Amount:       sale.PaymentInfo.Amount,
		Currency:     sale.PaymentInfo.Currency,
		TicketType:   sale.TicketInfo.Type,
		Quantity:     sale.TicketInfo.Quantity,
	})
}

type ReferenceRequest struct {
	Reference string `json:"reference" validate:"required"`
}

type TransferCompletedResponse struct {
	Reference  string              `json:"reference"`
	Status     sales.PaymentStatus `json:"status"`
	Message    string              `json:"message"`
	ClickCount int                 `json:"clickCount"`
}

func (s *Server) TransferCompletedHandler(c echo.Context) error {
	var request ReferenceRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return newAPIError(http.StatusBadRequest, "validation_error", "Payment reference is required")
	}

	sale, err := s.payments.MarkTransferCompleted(c.Request().Context(), request.Reference, c.RealIP())
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK,
		"Transfer marked as completed. Your ticket will be sent once payment is confirmed by our team.",
		TransferCompletedResponse{
			Reference:  sale.Reference(),
			Status:     sale.PaymentInfo.Status,
			Message:    "We will verify your payment and send your ticket within 2-4 hours during business hours.",
			ClickCount: sale.PaymentInfo.TransferClickCount,
		},
	)
}

func (s *Server) InitializePaystackHandler(c echo.Context) error {
	request, err := s.bindInitiate(c)
	if err != nil {
		return err
	}

	checkout, err := s.payments.InitializeGatewayPayment(c.Request().Context(), request)
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "Payment initialized", checkout)
}

func (s *Server) VerifyPaymentHandler(c echo.Context) error {
	sale, err := s.payments.VerifyGatewayPayment(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "Payment verified", map[string]any{
		"reference": sale.Reference(),
		"status":    sale.PaymentInfo.Status,
		"amount":    sale.PaymentInfo.Amount,
		"ticketId":  sale.TicketID,
		"paidAt":    sale.PaymentInfo.PaidAt,
	})
}

func (s *Server) PaymentStatusHandler(c echo.Context) error {
	status, err := s.payments.PaymentStatus(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "", status)
}

func (s *Server) PaystackWebhookHandler(c echo.Context) error {
	return s.handleWebhook(c, payments.ProviderPaystack, "x-paystack-signature")
}

func (s *Server) OpayWebhookHandler(c echo.Context) error {
	return s.handleWebhook(c, payments.ProviderOpay, "signature")
}

// handleWebhook passes the body on byte for byte, the signature covers the raw payload.
func (s *Server) handleWebhook(c echo.Context, provider payments.Provider, signatureHeader string) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return fmt.Errorf("failed to read webhook body: %w", err)
	}

	err = s.payments.HandleGatewayEvent(c.Request().Context(), provider, body, c.Request().Header.Get(signatureHeader))
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "Webhook processed successfully", nil)
}

type ApproveTransferRequest struct {
	Reference string `json:"reference" validate:"required"`
}

type DecisionResponse struct {
	Reference     string              `json:"reference"`
	Status        sales.PaymentStatus `json:"status"`
	CustomerEmail string              `json:"customerEmail"`
	TicketType    string              `json:"ticketType"`
	Amount        int64               `json:"amount"`
	DecidedBy     string              `json:"decidedBy"`
}

func decisionOf(sale sales.TicketSale, decidedBy string) DecisionResponse {
	return DecisionResponse{
		Reference:     sale.Reference(),
		Status:        sale.PaymentInfo.Status,
		CustomerEmail: sale.CustomerInfo.Email,
		TicketType:    sale.TicketInfo.TypeName,
		Amount:        sale.PaymentInfo.Amount,
		DecidedBy:     decidedBy,
	}
}

// ApproveTransferHandler is the direct approval route. It may confirm a sale
// whose customer never reported the transfer.
func (s *Server) ApproveTransferHandler(c echo.Context) error {
	var request ApproveTransferRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return newAPIError(http.StatusBadRequest, "validation_error", "Payment reference is required")
	}

	return s.approve(c, request.Reference, true)
}

func (s *Server) AdminApproveHandler(c echo.Context) error {
	return s.approve(c, c.Param("reference"), false)
}

func (s *Server) approve(c echo.Context, reference string, allowLegacy bool) error {
	admin := currentAdmin(c)

	sale, err := s.payments.Approve(c.Request().Context(), payments.ApproveRequest{
		Reference:   reference,
		ApprovedBy:  admin.AdminID,
		AllowLegacy: allowLegacy,
	})
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "Payment approved and ticket sent to customer", decisionOf(sale, admin.AdminID))
}

type RejectTransferRequest struct {
	Reference string `json:"reference"`
	Reason    string `json:"reason" validate:"max=500"`
}

func (s *Server) RejectTransferHandler(c echo.Context) error {
	var request RejectTransferRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.Reference == "" {
		return newAPIError(http.StatusBadRequest, "validation_error", "Payment reference is required")
	}

	return s.reject(c, request)
}

func (s *Server) AdminRejectHandler(c echo.Context) error {
	var request RejectTransferRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	request.Reference = c.Param("reference")

	return s.reject(c, request)
}

func (s *Server) reject(c echo.Context, request RejectTransferRequest) error {
	if err := c.Validate(&request); err != nil {
		return err
	}
	admin := currentAdmin(c)

	sale, err := s.payments.Reject(c.Request().Context(), payments.RejectRequest{
		Reference:  request.Reference,
		RejectedBy: admin.AdminID,
		Reason:     request.Reason,
	})
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "Payment rejected and customer notified", decisionOf(sale, admin.AdminID))
}

type PendingTransfer struct {
	Reference        string     `json:"reference"`
	CustomerName     string     `json:"customerName"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	TicketType       string     `json:"ticketType"`
	Quantity         int        `json:"quantity"`
	Amount           int64      `json:"amount"`
	ClickCount       int        `json:"clickCount"`
	TransferMarkedAt *time.Time `json:"transferMarkedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func (s *Server) PendingTransfersHandler(c echo.Context) error {
	pending, err := s.payments.PendingTransfers(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]PendingTransfer, 0, len(pending))
	for _, sale := range pending {
		out = append(out, PendingTransfer{
			Reference:        sale.Reference(),
			CustomerName:     sale.CustomerInfo.FullName(),
			Email:            sale.CustomerInfo.Email,
			Phone:            sale.CustomerInfo.Phone,
			TicketType:       sale.TicketInfo.TypeName,
			Quantity:         sale.TicketInfo.Quantity,
			Amount:           sale.PaymentInfo.Amount,
			ClickCount:       sale.PaymentInfo.TransferClickCount,
			TransferMarkedAt: sale.PaymentInfo.TransferMarkedAt,
			CreatedAt:        sale.CreatedAt,
		})
	}

	return ok(c, http.StatusOK, "", out)
}
