package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	adminsusecase "ticketsale/internal/application/usecases/admins"
	"ticketsale/internal/application/usecases/dashboard"
	"ticketsale/internal/application/usecases/payments"
	paymocks "ticketsale/internal/application/usecases/payments/mocks"
	"ticketsale/internal/application/usecases/tickets"
	"ticketsale/internal/auth"
	"ticketsale/internal/domain/admins"
	"ticketsale/internal/domain/sales"
	"ticketsale/internal/infrastructure/clients"
	httpapi "ticketsale/internal/interfaces/http"
	"ticketsale/internal/interfaces/http/mocks"
	"ticketsale/internal/notification"
	"ticketsale/internal/ratelimit"
	"ticketsale/internal/repository"
)

const paystackSecret = "sk_test_secret"

var now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type response struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data"`
	Reason      string          `json:"reason"`
	Error       string          `json:"error"`
	RateLimited bool            `json:"rateLimited"`
	WaitTime    int             `json:"waitTime"`
	Scope       string          `json:"scope"`
}

type ServerTestSuite struct {
	suite.Suite

	ctrl     *gomock.Controller
	notifier *paymocks.MockNotifier
	gateway  *paymocks.MockGateway
	buffer   *mocks.MockBufferInspector
	mailer   *mocks.MockMailSender

	sales      *repository.MemorySalesRepo
	adminsRepo *repository.MemoryAdminsRepo
	events     *recordingPublisher
	tokens     *auth.TokenManager

	healthErr       error
	production      bool
	paymentThrottle *ratelimit.IPThrottle

	handler http.Handler
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

// sequentialDigits yields 1..9 in a loop, so the first reference for Ada is ADA1234.
func sequentialDigits() func() int {
	n := 0
	return func() int {
		d := n%9 + 1
		n++
		return d
	}
}

func (s *ServerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.notifier = paymocks.NewMockNotifier(s.ctrl)
	s.gateway = paymocks.NewMockGateway(s.ctrl)
	s.buffer = mocks.NewMockBufferInspector(s.ctrl)
	s.mailer = mocks.NewMockMailSender(s.ctrl)

	s.sales = repository.NewMemorySalesRepo()
	s.adminsRepo = repository.NewMemoryAdminsRepo()
	s.events = &recordingPublisher{}
	s.tokens = auth.NewTokenManager("jwt-secret", time.Hour).WithClock(func() time.Time { return now })

	s.healthErr = nil
	s.production = false
	s.paymentThrottle = nil
	s.build()
}

func (s *ServerTestSuite) build() {
	clock := func() time.Time { return now }

	paymentsUsecase := payments.NewUsecase(payments.Deps{
		Store:      s.sales,
		Tx:         repository.NewMemoryTx(),
		Limiter:    ratelimit.NewTransferLimiter(s.sales, 0, 0),
		Notifier:   s.notifier,
		QR:         clients.NewQRRenderer(),
		Events:     s.events,
		Gateway:    s.gateway,
		References: sales.NewReferenceGenerator().WithDigitSource(sequentialDigits()),
	}, payments.Config{
		Event:          sales.EventDetails{Date: "2025-10-05", Time: "18:00", Venue: "Main Auditorium"},
		PaystackSecret: paystackSecret,
		FrontendURL:    "https://tickets.example.com",
		Now:            clock,
	})

	srv := httpapi.NewServer(echo.New(), httpapi.Services{
		Payments:  paymentsUsecase,
		Tickets:   tickets.NewTicketsUsecase(s.sales, s.events, clock),
		Dashboard: dashboard.NewDashboardUsecase(s.sales, repository.NewMemorySaleEventsRepo(), time.UTC),
		Admins:    adminsusecase.NewAdminsUsecase(s.adminsRepo, s.tokens, adminsusecase.Config{Now: clock}),
		Tokens:    s.tokens,
		Buffer:    s.buffer,
		Mailer:    s.mailer,
	}, httpapi.Config{
		Production:      s.production,
		AdminEmail:      "ops@example.com",
		PaymentThrottle: s.paymentThrottle,
		Health:          func(context.Context) error { return s.healthErr },
		Now:             clock,
	})
	s.handler = srv.Handler()
}

func (s *ServerTestSuite) do(method, path string, body any, headers map[string]string) (int, response) {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		payload = b
	default:
		var err error
		payload, err = json.Marshal(b)
		s.Require().NoError(err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var resp response
	if rec.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec.Code, resp
}

func (s *ServerTestSuite) seedAdmin(id string, role admins.Role) map[string]string {
	admin, err := admins.NewAdmin(id, "Admin "+id, role, "system", now.Add(-time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(s.adminsRepo.Create(context.Background(), admin))

	token, _, err := s.tokens.Issue(id, string(role))
	s.Require().NoError(err)
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

func (s *ServerTestSuite) seedSale(ref string, method sales.Method) sales.TicketSale {
	sale, err := sales.NewSale(sales.NewSaleParams{
		Customer:   sales.CustomerInfo{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com", Phone: "+2348000000000"},
		TicketType: "regular",
		Quantity:   1,
		Method:     method,
		Reference:  ref,
		Now:        now.Add(-time.Hour),
	})
	s.Require().NoError(err)
	s.Require().NoError(s.sales.Create(context.Background(), sale))
	return sale
}

func (s *ServerTestSuite) seedPendingApproval(ref string) {
	s.seedSale(ref, sales.MethodBankTransfer)
	_, err := s.sales.UpdateByReference(context.Background(), ref, func(_ context.Context, sale *sales.TicketSale) error {
		return sale.MarkTransferCompleted("10.0.0.1", now.Add(-30*time.Minute))
	})
	s.Require().NoError(err)
}

func (s *ServerTestSuite) saleStatus(ref string) sales.PaymentStatus {
	sale, err := s.sales.FindByReference(context.Background(), ref)
	s.Require().NoError(err)
	return sale.PaymentInfo.Status
}

func (s *ServerTestSuite) TestHealth() {
	code, _ := s.do(http.MethodGet, "/health", nil, nil)
	s.Equal(http.StatusOK, code)

	s.healthErr = errors.New("redis: connection refused")
	code, _ = s.do(http.MethodGet, "/api/health", nil, nil)
	s.Equal(http.StatusServiceUnavailable, code)
}

func (s *ServerTestSuite) TestTicketTypes() {
	code, resp := s.do(http.MethodGet, "/api/tickets/types", nil, nil)
	s.Require().Equal(http.StatusOK, code)

	var catalog []tickets.TierAvailability
	s.Require().NoError(json.Unmarshal(resp.Data, &catalog))
	s.Require().NotEmpty(catalog)
	s.Equal(catalog[0].Capacity, catalog[0].Available)
}

func (s *ServerTestSuite) TestBankTransfer() {
	code, resp := s.do(http.MethodPost, "/api/payments/bank-transfer", map[string]any{
		"fullName":   "Ada Obi",
		"email":      "ada@example.com",
		"phone":      "+2348000000000",
		"ticketType": "regular",
		"quantity":   2,
	}, nil)
	s.Require().Equal(http.StatusOK, code, resp.Message)

	var created httpapi.BankTransferResponse
	s.Require().NoError(json.Unmarshal(resp.Data, &created))
	s.Equal("ADA1234", created.Reference)
	s.Equal(int64(10000), created.Amount)
	s.Equal(sales.PaymentPendingTransfer, s.saleStatus("ADA1234"))

	s.Run("missing fields", func() {
		code, resp := s.do(http.MethodPost, "/api/payments/bank-transfer", map[string]any{
			"fullName": "Ada Obi",
		}, nil)
		s.Equal(http.StatusBadRequest, code)
		s.Equal("validation_error", resp.Reason)
		s.False(resp.Success)
	})

	s.Run("unknown ticket type", func() {
		code, resp := s.do(http.MethodPost, "/api/payments/bank-transfer", map[string]any{
			"fullName":   "Ada Obi",
			"email":      "ada@example.com",
			"phone":      "+2348000000000",
			"ticketType": "backstage",
			"quantity":   1,
		}, nil)
		s.Equal(http.StatusBadRequest, code)
		s.Equal("validation_error", resp.Reason)
	})
}

func (s *ServerTestSuite) TestTransferCompleted() {
	s.seedSale("ADA1111", sales.MethodBankTransfer)

	s.notifier.EXPECT().NotifyBestEffort(gomock.Any(), gomock.Any()).Times(1)

	code, resp := s.do(http.MethodPost, "/api/payments/transfer-completed", map[string]string{"reference": "ADA1111"}, nil)
	s.Require().Equal(http.StatusOK, code, resp.Message)

	var marked httpapi.TransferCompletedResponse
	s.Require().NoError(json.Unmarshal(resp.Data, &marked))
	s.Equal(sales.PaymentPendingApproval, marked.Status)
	s.Equal(1, marked.ClickCount)
	s.Equal(1, s.events.count())

	s.Run("second click is rate limited", func() {
		code, resp := s.do(http.MethodPost, "/api/payments/transfer-completed", map[string]string{"reference": "ADA1111"}, nil)
		s.Equal(http.StatusTooManyRequests, code)
		s.True(resp.RateLimited)
		s.Equal(string(sales.ScopeReference), resp.Scope)
		s.Positive(resp.WaitTime)
	})

	s.Run("unknown reference", func() {
		code, resp := s.do(http.MethodPost, "/api/payments/transfer-completed", map[string]string{"reference": "NOPE1234"}, nil)
		s.Equal(http.StatusNotFound, code)
		s.Equal("not_found", resp.Reason)
	})

	s.Run("missing reference", func() {
		code, _ := s.do(http.MethodPost, "/api/payments/transfer-completed", map[string]string{}, nil)
		s.Equal(http.StatusBadRequest, code)
	})
}

func (s *ServerTestSuite) TestAdminAuthentication() {
	s.seedPendingApproval("ADA2222")

	code, resp := s.do(http.MethodPost, "/api/admin/payments/ADA2222/approve", nil, nil)
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("token_required", resp.Reason)

	code, resp = s.do(http.MethodPost, "/api/admin/payments/ADA2222/approve", nil,
		map[string]string{echo.HeaderAuthorization: "Bearer not-a-token"})
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("invalid_token", resp.Reason)

	// a valid token for an admin that no longer exists
	token, _, err := s.tokens.Issue("DNCV-9999", "admin")
	s.Require().NoError(err)
	code, _ = s.do(http.MethodGet, "/api/admin/profile", nil,
		map[string]string{echo.HeaderAuthorization: "Bearer " + token})
	s.Equal(http.StatusUnauthorized, code)

	manager := s.seedAdmin("DNCV-1003", admins.RoleManager)
	code, resp = s.do(http.MethodGet, "/api/admin/notifications/buffer", nil, manager)
	s.Equal(http.StatusForbidden, code)
	s.Equal("Insufficient permissions. Required: systemSettings", resp.Message)

	code, _ = s.do(http.MethodGet, "/api/admin/admins", nil, manager)
	s.Equal(http.StatusForbidden, code)

	s.Equal(sales.PaymentPendingApproval, s.saleStatus("ADA2222"))
}

func (s *ServerTestSuite) TestLoginAndProfile() {
	s.seedAdmin("DNCV-1001", admins.RoleSuperAdmin)

	code, resp := s.do(http.MethodPost, "/api/admin/login", map[string]string{"adminId": "DNCV-1001"}, nil)
	s.Require().Equal(http.StatusOK, code)

	var session adminsusecase.Session
	s.Require().NoError(json.Unmarshal(resp.Data, &session))
	s.NotEmpty(session.Token)

	code, resp = s.do(http.MethodGet, "/api/admin/profile", nil,
		map[string]string{echo.HeaderAuthorization: "Bearer " + session.Token})
	s.Require().Equal(http.StatusOK, code)

	var profile admins.Admin
	s.Require().NoError(json.Unmarshal(resp.Data, &profile))
	s.Equal("DNCV-1001", profile.AdminID)
	s.Equal(1, profile.LoginCount)

	code, resp = s.do(http.MethodPost, "/api/admin/login", map[string]string{"adminId": "DNCV-4040"}, nil)
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("unauthorized", resp.Reason)
}

func (s *ServerTestSuite) TestApprove() {
	headers := s.seedAdmin("DNCV-1002", admins.RoleAdmin)

	s.Run("email delivered", func() {
		s.seedPendingApproval("ADA3333")
		s.notifier.EXPECT().
			DeliverOrFail(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, job notification.Job) error {
				s.Equal(notification.JobTicketEmail, job.Type)
				s.NotEmpty(job.Sale.QRCode)
				return nil
			})

		code, resp := s.do(http.MethodPost, "/api/admin/payments/ADA3333/approve", nil, headers)
		s.Require().Equal(http.StatusOK, code, resp.Message)

		var decision httpapi.DecisionResponse
		s.Require().NoError(json.Unmarshal(resp.Data, &decision))
		s.Equal(sales.PaymentCompleted, decision.Status)
		s.Equal("DNCV-1002", decision.DecidedBy)

		code, resp = s.do(http.MethodPost, "/api/admin/payments/ADA3333/approve", nil, headers)
		s.Equal(http.StatusBadRequest, code)
		s.Equal("already_approved", resp.Reason)
	})

	s.Run("email failure keeps the sale pending", func() {
		s.seedPendingApproval("ADA4444")
		s.notifier.EXPECT().
			DeliverOrFail(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("%w: smtp timeout", sales.ErrEmailDeliveryFailed))

		code, resp := s.do(http.MethodPost, "/api/admin/payments/ADA4444/approve", nil, headers)
		s.Equal(http.StatusBadGateway, code)
		s.Equal("email_delivery_failed", resp.Reason)
		s.Contains(resp.Error, "smtp timeout")
		s.Equal(sales.PaymentPendingApproval, s.saleStatus("ADA4444"))
	})

	s.Run("strict route refuses unreported transfer", func() {
		s.seedSale("ADA5555", sales.MethodBankTransfer)

		code, resp := s.do(http.MethodPost, "/api/admin/payments/ADA5555/approve", nil, headers)
		s.Equal(http.StatusBadRequest, code)
		s.Equal("already_processed", resp.Reason)
	})

	s.Run("direct route approves unreported transfer", func() {
		s.notifier.EXPECT().DeliverOrFail(gomock.Any(), gomock.Any()).Return(nil)

		code, resp := s.do(http.MethodPost, "/api/payments/approve-transfer", map[string]string{"reference": "ADA5555"}, headers)
		s.Require().Equal(http.StatusOK, code, resp.Message)
		s.Equal(sales.PaymentCompleted, s.saleStatus("ADA5555"))
	})
}

func (s *ServerTestSuite) TestReject() {
	headers := s.seedAdmin("DNCV-1004", admins.RoleAdmin)
	s.seedPendingApproval("ADA6666")

	s.notifier.EXPECT().
		DeliverOrFail(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job notification.Job) error {
			s.Equal(notification.JobPaymentRejection, job.Type)
			s.Equal("Amount does not match", job.Sale.PaymentInfo.RejectionReason)
			return nil
		})

	code, resp := s.do(http.MethodPost, "/api/payments/reject-transfer",
		map[string]string{"reference": "ADA6666", "reason": "Amount does not match"}, headers)
	s.Require().Equal(http.StatusOK, code, resp.Message)
	s.Equal(sales.PaymentRejected, s.saleStatus("ADA6666"))

	code, resp = s.do(http.MethodPost, "/api/admin/payments/ADA6666/reject", nil, headers)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("already_processed", resp.Reason)
}

func (s *ServerTestSuite) TestPendingTransfers() {
	headers := s.seedAdmin("DNCV-1005", admins.RoleAdmin)
	s.seedPendingApproval("ADA7777")
	s.seedSale("ADA8888", sales.MethodBankTransfer)

	code, resp := s.do(http.MethodGet, "/api/payments/pending-transfers", nil, headers)
	s.Require().Equal(http.StatusOK, code)

	var pending []httpapi.PendingTransfer
	s.Require().NoError(json.Unmarshal(resp.Data, &pending))
	s.Require().Len(pending, 1)
	s.Equal("ADA7777", pending[0].Reference)
	s.Equal("Ada Obi", pending[0].CustomerName)
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *ServerTestSuite) TestPaystackWebhook() {
	s.seedSale("ADA9999", sales.MethodPaystack)
	body := []byte(`{"event":"charge.success","data":{"reference":"ADA9999","gateway_response":"Successful"}}`)

	code, resp := s.do(http.MethodPost, "/api/payments/paystack/webhook", body,
		map[string]string{"x-paystack-signature": sign("wrong", body)})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("invalid_signature", resp.Reason)
	s.Equal(sales.PaymentPending, s.saleStatus("ADA9999"))

	s.notifier.EXPECT().NotifyBestEffort(gomock.Any(), gomock.Any()).Times(1)

	code, _ = s.do(http.MethodPost, "/api/payments/paystack/webhook", body,
		map[string]string{"x-paystack-signature": sign(paystackSecret, body)})
	s.Require().Equal(http.StatusOK, code)
	s.Equal(sales.PaymentCompleted, s.saleStatus("ADA9999"))

	// replay is acknowledged without a second email
	code, _ = s.do(http.MethodPost, "/api/payments/paystack/webhook", body,
		map[string]string{"x-paystack-signature": sign(paystackSecret, body)})
	s.Equal(http.StatusOK, code)
}

func (s *ServerTestSuite) TestVerifyPayment() {
	s.seedSale("ADA1212", sales.MethodPaystack)

	s.gateway.EXPECT().
		Verify(gomock.Any(), "ADA1212").
		Return(clients.PaystackTransaction{}, errors.New("paystack: 503"))

	code, resp := s.do(http.MethodGet, "/api/payments/verify/ADA1212", nil, nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("verification_failed", resp.Reason)

	code, resp = s.do(http.MethodGet, "/api/payments/status/ADA1212", nil, nil)
	s.Require().Equal(http.StatusOK, code)

	var status payments.StatusView
	s.Require().NoError(json.Unmarshal(resp.Data, &status))
	s.Equal(sales.PaymentPending, status.Status)
	s.Equal("Ada Obi", status.CustomerName)
}

func (s *ServerTestSuite) TestVerifyTicket() {
	headers := s.seedAdmin("DNCV-1006", admins.RoleAdmin)
	s.seedPendingApproval("ADA1313")
	s.notifier.EXPECT().DeliverOrFail(gomock.Any(), gomock.Any()).Return(nil)

	code, _ := s.do(http.MethodPost, "/api/admin/payments/ADA1313/approve", nil, headers)
	s.Require().Equal(http.StatusOK, code)

	code, resp := s.do(http.MethodPost, "/api/tickets/verify", map[string]string{"ticketId": "ADA1313", "verifiedBy": "Gate A"}, nil)
	s.Require().Equal(http.StatusOK, code, resp.Message)

	var verification tickets.Verification
	s.Require().NoError(json.Unmarshal(resp.Data, &verification))
	s.Equal("Gate A", verification.VerifiedBy)

	code, resp = s.do(http.MethodPost, "/api/tickets/verify", map[string]string{"ticketId": "ADA1313", "verifiedBy": "Gate B"}, nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("already_used", resp.Reason)

	var used struct {
		VerifiedBy string `json:"verifiedBy"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &used))
	s.Equal("Gate A", used.VerifiedBy)

	code, _ = s.do(http.MethodPost, "/api/tickets/verify", map[string]string{"ticketId": "ZZZ0000"}, nil)
	s.Equal(http.StatusNotFound, code)
}

func (s *ServerTestSuite) TestAdminsManagement() {
	super := s.seedAdmin("DNCV-2001", admins.RoleSuperAdmin)
	plain := s.seedAdmin("DNCV-2002", admins.RoleAdmin)

	code, resp := s.do(http.MethodPost, "/api/admin/admins", map[string]string{"name": "Door Staff", "role": "manager"}, super)
	s.Require().Equal(http.StatusCreated, code, resp.Message)

	var created admins.Admin
	s.Require().NoError(json.Unmarshal(resp.Data, &created))
	s.Equal(admins.RoleManager, created.Role)
	s.Equal("DNCV-2001", created.CreatedBy)

	code, resp = s.do(http.MethodPost, "/api/admin/admins", map[string]string{"name": "X"}, super)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("validation_error", resp.Reason)

	code, _ = s.do(http.MethodPost, "/api/admin/admins", map[string]string{"name": "Someone"}, plain)
	s.Equal(http.StatusForbidden, code)

	code, resp = s.do(http.MethodGet, "/api/admin/admins", nil, super)
	s.Require().Equal(http.StatusOK, code)
	var list []admins.Admin
	s.Require().NoError(json.Unmarshal(resp.Data, &list))
	s.Len(list, 3)

	code, _ = s.do(http.MethodDelete, "/api/admin/admins/DNCV-2002", nil, super)
	s.Require().Equal(http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/admin/profile", nil, plain)
	s.Equal(http.StatusUnauthorized, code, "deactivation applies before the token expires")
}

func (s *ServerTestSuite) TestSalesListing() {
	headers := s.seedAdmin("DNCV-3001", admins.RoleAdmin)
	s.seedSale("ADA1414", sales.MethodBankTransfer)
	s.seedPendingApproval("ADA1515")

	code, resp := s.do(http.MethodGet, "/api/admin/sales?status=pending_approval&limit=10", nil, headers)
	s.Require().Equal(http.StatusOK, code, resp.Message)

	var page dashboard.SalesPage
	s.Require().NoError(json.Unmarshal(resp.Data, &page))
	s.Require().Len(page.Sales, 1)
	s.Equal("ADA1515", page.Sales[0].Reference())
	s.Equal(1, page.Pagination.TotalCount)

	code, resp = s.do(http.MethodGet, "/api/admin/sales?status=lost", nil, headers)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("validation_error", resp.Reason)

	code, resp = s.do(http.MethodGet, "/api/admin/sales?startDate=yesterday", nil, headers)
	s.Equal(http.StatusBadRequest, code)

	code, resp = s.do(http.MethodGet, "/api/admin/sales/ADA1515", nil, headers)
	s.Require().Equal(http.StatusOK, code)
	var details dashboard.SaleDetails
	s.Require().NoError(json.Unmarshal(resp.Data, &details))
	s.Equal("ADA1515", details.Sale.Reference())

	code, _ = s.do(http.MethodGet, "/api/admin/stats", nil, headers)
	s.Equal(http.StatusOK, code)
}

func (s *ServerTestSuite) TestNotificationsEndpoints() {
	super := s.seedAdmin("DNCV-4001", admins.RoleSuperAdmin)

	s.buffer.EXPECT().Stats().Return(notification.BufferStats{Pending: 1, Failed: 1}, nil)
	s.buffer.EXPECT().List().Return([]notification.Entry{{Name: "1-reminder-3.json"}}, nil)
	s.buffer.EXPECT().Failed().Return([]notification.Entry{{Name: "2-ticket_email-7.json"}}, nil)

	code, resp := s.do(http.MethodGet, "/api/admin/notifications/buffer", nil, super)
	s.Require().Equal(http.StatusOK, code)
	var buffer httpapi.BufferResponse
	s.Require().NoError(json.Unmarshal(resp.Data, &buffer))
	s.Equal(1, buffer.Stats.Pending)
	s.Len(buffer.Failed, 1)

	s.mailer.EXPECT().Send(gomock.Any(), "ops@example.com", gomock.Any(), gomock.Any()).Return("<id@local>", nil)
	code, _ = s.do(http.MethodPost, "/api/admin/notifications/test-email", map[string]string{}, super)
	s.Equal(http.StatusOK, code)

	s.mailer.EXPECT().Send(gomock.Any(), "me@example.com", gomock.Any(), gomock.Any()).Return("", errors.New("dial tcp: i/o timeout"))
	code, resp = s.do(http.MethodPost, "/api/admin/notifications/test-email", map[string]string{"to": "me@example.com"}, super)
	s.Equal(http.StatusBadGateway, code)
	s.Equal("email_delivery_failed", resp.Reason)
}

func (s *ServerTestSuite) TestPaymentThrottle() {
	s.paymentThrottle = ratelimit.NewIPThrottle(1, time.Minute)
	s.build()

	request := map[string]any{
		"fullName":   "Ada Obi",
		"email":      "ada@example.com",
		"phone":      "+2348000000000",
		"ticketType": "regular",
		"quantity":   1,
	}
	code, _ := s.do(http.MethodPost, "/api/payments/bank-transfer", request, nil)
	s.Require().Equal(http.StatusOK, code)

	code, resp := s.do(http.MethodPost, "/api/payments/bank-transfer", request, nil)
	s.Equal(http.StatusTooManyRequests, code)
	s.True(resp.RateLimited)
	s.Equal("too_many_requests", resp.Reason)

	// other routes keep their own budget
	code, _ = s.do(http.MethodGet, "/api/tickets/types", nil, nil)
	s.Equal(http.StatusOK, code)
}

func (s *ServerTestSuite) TestProductionHidesInternalErrors() {
	s.production = true
	s.build()

	headers := s.seedAdmin("DNCV-5001", admins.RoleAdmin)
	s.seedPendingApproval("ADA1616")
	s.notifier.EXPECT().
		DeliverOrFail(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("%w: smtp timeout", sales.ErrEmailDeliveryFailed))

	code, resp := s.do(http.MethodPost, "/api/admin/payments/ADA1616/approve", nil, headers)
	s.Equal(http.StatusBadGateway, code)
	s.Empty(resp.Error)
	s.NotEmpty(resp.Message)
}
