package http

import (
	"context"
	"errors"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	adminsusecase "ticketsale/internal/application/usecases/admins"
	"ticketsale/internal/application/usecases/dashboard"
	"ticketsale/internal/application/usecases/payments"
	"ticketsale/internal/application/usecases/tickets"
	"ticketsale/internal/auth"
	"ticketsale/internal/domain/admins"
	"ticketsale/internal/notification"
	"ticketsale/internal/ratelimit"
	"time"
)

const (
	globalRequests  = 100
	globalPeriod    = 15 * time.Minute
	paymentRequests = 10
	paymentPeriod   = 5 * time.Minute
)

//go:generate mockgen -destination=mocks/buffer_inspector_mock.go -package=mocks . BufferInspector
type BufferInspector interface {
	Stats() (notification.BufferStats, error)
	List() ([]notification.Entry, error)
	Failed() ([]notification.Entry, error)
}

//go:generate mockgen -destination=mocks/mail_sender_mock.go -package=mocks . MailSender
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) (string, error)
}

type Services struct {
	Payments  *payments.Usecase
	Tickets   *tickets.TicketsUsecase
	Dashboard *dashboard.DashboardUsecase
	Admins    *adminsusecase.AdminsUsecase
	Tokens    *auth.TokenManager
	Buffer    BufferInspector
	Mailer    MailSender
}

type Config struct {
	Addr       string
	Production bool
	TrustProxy bool
	AdminEmail string
	// Throttles default to 100 requests per 15 minutes globally and 10 per
	// 5 minutes on payment routes.
	GlobalThrottle  *ratelimit.IPThrottle
	PaymentThrottle *ratelimit.IPThrottle
	// Health reports whether a backing service is unreachable.
	Health          func(ctx context.Context) error
	RouterIsRunning func() bool
	Now             func() time.Time
}

type Server struct {
	e    *echo.Echo
	addr string

	payments  *payments.Usecase
	tickets   *tickets.TicketsUsecase
	dashboard *dashboard.DashboardUsecase
	admins    *adminsusecase.AdminsUsecase
	tokens    *auth.TokenManager
	buffer    BufferInspector
	mailer    MailSender

	adminEmail      string
	health          func(ctx context.Context) error
	routerIsRunning func() bool
	now             func() time.Time
}

func NewServer(e *echo.Echo, services Services, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.GlobalThrottle == nil {
		cfg.GlobalThrottle = ratelimit.NewIPThrottle(globalRequests, globalPeriod)
	}
	if cfg.PaymentThrottle == nil {
		cfg.PaymentThrottle = ratelimit.NewIPThrottle(paymentRequests, paymentPeriod)
	}
	if cfg.Health == nil {
		cfg.Health = func(context.Context) error { return nil }
	}
	if cfg.RouterIsRunning == nil {
		cfg.RouterIsRunning = func() bool { return true }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	srv := &Server{
		e:               e,
		addr:            cfg.Addr,
		payments:        services.Payments,
		tickets:         services.Tickets,
		dashboard:       services.Dashboard,
		admins:          services.Admins,
		tokens:          services.Tokens,
		buffer:          services.Buffer,
		mailer:          services.Mailer,
		adminEmail:      cfg.AdminEmail,
		health:          cfg.Health,
		routerIsRunning: cfg.RouterIsRunning,
		now:             cfg.Now,
	}

	e.HTTPErrorHandler = errorHandler(cfg.Production)
	e.Validator = newRequestValidator()
	if cfg.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.Use(loggingMiddleware)
	e.Use(idempotencyMiddleware)

	e.GET("/health", srv.HealthHandler)
	e.GET("/api/health", srv.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api", throttle(cfg.GlobalThrottle))

	ticketRoutes := api.Group("/tickets")
	ticketRoutes.GET("/types", srv.TicketTypesHandler)
	ticketRoutes.POST("/verify", srv.VerifyTicketHandler)

	paymentRoutes := api.Group("/payments")
	paymentLimited := throttle(cfg.PaymentThrottle)
	paymentRoutes.POST("/bank-transfer", srv.InitiateBankTransferHandler, paymentLimited)
	paymentRoutes.POST("/transfer-completed", srv.TransferCompletedHandler, paymentLimited)
	paymentRoutes.POST("/paystack/initialize", srv.InitializePaystackHandler, paymentLimited)
	paymentRoutes.GET("/verify/:reference", srv.VerifyPaymentHandler)
	paymentRoutes.GET("/status/:reference", srv.PaymentStatusHandler)
	paymentRoutes.POST("/paystack/webhook", srv.PaystackWebhookHandler)
	paymentRoutes.POST("/opay/webhook", srv.OpayWebhookHandler)

	paymentRoutes.POST("/approve-transfer", srv.ApproveTransferHandler,
		srv.requireAdmin, requirePermission(admins.PermApprovePayments))
	paymentRoutes.POST("/reject-transfer", srv.RejectTransferHandler,
		srv.requireAdmin, requirePermission(admins.PermRejectPayments))
	paymentRoutes.GET("/pending-transfers", srv.PendingTransfersHandler,
		srv.requireAdmin, requirePermission(admins.PermApprovePayments))

	adminRoutes := api.Group("/admin")
	adminRoutes.POST("/login", srv.LoginHandler)

	authed := adminRoutes.Group("", srv.requireAdmin)
	authed.GET("/profile", srv.ProfileHandler)
	authed.POST("/payments/:reference/approve", srv.AdminApproveHandler, requirePermission(admins.PermApprovePayments))
	authed.POST("/payments/:reference/reject", srv.AdminRejectHandler, requirePermission(admins.PermRejectPayments))
	authed.GET("/stats", srv.StatsHandler, requirePermission(admins.PermViewAnalytics))
	authed.GET("/sales", srv.ListSalesHandler, requirePermission(admins.PermViewAnalytics))
	authed.GET("/sales/:reference", srv.SaleDetailsHandler, requirePermission(admins.PermViewAnalytics))
	authed.GET("/admins", srv.ListAdminsHandler, requireRole(admins.RoleSuperAdmin))
	authed.POST("/admins", srv.CreateAdminHandler, requireRole(admins.RoleSuperAdmin))
	authed.DELETE("/admins/:adminId", srv.DeactivateAdminHandler, requireRole(admins.RoleSuperAdmin))
	authed.GET("/notifications/buffer", srv.BufferHandler, requirePermission(admins.PermSystemSettings))
	authed.POST("/notifications/test-email", srv.TestEmailHandler, requirePermission(admins.PermSystemSettings))

	return srv
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start() error {
	err := s.e.Start(s.addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
