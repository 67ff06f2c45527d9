package http

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"net/http"
	"strings"
	adminsusecase "ticketsale/internal/application/usecases/admins"
	"ticketsale/internal/domain/sales"
	"ticketsale/internal/notification"
	"time"
)

type LoginRequest struct {
	AdminID string `json:"adminId" validate:"required"`
}

func (s *Server) LoginHandler(c echo.Context) error {
	var request LoginRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return newAPIError(http.StatusBadRequest, "validation_error", "Admin ID is required")
	}

	session, err := s.admins.Login(c.Request().Context(), request.AdminID)
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "Login successful", session)
}

func (s *Server) ProfileHandler(c echo.Context) error {
	return ok(c, http.StatusOK, "", currentAdmin(c))
}

func (s *Server) StatsHandler(c echo.Context) error {
	stats, err := s.dashboard.Stats(c.Request().Context(), s.now())
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "", stats)
}

type SalesQuery struct {
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
	Status     string `query:"status"`
	TicketType string `query:"ticketType"`
	Search     string `query:"search"`
	StartDate  string `query:"startDate"`
	EndDate    string `query:"endDate"`
	SortBy     string `query:"sortBy"`
	SortOrder  string `query:"sortOrder"`
}

func (q SalesQuery) filter() (sales.Filter, error) {
	filter := sales.Filter{
		Search:    strings.TrimSpace(q.Search),
		SortBy:    q.SortBy,
		SortOrder: sales.SortOrder(q.SortOrder),
		Page:      q.Page,
		Limit:     q.Limit,
	}

	if q.Status != "" && q.Status != "all" {
		status, err := sales.ParsePaymentStatus(q.Status)
		if err != nil {
			return sales.Filter{}, err
		}
		filter.Status = status
	}
	if q.TicketType != "" && q.TicketType != "all" {
		ticketType, err := sales.ParseTicketType(q.TicketType)
		if err != nil {
			return sales.Filter{}, err
		}
		filter.TicketType = ticketType
	}

	var err error
	if filter.From, err = parseDate("startDate", q.StartDate, false); err != nil {
		return sales.Filter{}, err
	}
	if filter.To, err = parseDate("endDate", q.EndDate, true); err != nil {
		return sales.Filter{}, err
	}
	return filter, nil
}

// parseDate accepts RFC 3339 or a bare date. A bare end date covers the whole day.
func parseDate(field, value string, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, sales.NewValidationError(field, "must be YYYY-MM-DD or RFC 3339")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func (s *Server) ListSalesHandler(c echo.Context) error {
	var query SalesQuery
	if err := c.Bind(&query); err != nil {
		return err
	}
	filter, err := query.filter()
	if err != nil {
		return err
	}

	page, err := s.dashboard.Sales(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "", page)
}

func (s *Server) SaleDetailsHandler(c echo.Context) error {
	details, err := s.dashboard.Sale(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "", details)
}

func (s *Server) ListAdminsHandler(c echo.Context) error {
	list, err := s.admins.List(c.Request().Context())
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "", list)
}

func (s *Server) CreateAdminHandler(c echo.Context) error {
	var request adminsusecase.CreateRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	admin, err := s.admins.Create(c.Request().Context(), currentAdmin(c), request)
	if err != nil {
		return err
	}

	return ok(c, http.StatusCreated, "Admin created successfully", admin)
}

func (s *Server) DeactivateAdminHandler(c echo.Context) error {
	admin, err := s.admins.Deactivate(c.Request().Context(), currentAdmin(c), c.Param("adminId"))
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "Admin deactivated successfully", admin)
}

type BufferResponse struct {
	Stats   notification.BufferStats `json:"stats"`
	Pending []notification.Entry     `json:"pending"`
	Failed  []notification.Entry     `json:"failed"`
}

func (s *Server) BufferHandler(c echo.Context) error {
	stats, err := s.buffer.Stats()
	if err != nil {
		return err
	}
	pending, err := s.buffer.List()
	if err != nil {
		return err
	}
	failed, err := s.buffer.Failed()
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "", BufferResponse{Stats: stats, Pending: pending, Failed: failed})
}

type TestEmailRequest struct {
	To string `json:"to" validate:"omitempty,email"`
}

func (s *Server) TestEmailHandler(c echo.Context) error {
	var request TestEmailRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	to := request.To
	if to == "" {
		to = s.adminEmail
	}
	if to == "" {
		return sales.NewValidationError("to", "no recipient and no admin email configured")
	}

	sentAt := s.now().UTC()
	messageID, err := s.mailer.Send(c.Request().Context(), to, "Email configuration test",
		fmt.Sprintf("<p>Email delivery is working. Sent at %s.</p>", sentAt.Format(time.RFC1123)))
	if err != nil {
		return fmt.Errorf("%w: %w", sales.ErrEmailDeliveryFailed, err)
	}

	return ok(c, http.StatusOK, "Email configuration is working correctly!", map[string]any{
		"to":        to,
		"messageId": messageID,
		"sentAt":    sentAt,
	})
}
