package http

import (
	"errors"
	"github.com/labstack/echo/v4"
	"net/http"
	"ticketsale/internal/domain/sales"
)

func (s *Server) TicketTypesHandler(c echo.Context) error {
	catalog, err := s.tickets.Catalog(c.Request().Context())
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "", catalog)
}

type VerifyTicketRequest struct {
	TicketID   string `json:"ticketId"`
	VerifiedBy string `json:"verifiedBy"`
}

func (s *Server) VerifyTicketHandler(c echo.Context) error {
	var request VerifyTicketRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	verification, err := s.tickets.VerifyTicket(c.Request().Context(), request.TicketID, request.VerifiedBy)
	if errors.Is(err, sales.ErrAlreadyUsed) {
		return c.JSON(http.StatusBadRequest, envelope{
			Success: false,
			Message: "Ticket has already been used",
			Reason:  "already_used",
			Data: map[string]any{
				"usedAt":     verification.VerifiedAt,
				"verifiedBy": verification.VerifiedBy,
			},
		})
	}
	if errors.Is(err, sales.ErrNotFound) {
		return &apiError{status: http.StatusNotFound, reason: "not_found", message: "Invalid ticket or payment not completed", cause: err}
	}
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, "Ticket verified successfully", verification)
}
