package http

import (
	"errors"
	"fmt"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"net/http"
	"strings"
	"ticketsale/internal/application/usecases/payments"
	"ticketsale/internal/domain/admins"
	"ticketsale/internal/domain/sales"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`

	RateLimited bool                 `json:"rateLimited,omitempty"`
	WaitTime    int                  `json:"waitTime,omitempty"`
	Scope       sales.RateLimitScope `json:"scope,omitempty"`
}

func ok(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// apiError is an error already translated to its HTTP form.
type apiError struct {
	status  int
	reason  string
	message string
	cause   error

	waitTime int
	scope    sales.RateLimitScope
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *apiError) Unwrap() error {
	return e.cause
}

func newAPIError(status int, reason, message string) *apiError {
	return &apiError{status: status, reason: reason, message: message}
}

// toAPIError maps the domain error taxonomy to status codes.
func toAPIError(err error) *apiError {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var (
		validationErr  *sales.ValidationError
		rateLimitedErr *sales.RateLimitedError
		fieldErrs      validator.ValidationErrors
		httpErr        *echo.HTTPError
	)
	switch {
	case errors.As(err, &rateLimitedErr):
		return &apiError{
			status:   http.StatusTooManyRequests,
			reason:   "rate_limited",
			message:  rateLimitMessage(rateLimitedErr),
			cause:    err,
			waitTime: rateLimitedErr.WaitSeconds,
			scope:    rateLimitedErr.Scope,
		}
	case errors.As(err, &validationErr):
		return &apiError{status: http.StatusBadRequest, reason: "validation_error", message: validationErr.Error(), cause: err}
	case errors.As(err, &fieldErrs):
		return &apiError{status: http.StatusBadRequest, reason: "validation_error", message: describeFieldErrors(fieldErrs), cause: err}
	case errors.Is(err, sales.ErrAlreadyApproved):
		return &apiError{status: http.StatusBadRequest, reason: "already_approved", message: "Transaction already approved", cause: err}
	case errors.Is(err, sales.ErrAlreadyProcessed):
		return &apiError{status: http.StatusBadRequest, reason: "already_processed", message: "Transaction already processed", cause: err}
	case errors.Is(err, sales.ErrAlreadyUsed):
		return &apiError{status: http.StatusBadRequest, reason: "already_used", message: "Ticket has already been used", cause: err}
	case errors.Is(err, sales.ErrInvalidSignature):
		return &apiError{status: http.StatusBadRequest, reason: "invalid_signature", message: "Invalid signature", cause: err}
	case errors.Is(err, payments.ErrVerificationFailed):
		return &apiError{status: http.StatusBadRequest, reason: "verification_failed", message: "Payment verification failed", cause: err}
	case errors.Is(err, admins.ErrUnauthorized):
		return &apiError{status: http.StatusUnauthorized, reason: "unauthorized", message: "Unauthorized access", cause: err}
	case errors.Is(err, admins.ErrForbidden):
		return &apiError{status: http.StatusForbidden, reason: "forbidden", message: "Insufficient permissions", cause: err}
	case errors.Is(err, sales.ErrNotFound):
		return &apiError{status: http.StatusNotFound, reason: "not_found", message: "Transaction not found", cause: err}
	case errors.Is(err, admins.ErrNotFound):
		return &apiError{status: http.StatusNotFound, reason: "not_found", message: "Admin not found", cause: err}
	case errors.Is(err, sales.ErrSoldOut):
		return &apiError{status: http.StatusConflict, reason: "sold_out", message: "Not enough tickets available", cause: err}
	case errors.Is(err, sales.ErrEmailDeliveryFailed):
		return &apiError{
			status:  http.StatusBadGateway,
			reason:  "email_delivery_failed",
			message: "Unable to send email. Please check your internet connection and try again in a few minutes.",
			cause:   err,
		}
	case errors.As(err, &httpErr):
		return &apiError{status: httpErr.Code, reason: "http_error", message: fmt.Sprint(httpErr.Message), cause: err}
	}

	return &apiError{status: http.StatusInternalServerError, reason: "internal_error", message: "Unable to process request. Please try again.", cause: err}
}

func rateLimitMessage(err *sales.RateLimitedError) string {
	if err.Scope == sales.ScopeTicketType {
		return fmt.Sprintf("You just attempted to purchase a %s ticket. Please wait %d seconds before trying again.", err.TicketType, err.WaitSeconds)
	}
	return fmt.Sprintf("Please wait %d seconds before clicking again. We have received your first request.", err.WaitSeconds)
}

func describeFieldErrors(errs validator.ValidationErrors) string {
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return "Invalid request: " + strings.Join(fields, ", ")
}

// errorHandler writes every error in the response envelope. Internal details
// are only exposed outside production.
func errorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		apiErr := toAPIError(err)
		body := envelope{
			Success:     false,
			Message:     apiErr.message,
			Reason:      apiErr.reason,
			RateLimited: apiErr.status == http.StatusTooManyRequests,
			WaitTime:    apiErr.waitTime,
			Scope:       apiErr.scope,
		}
		if !production && apiErr.cause != nil {
			body.Error = apiErr.cause.Error()
		}

		if apiErr.status >= http.StatusInternalServerError {
			log.FromContext(c.Request().Context()).WithError(err).Error("Request failed")
		}

		if err := c.JSON(apiErr.status, body); err != nil {
			log.FromContext(c.Request().Context()).WithError(err).Warn("Failed to write error response")
		}
	}
}
