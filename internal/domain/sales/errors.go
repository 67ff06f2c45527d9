package sales

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("ticket sale not found")
	ErrAlreadyProcessed    = errors.New("transaction already processed")
	ErrAlreadyApproved     = errors.New("transaction already approved")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrEmailDeliveryFailed = errors.New("email delivery failed")
	ErrGenerationExhausted = errors.New("unable to generate a unique reference")
	ErrAlreadyUsed         = errors.New("ticket has already been used")
	ErrDuplicateReference  = errors.New("duplicate reference")
	ErrSoldOut             = errors.New("not enough tickets available")
)

type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type RateLimitScope string

const (
	ScopeReference  RateLimitScope = "reference"
	ScopeTicketType RateLimitScope = "ticket_type"
)

type RateLimitedError struct {
	WaitSeconds int
	Scope       RateLimitScope
	TicketType  string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited on %s, retry in %ds", e.Scope, e.WaitSeconds)
}

// TransientError marks a failure worth retrying, like a mail server timeout.
type TransientError struct {
	Err error
}

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

func (e *TransientError) Error() string {
	return "transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}
