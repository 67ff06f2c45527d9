package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"strconv"
	"strings"
	"ticketsale/internal/domain/sales"
	"ticketsale/internal/entities"
	"ticketsale/internal/infrastructure/clients"
	"ticketsale/internal/notification"
)

type Provider string

const (
	ProviderPaystack Provider = "paystack"
	ProviderOpay     Provider = "opay"
)

var ErrVerificationFailed = errors.New("payment verification failed")

// ValidSignature reports whether signature is the hex HMAC-SHA512 of body under secret.
// An empty secret never validates.
func ValidSignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

type gatewayOutcome int

const (
	outcomeUnknown gatewayOutcome = iota
	outcomeSuccess
	outcomeFailure
)

type gatewayEvent struct {
	Name      string
	Outcome   gatewayOutcome
	Reference string
	Reason    string
	Raw       json.RawMessage
}

type opayWebhook struct {
	Reference       string `json:"reference"`
	Status          string `json:"status"`
	GatewayResponse string `json:"gateway_response"`
}

func parseGatewayEvent(provider Provider, body []byte) (gatewayEvent, error) {
	switch provider {
	case ProviderPaystack:
		var payload struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return gatewayEvent{}, err
		}
		var data struct {
			Reference       string `json:"reference"`
			GatewayResponse string `json:"gateway_response"`
		}
		if len(payload.Data) > 0 {
			if err := json.Unmarshal(payload.Data, &data); err != nil {
				return gatewayEvent{}, err
			}
		}

		event := gatewayEvent{Name: payload.Event, Reference: data.Reference, Reason: data.GatewayResponse, Raw: payload.Data}
		switch payload.Event {
		case "charge.success":
			event.Outcome = outcomeSuccess
		case "charge.failed":
			event.Outcome = outcomeFailure
		}
		return event, nil

	case ProviderOpay:
		var payload opayWebhook
		if err := json.Unmarshal(body, &payload); err != nil {
			return gatewayEvent{}, err
		}

		event := gatewayEvent{Name: payload.Status, Reference: payload.Reference, Reason: payload.GatewayResponse, Raw: body}
		switch payload.Status {
		case "SUCCESS":
			event.Outcome = outcomeSuccess
		case "FAILED":
			event.Outcome = outcomeFailure
		}
		return event, nil
	}

	return gatewayEvent{}, fmt.Errorf("unknown provider %q", provider)
}

func (u *Usecase) secretFor(provider Provider) string {
	switch provider {
	case ProviderPaystack:
		return u.paystackSecret
	case ProviderOpay:
		return u.opaySecret
	}
	return ""
}

// HandleGatewayEvent applies a payment gateway webhook. The signature is checked
// before the body is parsed or any sale is read.
func (u *Usecase) HandleGatewayEvent(ctx context.Context, provider Provider, rawBody []byte, signature string) error {
	logger := log.FromContext(ctx).WithField("provider", provider)

	if !ValidSignature(u.secretFor(provider), rawBody, signature) {
		logger.Warn("Rejected webhook with invalid signature")
		return sales.ErrInvalidSignature
	}

	event, err := parseGatewayEvent(provider, rawBody)
	if err != nil {
		return sales.NewValidationError("body", "malformed webhook payload")
	}
	logger = logger.WithField("event", event.Name).WithField("reference", event.Reference)

	switch event.Outcome {
	case outcomeSuccess:
		_, err = u.completeByGateway(ctx, provider, event.Reference, event.Raw)
	case outcomeFailure:
		err = u.failByGateway(ctx, provider, event.Reference, event.Reason, event.Raw)
	default:
		logger.Info("Unhandled webhook event")
		return nil
	}

	if errors.Is(err, sales.ErrNotFound) {
		logger.Warn("Webhook for unknown reference")
		return nil
	}
	return err
}

// completeByGateway marks a gateway sale paid. The customer's money is already
// taken, so the ticket email is queued rather than gating the update.
func (u *Usecase) completeByGateway(ctx context.Context, provider Provider, reference string, raw json.RawMessage) (sales.TicketSale, error) {
	now := u.now().UTC()
	logger := log.FromContext(ctx).WithField("provider", provider).WithField("reference", reference)

	completed, err := u.store.UpdateByReference(ctx, reference, func(ctx context.Context, sale *sales.TicketSale) error {
		if err := sales.CheckTransition(sales.TransitionGatewaySuccess, sale.PaymentInfo.Status); err != nil {
			return err
		}
		qrCode, tickets, err := u.issueTickets(ctx, sale, now)
		if err != nil {
			return err
		}
		return sale.CompleteByGateway(qrCode, tickets, raw, now)
	})
	switch {
	case errors.Is(err, sales.ErrAlreadyApproved):
		logger.Info("Gateway success for completed sale ignored")
		return u.store.FindByReference(ctx, reference)
	case errors.Is(err, sales.ErrAlreadyProcessed):
		logger.Warn("Gateway success for sale in unexpected state ignored")
		return u.store.FindByReference(ctx, reference)
	case err != nil:
		return sales.TicketSale{}, err
	}

	logger.Info("Gateway payment completed")

	job := notification.TicketEmailJob(completed, now).WithPriority(notification.PriorityHigh)
	u.notifier.NotifyBestEffort(ctx, job)

	u.publish(ctx, entities.PaymentApproved_v1{
		Header:     entities.NewEventHeaderWithIdempotencyKey("payment-approved-" + completed.Reference()),
		Sale:       entities.SummaryOf(completed),
		ApprovedBy: string(provider),
		Method:     string(completed.PaymentInfo.Method),
		PaidAt:     now,
	})

	return completed, nil
}

func (u *Usecase) failByGateway(ctx context.Context, provider Provider, reference, reason string, raw json.RawMessage) error {
	now := u.now().UTC()
	logger := log.FromContext(ctx).WithField("provider", provider).WithField("reference", reference)

	failed, err := u.store.UpdateByReference(ctx, reference, func(ctx context.Context, sale *sales.TicketSale) error {
		return sale.FailByGateway(reason, raw, now)
	})
	if errors.Is(err, sales.ErrAlreadyProcessed) {
		logger.Info("Gateway failure ignored")
		return nil
	}
	if err != nil {
		return err
	}

	logger.WithField("reason", failed.PaymentInfo.FailureReason).Info("Gateway payment failed")

	u.publish(ctx, entities.PaymentFailed_v1{
		Header:   entities.NewEventHeaderWithIdempotencyKey("payment-failed-" + failed.Reference()),
		Sale:     entities.SummaryOf(failed),
		Provider: string(provider),
		Reason:   failed.PaymentInfo.FailureReason,
		FailedAt: now,
	})
	return nil
}

type Checkout struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// InitializeGatewayPayment creates a pending card sale and opens a Paystack checkout for it.
func (u *Usecase) InitializeGatewayPayment(ctx context.Context, req InitiateRequest) (Checkout, error) {
	sale, err := u.createSale(ctx, req, sales.MethodPaystack)
	if err != nil {
		return Checkout{}, err
	}

	quantity := strconv.Itoa(sale.TicketInfo.Quantity)
	auth, err := u.gateway.Initialize(ctx, clients.PaystackInitializeRequest{
		Email:       sale.CustomerInfo.Email,
		AmountKobo:  sale.PaymentInfo.Amount * 100,
		Reference:   sale.Reference(),
		CallbackURL: strings.TrimRight(u.frontendURL, "/") + "/ticket-success",
		Metadata: clients.PaystackMetadata{
			TicketType: string(sale.TicketInfo.Type),
			Quantity:   sale.TicketInfo.Quantity,
			Phone:      sale.CustomerInfo.Phone,
			FullName:   sale.CustomerInfo.FullName(),
			CustomFields: []clients.PaystackCustomField{
				{DisplayName: "Ticket Type", VariableName: "ticket_type", Value: string(sale.TicketInfo.Type)},
				{DisplayName: "Quantity", VariableName: "quantity", Value: quantity},
			},
		},
	})
	if err != nil {
		return Checkout{}, err
	}

	reference := auth.Reference
	if reference == "" {
		reference = sale.Reference()
	}
	return Checkout{
		AuthorizationURL: auth.AuthorizationURL,
		AccessCode:       auth.AccessCode,
		Reference:        reference,
	}, nil
}

// VerifyGatewayPayment asks Paystack for the outcome of a card payment and
// completes the sale when the charge succeeded.
func (u *Usecase) VerifyGatewayPayment(ctx context.Context, reference string) (sales.TicketSale, error) {
	sale, err := u.store.FindByReference(ctx, reference)
	if err != nil {
		return sales.TicketSale{}, err
	}

	tx, err := u.gateway.Verify(ctx, reference)
	if err != nil {
		log.FromContext(ctx).WithError(err).WithField("reference", reference).Warn("Paystack verification failed")
		return sales.TicketSale{}, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	if tx.Status != "success" || sale.PaymentInfo.Status == sales.PaymentCompleted {
		return sale, nil
	}
	return u.completeByGateway(ctx, ProviderPaystack, reference, tx.Raw)
}
