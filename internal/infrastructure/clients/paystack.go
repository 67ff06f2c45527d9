package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultPaystackURL = "https://api.paystack.co"

var ErrPaystackDisabled = errors.New("paystack is not configured")

type PaystackCustomField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

type PaystackMetadata struct {
	TicketType   string                `json:"ticketType"`
	Quantity     int                   `json:"quantity"`
	Phone        string                `json:"phone"`
	FullName     string                `json:"fullName"`
	CustomFields []PaystackCustomField `json:"custom_fields"`
}

type PaystackInitializeRequest struct {
	Email       string           `json:"email"`
	AmountKobo  int64            `json:"amount"`
	Reference   string           `json:"reference"`
	CallbackURL string           `json:"callback_url"`
	Metadata    PaystackMetadata `json:"metadata"`
}

type PaystackAuthorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type PaystackTransaction struct {
	Status          string    `json:"status"`
	Reference       string    `json:"reference"`
	AmountKobo      int64     `json:"amount"`
	GatewayResponse string    `json:"gateway_response"`
	PaidAt          time.Time `json:"paid_at"`
	Channel         string    `json:"channel"`

	Raw json.RawMessage `json:"-"`
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Paystack struct {
	http    *resty.Client
	enabled bool
}

func NewPaystack(baseURL, secretKey string) *Paystack {
	if baseURL == "" {
		baseURL = DefaultPaystackURL
	}

	return &Paystack{
		enabled: secretKey != "",
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetAuthToken(secretKey).
			SetHeader("Content-Type", "application/json").
			SetTimeout(15 * time.Second),
	}
}

func (p *Paystack) Initialize(ctx context.Context, req PaystackInitializeRequest) (PaystackAuthorization, error) {
	var auth PaystackAuthorization
	if err := p.do(ctx, resty.MethodPost, "/transaction/initialize", req, &auth); err != nil {
		return PaystackAuthorization{}, fmt.Errorf("failed to initialize paystack transaction %s: %w", req.Reference, err)
	}
	return auth, nil
}

func (p *Paystack) Verify(ctx context.Context, reference string) (PaystackTransaction, error) {
	var tx PaystackTransaction
	if err := p.do(ctx, resty.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &tx); err != nil {
		return PaystackTransaction{}, fmt.Errorf("failed to verify paystack transaction %s: %w", reference, err)
	}
	return tx, nil
}

func (p *Paystack) do(ctx context.Context, method, path string, body, out any) error {
	if !p.enabled {
		return ErrPaystackDisabled
	}

	var envelope paystackEnvelope
	req := p.http.R().
		SetContext(ctx).
		SetResult(&envelope).
		SetError(&envelope)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() || !envelope.Status {
		return fmt.Errorf("paystack returned %d: %s", resp.StatusCode(), envelope.Message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode paystack response: %w", err)
	}
	if tx, ok := out.(*PaystackTransaction); ok {
		tx.Raw = envelope.Data
	}
	return nil
}
