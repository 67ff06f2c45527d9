package clients

import (
	"context"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/go-resty/resty/v2"
)

const DefaultGraphAPIURL = "https://graph.facebook.com"

type WhatsAppConfig struct {
	Enabled       bool
	BaseURL       string
	Token         string
	PhoneNumberID string
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

// WhatsApp sends admin alerts through the WhatsApp Business Graph API.
type WhatsApp struct {
	enabled       bool
	phoneNumberID string
	http          *resty.Client
}

func NewWhatsApp(config WhatsAppConfig) *WhatsApp {
	if config.BaseURL == "" {
		config.BaseURL = DefaultGraphAPIURL
	}

	return &WhatsApp{
		enabled:       config.Enabled && config.Token != "" && config.PhoneNumberID != "",
		phoneNumberID: config.PhoneNumberID,
		http: resty.New().
			SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
			SetAuthToken(config.Token).
			SetTimeout(10 * time.Second),
	}
}

func (w *WhatsApp) Enabled() bool {
	return w.enabled
}

// Notify sends message to every phone and reports whether at least one send
// succeeded. Failures are logged, never returned.
func (w *WhatsApp) Notify(ctx context.Context, phones []string, message string) bool {
	logger := log.FromContext(ctx)
	if !w.enabled {
		logger.Debug("WhatsApp notifications disabled")
		return false
	}
	if len(phones) == 0 {
		logger.Warn("No admin WhatsApp numbers configured")
		return false
	}

	delivered := false
	for _, phone := range phones {
		phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
		if phone == "" {
			continue
		}

		resp, err := w.http.R().
			SetContext(ctx).
			SetBody(whatsAppMessage{
				MessagingProduct: "whatsapp",
				To:               phone,
				Type:             "text",
				Text:             whatsAppText{Body: message},
			}).
			Post("/v15.0/" + w.phoneNumberID + "/messages")
		if err != nil {
			logger.WithError(err).WithField("phone", phone).Warn("Failed to send WhatsApp message")
			continue
		}
		if resp.IsError() {
			logger.WithField("phone", phone).WithField("status", resp.StatusCode()).
				WithField("response", resp.String()).Warn("WhatsApp API rejected message")
			continue
		}

		logger.WithField("phone", phone).Info("WhatsApp message sent")
		delivered = true
	}

	return delivered
}
