package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"ticketsale/internal/domain/sales"
	"time"
)

//go:embed templates/*.html
var templateFiles embed.FS

type Message struct {
	To      string
	Subject string
	HTML    string
}

type ticketView struct {
	TicketID string
	QRCode   template.URL
}

type templateData struct {
	CustomerName string
	Reference    string
	TicketType   string
	Quantity     int
	Amount       string
	Event        sales.EventDetails
	Tickets      []ticketView
	Reason       string
	Suspicious   bool
	HoursPending int
}

// Renderer turns a job into an email. Templates are parsed once.
type Renderer struct {
	templates map[JobType]*template.Template
	event     sales.EventDetails
	now       func() time.Time
}

func NewRenderer(event sales.EventDetails) (*Renderer, error) {
	r := &Renderer{
		templates: map[JobType]*template.Template{},
		event:     event,
		now:       time.Now,
	}

	for _, jobType := range []JobType{JobTransferCompleted, JobTicketEmail, JobPaymentRejection, JobReminder} {
		tmpl, err := template.ParseFS(templateFiles, "templates/layout.html", "templates/"+string(jobType)+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", jobType, err)
		}
		r.templates[jobType] = tmpl
	}

	return r, nil
}

func (r *Renderer) Render(job Job) (Message, error) {
	tmpl, ok := r.templates[job.Type]
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownJobType, job.Type)
	}

	sale := job.Sale
	data := templateData{
		CustomerName: sale.CustomerInfo.FullName(),
		Reference:    sale.Reference(),
		TicketType:   sale.TicketInfo.TypeName,
		Quantity:     sale.TicketInfo.Quantity,
		Amount:       FormatNaira(sale.TicketInfo.TotalAmount),
		Event:        r.event,
		Tickets:      ticketViews(sale),
		Reason:       job.Reason,
		Suspicious:   job.Suspicious,
	}
	if since := sale.PendingSince(); !since.IsZero() {
		data.HoursPending = int(r.now().Sub(since).Hours())
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, string(job.Type)+".html", data); err != nil {
		return Message{}, fmt.Errorf("failed to render %s email: %w", job.Type, err)
	}

	return Message{
		To:      sale.CustomerInfo.Email,
		Subject: subject(job),
		HTML:    body.String(),
	}, nil
}

func subject(job Job) string {
	switch job.Type {
	case JobTransferCompleted:
		return "Transfer Confirmed - DNCV Concert Tickets"
	case JobTicketEmail:
		return "Your DNCV Concert Tickets - QR Codes Inside!"
	case JobPaymentRejection:
		return "Payment Verification Required - DNCV Concert"
	case JobReminder:
		if job.Suspicious {
			return "URGENT: Payment Verification Required - " + job.Reference()
		}
		return "Payment Verification Reminder - " + job.Reference()
	}
	return ""
}

// only PNG data URLs are trusted as image sources
func safeQR(qr string) template.URL {
	if strings.HasPrefix(qr, "data:image/png;base64,") {
		return template.URL(qr)
	}
	return ""
}

func ticketViews(sale sales.TicketSale) []ticketView {
	if len(sale.Tickets) == 0 {
		return []ticketView{{TicketID: sale.TicketID, QRCode: safeQR(sale.QRCode)}}
	}

	views := make([]ticketView, 0, len(sale.Tickets))
	for _, t := range sale.Tickets {
		views = append(views, ticketView{TicketID: t.TicketID, QRCode: safeQR(t.QRCode)})
	}
	return views
}

// FormatNaira renders 150000 as ₦150,000.
func FormatNaira(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "₦" + b.String()
}
