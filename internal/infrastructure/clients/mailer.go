package clients

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

const maxRedials = 2

// SMTPTransport is one way of reaching the mail server.
type SMTPTransport struct {
	Name string
	Host string
	Port int
	// SSL dials TLS directly. Otherwise STARTTLS is used when the server offers it.
	SSL bool
}

func (t SMTPTransport) String() string {
	return t.Name + " " + net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

type MailerConfig struct {
	Host     string
	Port     int
	Secure   bool
	User     string
	Password string
	From     string
	// Fallbacks are tried by Verify when the configured transport does not connect.
	// Empty means SSL on 465 then STARTTLS on 587 of the same host.
	Fallbacks []SMTPTransport
}

func (c MailerConfig) transports() []SMTPTransport {
	primary := SMTPTransport{Name: "configured", Host: c.Host, Port: c.Port, SSL: c.Secure}
	if primary.Port == 0 {
		primary.Port = 587
		if c.Secure {
			primary.Port = 465
		}
	}

	fallbacks := c.Fallbacks
	if len(fallbacks) == 0 {
		fallbacks = []SMTPTransport{
			{Name: "ssl", Host: c.Host, Port: 465, SSL: true},
			{Name: "starttls", Host: c.Host, Port: 587},
		}
	}

	return append([]SMTPTransport{primary}, fallbacks...)
}

// Mailer sends HTML email through gomail, keeping one SMTP connection open
// between messages. Sends are serialised. A send stuck in gomail keeps the
// connection until it returns; the ones waiting behind it give up when their
// context is done.
type Mailer struct {
	config MailerConfig

	// sem holds the connection, a one-slot channel so waiting honours ctx
	sem       chan struct{}
	transport SMTPTransport
	dialer    *gomail.Dialer
	sender    gomail.SendCloser
}

func NewMailer(config MailerConfig) *Mailer {
	m := &Mailer{config: config, sem: make(chan struct{}, 1)}
	m.use(config.transports()[0])
	return m
}

func (m *Mailer) use(t SMTPTransport) {
	d := gomail.NewDialer(t.Host, t.Port, m.config.User, m.config.Password)
	d.SSL = t.SSL
	m.transport = t
	m.dialer = d
}

func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.config.Host)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", messageID)
	msg.SetDateHeader("Date", time.Now())
	msg.SetBody("text/html", htmlBody)

	if err := m.lock(ctx); err != nil {
		return "", fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	defer m.unlock()

	send := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		if m.sender == nil {
			s, err := m.dialer.Dial()
			if err != nil {
				return fmt.Errorf("failed to dial %s: %w", m.transport, err)
			}
			m.sender = s
		}
		if err := gomail.Send(m.sender, msg); err != nil {
			m.closeSender()
			return err
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	if err := backoff.Retry(send, backoff.WithContext(backoff.WithMaxRetries(b, maxRedials), ctx)); err != nil {
		return "", fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return messageID, nil
}

// Verify connects with the configured transport, then each fallback, and keeps
// the first one that accepts the connection.
func (m *Mailer) Verify(ctx context.Context) error {
	if err := m.lock(ctx); err != nil {
		return err
	}
	defer m.unlock()

	var errs []error
	for _, t := range m.config.transports() {
		if err := ctx.Err(); err != nil {
			return err
		}

		d := gomail.NewDialer(t.Host, t.Port, m.config.User, m.config.Password)
		d.SSL = t.SSL
		s, err := d.Dial()
		if err != nil {
			log.FromContext(ctx).WithError(err).WithField("transport", t.String()).Warn("SMTP transport failed verification")
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
			continue
		}

		m.closeSender()
		m.transport = t
		m.dialer = d
		m.sender = s
		log.FromContext(ctx).WithField("transport", t.String()).Info("SMTP transport verified")
		return nil
	}

	return fmt.Errorf("all email transports failed: %w", errors.Join(errs...))
}

func (m *Mailer) Transport() SMTPTransport {
	_ = m.lock(context.Background())
	defer m.unlock()

	return m.transport
}

func (m *Mailer) Close() error {
	_ = m.lock(context.Background())
	defer m.unlock()

	m.closeSender()
	return nil
}

func (m *Mailer) lock(ctx context.Context) error {
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mailer) unlock() {
	<-m.sem
}

func (m *Mailer) closeSender() {
	if m.sender != nil {
		_ = m.sender.Close()
		m.sender = nil
	}
}

// LogMailer only logs messages. It stands in for SMTP when no mail host is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, _ string) (string, error) {
	id := fmt.Sprintf("<%s@localhost>", uuid.NewString())
	log.FromContext(ctx).
		WithField("to", to).
		WithField("subject", subject).
		WithField("message_id", id).
		Info("Email not sent, no SMTP host configured")
	return id, nil
}
