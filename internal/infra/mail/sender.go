package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/textproto"
	"time"

	"github.com/sethvargo/go-retry"
	"gopkg.in/gomail.v2"

	"github.com/edureach360/leads-api/internal/entity"
)

const maxSendRetries = 3

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// dialer is satisfied by *gomail.Dialer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	from    string
	dialer  dialer
	logger  *slog.Logger
	backoff func() retry.Backoff
}

func NewEmailSender(cfg Config, logger *slog.Logger) *EmailSender {
	return &EmailSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		logger: logger,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(maxSendRetries, retry.NewExponential(500*time.Millisecond))
		},
	}
}

func (s *EmailSender) SendWelcome(ctx context.Context, to, name string) error {
	subject := fmt.Sprintf("Welcome to EduReach, %s!", name)
	return s.send(ctx, to, subject, "welcome.html", welcomeData{Name: name})
}

func (s *EmailSender) SendAdminNotification(ctx context.Context, to string, lead entity.LeadSnapshot) error {
	subject := fmt.Sprintf("Lead %s (%s) scored %d", lead.Name, lead.Email, lead.AIScore)
	return s.send(ctx, to, subject, "admin_notification.html", snapshotData{lead})
}

func (s *EmailSender) SendPaymentConfirmation(ctx context.Context, lead entity.LeadSnapshot) error {
	return s.send(ctx, lead.Email, "Your EduReach payment is confirmed", "payment_confirmation.html", snapshotData{lead})
}

func (s *EmailSender) send(ctx context.Context, to, subject, tmpl string, data any) error {
	if to == "" {
		return fmt.Errorf("email %q: empty recipient", tmpl)
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("render template %s: %w", tmpl, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	attempt := 0
	return retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		attempt++
		err := s.dialer.DialAndSend(m)
		if err == nil {
			return nil
		}
		if !isTemporary(err) {
			return fmt.Errorf("send email %s: %w", tmpl, err)
		}
		s.logger.Warn("temporary email failure, retrying",
			slog.String("template", tmpl),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		return retry.RetryableError(fmt.Errorf("send email %s: %w", tmpl, err))
	})
}

// isTemporary reports whether an SMTP failure is worth retrying: network
// timeouts and resets plus the transient 4xx reply codes.
func isTemporary(err error) bool {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch tpErr.Code {
		case 421, 450, 451, 452:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
