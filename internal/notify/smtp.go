package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the mail channel settings. The password arrives via
// environment, never from the config file.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// SMTP sends one mail per event.
type SMTP struct {
	cfg SMTPConfig
}

// NewSMTP builds a mail notifier.
func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTP{cfg: cfg}
}

// Send builds and delivers the mail for a single event. A fresh SMTP
// connection is dialed per event; notification volume is a handful of
// mails per lifecycle operation.
func (s *SMTP) Send(ctx context.Context, event Event) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(s.cfg.To...); err != nil {
		return fmt.Errorf("setting recipients: %w", err)
	}
	msg.Subject(fmt.Sprintf("[vpngw] %s: %s", event.Session, event.Milestone))
	msg.SetBodyString(mail.TypeTextPlain, formatBody(event))

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("building mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

func formatBody(event Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Milestone: %s\n", event.Milestone)
	fmt.Fprintf(&b, "Session:   %s\n", event.Session)
	fmt.Fprintf(&b, "Severity:  %s\n", event.Severity)
	fmt.Fprintf(&b, "Time:      %s\n", event.Timestamp.Format("2006-01-02 15:04:05 MST"))
	if event.Detail != "" {
		fmt.Fprintf(&b, "\n%s\n", event.Detail)
	}
	for k, v := range event.Fields {
		fmt.Fprintf(&b, "%s: %s\n", k, v)
	}
	return b.String()
}
