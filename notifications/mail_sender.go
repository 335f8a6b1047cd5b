package notifications

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"opsdesk/utils"

	"gopkg.in/gomail.v2"
)

// Sender delivers a lead notification.
type Sender interface {
	SendLeadNotification(ctx context.Context, lead LeadCreated) error
}

var leadMailTemplate = template.Must(template.New("lead").Parse(
	"Name: {{.Name}}\nEmail: {{.Email}}\nPhone: {{.Phone}}\nMessage: {{.Message}}\n",
))

type EmailSender struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewEmailSender(cfg utils.MailConfig) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		to:     cfg.NotifyTo,
	}
}

func (s *EmailSender) SendLeadNotification(_ context.Context, lead LeadCreated) error {
	m, err := buildLeadMessage(s.from, s.to, lead)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func buildLeadMessage(from, to string, lead LeadCreated) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := leadMailTemplate.Execute(&body, lead); err != nil {
		return nil, fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	if lead.Email != "" {
		m.SetHeader("Reply-To", lead.Email)
	}
	m.SetHeader("Subject", fmt.Sprintf("New Lead: %s", lead.Name))
	m.SetBody("text/plain", body.String())
	return m, nil
}

// LogSender stands in for SMTP when no mail host is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendLeadNotification(_ context.Context, lead LeadCreated) error {
	s.logger.Info("lead notification (mail disabled)", "lead_id", lead.LeadID, "name", lead.Name)
	return nil
}
