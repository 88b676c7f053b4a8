package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"net/smtp"

	"booknet/internal/config"
)

// EmailTemplate identifies the outbound email template to render
type EmailTemplate string

const (
	TemplateActivateAccount EmailTemplate = "activate_account"
)

// Mailer dispatches transactional email. Callers treat dispatch as
// fire-and-forget (no delivery confirmation) but a dispatch failure is a
// real error they must propagate.
type Mailer interface {
	Send(ctx context.Context, to, displayName string, tmpl EmailTemplate, activationURL, code, subject string) error
}

var activationTemplate = template.Must(template.New("activate_account").Parse(`
<html>
  <body>
    <p>Hi {{.DisplayName}},</p>
    <p>Your activation code is <strong>{{.Code}}</strong>.</p>
    <p>Enter it at <a href="{{.ActivationURL}}">{{.ActivationURL}}</a> within 15 minutes.</p>
  </body>
</html>`))

// SMTPMailer sends email over SMTP. When no host is configured it runs
// disabled and only logs the code (dev convenience).
type SMTPMailer struct {
	cfg     config.SMTPConfig
	enabled bool
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:     cfg,
		enabled: cfg.Host != "",
	}
}

// IsEnabled checks if real delivery is configured
func (m *SMTPMailer) IsEnabled() bool {
	return m.enabled
}

// Send renders the template and dispatches the message
func (m *SMTPMailer) Send(ctx context.Context, to, displayName string, tmpl EmailTemplate, activationURL, code, subject string) error {
	if !m.enabled {
		log.Printf("SMTP disabled, skipping email to %s (code: %s)", to, code)
		return nil
	}

	body, err := renderTemplate(tmpl, displayName, activationURL, code)
	if err != nil {
		return err
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}

	return nil
}

func renderTemplate(tmpl EmailTemplate, displayName, activationURL, code string) ([]byte, error) {
	switch tmpl {
	case TemplateActivateAccount:
		var buf bytes.Buffer
		err := activationTemplate.Execute(&buf, map[string]string{
			"DisplayName":   displayName,
			"Code":          code,
			"ActivationURL": activationURL,
		})
		if err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown email template: %s", tmpl)
	}
}
