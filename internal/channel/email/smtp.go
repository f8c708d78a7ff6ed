package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender renders embedded HTML templates and delivers them over SMTP.
type SMTPSender struct {
	cfg       Config
	dialer    *gomail.Dialer
	templates *template.Template
}

func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &SMTPSender{
		cfg:       cfg,
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		templates: templates,
	}, nil
}

// Render executes the named template. Missing templates and execution
// failures surface as errors so callers can fall back.
func (s *SMTPSender) Render(name string, data map[string]interface{}) (string, error) {
	tmpl := s.templates.Lookup(name + ".html")
	if tmpl == nil {
		return "", fmt.Errorf("email template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template %q: %w", name, err)
	}
	return buf.String(), nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	// gomail has no context support; honor cancellation before dialing.
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
