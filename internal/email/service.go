package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/thaivisachecklist/server/internal/config"
)

// ContactSubject is the subject line of every contact form notification.
const ContactSubject = "New message from Thai Visa Checklist"

//go:embed templates/*.html
var templateFS embed.FS

// ErrNotConfigured is returned when a send is attempted on a provider that
// was never initialised.
var ErrNotConfigured = errors.New("email provider not configured")

// Service delivers contact form messages to the site owner.
type Service struct {
	config       config.EmailConfig
	provider     string
	resendClient *resend.Client
	templates    *template.Template
	logger       zerolog.Logger
}

// ContactMessage is a validated contact form submission.
type ContactMessage struct {
	ID         string
	Name       string
	Email      string
	Message    string
	ReceivedAt time.Time
}

// NewService creates a new email service instance. When cfg.Enabled is false
// messages are logged and dropped.
func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	s := &Service{
		config:    cfg,
		provider:  strings.ToLower(cfg.Provider),
		templates: templates,
		logger:    logger.With().Str("component", "email").Logger(),
	}

	if !cfg.Enabled {
		return s, nil
	}

	if err := validateEmailAddress(cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender email in config: %w", err)
	}
	if err := validateEmailAddress(cfg.ContactRecipient); err != nil {
		return nil, fmt.Errorf("invalid contact recipient in config: %w", err)
	}

	switch s.provider {
	case "resend":
		s.resendClient = resend.NewClient(cfg.ResendAPIKey)
	case "smtp":
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Provider)
	}
	return s, nil
}

// SendContactMessage renders msg and hands it to the configured provider.
// The visitor's address is set as Reply-To so the owner can answer directly.
// An address that is not a valid RFC 5322 mailbox is left out of the headers
// and only appears in the body.
func (s *Service) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	if strings.ContainsAny(msg.Email, "\r\n") {
		return fmt.Errorf("invalid reply-to address: contains newline characters")
	}
	replyTo := msg.Email
	if _, err := mail.ParseAddress(replyTo); err != nil {
		s.logger.Warn().
			Str("submission_id", msg.ID).
			Err(err).
			Msg("visitor address is not a valid mailbox, sending without reply-to")
		replyTo = ""
	}

	if !s.config.Enabled {
		s.logger.Info().
			Str("submission_id", msg.ID).
			Str("from_name", msg.Name).
			Int("message_length", len(msg.Message)).
			Msg("email service disabled, skipping contact message")
		return nil
	}

	htmlBody, err := s.renderTemplate("contact_message.html", msg)
	if err != nil {
		return fmt.Errorf("failed to render contact template: %w", err)
	}

	to := s.config.ContactRecipient
	switch s.provider {
	case "resend":
		err = s.sendViaResend(ctx, to, replyTo, ContactSubject, htmlBody)
	case "smtp":
		err = s.sendViaSMTP(to, replyTo, ContactSubject, htmlBody)
	default:
		err = ErrNotConfigured
	}
	if err != nil {
		return fmt.Errorf("failed to send contact message: %w", err)
	}

	s.logger.Info().
		Str("submission_id", msg.ID).
		Str("provider", s.provider).
		Msg("contact message sent")
	return nil
}

// validateEmailAddress validates an email address for format and header injection attempts
func validateEmailAddress(email string) error {
	if strings.ContainsAny(email, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

// sendViaSMTP delivers over STARTTLS (port 587).
func (s *Service) sendViaSMTP(to, replyTo, subject, htmlBody string) error {
	if err := validateEmailAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	msg := buildMIMEMessage(s.config.From, to, replyTo, subject, htmlBody)

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	auth := smtp.PlainAuth("", s.config.SMTPUser, s.config.SMTPPassword, s.config.SMTPHost)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = client.Close() }()

	tlsConfig := &tls.Config{
		ServerName: s.config.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(s.config.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP connection: %w", err)
	}
	return nil
}

// buildMIMEMessage writes headers in a fixed order.
func buildMIMEMessage(from, to, replyTo, subject, htmlBody string) []byte {
	var msg bytes.Buffer
	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Reply-To", replyTo},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	for _, h := range headers {
		if h[1] == "" {
			continue
		}
		fmt.Fprintf(&msg, "%s: %s\r\n", h[0], h[1])
	}
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	return msg.Bytes()
}

func (s *Service) renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
