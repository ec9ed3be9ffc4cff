package services

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/meridian-ca/meridian-ca-api/config"
)

// FromName is the display name used on all outbound email
const FromName = "Meridian Chartered Accountants"

// EmailSender defines the interface for sending transactional email
type EmailSender interface {
	// Send delivers a single HTML email. At most one attempt is made.
	Send(to, subject, htmlBody string) error
}

// SendGridEmailService implements EmailSender using the SendGrid API
type SendGridEmailService struct {
	client *sendgrid.Client
	from   string
	logger *zap.Logger
}

// LogEmailService is the fallback sender used when no API key is configured.
// It logs the email instead of sending it so the calling flows keep working.
type LogEmailService struct {
	logger *zap.Logger
}

var emailSenderInstance EmailSender

// InitEmailService initializes the email sender. When SENDGRID_API_KEY is not
// set it falls back to the logging sender rather than failing.
func InitEmailService(cfg *config.Config, logger *zap.Logger) EmailSender {
	if cfg.SendGridAPIKey == "" {
		logger.Warn("SENDGRID_API_KEY is not set, email delivery disabled (emails will be logged)")
		emailSenderInstance = &LogEmailService{logger: logger}
		return emailSenderInstance
	}

	emailSenderInstance = &SendGridEmailService{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   cfg.SendGridFromEmail,
		logger: logger,
	}
	return emailSenderInstance
}

// GetEmailService returns the initialized email sender instance
func GetEmailService() EmailSender {
	return emailSenderInstance
}

// SetEmailService sets the email sender instance (primarily for testing)
func SetEmailService(sender EmailSender) {
	emailSenderInstance = sender
}

// Send delivers the email through SendGrid
func (s *SendGridEmailService) Send(to, subject, htmlBody string) error {
	from := mail.NewEmail(FromName, s.from)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, "", htmlBody)

	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, resp.Body)
	}

	s.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// Send logs the email and reports success
func (s *LogEmailService) Send(to, subject, htmlBody string) error {
	s.logger.Info("email delivery skipped (provider not configured)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(htmlBody)),
	)
	return nil
}
