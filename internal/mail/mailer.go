package mail

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"todohub/internal/config"
)

const sendAttempts = 3

// Mailer delivers account emails. Implementations must never block the
// request path; callers dispatch them from background goroutines.
type Mailer interface {
	SendVerification(toEmail, username, token string) error
	SendPasswordReset(toEmail, username, token string) error
}

// SMTPMailer sends mail through a plain SMTP dialer.
type SMTPMailer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewSMTPMailer creates a new SMTP mailer.
func NewSMTPMailer(cfg *config.Config, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		logger: logger,
	}
}

// SendVerification sends the email confirmation link for a new account.
func (m *SMTPMailer) SendVerification(toEmail, username, token string) error {
	link := fmt.Sprintf("%s/api/auth/confirm/%s", strings.TrimRight(m.cfg.BaseURL, "/"), token)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Confirm your email</h2>
    <p>Hi %s,</p>
    <p>Click the link below to confirm your email address:</p>
    <p><a href="%s">%s</a></p>
    <p>The link is valid for 24 hours. If you did not sign up, ignore this message.</p>
  </div>
</body>
</html>`, username, link, link)

	return m.send(toEmail, "Confirm your email", body)
}

// SendPasswordReset sends a single-use password reset link.
func (m *SMTPMailer) SendPasswordReset(toEmail, username, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(m.cfg.BaseURL, "/"), token)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Reset your password</h2>
    <p>Hi %s,</p>
    <p>Click the link below to choose a new password:</p>
    <p><a href="%s">%s</a></p>
    <p>The link is valid for 1 hour. If you did not request a reset, ignore this message.</p>
  </div>
</body>
</html>`, username, link, link)

	return m.send(toEmail, "Reset your password", body)
}

func (m *SMTPMailer) send(toEmail, subject, body string) error {
	if m.cfg.SMTPHost == "" || m.cfg.FromEmail == "" {
		m.logger.Warn("smtp config missing, skip email", slog.String("subject", subject))
		return nil
	}
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.FromEmail)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)

	var err error
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		if err = d.DialAndSend(msg); err == nil {
			m.logger.Info("email sent", slog.String("to", toEmail), slog.String("subject", subject))
			return nil
		}
		m.logger.Warn("send email failed",
			slog.String("to", toEmail),
			slog.Int("attempt", attempt),
			slog.Any("error", err))
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	return fmt.Errorf("send email: %w", err)
}
