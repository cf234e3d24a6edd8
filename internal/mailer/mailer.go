package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/spec-kit/taskboard-service/internal/config"
)

// Mailer delivers a verification code to an address. The auth service only
// depends on this interface; delivery is an external collaborator.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
}

// New picks the SMTP sender when a host is configured and the log-only stub
// otherwise, so development environments need no mail server.
func New(cfg config.MailerConfig, logger *zap.Logger) Mailer {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set; verification emails will only be logged")
		return &logMailer{logger: logger}
	}
	return &smtpMailer{cfg: cfg, logger: logger}
}

type smtpMailer struct {
	cfg    config.MailerConfig
	logger *zap.Logger
}

func (m *smtpMailer) SendVerificationCode(_ context.Context, to, name, code string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Verify your email\r\n\r\nHi %s,\r\n\r\nYour verification code is %s.\r\n",
		m.cfg.From, to, name, code,
	)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	m.logger.Info("verification email sent", zap.String("to", to))
	return nil
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) SendVerificationCode(_ context.Context, to, _, code string) error {
	m.logger.Info("verification email (stub)",
		zap.String("to", to),
		zap.String("code", code),
	)
	return nil
}
