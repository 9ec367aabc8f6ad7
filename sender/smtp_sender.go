package sender

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"
)

// SMTPConfig carries the relay settings. From defaults to Username when
// left empty.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPConfigFromEnv reads the SMTP_* variables and validates the required
// ones in a single pass.
func SMTPConfigFromEnv() (SMTPConfig, error) {
	cfg := SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     os.Getenv("SMTP_FROM"),
	}
	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if cfg.Port == "" {
		missing = append(missing, "SMTP_PORT")
	}
	if cfg.Username == "" {
		missing = append(missing, "SMTP_USER")
	}
	if cfg.Password == "" {
		missing = append(missing, "SMTP_PASS")
	}
	if len(missing) > 0 {
		return SMTPConfig{}, fmt.Errorf("smtp config incomplete, missing %s", strings.Join(missing, ", "))
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return cfg, nil
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, body string) (SendResult, error) {
	addr := s.cfg.Host + ":" + s.cfg.Port
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	var msg strings.Builder
	msg.WriteString("From: " + s.cfg.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return SendResult{}, fmt.Errorf("smtp send to %s failed: %w", to, err)
	}

	return SendResult{
		MessageID: fmt.Sprintf("smtp-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
