// Package mail sends transactional email over SMTP, or logs it when SMTP is not configured.
package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	cfg  config.SMTPConfig
	send sendFunc
}

func NewSMTP(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

var _ provider.Mailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	msg := buildMessage(m.cfg.From, to, subject, body, time.Now())
	if err := m.send(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string, at time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(subject))
	fmt.Fprintf(&b, "Date: %s\r\n", at.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	log logrus.FieldLogger
}

func NewLog(log logrus.FieldLogger) *LogMailer {
	return &LogMailer{log: log.WithField("component", "mailer")}
}

var _ provider.Mailer = (*LogMailer)(nil)

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Info(body)
	return nil
}

// New picks the SMTP mailer when a host is configured.
func New(cfg config.SMTPConfig, log logrus.FieldLogger) provider.Mailer {
	if cfg.Host == "" {
		return NewLog(log)
	}
	return NewSMTP(cfg)
}
