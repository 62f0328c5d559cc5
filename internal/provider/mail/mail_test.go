package mail

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/logging"
)

func TestSMTPMailer_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m := NewSMTP(config.SMTPConfig{Host: "smtp.local", Port: 2525, Username: "u", Password: "p", From: "no-reply@zerofiltre.tech"})
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		assert.NotNil(t, a)
		return nil
	}

	require.NoError(t, m.Send(context.Background(), "a@b.co", "Verify\nyour account", "line1\nline2"))
	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Equal(t, "no-reply@zerofiltre.tech", gotFrom)
	assert.Equal(t, []string{"a@b.co"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Verify your account\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\nline1\r\nline2")
}

func TestSMTPMailer_SendError(t *testing.T) {
	m := NewSMTP(config.SMTPConfig{Host: "smtp.local", Port: 25})
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }
	assert.ErrorContains(t, m.Send(context.Background(), "a@b.co", "s", "b"), "connection refused")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, "info", time.UTC)

	m := New(config.SMTPConfig{}, log)
	require.IsType(t, &LogMailer{}, m)
	require.NoError(t, m.Send(context.Background(), "a@b.co", "Hello", "body text"))
	assert.Contains(t, buf.String(), `"subject":"Hello"`)
	assert.Contains(t, buf.String(), `"msg":"body text"`)

	assert.IsType(t, &SMTPMailer{}, New(config.SMTPConfig{Host: "smtp.local"}, log))
}
