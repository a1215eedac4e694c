package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"weightguard/internal/business"
	"weightguard/pkg/config"
	"weightguard/pkg/logger"
)

func newTestMailer(send func(context.Context, *mail.Msg) error) *SMTPMailer {
	return &SMTPMailer{from: "store@example.com", send: send, log: logger.NewNop()}
}

func TestSendPerRecipient(t *testing.T) {
	var recipients []string
	m := newTestMailer(func(_ context.Context, msg *mail.Msg) error {
		to := msg.GetToString()
		require.Len(t, to, 1)
		recipients = append(recipients, to[0])
		assert.Equal(t, []string{"Daily summary"}, msg.GetGenHeader(mail.HeaderSubject))
		if to[0] == "b@example.com" {
			return errors.New("mailbox full")
		}
		return nil
	})

	err := m.Send(context.Background(), &business.Mail{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Daily summary",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, recipients)
}

func TestSendAllFail(t *testing.T) {
	m := newTestMailer(func(context.Context, *mail.Msg) error { return errors.New("connection refused") })

	err := m.Send(context.Background(), &business.Mail{To: []string{"a@example.com"}, Subject: "x"})
	assert.ErrorContains(t, err, "connection refused")

	err = m.Send(context.Background(), &business.Mail{Subject: "x"})
	assert.Error(t, err)
}

func TestNewRequiresHost(t *testing.T) {
	_, err := New(config.SMTPConfig{From: "a@example.com"}, logger.NewNop())
	assert.Error(t, err)

	m, err := New(config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "a@example.com", TLS: "mandatory"}, logger.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, mail.TLSMandatory, tlsPolicy("mandatory"))
	assert.Equal(t, mail.NoTLS, tlsPolicy("none"))
}
