package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newTestMailer(username string, captured *capturedMail, sendErr error) *Mailer {
	m := NewMailer("smtp.example.com", "587", username, "secret", "noreply@example.com", zerolog.Nop())
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		*captured = capturedMail{addr: addr, auth: a, from: from, to: to, msg: string(msg)}
		return sendErr
	}
	return m
}

func TestMailerSendResetCode(t *testing.T) {
	var got capturedMail
	m := newTestMailer("mailer", &got, nil)
	expires := m.now().Add(15 * time.Minute)

	err := m.SendResetCode(context.Background(), "a@x.com", "493021", expires)
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", got.addr)
	assert.Equal(t, "noreply@example.com", got.from)
	assert.Equal(t, []string{"a@x.com"}, got.to)
	assert.NotNil(t, got.auth)

	assert.Contains(t, got.msg, "To: a@x.com\r\n")
	assert.Contains(t, got.msg, "Subject: "+resetSubject+"\r\n")
	assert.Contains(t, got.msg, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.Contains(t, got.msg, "493021")
	assert.Contains(t, got.msg, "expire in 15 minutes")
}

func TestMailerWithoutCredentialsSkipsAuth(t *testing.T) {
	var got capturedMail
	m := newTestMailer("", &got, nil)
	m.password = ""

	require.NoError(t, m.SendResetCode(context.Background(), "a@x.com", "111111", m.now().Add(time.Minute)))
	assert.Nil(t, got.auth)
}

func TestMailerEscapesCode(t *testing.T) {
	var got capturedMail
	m := newTestMailer("", &got, nil)

	require.NoError(t, m.SendResetCode(context.Background(), "a@x.com", "<b>", m.now().Add(time.Minute)))
	assert.False(t, strings.Contains(got.msg, "<b>"))
	assert.Contains(t, got.msg, "&lt;b&gt;")
}

func TestMailerErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		m := NewMailer("", "587", "", "", "noreply@example.com", zerolog.Nop())
		err := m.SendResetCode(context.Background(), "a@x.com", "1", time.Now())
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("canceled context", func(t *testing.T) {
		var got capturedMail
		m := newTestMailer("", &got, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := m.SendResetCode(ctx, "a@x.com", "1", m.now())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, got.addr)
	})

	t.Run("transport failure is wrapped", func(t *testing.T) {
		var got capturedMail
		boom := errors.New("connection reset")
		m := newTestMailer("", &got, boom)

		err := m.SendResetCode(context.Background(), "a@x.com", "1", m.now().Add(time.Minute))
		assert.ErrorIs(t, err, boom)
	})
}
