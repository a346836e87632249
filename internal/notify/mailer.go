package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotConfigured is returned when the mailer lacks the settings to dial.
var ErrNotConfigured = errors.New("mailer not configured")

const resetSubject = "Password Reset Code - Admin Panel"

var resetTemplate = template.Must(template.New("reset").Parse(`<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: white; padding: 30px; border-radius: 10px;">
    <h2 style="color: #333; text-align: center;">Password Reset Request</h2>
    <p style="color: #666; font-size: 16px;">A password reset was requested for your admin account.</p>
    <div style="background: #f0f0f0; padding: 20px; border-radius: 5px; text-align: center; margin: 20px 0;">
      <p style="margin: 0 0 10px 0; color: #666; font-size: 14px;">Your verification code:</p>
      <h1 style="margin: 0; color: #2563eb; font-size: 36px; letter-spacing: 5px;">{{.Code}}</h1>
    </div>
    <p style="color: #666; font-size: 14px;">This code will expire in {{.Minutes}} minutes.</p>
    <p style="color: #999; font-size: 12px; margin-top: 30px;">If you didn't request this reset, please ignore this email.</p>
  </div>
</body>
</html>
`))

// SendFunc matches smtp.SendMail so tests can capture outgoing messages.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers reset codes over SMTP.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	send     SendFunc
	now      func() time.Time
	log      zerolog.Logger
}

// NewMailer creates a Mailer. smtp.SendMail upgrades to STARTTLS when the server offers it.
func NewMailer(host, port, username, password, from string, log zerolog.Logger) *Mailer {
	return &Mailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
		send:     smtp.SendMail,
		now:      time.Now,
		log:      log.With().Str("component", "mailer").Logger(),
	}
}

// SendResetCode emails the reset code to the admin.
func (m *Mailer) SendResetCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	if m == nil || m.host == "" || m.port == "" || m.from == "" {
		return ErrNotConfigured
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg, err := m.buildMessage(email, code, expiresAt)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := net.JoinHostPort(m.host, m.port)
	if err := m.send(addr, auth, m.from, []string{email}, msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	m.log.Debug().Str("email", email).Msg("Reset mail sent")
	return nil
}

func (m *Mailer) buildMessage(email, code string, expiresAt time.Time) ([]byte, error) {
	minutes := int(math.Ceil(expiresAt.Sub(m.now()).Minutes()))
	if minutes < 1 {
		minutes = 1
	}

	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, struct {
		Code    string
		Minutes int
	}{code, minutes}); err != nil {
		return nil, fmt.Errorf("render reset mail: %w", err)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", email)
	fmt.Fprintf(&msg, "Subject: %s\r\n", resetSubject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	msg.WriteString(strings.ReplaceAll(body.String(), "\n", "\r\n"))

	return []byte(msg.String()), nil
}

// LogMailer stands in for SMTP when no server is configured.
// It records that a mail would have been sent, without the code.
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "mailer").Logger()}
}

// SendResetCode logs the delivery attempt.
func (m *LogMailer) SendResetCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	m.log.Warn().
		Str("email", email).
		Time("expires_at", expiresAt).
		Msg("SMTP not configured, reset mail not delivered")
	return nil
}
