package notify

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Port != "" && c.From != ""
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends HTML email over SMTP in the background.
type Mailer struct {
	cfg  SMTPConfig
	log  *zap.Logger
	send sendFunc
}

func NewMailer(cfg SMTPConfig, log *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Configured()
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	if !m.Enabled() {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		m.cfg.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	return m.send(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{to}, msg)
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return "there"
}

// AccountCreatedBody renders the email sent to a newly provisioned account.
func AccountCreatedBody(name, role string) string {
	return fmt.Sprintf(`<h2>Your portal account is ready</h2>
<p>Hi %s,</p>
<p>An account with the role <strong>%s</strong> has been created for you on the food distribution portal.</p>
<p>Sign in with this email address and the password you were given.</p>`,
		html.EscapeString(firstName(name)), html.EscapeString(strings.ReplaceAll(role, "_", " ")))
}

// SendAccountCreated mails the new account holder without blocking.
func (m *Mailer) SendAccountCreated(email, name, role string) {
	if !m.Enabled() {
		return
	}
	go func() {
		if err := m.Send(email, "Your food distribution portal account", AccountCreatedBody(name, role)); err != nil {
			m.log.Warn("failed to send account email", zap.String("email", email), zap.Error(err))
		}
	}()
}
