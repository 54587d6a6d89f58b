// Package email implements the offline notification channel over SMTP.
package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender sends plain-text mail through a single SMTP relay.
// No mail framework is involved; the channel is a thin best-effort pipe
// and the dispatcher above it swallows every failure anyway.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPSender(host string, port int, from, username, password string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}
