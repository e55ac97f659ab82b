package utils

import (
	"errors"

	"gopkg.in/gomail.v2"
)

// Mailer sends HTML email through one SMTP dialer built at startup.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, user, pass, from string) *Mailer {
	if from == "" {
		from = user
	}
	if host == "" {
		return &Mailer{from: from}
	}
	return &Mailer{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

func (m *Mailer) Configured() bool {
	return m != nil && m.dialer != nil
}

func (m *Mailer) SendEmail(to, subject, body string) error {
	if !m.Configured() {
		return errors.New("smtp is not configured")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	return m.dialer.DialAndSend(msg)
}
