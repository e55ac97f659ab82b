package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/meinhoongagan/booking-platform/utils"
)

// Sender delivers a code to a destination on one channel.
type Sender interface {
	Send(ctx context.Context, to, code string) error
}

// Provider is an SMS backend that may be left unconfigured.
type Provider interface {
	Sender
	Name() string
	Configured() bool
}

// Session is a long-lived channel that must finish pairing before use.
type Session interface {
	Sender
	Ready() bool
}

func messageFor(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(ttl.Minutes()))
}

// EmailSender delivers codes through the shared mailer.
type EmailSender struct {
	mailer *utils.Mailer
	ttl    time.Duration
}

func NewEmailSender(mailer *utils.Mailer, ttl time.Duration) *EmailSender {
	return &EmailSender{mailer: mailer, ttl: ttl}
}

func (e *EmailSender) Send(ctx context.Context, to, code string) error {
	body := fmt.Sprintf(`
		<p>Hello,</p>
		<p>%s</p>
		<p>If you did not request this code you can ignore this email.</p>
	`, messageFor(code, e.ttl))
	return e.mailer.SendEmail(to, "Your verification code", body)
}
