package otp

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/metrics"
	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/utils"
)

// Router picks the delivery path for one channel. It never retries across
// channels; the caller chooses the channel once.
type Router struct {
	email    Sender
	sms      []Provider
	whatsapp Session
	strict   bool
	log      *zap.Logger
}

// NewRouter wires the channels. sms providers are tried in order. In strict
// mode a missing SMS configuration is a delivery error instead of a logged
// no-op.
func NewRouter(email Sender, whatsapp Session, strict bool, log *zap.Logger, sms ...Provider) *Router {
	return &Router{email: email, sms: sms, whatsapp: whatsapp, strict: strict, log: log.Named("otp")}
}

func (r *Router) Send(ctx context.Context, channel models.Channel, to, code string) error {
	if to == "" {
		return fmt.Errorf("%w: no %s destination on file", utils.ErrValidation, channel)
	}
	switch channel {
	case models.ChannelEmail:
		return r.sendEmail(ctx, to, code)
	case models.ChannelSMS:
		return r.sendSMS(ctx, to, code)
	case models.ChannelWhatsApp:
		return r.sendWhatsApp(ctx, to, code)
	default:
		return fmt.Errorf("%w: unsupported channel %q", utils.ErrValidation, channel)
	}
}

func (r *Router) sendEmail(ctx context.Context, to, code string) error {
	if err := r.email.Send(ctx, to, code); err != nil {
		metrics.OTPSent.WithLabelValues("EMAIL", "smtp", "error").Inc()
		return fmt.Errorf("%w: email: %v", utils.ErrDelivery, err)
	}
	metrics.OTPSent.WithLabelValues("EMAIL", "smtp", "ok").Inc()
	return nil
}

func (r *Router) sendSMS(ctx context.Context, to, code string) error {
	var lastErr error
	attempted := 0
	for _, p := range r.sms {
		if !p.Configured() {
			continue
		}
		attempted++
		err := p.Send(ctx, to, code)
		if err == nil {
			metrics.OTPSent.WithLabelValues("SMS", p.Name(), "ok").Inc()
			return nil
		}
		metrics.OTPSent.WithLabelValues("SMS", p.Name(), "error").Inc()
		r.log.Warn("sms provider failed, trying next", zap.String("provider", p.Name()), zap.Error(err))
		lastErr = err
	}

	if attempted > 0 {
		return fmt.Errorf("%w: all sms providers failed: %v", utils.ErrDelivery, lastErr)
	}
	if r.strict {
		return fmt.Errorf("%w: no sms provider configured", utils.ErrDelivery)
	}
	// Development affordance: nothing was delivered.
	r.log.Warn("no sms provider configured, otp not delivered",
		zap.String("to", to), zap.String("code", code))
	metrics.OTPSent.WithLabelValues("SMS", "mock", "ok").Inc()
	return nil
}

func (r *Router) sendWhatsApp(ctx context.Context, to, code string) error {
	if r.whatsapp == nil || !r.whatsapp.Ready() {
		metrics.OTPSent.WithLabelValues("WHATSAPP", "session", "not_ready").Inc()
		return fmt.Errorf("%w: whatsapp session is not established", utils.ErrNotReady)
	}
	if err := r.whatsapp.Send(ctx, to, code); err != nil {
		metrics.OTPSent.WithLabelValues("WHATSAPP", "session", "error").Inc()
		return fmt.Errorf("%w: whatsapp: %v", utils.ErrDelivery, err)
	}
	metrics.OTPSent.WithLabelValues("WHATSAPP", "session", "ok").Inc()
	return nil
}
