package otp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/otp/otptest"
	"github.com/meinhoongagan/booking-platform/utils"
)

type routerFixture struct {
	email, primary, secondary, whatsapp *otptest.Recorder
}

func newRouter(strict bool) (*Router, routerFixture) {
	f := routerFixture{
		email:     otptest.NewRecorder("smtp"),
		primary:   otptest.NewRecorder("primary"),
		secondary: otptest.NewRecorder("secondary"),
		whatsapp:  otptest.NewRecorder("whatsapp"),
	}
	return NewRouter(f.email, f.whatsapp, strict, zap.NewNop(), f.primary, f.secondary), f
}

func TestRouterEmail(t *testing.T) {
	r, f := newRouter(false)
	require.NoError(t, r.Send(context.Background(), models.ChannelEmail, "ana@example.com", "123456"))
	assert.Equal(t, "123456", f.email.Last("ana@example.com"))
	assert.Zero(t, f.primary.Calls())
}

func TestRouterSMSPrimary(t *testing.T) {
	r, f := newRouter(false)
	require.NoError(t, r.Send(context.Background(), models.ChannelSMS, "+15550100", "123456"))
	assert.Equal(t, "123456", f.primary.Last("+15550100"))
	assert.Zero(t, f.secondary.Calls())
}

func TestRouterSMSFallsBackOnFailure(t *testing.T) {
	r, f := newRouter(false)
	f.primary.Fail = true
	require.NoError(t, r.Send(context.Background(), models.ChannelSMS, "+15550100", "123456"))
	assert.Equal(t, 1, f.primary.Calls())
	assert.Equal(t, "123456", f.secondary.Last("+15550100"))
}

func TestRouterSMSFallsBackWhenUnconfigured(t *testing.T) {
	r, f := newRouter(false)
	f.primary.Missing = true
	require.NoError(t, r.Send(context.Background(), models.ChannelSMS, "+15550100", "123456"))
	assert.Zero(t, f.primary.Calls())
	assert.Equal(t, "123456", f.secondary.Last("+15550100"))
}

func TestRouterSMSAllFailed(t *testing.T) {
	r, f := newRouter(false)
	f.primary.Fail = true
	f.secondary.Fail = true
	err := r.Send(context.Background(), models.ChannelSMS, "+15550100", "123456")
	assert.True(t, errors.Is(err, utils.ErrDelivery))
}

func TestRouterSMSNoProviderLenient(t *testing.T) {
	r, f := newRouter(false)
	f.primary.Missing = true
	f.secondary.Missing = true
	assert.NoError(t, r.Send(context.Background(), models.ChannelSMS, "+15550100", "123456"))
}

func TestRouterSMSNoProviderStrict(t *testing.T) {
	r, f := newRouter(true)
	f.primary.Missing = true
	f.secondary.Missing = true
	err := r.Send(context.Background(), models.ChannelSMS, "+15550100", "123456")
	assert.True(t, errors.Is(err, utils.ErrDelivery))
}

func TestRouterWhatsAppNotReady(t *testing.T) {
	r, f := newRouter(false)
	f.whatsapp.NotReady = true
	err := r.Send(context.Background(), models.ChannelWhatsApp, "+15550100", "123456")
	assert.True(t, errors.Is(err, utils.ErrNotReady))
	assert.Zero(t, f.whatsapp.Calls())

	f.whatsapp.NotReady = false
	require.NoError(t, r.Send(context.Background(), models.ChannelWhatsApp, "+15550100", "123456"))
	assert.Equal(t, "123456", f.whatsapp.Last("+15550100"))
}

func TestRouterRejectsMissingDestination(t *testing.T) {
	r, _ := newRouter(false)
	err := r.Send(context.Background(), models.ChannelSMS, "", "123456")
	assert.True(t, errors.Is(err, utils.ErrValidation))
}
