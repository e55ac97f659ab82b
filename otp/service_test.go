package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/otp/otptest"
	"github.com/meinhoongagan/booking-platform/utils"
)

func TestServiceIssueAndVerify(t *testing.T) {
	_, rdb := newRedis(t)
	email := otptest.NewRecorder("smtp")
	svc := NewService(NewStore(rdb, 10*time.Minute, 0), NewRouter(email, nil, false, zap.NewNop()), 6)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, PurposeLogin, "ana@example.com", models.ChannelEmail, "ana@example.com"))
	first := email.Last("ana@example.com")
	require.Len(t, first, 6)

	require.NoError(t, svc.Issue(ctx, PurposeLogin, "ana@example.com", models.ChannelEmail, "ana@example.com"))
	second := email.Last("ana@example.com")

	if first != second {
		assert.True(t, errors.Is(svc.Verify(ctx, PurposeLogin, "ana@example.com", first), utils.ErrAuth))
	}
	assert.NoError(t, svc.Verify(ctx, PurposeLogin, "ana@example.com", second))
}

func TestServiceDiscardsOnDeliveryFailure(t *testing.T) {
	mr, rdb := newRedis(t)
	email := otptest.NewRecorder("smtp")
	email.Fail = true
	svc := NewService(NewStore(rdb, 10*time.Minute, time.Minute), NewRouter(email, nil, false, zap.NewNop()), 6)

	err := svc.Issue(context.Background(), PurposeReset, "ana@example.com", models.ChannelEmail, "ana@example.com")
	assert.True(t, errors.Is(err, utils.ErrDelivery))
	assert.False(t, mr.Exists("otp:reset:ana@example.com"))
	assert.False(t, mr.Exists("otp:cooldown:reset:ana@example.com"))
}

func TestServiceCodesAreBoundToPurpose(t *testing.T) {
	mr, rdb := newRedis(t)
	email := otptest.NewRecorder("smtp")
	svc := NewService(NewStore(rdb, 10*time.Minute, time.Minute), NewRouter(email, nil, false, zap.NewNop()), 6)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, PurposeReset, "ana@example.com", models.ChannelEmail, "ana@example.com"))
	code := email.Last("ana@example.com")
	assert.True(t, mr.Exists("otp:reset:ana@example.com"))

	assert.ErrorIs(t, svc.Verify(ctx, PurposeLogin, "ana@example.com", code), utils.ErrAuth)
	assert.ErrorIs(t, svc.Verify(ctx, PurposeRegister, "ana@example.com", code), utils.ErrAuth)

	// the cooldown is per flow too
	require.NoError(t, svc.Issue(ctx, PurposeLogin, "ana@example.com", models.ChannelEmail, "ana@example.com"))
	assert.ErrorIs(t, svc.Issue(ctx, PurposeReset, "ana@example.com", models.ChannelEmail, "ana@example.com"), utils.ErrRateLimited)

	assert.NoError(t, svc.Verify(ctx, PurposeReset, "ana@example.com", code))
}
