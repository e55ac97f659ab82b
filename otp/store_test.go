package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/booking-platform/utils"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestStoreSingleSlot(t *testing.T) {
	_, rdb := newRedis(t)
	s := NewStore(rdb, 10*time.Minute, 0)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "ana@example.com", "111111"))
	require.NoError(t, s.Save(ctx, "ana@example.com", "222222"))

	err := s.Verify(ctx, "ana@example.com", "111111")
	assert.True(t, errors.Is(err, utils.ErrAuth))
	assert.NoError(t, s.Verify(ctx, "ana@example.com", "222222"))
}

func TestStoreCodeIsSingleUse(t *testing.T) {
	_, rdb := newRedis(t)
	s := NewStore(rdb, 10*time.Minute, 0)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "ana@example.com", "123456"))
	require.NoError(t, s.Verify(ctx, "ana@example.com", "123456"))
	assert.True(t, errors.Is(s.Verify(ctx, "ana@example.com", "123456"), utils.ErrAuth))
}

func TestStoreExpiry(t *testing.T) {
	mr, rdb := newRedis(t)
	s := NewStore(rdb, 10*time.Minute, 0)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "ana@example.com", "123456"))
	assert.Equal(t, 600*time.Second, mr.TTL("otp:ana@example.com"))

	mr.FastForward(601 * time.Second)
	assert.True(t, errors.Is(s.Verify(ctx, "ana@example.com", "123456"), utils.ErrAuth))
}

func TestStoreCooldown(t *testing.T) {
	mr, rdb := newRedis(t)
	s := NewStore(rdb, 10*time.Minute, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, s.Reserve(ctx, "ana@example.com"))
	err := s.Reserve(ctx, "ana@example.com")
	assert.True(t, errors.Is(err, utils.ErrRateLimited))

	mr.FastForward(31 * time.Second)
	assert.NoError(t, s.Reserve(ctx, "ana@example.com"))
}
