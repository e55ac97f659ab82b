package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meinhoongagan/booking-platform/utils"
)

// Store keeps one live code per identifier. Issuing again overwrites the
// previous code, and Redis TTL evicts it after ttl.
type Store struct {
	rdb      *redis.Client
	ttl      time.Duration
	cooldown time.Duration
}

func NewStore(rdb *redis.Client, ttl, cooldown time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl, cooldown: cooldown}
}

func codeKey(identifier string) string     { return "otp:" + identifier }
func cooldownKey(identifier string) string { return "otp:cooldown:" + identifier }

// Reserve claims the resend cooldown for identifier.
func (s *Store) Reserve(ctx context.Context, identifier string) error {
	if s.cooldown <= 0 {
		return nil
	}
	ok, err := s.rdb.SetNX(ctx, cooldownKey(identifier), "1", s.cooldown).Result()
	if err != nil {
		return fmt.Errorf("otp cooldown: %w", err)
	}
	if !ok {
		ttl, _ := s.rdb.TTL(ctx, cooldownKey(identifier)).Result()
		return fmt.Errorf("%w: please wait %d seconds before requesting another code", utils.ErrRateLimited, int(ttl.Seconds()))
	}
	return nil
}

func (s *Store) Save(ctx context.Context, identifier, code string) error {
	if err := s.rdb.Set(ctx, codeKey(identifier), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Discard drops both the code and the cooldown, used when delivery fails.
func (s *Store) Discard(ctx context.Context, identifier string) {
	s.rdb.Del(ctx, codeKey(identifier), cooldownKey(identifier))
}

// Verify consumes the code on success.
func (s *Store) Verify(ctx context.Context, identifier, code string) error {
	stored, err := s.rdb.Get(ctx, codeKey(identifier)).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: code expired or was never requested", utils.ErrAuth)
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return fmt.Errorf("%w: invalid code", utils.ErrAuth)
	}
	s.rdb.Del(ctx, codeKey(identifier))
	return nil
}
