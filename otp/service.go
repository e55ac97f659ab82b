package otp

import (
	"context"

	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/utils"
)

// Purpose binds a code to the flow that issued it.
type Purpose string

const (
	PurposeRegister Purpose = "register"
	PurposeLogin    Purpose = "login"
	PurposeReset    Purpose = "reset"
)

func scoped(purpose Purpose, identifier string) string {
	return string(purpose) + ":" + identifier
}

// Service issues and verifies codes. purpose and identifier key the stored
// code; destination is where the chosen channel delivers it.
type Service struct {
	store  *Store
	router *Router
	digits int
}

func NewService(store *Store, router *Router, digits int) *Service {
	if digits <= 0 {
		digits = 6
	}
	return &Service{store: store, router: router, digits: digits}
}

func (s *Service) Issue(ctx context.Context, purpose Purpose, identifier string, channel models.Channel, destination string) error {
	identifier = scoped(purpose, identifier)
	if err := s.store.Reserve(ctx, identifier); err != nil {
		return err
	}
	code, err := utils.GenerateOTP(s.digits)
	if err != nil {
		s.store.Discard(ctx, identifier)
		return err
	}
	if err := s.store.Save(ctx, identifier, code); err != nil {
		s.store.Discard(ctx, identifier)
		return err
	}
	if err := s.router.Send(ctx, channel, destination, code); err != nil {
		s.store.Discard(ctx, identifier)
		return err
	}
	return nil
}

func (s *Service) Verify(ctx context.Context, purpose Purpose, identifier, code string) error {
	return s.store.Verify(ctx, scoped(purpose, identifier), code)
}
