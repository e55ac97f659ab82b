// Package usecase holds the business operations behind the HTTP handlers.
// Each usecase works on *gorm.DB directly and reports failures with the
// sentinel errors from utils.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/notify"
	"github.com/meinhoongagan/booking-platform/otp"
	"github.com/meinhoongagan/booking-platform/utils"
)

// Notifier accepts notifications for asynchronous delivery.
type Notifier interface {
	Notify(ev notify.Event)
}

// OTPIssuer issues and checks one-time codes.
type OTPIssuer interface {
	Issue(ctx context.Context, purpose otp.Purpose, identifier string, channel models.Channel, destination string) error
	Verify(ctx context.Context, purpose otp.Purpose, identifier, code string) error
}

// Mailer sends plain emails.
type Mailer interface {
	Configured() bool
	SendEmail(to, subject, body string) error
}

// AvatarUploader stores an image and returns its public URL.
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, file io.Reader, publicID string) (string, error)
}

func loadUser(ctx context.Context, db *gorm.DB, id uint) (*models.User, error) {
	var u models.User
	err := db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", utils.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// unscopedService preloads services even after they were soft deleted.
func unscopedService(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
