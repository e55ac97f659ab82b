package notify

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/utils"
)

// Store reads and updates a user's stored notifications.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// List returns the newest notifications first. unreadOnly narrows the list.
func (s *Store) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Where("recipient_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []models.Notification
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// MarkRead flags one notification as read. Notifications of other users
// read as not found.
func (s *Store) MarkRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND recipient_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: notification %d", utils.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if !n.IsRead {
		if err := s.db.WithContext(ctx).Model(&n).Update("is_read", true).Error; err != nil {
			return nil, err
		}
	}
	return &n, nil
}

func (s *Store) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
