package models

import "time"

type NotificationType string

const (
	NotifAppointmentCreated  NotificationType = "APPOINTMENT_CREATED"
	NotifAppointmentUpdated  NotificationType = "APPOINTMENT_UPDATED"
	NotifAppointmentReminder NotificationType = "APPOINTMENT_REMINDER"
)

type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RecipientID uint             `json:"recipient_id" gorm:"not null;index"`
	Type        NotificationType `json:"type" gorm:"type:varchar(32);not null"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	IsRead      bool             `json:"is_read" gorm:"not null"`
	RelatedID   *uint            `json:"related_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
