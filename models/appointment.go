package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/meinhoongagan/booking-platform/utils"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusCompleted AppointmentStatus = "COMPLETED"
)

type Appointment struct {
	ID             uint              `json:"id" gorm:"primaryKey"`
	ServiceID      uint              `json:"service_id" gorm:"not null;index"`
	Service        *Service          `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	ClientID       uint              `json:"client_id" gorm:"not null;index"`
	Client         *User             `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	StartTime      time.Time         `json:"start_time" gorm:"not null"`
	EndTime        time.Time         `json:"end_time" gorm:"not null"`
	Status         AppointmentStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	Notes          string            `json:"notes,omitempty"`
	ReminderSentAt *time.Time        `json:"-"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	return nil
}

// ParseStatus accepts only the four lifecycle values.
func ParseStatus(v string) (AppointmentStatus, error) {
	switch s := AppointmentStatus(strings.ToUpper(strings.TrimSpace(v))); s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return s, nil
	}
	return "", fmt.Errorf("%w: invalid status %q", utils.ErrValidation, v)
}

// CheckTransition reports whether the appointment may move to next.
// COMPLETED and CANCELLED are terminal.
func (a *Appointment) CheckTransition(next AppointmentStatus) error {
	switch a.Status {
	case StatusPending:
		if next != StatusConfirmed && next != StatusCancelled {
			return fmt.Errorf("%w: invalid transition from %s to %s", utils.ErrConflict, a.Status, next)
		}
	case StatusConfirmed:
		if next != StatusCompleted && next != StatusCancelled {
			return fmt.Errorf("%w: invalid transition from %s to %s", utils.ErrConflict, a.Status, next)
		}
	case StatusCompleted, StatusCancelled:
		return fmt.Errorf("%w: no transitions allowed from %s", utils.ErrConflict, a.Status)
	}
	return nil
}
