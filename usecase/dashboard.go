package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/utils"
)

type DashboardUsecase struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardUsecase(db *gorm.DB) *DashboardUsecase {
	return &DashboardUsecase{db: db, now: time.Now}
}

type Stats struct {
	ProviderID        uint                 `json:"provider_id"`
	TotalAppointments int64                `json:"total_appointments"`
	PendingCount      int64                `json:"pending_count"`
	ConfirmedCount    int64                `json:"confirmed_count"`
	CompletedCount    int64                `json:"completed_count"`
	CancelledCount    int64                `json:"cancelled_count"`
	UpcomingCount     int64                `json:"upcoming_count"`
	ActiveServices    int64                `json:"active_services"`
	TotalRevenue      decimal.Decimal      `json:"total_revenue"`
	Recent            []models.Appointment `json:"recent_appointments"`
	LastUpdated       time.Time            `json:"last_updated"`
}

// Stats summarizes a provider scope. providerID 0 means the actor's own
// scope; any other scope is forbidden.
func (d *DashboardUsecase) Stats(ctx context.Context, actorID, providerID uint) (*Stats, error) {
	actor, err := loadUser(ctx, d.db, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsProvider() {
		return nil, fmt.Errorf("%w: dashboard is for providers", utils.ErrForbidden)
	}
	scope := actor.ProviderScope()
	if providerID != 0 && providerID != scope {
		return nil, fmt.Errorf("%w: not your dashboard", utils.ErrForbidden)
	}

	db := d.db.WithContext(ctx)
	owned := func() *gorm.DB {
		return db.Model(&models.Appointment{}).
			Joins("JOIN services ON services.id = appointments.service_id").
			Where("services.provider_id = ?", scope)
	}

	type statusCount struct {
		Status models.AppointmentStatus
		Count  int64
	}
	var counts []statusCount
	err = owned().Select("appointments.status AS status, COUNT(*) AS count").
		Group("appointments.status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	s := &Stats{ProviderID: scope, LastUpdated: d.now().UTC()}
	for _, c := range counts {
		s.TotalAppointments += c.Count
		switch c.Status {
		case models.StatusPending:
			s.PendingCount = c.Count
		case models.StatusConfirmed:
			s.ConfirmedCount = c.Count
		case models.StatusCompleted:
			s.CompletedCount = c.Count
		case models.StatusCancelled:
			s.CancelledCount = c.Count
		}
	}

	err = owned().
		Where("appointments.start_time > ? AND appointments.status IN ?", d.now().UTC(),
			[]models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}).
		Count(&s.UpcomingCount).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Service{}).
		Where("provider_id = ? AND is_active = ?", scope, true).
		Count(&s.ActiveServices).Error
	if err != nil {
		return nil, err
	}

	var prices []decimal.Decimal
	err = owned().Where("appointments.status = ?", models.StatusCompleted).
		Pluck("services.price", &prices).Error
	if err != nil {
		return nil, err
	}
	s.TotalRevenue = decimal.Sum(decimal.Zero, prices...)

	s.Recent = []models.Appointment{}
	err = db.Select("appointments.*").
		Preload("Service", unscopedService).Preload("Client").
		Joins("JOIN services ON services.id = appointments.service_id").
		Where("services.provider_id = ?", scope).
		Order("appointments.created_at DESC, appointments.id DESC").
		Limit(5).
		Find(&s.Recent).Error
	if err != nil {
		return nil, err
	}
	return s, nil
}
