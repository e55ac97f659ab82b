package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meinhoongagan/booking-platform/events"
	"github.com/meinhoongagan/booking-platform/metrics"
	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/notify"
	"github.com/meinhoongagan/booking-platform/utils"
)

// Reminder window relative to the cron tick.
const (
	reminderLead   = 55 * time.Minute
	reminderWindow = 10 * time.Minute
)

type AppointmentUsecase struct {
	db          *gorm.DB
	notifier    Notifier
	events      events.Publisher
	mailer      Mailer
	loc         *time.Location
	autoConfirm bool
	now         func() time.Time
	log         *zap.Logger
}

func NewAppointmentUsecase(db *gorm.DB, notifier Notifier, pub events.Publisher, mailer Mailer, loc *time.Location, autoConfirm bool, log *zap.Logger) *AppointmentUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentUsecase{
		db:          db,
		notifier:    notifier,
		events:      pub,
		mailer:      mailer,
		loc:         loc,
		autoConfirm: autoConfirm,
		now:         time.Now,
		log:         log.Named("appointments"),
	}
}

type CreateAppointmentInput struct {
	ServiceID uint      `json:"service_id"`
	StartTime time.Time `json:"start_time"`
	Notes     string    `json:"notes"`
}

// Create books a slot for the client. The slot check and insert share one
// transaction and the active-slot index rejects whatever slips past the
// check, so two concurrent bookings of one slot never both succeed.
func (u *AppointmentUsecase) Create(ctx context.Context, clientID uint, in CreateAppointmentInput) (*models.Appointment, error) {
	if in.ServiceID == 0 || in.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: service_id and start_time are required", utils.ErrValidation)
	}
	start := in.StartTime.UTC().Truncate(time.Second)
	if !start.After(u.now()) {
		return nil, fmt.Errorf("%w: start_time must be in the future", utils.ErrValidation)
	}

	var (
		svc  models.Service
		appt models.Appointment
	)
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("is_active = ?", true).First(&svc, in.ServiceID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: service %d", utils.ErrNotFound, in.ServiceID)
		}
		if err != nil {
			return err
		}

		var taken int64
		err = tx.Model(&models.Appointment{}).
			Where("service_id = ? AND start_time = ? AND status <> ?", svc.ID, start, models.StatusCancelled).
			Count(&taken).Error
		if err != nil {
			return err
		}
		if taken > 0 {
			return fmt.Errorf("%w: slot already booked", utils.ErrConflict)
		}

		appt = models.Appointment{
			ServiceID: svc.ID,
			ClientID:  clientID,
			StartTime: start,
			EndTime:   start.Add(svc.Length()),
			Status:    models.StatusPending,
			Notes:     in.Notes,
		}
		if u.autoConfirm {
			appt.Status = models.StatusConfirmed
		}
		return tx.Create(&appt).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: slot already booked", utils.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	appt.Service = &svc
	metrics.AppointmentsCreated.Inc()

	clientName := "A client"
	if client, err := loadUser(ctx, u.db, clientID); err == nil && client.Profile.Name != "" {
		clientName = client.Profile.Name
	}
	u.notifier.Notify(notify.Event{
		RecipientID: svc.ProviderID,
		Type:        models.NotifAppointmentCreated,
		Title:       "New appointment",
		Message:     fmt.Sprintf("%s booked %s for %s", clientName, svc.Name, u.display(appt.StartTime)),
		RelatedID:   &appt.ID,
		Topic:       notify.EventAppointmentCreated,
		Payload:     appt,
	})
	u.publish(ctx, events.AppointmentCreated, appt)
	return &appt, nil
}

// List returns the caller's own bookings and, for providers, every booking
// on services owned by their provider scope.
func (u *AppointmentUsecase) List(ctx context.Context, userID uint) ([]models.Appointment, error) {
	user, err := loadUser(ctx, u.db, userID)
	if err != nil {
		return nil, err
	}

	q := u.db.WithContext(ctx).
		Preload("Service", unscopedService).
		Preload("Client")
	if user.IsProvider() {
		owned := u.db.Unscoped().Model(&models.Service{}).Select("id").Where("provider_id = ?", user.ProviderScope())
		q = q.Where("client_id = ? OR service_id IN (?)", user.ID, owned)
	} else {
		q = q.Where("client_id = ?", user.ID)
	}

	var out []models.Appointment
	if err := q.Order("start_time ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus moves an appointment along its lifecycle. The owning
// provider scope may make any legal transition; the client may only cancel.
func (u *AppointmentUsecase) UpdateStatus(ctx context.Context, id uint, status string, actorID uint) (*models.Appointment, error) {
	next, err := models.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	actor, err := loadUser(ctx, u.db, actorID)
	if err != nil {
		return nil, err
	}

	var appt models.Appointment
	err = u.db.WithContext(ctx).Preload("Service", unscopedService).First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: appointment %d", utils.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	byProvider := actor.IsProvider() && appt.Service != nil && appt.Service.ProviderID == actor.ProviderScope()
	byClient := appt.ClientID == actor.ID
	switch {
	case !byProvider && !byClient:
		return nil, fmt.Errorf("%w: not your appointment", utils.ErrForbidden)
	case !byProvider && next != models.StatusCancelled:
		return nil, fmt.Errorf("%w: clients may only cancel", utils.ErrForbidden)
	}
	if err := appt.CheckTransition(next); err != nil {
		return nil, err
	}

	res := u.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status = ?", appt.ID, appt.Status).
		Update("status", next)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: appointment changed concurrently", utils.ErrConflict)
	}
	prev := appt.Status
	appt.Status = next
	metrics.AppointmentStatusChanges.WithLabelValues(string(next)).Inc()

	recipient := appt.ClientID
	if !byProvider {
		recipient = appt.Service.ProviderID
	}
	if recipient != actor.ID {
		u.notifier.Notify(notify.Event{
			RecipientID: recipient,
			Type:        models.NotifAppointmentUpdated,
			Title:       "Appointment " + statusWord(next),
			Message:     fmt.Sprintf("%s on %s is now %s", appt.Service.Name, u.display(appt.StartTime), statusWord(next)),
			RelatedID:   &appt.ID,
			Topic:       notify.EventAppointmentUpdated,
			Payload:     appt,
		})
	}
	u.publish(ctx, events.AppointmentUpdated, map[string]any{
		"appointment": appt,
		"previous":    prev,
		"actor_id":    actor.ID,
	})
	return &appt, nil
}

// ListSlots reports each availability label of the date's weekday and
// whether a live booking already starts there.
func (u *AppointmentUsecase) ListSlots(ctx context.Context, serviceID uint, date string) ([]models.Slot, error) {
	day, err := utils.ParseDate(date, u.loc)
	if err != nil {
		return nil, err
	}
	var svc models.Service
	err = u.db.WithContext(ctx).Where("is_active = ?", true).First(&svc, serviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: service %d", utils.ErrNotFound, serviceID)
	}
	if err != nil {
		return nil, err
	}

	labels := svc.Availability[models.WeekdayKey(day)]
	slots := make([]models.Slot, 0, len(labels))
	if len(labels) == 0 {
		return slots, nil
	}

	starts := make([]time.Time, 0, len(labels))
	for _, label := range labels {
		t, err := models.SlotTime(day, label)
		if err != nil {
			return nil, err
		}
		starts = append(starts, t.UTC())
	}

	var taken []time.Time
	err = u.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("service_id = ? AND status <> ? AND start_time IN ?", svc.ID, models.StatusCancelled, starts).
		Pluck("start_time", &taken).Error
	if err != nil {
		return nil, err
	}
	busy := make(map[int64]struct{}, len(taken))
	for _, t := range taken {
		busy[t.Unix()] = struct{}{}
	}

	for i, label := range labels {
		_, booked := busy[starts[i].Unix()]
		slots = append(slots, models.Slot{Time: label, Available: !booked})
	}
	return slots, nil
}

// SendReminders notifies clients of confirmed appointments starting 55 to
// 65 minutes after now. Each appointment is reminded at most once.
func (u *AppointmentUsecase) SendReminders(ctx context.Context, now time.Time) (int, error) {
	from := now.UTC().Add(reminderLead)
	to := from.Add(reminderWindow)

	var due []models.Appointment
	err := u.db.WithContext(ctx).
		Preload("Service", unscopedService).
		Preload("Client").
		Where("status = ? AND reminder_sent_at IS NULL AND start_time >= ? AND start_time <= ?", models.StatusConfirmed, from, to).
		Find(&due).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		appt := &due[i]
		stamp := now.UTC()
		res := u.db.WithContext(ctx).Model(&models.Appointment{}).
			Where("id = ? AND reminder_sent_at IS NULL", appt.ID).
			Update("reminder_sent_at", stamp)
		if res.Error != nil {
			u.log.Error("mark reminder failed", zap.Uint("appointment", appt.ID), zap.Error(res.Error))
			continue
		}
		if res.RowsAffected == 0 {
			continue
		}
		sent++

		serviceName := "your appointment"
		if appt.Service != nil {
			serviceName = appt.Service.Name
		}
		msg := fmt.Sprintf("Reminder: %s starts at %s", serviceName, u.display(appt.StartTime))
		u.notifier.Notify(notify.Event{
			RecipientID: appt.ClientID,
			Type:        models.NotifAppointmentReminder,
			Title:       "Upcoming appointment",
			Message:     msg,
			RelatedID:   &appt.ID,
		})
		if u.mailer != nil && u.mailer.Configured() && appt.Client != nil {
			if err := u.mailer.SendEmail(appt.Client.Email, "Appointment reminder", msg); err != nil {
				u.log.Warn("reminder email failed", zap.Uint("appointment", appt.ID), zap.Error(err))
			}
		}
	}
	return sent, nil
}

func (u *AppointmentUsecase) display(t time.Time) string {
	return t.In(u.loc).Format("Mon Jan 2 15:04")
}

func (u *AppointmentUsecase) publish(ctx context.Context, key string, payload any) {
	if u.events == nil {
		return
	}
	if err := u.events.PublishJSON(ctx, key, payload); err != nil {
		u.log.Warn("publish domain event failed", zap.String("key", key), zap.Error(err))
	}
}

func statusWord(s models.AppointmentStatus) string {
	switch s {
	case models.StatusConfirmed:
		return "confirmed"
	case models.StatusCancelled:
		return "cancelled"
	case models.StatusCompleted:
		return "completed"
	default:
		return "pending"
	}
}
