package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meinhoongagan/booking-platform/metrics"
	"github.com/meinhoongagan/booking-platform/models"
)

// Realtime event names emitted to user rooms.
const (
	EventNotification       = "notification"
	EventAppointmentCreated = "appointment_created"
	EventAppointmentUpdated = "appointment_updated"
)

// Emitter pushes an event to every live connection of a user. It reports
// whether anyone was connected.
type Emitter interface {
	Emit(userID uint, event string, payload any) bool
}

// Event is one logical notification for one recipient. Topic and Payload,
// when set, are emitted to the recipient's room ahead of the notification.
type Event struct {
	RecipientID uint
	Type        models.NotificationType
	Title       string
	Message     string
	RelatedID   *uint
	Topic       string
	Payload     any
}

// Dispatcher fans an Event out to the notification table, the realtime
// room and browser push. Delivery runs on its own workers; nothing it does
// reaches the caller.
type Dispatcher struct {
	db        *gorm.DB
	hub       Emitter
	push      Pusher
	clientURL string
	log       *zap.Logger

	queue  chan Event
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(db *gorm.DB, hub Emitter, push Pusher, clientURL string, queueSize int, log *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		db:        db,
		hub:       hub,
		push:      push,
		clientURL: strings.TrimRight(clientURL, "/"),
		log:       log.Named("notify"),
		queue:     make(chan Event, queueSize),
	}
}

// Start launches the workers. Stop drains what is already queued.
func (d *Dispatcher) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for ev := range d.queue {
				d.Deliver(context.Background(), ev)
			}
		}()
	}
}

func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Notify queues ev and returns at once. A full queue hands the event to a
// detached goroutine rather than blocking the request.
func (d *Dispatcher) Notify(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("dispatcher stopped, dropping notification", zap.Uint("recipient", ev.RecipientID))
		return
	}
	select {
	case d.queue <- ev:
	default:
		metrics.NotificationStages.WithLabelValues("queue", "overflow").Inc()
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.Deliver(context.Background(), ev)
		}()
	}
}

// Deliver runs the three sinks in order and returns the stored record. If
// persisting fails only the domain topic is emitted and nil is returned.
// It never panics or returns an error.
func (d *Dispatcher) Deliver(ctx context.Context, ev Event) *models.Notification {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("notification delivery panicked", zap.Any("panic", r), zap.Uint("recipient", ev.RecipientID))
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	n := &models.Notification{
		RecipientID: ev.RecipientID,
		Type:        ev.Type,
		Title:       ev.Title,
		Message:     ev.Message,
		RelatedID:   ev.RelatedID,
	}
	if err := d.db.WithContext(ctx).Create(n).Error; err != nil {
		metrics.NotificationStages.WithLabelValues("persist", "error").Inc()
		d.log.Error("persist notification failed", zap.Uint("recipient", ev.RecipientID), zap.Error(err))
		d.emitTopic(ev)
		return nil
	}
	metrics.NotificationStages.WithLabelValues("persist", "ok").Inc()

	d.emitTopic(ev)
	d.emit(ev, n)
	d.sendPush(ctx, ev)
	return n
}

func (d *Dispatcher) emitTopic(ev Event) {
	if d.hub != nil && ev.Topic != "" {
		d.hub.Emit(ev.RecipientID, ev.Topic, ev.Payload)
	}
}

func (d *Dispatcher) emit(ev Event, n *models.Notification) {
	if d.hub == nil {
		return
	}
	if d.hub.Emit(ev.RecipientID, EventNotification, n) {
		metrics.NotificationStages.WithLabelValues("realtime", "ok").Inc()
	} else {
		metrics.NotificationStages.WithLabelValues("realtime", "offline").Inc()
	}
}

func (d *Dispatcher) sendPush(ctx context.Context, ev Event) {
	if d.push == nil || !d.push.Configured() {
		return
	}
	var user models.User
	if err := d.db.WithContext(ctx).Select("id", "push_subscription").First(&user, ev.RecipientID).Error; err != nil {
		d.log.Warn("load push subscription failed", zap.Uint("recipient", ev.RecipientID), zap.Error(err))
		return
	}
	if user.PushSubscription == nil {
		return
	}

	err := d.push.Push(ctx, *user.PushSubscription, PushPayload{
		Title: ev.Title,
		Body:  ev.Message,
		URL:   d.deepLink(ev),
	})
	switch {
	case err == nil:
		metrics.NotificationStages.WithLabelValues("push", "ok").Inc()
	case errors.Is(err, ErrSubscriptionGone):
		metrics.NotificationStages.WithLabelValues("push", "gone").Inc()
		if err := d.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", ev.RecipientID).Update("push_subscription", nil).Error; err != nil {
			d.log.Warn("clear expired push subscription failed", zap.Uint("recipient", ev.RecipientID), zap.Error(err))
			return
		}
		d.log.Info("push subscription expired, cleared", zap.Uint("recipient", ev.RecipientID))
	default:
		metrics.NotificationStages.WithLabelValues("push", "error").Inc()
		d.log.Warn("push delivery failed", zap.Uint("recipient", ev.RecipientID), zap.Error(err))
	}
}

func (d *Dispatcher) deepLink(ev Event) string {
	if ev.RelatedID != nil {
		return fmt.Sprintf("%s/appointments/%d", d.clientURL, *ev.RelatedID)
	}
	return d.clientURL + "/notifications"
}
