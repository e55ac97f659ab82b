package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderSender is satisfied by the appointment usecase.
type ReminderSender interface {
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

// Scheduler runs the periodic jobs.
type Scheduler struct {
	c         *cron.Cron
	reminders ReminderSender
	log       *zap.Logger
}

func New(reminders ReminderSender, log *zap.Logger) *Scheduler {
	log = log.Named("cron")
	cl := zapLogger{log.Sugar()}
	return &Scheduler{
		c: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		reminders: reminders,
		log:       log,
	}
}

// zapLogger adapts zap to cron.Logger.
type zapLogger struct{ s *zap.SugaredLogger }

func (l zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l zapLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Start schedules the reminder job every minute.
func (s *Scheduler) Start() error {
	if _, err := s.c.AddFunc("* * * * *", s.sendAppointmentReminders); err != nil {
		return err
	}
	s.c.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.c.Entries())))
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) sendAppointmentReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
	defer cancel()

	n, err := s.reminders.SendReminders(ctx, time.Now())
	if err != nil {
		s.log.Error("send reminders failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("reminders sent", zap.Int("count", n))
	}
}
