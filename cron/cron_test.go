package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeReminders struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (f *fakeReminders) SendReminders(_ context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return 1, f.err
}

func TestJobCallsReminders(t *testing.T) {
	f := &fakeReminders{}
	s := New(f, zap.NewNop())
	s.sendAppointmentReminders()

	f.err = errors.New("db down")
	assert.NotPanics(t, s.sendAppointmentReminders)
	assert.Len(t, f.calls, 2)
}

func TestStartRegistersJob(t *testing.T) {
	s := New(&fakeReminders{}, zap.NewNop())
	require.NoError(t, s.Start())
	assert.Len(t, s.c.Entries(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestJobPanicIsLoggedThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(&fakeReminders{}, zap.New(core))

	wrapped := cron.NewChain(cron.Recover(zapLogger{s.log.Sugar()})).Then(cron.FuncJob(func() { panic("boom") }))
	assert.NotPanics(t, wrapped.Run)

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "panic", entries[0].Message)
	assert.Equal(t, "cron", entries[0].LoggerName)
}
