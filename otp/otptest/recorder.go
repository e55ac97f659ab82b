// Package otptest provides in-memory senders for tests.
package otptest

import (
	"context"
	"errors"
	"sync"
)

// Recorder captures the last code sent to each destination.
type Recorder struct {
	mu       sync.Mutex
	name     string
	sent     map[string]string
	calls    int
	Fail     bool
	Missing  bool
	NotReady bool
}

func NewRecorder(name string) *Recorder {
	return &Recorder{name: name, sent: make(map[string]string)}
}

func (r *Recorder) Name() string { return r.name }

func (r *Recorder) Configured() bool { return !r.Missing }

func (r *Recorder) Ready() bool { return !r.NotReady }

func (r *Recorder) Send(_ context.Context, to, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.Fail {
		return errors.New(r.name + ": provider unavailable")
	}
	r.sent[to] = code
	return nil
}

// Last returns the most recent code delivered to destination.
func (r *Recorder) Last(to string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[to]
}

func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
