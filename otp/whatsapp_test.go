package otp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/utils"
)

func TestWhatsAppSessionLifecycle(t *testing.T) {
	var paired atomic.Bool
	var delivered atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/session/pair":
			_ = json.NewEncoder(w).Encode(sessionStatus{Status: "pairing", PairingCode: "ABCD-1234"})
		case "/session/status":
			status := "pairing"
			if paired.Load() {
				status = "ready"
			}
			_ = json.NewEncoder(w).Encode(sessionStatus{Status: status})
		case "/messages":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			delivered.Store(body["to"])
			w.WriteHeader(http.StatusAccepted)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := NewWhatsAppSession(srv.URL, "tok", "15550000", 10*time.Millisecond, 10*time.Minute, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	err := s.Send(context.Background(), "+15550100", "123456")
	assert.True(t, errors.Is(err, utils.ErrNotReady))

	paired.Store(true)
	require.Eventually(t, s.Ready, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Send(context.Background(), "+15550100", "123456"))
	assert.Equal(t, "15550100", delivered.Load())

	cancel()
	<-done
	assert.False(t, s.Ready())
}

func TestWhatsAppSessionUnconfigured(t *testing.T) {
	s := NewWhatsAppSession("", "", "", time.Second, time.Minute, zap.NewNop())
	s.Run(context.Background())
	assert.False(t, s.Ready())
}
