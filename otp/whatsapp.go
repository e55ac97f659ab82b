package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/utils"
)

// WhatsAppSession talks to a session-backed WhatsApp gateway. The gateway
// has to finish pairing with the configured number before it can send;
// until then Send fails fast with ErrNotReady.
type WhatsAppSession struct {
	baseURL       string
	token         string
	pairingNumber string
	interval      time.Duration
	ttl           time.Duration
	client        *http.Client
	log           *zap.Logger

	ready atomic.Bool
}

func NewWhatsAppSession(baseURL, token, pairingNumber string, interval, ttl time.Duration, log *zap.Logger) *WhatsAppSession {
	return &WhatsAppSession{
		baseURL:       strings.TrimRight(baseURL, "/"),
		token:         token,
		pairingNumber: pairingNumber,
		interval:      interval,
		ttl:           ttl,
		client:        &http.Client{Timeout: 10 * time.Second},
		log:           log.Named("whatsapp"),
	}
}

func (w *WhatsAppSession) Configured() bool { return w.baseURL != "" }

func (w *WhatsAppSession) Ready() bool { return w.ready.Load() }

type sessionStatus struct {
	Status      string `json:"status"`
	PairingCode string `json:"pairing_code,omitempty"`
}

// Run requests pairing and then health-checks the session until ctx ends.
func (w *WhatsAppSession) Run(ctx context.Context) {
	if !w.Configured() {
		w.log.Info("whatsapp gateway not configured, channel disabled")
		return
	}
	if err := w.requestPairing(ctx); err != nil {
		w.log.Warn("pairing request failed", zap.Error(err))
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		w.refresh(ctx)
		select {
		case <-ctx.Done():
			w.ready.Store(false)
			return
		case <-ticker.C:
		}
	}
}

func (w *WhatsAppSession) refresh(ctx context.Context) {
	var st sessionStatus
	if err := w.do(ctx, http.MethodGet, "/session/status", nil, &st); err != nil {
		if w.ready.Swap(false) {
			w.log.Warn("session lost", zap.Error(err))
		}
		return
	}
	isReady := st.Status == "ready"
	if was := w.ready.Swap(isReady); was != isReady {
		w.log.Info("session state changed", zap.String("status", st.Status))
	}
	if !isReady && st.PairingCode != "" {
		w.log.Info("waiting for pairing", zap.String("pairing_code", st.PairingCode))
	}
}

func (w *WhatsAppSession) requestPairing(ctx context.Context) error {
	var st sessionStatus
	if err := w.do(ctx, http.MethodPost, "/session/pair", map[string]string{"phone": w.pairingNumber}, &st); err != nil {
		return err
	}
	if st.PairingCode != "" {
		w.log.Info("pairing code issued", zap.String("pairing_code", st.PairingCode))
	}
	return nil
}

func (w *WhatsAppSession) Send(ctx context.Context, to, code string) error {
	if !w.Ready() {
		return fmt.Errorf("%w: whatsapp session is not established", utils.ErrNotReady)
	}
	body := map[string]string{"to": strings.TrimPrefix(to, "+"), "text": messageFor(code, w.ttl)}
	return w.do(ctx, http.MethodPost, "/messages", body, nil)
}

func (w *WhatsAppSession) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, w.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("whatsapp gateway %s %s: status=%d body=%s", method, path, resp.StatusCode, b)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
