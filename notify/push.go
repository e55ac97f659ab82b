package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/meinhoongagan/booking-platform/models"
)

// ErrSubscriptionGone means the push service no longer knows the endpoint.
var ErrSubscriptionGone = errors.New("push subscription expired")

type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Pusher delivers browser push messages.
type Pusher interface {
	Configured() bool
	Push(ctx context.Context, sub models.PushSubscription, payload PushPayload) error
}

// WebPusher signs push requests with the VAPID key pair.
type WebPusher struct {
	publicKey  string
	privateKey string
	subject    string
	client     *http.Client
}

func NewWebPusher(publicKey, privateKey, subject string) *WebPusher {
	return &WebPusher{publicKey: publicKey, privateKey: privateKey, subject: subject, client: http.DefaultClient}
}

func (w *WebPusher) Configured() bool {
	return w.publicKey != "" && w.privateKey != ""
}

func (w *WebPusher) Push(ctx context.Context, sub models.PushSubscription, payload PushPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth},
	}, &webpush.Options{
		HTTPClient:      w.client,
		Subscriber:      w.subject,
		VAPIDPublicKey:  w.publicKey,
		VAPIDPrivateKey: w.privateKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push service status=%d body=%s", resp.StatusCode, b)
	}
	return nil
}
