package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioSender is the primary SMS provider.
type TwilioSender struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	ttl        time.Duration
	client     *http.Client
}

func NewTwilioSender(baseURL, accountSID, authToken, from string, ttl time.Duration) *TwilioSender {
	return &TwilioSender{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		ttl:        ttl,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TwilioSender) Name() string { return "twilio" }

func (t *TwilioSender) Configured() bool {
	return t.accountSID != "" && t.authToken != "" && t.from != ""
}

func (t *TwilioSender) Send(ctx context.Context, to, code string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.from)
	form.Set("Body", messageFor(code, t.ttl))

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("twilio api error: status=%d body=%s", resp.StatusCode, body)
	}
	return nil
}

// Fast2SMSSender is the fallback SMS provider.
type Fast2SMSSender struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewFast2SMSSender(baseURL, apiKey string) *Fast2SMSSender {
	return &Fast2SMSSender{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *Fast2SMSSender) Name() string { return "fast2sms" }

func (f *Fast2SMSSender) Configured() bool { return f.apiKey != "" }

func (f *Fast2SMSSender) Send(ctx context.Context, to, code string) error {
	payload, err := json.Marshal(map[string]string{
		"route":            "otp",
		"variables_values": code,
		"numbers":          strings.TrimPrefix(to, "+"),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/dev/bulkV2", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build fast2sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authorization", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fast2sms http error: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Return  bool `json:"return"`
		Message any  `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&out); err != nil {
		return fmt.Errorf("fast2sms decode: status=%d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !out.Return {
		return fmt.Errorf("fast2sms api error: status=%d message=%v", resp.StatusCode, out.Message)
	}
	return nil
}
