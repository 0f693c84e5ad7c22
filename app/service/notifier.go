package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vibast-solutions/ms-go-paynl/config"
)

const (
	EventWebhookAction   = "pay_payment.webhook_action"
	EventPaymentCanceled = "pay_payment.canceled"
	EventPaymentFailed   = "pay_payment.failed"
)

// ErrHostEventsDisabled is returned by Notify when no events URL is configured.
var ErrHostEventsDisabled = errors.New("host events url is not configured")

// HostEvent is posted to the host event endpoint as {"name": ..., "data": ...}.
type HostEvent struct {
	Name string      `json:"name"`
	Data interface{} `json:"data"`
}

type HostNotifier struct {
	eventsURL string
	apiKey    string
	client    *http.Client
}

func NewHostNotifier(cfg config.HostConfig, apiKey string) *HostNotifier {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HostNotifier{
		eventsURL: strings.TrimSpace(cfg.EventsURL),
		apiKey:    strings.TrimSpace(apiKey),
		client:    &http.Client{Timeout: timeout},
	}
}

func (n *HostNotifier) Enabled() bool {
	return n != nil && n.eventsURL != ""
}

// Notify delivers one event.
func (n *HostNotifier) Notify(ctx context.Context, event HostEvent) error {
	if !n.Enabled() {
		return ErrHostEventsDisabled
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.eventsURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if n.apiKey != "" {
		req.Header.Set("X-API-Key", n.apiKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("host events endpoint returned status=%d for %s", resp.StatusCode, event.Name)
	}
	return nil
}
