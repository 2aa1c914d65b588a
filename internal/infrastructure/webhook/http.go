package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
)

// Headers set on every delivery.
const (
	SecretHeader    = "X-Webhook-Secret"
	EventTypeHeader = "X-Event-Type"
	EventIDHeader   = "X-Event-ID"
)

// HTTPEmitter POSTs each event as JSON to one endpoint.
type HTTPEmitter struct {
	client  *http.Client
	url     string
	headers http.Header
}

// HTTPEmitterOption configures HTTPEmitter.
type HTTPEmitterOption func(*HTTPEmitter)

// WithClient replaces the default client (10s timeout).
func WithClient(c *http.Client) HTTPEmitterOption {
	return func(e *HTTPEmitter) { e.client = c }
}

// WithHeader adds a header to every delivery.
func WithHeader(key, value string) HTTPEmitterOption {
	return func(e *HTTPEmitter) { e.headers.Set(key, value) }
}

// WithSecret sends secret in SecretHeader. Empty is ignored.
func WithSecret(secret string) HTTPEmitterOption {
	if secret == "" {
		return func(*HTTPEmitter) {}
	}
	return WithHeader(SecretHeader, secret)
}

func NewHTTPEmitter(url string, opts ...HTTPEmitterOption) *HTTPEmitter {
	e := &HTTPEmitter{
		client:  &http.Client{Timeout: 10 * time.Second},
		url:     url,
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit delivers event once. Any non-2xx answer is a *DeliveryError so queued deliveries retry.
func (e *HTTPEmitter) Emit(ctx context.Context, event ports.DomainEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	for k, v := range e.headers {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventTypeHeader, event.Type)
	if event.ID != "" {
		req.Header.Set(EventIDHeader, event.ID)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver event %s: %w", event.ID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode/100 != 2 {
		return &DeliveryError{EventID: event.ID, Status: resp.StatusCode}
	}
	return nil
}

// DeliveryError reports an endpoint that answered with a non-2xx status.
type DeliveryError struct {
	EventID string
	Status  int
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook rejected event %s: status %d", e.EventID, e.Status)
}

var _ ports.EventEmitter = (*HTTPEmitter)(nil)
