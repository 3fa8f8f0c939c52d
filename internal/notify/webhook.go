package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Delivery statuses
const (
	DeliveryStatusSuccess = "success"
	DeliveryStatusFailed  = "failed"
)

// WebhookDelivery records one delivery attempt
type WebhookDelivery struct {
	URL        string        `json:"url"`
	Status     string        `json:"status"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}

// WebhookSenderConfig configures the webhook sender
type WebhookSenderConfig struct {
	RequestTimeout time.Duration `json:"request_timeout"`
}

// ApplyDefaults fills in default values
func (c *WebhookSenderConfig) ApplyDefaults() {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
}

// WebhookSender posts alert payloads to operator-specified URLs.
// Any non-2xx response is treated as failure; failures are returned to the
// caller for warn-logging, never propagated further.
type WebhookSender struct {
	config     *WebhookSenderConfig
	httpClient *http.Client
	deliveries []*WebhookDelivery
	mu         sync.Mutex
}

// NewWebhookSender creates a webhook sender
func NewWebhookSender(config *WebhookSenderConfig) *WebhookSender {
	if config == nil {
		config = &WebhookSenderConfig{}
	}
	config.ApplyDefaults()

	return &WebhookSender{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
	}
}

// Send posts a JSON payload to the target URL
func (s *WebhookSender) Send(ctx context.Context, url string, payload interface{}) error {
	delivery := &WebhookDelivery{URL: url, CreatedAt: time.Now().UTC()}
	start := time.Now()

	err := s.send(ctx, url, payload, delivery)
	delivery.Duration = time.Since(start)
	if err != nil {
		delivery.Status = DeliveryStatusFailed
		delivery.Error = err.Error()
	} else {
		delivery.Status = DeliveryStatusSuccess
	}
	s.record(delivery)

	return err
}

func (s *WebhookSender) send(ctx context.Context, url string, payload interface{}, delivery *WebhookDelivery) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Sentinel-Alerts/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	delivery.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *WebhookSender) record(delivery *WebhookDelivery) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deliveries = append(s.deliveries, delivery)

	// Keep only last 100 deliveries
	if len(s.deliveries) > 100 {
		s.deliveries = s.deliveries[len(s.deliveries)-100:]
	}
}

// DeliveryHistory returns recent deliveries, most recent first
func (s *WebhookSender) DeliveryHistory(limit int) []*WebhookDelivery {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit > len(s.deliveries) || limit <= 0 {
		limit = len(s.deliveries)
	}

	result := make([]*WebhookDelivery, limit)
	for i := 0; i < limit; i++ {
		result[i] = s.deliveries[len(s.deliveries)-1-i]
	}
	return result
}
