package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Dispatcher posts booking confirmations to the external notification
// service. Delivery is fire-and-forget: callers log failures and move on,
// and nothing here may affect booking persistence. There is no retry queue.
type Dispatcher struct {
	baseURL string
	client  *http.Client
}

const defaultTimeout = 5 * time.Second

// NewDispatcher builds a dispatcher for the given service URL. An empty URL
// disables dispatch (BookingCreated becomes a no-op).
func NewDispatcher(baseURL string) *Dispatcher {
	return &Dispatcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// BookingCreatedEvent is the outbound payload.
type BookingCreatedEvent struct {
	BookingID     string    `json:"booking_id"`
	WorkshopID    string    `json:"workshop_id"`
	CustomerID    string    `json:"customer_id"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}

func (d *Dispatcher) BookingCreated(ctx context.Context, ev BookingCreatedEvent) error {
	if d == nil || d.baseURL == "" {
		return nil
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notify: encode booking event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post booking event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: booking endpoint returned %d", resp.StatusCode)
	}
	return nil
}
