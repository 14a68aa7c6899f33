package voiceai

import (
	"encoding/json"
	"errors"
	"strings"
)

// Webhook payload types for the voice platform's lifecycle callbacks.
//
// Keep this provider-adapter-only: business logic (call state, booking
// derivation) is not made here. Raw payloads are decoded into these shapes
// and handed to internal/calls.

const (
	EventCallStarted = "call-started"
	EventCallEnded   = "call-ended"
)

// EventMetadata echoes back the metadata attached to the assistant config,
// which is how a webhook delivery is tied to our call row.
type EventMetadata struct {
	CallID     string `json:"call_id"`
	WorkshopID string `json:"workshop_id"`
}

// CallResult is the platform's view of a finished call.
type CallResult struct {
	DurationSeconds int     `json:"duration_seconds"`
	Cost            float64 `json:"cost"`
	EndedReason     string  `json:"ended_reason"`
	RecordingURL    string  `json:"recording_url"`
	Transcript      string  `json:"transcript"`
}

// StructuredData is the AI-side extraction from the call transcript.
// All fields are free text as extracted; normalization happens downstream.
type StructuredData struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`

	VehicleMake  string `json:"vehicle_make"`
	VehicleModel string `json:"vehicle_model"`
	VehicleYear  string `json:"vehicle_year"`

	IssueSummary  string `json:"issue_summary"`
	IssueCategory string `json:"issue_category"`
	Urgency       string `json:"urgency"`

	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`

	BookingConfirmed bool `json:"booking_confirmed"`
}

// Analysis wraps the extraction with the platform's sentiment label.
type Analysis struct {
	StructuredData StructuredData `json:"structured_data"`
	Sentiment      string         `json:"sentiment"`
}

// WebhookEvent is the envelope posted to /webhooks/voice/*.
type WebhookEvent struct {
	Event    string        `json:"event"`
	Metadata EventMetadata `json:"metadata"`

	// Present on call-ended only.
	Result   *CallResult `json:"result,omitempty"`
	Analysis *Analysis   `json:"analysis,omitempty"`
}

var ErrMissingCallID = errors.New("voiceai: event metadata missing call_id")

// ParseWebhookEvent decodes a webhook body. The call id in metadata is the
// only field every event must carry.
func ParseWebhookEvent(body []byte) (WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return WebhookEvent{}, err
	}
	ev.Metadata.CallID = strings.TrimSpace(ev.Metadata.CallID)
	if ev.Metadata.CallID == "" {
		return WebhookEvent{}, ErrMissingCallID
	}
	return ev, nil
}

// InboundCallEvent is the platform's notification of a new inbound call.
type InboundCallEvent struct {
	From           string `json:"from"`
	To             string `json:"to"`
	ExternalCallID string `json:"external_call_id"`
}

func (e InboundCallEvent) Validate() error {
	if strings.TrimSpace(e.From) == "" {
		return errors.New("voiceai: from is required")
	}
	if strings.TrimSpace(e.To) == "" {
		return errors.New("voiceai: to is required")
	}
	if strings.TrimSpace(e.ExternalCallID) == "" {
		return errors.New("voiceai: external_call_id is required")
	}
	return nil
}
