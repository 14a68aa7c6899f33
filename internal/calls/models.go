package calls

import "time"

// Call is a tenant-scoped inbound phone call handled by the voice assistant.
//
// Created on the platform's inbound event; mutated by lifecycle webhooks.
// Once completed, nothing in this service mutates it again (a redelivered
// call-ended webhook re-applies the same terminal values; see the analysis
// note below).
type Call struct {
	ID         string `json:"id"`
	WorkshopID string `json:"workshop_id"`

	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`

	// ExternalCallID is the platform's identifier for this call.
	ExternalCallID string `json:"external_call_id"`

	Status CallStatus `json:"status"`

	StartedAt  time.Time  `json:"started_at"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`

	DurationSeconds int   `json:"duration_seconds"`
	CostCents       int64 `json:"cost_cents"`

	RecordingURL string `json:"recording_url,omitempty"`
	Transcript   string `json:"transcript,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CallStatus string

const (
	StatusInitiated  CallStatus = "initiated"
	StatusInProgress CallStatus = "in_progress"
	StatusCompleted  CallStatus = "completed"
)

// Analysis is the AI extraction persisted 1:1 with a completed call.
//
// A row exists iff call-ended processing ran at least once. Webhook
// redelivery inserts another row for the same call; there is deliberately no
// unique constraint on call_id (the platform does not send an idempotency
// key, and erroring on redelivery would trigger its retry loop).
type Analysis struct {
	ID     string `json:"id"`
	CallID string `json:"call_id"`

	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`

	VehicleMake  string `json:"vehicle_make,omitempty"`
	VehicleModel string `json:"vehicle_model,omitempty"`
	VehicleYear  string `json:"vehicle_year,omitempty"`

	IssueSummary  string `json:"issue_summary,omitempty"`
	IssueCategory string `json:"issue_category,omitempty"`
	Urgency       string `json:"urgency,omitempty"`

	PreferredDate string `json:"preferred_date,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`

	BookingConfirmed bool   `json:"booking_confirmed"`
	Sentiment        string `json:"sentiment"`
	BookingCreated   bool   `json:"booking_created"`

	CreatedAt time.Time `json:"created_at"`
}

// CallDetail joins a call with its workshop name and analysis for the read API.
type CallDetail struct {
	Call
	WorkshopName string    `json:"workshop_name"`
	Analysis     *Analysis `json:"analysis,omitempty"`
}

// CallSummary is the list-view row: the call plus key analysis fields.
type CallSummary struct {
	ID             string     `json:"id"`
	FromNumber     string     `json:"from_number"`
	Status         CallStatus `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	DurationSeconds int       `json:"duration_seconds"`

	CustomerName   string `json:"customer_name,omitempty"`
	IssueCategory  string `json:"issue_category,omitempty"`
	BookingCreated bool   `json:"booking_created"`
}

// CallPage is one page of a workshop's calls.
type CallPage struct {
	Calls []CallSummary `json:"calls"`
	Total int           `json:"total"`

	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListFilter narrows ListWorkshopCalls. Zero values mean no filter and
// default paging.
type ListFilter struct {
	Status CallStatus
	Limit  int
	Offset int
}
