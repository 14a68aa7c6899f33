package reporting

import "time"

// WorkshopStats summarizes a workshop's call volume and outcomes over an
// optional time window.
type WorkshopStats struct {
	WorkshopID string `json:"workshop_id"`

	TotalCalls      int `json:"total_calls"`
	InitiatedCalls  int `json:"initiated_calls"`
	InProgressCalls int `json:"in_progress_calls"`
	CompletedCalls  int `json:"completed_calls"`

	BookingsCreated int `json:"bookings_created"`

	TotalDurationSeconds int64 `json:"total_duration_seconds"`
	TotalCostCents       int64 `json:"total_cost_cents"`

	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}
