package bookings

import "time"

// Customer is deduplicated per workshop by phone number: lookups before
// insert guarantee at most one row per (workshop_id, phone) pair.
type Customer struct {
	ID         string `json:"id"`
	WorkshopID string `json:"workshop_id"`

	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Vehicle rows are created per booking when make and model are both present.
// There is no dedup across calls: a repeat customer gets a fresh row.
type Vehicle struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`

	Make  string `json:"make"`
	Model string `json:"model"`
	Year  string `json:"year,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Booking struct {
	ID         string `json:"id"`
	WorkshopID string `json:"workshop_id"`
	CustomerID string `json:"customer_id"`
	VehicleID  string `json:"vehicle_id,omitempty"`
	CallID     string `json:"call_id"`

	ScheduledAt time.Time `json:"scheduled_at"`

	IssueSummary  string `json:"issue_summary,omitempty"`
	IssueCategory string `json:"issue_category,omitempty"`
	Urgency       string `json:"urgency,omitempty"`

	Status BookingStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
)
