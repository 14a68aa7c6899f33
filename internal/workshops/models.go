package workshops

import "time"

// Workshop is a tenant: one auto-repair shop, identified by the platform
// phone number its calls arrive on.
type Workshop struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`

	Timezone      string `json:"timezone,omitempty"`
	BusinessHours string `json:"business_hours,omitempty"`

	Status WorkshopStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

type WorkshopStatus string

const (
	StatusActive   WorkshopStatus = "active"
	StatusInactive WorkshopStatus = "inactive"
)
