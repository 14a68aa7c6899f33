package bookings

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"workshop-intake/internal/voiceai"

	"github.com/google/uuid"
)

// Engine turns AI-extracted structured data into customer/vehicle/booking rows.
//
// Invariants:
// - Runs entirely on the caller's transaction: any step failing aborts the
//   whole call-ended unit, never leaving a partial booking.
// - At most one customer per (workshop, phone): resolved before insert.
// - A booking always links the originating call and a resolved customer.
type Engine struct {
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewEngine() *Engine {
	return &Engine{clock: time.Now}
}

var ErrInvalidArgument = errors.New("invalid argument")

// CreateParams carries the ids of the enclosing call-ended unit plus the
// extraction to derive the booking from. The caller gates on
// Data.BookingConfirmed and a non-empty customer name before invoking.
type CreateParams struct {
	WorkshopID string
	CallID     string
	AnalysisID string

	Data voiceai.StructuredData
}

// CreateFromAnalysis derives the customer, vehicle and booking rows and
// returns the booking together with the resolved customer, which for a
// repeat caller carries the stored contact details rather than this call's
// extraction.
func (e *Engine) CreateFromAnalysis(ctx context.Context, tx *sql.Tx, p CreateParams) (Booking, Customer, error) {
	if p.WorkshopID == "" || p.CallID == "" || p.AnalysisID == "" {
		return Booking{}, Customer{}, ErrInvalidArgument
	}
	name := strings.TrimSpace(p.Data.CustomerName)
	if name == "" {
		return Booking{}, Customer{}, ErrInvalidArgument
	}

	now := e.clock().UTC()

	// Phone is the dedup key as given; a missing or malformed phone still
	// yields a customer with that value.
	customer, found, err := findCustomerByPhone(ctx, tx, p.WorkshopID, p.Data.CustomerPhone)
	if err != nil {
		return Booking{}, Customer{}, err
	}
	if !found {
		customer = Customer{
			ID:         uuid.NewString(),
			WorkshopID: p.WorkshopID,
			Name:       name,
			Phone:      p.Data.CustomerPhone,
			Email:      p.Data.CustomerEmail,
			CreatedAt:  now,
		}
		if err := insertCustomer(ctx, tx, customer); err != nil {
			return Booking{}, Customer{}, err
		}
	}

	var vehicleID string
	if p.Data.VehicleMake != "" && p.Data.VehicleModel != "" {
		vehicle := Vehicle{
			ID:         uuid.NewString(),
			CustomerID: customer.ID,
			Make:       p.Data.VehicleMake,
			Model:      p.Data.VehicleModel,
			Year:       p.Data.VehicleYear,
			CreatedAt:  now,
		}
		if err := insertVehicle(ctx, tx, vehicle); err != nil {
			return Booking{}, Customer{}, err
		}
		vehicleID = vehicle.ID
	}

	booking := Booking{
		ID:            uuid.NewString(),
		WorkshopID:    p.WorkshopID,
		CustomerID:    customer.ID,
		VehicleID:     vehicleID,
		CallID:        p.CallID,
		ScheduledAt:   ResolveSchedule(p.Data.PreferredDate, p.Data.PreferredTime, now),
		IssueSummary:  p.Data.IssueSummary,
		IssueCategory: p.Data.IssueCategory,
		Urgency:       p.Data.Urgency,
		Status:        StatusConfirmed,
		CreatedAt:     now,
	}
	if err := insertBooking(ctx, tx, booking); err != nil {
		return Booking{}, Customer{}, err
	}

	if err := markAnalysisBookingCreated(ctx, tx, p.AnalysisID); err != nil {
		return Booking{}, Customer{}, err
	}

	return booking, customer, nil
}
