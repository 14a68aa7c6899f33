package bookings

import (
	"context"
	"database/sql"
	"errors"
)

// NOTE: This repository assumes the following tables exist:
// - customers  (UNIQUE lookups are by (workshop_id, phone); dedup is done by
//   select-before-insert inside the booking transaction)
// - vehicles
// - bookings
// - call_analysis (owned by internal/calls; only booking_created is touched here)
//
// All statements run on the caller's transaction: booking derivation is one
// atomic unit with the call-ended state change.

func findCustomerByPhone(ctx context.Context, tx *sql.Tx, workshopID, phone string) (Customer, bool, error) {
	const q = `
SELECT id, workshop_id, name, COALESCE(phone, ''), COALESCE(email, ''), created_at
FROM customers
WHERE workshop_id = $1 AND phone = $2
LIMIT 1
`
	var c Customer
	err := tx.QueryRowContext(ctx, q, workshopID, phone).Scan(
		&c.ID,
		&c.WorkshopID,
		&c.Name,
		&c.Phone,
		&c.Email,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Customer{}, false, nil
		}
		return Customer{}, false, err
	}
	return c, true, nil
}

func insertCustomer(ctx context.Context, tx *sql.Tx, c Customer) error {
	const q = `
INSERT INTO customers (id, workshop_id, name, phone, email, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
	_, err := tx.ExecContext(ctx, q,
		c.ID,
		c.WorkshopID,
		c.Name,
		c.Phone,
		nullIfEmpty(c.Email),
		c.CreatedAt,
	)
	return err
}

func insertVehicle(ctx context.Context, tx *sql.Tx, v Vehicle) error {
	const q = `
INSERT INTO vehicles (id, customer_id, make, model, year, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
	_, err := tx.ExecContext(ctx, q,
		v.ID,
		v.CustomerID,
		v.Make,
		v.Model,
		nullIfEmpty(v.Year),
		v.CreatedAt,
	)
	return err
}

func insertBooking(ctx context.Context, tx *sql.Tx, b Booking) error {
	const q = `
INSERT INTO bookings (
  id, workshop_id, customer_id, vehicle_id, call_id, scheduled_at,
  issue_summary, issue_category, urgency, status, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
`
	_, err := tx.ExecContext(ctx, q,
		b.ID,
		b.WorkshopID,
		b.CustomerID,
		nullIfEmpty(b.VehicleID),
		b.CallID,
		b.ScheduledAt,
		nullIfEmpty(b.IssueSummary),
		nullIfEmpty(b.IssueCategory),
		nullIfEmpty(b.Urgency),
		b.Status,
		b.CreatedAt,
	)
	return err
}

func markAnalysisBookingCreated(ctx context.Context, tx *sql.Tx, analysisID string) error {
	const q = `
UPDATE call_analysis SET booking_created = TRUE WHERE id = $1
`
	res, err := tx.ExecContext(ctx, q, analysisID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("call_analysis row not found for booking flag update")
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
