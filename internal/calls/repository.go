package calls

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// NOTE: This repository assumes the following tables exist:
// - calls
// - call_analysis (no unique constraint on call_id; see Analysis doc)
//
// Mutations inside call-ended processing take a *sql.Tx; everything else
// runs on the pool.

func insertCall(ctx context.Context, db *sql.DB, c Call) error {
	const q = `
INSERT INTO calls (
  id, workshop_id, from_number, to_number, external_call_id, status,
  started_at, duration_seconds, cost_cents, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
`
	_, err := db.ExecContext(ctx, q,
		c.ID,
		c.WorkshopID,
		c.FromNumber,
		c.ToNumber,
		c.ExternalCallID,
		c.Status,
		c.StartedAt,
		c.DurationSeconds,
		c.CostCents,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func markCallInProgress(ctx context.Context, db *sql.DB, callID string, answeredAt time.Time) error {
	// No status guard: if the platform delivers call-started after
	// call-ended the row is overwritten backward. Accepted risk.
	const q = `
UPDATE calls
SET status = $2, answered_at = $3, updated_at = $3
WHERE id = $1
`
	res, err := db.ExecContext(ctx, q, callID, StatusInProgress, answeredAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// completeCall applies the terminal state and returns the owning workshop id.
func completeCall(ctx context.Context, tx *sql.Tx, callID string, endedAt time.Time, durationSeconds int, costCents int64, recordingURL, transcript string) (string, error) {
	const q = `
UPDATE calls
SET status = $2, ended_at = $3, duration_seconds = $4, cost_cents = $5,
    recording_url = $6, transcript = $7, updated_at = $3
WHERE id = $1
RETURNING workshop_id
`
	var workshopID string
	err := tx.QueryRowContext(ctx, q,
		callID,
		StatusCompleted,
		endedAt,
		durationSeconds,
		costCents,
		nullIfEmpty(recordingURL),
		nullIfEmpty(transcript),
	).Scan(&workshopID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return workshopID, nil
}

func insertAnalysis(ctx context.Context, tx *sql.Tx, a Analysis) error {
	const q = `
INSERT INTO call_analysis (
  id, call_id, customer_name, customer_phone, customer_email,
  vehicle_make, vehicle_model, vehicle_year,
  issue_summary, issue_category, urgency,
  preferred_date, preferred_time,
  booking_confirmed, sentiment, booking_created, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
)
`
	_, err := tx.ExecContext(ctx, q,
		a.ID,
		a.CallID,
		nullIfEmpty(a.CustomerName),
		nullIfEmpty(a.CustomerPhone),
		nullIfEmpty(a.CustomerEmail),
		nullIfEmpty(a.VehicleMake),
		nullIfEmpty(a.VehicleModel),
		nullIfEmpty(a.VehicleYear),
		nullIfEmpty(a.IssueSummary),
		nullIfEmpty(a.IssueCategory),
		nullIfEmpty(a.Urgency),
		nullIfEmpty(a.PreferredDate),
		nullIfEmpty(a.PreferredTime),
		a.BookingConfirmed,
		a.Sentiment,
		a.BookingCreated,
		a.CreatedAt,
	)
	return err
}

func getCallDetail(ctx context.Context, db *sql.DB, callID string) (CallDetail, error) {
	// The latest analysis row wins when a redelivered webhook produced
	// duplicates.
	const q = `
SELECT
  c.id, c.workshop_id, c.from_number, c.to_number, c.external_call_id, c.status,
  c.started_at, c.answered_at, c.ended_at, c.duration_seconds, c.cost_cents,
  COALESCE(c.recording_url, ''), COALESCE(c.transcript, ''), c.created_at, c.updated_at,
  w.name,
  a.id, a.call_id,
  COALESCE(a.customer_name, ''), COALESCE(a.customer_phone, ''), COALESCE(a.customer_email, ''),
  COALESCE(a.vehicle_make, ''), COALESCE(a.vehicle_model, ''), COALESCE(a.vehicle_year, ''),
  COALESCE(a.issue_summary, ''), COALESCE(a.issue_category, ''), COALESCE(a.urgency, ''),
  COALESCE(a.preferred_date, ''), COALESCE(a.preferred_time, ''),
  a.booking_confirmed, a.sentiment, a.booking_created, a.created_at
FROM calls c
JOIN workshops w ON w.id = c.workshop_id
LEFT JOIN LATERAL (
  SELECT * FROM call_analysis WHERE call_id = c.id ORDER BY created_at DESC LIMIT 1
) a ON TRUE
WHERE c.id = $1
`
	var d CallDetail
	var analysisID, analysisCallID, customerName, customerPhone, customerEmail sql.NullString
	var vehicleMake, vehicleModel, vehicleYear sql.NullString
	var issueSummary, issueCategory, urgency, preferredDate, preferredTime sql.NullString
	var bookingConfirmed, bookingCreated sql.NullBool
	var sentiment sql.NullString
	var analysisCreatedAt sql.NullTime

	err := db.QueryRowContext(ctx, q, callID).Scan(
		&d.ID,
		&d.WorkshopID,
		&d.FromNumber,
		&d.ToNumber,
		&d.ExternalCallID,
		&d.Status,
		&d.StartedAt,
		&d.AnsweredAt,
		&d.EndedAt,
		&d.DurationSeconds,
		&d.CostCents,
		&d.RecordingURL,
		&d.Transcript,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.WorkshopName,
		&analysisID,
		&analysisCallID,
		&customerName,
		&customerPhone,
		&customerEmail,
		&vehicleMake,
		&vehicleModel,
		&vehicleYear,
		&issueSummary,
		&issueCategory,
		&urgency,
		&preferredDate,
		&preferredTime,
		&bookingConfirmed,
		&sentiment,
		&bookingCreated,
		&analysisCreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallDetail{}, ErrNotFound
		}
		return CallDetail{}, err
	}

	if analysisID.Valid {
		d.Analysis = &Analysis{
			ID:               analysisID.String,
			CallID:           analysisCallID.String,
			CustomerName:     customerName.String,
			CustomerPhone:    customerPhone.String,
			CustomerEmail:    customerEmail.String,
			VehicleMake:      vehicleMake.String,
			VehicleModel:     vehicleModel.String,
			VehicleYear:      vehicleYear.String,
			IssueSummary:     issueSummary.String,
			IssueCategory:    issueCategory.String,
			Urgency:          urgency.String,
			PreferredDate:    preferredDate.String,
			PreferredTime:    preferredTime.String,
			BookingConfirmed: bookingConfirmed.Bool,
			Sentiment:        sentiment.String,
			BookingCreated:   bookingCreated.Bool,
			CreatedAt:        analysisCreatedAt.Time,
		}
	}
	return d, nil
}

func listWorkshopCalls(ctx context.Context, db *sql.DB, workshopID string, f ListFilter) ([]CallSummary, int, error) {
	const countQ = `
SELECT COUNT(*)
FROM calls
WHERE workshop_id = $1 AND ($2 = '' OR status = $2)
`
	var total int
	if err := db.QueryRowContext(ctx, countQ, workshopID, string(f.Status)).Scan(&total); err != nil {
		return nil, 0, err
	}

	const pageQ = `
SELECT
  c.id, c.from_number, c.status, c.started_at, c.duration_seconds,
  COALESCE(a.customer_name, ''), COALESCE(a.issue_category, ''), COALESCE(a.booking_created, FALSE)
FROM calls c
LEFT JOIN LATERAL (
  SELECT * FROM call_analysis WHERE call_id = c.id ORDER BY created_at DESC LIMIT 1
) a ON TRUE
WHERE c.workshop_id = $1 AND ($2 = '' OR c.status = $2)
ORDER BY c.started_at DESC
LIMIT $3 OFFSET $4
`
	rows, err := db.QueryContext(ctx, pageQ, workshopID, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]CallSummary, 0, f.Limit)
	for rows.Next() {
		var s CallSummary
		if err := rows.Scan(
			&s.ID,
			&s.FromNumber,
			&s.Status,
			&s.StartedAt,
			&s.DurationSeconds,
			&s.CustomerName,
			&s.IssueCategory,
			&s.BookingCreated,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
