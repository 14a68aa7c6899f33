package reporting

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Service aggregates call and booking figures straight from the store; the
// volumes here are small enough that projection tables are not warranted.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// WorkshopStats computes the summary for one workshop. from/to bound
// started_at (half-open, [from, to)); either may be nil for an unbounded side.
func (s *Service) WorkshopStats(ctx context.Context, workshopID string, from, to *time.Time) (WorkshopStats, error) {
	if workshopID == "" {
		return WorkshopStats{}, ErrInvalidArgument
	}
	if from != nil && to != nil && !from.Before(*to) {
		return WorkshopStats{}, ErrInvalidArgument
	}

	out := WorkshopStats{WorkshopID: workshopID, From: from, To: to}

	const callsQ = `
SELECT
  COUNT(*),
  COUNT(*) FILTER (WHERE status = 'initiated'),
  COUNT(*) FILTER (WHERE status = 'in_progress'),
  COUNT(*) FILTER (WHERE status = 'completed'),
  COALESCE(SUM(duration_seconds), 0),
  COALESCE(SUM(cost_cents), 0)
FROM calls
WHERE workshop_id = $1
  AND ($2::timestamptz IS NULL OR started_at >= $2)
  AND ($3::timestamptz IS NULL OR started_at < $3)
`
	if err := s.db.QueryRowContext(ctx, callsQ, workshopID, from, to).Scan(
		&out.TotalCalls,
		&out.InitiatedCalls,
		&out.InProgressCalls,
		&out.CompletedCalls,
		&out.TotalDurationSeconds,
		&out.TotalCostCents,
	); err != nil {
		return WorkshopStats{}, err
	}

	const bookingsQ = `
SELECT COUNT(*)
FROM bookings
WHERE workshop_id = $1
  AND ($2::timestamptz IS NULL OR created_at >= $2)
  AND ($3::timestamptz IS NULL OR created_at < $3)
`
	if err := s.db.QueryRowContext(ctx, bookingsQ, workshopID, from, to).Scan(&out.BookingsCreated); err != nil {
		return WorkshopStats{}, err
	}

	return out, nil
}
