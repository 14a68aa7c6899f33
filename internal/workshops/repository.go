package workshops

import (
	"context"
	"database/sql"
	"errors"
)

// NOTE: This repository assumes the following table exists:
//
//	workshops (
//	  id            TEXT PRIMARY KEY,
//	  name          TEXT NOT NULL,
//	  phone_number  TEXT NOT NULL UNIQUE,
//	  timezone      TEXT,
//	  business_hours TEXT,
//	  status        TEXT NOT NULL,
//	  created_at    TIMESTAMPTZ NOT NULL
//	)

var ErrNotFound = errors.New("workshop not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FindActiveByNumber resolves the tenant owning a dialed platform number.
// Inactive workshops are treated as absent: their numbers must not accept calls.
func (r *Repository) FindActiveByNumber(ctx context.Context, phoneNumber string) (Workshop, error) {
	const q = `
SELECT id, name, phone_number, COALESCE(timezone, ''), COALESCE(business_hours, ''), status, created_at
FROM workshops
WHERE phone_number = $1 AND status = $2
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, phoneNumber, StatusActive))
}

func (r *Repository) FindByID(ctx context.Context, id string) (Workshop, error) {
	const q = `
SELECT id, name, phone_number, COALESCE(timezone, ''), COALESCE(business_hours, ''), status, created_at
FROM workshops
WHERE id = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *Repository) scanOne(row *sql.Row) (Workshop, error) {
	var w Workshop
	if err := row.Scan(
		&w.ID,
		&w.Name,
		&w.PhoneNumber,
		&w.Timezone,
		&w.BusinessHours,
		&w.Status,
		&w.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Workshop{}, ErrNotFound
		}
		return Workshop{}, err
	}
	return w, nil
}
