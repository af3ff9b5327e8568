package database

import (
	"context"

	"github.com/google/uuid"
)

const createHotel = `
INSERT INTO hotels (name, slug)
VALUES ($1, $2)
RETURNING id, name, slug, is_open, last_opened_at, created_at
`

type CreateHotelParams struct {
	Name string
	Slug string
}

func (q *Queries) CreateHotel(ctx context.Context, arg CreateHotelParams) (Hotel, error) {
	row := q.db.QueryRow(ctx, createHotel, arg.Name, arg.Slug)
	var h Hotel
	err := row.Scan(&h.ID, &h.Name, &h.Slug, &h.IsOpen, &h.LastOpenedAt, &h.CreatedAt)
	return h, err
}

const getHotel = `
SELECT id, name, slug, is_open, last_opened_at, created_at
FROM hotels
WHERE id = $1
`

func (q *Queries) GetHotel(ctx context.Context, id uuid.UUID) (Hotel, error) {
	row := q.db.QueryRow(ctx, getHotel, id)
	var h Hotel
	err := row.Scan(&h.ID, &h.Name, &h.Slug, &h.IsOpen, &h.LastOpenedAt, &h.CreatedAt)
	return h, err
}

const listHotelIDs = `
SELECT id FROM hotels ORDER BY created_at
`

func (q *Queries) ListHotelIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, listHotelIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// last_opened_at is only stamped on the closed->open transition; it anchors
// parcel numbering for the open window.
const setHotelOpen = `
UPDATE hotels
SET is_open = $2,
    last_opened_at = CASE WHEN $3 THEN now() ELSE last_opened_at END
WHERE id = $1
RETURNING id, name, slug, is_open, last_opened_at, created_at
`

type SetHotelOpenParams struct {
	ID              uuid.UUID
	IsOpen          bool
	StampLastOpened bool
}

func (q *Queries) SetHotelOpen(ctx context.Context, arg SetHotelOpenParams) (Hotel, error) {
	row := q.db.QueryRow(ctx, setHotelOpen, arg.ID, arg.IsOpen, arg.StampLastOpened)
	var h Hotel
	err := row.Scan(&h.ID, &h.Name, &h.Slug, &h.IsOpen, &h.LastOpenedAt, &h.CreatedAt)
	return h, err
}
