package database

import (
	"context"

	"github.com/google/uuid"
)

const listSeatsByHotel = `
SELECT hotel_id, seat_number, status
FROM seats
WHERE hotel_id = $1
ORDER BY seat_number
`

func (q *Queries) ListSeatsByHotel(ctx context.Context, hotelID uuid.UUID) ([]Seat, error) {
	rows, err := q.db.Query(ctx, listSeatsByHotel, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []Seat
	for rows.Next() {
		var s Seat
		if err := rows.Scan(&s.HotelID, &s.SeatNumber, &s.Status); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

const getSeat = `
SELECT hotel_id, seat_number, status
FROM seats
WHERE hotel_id = $1 AND seat_number = $2
`

type GetSeatParams struct {
	HotelID    uuid.UUID
	SeatNumber int32
}

func (q *Queries) GetSeat(ctx context.Context, arg GetSeatParams) (Seat, error) {
	var s Seat
	err := q.db.QueryRow(ctx, getSeat, arg.HotelID, arg.SeatNumber).
		Scan(&s.HotelID, &s.SeatNumber, &s.Status)
	return s, err
}

const ensureSeat = `
INSERT INTO seats (hotel_id, seat_number)
VALUES ($1, $2)
ON CONFLICT (hotel_id, seat_number) DO NOTHING
`

type EnsureSeatParams struct {
	HotelID    uuid.UUID
	SeatNumber int32
}

func (q *Queries) EnsureSeat(ctx context.Context, arg EnsureSeatParams) error {
	_, err := q.db.Exec(ctx, ensureSeat, arg.HotelID, arg.SeatNumber)
	return err
}

const ensureSeatsUpTo = `
INSERT INTO seats (hotel_id, seat_number)
SELECT $1, gs FROM generate_series(1, $2::int) AS gs
ON CONFLICT (hotel_id, seat_number) DO NOTHING
`

type EnsureSeatsUpToParams struct {
	HotelID uuid.UUID
	Count   int32
}

func (q *Queries) EnsureSeatsUpTo(ctx context.Context, arg EnsureSeatsUpToParams) error {
	_, err := q.db.Exec(ctx, ensureSeatsUpTo, arg.HotelID, arg.Count)
	return err
}

// Resizing down removes only surplus tables; the parcel sentinel (0) is
// never deleted.
const deleteSeatsAbove = `
DELETE FROM seats
WHERE hotel_id = $1 AND seat_number > $2
`

type DeleteSeatsAboveParams struct {
	HotelID uuid.UUID
	Count   int32
}

func (q *Queries) DeleteSeatsAbove(ctx context.Context, arg DeleteSeatsAboveParams) error {
	_, err := q.db.Exec(ctx, deleteSeatsAbove, arg.HotelID, arg.Count)
	return err
}

const setSeatStatus = `
UPDATE seats
SET status = $3
WHERE hotel_id = $1 AND seat_number = $2
RETURNING hotel_id, seat_number, status
`

type SetSeatStatusParams struct {
	HotelID    uuid.UUID
	SeatNumber int32
	Status     string
}

func (q *Queries) SetSeatStatus(ctx context.Context, arg SetSeatStatusParams) (Seat, error) {
	var s Seat
	err := q.db.QueryRow(ctx, setSeatStatus, arg.HotelID, arg.SeatNumber, arg.Status).
		Scan(&s.HotelID, &s.SeatNumber, &s.Status)
	return s, err
}
