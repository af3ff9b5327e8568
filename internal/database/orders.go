package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, hotel_id, seat_number, status, total_amount,
waiter_id, waiter_name, parcel_number, created_at`

const createOrder = `
INSERT INTO orders (hotel_id, seat_number, status, total_amount, waiter_id,
                    waiter_name, parcel_number)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	HotelID      uuid.UUID
	SeatNumber   int32
	Status       string
	TotalAmount  pgtype.Numeric
	WaiterID     pgtype.UUID
	WaiterName   string
	ParcelNumber pgtype.Int4
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.HotelID, arg.SeatNumber, arg.Status, arg.TotalAmount,
		arg.WaiterID, arg.WaiterName, arg.ParcelNumber))
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND hotel_id = $2
`

type GetOrderParams struct {
	ID      int64
	HotelID uuid.UUID
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, arg.ID, arg.HotelID))
}

// The "one active order per table" invariant means this returns at most one
// row in practice; LIMIT 1 keeps the query shape honest if drift occurs.
const getActiveOrderForSeat = `
SELECT ` + orderColumns + `
FROM orders
WHERE hotel_id = $1 AND seat_number = $2
  AND status IN ('pending', 'preparing', 'served')
ORDER BY created_at DESC
LIMIT 1
`

type GetActiveOrderForSeatParams struct {
	HotelID    uuid.UUID
	SeatNumber int32
}

func (q *Queries) GetActiveOrderForSeat(ctx context.Context, arg GetActiveOrderForSeatParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getActiveOrderForSeat, arg.HotelID, arg.SeatNumber))
}

const listOrdersByStatuses = `
SELECT ` + orderColumns + `
FROM orders
WHERE hotel_id = $1 AND status = ANY($2)
ORDER BY created_at DESC
`

type ListOrdersByStatusesParams struct {
	HotelID  uuid.UUID
	Statuses []string
}

func (q *Queries) ListOrdersByStatuses(ctx context.Context, arg ListOrdersByStatusesParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByStatuses, arg.HotelID, arg.Statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// Waiter-scoped when WaiterID is set; hotel-wide (admin) when null.
const listActiveParcels = `
SELECT ` + orderColumns + `
FROM orders
WHERE hotel_id = $1 AND seat_number = 0
  AND status IN ('pending', 'preparing', 'served')
  AND ($2::uuid IS NULL OR waiter_id = $2)
ORDER BY created_at
`

type ListActiveParcelsParams struct {
	HotelID  uuid.UUID
	WaiterID pgtype.UUID
}

func (q *Queries) ListActiveParcels(ctx context.Context, arg ListActiveParcelsParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listActiveParcels, arg.HotelID, arg.WaiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

const countParcelsSince = `
SELECT count(*)
FROM orders
WHERE hotel_id = $1 AND seat_number = 0 AND created_at >= $2
`

type CountParcelsSinceParams struct {
	HotelID uuid.UUID
	Since   time.Time
}

func (q *Queries) CountParcelsSince(ctx context.Context, arg CountParcelsSinceParams) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countParcelsSince, arg.HotelID, arg.Since).Scan(&n)
	return n, err
}

const updateOrderStatus = `
UPDATE orders
SET status = $3
WHERE id = $1 AND hotel_id = $2
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID      int64
	HotelID uuid.UUID
	Status  string
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.HotelID, arg.Status))
}

const updateOrderTotal = `
UPDATE orders
SET total_amount = $3
WHERE id = $1 AND hotel_id = $2
RETURNING ` + orderColumns

type UpdateOrderTotalParams struct {
	ID          int64
	HotelID     uuid.UUID
	TotalAmount pgtype.Numeric
}

func (q *Queries) UpdateOrderTotal(ctx context.Context, arg UpdateOrderTotalParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderTotal, arg.ID, arg.HotelID, arg.TotalAmount))
}

// Billed orders only (completed or paid); cancelled orders never count
// toward sales.
const listBilledOrdersBetween = `
SELECT ` + orderColumns + `
FROM orders
WHERE hotel_id = $1 AND status IN ('completed', 'paid')
  AND created_at >= $2 AND created_at < $3
ORDER BY created_at
`

type ListBilledOrdersBetweenParams struct {
	HotelID uuid.UUID
	Start   time.Time
	End     time.Time
}

func (q *Queries) ListBilledOrdersBetween(ctx context.Context, arg ListBilledOrdersBetweenParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listBilledOrdersBetween, arg.HotelID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.HotelID, &o.SeatNumber, &o.Status, &o.TotalAmount,
		&o.WaiterID, &o.WaiterName, &o.ParcelNumber, &o.CreatedAt)
	return o, err
}

func collectOrders(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
