package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const orderItemColumns = `id, order_id, menu_item_id, quantity, price, status,
variant_name, notes`

const createOrderItem = `
INSERT INTO order_items (order_id, menu_item_id, quantity, price, variant_name, notes)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderItemColumns

type CreateOrderItemParams struct {
	OrderID     int64
	MenuItemID  int64
	Quantity    int32
	Price       pgtype.Numeric
	VariantName pgtype.Text
	Notes       pgtype.Text
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.MenuItemID, arg.Quantity, arg.Price,
		arg.VariantName, arg.Notes))
}

const listOrderItemsByOrder = `
SELECT ` + orderItemColumns + `
FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const getOrderItem = `
SELECT ` + orderItemColumns + `
FROM order_items
WHERE id = $1 AND order_id = $2
`

type GetOrderItemParams struct {
	ID      int64
	OrderID int64
}

func (q *Queries) GetOrderItem(ctx context.Context, arg GetOrderItemParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, getOrderItem, arg.ID, arg.OrderID))
}

// RETURNING gives the caller the deleted row so its reserved stock can be
// released without a prior read.
const deleteOrderItem = `
DELETE FROM order_items
WHERE id = $1 AND order_id = $2
RETURNING ` + orderItemColumns

type DeleteOrderItemParams struct {
	ID      int64
	OrderID int64
}

func (q *Queries) DeleteOrderItem(ctx context.Context, arg DeleteOrderItemParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, deleteOrderItem, arg.ID, arg.OrderID))
}

const setOrderItemStatus = `
UPDATE order_items
SET status = $3
WHERE id = $1 AND order_id = $2
RETURNING ` + orderItemColumns

type SetOrderItemStatusParams struct {
	ID      int64
	OrderID int64
	Status  string
}

func (q *Queries) SetOrderItemStatus(ctx context.Context, arg SetOrderItemStatusParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, setOrderItemStatus,
		arg.ID, arg.OrderID, arg.Status))
}

const setOrderItemsStatusByOrder = `
UPDATE order_items
SET status = $2
WHERE order_id = $1
`

type SetOrderItemsStatusByOrderParams struct {
	OrderID int64
	Status  string
}

func (q *Queries) SetOrderItemsStatusByOrder(ctx context.Context, arg SetOrderItemsStatusByOrderParams) error {
	_, err := q.db.Exec(ctx, setOrderItemsStatusByOrder, arg.OrderID, arg.Status)
	return err
}

const countUnservedItems = `
SELECT count(*)
FROM order_items
WHERE order_id = $1 AND status <> 'served'
`

func (q *Queries) CountUnservedItems(ctx context.Context, orderID int64) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countUnservedItems, orderID).Scan(&n)
	return n, err
}

const countOrderItems = `
SELECT count(*)
FROM order_items
WHERE order_id = $1
`

func (q *Queries) CountOrderItems(ctx context.Context, orderID int64) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countOrderItems, orderID).Scan(&n)
	return n, err
}

func scanOrderItem(row interface{ Scan(...any) error }) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.MenuItemID, &i.Quantity, &i.Price,
		&i.Status, &i.VariantName, &i.Notes)
	return i, err
}
