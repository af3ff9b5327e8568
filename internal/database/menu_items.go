package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, hotel_id, category_id, name, price, is_veg,
available, variants, track_inventory, stock_count, created_at`

const listMenuItemsByHotel = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE hotel_id = $1
ORDER BY name
`

func (q *Queries) ListMenuItemsByHotel(ctx context.Context, hotelID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByHotel, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const getMenuItem = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE id = $1 AND hotel_id = $2
`

type GetMenuItemParams struct {
	ID      int64
	HotelID uuid.UUID
}

func (q *Queries) GetMenuItem(ctx context.Context, arg GetMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItem, arg.ID, arg.HotelID))
}

const createMenuItem = `
INSERT INTO menu_items (hotel_id, category_id, name, price, is_veg, available,
                        variants, track_inventory, stock_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + menuItemColumns

type CreateMenuItemParams struct {
	HotelID        uuid.UUID
	CategoryID     pgtype.Int8
	Name           string
	Price          pgtype.Numeric
	IsVeg          bool
	Available      bool
	Variants       []Variant
	TrackInventory bool
	StockCount     pgtype.Numeric
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, createMenuItem,
		arg.HotelID, arg.CategoryID, arg.Name, arg.Price, arg.IsVeg,
		arg.Available, arg.Variants, arg.TrackInventory, arg.StockCount))
}

const updateMenuItem = `
UPDATE menu_items
SET category_id = $3, name = $4, price = $5, is_veg = $6, available = $7,
    variants = $8, track_inventory = $9, stock_count = $10
WHERE id = $1 AND hotel_id = $2
RETURNING ` + menuItemColumns

type UpdateMenuItemParams struct {
	ID             int64
	HotelID        uuid.UUID
	CategoryID     pgtype.Int8
	Name           string
	Price          pgtype.Numeric
	IsVeg          bool
	Available      bool
	Variants       []Variant
	TrackInventory bool
	StockCount     pgtype.Numeric
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, updateMenuItem,
		arg.ID, arg.HotelID, arg.CategoryID, arg.Name, arg.Price, arg.IsVeg,
		arg.Available, arg.Variants, arg.TrackInventory, arg.StockCount))
}

const deleteMenuItem = `
DELETE FROM menu_items
WHERE id = $1 AND hotel_id = $2
RETURNING id
`

type DeleteMenuItemParams struct {
	ID      int64
	HotelID uuid.UUID
}

func (q *Queries) DeleteMenuItem(ctx context.Context, arg DeleteMenuItemParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, deleteMenuItem, arg.ID, arg.HotelID).Scan(&id)
	return id, err
}

// ReserveStock atomically decrements weighted stock. The WHERE clause is the
// concurrency guard: two callers racing for the last unit cannot both match
// stock_count >= units, so at most one row update succeeds and the loser gets
// pgx.ErrNoRows.
const reserveStock = `
UPDATE menu_items
SET stock_count = stock_count - $3,
    available = (stock_count - $3) > 0
WHERE id = $1 AND hotel_id = $2 AND track_inventory AND stock_count >= $3
RETURNING ` + menuItemColumns

type AdjustStockParams struct {
	ID      int64
	HotelID uuid.UUID
	Units   pgtype.Numeric
}

func (q *Queries) ReserveStock(ctx context.Context, arg AdjustStockParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, reserveStock, arg.ID, arg.HotelID, arg.Units))
}

const releaseStock = `
UPDATE menu_items
SET stock_count = stock_count + $3,
    available = (stock_count + $3) > 0
WHERE id = $1 AND hotel_id = $2 AND track_inventory
RETURNING ` + menuItemColumns

func (q *Queries) ReleaseStock(ctx context.Context, arg AdjustStockParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, releaseStock, arg.ID, arg.HotelID, arg.Units))
}

func scanMenuItem(row interface{ Scan(...any) error }) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.HotelID, &m.CategoryID, &m.Name, &m.Price,
		&m.IsVeg, &m.Available, &m.Variants, &m.TrackInventory,
		&m.StockCount, &m.CreatedAt)
	return m, err
}
