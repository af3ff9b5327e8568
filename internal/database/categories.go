package database

import (
	"context"

	"github.com/google/uuid"
)

const listCategoriesByHotel = `
SELECT id, hotel_id, name, slug
FROM categories
WHERE hotel_id = $1
ORDER BY id
`

func (q *Queries) ListCategoriesByHotel(ctx context.Context, hotelID uuid.UUID) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategoriesByHotel, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.HotelID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const createCategory = `
INSERT INTO categories (hotel_id, name, slug)
VALUES ($1, $2, $3)
RETURNING id, hotel_id, name, slug
`

type CreateCategoryParams struct {
	HotelID uuid.UUID
	Name    string
	Slug    string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	var c Category
	err := q.db.QueryRow(ctx, createCategory, arg.HotelID, arg.Name, arg.Slug).
		Scan(&c.ID, &c.HotelID, &c.Name, &c.Slug)
	return c, err
}

const deleteCategory = `
DELETE FROM categories
WHERE id = $1 AND hotel_id = $2
RETURNING id
`

type DeleteCategoryParams struct {
	ID      int64
	HotelID uuid.UUID
}

func (q *Queries) DeleteCategory(ctx context.Context, arg DeleteCategoryParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, deleteCategory, arg.ID, arg.HotelID).Scan(&id)
	return id, err
}
