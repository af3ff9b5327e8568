package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type Hotel struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	IsOpen       bool
	LastOpenedAt time.Time
	CreatedAt    time.Time
}

type Profile struct {
	ID           uuid.UUID
	HotelID      uuid.UUID
	Role         string
	FullName     string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Seat struct {
	HotelID    uuid.UUID
	SeatNumber int32
	Status     string
}

type Category struct {
	ID      int64
	HotelID uuid.UUID
	Name    string
	Slug    string
}

// Variant is a named, separately priced portion size stored as a JSONB array
// on the menu item. Order matters: the first variant's price is the item's
// default price.
type Variant struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type MenuItem struct {
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
	CreatedAt      time.Time
}

type Order struct {
	ID           int64
	HotelID      uuid.UUID
	SeatNumber   int32
	Status       string
	TotalAmount  pgtype.Numeric
	WaiterID     pgtype.UUID
	WaiterName   string
	ParcelNumber pgtype.Int4
	CreatedAt    time.Time
}

type OrderItem struct {
	ID          int64
	OrderID     int64
	MenuItemID  int64
	Quantity    int32
	Price       pgtype.Numeric
	Status      string
	VariantName pgtype.Text
	Notes       pgtype.Text
}
