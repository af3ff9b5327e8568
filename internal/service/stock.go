package service

import (
	"context"
	"errors"
	"strings"

	"github.com/annapurna-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Portion weights: how much of one raw stock unit a single serving of a
// variant consumes.
var (
	weightFull    = decimal.NewFromInt(1)
	weightHalf    = decimal.NewFromFloat(0.5)
	weightQuarter = decimal.NewFromFloat(0.25)
)

// PortionWeight maps a variant name to its stock weight. Matching is by
// substring, case-insensitive; unrecognized names weigh 1.0.
func PortionWeight(variantName string) decimal.Decimal {
	name := strings.ToLower(variantName)
	switch {
	case strings.Contains(name, "half"):
		return weightHalf
	case strings.Contains(name, "quarter"):
		return weightQuarter
	default:
		return weightFull
	}
}

// StockStore defines the DB methods needed by the stock ledger.
// Satisfied by *database.Queries.
type StockStore interface {
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	ReserveStock(ctx context.Context, arg database.AdjustStockParams) (database.MenuItem, error)
	ReleaseStock(ctx context.Context, arg database.AdjustStockParams) (database.MenuItem, error)
}

// StockLedger reserves and releases inventory through store-side atomic
// adjustments. It never does read-modify-write on stock counts.
type StockLedger struct {
	store StockStore
}

func NewStockLedger(store StockStore) *StockLedger {
	return &StockLedger{store: store}
}

// Reserve decrements stock by the given weighted units. Items that do not
// track inventory are a no-op. Returns *InsufficientStockError when the
// decrement would drive stock negative; in that case stock is unchanged.
func (l *StockLedger) Reserve(ctx context.Context, hotelID uuid.UUID, menuItemID int64, units decimal.Decimal) error {
	if !units.IsPositive() {
		return nil
	}

	item, err := l.store.GetMenuItem(ctx, database.GetMenuItemParams{ID: menuItemID, HotelID: hotelID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMenuItemNotFound
		}
		return err
	}
	if !item.TrackInventory {
		return nil
	}

	_, err = l.store.ReserveStock(ctx, database.AdjustStockParams{
		ID:      menuItemID,
		HotelID: hotelID,
		Units:   decimalToNumeric(units),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The guarded UPDATE matched no row: the remaining stock is
			// below the requested units.
			return &InsufficientStockError{MenuItemID: item.ID, Name: item.Name}
		}
		return err
	}
	return nil
}

// Release increments stock by the given weighted units (cancellation and
// item removal). No-op for untracked items.
func (l *StockLedger) Release(ctx context.Context, hotelID uuid.UUID, menuItemID int64, units decimal.Decimal) error {
	if !units.IsPositive() {
		return nil
	}

	item, err := l.store.GetMenuItem(ctx, database.GetMenuItemParams{ID: menuItemID, HotelID: hotelID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMenuItemNotFound
		}
		return err
	}
	if !item.TrackInventory {
		return nil
	}

	_, err = l.store.ReleaseStock(ctx, database.AdjustStockParams{
		ID:      menuItemID,
		HotelID: hotelID,
		Units:   decimalToNumeric(units),
	})
	return err
}

// --- Numeric helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
