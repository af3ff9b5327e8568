package service

import (
	"errors"
	"fmt"
)

// Errors returned by the order service. Guard violations and stock/shop
// errors are expected business outcomes surfaced to the user; anything else
// wraps an underlying store failure.
var (
	ErrShopClosed        = errors.New("orders cannot be placed while the shop is closed")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrItemUnavailable   = errors.New("item is not available")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrOrderNotActive    = errors.New("order is no longer active")
	ErrNoItems           = errors.New("order has no items; cancel it instead of closing")
	ErrServedWithItems   = errors.New("order has been served and still has items; remove the items first")
)

// InsufficientStockError reports which item could not be reserved so the
// user message can name it.
type InsufficientStockError struct {
	MenuItemID int64
	Name       string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock available for %s", e.Name)
}

// UnservedItemsError blocks close/cancel and carries the count of offending
// items for a precise user message.
type UnservedItemsError struct {
	Count int64
}

func (e *UnservedItemsError) Error() string {
	return fmt.Sprintf("%d items still pending; all items must be served or removed first", e.Count)
}
