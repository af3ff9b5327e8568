package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/annapurna-pos/api/internal/database"
	"github.com/annapurna-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MarkServed force-serves an order: the order and every one of its items
// move to served regardless of their current item statuses.
func (s *OrderService) MarkServed(ctx context.Context, hotelID uuid.UUID, orderID int64) (database.Order, error) {
	order, err := s.getActiveOrder(ctx, hotelID, orderID)
	if err != nil {
		return database.Order{}, err
	}

	order, err = s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:      orderID,
		HotelID: hotelID,
		Status:  enum.OrderStatusServed,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("mark order served: %w", err)
	}
	if err := s.store.SetOrderItemsStatusByOrder(ctx, database.SetOrderItemsStatusByOrderParams{
		OrderID: orderID,
		Status:  enum.OrderItemStatusServed,
	}); err != nil {
		return database.Order{}, fmt.Errorf("mark order items served: %w", err)
	}

	s.notify.BroadcastChange(hotelID, "orders", "UPDATE")
	s.notify.BroadcastChange(hotelID, "order_items", "UPDATE")
	return order, nil
}

// MarkItemServed serves a single item. When it was the last pending item the
// order is promoted to served as well.
func (s *OrderService) MarkItemServed(ctx context.Context, hotelID uuid.UUID, orderID, itemID int64) (database.Order, error) {
	order, err := s.getActiveOrder(ctx, hotelID, orderID)
	if err != nil {
		return database.Order{}, err
	}

	if _, err := s.store.SetOrderItemStatus(ctx, database.SetOrderItemStatusParams{
		ID:      itemID,
		OrderID: orderID,
		Status:  enum.OrderItemStatusServed,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderItemNotFound
		}
		return database.Order{}, fmt.Errorf("mark item served: %w", err)
	}

	unserved, err := s.store.CountUnservedItems(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("count unserved items: %w", err)
	}
	if unserved == 0 && order.Status != enum.OrderStatusServed {
		order, err = s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
			ID:      orderID,
			HotelID: hotelID,
			Status:  enum.OrderStatusServed,
		})
		if err != nil {
			return database.Order{}, fmt.Errorf("promote order to served: %w", err)
		}
		s.notify.BroadcastChange(hotelID, "orders", "UPDATE")
	}

	s.notify.BroadcastChange(hotelID, "order_items", "UPDATE")
	return order, nil
}

// Close bills an order. It requires at least one item and every item served;
// the seat is freed afterwards.
func (s *OrderService) Close(ctx context.Context, hotelID uuid.UUID, orderID int64) (database.Order, error) {
	order, err := s.getActiveOrder(ctx, hotelID, orderID)
	if err != nil {
		return database.Order{}, err
	}

	total, err := s.store.CountOrderItems(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("count order items: %w", err)
	}
	if total == 0 {
		return database.Order{}, ErrNoItems
	}
	unserved, err := s.store.CountUnservedItems(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("count unserved items: %w", err)
	}
	if unserved > 0 {
		return database.Order{}, &UnservedItemsError{Count: unserved}
	}

	order, err = s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:      orderID,
		HotelID: hotelID,
		Status:  enum.OrderStatusCompleted,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("close order: %w", err)
	}

	s.freeSeat(ctx, hotelID, order.SeatNumber, orderID)
	s.notify.BroadcastChange(hotelID, "orders", "UPDATE")
	s.notify.BroadcastChange(hotelID, "seats", "UPDATE")
	return order, nil
}

// MarkPaid records payment on a completed order.
func (s *OrderService) MarkPaid(ctx context.Context, hotelID uuid.UUID, orderID int64) (database.Order, error) {
	order, err := s.store.GetOrder(ctx, database.GetOrderParams{ID: orderID, HotelID: hotelID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("load order: %w", err)
	}
	if order.Status != enum.OrderStatusCompleted {
		return database.Order{}, ErrOrderNotActive
	}

	order, err = s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:      orderID,
		HotelID: hotelID,
		Status:  enum.OrderStatusPaid,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("mark order paid: %w", err)
	}

	s.notify.BroadcastChange(hotelID, "orders", "UPDATE")
	return order, nil
}

// Cancel voids an order, frees its seat and returns reserved stock. An
// order with unserved items cannot be cancelled (the items must be removed
// one by one), and neither can a served order that still has items.
func (s *OrderService) Cancel(ctx context.Context, hotelID uuid.UUID, orderID int64) (database.Order, error) {
	order, err := s.getActiveOrder(ctx, hotelID, orderID)
	if err != nil {
		return database.Order{}, err
	}

	items, err := s.store.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("list order items: %w", err)
	}
	var unserved int64
	for _, item := range items {
		if item.Status != enum.OrderItemStatusServed {
			unserved++
		}
	}
	if unserved > 0 {
		return database.Order{}, &UnservedItemsError{Count: unserved}
	}
	if order.Status == enum.OrderStatusServed && len(items) > 0 {
		return database.Order{}, ErrServedWithItems
	}

	order, err = s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:      orderID,
		HotelID: hotelID,
		Status:  enum.OrderStatusCancelled,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("cancel order: %w", err)
	}

	s.freeSeat(ctx, hotelID, order.SeatNumber, orderID)
	s.releaseItems(ctx, hotelID, orderID, items)

	s.notify.BroadcastChange(hotelID, "orders", "UPDATE")
	s.notify.BroadcastChange(hotelID, "seats", "UPDATE")
	if len(items) > 0 {
		s.notify.BroadcastChange(hotelID, "menu_items", "UPDATE")
	}
	return order, nil
}

// CancelItem removes one item from an active order, returning its stock and
// shrinking the total. Removing the last item cancels the whole order and
// frees the seat.
func (s *OrderService) CancelItem(ctx context.Context, hotelID uuid.UUID, orderID, itemID int64) (database.Order, error) {
	order, err := s.getActiveOrder(ctx, hotelID, orderID)
	if err != nil {
		return database.Order{}, err
	}

	item, err := s.store.DeleteOrderItem(ctx, database.DeleteOrderItemParams{ID: itemID, OrderID: orderID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderItemNotFound
		}
		return database.Order{}, fmt.Errorf("delete order item: %w", err)
	}

	s.releaseItems(ctx, hotelID, orderID, []database.OrderItem{item})

	remaining, err := s.store.CountOrderItems(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("count remaining items: %w", err)
	}

	if remaining == 0 {
		order, err = s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
			ID:      orderID,
			HotelID: hotelID,
			Status:  enum.OrderStatusCancelled,
		})
		if err != nil {
			return database.Order{}, fmt.Errorf("cancel emptied order: %w", err)
		}
		s.freeSeat(ctx, hotelID, order.SeatNumber, orderID)
		s.notify.BroadcastChange(hotelID, "seats", "UPDATE")
	} else {
		// Totals never go negative, even if the stored total drifted.
		refund := numericToDecimal(item.Price).Mul(decimal.NewFromInt32(item.Quantity))
		total := numericToDecimal(order.TotalAmount).Sub(refund)
		if total.IsNegative() {
			total = decimal.Zero
		}
		order, err = s.store.UpdateOrderTotal(ctx, database.UpdateOrderTotalParams{
			ID:          orderID,
			HotelID:     hotelID,
			TotalAmount: decimalToNumeric(total),
		})
		if err != nil {
			return database.Order{}, fmt.Errorf("update order total: %w", err)
		}
	}

	s.notify.BroadcastChange(hotelID, "orders", "UPDATE")
	s.notify.BroadcastChange(hotelID, "order_items", "DELETE")
	s.notify.BroadcastChange(hotelID, "menu_items", "UPDATE")
	return order, nil
}

func (s *OrderService) getActiveOrder(ctx context.Context, hotelID uuid.UUID, orderID int64) (database.Order, error) {
	order, err := s.store.GetOrder(ctx, database.GetOrderParams{ID: orderID, HotelID: hotelID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("load order: %w", err)
	}
	if !enum.IsActiveOrderStatus(order.Status) {
		return database.Order{}, ErrOrderNotActive
	}
	return order, nil
}

// freeSeat marks the order's seat available again. Logged on failure for
// the same reason occupySeat is: the reconciler will repair it.
func (s *OrderService) freeSeat(ctx context.Context, hotelID uuid.UUID, seatNumber int32, orderID int64) {
	_, err := s.store.SetSeatStatus(ctx, database.SetSeatStatusParams{
		HotelID:    hotelID,
		SeatNumber: seatNumber,
		Status:     enum.SeatStatusAvailable,
	})
	if err != nil {
		log.Printf("ERROR: free seat %d after order %d: %v", seatNumber, orderID, err)
	}
}

// releaseItems returns each item's weighted stock. Best-effort: a failed
// release is logged and the rest continue.
func (s *OrderService) releaseItems(ctx context.Context, hotelID uuid.UUID, orderID int64, items []database.OrderItem) {
	for _, item := range items {
		units := PortionWeight(item.VariantName.String).Mul(decimal.NewFromInt32(item.Quantity))
		if err := s.stock.Release(ctx, hotelID, item.MenuItemID, units); err != nil {
			log.Printf("ERROR: release stock for item %d on order %d: %v",
				item.MenuItemID, orderID, err)
		}
	}
}
