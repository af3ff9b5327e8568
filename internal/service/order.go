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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Store defines the DB methods the order service needs.
// Satisfied by *database.Queries.
type Store interface {
	StockStore
	GetHotel(ctx context.Context, id uuid.UUID) (database.Hotel, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	GetActiveOrderForSeat(ctx context.Context, arg database.GetActiveOrderForSeatParams) (database.Order, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateOrderTotal(ctx context.Context, arg database.UpdateOrderTotalParams) (database.Order, error)
	CountParcelsSince(ctx context.Context, arg database.CountParcelsSinceParams) (int64, error)
	ListActiveParcels(ctx context.Context, arg database.ListActiveParcelsParams) ([]database.Order, error)
	ListOrdersByStatuses(ctx context.Context, arg database.ListOrdersByStatusesParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error)
	SetOrderItemStatus(ctx context.Context, arg database.SetOrderItemStatusParams) (database.OrderItem, error)
	SetOrderItemsStatusByOrder(ctx context.Context, arg database.SetOrderItemsStatusByOrderParams) error
	DeleteOrderItem(ctx context.Context, arg database.DeleteOrderItemParams) (database.OrderItem, error)
	CountUnservedItems(ctx context.Context, orderID int64) (int64, error)
	CountOrderItems(ctx context.Context, orderID int64) (int64, error)
	ListSeatsByHotel(ctx context.Context, hotelID uuid.UUID) ([]database.Seat, error)
	SetSeatStatus(ctx context.Context, arg database.SetSeatStatusParams) (database.Seat, error)
}

// Notifier fans a change event out to the hotel's connected clients so
// their read models refresh.
type Notifier interface {
	BroadcastChange(hotelID uuid.UUID, table, event string)
}

type nopNotifier struct{}

func (nopNotifier) BroadcastChange(uuid.UUID, string, string) {}

// OrderService owns the order lifecycle: submission, serving, billing,
// cancellation and the stock movements they imply.
type OrderService struct {
	store  Store
	stock  *StockLedger
	notify Notifier
}

func NewOrderService(store Store, notify Notifier) *OrderService {
	if notify == nil {
		notify = nopNotifier{}
	}
	return &OrderService{
		store:  store,
		stock:  NewStockLedger(store),
		notify: notify,
	}
}

// Actor is the authenticated staff member performing an operation.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role string
}

// SubmitRequest carries one cart submission. OrderID, when non-zero, names
// the specific parcel order to append to; it only applies to the parcel
// seat, where several orders can be active at once. For regular seats the
// active order is looked up by seat number.
type SubmitRequest struct {
	HotelID    uuid.UUID
	SeatNumber int32
	OrderID    int64
	Actor      Actor
	Cart       *Cart
}

// SubmitResult reports the order the cart landed on.
type SubmitResult struct {
	Order   database.Order
	Items   []database.OrderItem
	Created bool
}

// resolvedLine is a cart line after submission-time menu resolution: the
// current item row, the price snapshot and the weighted stock demand.
type resolvedLine struct {
	CartLine
	item  database.MenuItem
	price decimal.Decimal
	units decimal.Decimal
}

// Submit turns a cart into order rows. For an occupied regular seat the
// lines are appended to the seat's active order and its total is bumped;
// otherwise a new order is created, with a sequential parcel number when the
// submission targets the parcel seat.
//
// The steps are not wrapped in a transaction. Stock reservation in
// particular is best-effort: a line that cannot be reserved is logged and
// the order keeps it anyway.
func (s *OrderService) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	hotel, err := s.store.GetHotel(ctx, req.HotelID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SubmitResult{}, ErrOrderNotFound
		}
		return SubmitResult{}, fmt.Errorf("load hotel: %w", err)
	}
	if !hotel.IsOpen {
		return SubmitResult{}, ErrShopClosed
	}
	if req.Cart == nil || req.Cart.Empty() {
		return SubmitResult{}, ErrEmptyCart
	}

	lines, subtotal, err := s.resolveCart(ctx, req.HotelID, req.Cart)
	if err != nil {
		return SubmitResult{}, err
	}

	order, created, err := s.targetOrder(ctx, hotel, req, subtotal)
	if err != nil {
		return SubmitResult{}, err
	}

	items := make([]database.OrderItem, 0, len(lines))
	for _, line := range lines {
		item, err := s.store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:     order.ID,
			MenuItemID:  line.Key.MenuItemID,
			Quantity:    line.Quantity,
			Price:       decimalToNumeric(line.price),
			VariantName: textOrNull(line.Key.Variant),
			Notes:       textOrNull(line.Note),
		})
		if err != nil {
			return SubmitResult{}, fmt.Errorf("insert order item: %w", err)
		}
		items = append(items, item)

		if err := s.stock.Reserve(ctx, req.HotelID, line.Key.MenuItemID, line.units); err != nil {
			log.Printf("ERROR: reserve stock for item %d on order %d: %v",
				line.Key.MenuItemID, order.ID, err)
		}
	}

	if !created {
		// Read-then-write bump of the running total.
		total := numericToDecimal(order.TotalAmount).Add(subtotal)
		order, err = s.store.UpdateOrderTotal(ctx, database.UpdateOrderTotalParams{
			ID:          order.ID,
			HotelID:     req.HotelID,
			TotalAmount: decimalToNumeric(total),
		})
		if err != nil {
			return SubmitResult{}, fmt.Errorf("update order total: %w", err)
		}
	}

	s.occupySeat(ctx, req.HotelID, req.SeatNumber, order.ID)

	if created {
		s.notify.BroadcastChange(req.HotelID, "orders", "INSERT")
	} else {
		s.notify.BroadcastChange(req.HotelID, "orders", "UPDATE")
	}
	s.notify.BroadcastChange(req.HotelID, "order_items", "INSERT")
	s.notify.BroadcastChange(req.HotelID, "menu_items", "UPDATE")
	s.notify.BroadcastChange(req.HotelID, "seats", "UPDATE")

	return SubmitResult{Order: order, Items: items, Created: created}, nil
}

// resolveCart re-reads every line's menu item at submission time. The price
// written to the order is the price in effect now, not when the line was
// keyed in.
func (s *OrderService) resolveCart(ctx context.Context, hotelID uuid.UUID, cart *Cart) ([]resolvedLine, decimal.Decimal, error) {
	cartLines := cart.Lines()
	lines := make([]resolvedLine, 0, len(cartLines))
	subtotal := decimal.Zero
	for _, cl := range cartLines {
		item, err := s.store.GetMenuItem(ctx, database.GetMenuItemParams{
			ID:      cl.Key.MenuItemID,
			HotelID: hotelID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, decimal.Zero, fmt.Errorf("%w: item %d", ErrMenuItemNotFound, cl.Key.MenuItemID)
			}
			return nil, decimal.Zero, fmt.Errorf("load menu item %d: %w", cl.Key.MenuItemID, err)
		}
		price := ResolvePrice(item, cl.Key.Variant)
		qty := decimal.NewFromInt32(cl.Quantity)
		lines = append(lines, resolvedLine{
			CartLine: cl,
			item:     item,
			price:    price,
			units:    PortionWeight(cl.Key.Variant).Mul(qty),
		})
		subtotal = subtotal.Add(price.Mul(qty))
	}
	return lines, subtotal, nil
}

// targetOrder finds the order the cart should land on, creating one when no
// active order applies.
func (s *OrderService) targetOrder(ctx context.Context, hotel database.Hotel, req SubmitRequest, subtotal decimal.Decimal) (database.Order, bool, error) {
	if req.OrderID != 0 {
		order, err := s.store.GetOrder(ctx, database.GetOrderParams{ID: req.OrderID, HotelID: req.HotelID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.Order{}, false, ErrOrderNotFound
			}
			return database.Order{}, false, fmt.Errorf("load order: %w", err)
		}
		if !enum.IsActiveOrderStatus(order.Status) {
			return database.Order{}, false, ErrOrderNotActive
		}
		return order, false, nil
	}

	if req.SeatNumber != enum.ParcelSeatNumber {
		order, err := s.store.GetActiveOrderForSeat(ctx, database.GetActiveOrderForSeatParams{
			HotelID:    req.HotelID,
			SeatNumber: req.SeatNumber,
		})
		if err == nil {
			return order, false, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, false, fmt.Errorf("find active order: %w", err)
		}
	}

	params := database.CreateOrderParams{
		HotelID:     req.HotelID,
		SeatNumber:  req.SeatNumber,
		Status:      enum.OrderStatusPending,
		TotalAmount: decimalToNumeric(subtotal),
		WaiterID:    uuidOrNull(req.Actor.ID),
		WaiterName:  req.Actor.Name,
	}
	if req.SeatNumber == enum.ParcelSeatNumber {
		// Parcel numbers restart each business day: count parcels created
		// since the shop was last opened.
		n, err := s.store.CountParcelsSince(ctx, database.CountParcelsSinceParams{
			HotelID: req.HotelID,
			Since:   hotel.LastOpenedAt,
		})
		if err != nil {
			return database.Order{}, false, fmt.Errorf("count parcels: %w", err)
		}
		params.ParcelNumber = pgtype.Int4{Int32: int32(n) + 1, Valid: true}
	}

	order, err := s.store.CreateOrder(ctx, params)
	if err != nil {
		return database.Order{}, false, fmt.Errorf("create order: %w", err)
	}
	return order, true, nil
}

// ActiveParcels lists the parcel orders still in flight. Admins see the
// whole hotel; everyone else sees only their own.
func (s *OrderService) ActiveParcels(ctx context.Context, hotelID uuid.UUID, actor Actor) ([]database.Order, error) {
	var waiterID pgtype.UUID
	if actor.Role != enum.RoleAdmin {
		waiterID = uuidOrNull(actor.ID)
	}
	return s.store.ListActiveParcels(ctx, database.ListActiveParcelsParams{
		HotelID:  hotelID,
		WaiterID: waiterID,
	})
}

// occupySeat flips the submitted seat to occupied. Runs after the order
// writes; a failure here leaves seat status stale until the next reconcile,
// so it is logged rather than returned.
func (s *OrderService) occupySeat(ctx context.Context, hotelID uuid.UUID, seatNumber int32, orderID int64) {
	_, err := s.store.SetSeatStatus(ctx, database.SetSeatStatusParams{
		HotelID:    hotelID,
		SeatNumber: seatNumber,
		Status:     enum.SeatStatusOccupied,
	})
	if err != nil {
		log.Printf("ERROR: mark seat %d occupied after order %d: %v", seatNumber, orderID, err)
	}
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func uuidOrNull(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}
