package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/annapurna-pos/api/internal/database"
	"github.com/annapurna-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

// mockStore implements Store with configurable behavior. Individual tests
// override the functions they care about; defaultStore supplies the rest.
type mockStore struct {
	getHotelFn              func(ctx context.Context, id uuid.UUID) (database.Hotel, error)
	getMenuItemFn           func(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	reserveStockFn          func(ctx context.Context, arg database.AdjustStockParams) (database.MenuItem, error)
	releaseStockFn          func(ctx context.Context, arg database.AdjustStockParams) (database.MenuItem, error)
	getOrderFn              func(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	getActiveOrderForSeatFn func(ctx context.Context, arg database.GetActiveOrderForSeatParams) (database.Order, error)
	createOrderFn           func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	createOrderItemFn       func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	updateOrderStatusFn     func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	updateOrderTotalFn      func(ctx context.Context, arg database.UpdateOrderTotalParams) (database.Order, error)
	countParcelsSinceFn     func(ctx context.Context, arg database.CountParcelsSinceParams) (int64, error)
	listActiveParcelsFn     func(ctx context.Context, arg database.ListActiveParcelsParams) ([]database.Order, error)
	listOrdersByStatusesFn  func(ctx context.Context, arg database.ListOrdersByStatusesParams) ([]database.Order, error)
	listOrderItemsFn        func(ctx context.Context, orderID int64) ([]database.OrderItem, error)
	setOrderItemStatusFn    func(ctx context.Context, arg database.SetOrderItemStatusParams) (database.OrderItem, error)
	setItemsStatusByOrderFn func(ctx context.Context, arg database.SetOrderItemsStatusByOrderParams) error
	deleteOrderItemFn       func(ctx context.Context, arg database.DeleteOrderItemParams) (database.OrderItem, error)
	countUnservedItemsFn    func(ctx context.Context, orderID int64) (int64, error)
	countOrderItemsFn       func(ctx context.Context, orderID int64) (int64, error)
	listSeatsByHotelFn      func(ctx context.Context, hotelID uuid.UUID) ([]database.Seat, error)
	setSeatStatusFn         func(ctx context.Context, arg database.SetSeatStatusParams) (database.Seat, error)
}

func (m *mockStore) GetHotel(ctx context.Context, id uuid.UUID) (database.Hotel, error) {
	return m.getHotelFn(ctx, id)
}
func (m *mockStore) GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
	return m.getMenuItemFn(ctx, arg)
}
func (m *mockStore) ReserveStock(ctx context.Context, arg database.AdjustStockParams) (database.MenuItem, error) {
	return m.reserveStockFn(ctx, arg)
}
func (m *mockStore) ReleaseStock(ctx context.Context, arg database.AdjustStockParams) (database.MenuItem, error) {
	return m.releaseStockFn(ctx, arg)
}
func (m *mockStore) GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
	return m.getOrderFn(ctx, arg)
}
func (m *mockStore) GetActiveOrderForSeat(ctx context.Context, arg database.GetActiveOrderForSeatParams) (database.Order, error) {
	return m.getActiveOrderForSeatFn(ctx, arg)
}
func (m *mockStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	return m.createOrderFn(ctx, arg)
}
func (m *mockStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	return m.createOrderItemFn(ctx, arg)
}
func (m *mockStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	return m.updateOrderStatusFn(ctx, arg)
}
func (m *mockStore) UpdateOrderTotal(ctx context.Context, arg database.UpdateOrderTotalParams) (database.Order, error) {
	return m.updateOrderTotalFn(ctx, arg)
}
func (m *mockStore) CountParcelsSince(ctx context.Context, arg database.CountParcelsSinceParams) (int64, error) {
	return m.countParcelsSinceFn(ctx, arg)
}
func (m *mockStore) ListActiveParcels(ctx context.Context, arg database.ListActiveParcelsParams) ([]database.Order, error) {
	return m.listActiveParcelsFn(ctx, arg)
}
func (m *mockStore) ListOrdersByStatuses(ctx context.Context, arg database.ListOrdersByStatusesParams) ([]database.Order, error) {
	return m.listOrdersByStatusesFn(ctx, arg)
}
func (m *mockStore) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error) {
	return m.listOrderItemsFn(ctx, orderID)
}
func (m *mockStore) SetOrderItemStatus(ctx context.Context, arg database.SetOrderItemStatusParams) (database.OrderItem, error) {
	return m.setOrderItemStatusFn(ctx, arg)
}
func (m *mockStore) SetOrderItemsStatusByOrder(ctx context.Context, arg database.SetOrderItemsStatusByOrderParams) error {
	return m.setItemsStatusByOrderFn(ctx, arg)
}
func (m *mockStore) DeleteOrderItem(ctx context.Context, arg database.DeleteOrderItemParams) (database.OrderItem, error) {
	return m.deleteOrderItemFn(ctx, arg)
}
func (m *mockStore) CountUnservedItems(ctx context.Context, orderID int64) (int64, error) {
	return m.countUnservedItemsFn(ctx, orderID)
}
func (m *mockStore) CountOrderItems(ctx context.Context, orderID int64) (int64, error) {
	return m.countOrderItemsFn(ctx, orderID)
}
func (m *mockStore) ListSeatsByHotel(ctx context.Context, hotelID uuid.UUID) ([]database.Seat, error) {
	return m.listSeatsByHotelFn(ctx, hotelID)
}
func (m *mockStore) SetSeatStatus(ctx context.Context, arg database.SetSeatStatusParams) (database.Seat, error) {
	return m.setSeatStatusFn(ctx, arg)
}

// mockNotifier records every broadcast as "table/event".
type mockNotifier struct {
	events []string
}

func (m *mockNotifier) BroadcastChange(_ uuid.UUID, table, event string) {
	m.events = append(m.events, table+"/"+event)
}

func (m *mockNotifier) has(e string) bool {
	for _, got := range m.events {
		if got == e {
			return true
		}
	}
	return false
}

// --- Test helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := numericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

// defaultStore returns a mockStore for an open hotel that knows a single
// tracked menu item. Seat and order writes succeed and echo their args.
func defaultStore(hotelID uuid.UUID, menuItemID int64) *mockStore {
	nextOrderID := int64(100)
	return &mockStore{
		getHotelFn: func(ctx context.Context, id uuid.UUID) (database.Hotel, error) {
			if id != hotelID {
				return database.Hotel{}, pgx.ErrNoRows
			}
			return database.Hotel{
				ID:           hotelID,
				Name:         "Annapurna",
				IsOpen:       true,
				LastOpenedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
			}, nil
		},
		getMenuItemFn: func(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
			if arg.ID == menuItemID && arg.HotelID == hotelID {
				return database.MenuItem{
					ID:             menuItemID,
					HotelID:        hotelID,
					Name:           "Chicken Biryani",
					Price:          makeNumeric("250.00"),
					Available:      true,
					TrackInventory: true,
					StockCount:     makeNumeric("10"),
					Variants: []database.Variant{
						{Name: "Full", Price: decimal.RequireFromString("250.00")},
						{Name: "Half", Price: decimal.RequireFromString("140.00")},
					},
				}, nil
			}
			return database.MenuItem{}, pgx.ErrNoRows
		},
		reserveStockFn: func(ctx context.Context, arg database.AdjustStockParams) (database.MenuItem, error) {
			return database.MenuItem{ID: arg.ID}, nil
		},
		releaseStockFn: func(ctx context.Context, arg database.AdjustStockParams) (database.MenuItem, error) {
			return database.MenuItem{ID: arg.ID}, nil
		},
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return database.Order{}, pgx.ErrNoRows
		},
		getActiveOrderForSeatFn: func(ctx context.Context, arg database.GetActiveOrderForSeatParams) (database.Order, error) {
			return database.Order{}, pgx.ErrNoRows
		},
		createOrderFn: func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
			nextOrderID++
			return database.Order{
				ID:           nextOrderID,
				HotelID:      arg.HotelID,
				SeatNumber:   arg.SeatNumber,
				Status:       arg.Status,
				TotalAmount:  arg.TotalAmount,
				WaiterID:     arg.WaiterID,
				WaiterName:   arg.WaiterName,
				ParcelNumber: arg.ParcelNumber,
			}, nil
		},
		createOrderItemFn: func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
			return database.OrderItem{
				ID:          1,
				OrderID:     arg.OrderID,
				MenuItemID:  arg.MenuItemID,
				Quantity:    arg.Quantity,
				Price:       arg.Price,
				Status:      enum.OrderItemStatusPending,
				VariantName: arg.VariantName,
				Notes:       arg.Notes,
			}, nil
		},
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			return database.Order{ID: arg.ID, HotelID: arg.HotelID, Status: arg.Status}, nil
		},
		updateOrderTotalFn: func(ctx context.Context, arg database.UpdateOrderTotalParams) (database.Order, error) {
			return database.Order{ID: arg.ID, HotelID: arg.HotelID, TotalAmount: arg.TotalAmount}, nil
		},
		countParcelsSinceFn: func(ctx context.Context, arg database.CountParcelsSinceParams) (int64, error) {
			return 0, nil
		},
		listActiveParcelsFn: func(ctx context.Context, arg database.ListActiveParcelsParams) ([]database.Order, error) {
			return nil, nil
		},
		listOrdersByStatusesFn: func(ctx context.Context, arg database.ListOrdersByStatusesParams) ([]database.Order, error) {
			return nil, nil
		},
		listOrderItemsFn: func(ctx context.Context, orderID int64) ([]database.OrderItem, error) {
			return nil, nil
		},
		setOrderItemStatusFn: func(ctx context.Context, arg database.SetOrderItemStatusParams) (database.OrderItem, error) {
			return database.OrderItem{ID: arg.ID, OrderID: arg.OrderID, Status: arg.Status}, nil
		},
		setItemsStatusByOrderFn: func(ctx context.Context, arg database.SetOrderItemsStatusByOrderParams) error {
			return nil
		},
		deleteOrderItemFn: func(ctx context.Context, arg database.DeleteOrderItemParams) (database.OrderItem, error) {
			return database.OrderItem{}, pgx.ErrNoRows
		},
		countUnservedItemsFn: func(ctx context.Context, orderID int64) (int64, error) {
			return 0, nil
		},
		countOrderItemsFn: func(ctx context.Context, orderID int64) (int64, error) {
			return 1, nil
		},
		listSeatsByHotelFn: func(ctx context.Context, hotelID uuid.UUID) ([]database.Seat, error) {
			return nil, nil
		},
		setSeatStatusFn: func(ctx context.Context, arg database.SetSeatStatusParams) (database.Seat, error) {
			return database.Seat{HotelID: arg.HotelID, SeatNumber: arg.SeatNumber, Status: arg.Status}, nil
		},
	}
}

func newTestService(store *mockStore) (*OrderService, *mockNotifier) {
	notify := &mockNotifier{}
	return NewOrderService(store, notify), notify
}

func cartWith(t *testing.T, menu Menu, menuItemID int64, qty int32, variant string) *Cart {
	t.Helper()
	cart := NewCart()
	if err := cart.UpdateQuantity(menu, menuItemID, qty, variant); err != nil {
		t.Fatalf("build cart: %v", err)
	}
	return cart
}

func testMenu(store *mockStore, hotelID uuid.UUID, ids ...int64) Menu {
	menu := make(Menu, len(ids))
	for _, id := range ids {
		item, err := store.getMenuItemFn(context.Background(), database.GetMenuItemParams{ID: id, HotelID: hotelID})
		if err == nil {
			menu[id] = item
		}
	}
	return menu
}

// =====================
// Submission gates
// =====================

func TestSubmit_ShopClosed(t *testing.T) {
	hotelID := uuid.New()
	store := defaultStore(hotelID, 1)
	store.getHotelFn = func(ctx context.Context, id uuid.UUID) (database.Hotel, error) {
		return database.Hotel{ID: hotelID, IsOpen: false}, nil
	}
	svc, _ := newTestService(store)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		HotelID:    hotelID,
		SeatNumber: 3,
		Cart:       cartWith(t, testMenu(store, hotelID, 1), 1, 1, ""),
	})
	if !errors.Is(err, ErrShopClosed) {
		t.Fatalf("expected ErrShopClosed, got: %v", err)
	}
}

func TestSubmit_EmptyCart(t *testing.T) {
	hotelID := uuid.New()
	store := defaultStore(hotelID, 1)
	svc, _ := newTestService(store)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		HotelID:    hotelID,
		SeatNumber: 3,
		Cart:       NewCart(),
	})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got: %v", err)
	}
}

func TestSubmit_MenuItemVanished(t *testing.T) {
	hotelID := uuid.New()
	store := defaultStore(hotelID, 1)
	svc, _ := newTestService(store)

	menu := testMenu(store, hotelID, 1)
	cart := cartWith(t, menu, 1, 1, "")
	// Item disappears between cart build and submission.
	store.getMenuItemFn = func(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
		return database.MenuItem{}, pgx.ErrNoRows
	}

	_, err := svc.Submit(context.Background(), SubmitRequest{
		HotelID:    hotelID,
		SeatNumber: 3,
		Cart:       cart,
	})
	if !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("expected ErrMenuItemNotFound, got: %v", err)
	}
}

// =====================
// New order creation
// =====================

func TestSubmit_CreatesOrderForFreeSeat(t *testing.T) {
	hotelID := uuid.New()
	waiterID := uuid.New()
	store := defaultStore(hotelID, 1)

	var capturedOrder database.CreateOrderParams
	createFn := store.createOrderFn
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		capturedOrder = arg
		return createFn(ctx, arg)
	}
	var capturedSeat database.SetSeatStatusParams
	store.setSeatStatusFn = func(ctx context.Context, arg database.SetSeatStatusParams) (database.Seat, error) {
		capturedSeat = arg
		return database.Seat{}, nil
	}

	svc, notify := newTestService(store)
	res, err := svc.Submit(context.Background(), SubmitRequest{
		HotelID:    hotelID,
		SeatNumber: 3,
		Actor:      Actor{ID: waiterID, Name: "Ram", Role: enum.RoleWaiter},
		Cart:       cartWith(t, testMenu(store, hotelID, 1), 1, 2, ""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Created {
		t.Error("expected a new order to be created")
	}
	if capturedOrder.Status != enum.OrderStatusPending {
		t.Errorf("status: got %v, want pending", capturedOrder.Status)
	}
	// 250 * 2 = 500
	if !numericEquals(capturedOrder.TotalAmount, "500.00") {
		t.Errorf("total: got %v, want 500.00", numericToDecimal(capturedOrder.TotalAmount))
	}
	if capturedOrder.WaiterName != "Ram" {
		t.Errorf("waiter_name: got %v, want Ram", capturedOrder.WaiterName)
	}
	if capturedOrder.ParcelNumber.Valid {
		t.Error("regular seat order must not carry a parcel number")
	}
	if capturedSeat.SeatNumber != 3 || capturedSeat.Status != enum.SeatStatusOccupied {
		t.Errorf("seat write: got %+v, want seat 3 occupied", capturedSeat)
	}
	if !notify.has("orders/INSERT") || !notify.has("seats/UPDATE") {
		t.Errorf("missing change events, got: %v", notify.events)
	}
}

func TestSubmit_VariantPriceSnapshot(t *testing.T) {
	hotelID := uuid.New()
	store := defaultStore(hotelID, 1)

	var capturedItem database.CreateOrderItemParams
	store.createOrderItemFn = func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
		capturedItem = arg
		return database.OrderItem{ID: 1, OrderID: arg.OrderID, Price: arg.Price}, nil
	}

	svc, _ := newTestService(store)
	_, err := svc.Submit(context.Background(), SubmitRequest{
		HotelID:    hotelID,
		SeatNumber: 3,
		Cart:       cartWith(t, testMenu(store, hotelID, 1), 1, 1, "Half"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !numericEquals(capturedItem.Price, "140.00") {
		t.Errorf("item price: got %v, want the Half variant's 140.00", numericToDecimal(capturedItem.Price))
	}
	if !capturedItem.VariantName.Valid || capturedItem.VariantName.String != "Half" {
		t.Errorf("variant_name: got %+v, want Half", capturedItem.VariantName)
	}
}

// =====================
// Append to active order
// =====================

func TestSubmit_AppendsToActiveSeatOrder(t *testing.T) {
	hotelID := uuid.New()
	store := defaultStore(hotelID, 1)
	store.getActiveOrderForSeatFn = func(ctx context.Context, arg database.GetActiveOrderForSeatParams) (database.Order, error) {
		return database.Order{
			ID:          7,
			HotelID:     hotelID,
			SeatNumber:  arg.SeatNumber,
			Status:      enum.OrderStatusPending,
			TotalAmount: makeNumeric("300.00"),
		}, nil
	}
	createCalled := false
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		createCalled = true
		return database.Order{}, errors.New("should not create")
	}
	var capturedTotal database.UpdateOrderTotalParams
	store.updateOrderTotalFn = func(ctx context.Context, arg database.UpdateOrderTotalParams) (database.Order, error) {
		capturedTotal = arg
		return database.Order{ID: arg.ID, HotelID: hotelID, TotalAmount: arg.TotalAmount}, nil
	}

	svc, _ := newTestService(store)
	res, err := svc.Submit(context.Background(), SubmitRequest{
		HotelID:    hotelID,
		SeatNumber: 3,
		Cart:       cartWith(t, testMenu(store, hotelID, 1), 1, 2, ""), // 500
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if createCalled {
		t.Error("must append to the active order, not create a new one")
	}
	if res.Created {
		t.Error("result should report an append")
	}
	// 300 + 500 = 800
	if capturedTotal.ID != 7 || !numericEquals(capturedTotal.TotalAmount, "800.00") {
		t.Errorf("total bump: got order %d total %v, want order 7 total 800.00",
			capturedTotal.ID, numericToDecimal(capturedTotal.TotalAmount))
	}
}

// =====================
// Parcel orders
// =====================

func TestSubmit_ParcelNumbering(t *testing.T) {
	hotelID := uuid.New()
	store := defaultStore(hotelID, 1)
	store.countParcelsSinceFn = func(ctx context.Context, arg database.CountParcelsSinceParams) (int64, error) {
		if !arg.Since.Equal(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)) {
			t.Errorf("parcel count window should start at last_opened_at, got %v", arg.Since)
		}
		return 4, nil
	}
	var capturedOrder database.CreateOrderParams
	createFn := store.createOrderFn
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		capturedOrder = arg
		return createFn(ctx, arg)
	}
	seatLookups := 0
	store.getActiveOrderForSeatFn = func(ctx context.Context, arg database.GetActiveOrderForSeatParams) (database.Order, error) {
		seatLookups++
		return database.Order{}, pgx.ErrNoRows
	}

	svc, _ := newTestService(store)
	res, err := svc.Submit(context.Background(), SubmitRequest{
		HotelID:    hotelID,
		SeatNumber: enum.ParcelSeatNumber,
		Cart:       cartWith(t, testMenu(store, hotelID, 1), 1, 1, ""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Created {
		t.Error("parcel submission without an order id must create a new order")
	}
	if seatLookups != 0 {
		t.Error("parcel seat must never reuse the seat's active order")
	}
	if !capturedOrder.ParcelNumber.Valid || capturedOrder.ParcelNumber.Int32 != 5 {
		t.Errorf("parcel_number: got %+v, want 5", capturedOrder.ParcelNumber)
	}
}

func TestSubmit_AppendsToSelectedParcel(t *testing.T) {
	hotelID := uuid.New()
	store := defaultStore(hotelID, 1)
	store.getOrderFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		if arg.ID != 9 {
			return database.Order{}, pgx.ErrNoRows
		}
		return database.Order{
			ID:          9,
			HotelID:     hotelID,
			SeatNumber:  enum.ParcelSeatNumber,
			Status:      enum.OrderStatusPreparing,
			TotalAmount: makeNumeric("100.00"),
		}, nil
	}

	svc, _ := newTestService(store)
	res, err := svc.Submit(context.Background(), SubmitRequest{
		HotelID:    hotelID,
		SeatNumber: enum.ParcelSeatNumber,
		OrderID:    9,
		Cart:       cartWith(t, testMenu(store, hotelID, 1), 1, 1, ""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created || res.Order.ID != 9 {
		t.Errorf("expected append to order 9, got created=%v id=%d", res.Created, res.Order.ID)
	}
}

func TestSubmit_SelectedOrderNotActive(t *testing.T) {
	hotelID := uuid.New()
	store := defaultStore(hotelID, 1)
	store.getOrderFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: arg.ID, HotelID: hotelID, Status: enum.OrderStatusCompleted}, nil
	}

	svc, _ := newTestService(store)
	_, err := svc.Submit(context.Background(), SubmitRequest{
		HotelID:    hotelID,
		SeatNumber: enum.ParcelSeatNumber,
		OrderID:    9,
		Cart:       cartWith(t, testMenu(store, hotelID, 1), 1, 1, ""),
	})
	if !errors.Is(err, ErrOrderNotActive) {
		t.Fatalf("expected ErrOrderNotActive, got: %v", err)
	}
}

// =====================
// Stock reservation during submission
// =====================

func TestSubmit_ReservesWeightedUnits(t *testing.T) {
	hotelID := uuid.New()
	store := defaultStore(hotelID, 1)
	var captured database.AdjustStockParams
	store.reserveStockFn = func(ctx context.Context, arg database.AdjustStockParams) (database.MenuItem, error) {
		captured = arg
		return database.MenuItem{ID: arg.ID}, nil
	}

	svc, _ := newTestService(store)
	_, err := svc.Submit(context.Background(), SubmitRequest{
		HotelID:    hotelID,
		SeatNumber: 3,
		Cart:       cartWith(t, testMenu(store, hotelID, 1), 1, 3, "Half"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 3 halves consume 1.5 stock units.
	if !numericEquals(captured.Units, "1.50") {
		t.Errorf("reserved units: got %v, want 1.50", numericToDecimal(captured.Units))
	}
}

func TestSubmit_StockFailureDoesNotFailOrder(t *testing.T) {
	hotelID := uuid.New()
	store := defaultStore(hotelID, 1)
	store.reserveStockFn = func(ctx context.Context, arg database.AdjustStockParams) (database.MenuItem, error) {
		return database.MenuItem{}, pgx.ErrNoRows // stock ran out under us
	}

	svc, _ := newTestService(store)
	res, err := svc.Submit(context.Background(), SubmitRequest{
		HotelID:    hotelID,
		SeatNumber: 3,
		Cart:       cartWith(t, testMenu(store, hotelID, 1), 1, 1, ""),
	})
	if err != nil {
		t.Fatalf("reservation failures must not fail the submission: %v", err)
	}
	if len(res.Items) != 1 {
		t.Errorf("the item should still be on the order, got %d items", len(res.Items))
	}
}

// =====================
// Parcel listing
// =====================

func TestActiveParcels_WaiterScoped(t *testing.T) {
	hotelID := uuid.New()
	waiterID := uuid.New()
	store := defaultStore(hotelID, 1)
	var captured database.ListActiveParcelsParams
	store.listActiveParcelsFn = func(ctx context.Context, arg database.ListActiveParcelsParams) ([]database.Order, error) {
		captured = arg
		return nil, nil
	}
	svc, _ := newTestService(store)

	if _, err := svc.ActiveParcels(context.Background(), hotelID, Actor{ID: waiterID, Role: enum.RoleWaiter}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !captured.WaiterID.Valid || uuid.UUID(captured.WaiterID.Bytes) != waiterID {
		t.Errorf("waiter listing must be scoped to the waiter, got %+v", captured.WaiterID)
	}

	if _, err := svc.ActiveParcels(context.Background(), hotelID, Actor{ID: uuid.New(), Role: enum.RoleAdmin}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.WaiterID.Valid {
		t.Error("admin listing must not be scoped to a waiter")
	}
}
