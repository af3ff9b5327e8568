package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/annapurna-pos/api/internal/database"
	"github.com/annapurna-pos/api/internal/enum"
	"github.com/annapurna-pos/api/internal/middleware"
	"github.com/annapurna-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OrderStore defines the read-side database methods order handlers use
// directly; all writes go through the order service.
type OrderStore interface {
	ListOrdersByStatuses(ctx context.Context, arg database.ListOrdersByStatusesParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error)
	ListMenuItemsByHotel(ctx context.Context, hotelID uuid.UUID) ([]database.MenuItem, error)
}

type OrderHandler struct {
	store  OrderStore
	orders *service.OrderService
}

func NewOrderHandler(store OrderStore, orders *service.OrderService) *OrderHandler {
	return &OrderHandler{store: store, orders: orders}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/parcels", h.ListParcels)
	r.Post("/", h.Submit)
	r.Post("/{id}/serve", h.MarkServed)
	r.Post("/{id}/close", h.Close)
	r.Post("/{id}/pay", h.MarkPaid)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/items/{itemID}/serve", h.MarkItemServed)
	r.Delete("/{id}/items/{itemID}", h.CancelItem)
}

// --- Request / Response types ---

type submitOrderRequest struct {
	SeatNumber int32             `json:"seat_number"`
	OrderID    int64             `json:"order_id,omitempty"`
	Items      []submitOrderItem `json:"items"`
}

type submitOrderItem struct {
	MenuItemID  int64  `json:"menu_item_id"`
	Quantity    int32  `json:"quantity"`
	VariantName string `json:"variant_name,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type orderItemResponse struct {
	ID          int64   `json:"id"`
	MenuItemID  int64   `json:"menu_item_id"`
	MenuItem    string  `json:"menu_item_name,omitempty"`
	Quantity    int32   `json:"quantity"`
	Price       string  `json:"price"`
	Status      string  `json:"status"`
	VariantName *string `json:"variant_name"`
	Notes       *string `json:"notes"`
}

type orderResponse struct {
	ID           int64               `json:"id"`
	SeatNumber   int32               `json:"seat_number"`
	Status       string              `json:"status"`
	TotalAmount  string              `json:"total_amount"`
	WaiterID     *uuid.UUID          `json:"waiter_id"`
	WaiterName   string              `json:"waiter_name"`
	ParcelNumber *int32              `json:"parcel_number"`
	CreatedAt    time.Time           `json:"created_at"`
	Items        []orderItemResponse `json:"items,omitempty"`
}

func toOrderItemResponse(i database.OrderItem, names map[int64]string) orderItemResponse {
	return orderItemResponse{
		ID:          i.ID,
		MenuItemID:  i.MenuItemID,
		MenuItem:    names[i.MenuItemID],
		Quantity:    i.Quantity,
		Price:       numericString(i.Price),
		Status:      i.Status,
		VariantName: textPtr(i.VariantName),
		Notes:       textPtr(i.Notes),
	}
}

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:           o.ID,
		SeatNumber:   o.SeatNumber,
		Status:       o.Status,
		TotalAmount:  numericString(o.TotalAmount),
		WaiterID:     uuidPtr(o.WaiterID),
		WaiterName:   o.WaiterName,
		ParcelNumber: int4Ptr(o.ParcelNumber),
		CreatedAt:    o.CreatedAt,
	}
}

// --- Handlers ---

// List returns the order board: every active order plus the completed ones
// awaiting payment, items attached.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	statuses := append([]string{}, enum.ActiveOrderStatuses...)
	statuses = append(statuses, enum.OrderStatusCompleted)
	orders, err := h.store.ListOrdersByStatuses(r.Context(), database.ListOrdersByStatusesParams{
		HotelID:  hotelID,
		Statuses: statuses,
	})
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	names, err := h.menuNames(r.Context(), hotelID)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
		items, err := h.store.ListOrderItemsByOrder(r.Context(), o.ID)
		if err != nil {
			log.Printf("ERROR: list order items: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp[i].Items = make([]orderItemResponse, len(items))
		for j, item := range items {
			resp[i].Items[j] = toOrderItemResponse(item, names)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListParcels returns the caller's active takeaway orders; admins see all.
func (h *OrderHandler) ListParcels(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	parcels, err := h.orders.ActiveParcels(r.Context(), hotelID, actorFromRequest(r))
	if err != nil {
		log.Printf("ERROR: list parcels: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(parcels))
	for i, o := range parcels {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Submit places a cart of items on a seat.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	var req submitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.SeatNumber < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid seat number"})
		return
	}

	items, err := h.store.ListMenuItemsByHotel(r.Context(), hotelID)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	menu := service.MenuFromItems(items)

	cart := service.NewCart()
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be positive"})
			return
		}
		if err := cart.UpdateQuantity(menu, line.MenuItemID, line.Quantity, line.VariantName); err != nil {
			writeServiceError(w, err)
			return
		}
		if line.Notes != "" {
			cart.SetNote(service.CartKey{MenuItemID: line.MenuItemID, Variant: line.VariantName}, line.Notes)
		}
	}

	result, err := h.orders.Submit(r.Context(), service.SubmitRequest{
		HotelID:    hotelID,
		SeatNumber: req.SeatNumber,
		OrderID:    req.OrderID,
		Actor:      actorFromRequest(r),
		Cart:       cart,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := toOrderResponse(result.Order)
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, item := range result.Items {
		resp.Items[i] = toOrderItemResponse(item, nil)
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

func (h *OrderHandler) MarkServed(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.MarkServed)
}

func (h *OrderHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Close)
}

func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.MarkPaid)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Cancel)
}

func (h *OrderHandler) MarkItemServed(w http.ResponseWriter, r *http.Request) {
	h.itemTransition(w, r, h.orders.MarkItemServed)
}

func (h *OrderHandler) CancelItem(w http.ResponseWriter, r *http.Request) {
	h.itemTransition(w, r, h.orders.CancelItem)
}

// --- Helpers ---

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, hotelID uuid.UUID, orderID int64) (database.Order, error)) {

	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}
	orderID, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := fn(r.Context(), hotelID, orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) itemTransition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, hotelID uuid.UUID, orderID, itemID int64) (database.Order, error)) {

	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}
	orderID, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}
	itemID, ok := int64Param(r, "itemID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order item ID"})
		return
	}

	order, err := fn(r.Context(), hotelID, orderID, itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) menuNames(ctx context.Context, hotelID uuid.UUID) (map[int64]string, error) {
	items, err := h.store.ListMenuItemsByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(items))
	for _, item := range items {
		names[item.ID] = item.Name
	}
	return names, nil
}

func actorFromRequest(r *http.Request) service.Actor {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return service.Actor{}
	}
	return service.Actor{ID: claims.UserID, Name: claims.FullName, Role: claims.Role}
}

// writeServiceError maps order service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var stockErr *service.InsufficientStockError
	var unservedErr *service.UnservedItemsError
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrOrderItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrMenuItemNotFound):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrShopClosed),
		errors.Is(err, service.ErrOrderNotActive),
		errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrNoItems),
		errors.Is(err, service.ErrServedWithItems),
		errors.As(err, &stockErr),
		errors.As(err, &unservedErr):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: order operation: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
