package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/annapurna-pos/api/internal/database"
	"github.com/annapurna-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
type MenuStore interface {
	ListMenuItemsByHotel(ctx context.Context, hotelID uuid.UUID) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, arg database.DeleteMenuItemParams) (int64, error)
}

type MenuHandler struct {
	store  MenuStore
	notify service.Notifier
}

func NewMenuHandler(store MenuStore, notify service.Notifier) *MenuHandler {
	return &MenuHandler{store: store, notify: notify}
}

func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type variantPayload struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type menuItemRequest struct {
	CategoryID     *int64           `json:"category_id"`
	Name           string           `json:"name"`
	Price          string           `json:"price"`
	IsVeg          bool             `json:"is_veg"`
	Available      *bool            `json:"available"`
	Variants       []variantPayload `json:"variants"`
	TrackInventory bool             `json:"track_inventory"`
	StockCount     string           `json:"stock_count"`
}

type menuItemResponse struct {
	ID             int64            `json:"id"`
	CategoryID     *int64           `json:"category_id"`
	Name           string           `json:"name"`
	Price          string           `json:"price"`
	IsVeg          bool             `json:"is_veg"`
	Available      bool             `json:"available"`
	Variants       []variantPayload `json:"variants"`
	TrackInventory bool             `json:"track_inventory"`
	StockCount     string           `json:"stock_count"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	variants := make([]variantPayload, len(m.Variants))
	for i, v := range m.Variants {
		variants[i] = variantPayload{Name: v.Name, Price: v.Price.StringFixed(2)}
	}
	return menuItemResponse{
		ID:             m.ID,
		CategoryID:     int8Ptr(m.CategoryID),
		Name:           m.Name,
		Price:          numericString(m.Price),
		IsVeg:          m.IsVeg,
		Available:      m.Available,
		Variants:       variants,
		TrackInventory: m.TrackInventory,
		StockCount:     numericString(m.StockCount),
	}
}

// parseMenuItemRequest validates the payload and resolves the defaults: the
// base price falls back to the first variant's price, and a tracked item's
// availability follows its stock.
func parseMenuItemRequest(req menuItemRequest) (database.CreateMenuItemParams, string) {
	if req.Name == "" {
		return database.CreateMenuItemParams{}, "name is required"
	}

	variants := make([]database.Variant, len(req.Variants))
	for i, v := range req.Variants {
		if v.Name == "" {
			return database.CreateMenuItemParams{}, "variant name is required"
		}
		price, err := decimal.NewFromString(v.Price)
		if err != nil || price.IsNegative() {
			return database.CreateMenuItemParams{}, "invalid variant price"
		}
		variants[i] = database.Variant{Name: v.Name, Price: price}
	}

	var price decimal.Decimal
	switch {
	case req.Price != "":
		var err error
		price, err = decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			return database.CreateMenuItemParams{}, "invalid price"
		}
	case len(variants) > 0:
		price = variants[0].Price
	default:
		return database.CreateMenuItemParams{}, "price or variants are required"
	}

	stock := decimal.Zero
	if req.StockCount != "" {
		var err error
		stock, err = decimal.NewFromString(req.StockCount)
		if err != nil || stock.IsNegative() {
			return database.CreateMenuItemParams{}, "invalid stock_count"
		}
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	if req.TrackInventory {
		available = available && stock.IsPositive()
	}

	var categoryID pgtype.Int8
	if req.CategoryID != nil {
		categoryID = pgtype.Int8{Int64: *req.CategoryID, Valid: true}
	}

	return database.CreateMenuItemParams{
		CategoryID:     categoryID,
		Name:           req.Name,
		Price:          decimalToNumeric(price),
		IsVeg:          req.IsVeg,
		Available:      available,
		Variants:       variants,
		TrackInventory: req.TrackInventory,
		StockCount:     decimalToNumeric(stock),
	}, ""
}

// --- Handlers ---

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	items, err := h.store.ListMenuItemsByHotel(r.Context(), hotelID)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, msg := parseMenuItemRequest(req)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	params.HotelID = hotelID

	item, err := h.store.CreateMenuItem(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.notify.BroadcastChange(hotelID, "menu_items", "INSERT")
	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}
	itemID, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, msg := parseMenuItemRequest(req)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:             itemID,
		HotelID:        hotelID,
		CategoryID:     params.CategoryID,
		Name:           params.Name,
		Price:          params.Price,
		IsVeg:          params.IsVeg,
		Available:      params.Available,
		Variants:       params.Variants,
		TrackInventory: params.TrackInventory,
		StockCount:     params.StockCount,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.notify.BroadcastChange(hotelID, "menu_items", "UPDATE")
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}
	itemID, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	if _, err := h.store.DeleteMenuItem(r.Context(), database.DeleteMenuItemParams{
		ID:      itemID,
		HotelID: hotelID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.notify.BroadcastChange(hotelID, "menu_items", "DELETE")
	w.WriteHeader(http.StatusNoContent)
}
