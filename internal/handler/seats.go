package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/annapurna-pos/api/internal/database"
	"github.com/annapurna-pos/api/internal/enum"
	"github.com/annapurna-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SeatStore defines the database methods needed by seat handlers.
type SeatStore interface {
	ListSeatsByHotel(ctx context.Context, hotelID uuid.UUID) ([]database.Seat, error)
	EnsureSeat(ctx context.Context, arg database.EnsureSeatParams) error
	EnsureSeatsUpTo(ctx context.Context, arg database.EnsureSeatsUpToParams) error
	DeleteSeatsAbove(ctx context.Context, arg database.DeleteSeatsAboveParams) error
}

// SeatHandler manages the floor layout and its occupancy cache.
type SeatHandler struct {
	store  SeatStore
	orders *service.OrderService
	notify service.Notifier
}

func NewSeatHandler(store SeatStore, orders *service.OrderService, notify service.Notifier) *SeatHandler {
	return &SeatHandler{store: store, orders: orders, notify: notify}
}

func (h *SeatHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/count", h.SetCount)
	r.Post("/reconcile", h.Reconcile)
}

type setSeatCountRequest struct {
	Count int32 `json:"count"`
}

type seatResponse struct {
	SeatNumber int32  `json:"seat_number"`
	Status     string `json:"status"`
}

// List returns the floor including the parcel sentinel. A tenant created
// before the sentinel existed gets a synthetic available row.
func (h *SeatHandler) List(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	seats, err := h.store.ListSeatsByHotel(r.Context(), hotelID)
	if err != nil {
		log.Printf("ERROR: list seats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]seatResponse, 0, len(seats)+1)
	hasSentinel := false
	for _, s := range seats {
		if s.SeatNumber == enum.ParcelSeatNumber {
			hasSentinel = true
		}
		resp = append(resp, seatResponse{SeatNumber: s.SeatNumber, Status: s.Status})
	}
	if !hasSentinel {
		resp = append([]seatResponse{{SeatNumber: enum.ParcelSeatNumber, Status: enum.SeatStatusAvailable}}, resp...)
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetCount resizes the floor to exactly count numbered seats. Growing adds
// missing rows; shrinking drops the surplus, never the parcel sentinel.
func (h *SeatHandler) SetCount(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	var req setSeatCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Count < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "count must not be negative"})
		return
	}

	if err := h.store.EnsureSeat(r.Context(), database.EnsureSeatParams{
		HotelID:    hotelID,
		SeatNumber: enum.ParcelSeatNumber,
	}); err != nil {
		log.Printf("ERROR: ensure parcel seat: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if req.Count > 0 {
		if err := h.store.EnsureSeatsUpTo(r.Context(), database.EnsureSeatsUpToParams{
			HotelID: hotelID,
			Count:   req.Count,
		}); err != nil {
			log.Printf("ERROR: grow seats: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	}
	if err := h.store.DeleteSeatsAbove(r.Context(), database.DeleteSeatsAboveParams{
		HotelID: hotelID,
		Count:   req.Count,
	}); err != nil {
		log.Printf("ERROR: shrink seats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.notify.BroadcastChange(hotelID, "seats", "UPDATE")
	h.List(w, r)
}

// Reconcile re-derives every seat status from the orders table.
func (h *SeatHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	corrected, err := h.orders.SyncSeatStatuses(r.Context(), hotelID)
	if err != nil {
		log.Printf("ERROR: reconcile seats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"corrected": corrected})
}
