package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/annapurna-pos/api/internal/database"
	"github.com/annapurna-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// HotelStore defines the database methods needed by hotel handlers.
type HotelStore interface {
	GetHotel(ctx context.Context, id uuid.UUID) (database.Hotel, error)
	SetHotelOpen(ctx context.Context, arg database.SetHotelOpenParams) (database.Hotel, error)
}

// HotelHandler exposes the hotel record and its open/closed switch.
type HotelHandler struct {
	store  HotelStore
	notify service.Notifier
}

func NewHotelHandler(store HotelStore, notify service.Notifier) *HotelHandler {
	return &HotelHandler{store: store, notify: notify}
}

func (h *HotelHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Patch("/open", h.SetOpen)
}

type setOpenRequest struct {
	IsOpen bool `json:"is_open"`
}

type hotelResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	IsOpen       bool      `json:"is_open"`
	LastOpenedAt time.Time `json:"last_opened_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func toHotelResponse(h database.Hotel) hotelResponse {
	return hotelResponse{
		ID:           h.ID,
		Name:         h.Name,
		Slug:         h.Slug,
		IsOpen:       h.IsOpen,
		LastOpenedAt: h.LastOpenedAt,
		CreatedAt:    h.CreatedAt,
	}
}

func (h *HotelHandler) Get(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	hotel, err := h.store.GetHotel(r.Context(), hotelID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "hotel not found"})
			return
		}
		log.Printf("ERROR: get hotel: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toHotelResponse(hotel))
}

// SetOpen flips the shop switch. Only the closed-to-open transition stamps
// last_opened_at, which restarts parcel numbering for the new open window.
func (h *HotelHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	var req setOpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	current, err := h.store.GetHotel(r.Context(), hotelID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "hotel not found"})
			return
		}
		log.Printf("ERROR: get hotel: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	hotel, err := h.store.SetHotelOpen(r.Context(), database.SetHotelOpenParams{
		ID:              hotelID,
		IsOpen:          req.IsOpen,
		StampLastOpened: req.IsOpen && !current.IsOpen,
	})
	if err != nil {
		log.Printf("ERROR: set hotel open: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.notify.BroadcastChange(hotelID, "hotels", "UPDATE")
	writeJSON(w, http.StatusOK, toHotelResponse(hotel))
}
