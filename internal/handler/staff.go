package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/annapurna-pos/api/internal/database"
	"github.com/annapurna-pos/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// StaffStore defines the database methods needed by staff handlers.
type StaffStore interface {
	ListStaffByHotel(ctx context.Context, hotelID uuid.UUID) ([]database.Profile, error)
	CreateProfile(ctx context.Context, arg database.CreateProfileParams) (database.Profile, error)
	RepairProfile(ctx context.Context, arg database.RepairProfileParams) (database.Profile, error)
	DeleteProfile(ctx context.Context, arg database.DeleteProfileParams) (uuid.UUID, error)
}

// StaffHandler manages waiter and kitchen accounts. Admin-only routes.
type StaffHandler struct {
	store StaffStore
}

func NewStaffHandler(store StaffStore) *StaffHandler {
	return &StaffHandler{store: store}
}

func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Repair)
	r.Delete("/{id}", h.Delete)
}

type createStaffRequest struct {
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type repairStaffRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	staff, err := h.store.ListStaffByHotel(r.Context(), hotelID)
	if err != nil {
		log.Printf("ERROR: list staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]profileResponse, len(staff))
	for i, p := range staff {
		resp[i] = toProfileResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}

	var req createStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.FullName == "" || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "full_name, username and password are required"})
		return
	}
	if req.Role != enum.RoleWaiter && req.Role != enum.RoleKitchen {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be waiter or kitchen"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	profile, err := h.store.CreateProfile(r.Context(), database.CreateProfileParams{
		HotelID:      hotelID,
		Role:         req.Role,
		FullName:     req.FullName,
		Username:     req.Username,
		PasswordHash: string(hash),
	})
	if err != nil {
		log.Printf("ERROR: create staff: %v", err)
		writeJSON(w, http.StatusConflict, map[string]string{"error": "username already in use"})
		return
	}

	writeJSON(w, http.StatusCreated, toProfileResponse(profile))
}

// Repair fixes a staff account whose name or username drifted (typo at
// creation, marriage rename). Passwords are never repaired here.
func (h *StaffHandler) Repair(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}
	staffID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	var req repairStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.FullName == "" || req.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "full_name and username are required"})
		return
	}

	profile, err := h.store.RepairProfile(r.Context(), database.RepairProfileParams{
		ID:       staffID,
		HotelID:  hotelID,
		FullName: req.FullName,
		Username: req.Username,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff member not found"})
			return
		}
		log.Printf("ERROR: repair staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := hotelIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hotel ID"})
		return
	}
	staffID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	if _, err := h.store.DeleteProfile(r.Context(), database.DeleteProfileParams{
		ID:      staffID,
		HotelID: hotelID,
	}); err != nil {
		// Admin accounts match no row and land here too.
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff member not found"})
			return
		}
		log.Printf("ERROR: delete staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
