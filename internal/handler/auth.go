package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/annapurna-pos/api/internal/auth"
	"github.com/annapurna-pos/api/internal/database"
	"github.com/annapurna-pos/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultSeatCount = 10

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	CreateHotel(ctx context.Context, arg database.CreateHotelParams) (database.Hotel, error)
	CreateProfile(ctx context.Context, arg database.CreateProfileParams) (database.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (database.Profile, error)
	GetProfileByID(ctx context.Context, id uuid.UUID) (database.Profile, error)
	EnsureSeat(ctx context.Context, arg database.EnsureSeatParams) error
	EnsureSeatsUpTo(ctx context.Context, arg database.EnsureSeatsUpToParams) error
}

// AuthHandler handles registration and authentication endpoints.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string
}

func NewAuthHandler(store AuthStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
}

// --- Request / Response types ---

type registerRequest struct {
	HotelName string `json:"hotel_name"`
	FullName  string `json:"full_name"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	SeatCount int32  `json:"seat_count"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	User         profileResponse `json:"user"`
}

type profileResponse struct {
	ID       uuid.UUID `json:"id"`
	HotelID  uuid.UUID `json:"hotel_id"`
	Role     string    `json:"role"`
	FullName string    `json:"full_name"`
	Username string    `json:"username"`
}

func toProfileResponse(p database.Profile) profileResponse {
	return profileResponse{
		ID:       p.ID,
		HotelID:  p.HotelID,
		Role:     p.Role,
		FullName: p.FullName,
		Username: p.Username,
	}
}

// --- Handlers ---

// Register creates a hotel tenant with its admin account, the parcel seat
// and the initial run of numbered seats.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.HotelName == "" || req.FullName == "" || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hotel_name, full_name, username and password are required"})
		return
	}
	if req.SeatCount <= 0 {
		req.SeatCount = defaultSeatCount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	hotel, err := h.store.CreateHotel(r.Context(), database.CreateHotelParams{
		Name: req.HotelName,
		Slug: slugify(req.HotelName),
	})
	if err != nil {
		log.Printf("ERROR: create hotel: %v", err)
		writeJSON(w, http.StatusConflict, map[string]string{"error": "hotel name already in use"})
		return
	}

	admin, err := h.store.CreateProfile(r.Context(), database.CreateProfileParams{
		HotelID:      hotel.ID,
		Role:         enum.RoleAdmin,
		FullName:     req.FullName,
		Username:     req.Username,
		PasswordHash: string(hash),
	})
	if err != nil {
		log.Printf("ERROR: create admin profile: %v", err)
		writeJSON(w, http.StatusConflict, map[string]string{"error": "username already in use"})
		return
	}

	if err := h.store.EnsureSeat(r.Context(), database.EnsureSeatParams{
		HotelID:    hotel.ID,
		SeatNumber: enum.ParcelSeatNumber,
	}); err != nil {
		log.Printf("ERROR: create parcel seat: %v", err)
	}
	if err := h.store.EnsureSeatsUpTo(r.Context(), database.EnsureSeatsUpToParams{
		HotelID: hotel.ID,
		Count:   req.SeatCount,
	}); err != nil {
		log.Printf("ERROR: create seats: %v", err)
	}

	h.respondWithTokens(w, http.StatusCreated, admin)
}

// Login authenticates by username and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	profile, err := h.store.GetProfileByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		log.Printf("ERROR: lookup profile: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	h.respondWithTokens(w, http.StatusOK, profile)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh_token is required"})
		return
	}

	// Refresh tokens carry only RegisteredClaims with Subject = profile ID.
	token, err := jwt.ParseWithClaims(req.RefreshToken, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	profileID, err := uuid.Parse(claims.Subject)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	profile, err := h.store.GetProfileByID(r.Context(), profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not found"})
			return
		}
		log.Printf("ERROR: lookup profile: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.respondWithTokens(w, http.StatusOK, profile)
}

// --- Helpers ---

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, status int, profile database.Profile) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, profile.ID, profile.HotelID, profile.Role, profile.FullName)
	if err != nil {
		log.Printf("ERROR: generate token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, profile.ID)
	if err != nil {
		log.Printf("ERROR: generate refresh token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, status, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toProfileResponse(profile),
	})
}
