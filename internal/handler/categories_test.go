package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/annapurna-pos/api/internal/database"
	"github.com/annapurna-pos/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Mock store ---

type mockCategoryStore struct {
	categories map[int64]database.Category
	nextID     int64
}

func newMockCategoryStore() *mockCategoryStore {
	return &mockCategoryStore{categories: make(map[int64]database.Category), nextID: 1}
}

func (m *mockCategoryStore) ListCategoriesByHotel(_ context.Context, hotelID uuid.UUID) ([]database.Category, error) {
	var result []database.Category
	for _, c := range m.categories {
		if c.HotelID == hotelID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockCategoryStore) CreateCategory(_ context.Context, arg database.CreateCategoryParams) (database.Category, error) {
	c := database.Category{
		ID:      m.nextID,
		HotelID: arg.HotelID,
		Name:    arg.Name,
		Slug:    arg.Slug,
	}
	m.nextID++
	m.categories[c.ID] = c
	return c, nil
}

func (m *mockCategoryStore) DeleteCategory(_ context.Context, arg database.DeleteCategoryParams) (int64, error) {
	c, ok := m.categories[arg.ID]
	if !ok || c.HotelID != arg.HotelID {
		return 0, pgx.ErrNoRows
	}
	delete(m.categories, arg.ID)
	return c.ID, nil
}

func setupCategoryRouter(store *mockCategoryStore, notify *mockNotifier) *chi.Mux {
	h := handler.NewCategoryHandler(store, notify)
	r := chi.NewRouter()
	r.Route("/hotels/{hid}/categories", h.RegisterRoutes)
	return r
}

// =====================
// List
// =====================

func TestCategoryList_Empty(t *testing.T) {
	store := newMockCategoryStore()
	router := setupCategoryRouter(store, &mockNotifier{})

	rr := doRequest(t, router, "GET", "/hotels/"+uuid.New().String()+"/categories", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := decodeListResponse(t, rr); len(resp) != 0 {
		t.Errorf("expected empty list, got %d items", len(resp))
	}
}

func TestCategoryList_ScopedToHotel(t *testing.T) {
	store := newMockCategoryStore()
	hotelID := uuid.New()
	otherHotelID := uuid.New()
	store.categories[1] = database.Category{ID: 1, HotelID: hotelID, Name: "Mains", Slug: "mains"}
	store.categories[2] = database.Category{ID: 2, HotelID: otherHotelID, Name: "Drinks", Slug: "drinks"}

	router := setupCategoryRouter(store, &mockNotifier{})
	rr := doRequest(t, router, "GET", "/hotels/"+hotelID.String()+"/categories", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeListResponse(t, rr)
	if len(resp) != 1 {
		t.Fatalf("expected 1 category, got %d", len(resp))
	}
	if resp[0]["name"] != "Mains" {
		t.Errorf("name: got %v, want Mains", resp[0]["name"])
	}
}

func TestCategoryList_InvalidHotelID(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore(), &mockNotifier{})

	rr := doRequest(t, router, "GET", "/hotels/not-a-uuid/categories", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// =====================
// Create
// =====================

func TestCategoryCreate_Valid(t *testing.T) {
	store := newMockCategoryStore()
	notify := &mockNotifier{}
	router := setupCategoryRouter(store, notify)
	hotelID := uuid.New()

	rr := doRequest(t, router, "POST", "/hotels/"+hotelID.String()+"/categories", map[string]interface{}{
		"name": "Tandoori Specials",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["name"] != "Tandoori Specials" {
		t.Errorf("name: got %v, want Tandoori Specials", resp["name"])
	}
	if resp["slug"] != "tandoori-specials" {
		t.Errorf("slug: got %v, want tandoori-specials", resp["slug"])
	}
	if !notify.has("categories/INSERT") {
		t.Error("expected categories/INSERT broadcast")
	}
}

func TestCategoryCreate_MissingName(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore(), &mockNotifier{})

	rr := doRequest(t, router, "POST", "/hotels/"+uuid.New().String()+"/categories", map[string]interface{}{})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if resp := decodeResponse(t, rr); resp["error"] != "name is required" {
		t.Errorf("error: got %v, want 'name is required'", resp["error"])
	}
}

func TestCategoryCreate_InvalidBody(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore(), &mockNotifier{})

	rr := doRequest(t, router, "POST", "/hotels/"+uuid.New().String()+"/categories", "not json")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// =====================
// Delete
// =====================

func TestCategoryDelete_Valid(t *testing.T) {
	store := newMockCategoryStore()
	notify := &mockNotifier{}
	hotelID := uuid.New()
	store.categories[7] = database.Category{ID: 7, HotelID: hotelID, Name: "Old", Slug: "old"}

	router := setupCategoryRouter(store, notify)
	rr := doRequest(t, router, "DELETE", "/hotels/"+hotelID.String()+"/categories/7", nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}
	if _, exists := store.categories[7]; exists {
		t.Error("expected category to be deleted")
	}
	if !notify.has("categories/DELETE") {
		t.Error("expected categories/DELETE broadcast")
	}
}

func TestCategoryDelete_NotFound(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore(), &mockNotifier{})

	rr := doRequest(t, router, "DELETE", "/hotels/"+uuid.New().String()+"/categories/99", nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCategoryDelete_WrongHotel(t *testing.T) {
	store := newMockCategoryStore()
	hotelID := uuid.New()
	store.categories[7] = database.Category{ID: 7, HotelID: hotelID, Name: "Mains", Slug: "mains"}

	router := setupCategoryRouter(store, &mockNotifier{})
	rr := doRequest(t, router, "DELETE", "/hotels/"+uuid.New().String()+"/categories/7", nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
	if _, exists := store.categories[7]; !exists {
		t.Error("category in another hotel must not be deleted")
	}
}

func TestCategoryDelete_InvalidID(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore(), &mockNotifier{})

	rr := doRequest(t, router, "DELETE", "/hotels/"+uuid.New().String()+"/categories/not-a-number", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
