package router

import (
	"net/http"

	"github.com/annapurna-pos/api/internal/config"
	"github.com/annapurna-pos/api/internal/database"
	"github.com/annapurna-pos/api/internal/enum"
	"github.com/annapurna-pos/api/internal/handler"
	mw "github.com/annapurna-pos/api/internal/middleware"
	"github.com/annapurna-pos/api/internal/service"
	"github.com/annapurna-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New wires every route. Authentication and hotel scoping are applied per
// group; staff management and reports are additionally admin-only.
func New(cfg *config.Config, queries *database.Queries, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "https://*.annapurna-pos.com"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public auth routes
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Change feed (authenticates internally via query param)
	r.Get("/ws/hotels/{hid}/events", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	orderService := service.NewOrderService(queries, hub)

	// Hotel-scoped routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/hotels/{hid}", func(r chi.Router) {
			r.Use(mw.RequireHotel)

			hotelHandler := handler.NewHotelHandler(queries, hub)
			hotelHandler.RegisterRoutes(r)

			seatHandler := handler.NewSeatHandler(queries, orderService, hub)
			r.Route("/seats", seatHandler.RegisterRoutes)

			categoryHandler := handler.NewCategoryHandler(queries, hub)
			r.Route("/categories", categoryHandler.RegisterRoutes)

			menuHandler := handler.NewMenuHandler(queries, hub)
			r.Route("/menu", menuHandler.RegisterRoutes)

			orderHandler := handler.NewOrderHandler(queries, orderService)
			r.Route("/orders", orderHandler.RegisterRoutes)

			// Admin-only
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleAdmin))

				staffHandler := handler.NewStaffHandler(queries)
				r.Route("/staff", staffHandler.RegisterRoutes)

				reportsHandler := handler.NewReportsHandler(queries, cfg.TaxRate)
				r.Route("/reports", reportsHandler.RegisterRoutes)
			})
		})
	})

	return r
}
