package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annapurna-pos/api/internal/config"
	"github.com/annapurna-pos/api/internal/database"
	"github.com/annapurna-pos/api/internal/router"
	"github.com/annapurna-pos/api/internal/service"
	"github.com/annapurna-pos/api/internal/ws"
	"github.com/annapurna-pos/api/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reconcileInterval is how often seat statuses are re-derived from the
// orders table. Seat writes outside transactions can drift; see
// OrderService.SyncSeatStatuses.
const reconcileInterval = 5 * time.Minute

func main() {
	cfg := config.Load()

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	queries := database.New(pool)

	hub := ws.NewHub()
	go hub.Run()

	go runSeatReconciler(ctx, queries, hub)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, queries, hub),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: shutdown: %v", err)
	}
}

func runMigrations(databaseURL string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// runSeatReconciler periodically repairs seat occupancy for every hotel.
func runSeatReconciler(ctx context.Context, queries *database.Queries, hub *ws.Hub) {
	svc := service.NewOrderService(queries, hub)
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		hotelIDs, err := queries.ListHotelIDs(ctx)
		if err != nil {
			log.Printf("ERROR: list hotels for reconcile: %v", err)
			continue
		}
		for _, id := range hotelIDs {
			corrected, err := svc.SyncSeatStatuses(ctx, id)
			if err != nil {
				log.Printf("ERROR: reconcile seats for hotel %s: %v", id, err)
				continue
			}
			if corrected > 0 {
				log.Printf("reconciled %d seat(s) for hotel %s", corrected, id)
			}
		}
	}
}
