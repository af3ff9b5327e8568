package service

import (
	"context"
	"fmt"

	"github.com/annapurna-pos/api/internal/database"
	"github.com/annapurna-pos/api/internal/enum"
	"github.com/google/uuid"
)

// SeatCorrection is one seat whose stored status disagrees with the orders
// table and the status it should have.
type SeatCorrection struct {
	SeatNumber int32
	Status     string
}

// ReconcileSeats derives each seat's true status from the active orders and
// returns the seats whose stored status is wrong. The parcel sentinel is
// occupied while any parcel order is active.
func ReconcileSeats(seats []database.Seat, activeOrders []database.Order) []SeatCorrection {
	occupied := make(map[int32]bool, len(activeOrders))
	for _, o := range activeOrders {
		if enum.IsActiveOrderStatus(o.Status) {
			occupied[o.SeatNumber] = true
		}
	}

	var corrections []SeatCorrection
	for _, seat := range seats {
		want := enum.SeatStatusAvailable
		if occupied[seat.SeatNumber] {
			want = enum.SeatStatusOccupied
		}
		if seat.Status != want {
			corrections = append(corrections, SeatCorrection{SeatNumber: seat.SeatNumber, Status: want})
		}
	}
	return corrections
}

// SyncSeatStatuses repairs seat statuses that drifted from the orders table
// (crashed submissions, direct DB edits). Returns how many seats were
// corrected.
func (s *OrderService) SyncSeatStatuses(ctx context.Context, hotelID uuid.UUID) (int, error) {
	seats, err := s.store.ListSeatsByHotel(ctx, hotelID)
	if err != nil {
		return 0, fmt.Errorf("list seats: %w", err)
	}
	orders, err := s.store.ListOrdersByStatuses(ctx, database.ListOrdersByStatusesParams{
		HotelID:  hotelID,
		Statuses: enum.ActiveOrderStatuses,
	})
	if err != nil {
		return 0, fmt.Errorf("list active orders: %w", err)
	}

	corrections := ReconcileSeats(seats, orders)
	for _, c := range corrections {
		if _, err := s.store.SetSeatStatus(ctx, database.SetSeatStatusParams{
			HotelID:    hotelID,
			SeatNumber: c.SeatNumber,
			Status:     c.Status,
		}); err != nil {
			return 0, fmt.Errorf("correct seat %d: %w", c.SeatNumber, err)
		}
	}
	if len(corrections) > 0 {
		s.notify.BroadcastChange(hotelID, "seats", "UPDATE")
	}
	return len(corrections), nil
}
