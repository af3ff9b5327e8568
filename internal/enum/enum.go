package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusServed    = "served"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
	OrderStatusPaid      = "paid"
)

// ActiveOrderStatuses are the non-terminal, not-yet-billed statuses. A seat
// with an order in one of these is considered occupied; pending and
// preparing are treated equivalently by every read query.
var ActiveOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusServed,
}

const (
	OrderItemStatusPending = "pending"
	OrderItemStatusServed  = "served"
)

const (
	SeatStatusAvailable = "available"
	SeatStatusOccupied  = "occupied"
)

// ── Roles (CHECK constrained in DB) ──

const (
	RoleAdmin   = "admin"
	RoleWaiter  = "waiter"
	RoleKitchen = "kitchen"
)

// ParcelSeatNumber is the sentinel seat representing takeaway orders. It is
// not a physical table; many orders may be active on it at once.
const ParcelSeatNumber = 0

func IsActiveOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusServed:
		return true
	}
	return false
}

func IsValidRole(s string) bool {
	switch s {
	case RoleAdmin, RoleWaiter, RoleKitchen:
		return true
	}
	return false
}
