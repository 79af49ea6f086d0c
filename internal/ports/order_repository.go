package ports

import (
	"context"
	"logistics-engine/internal/domain"
	"time"
)

// Port: a boundary for orders touched by the engine.
type OrderRepository interface {
	// Retrieve the user's pending and shipped orders, items included.
	ListInFlightOrders(ctx context.Context, userID int64) ([]domain.Order, error)
	// Persist a new delivery day (and date, when the order tracks one).
	UpdateDelivery(ctx context.Context, orderID int64, deliveryDay int, deliveryAt *time.Time) error
}

// Port: recent demand used by pricing.
type DemandHistory interface {
	// Return units of productID ordered by userID with a delivery day in [fromDay, toDay].
	UnitsOrdered(ctx context.Context, userID, productID int64, fromDay, toDay int) (int, error)
}
