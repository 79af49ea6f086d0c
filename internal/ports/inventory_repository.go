package ports

import "context"

// Port: stock levels per user and location.
type InventoryRepository interface {
	// Return the total units the user holds at a location, across products.
	StockAt(ctx context.Context, userID, locationID int64) (int, error)
}

// Port: the user's spendable balance.
type BalanceReader interface {
	// Return the balance in cents.
	Balance(ctx context.Context, userID int64) (int64, error)
}

// Port: the simulated day each user's world is at.
type SimulationClock interface {
	CurrentDay(ctx context.Context, userID int64) (int, error)
	SetCurrentDay(ctx context.Context, userID int64, day int) error
}
