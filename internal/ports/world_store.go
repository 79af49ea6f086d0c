package ports

import (
	"context"
	"logistics-engine/internal/domain"
)

// Port: a boundary for loading and persisting the logistics world graph.
type WorldStore interface {
	// Retrieve every location of the world.
	ListLocations(ctx context.Context) ([]domain.Location, error)
	// Retrieve every route of the world, active or not.
	ListRoutes(ctx context.Context) ([]domain.Route, error)
	// Persist a route closure or reopening.
	UpdateRouteActive(ctx context.Context, routeID int64, active bool) error
	// Persist a change of location storage capacity.
	UpdateLocationStorage(ctx context.Context, locationID int64, maxStorage int) error
}

// Port: a boundary for spike event records.
type SpikeRepository interface {
	// Retrieve every spike event, in any order.
	ListSpikeEvents(ctx context.Context) ([]domain.SpikeEvent, error)
	// Insert or update a spike event (active flag, metadata and parent link included).
	SaveSpikeEvent(ctx context.Context, e domain.SpikeEvent) error
}
