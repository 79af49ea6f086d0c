package domain

// LocationType classifies a node of the logistics network.
type LocationType string

const (
	LocationVendor    LocationType = "vendor"
	LocationWarehouse LocationType = "warehouse"
	LocationHub       LocationType = "hub"
	LocationStore     LocationType = "store"
)

// Valid reports whether t is one of the known location types.
func (t LocationType) Valid() bool {
	switch t {
	case LocationVendor, LocationWarehouse, LocationHub, LocationStore:
		return true
	}
	return false
}

// IsNetworkRoot reports whether goods originate at this kind of location.
// Vendors and hubs seed reachability checks.
func (t LocationType) IsNetworkRoot() bool {
	return t == LocationVendor || t == LocationHub
}

// Represents a point in the logistics graph.
// MaxStorage is mutable: breakdown spikes shrink it while active.
type Location struct {
	ID         int64
	Name       string
	Type       LocationType
	MaxStorage int
}
