package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// Graph is the directed weighted multigraph of locations and routes.
//
// It exposes traversal primitives only; the two mutators are reserved for the
// World service, which pairs every change with persistence and a path cache
// invalidation. Graph is not safe for concurrent use on its own.
type Graph struct {
	locations map[int64]*Location
	routes    map[int64]*Route
	outgoing  map[int64][]*Route
}

// NewGraph builds a graph from location and route records.
// Every route endpoint must reference a known location.
func NewGraph(locations []Location, routes []Route) (*Graph, error) {
	g := &Graph{
		locations: make(map[int64]*Location, len(locations)),
		routes:    make(map[int64]*Route, len(routes)),
		outgoing:  make(map[int64][]*Route, len(locations)),
	}

	for i := range locations {
		l := locations[i]
		if _, ok := g.locations[l.ID]; ok {
			return nil, fmt.Errorf("new graph: duplicate location id %d", l.ID)
		}
		g.locations[l.ID] = &l
	}

	for i := range routes {
		r := routes[i]
		if _, ok := g.routes[r.ID]; ok {
			return nil, fmt.Errorf("new graph: duplicate route id %d", r.ID)
		}
		if _, ok := g.locations[r.SourceID]; !ok {
			return nil, fmt.Errorf("new graph: route %d source %d: %w", r.ID, r.SourceID, ErrNotFound)
		}
		if _, ok := g.locations[r.TargetID]; !ok {
			return nil, fmt.Errorf("new graph: route %d target %d: %w", r.ID, r.TargetID, ErrNotFound)
		}
		if r.Cost < 0 {
			return nil, fmt.Errorf("new graph: route %d has negative cost %v", r.ID, r.Cost)
		}
		g.routes[r.ID] = &r
		g.outgoing[r.SourceID] = append(g.outgoing[r.SourceID], &r)
	}

	for id := range g.outgoing {
		slices.SortFunc(g.outgoing[id], func(a, b *Route) int { return cmp.Compare(a.ID, b.ID) })
	}

	return g, nil
}

// Location returns a copy of the location record.
func (g *Graph) Location(id int64) (Location, bool) {
	l, ok := g.locations[id]
	if !ok {
		return Location{}, false
	}
	return *l, true
}

// Route returns a copy of the route record.
func (g *Graph) Route(id int64) (Route, bool) {
	r, ok := g.routes[id]
	if !ok {
		return Route{}, false
	}
	return *r, true
}

// Outgoing returns the routes leaving id ordered by route id, active or not.
// The returned pointers must be treated as read-only.
func (g *Graph) Outgoing(id int64) []*Route {
	return g.outgoing[id]
}

// Locations returns all locations ordered by id.
func (g *Graph) Locations() []Location {
	out := make([]Location, 0, len(g.locations))
	for _, l := range g.locations {
		out = append(out, *l)
	}
	slices.SortFunc(out, func(a, b Location) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// LocationsOfType returns the locations of type t ordered by id.
func (g *Graph) LocationsOfType(t LocationType) []Location {
	all := g.Locations()
	out := all[:0]
	for _, l := range all {
		if l.Type == t {
			out = append(out, l)
		}
	}
	return out
}

// Routes returns all routes ordered by id.
func (g *Graph) Routes() []Route {
	out := make([]Route, 0, len(g.routes))
	for _, r := range g.routes {
		out = append(out, *r)
	}
	slices.SortFunc(out, func(a, b Route) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// SetRouteActive opens or closes a route.
func (g *Graph) SetRouteActive(id int64, active bool) error {
	r, ok := g.routes[id]
	if !ok {
		return fmt.Errorf("set route %d active: %w", id, ErrNotFound)
	}
	r.IsActive = active
	return nil
}

// SetMaxStorage changes a location's storage capacity.
func (g *Graph) SetMaxStorage(id int64, maxStorage int) error {
	l, ok := g.locations[id]
	if !ok {
		return fmt.Errorf("set location %d max storage: %w", id, ErrNotFound)
	}
	l.MaxStorage = maxStorage
	return nil
}
