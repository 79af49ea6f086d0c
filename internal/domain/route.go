package domain

// TransportMode is the carrier used on a route.
type TransportMode string

const (
	ModeTruck TransportMode = "truck"
	ModeRail  TransportMode = "rail"
	ModeAir   TransportMode = "air"
	ModeSea   TransportMode = "sea"
)

// Represents a directed, costed, capacity-bounded link between two locations.
// Several routes may connect the same pair with different modes and costs.
// An inactive route is closed (e.g. by a blizzard) and must never be routed over.
type Route struct {
	ID          int64
	SourceID    int64
	TargetID    int64
	Cost        float64
	TransitDays int
	Mode        TransportMode
	Capacity    int
	IsActive    bool
}

// Represents the cheapest way from one location to another.
// Routes are ordered from source to target. A Path with no routes is the
// trivial path from a location to itself; "no path" is represented by a nil *Path.
type Path struct {
	SourceID  int64
	TargetID  int64
	Routes    []Route
	TotalCost float64
}

// Hops returns the number of routes travelled.
func (p *Path) Hops() int {
	if p == nil {
		return 0
	}
	return len(p.Routes)
}

// TransitDays sums the transit time of every leg.
func (p *Path) TransitDays() int {
	if p == nil {
		return 0
	}
	days := 0
	for _, r := range p.Routes {
		days += r.TransitDays
	}
	return days
}

// Clone returns a deep copy so callers cannot mutate cached results.
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Routes = append([]Route(nil), p.Routes...)
	return &cp
}
