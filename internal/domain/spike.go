package domain

import (
	"fmt"
	"math"
)

// SpikeType selects the handler that applies and rolls back an event.
type SpikeType string

const (
	SpikeBlizzard  SpikeType = "blizzard"
	SpikeBreakdown SpikeType = "breakdown"
	SpikeDelay     SpikeType = "delay"
	SpikeDemand    SpikeType = "demand"
)

// Metadata keys written by spike handlers.
const (
	MetaOriginalMaxStorage = "original_max_storage"
	MetaShiftedOrderIDs    = "shifted_order_ids"
)

// Represents a time-scoped disruption of the logistics world.
//
// Magnitude is interpreted per type: a cost multiplier on the affected route
// while routing, the fractional storage reduction for breakdowns, a day count
// for delays, and a demand multiplier for pricing.
//
// Meta holds values captured before mutation so rollback can restore them
// exactly. ParentID links a symptom event to its root cause.
type SpikeEvent struct {
	ID                 int64
	UserID             int64
	Type               SpikeType
	Magnitude          float64
	AffectedRouteID    *int64
	AffectedLocationID *int64
	AffectedProductID  *int64
	StartDay           int
	EndDay             int
	IsActive           bool
	Meta               map[string]any
	ParentID           *int64
}

// InWindow reports whether day falls inside [StartDay, EndDay].
func (e *SpikeEvent) InWindow(day int) bool {
	return day >= e.StartDay && day <= e.EndDay
}

// Validate rejects an end day before the start day and a magnitude below -1
// or not finite.
func (e *SpikeEvent) Validate() error {
	if e.EndDay < e.StartDay {
		return fmt.Errorf("spike event %d: end day %d before start day %d: %w", e.ID, e.EndDay, e.StartDay, ErrInvalidSpike)
	}
	if math.IsNaN(e.Magnitude) || math.IsInf(e.Magnitude, 0) || e.Magnitude < -1 {
		return fmt.Errorf("spike event %d: magnitude %v out of range: %w", e.ID, e.Magnitude, ErrInvalidSpike)
	}
	return nil
}

// CostFactor is the multiplier this event applies to a route's base cost.
// It never drops below 0, so effective costs stay non-negative.
func (e *SpikeEvent) CostFactor() float64 {
	return math.Max(0, 1+e.Magnitude)
}

// TouchesGraph reports whether applying the event changes a route, its
// effective cost or a location.
func (e *SpikeEvent) TouchesGraph() bool {
	return e.Type == SpikeBlizzard || e.Type == SpikeBreakdown || e.AffectedRouteID != nil
}

// SetMeta stores a metadata value, allocating the map when needed.
func (e *SpikeEvent) SetMeta(key string, v any) {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = v
}

// MetaInt reads an integer metadata value. Values decoded from JSON arrive as
// float64 and are rounded back to int.
func (e *SpikeEvent) MetaInt(key string) (int, bool) {
	v, ok := e.Meta[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(math.Round(n)), true
	case float32:
		return int(math.Round(float64(n))), true
	}
	return 0, false
}

// Clone returns a copy that does not share Meta or pointer fields.
func (e *SpikeEvent) Clone() SpikeEvent {
	cp := *e
	cp.AffectedRouteID = cloneID(e.AffectedRouteID)
	cp.AffectedLocationID = cloneID(e.AffectedLocationID)
	cp.AffectedProductID = cloneID(e.AffectedProductID)
	cp.ParentID = cloneID(e.ParentID)
	if e.Meta != nil {
		cp.Meta = make(map[string]any, len(e.Meta))
		for k, v := range e.Meta {
			cp.Meta[k] = v
		}
	}
	return cp
}

// ID returns a pointer to id, for the optional reference fields.
func ID(id int64) *int64 { return &id }

func cloneID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
