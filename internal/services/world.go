package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/platform/obs"
	"logistics-engine/internal/ports"
	"sync"
)

// Invalidator is notified after every mutation of the world.
type Invalidator interface {
	Invalidate()
}

// World is the in-memory snapshot of the logistics graph and its spike events.
//
// Every mutation goes through World so that three things always happen
// together: the change is persisted, the snapshot is updated, and the path
// cache is invalidated. Reads and writes are guarded by one RWMutex; routing
// queries hold the read lock for the whole computation so a result can never
// be cached against a graph that changed underneath it.
type World struct {
	mu     sync.RWMutex
	graph  *domain.Graph
	events *domain.EventDAG
	// product of (1 + magnitude) of active spikes, per affected route
	routeFactors map[int64]float64

	store  ports.WorldStore
	spikes ports.SpikeRepository
	cache  Invalidator
}

func NewWorld(
	graph *domain.Graph,
	events *domain.EventDAG,
	store ports.WorldStore,
	spikes ports.SpikeRepository,
	cache Invalidator,
) (*World, error) {
	if graph == nil {
		return nil, errors.New("new world: graph is nil")
	}
	if events == nil {
		events = domain.NewEventDAG()
	}

	w := &World{
		graph:  graph,
		events: events,
		store:  store,
		spikes: spikes,
		cache:  cache,
	}
	w.rebuildRouteFactors()
	return w, nil
}

// LoadWorld reads locations, routes and spike events from storage.
func LoadWorld(
	ctx context.Context,
	store ports.WorldStore,
	spikes ports.SpikeRepository,
	cache Invalidator,
) (_ *World, err error) {
	defer obs.Time(ctx, "world.Load")(&err)

	if store == nil || spikes == nil {
		return nil, errors.New("load world: store and spike repository are required")
	}

	locs, err := store.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load world: list locations: %w", err)
	}
	routes, err := store.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load world: list routes: %w", err)
	}
	g, err := domain.NewGraph(locs, routes)
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}

	records, err := spikes.ListSpikeEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load world: list spike events: %w", err)
	}
	events := make([]*domain.SpikeEvent, 0, len(records))
	for i := range records {
		e := records[i]
		events = append(events, &e)
	}
	dag := domain.NewEventDAG()
	if err := dag.AddAll(events); err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}

	log.Printf("world loaded locations=%d routes=%d spikes=%d", len(locs), len(routes), len(events))
	return NewWorld(g, dag, store, spikes, cache)
}

// Location returns a copy of the location, or domain.ErrNotFound.
func (w *World) Location(id int64) (domain.Location, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	l, ok := w.graph.Location(id)
	if !ok {
		return domain.Location{}, fmt.Errorf("location %d: %w", id, domain.ErrNotFound)
	}
	return l, nil
}

// Route returns a copy of the route, or domain.ErrNotFound.
func (w *World) Route(id int64) (domain.Route, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	r, ok := w.graph.Route(id)
	if !ok {
		return domain.Route{}, fmt.Errorf("route %d: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

// LocationsOfType lists locations of type t ordered by id.
func (w *World) LocationsOfType(t domain.LocationType) []domain.Location {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.graph.LocationsOfType(t)
}

// SetRouteActive opens or closes a route.
func (w *World) SetRouteActive(ctx context.Context, routeID int64, active bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.graph.Route(routeID); !ok {
		return fmt.Errorf("set route active: route %d: %w", routeID, domain.ErrNotFound)
	}
	if w.store != nil {
		if err := w.store.UpdateRouteActive(ctx, routeID, active); err != nil {
			return fmt.Errorf("set route active: route %d: %w", routeID, err)
		}
	}
	if err := w.graph.SetRouteActive(routeID, active); err != nil {
		return err
	}
	w.invalidate()
	return nil
}

// SetLocationStorage changes a location's storage capacity.
func (w *World) SetLocationStorage(ctx context.Context, locationID int64, maxStorage int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.graph.Location(locationID); !ok {
		return fmt.Errorf("set location storage: location %d: %w", locationID, domain.ErrNotFound)
	}
	if maxStorage < 0 {
		return fmt.Errorf("set location storage: location %d: negative capacity %d", locationID, maxStorage)
	}
	if w.store != nil {
		if err := w.store.UpdateLocationStorage(ctx, locationID, maxStorage); err != nil {
			return fmt.Errorf("set location storage: location %d: %w", locationID, err)
		}
	}
	if err := w.graph.SetMaxStorage(locationID, maxStorage); err != nil {
		return err
	}
	w.invalidate()
	return nil
}

// Event returns a copy of a spike event, or domain.ErrNotFound.
func (w *World) Event(id int64) (domain.SpikeEvent, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	e, ok := w.events.Get(id)
	if !ok {
		return domain.SpikeEvent{}, fmt.Errorf("spike event %d: %w", id, domain.ErrNotFound)
	}
	return e.Clone(), nil
}

// Events returns copies of all spike events ordered by id.
func (w *World) Events() []domain.SpikeEvent {
	w.mu.RLock()
	defer w.mu.RUnlock()

	all := w.events.Events()
	out := make([]domain.SpikeEvent, 0, len(all))
	for _, e := range all {
		out = append(out, e.Clone())
	}
	return out
}

// AddEvent registers a new spike event. The parent link is checked for
// existence and acyclicity before anything is persisted. An event added as
// active is only counted in route costs; its handler is not run, so any
// route or location effects must already be stored.
func (w *World) AddEvent(ctx context.Context, e domain.SpikeEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ev := e.Clone()
	if err := w.events.Add(&ev); err != nil {
		return err
	}
	if w.spikes != nil {
		if err := w.spikes.SaveSpikeEvent(ctx, ev); err != nil {
			w.events.Remove(ev.ID)
			return fmt.Errorf("add spike event %d: %w", ev.ID, err)
		}
	}
	if ev.IsActive {
		w.rebuildRouteFactors()
		w.invalidate()
	}
	return nil
}

// SetEventParent re-links an event to a new cause, rejecting cycles.
func (w *World) SetEventParent(ctx context.Context, id int64, parent *int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.events.Get(id)
	if !ok {
		return fmt.Errorf("set spike parent %d: %w", id, domain.ErrNotFound)
	}
	prev := e.ParentID
	if err := w.events.SetParent(id, parent); err != nil {
		return err
	}
	if w.spikes != nil {
		if err := w.spikes.SaveSpikeEvent(ctx, e.Clone()); err != nil {
			_ = w.events.SetParent(id, prev)
			return fmt.Errorf("set spike parent %d: %w", id, err)
		}
	}
	return nil
}

// Children lists the direct symptom events of id.
func (w *World) Children(id int64) []int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.events.Children(id)
}

// Descendants lists every event caused transitively by id.
func (w *World) Descendants(id int64) []int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.events.Descendants(id)
}

// RootCause returns the originating event of id's causal chain.
func (w *World) RootCause(id int64) (int64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.events.RootCause(id)
}

// commitEvent persists the event's flag and metadata after a handler ran.
// Events that touch the graph rebuild route factors and invalidate the cache.
func (w *World) commitEvent(ctx context.Context, e domain.SpikeEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cur, ok := w.events.Get(e.ID)
	if !ok {
		return fmt.Errorf("commit spike event %d: %w", e.ID, domain.ErrNotFound)
	}

	next := e.Clone()
	// parent links only change through SetEventParent
	next.ParentID = cur.ParentID

	if w.spikes != nil {
		if err := w.spikes.SaveSpikeEvent(ctx, next.Clone()); err != nil {
			return fmt.Errorf("commit spike event %d: %w", e.ID, err)
		}
	}
	*cur = next
	if next.TouchesGraph() {
		w.rebuildRouteFactors()
		w.invalidate()
	}
	return nil
}

// Invalidate forces a path cache wipe without mutating anything.
func (w *World) Invalidate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.invalidate()
}

func (w *World) invalidate() {
	if w.cache != nil {
		w.cache.Invalidate()
	}
}

// rebuildRouteFactors must be called with mu held for writing.
func (w *World) rebuildRouteFactors() {
	factors := make(map[int64]float64)
	for _, e := range w.events.Events() {
		if !e.IsActive || e.AffectedRouteID == nil {
			continue
		}
		f, ok := factors[*e.AffectedRouteID]
		if !ok {
			f = 1
		}
		factors[*e.AffectedRouteID] = f * e.CostFactor()
	}
	w.routeFactors = factors
}

// routeFactor must be called with mu held.
func (w *World) routeFactor(routeID int64) float64 {
	if f, ok := w.routeFactors[routeID]; ok {
		return f
	}
	return 1
}
