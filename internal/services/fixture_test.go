package services

import (
	"context"
	"logistics-engine/internal/adapters/memory"
	"logistics-engine/internal/domain"
	"testing"
)

type fixture struct {
	store  *memory.Store
	engine *Engine
}

func loc(id int64, typ domain.LocationType, maxStorage int) domain.Location {
	return domain.Location{ID: id, Name: string(typ), Type: typ, MaxStorage: maxStorage}
}

func route(id, source, target int64, cost float64) domain.Route {
	return domain.Route{
		ID: id, SourceID: source, TargetID: target, Cost: cost,
		TransitDays: 1, Mode: domain.ModeTruck, Capacity: 100, IsActive: true,
	}
}

// newFixture builds an engine over an in-memory store seeded with the given
// graph and spike events.
func newFixture(t *testing.T, locs []domain.Location, routes []domain.Route, events ...domain.SpikeEvent) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	for _, l := range locs {
		store.PutLocation(l)
	}
	for _, r := range routes {
		store.PutRoute(r)
	}
	for _, e := range events {
		if err := store.SaveSpikeEvent(ctx, e); err != nil {
			t.Fatalf("seed spike %d: %v", e.ID, err)
		}
	}

	engine, err := NewEngine(ctx, Dependencies{
		World:     store,
		Spikes:    store,
		Orders:    store,
		Inventory: store,
		Vendors:   store,
		Alerts:    store,
		Demand:    store,
		Balances:  store,
		Clock:     store,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return &fixture{store: store, engine: engine}
}

func (f *fixture) best(t *testing.T, source, target int64) *domain.Path {
	t.Helper()
	p, err := f.engine.Router.FindBestRoute(context.Background(), source, target)
	if err != nil {
		t.Fatalf("FindBestRoute(%d, %d): %v", source, target, err)
	}
	return p
}

func (f *fixture) apply(t *testing.T, id int64) {
	t.Helper()
	if err := f.engine.Spikes.Apply(context.Background(), id); err != nil {
		t.Fatalf("Apply(%d): %v", id, err)
	}
}

func (f *fixture) rollback(t *testing.T, id int64) {
	t.Helper()
	if err := f.engine.Spikes.Rollback(context.Background(), id); err != nil {
		t.Fatalf("Rollback(%d): %v", id, err)
	}
}

func routeIDs(p *domain.Path) []int64 {
	if p == nil {
		return nil
	}
	ids := make([]int64, 0, len(p.Routes))
	for _, r := range p.Routes {
		ids = append(ids, r.ID)
	}
	return ids
}
