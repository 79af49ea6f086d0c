package domain

import (
	"errors"
	"testing"
)

func TestGraphOutgoingOrderedByRouteID(t *testing.T) {
	locs := []Location{
		{ID: 1, Name: "V", Type: LocationVendor},
		{ID: 2, Name: "S", Type: LocationStore},
	}
	routes := []Route{
		{ID: 9, SourceID: 1, TargetID: 2, Cost: 10, IsActive: true},
		{ID: 3, SourceID: 1, TargetID: 2, Cost: 20, IsActive: false},
	}

	g, err := NewGraph(locs, routes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := g.Outgoing(1)
	if len(out) != 2 {
		t.Fatalf("outgoing = %d, want 2", len(out))
	}
	if out[0].ID != 3 || out[1].ID != 9 {
		t.Fatalf("outgoing order = [%d %d], want [3 9]", out[0].ID, out[1].ID)
	}
	if len(g.Outgoing(2)) != 0 {
		t.Fatalf("store should have no outgoing routes")
	}
}

func TestGraphRejectsDanglingRoute(t *testing.T) {
	_, err := NewGraph(
		[]Location{{ID: 1, Type: LocationHub}},
		[]Route{{ID: 1, SourceID: 1, TargetID: 42, Cost: 1}},
	)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGraphMutators(t *testing.T) {
	g, err := NewGraph(
		[]Location{{ID: 1, Type: LocationHub, MaxStorage: 100}, {ID: 2, Type: LocationStore}},
		[]Route{{ID: 7, SourceID: 1, TargetID: 2, Cost: 5, IsActive: true}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := g.SetRouteActive(7, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r, _ := g.Route(7); r.IsActive {
		t.Errorf("route 7 should be inactive")
	}

	if err := g.SetMaxStorage(1, 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l, _ := g.Location(1); l.MaxStorage != 40 {
		t.Errorf("max storage = %d, want 40", l.MaxStorage)
	}

	if err := g.SetRouteActive(99, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	stores := g.LocationsOfType(LocationStore)
	if len(stores) != 1 || stores[0].ID != 2 {
		t.Errorf("stores = %+v, want [2]", stores)
	}
}
