package services

import (
	"context"
	"errors"
	"logistics-engine/internal/domain"
	"slices"
	"testing"
	"time"
)

func TestBreakdownRestoresExactCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, []domain.Location{loc(1, domain.LocationWarehouse, 101)}, nil)

	e := domain.SpikeEvent{ID: 1, UserID: 1, Type: domain.SpikeBreakdown, Magnitude: 0.5, AffectedLocationID: domain.ID(1)}
	h := BreakdownHandler{}

	if err := h.Apply(ctx, f.engine.World, &e); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	l, _ := f.engine.World.Location(1)
	if l.MaxStorage != 51 {
		t.Fatalf("max storage after apply = %d, want 51", l.MaxStorage)
	}

	e.Magnitude = 0.2
	if err := h.Apply(ctx, f.engine.World, &e); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if orig, _ := e.MetaInt(domain.MetaOriginalMaxStorage); orig != 101 {
		t.Fatalf("recorded capacity = %d, want the first snapshot 101", orig)
	}

	if err := h.Rollback(ctx, f.engine.World, &e); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	l, _ = f.engine.World.Location(1)
	if l.MaxStorage != 101 {
		t.Fatalf("max storage after rollback = %d, want 101", l.MaxStorage)
	}
	if stored, _ := f.store.StoredLocation(1); stored.MaxStorage != 101 {
		t.Fatalf("persisted max storage = %d, want 101", stored.MaxStorage)
	}
}

func TestBreakdownThroughEngineSurvivesReload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		[]domain.Location{loc(1, domain.LocationWarehouse, 80)}, nil,
		domain.SpikeEvent{ID: 3, UserID: 1, Type: domain.SpikeBreakdown, Magnitude: 1.5, AffectedLocationID: domain.ID(1), EndDay: 2},
	)

	f.apply(t, 3)
	if l, _ := f.engine.World.Location(1); l.MaxStorage != 0 {
		t.Fatalf("max storage = %d, want 0 for magnitude above 1", l.MaxStorage)
	}

	// a fresh engine over the same store sees the stored snapshot
	reloaded, err := NewEngine(ctx, Dependencies{
		World: f.store, Spikes: f.store, Orders: f.store, Inventory: f.store,
		Vendors: f.store, Alerts: f.store,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := reloaded.Spikes.Rollback(ctx, 3); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if l, _ := reloaded.World.Location(1); l.MaxStorage != 80 {
		t.Fatalf("max storage after reload and rollback = %d, want 80", l.MaxStorage)
	}
}

func TestDelayShiftsInFlightOrders(t *testing.T) {
	f := newFixture(t, []domain.Location{loc(1, domain.LocationVendor, 0)}, nil,
		domain.SpikeEvent{ID: 1, UserID: 7, Type: domain.SpikeDelay, Magnitude: 2.9, AffectedProductID: domain.ID(5), EndDay: 3},
	)
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f.store.PutOrder(domain.Order{ID: 1, UserID: 7, Status: domain.OrderPending, DeliveryDay: 5, DeliveryAt: &at,
		Items: []domain.OrderItem{{ProductID: 5, Quantity: 1}}})
	f.store.PutOrder(domain.Order{ID: 2, UserID: 7, Status: domain.OrderShipped, DeliveryDay: 6,
		Items: []domain.OrderItem{{ProductID: 6, Quantity: 1}}})
	f.store.PutOrder(domain.Order{ID: 3, UserID: 7, Status: domain.OrderDelivered, DeliveryDay: 3,
		Items: []domain.OrderItem{{ProductID: 5, Quantity: 1}}})
	f.store.PutOrder(domain.Order{ID: 4, UserID: 8, Status: domain.OrderPending, DeliveryDay: 4,
		Items: []domain.OrderItem{{ProductID: 5, Quantity: 1}}})

	f.apply(t, 1)

	want := map[int64]int{1: 7, 2: 6, 3: 3, 4: 4}
	for id, day := range want {
		o, _ := f.store.Order(id)
		if o.DeliveryDay != day {
			t.Fatalf("order %d delivery day = %d, want %d", id, o.DeliveryDay, day)
		}
	}
	o, _ := f.store.Order(1)
	if !o.DeliveryAt.Equal(at.AddDate(0, 0, 2)) {
		t.Fatalf("order 1 delivery date = %v, want %v", o.DeliveryAt, at.AddDate(0, 0, 2))
	}

	f.rollback(t, 1)
	o, _ = f.store.Order(1)
	if o.DeliveryDay != 7 {
		t.Fatalf("order 1 delivery day after rollback = %d, want 7 (not un-shifted)", o.DeliveryDay)
	}
	e, _ := f.engine.World.Event(1)
	if e.IsActive {
		t.Fatal("event still active after rollback")
	}
}

func TestSpikeOnMissingTargetIsNoop(t *testing.T) {
	f := newFixture(t, []domain.Location{loc(1, domain.LocationVendor, 0)}, nil,
		spikeOnRoute(1, domain.SpikeBlizzard, 99, 0),
		domain.SpikeEvent{ID: 2, UserID: 1, Type: domain.SpikeBreakdown, Magnitude: 0.5, AffectedLocationID: domain.ID(99)},
	)

	for _, id := range []int64{1, 2} {
		f.apply(t, id)
		f.rollback(t, id)
	}
}

func TestResolveDayOrdering(t *testing.T) {
	ctx := context.Background()
	ev := func(id, user int64, start, end int) domain.SpikeEvent {
		return domain.SpikeEvent{ID: id, UserID: user, Type: domain.SpikeDemand, Magnitude: 0.1, StartDay: start, EndDay: end}
	}
	f := newFixture(t, []domain.Location{loc(1, domain.LocationVendor, 0)}, nil,
		ev(4, 1, 3, 3), ev(1, 1, 1, 2), ev(2, 1, 1, 3), ev(3, 2, 1, 5), ev(5, 1, 5, 6),
	)

	res, err := f.engine.Spikes.ResolveDay(ctx, 1, 1)
	if err != nil {
		t.Fatalf("ResolveDay(1): %v", err)
	}
	if !slices.Equal(res.Applied, []int64{1, 2}) || len(res.RolledBack) != 0 {
		t.Fatalf("day 1 = %+v, want applied [1 2]", res)
	}

	res, err = f.engine.Spikes.ResolveDay(ctx, 1, 3)
	if err != nil {
		t.Fatalf("ResolveDay(3): %v", err)
	}
	if !slices.Equal(res.RolledBack, []int64{1}) || !slices.Equal(res.Applied, []int64{4}) {
		t.Fatalf("day 3 = %+v, want rolled back [1], applied [4]", res)
	}

	active := f.engine.Spikes.ActiveEvents(1)
	var ids []int64
	for _, e := range active {
		ids = append(ids, e.ID)
	}
	if !slices.Equal(ids, []int64{2, 4}) {
		t.Fatalf("active events = %v, want [2 4]", ids)
	}

	if e, _ := f.engine.World.Event(3); e.IsActive {
		t.Fatal("another user's event was applied")
	}
}

func TestCreateEventValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, []domain.Location{loc(1, domain.LocationVendor, 0)}, nil)
	spikes := f.engine.Spikes

	err := spikes.CreateEvent(ctx, domain.SpikeEvent{ID: 1, Type: "tornado"})
	if !errors.Is(err, domain.ErrUnknownSpikeType) {
		t.Fatalf("unknown type err = %v, want ErrUnknownSpikeType", err)
	}

	err = spikes.CreateEvent(ctx, domain.SpikeEvent{ID: 1, Type: domain.SpikeDemand, StartDay: 3, EndDay: 2})
	if !errors.Is(err, domain.ErrInvalidSpike) {
		t.Fatalf("inverted window err = %v, want ErrInvalidSpike", err)
	}

	if err := spikes.CreateEvent(ctx, domain.SpikeEvent{ID: 1, Type: domain.SpikeBlizzard, EndDay: 2}); err != nil {
		t.Fatalf("create root: %v", err)
	}
	if err := spikes.CreateEvent(ctx, domain.SpikeEvent{ID: 2, Type: domain.SpikeDelay, EndDay: 2, ParentID: domain.ID(1)}); err != nil {
		t.Fatalf("create child: %v", err)
	}
	if err := spikes.CreateEvent(ctx, domain.SpikeEvent{ID: 3, Type: domain.SpikeDemand, EndDay: 2, ParentID: domain.ID(2)}); err != nil {
		t.Fatalf("create grandchild: %v", err)
	}

	w := f.engine.World
	if err := w.SetEventParent(ctx, 1, domain.ID(3)); !errors.Is(err, domain.ErrEventCycle) {
		t.Fatalf("cycle err = %v, want ErrEventCycle", err)
	}
	if root, err := w.RootCause(3); err != nil || root != 1 {
		t.Fatalf("RootCause(3) = %d, %v, want 1", root, err)
	}
	if got := w.Descendants(1); !slices.Equal(got, []int64{2, 3}) {
		t.Fatalf("Descendants(1) = %v, want [2 3]", got)
	}
	if stored, ok := f.store.StoredSpike(3); !ok || stored.ParentID == nil || *stored.ParentID != 2 {
		t.Fatalf("persisted parent of 3 = %+v", stored.ParentID)
	}

	if err := spikes.Apply(ctx, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("apply unknown err = %v, want ErrNotFound", err)
	}
}

func TestCreateEventRejectsNegativeCostMagnitude(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		[]domain.Location{loc(1, domain.LocationVendor, 0), loc(2, domain.LocationHub, 0), loc(3, domain.LocationHub, 0)},
		[]domain.Route{route(1, 1, 2, 1), route(2, 1, 3, 5), route(3, 3, 2, 10)},
	)

	e := domain.SpikeEvent{ID: 1, UserID: 1, Type: domain.SpikeDemand, Magnitude: -2, AffectedRouteID: domain.ID(3), EndDay: 5}
	if err := f.engine.Spikes.CreateEvent(ctx, e); !errors.Is(err, domain.ErrInvalidSpike) {
		t.Fatalf("err = %v, want ErrInvalidSpike", err)
	}
	if _, err := f.engine.World.Event(1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("rejected event was registered: %v", err)
	}

	e.Magnitude = -1
	if err := f.engine.Spikes.CreateEvent(ctx, e); err != nil {
		t.Fatalf("magnitude -1: %v", err)
	}
	f.apply(t, 1)
	r, _ := f.engine.World.Route(3)
	if got := f.engine.Router.CalculateCost(r); got != 0 {
		t.Fatalf("CalculateCost = %v, want 0", got)
	}
}

func TestCreateEventStartsInactive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		[]domain.Location{loc(1, domain.LocationVendor, 0), loc(2, domain.LocationStore, 0)},
		[]domain.Route{route(1, 1, 2, 10)},
	)

	e := domain.SpikeEvent{ID: 1, UserID: 1, Type: domain.SpikeBlizzard, AffectedRouteID: domain.ID(1), StartDay: 1, EndDay: 3, IsActive: true}
	if err := f.engine.Spikes.CreateEvent(ctx, e); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if got, _ := f.engine.World.Event(1); got.IsActive {
		t.Fatal("created event is active before its handler ran")
	}

	res, err := f.engine.Spikes.ResolveDay(ctx, 1, 1)
	if err != nil {
		t.Fatalf("ResolveDay: %v", err)
	}
	if !slices.Equal(res.Applied, []int64{1}) {
		t.Fatalf("applied = %v, want [1]", res.Applied)
	}
	if p := f.best(t, 1, 2); p != nil {
		t.Fatalf("path during blizzard = %v, want none", routeIDs(p))
	}
}

func TestSpikeWithoutGraphEffectKeepsCache(t *testing.T) {
	f := newFixture(t,
		[]domain.Location{loc(1, domain.LocationVendor, 0), loc(2, domain.LocationStore, 0)},
		[]domain.Route{route(1, 1, 2, 10)},
		domain.SpikeEvent{ID: 1, UserID: 1, Type: domain.SpikeDemand, Magnitude: 0.5, EndDay: 3},
		spikeOnRoute(2, domain.SpikeDemand, 1, 0.5),
	)

	f.best(t, 1, 2)
	f.apply(t, 1)
	if n := f.engine.Cache.Len(); n != 1 {
		t.Fatalf("cache len after product demand spike = %d, want 1", n)
	}

	f.apply(t, 2)
	if n := f.engine.Cache.Len(); n != 0 {
		t.Fatalf("cache len after route spike = %d, want 0", n)
	}
	if p := f.best(t, 1, 2); p.TotalCost != 15 {
		t.Fatalf("cost = %v, want 15", p.TotalCost)
	}
}
