package services

import (
	"context"
	"logistics-engine/internal/domain"
	"slices"
	"testing"
)

func TestAdvanceResolvesSpikesBeforeIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		[]domain.Location{loc(1, domain.LocationVendor, 0), loc(2, domain.LocationStore, 20)},
		[]domain.Route{route(1, 1, 2, 5)},
		domain.SpikeEvent{ID: 1, UserID: 3, Type: domain.SpikeBlizzard, AffectedRouteID: domain.ID(1), StartDay: 4, EndDay: 5},
	)

	rep, err := f.engine.Days.Advance(ctx, 3, 4)
	if err != nil {
		t.Fatalf("Advance(4): %v", err)
	}
	if !slices.Equal(rep.Spikes.Applied, []int64{1}) {
		t.Fatalf("applied = %v, want [1]", rep.Spikes.Applied)
	}
	if len(rep.Isolation.Raised) != 1 {
		t.Fatalf("raised = %d, want 1 on the day the store is cut off", len(rep.Isolation.Raised))
	}
	if day, _ := f.store.CurrentDay(ctx, 3); day != 4 {
		t.Fatalf("current day = %d, want 4", day)
	}

	rep, err = f.engine.Days.Advance(ctx, 3, 6)
	if err != nil {
		t.Fatalf("Advance(6): %v", err)
	}
	if !slices.Equal(rep.Spikes.RolledBack, []int64{1}) || len(rep.Isolation.Resolved) != 1 {
		t.Fatalf("day 6 report = %+v, want rollback of 1 and one resolved alert", rep)
	}
	if p := f.best(t, 1, 2); p == nil {
		t.Fatal("route still closed after the blizzard ended")
	}
}
