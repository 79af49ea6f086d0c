package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/platform/obs"
	"logistics-engine/internal/ports"
	"slices"
	"sync"
)

// SpikeRegistry maps spike types to their handlers. It is built once at
// startup and read-only afterwards.
type SpikeRegistry map[domain.SpikeType]SpikeHandler

// DefaultSpikeRegistry wires the four built-in disruption types.
func DefaultSpikeRegistry(orders ports.OrderRepository) SpikeRegistry {
	return SpikeRegistry{
		domain.SpikeBlizzard:  BlizzardHandler{},
		domain.SpikeBreakdown: BreakdownHandler{},
		domain.SpikeDelay:     DelayHandler{Orders: orders},
		domain.SpikeDemand:    DemandHandler{},
	}
}

// Handler resolves the handler for t.
func (r SpikeRegistry) Handler(t domain.SpikeType) (SpikeHandler, error) {
	h, ok := r[t]
	if !ok {
		return nil, fmt.Errorf("spike type %q: %w", t, domain.ErrUnknownSpikeType)
	}
	return h, nil
}

// SpikeEngine drives the lifecycle of spike events against the World.
// Apply and Rollback calls are serialised.
type SpikeEngine struct {
	mu       sync.Mutex
	world    *World
	registry SpikeRegistry
}

func NewSpikeEngine(world *World, registry SpikeRegistry) (*SpikeEngine, error) {
	if world == nil {
		return nil, errors.New("new spike engine: world is nil")
	}
	if len(registry) == 0 {
		return nil, errors.New("new spike engine: registry is empty")
	}
	return &SpikeEngine{world: world, registry: registry}, nil
}

// CreateEvent registers a new event. It always starts inactive; Apply or
// ResolveDay runs its handler. The parent link must reference a known event
// and must not close a cycle.
func (s *SpikeEngine) CreateEvent(ctx context.Context, e domain.SpikeEvent) error {
	if _, err := s.registry.Handler(e.Type); err != nil {
		return fmt.Errorf("create spike event %d: %w", e.ID, err)
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("create spike event: %w", err)
	}
	e.IsActive = false
	return s.world.AddEvent(ctx, e)
}

// Apply activates an event through its type's handler and persists the result.
func (s *SpikeEngine) Apply(ctx context.Context, eventID int64) (err error) {
	defer obs.Time(ctx, "spike.Apply")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(ctx, eventID, true)
}

// Rollback deactivates an event through its type's handler and persists the result.
func (s *SpikeEngine) Rollback(ctx context.Context, eventID int64) (err error) {
	defer obs.Time(ctx, "spike.Rollback")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(ctx, eventID, false)
}

// transition must be called with mu held.
func (s *SpikeEngine) transition(ctx context.Context, eventID int64, apply bool) error {
	e, err := s.world.Event(eventID)
	if err != nil {
		return err
	}
	h, err := s.registry.Handler(e.Type)
	if err != nil {
		return fmt.Errorf("spike %d: %w", eventID, err)
	}

	name := "rollback"
	if apply {
		name = "apply"
		err = h.Apply(ctx, s.world, &e)
	} else {
		err = h.Rollback(ctx, s.world, &e)
	}
	if err != nil {
		return fmt.Errorf("%s spike %d (%s): %w", name, eventID, e.Type, err)
	}

	if err := s.world.commitEvent(ctx, e); err != nil {
		return fmt.Errorf("%s spike %d: %w", name, eventID, err)
	}

	obs.SpikeTransitions.WithLabelValues(string(e.Type), name).Inc()
	log.Printf("spike %s id=%d type=%s user=%d magnitude=%v", name, e.ID, e.Type, e.UserID, e.Magnitude)
	return nil
}

// DayResolution lists the events a ResolveDay call changed.
type DayResolution struct {
	Applied    []int64
	RolledBack []int64
}

// ResolveDay brings the user's events in line with the simulated day: active
// events whose window has closed are rolled back first, then inactive events
// whose window contains day are applied, each group in id order. Every
// transition that touches the graph invalidates the path cache before
// returning, so routing queries issued after ResolveDay see the day's graph.
func (s *SpikeEngine) ResolveDay(ctx context.Context, userID int64, day int) (_ DayResolution, err error) {
	defer obs.Time(ctx, "spike.ResolveDay")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	var res DayResolution
	events := s.world.Events()

	for _, e := range events {
		if e.UserID != userID || !e.IsActive || day <= e.EndDay {
			continue
		}
		if err := s.transition(ctx, e.ID, false); err != nil {
			return res, fmt.Errorf("resolve day %d: %w", day, err)
		}
		res.RolledBack = append(res.RolledBack, e.ID)
	}

	for _, e := range events {
		if e.UserID != userID || e.IsActive || !e.InWindow(day) {
			continue
		}
		if err := s.transition(ctx, e.ID, true); err != nil {
			return res, fmt.Errorf("resolve day %d: %w", day, err)
		}
		res.Applied = append(res.Applied, e.ID)
	}

	return res, nil
}

// ActiveEvents returns the user's active events of the given types (all
// types when none are given) ordered by id.
func (s *SpikeEngine) ActiveEvents(userID int64, types ...domain.SpikeType) []domain.SpikeEvent {
	return activeEvents(s.world, userID, types...)
}

func activeEvents(w *World, userID int64, types ...domain.SpikeType) []domain.SpikeEvent {
	var out []domain.SpikeEvent
	for _, e := range w.Events() {
		if e.UserID != userID || !e.IsActive {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, e.Type) {
			continue
		}
		out = append(out, e)
	}
	return out
}
