package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// EventDAG indexes spike events by id and by parent so causal chains can be
// walked in both directions. The parent relation is kept acyclic: storage
// does not enforce it, so every write is checked here.
//
// EventDAG is not safe for concurrent use; the owning World serialises access.
type EventDAG struct {
	events   map[int64]*SpikeEvent
	children map[int64][]int64
}

func NewEventDAG() *EventDAG {
	return &EventDAG{
		events:   make(map[int64]*SpikeEvent),
		children: make(map[int64][]int64),
	}
}

// Add tracks a new event. The parent must already be tracked.
func (d *EventDAG) Add(e *SpikeEvent) error {
	if e == nil {
		return fmt.Errorf("add spike event: event is nil")
	}
	if _, ok := d.events[e.ID]; ok {
		return fmt.Errorf("add spike event %d: %w", e.ID, ErrDuplicateEvent)
	}
	if e.ParentID != nil {
		if *e.ParentID == e.ID {
			return fmt.Errorf("add spike event %d: %w", e.ID, ErrEventCycle)
		}
		if _, ok := d.events[*e.ParentID]; !ok {
			return fmt.Errorf("add spike event %d: parent %d: %w", e.ID, *e.ParentID, ErrNotFound)
		}
	}

	d.events[e.ID] = e
	d.rebuild()
	return nil
}

// AddAll tracks a batch of events regardless of their order, as loaded from
// storage. Events whose parent is missing from the batch are rejected.
func (d *EventDAG) AddAll(events []*SpikeEvent) error {
	pending := slices.Clone(events)
	for len(pending) > 0 {
		progressed := false
		rest := pending[:0]
		for _, e := range pending {
			if e.ParentID != nil {
				if _, ok := d.events[*e.ParentID]; !ok {
					rest = append(rest, e)
					continue
				}
			}
			if err := d.Add(e); err != nil {
				return err
			}
			progressed = true
		}
		if !progressed {
			return fmt.Errorf("add spike events: %d events reference unknown or cyclic parents: %w", len(rest), ErrEventCycle)
		}
		pending = rest
	}
	return nil
}

// SetParent re-links an event. A nil parent detaches it into a root.
func (d *EventDAG) SetParent(id int64, parent *int64) error {
	e, ok := d.events[id]
	if !ok {
		return fmt.Errorf("set spike parent %d: %w", id, ErrNotFound)
	}
	if parent != nil {
		if _, ok := d.events[*parent]; !ok {
			return fmt.Errorf("set spike parent %d: parent %d: %w", id, *parent, ErrNotFound)
		}
		// Walking up from the new parent must never reach the event itself.
		for cur := parent; cur != nil; cur = d.events[*cur].ParentID {
			if *cur == id {
				return fmt.Errorf("set spike parent %d -> %d: %w", id, *parent, ErrEventCycle)
			}
		}
	}

	e.ParentID = cloneID(parent)
	d.rebuild()
	return nil
}

// Remove stops tracking an event. Its children become roots.
func (d *EventDAG) Remove(id int64) {
	if _, ok := d.events[id]; !ok {
		return
	}
	delete(d.events, id)
	for _, e := range d.events {
		if e.ParentID != nil && *e.ParentID == id {
			e.ParentID = nil
		}
	}
	d.rebuild()
}

// Get returns the tracked event.
func (d *EventDAG) Get(id int64) (*SpikeEvent, bool) {
	e, ok := d.events[id]
	return e, ok
}

// Events returns all tracked events ordered by id.
func (d *EventDAG) Events() []*SpikeEvent {
	out := make([]*SpikeEvent, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *SpikeEvent) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Children returns the direct symptom events of id, ordered by id.
func (d *EventDAG) Children(id int64) []int64 {
	return slices.Clone(d.children[id])
}

// Descendants returns every event caused directly or transitively by id,
// in breadth-first order.
func (d *EventDAG) Descendants(id int64) []int64 {
	var out []int64
	queue := slices.Clone(d.children[id])
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		queue = append(queue, d.children[cur]...)
	}
	return out
}

// RootCause follows parent links up to the originating event.
func (d *EventDAG) RootCause(id int64) (int64, error) {
	e, ok := d.events[id]
	if !ok {
		return 0, fmt.Errorf("root cause of %d: %w", id, ErrNotFound)
	}
	for e.ParentID != nil {
		parent, ok := d.events[*e.ParentID]
		if !ok {
			break
		}
		e = parent
	}
	return e.ID, nil
}

func (d *EventDAG) rebuild() {
	d.children = make(map[int64][]int64, len(d.events))
	for _, e := range d.events {
		if e.ParentID != nil {
			d.children[*e.ParentID] = append(d.children[*e.ParentID], e.ID)
		}
	}
	for k := range d.children {
		slices.Sort(d.children[k])
	}
}
