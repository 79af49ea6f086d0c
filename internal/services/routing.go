package services

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/platform/obs"
	"math"
	"slices"
	"time"
)

// Costs closer than this are treated as equal so tie-breaking stays stable
// across float rounding of multi-hop sums.
const costEpsilon = 1e-9

// Router answers lowest-cost path and reachability queries over the World.
//
// It is a stateless query engine apart from its PathCache, which the World
// invalidates on every mutation. The cache is owned by the caller that wires
// both together (see NewEngine).
type Router struct {
	world *World
	cache *PathCache
}

func NewRouter(world *World, cache *PathCache) (*Router, error) {
	if world == nil {
		return nil, errors.New("new router: world is nil")
	}
	if cache == nil {
		cache = NewPathCache()
	}
	return &Router{world: world, cache: cache}, nil
}

// FindBestRoute returns the minimum-cost path from sourceID to targetID over
// active routes, with spike-adjusted costs.
//
// A nil path with a nil error means no route exists. Unknown ids fail with
// domain.ErrNotFound. Ties are broken by total cost, then hop count, then the
// smaller location id on the frontier; between parallel routes the cheaper
// effective cost wins, then the smaller route id.
func (r *Router) FindBestRoute(ctx context.Context, sourceID, targetID int64) (*domain.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := r.world
	w.mu.RLock()
	defer w.mu.RUnlock()

	if _, ok := w.graph.Location(sourceID); !ok {
		return nil, fmt.Errorf("find best route: source %d: %w", sourceID, domain.ErrNotFound)
	}
	if _, ok := w.graph.Location(targetID); !ok {
		return nil, fmt.Errorf("find best route: target %d: %w", targetID, domain.ErrNotFound)
	}

	if p, ok := r.cache.Get(sourceID, targetID); ok {
		return p, nil
	}

	start := time.Now()
	p := r.shortestPath(sourceID, targetID)
	obs.RouteQueryDuration.Observe(time.Since(start).Seconds())

	// Still under the read lock: no mutation can slip in between compute and store.
	r.cache.Put(sourceID, targetID, p)
	return p.Clone(), nil
}

// CalculateCost returns the route's base cost multiplied by the cost factor
// of every active spike on it.
func (r *Router) CalculateCost(route domain.Route) float64 {
	r.world.mu.RLock()
	defer r.world.mu.RUnlock()
	return r.effectiveCost(&route)
}

// CheckReachability reports whether locationID can be reached from any
// vendor or hub over active routes. Network roots reach themselves.
func (r *Router) CheckReachability(ctx context.Context, locationID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	w := r.world
	w.mu.RLock()
	defer w.mu.RUnlock()

	if _, ok := w.graph.Location(locationID); !ok {
		return false, fmt.Errorf("check reachability: location %d: %w", locationID, domain.ErrNotFound)
	}

	var queue []int64
	seen := make(map[int64]struct{})
	for _, l := range w.graph.Locations() {
		if l.Type.IsNetworkRoot() {
			queue = append(queue, l.ID)
			seen[l.ID] = struct{}{}
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == locationID {
			return true, nil
		}
		for _, e := range w.graph.Outgoing(cur) {
			if !e.IsActive {
				continue
			}
			if _, ok := seen[e.TargetID]; ok {
				continue
			}
			seen[e.TargetID] = struct{}{}
			queue = append(queue, e.TargetID)
		}
	}

	return false, nil
}

// PathCapacity is the largest quantity that can travel the path in one
// shipment: the minimum capacity over its routes. Empty paths carry nothing.
func (r *Router) PathCapacity(p *domain.Path) int {
	if p == nil || len(p.Routes) == 0 {
		return 0
	}
	c := math.MaxInt
	for _, rt := range p.Routes {
		c = min(c, rt.Capacity)
	}
	return c
}

// ClearCache explicitly drops every cached path.
func (r *Router) ClearCache() {
	r.cache.Invalidate()
}

// effectiveCost must be called with the world read lock held.
func (r *Router) effectiveCost(route *domain.Route) float64 {
	return route.Cost * r.world.routeFactor(route.ID)
}

type frontierItem struct {
	node int64
	cost float64
	hops int
}

type frontier []frontierItem

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	if f[i].hops != f[j].hops {
		return f[i].hops < f[j].hops
	}
	return f[i].node < f[j].node
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(frontierItem)) }
func (f *frontier) Pop() any {
	old := *f
	it := old[len(old)-1]
	*f = old[:len(old)-1]
	return it
}

type label struct {
	cost float64
	hops int
	via  *domain.Route
}

// shortestPath runs Dijkstra from source; it must be called with the world
// read lock held. Costs are non-negative by graph construction.
func (r *Router) shortestPath(source, target int64) *domain.Path {
	if source == target {
		return &domain.Path{SourceID: source, TargetID: target, Routes: []domain.Route{}}
	}

	g := r.world.graph
	best := map[int64]label{source: {}}
	settled := make(map[int64]struct{})

	pq := &frontier{{node: source}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(frontierItem)
		if _, done := settled[cur.node]; done {
			continue
		}
		settled[cur.node] = struct{}{}
		if cur.node == target {
			break
		}

		for _, e := range g.Outgoing(cur.node) {
			if !e.IsActive {
				continue
			}
			if _, done := settled[e.TargetID]; done {
				continue
			}

			next := label{cost: cur.cost + r.effectiveCost(e), hops: cur.hops + 1, via: e}
			if prev, seen := best[e.TargetID]; seen && !better(next, prev) {
				continue
			}
			best[e.TargetID] = next
			heap.Push(pq, frontierItem{node: e.TargetID, cost: next.cost, hops: next.hops})
		}
	}

	if _, ok := settled[target]; !ok {
		return nil
	}

	var legs []domain.Route
	for node := target; node != source; {
		l := best[node]
		legs = append(legs, *l.via)
		node = l.via.SourceID
	}
	slices.Reverse(legs)

	return &domain.Path{
		SourceID:  source,
		TargetID:  target,
		Routes:    legs,
		TotalCost: best[target].cost,
	}
}

// better reports whether candidate should replace the current label of a node.
func better(candidate, current label) bool {
	if math.Abs(candidate.cost-current.cost) > costEpsilon {
		return candidate.cost < current.cost
	}
	if candidate.hops != current.hops {
		return candidate.hops < current.hops
	}
	if candidate.via.SourceID != current.via.SourceID {
		return candidate.via.SourceID < current.via.SourceID
	}
	return candidate.via.ID < current.via.ID
}
