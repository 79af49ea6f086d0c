// Package memory is an in-memory implementation of every engine port. It
// backs tests and database-less server runs.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"logistics-engine/internal/adapters/worldfile"
	"logistics-engine/internal/domain"
	"slices"
	"sync"
	"time"
)

type stockKey struct {
	user     int64
	location int64
	product  int64
}

// Store holds world, catalogue, order, stock and alert state. It is safe for
// concurrent use. Values are copied in and out so callers never share state
// with the store.
type Store struct {
	mu        sync.RWMutex
	locations map[int64]domain.Location
	routes    map[int64]domain.Route
	spikes    map[int64]domain.SpikeEvent
	vendors   map[int64]domain.Vendor
	products  map[int64]domain.Product
	orders    map[int64]domain.Order
	stock     map[stockKey]int
	balances  map[int64]int64
	days      map[int64]int
	alerts    []domain.Alert
}

func NewStore() *Store {
	return &Store{
		locations: make(map[int64]domain.Location),
		routes:    make(map[int64]domain.Route),
		spikes:    make(map[int64]domain.SpikeEvent),
		vendors:   make(map[int64]domain.Vendor),
		products:  make(map[int64]domain.Product),
		orders:    make(map[int64]domain.Order),
		stock:     make(map[stockKey]int),
		balances:  make(map[int64]int64),
		days:      make(map[int64]int),
	}
}

// NewStoreFromSnapshot loads a parsed world file.
func NewStoreFromSnapshot(snap *worldfile.Snapshot) *Store {
	s := NewStore()
	for _, l := range snap.DomainLocations() {
		s.PutLocation(l)
	}
	for _, r := range snap.DomainRoutes() {
		s.PutRoute(r)
	}
	for _, v := range snap.DomainVendors() {
		s.PutVendor(v)
	}
	for _, p := range snap.DomainProducts() {
		s.PutProduct(p)
	}
	for _, e := range snap.DomainSpikes() {
		s.spikes[e.ID] = e.Clone()
	}
	for _, o := range snap.DomainOrders() {
		s.PutOrder(o)
	}
	for _, st := range snap.Stock {
		s.SetStock(st.UserID, st.LocationID, st.ProductID, st.Quantity)
	}
	for _, b := range snap.Balances {
		s.SetBalance(b.UserID, b.Cents)
	}
	return s
}

func (s *Store) PutLocation(l domain.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.ID] = l
}

func (s *Store) PutRoute(r domain.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[r.ID] = r
}

// DeleteRoute removes a route, as an admin deletion would.
func (s *Store) DeleteRoute(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.routes, id)
}

func (s *Store) PutVendor(v domain.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors[v.ID] = v
}

func (s *Store) PutProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *Store) PutOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.Items = slices.Clone(o.Items)
	s.orders[o.ID] = o
}

func (s *Store) SetStock(userID, locationID, productID int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[stockKey{userID, locationID, productID}] = qty
}

func (s *Store) SetBalance(userID int64, cents int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = cents
}

// Order returns a stored order.
func (s *Store) Order(id int64) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	return o, ok
}

// StoredRoute returns the persisted route record.
func (s *Store) StoredRoute(id int64) (domain.Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes[id]
	return r, ok
}

// StoredLocation returns the persisted location record.
func (s *Store) StoredLocation(id int64) (domain.Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locations[id]
	return l, ok
}

// StoredSpike returns the persisted spike event.
func (s *Store) StoredSpike(id int64) (domain.SpikeEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.spikes[id]
	if !ok {
		return domain.SpikeEvent{}, false
	}
	return e.Clone(), true
}

// Alerts returns every alert of the user, resolved or not.
func (s *Store) Alerts(userID int64) []domain.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Alert
	for _, a := range s.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) ListLocations(ctx context.Context) ([]domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Location, 0, len(s.locations))
	for _, l := range s.locations {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b domain.Location) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Route, 0, len(s.routes))
	for _, r := range s.routes {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b domain.Route) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) UpdateRouteActive(ctx context.Context, routeID int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routes[routeID]
	if !ok {
		return fmt.Errorf("update route %d: %w", routeID, domain.ErrNotFound)
	}
	r.IsActive = active
	s.routes[routeID] = r
	return nil
}

func (s *Store) UpdateLocationStorage(ctx context.Context, locationID int64, maxStorage int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locations[locationID]
	if !ok {
		return fmt.Errorf("update location %d: %w", locationID, domain.ErrNotFound)
	}
	l.MaxStorage = maxStorage
	s.locations[locationID] = l
	return nil
}

func (s *Store) ListSpikeEvents(ctx context.Context) ([]domain.SpikeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SpikeEvent, 0, len(s.spikes))
	for _, e := range s.spikes {
		out = append(out, e.Clone())
	}
	slices.SortFunc(out, func(a, b domain.SpikeEvent) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) SaveSpikeEvent(ctx context.Context, e domain.SpikeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spikes[e.ID] = e.Clone()
	return nil
}

func (s *Store) ListInFlightOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Order
	for _, o := range s.orders {
		if o.UserID == userID && o.Status.InFlight() {
			o.Items = slices.Clone(o.Items)
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b domain.Order) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) UpdateDelivery(ctx context.Context, orderID int64, deliveryDay int, deliveryAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("update order %d: %w", orderID, domain.ErrNotFound)
	}
	o.DeliveryDay = deliveryDay
	o.DeliveryAt = deliveryAt
	s.orders[orderID] = o
	return nil
}

func (s *Store) UnitsOrdered(ctx context.Context, userID, productID int64, fromDay, toDay int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.orders {
		if o.UserID != userID || o.Status == domain.OrderCancelled {
			continue
		}
		if o.DeliveryDay < fromDay || o.DeliveryDay > toDay {
			continue
		}
		for _, it := range o.Items {
			if it.ProductID == productID {
				n += it.Quantity
			}
		}
	}
	return n, nil
}

func (s *Store) StockAt(ctx context.Context, userID, locationID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k, q := range s.stock {
		if k.user == userID && k.location == locationID {
			n += q
		}
	}
	return n, nil
}

func (s *Store) Balance(ctx context.Context, userID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[userID], nil
}

func (s *Store) CurrentDay(ctx context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.days[userID], nil
}

func (s *Store) SetCurrentDay(ctx context.Context, userID int64, day int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[userID] = day
	return nil
}

func (s *Store) GetVendor(ctx context.Context, vendorID int64) (domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vendors[vendorID]
	if !ok {
		return domain.Vendor{}, fmt.Errorf("vendor %d: %w", vendorID, domain.ErrNotFound)
	}
	return v, nil
}

func (s *Store) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	return p, nil
}

func (s *Store) FindUnresolved(ctx context.Context, userID, locationID int64, typ domain.AlertType) (*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.alerts {
		if a.UserID == userID && a.LocationID == locationID && a.Type == typ && !a.IsResolved {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateAlert(ctx context.Context, a domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.alerts {
		if existing.ID == a.ID {
			return fmt.Errorf("create alert %s: already exists", a.ID)
		}
	}
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *Store) ResolveAlert(ctx context.Context, alertID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == alertID {
			s.alerts[i].IsResolved = true
			s.alerts[i].ResolvedAt = &at
			return nil
		}
	}
	return fmt.Errorf("resolve alert %s: %w", alertID, domain.ErrNotFound)
}

func (s *Store) ListUnresolved(ctx context.Context, userID int64) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Alert
	for _, a := range s.alerts {
		if a.UserID == userID && !a.IsResolved {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Alert) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}
