// Package worldfile reads world snapshots (locations, routes, vendors,
// products, spike events, orders, stock) from YAML files.
package worldfile

import (
	"fmt"
	"logistics-engine/internal/domain"
	"os"

	"gopkg.in/yaml.v3"
)

type Location struct {
	ID         int64  `yaml:"id"`
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	MaxStorage int    `yaml:"max_storage"`
}

type Route struct {
	ID          int64   `yaml:"id"`
	Source      int64   `yaml:"source"`
	Target      int64   `yaml:"target"`
	Cost        float64 `yaml:"cost"`
	TransitDays int     `yaml:"transit_days"`
	Mode        string  `yaml:"mode"`
	Capacity    int     `yaml:"capacity"`
	// Routes are open unless explicitly closed.
	Active *bool `yaml:"active"`
}

type Metrics struct {
	LateRate      float64 `yaml:"late_rate"`
	FillRate      float64 `yaml:"fill_rate"`
	ComplaintRate float64 `yaml:"complaint_rate"`
}

type Vendor struct {
	ID          int64              `yaml:"id"`
	Name        string             `yaml:"name"`
	Reliability float64            `yaml:"reliability"`
	Metrics     map[string]Metrics `yaml:"metrics"`
}

type Product struct {
	ID             int64  `yaml:"id"`
	Name           string `yaml:"name"`
	Category       string `yaml:"category"`
	VendorID       int64  `yaml:"vendor_id"`
	UnitPriceCents int64  `yaml:"unit_price_cents"`
}

type Spike struct {
	ID         int64          `yaml:"id"`
	UserID     int64          `yaml:"user_id"`
	Type       string         `yaml:"type"`
	Magnitude  float64        `yaml:"magnitude"`
	RouteID    *int64         `yaml:"route_id"`
	LocationID *int64         `yaml:"location_id"`
	ProductID  *int64         `yaml:"product_id"`
	StartDay   int            `yaml:"start_day"`
	EndDay     int            `yaml:"end_day"`
	Active     bool           `yaml:"active"`
	Meta       map[string]any `yaml:"meta"`
	ParentID   *int64         `yaml:"parent_id"`
}

type OrderItem struct {
	ProductID int64 `yaml:"product_id"`
	Quantity  int   `yaml:"quantity"`
}

type Order struct {
	ID          int64       `yaml:"id"`
	UserID      int64       `yaml:"user_id"`
	VendorID    int64       `yaml:"vendor_id"`
	Source      int64       `yaml:"source"`
	Target      int64       `yaml:"target"`
	Status      string      `yaml:"status"`
	DeliveryDay int         `yaml:"delivery_day"`
	Items       []OrderItem `yaml:"items"`
}

type Stock struct {
	UserID     int64 `yaml:"user_id"`
	LocationID int64 `yaml:"location_id"`
	ProductID  int64 `yaml:"product_id"`
	Quantity   int   `yaml:"quantity"`
}

type Balance struct {
	UserID int64 `yaml:"user_id"`
	Cents  int64 `yaml:"cents"`
}

// Snapshot is the on-disk layout of a world file.
type Snapshot struct {
	Locations []Location `yaml:"locations"`
	Routes    []Route    `yaml:"routes"`
	Vendors   []Vendor   `yaml:"vendors"`
	Products  []Product  `yaml:"products"`
	Spikes    []Spike    `yaml:"spikes"`
	Orders    []Order    `yaml:"orders"`
	Stock     []Stock    `yaml:"stock"`
	Balances  []Balance  `yaml:"balances"`
}

// Load reads and validates a world file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load world file: read %q: %w", path, err)
	}
	snap, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load world file %q: %w", path, err)
	}
	return snap, nil
}

// Parse decodes and validates world YAML.
func Parse(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse world yaml: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Validate checks enum values and that the graph can be built.
func (s *Snapshot) Validate() error {
	for i, l := range s.Locations {
		if !domain.LocationType(l.Type).Valid() {
			return fmt.Errorf("validate world: location at index %d: unknown type %q", i, l.Type)
		}
	}
	for i, sp := range s.Spikes {
		switch domain.SpikeType(sp.Type) {
		case domain.SpikeBlizzard, domain.SpikeBreakdown, domain.SpikeDelay, domain.SpikeDemand:
		default:
			return fmt.Errorf("validate world: spike at index %d: %w %q", i, domain.ErrUnknownSpikeType, sp.Type)
		}
	}
	if _, err := domain.NewGraph(s.DomainLocations(), s.DomainRoutes()); err != nil {
		return fmt.Errorf("validate world: %w", err)
	}
	events := s.DomainSpikes()
	ptrs := make([]*domain.SpikeEvent, 0, len(events))
	for i := range events {
		if err := events[i].Validate(); err != nil {
			return fmt.Errorf("validate world: %w", err)
		}
		ptrs = append(ptrs, &events[i])
	}
	if err := domain.NewEventDAG().AddAll(ptrs); err != nil {
		return fmt.Errorf("validate world: %w", err)
	}
	return nil
}

func (s *Snapshot) DomainLocations() []domain.Location {
	out := make([]domain.Location, 0, len(s.Locations))
	for _, l := range s.Locations {
		out = append(out, domain.Location{
			ID:         l.ID,
			Name:       l.Name,
			Type:       domain.LocationType(l.Type),
			MaxStorage: l.MaxStorage,
		})
	}
	return out
}

func (s *Snapshot) DomainRoutes() []domain.Route {
	out := make([]domain.Route, 0, len(s.Routes))
	for _, r := range s.Routes {
		mode := domain.TransportMode(r.Mode)
		if mode == "" {
			mode = domain.ModeTruck
		}
		out = append(out, domain.Route{
			ID:          r.ID,
			SourceID:    r.Source,
			TargetID:    r.Target,
			Cost:        r.Cost,
			TransitDays: r.TransitDays,
			Mode:        mode,
			Capacity:    r.Capacity,
			IsActive:    r.Active == nil || *r.Active,
		})
	}
	return out
}

func (s *Snapshot) DomainVendors() []domain.Vendor {
	out := make([]domain.Vendor, 0, len(s.Vendors))
	for _, v := range s.Vendors {
		metrics := make(map[string]domain.VendorMetrics, len(v.Metrics))
		for cat, m := range v.Metrics {
			metrics[cat] = domain.VendorMetrics{LateRate: m.LateRate, FillRate: m.FillRate, ComplaintRate: m.ComplaintRate}
		}
		out = append(out, domain.Vendor{ID: v.ID, Name: v.Name, Reliability: v.Reliability, Metrics: metrics})
	}
	return out
}

func (s *Snapshot) DomainProducts() []domain.Product {
	out := make([]domain.Product, 0, len(s.Products))
	for _, p := range s.Products {
		out = append(out, domain.Product(p))
	}
	return out
}

func (s *Snapshot) DomainSpikes() []domain.SpikeEvent {
	out := make([]domain.SpikeEvent, 0, len(s.Spikes))
	for _, sp := range s.Spikes {
		out = append(out, domain.SpikeEvent{
			ID:                 sp.ID,
			UserID:             sp.UserID,
			Type:               domain.SpikeType(sp.Type),
			Magnitude:          sp.Magnitude,
			AffectedRouteID:    sp.RouteID,
			AffectedLocationID: sp.LocationID,
			AffectedProductID:  sp.ProductID,
			StartDay:           sp.StartDay,
			EndDay:             sp.EndDay,
			IsActive:           sp.Active,
			Meta:               sp.Meta,
			ParentID:           sp.ParentID,
		})
	}
	return out
}

func (s *Snapshot) DomainOrders() []domain.Order {
	out := make([]domain.Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		items := make([]domain.OrderItem, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, domain.OrderItem(it))
		}
		status := domain.OrderStatus(o.Status)
		if status == "" {
			status = domain.OrderPending
		}
		out = append(out, domain.Order{
			ID:          o.ID,
			UserID:      o.UserID,
			VendorID:    o.VendorID,
			SourceID:    o.Source,
			TargetID:    o.Target,
			Status:      status,
			DeliveryDay: o.DeliveryDay,
			Items:       items,
		})
	}
	return out
}
