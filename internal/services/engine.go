package services

import (
	"context"
	"errors"
	"fmt"
	"logistics-engine/internal/ports"
)

// Dependencies are the adapters the engine runs against. Notifier, Demand,
// Balances and Clock are optional.
type Dependencies struct {
	World     ports.WorldStore
	Spikes    ports.SpikeRepository
	Orders    ports.OrderRepository
	Inventory ports.InventoryRepository
	Vendors   ports.VendorRepository
	Alerts    ports.AlertRepository
	Notifier  ports.AlertNotifier
	Demand    ports.DemandHistory
	Balances  ports.BalanceReader
	Clock     ports.SimulationClock

	LowStockThreshold int
}

// Engine bundles the core services around one World and one PathCache.
type Engine struct {
	Cache     *PathCache
	World     *World
	Router    *Router
	Spikes    *SpikeEngine
	Pricing   *PricingService
	Isolation *IsolationAlertGenerator
	Quotes    *OrderQuoter
	Days      *DayCycle
}

// NewEngine loads the world and wires every service. The path cache created
// here is shared by the World (which invalidates it) and the Router (which
// fills it).
func NewEngine(ctx context.Context, deps Dependencies) (*Engine, error) {
	if deps.World == nil || deps.Spikes == nil || deps.Orders == nil ||
		deps.Inventory == nil || deps.Vendors == nil || deps.Alerts == nil {
		return nil, errors.New("new engine: world, spikes, orders, inventory, vendors and alerts are required")
	}

	cache := NewPathCache()
	world, err := LoadWorld(ctx, deps.World, deps.Spikes, cache)
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}

	router, err := NewRouter(world, cache)
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}

	spikes, err := NewSpikeEngine(world, DefaultSpikeRegistry(deps.Orders))
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}

	pricing, err := NewPricingService(world, deps.Vendors, deps.Demand, deps.Clock)
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}

	isolation, err := NewIsolationAlertGenerator(router, deps.Inventory, deps.Alerts, deps.Notifier, deps.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}

	quotes, err := NewOrderQuoter(router, pricing, deps.Vendors, deps.Inventory, deps.Balances)
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}

	days, err := NewDayCycle(spikes, isolation, deps.Clock)
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}

	return &Engine{
		Cache:     cache,
		World:     world,
		Router:    router,
		Spikes:    spikes,
		Pricing:   pricing,
		Isolation: isolation,
		Quotes:    quotes,
		Days:      days,
	}, nil
}
