package services

import (
	"context"
	"errors"
	"fmt"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/ports"
	"math"

	"github.com/shopspring/decimal"
)

const (
	demandRecentDays   = 7
	demandBaselineDays = 28
	demandSensitivity  = 0.05
	demandFloor        = -0.05
	demandCeiling      = 0.25
)

// PriceBreakdown shows how a multiplier was composed.
type PriceBreakdown struct {
	Reliability float64
	Metrics     float64
	Spikes      float64
	Demand      float64
	Multiplier  float64
}

// PricingService derives per-unit price multipliers for a (user, product,
// vendor) triple. Results depend only on stored vendor data, the current
// spike state and recorded demand, so repeated calls agree.
type PricingService struct {
	world   *World
	vendors ports.VendorRepository
	demand  ports.DemandHistory
	clock   ports.SimulationClock
}

// NewPricingService wires the service. demand and clock are optional; without
// them the historical demand factor is 1.
func NewPricingService(
	world *World,
	vendors ports.VendorRepository,
	demand ports.DemandHistory,
	clock ports.SimulationClock,
) (*PricingService, error) {
	if world == nil || vendors == nil {
		return nil, errors.New("new pricing service: world and vendor repository are required")
	}
	return &PricingService{world: world, vendors: vendors, demand: demand, clock: clock}, nil
}

// GetPriceMultiplierFor returns the multiplier (>= 0) to apply to the
// product's unit price when userID buys it from vendorID.
func (p *PricingService) GetPriceMultiplierFor(ctx context.Context, userID, productID, vendorID int64) (float64, error) {
	b, err := p.Breakdown(ctx, userID, productID, vendorID)
	if err != nil {
		return 0, err
	}
	return b.Multiplier, nil
}

// Breakdown computes the multiplier and its factors.
func (p *PricingService) Breakdown(ctx context.Context, userID, productID, vendorID int64) (PriceBreakdown, error) {
	vendor, err := p.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return PriceBreakdown{}, fmt.Errorf("price multiplier: vendor %d: %w", vendorID, err)
	}
	product, err := p.vendors.GetProduct(ctx, productID)
	if err != nil {
		return PriceBreakdown{}, fmt.Errorf("price multiplier: product %d: %w", productID, err)
	}

	b := PriceBreakdown{
		Reliability: reliabilityFactor(vendor.Reliability),
		Metrics:     1,
		Spikes:      1,
		Demand:      1,
	}

	if m, ok := vendor.Metrics[product.Category]; ok {
		b.Metrics = metricsFactor(m)
	}

	for _, e := range activeEvents(p.world, userID, domain.SpikeDemand) {
		if e.AffectedProductID != nil && *e.AffectedProductID != productID {
			continue
		}
		b.Spikes *= e.CostFactor()
	}

	b.Demand, err = p.demandFactor(ctx, userID, productID)
	if err != nil {
		return PriceBreakdown{}, fmt.Errorf("price multiplier: %w", err)
	}

	b.Multiplier = math.Max(0, b.Reliability*b.Metrics*b.Spikes*b.Demand)
	return b, nil
}

// LinePrice is unit price × quantity × multiplier, rounded half away from
// zero to whole cents.
func LinePrice(unitCents int64, quantity int, multiplier float64) int64 {
	total := decimal.NewFromInt(unitCents).
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromFloat(multiplier)).
		Round(0)
	return total.IntPart()
}

// Reliable vendors charge a premium: 0.9 at reliability 0, 1.1 at 1.
func reliabilityFactor(reliability float64) float64 {
	r := math.Min(1, math.Max(0, reliability))
	return 0.9 + 0.2*r
}

// A vendor that fills every order on time without complaints prices at 1.
func metricsFactor(m domain.VendorMetrics) float64 {
	return 1 + 0.1*m.FillRate - 0.15*m.LateRate - 0.1*m.ComplaintRate - 0.1
}

// demandFactor compares the last week's ordered units with the weekly
// average of the four weeks before it.
func (p *PricingService) demandFactor(ctx context.Context, userID, productID int64) (float64, error) {
	if p.demand == nil || p.clock == nil {
		return 1, nil
	}

	day, err := p.clock.CurrentDay(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("demand factor: current day: %w", err)
	}

	recentFrom := day - demandRecentDays + 1
	recent, err := p.demand.UnitsOrdered(ctx, userID, productID, recentFrom, day)
	if err != nil {
		return 0, fmt.Errorf("demand factor: recent demand: %w", err)
	}
	baseline, err := p.demand.UnitsOrdered(ctx, userID, productID, recentFrom-demandBaselineDays, recentFrom-1)
	if err != nil {
		return 0, fmt.Errorf("demand factor: baseline demand: %w", err)
	}
	if baseline <= 0 {
		return 1, nil
	}

	weekly := float64(baseline) * demandRecentDays / demandBaselineDays
	delta := demandSensitivity * (float64(recent)/weekly - 1)
	return 1 + math.Min(demandCeiling, math.Max(demandFloor, delta)), nil
}
