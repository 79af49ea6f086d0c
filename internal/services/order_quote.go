package services

import (
	"context"
	"errors"
	"fmt"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/platform/obs"
	"logistics-engine/internal/ports"

	"github.com/shopspring/decimal"
)

// QuoteProblem is a validation failure the caller reports to the player.
type QuoteProblem string

const (
	ProblemNoRoute           QuoteProblem = "no_route"
	ProblemCapacityExceeded  QuoteProblem = "capacity_exceeded"
	ProblemStorageExceeded   QuoteProblem = "storage_exceeded"
	ProblemInsufficientFunds QuoteProblem = "insufficient_funds"
)

type QuoteRequest struct {
	UserID    int64
	VendorID  int64
	ProductID int64
	SourceID  int64
	TargetID  int64
	Quantity  int
}

// Quote carries the numbers an order form needs. Problems is empty when the
// order can be placed as requested.
type Quote struct {
	Path          *domain.Path
	Capacity      int
	ShippingCents int64
	Multiplier    float64
	GoodsCents    int64
	TotalCents    int64
	Problems      []QuoteProblem
}

// OK reports whether the quote has no validation problems.
func (q *Quote) OK() bool { return len(q.Problems) == 0 }

// OrderQuoter combines routing, capacity and pricing into an order quote.
// Validation failures are returned as data, never as errors.
type OrderQuoter struct {
	router    *Router
	pricing   *PricingService
	vendors   ports.VendorRepository
	inventory ports.InventoryRepository
	balances  ports.BalanceReader
}

// NewOrderQuoter wires the quoter; balances may be nil to skip the funds check.
func NewOrderQuoter(
	router *Router,
	pricing *PricingService,
	vendors ports.VendorRepository,
	inventory ports.InventoryRepository,
	balances ports.BalanceReader,
) (*OrderQuoter, error) {
	if router == nil || pricing == nil || vendors == nil || inventory == nil {
		return nil, errors.New("new order quoter: router, pricing, vendors and inventory are required")
	}
	return &OrderQuoter{router: router, pricing: pricing, vendors: vendors, inventory: inventory, balances: balances}, nil
}

func (q *OrderQuoter) Quote(ctx context.Context, req QuoteRequest) (_ *Quote, err error) {
	defer obs.Time(ctx, "order.Quote")(&err)

	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quote order: quantity must be positive, got %d", req.Quantity)
	}

	product, err := q.vendors.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("quote order: product %d: %w", req.ProductID, err)
	}

	path, err := q.router.FindBestRoute(ctx, req.SourceID, req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("quote order: %w", err)
	}

	mult, err := q.pricing.GetPriceMultiplierFor(ctx, req.UserID, req.ProductID, req.VendorID)
	if err != nil {
		return nil, fmt.Errorf("quote order: %w", err)
	}

	out := &Quote{
		Path:       path,
		Multiplier: mult,
		GoodsCents: LinePrice(product.UnitPriceCents, req.Quantity, mult),
	}

	if path == nil {
		out.Problems = append(out.Problems, ProblemNoRoute)
	} else {
		out.ShippingCents = decimal.NewFromFloat(path.TotalCost).Round(0).IntPart()
		if path.Hops() > 0 {
			out.Capacity = q.router.PathCapacity(path)
			if req.Quantity > out.Capacity {
				out.Problems = append(out.Problems, ProblemCapacityExceeded)
			}
		}
	}
	out.TotalCents = out.GoodsCents + out.ShippingCents

	target, err := q.router.world.Location(req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("quote order: %w", err)
	}
	stock, err := q.inventory.StockAt(ctx, req.UserID, req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("quote order: stock at %d: %w", req.TargetID, err)
	}
	if stock+req.Quantity > target.MaxStorage {
		out.Problems = append(out.Problems, ProblemStorageExceeded)
	}

	if q.balances != nil {
		balance, err := q.balances.Balance(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("quote order: balance: %w", err)
		}
		if balance < out.TotalCents {
			out.Problems = append(out.Problems, ProblemInsufficientFunds)
		}
	}

	return out, nil
}
