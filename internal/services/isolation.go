package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/platform/obs"
	"logistics-engine/internal/ports"
	"time"

	"github.com/google/uuid"
)

// DefaultLowStockThreshold is the stock level below which an isolated store
// raises a critical alert.
const DefaultLowStockThreshold = 10

// IsolationReport summarises one reconciliation pass.
type IsolationReport struct {
	StoresChecked int
	Raised        []domain.Alert
	Resolved      []domain.Alert
}

// IsolationAlertGenerator reconciles isolation alerts with store reachability.
type IsolationAlertGenerator struct {
	router    *Router
	world     *World
	inventory ports.InventoryRepository
	alerts    ports.AlertRepository
	notifier  ports.AlertNotifier
	threshold int

	now   func() time.Time
	newID func() string
}

// NewIsolationAlertGenerator wires the generator. notifier may be nil; a
// threshold <= 0 selects DefaultLowStockThreshold.
func NewIsolationAlertGenerator(
	router *Router,
	inventory ports.InventoryRepository,
	alerts ports.AlertRepository,
	notifier ports.AlertNotifier,
	threshold int,
) (*IsolationAlertGenerator, error) {
	if router == nil || inventory == nil || alerts == nil {
		return nil, errors.New("new isolation alert generator: router, inventory and alert repository are required")
	}
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &IsolationAlertGenerator{
		router:    router,
		world:     router.world,
		inventory: inventory,
		alerts:    alerts,
		notifier:  notifier,
		threshold: threshold,
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// GenerateIsolationAlerts checks every store once for userID.
//
// An unreachable store holding fewer than the threshold units gets exactly
// one unresolved critical alert; re-running does not duplicate it. A store
// that is reachable again has its unresolved alert resolved.
func (g *IsolationAlertGenerator) GenerateIsolationAlerts(ctx context.Context, userID int64) (_ IsolationReport, err error) {
	defer obs.Time(ctx, "isolation.Generate")(&err)

	var report IsolationReport
	cause := g.probableCause(userID)

	for _, store := range g.world.LocationsOfType(domain.LocationStore) {
		report.StoresChecked++

		reachable, err := g.router.CheckReachability(ctx, store.ID)
		if err != nil {
			return report, fmt.Errorf("isolation alerts: store %d: %w", store.ID, err)
		}

		existing, err := g.alerts.FindUnresolved(ctx, userID, store.ID, domain.AlertIsolation)
		if err != nil {
			return report, fmt.Errorf("isolation alerts: store %d: find alert: %w", store.ID, err)
		}

		if reachable {
			if existing == nil {
				continue
			}
			at := g.now()
			if err := g.alerts.ResolveAlert(ctx, existing.ID, at); err != nil {
				return report, fmt.Errorf("isolation alerts: store %d: resolve alert: %w", store.ID, err)
			}
			existing.IsResolved = true
			existing.ResolvedAt = &at
			report.Resolved = append(report.Resolved, *existing)
			obs.IsolationAlerts.WithLabelValues(string(ports.AlertResolved)).Inc()
			g.notify(ctx, ports.AlertResolved, *existing)
			continue
		}

		if existing != nil {
			continue
		}

		stock, err := g.inventory.StockAt(ctx, userID, store.ID)
		if err != nil {
			return report, fmt.Errorf("isolation alerts: store %d: stock: %w", store.ID, err)
		}
		if stock >= g.threshold {
			continue
		}

		a := domain.Alert{
			ID:         g.newID(),
			UserID:     userID,
			LocationID: store.ID,
			Type:       domain.AlertIsolation,
			Severity:   domain.SeverityCritical,
			Message:    isolationMessage(store, stock, cause),
			CreatedAt:  g.now(),
		}
		if cause != nil {
			a.SpikeEventID = domain.ID(cause.ID)
		}
		if err := g.alerts.CreateAlert(ctx, a); err != nil {
			return report, fmt.Errorf("isolation alerts: store %d: create alert: %w", store.ID, err)
		}
		report.Raised = append(report.Raised, a)
		obs.IsolationAlerts.WithLabelValues(string(ports.AlertRaised)).Inc()
		g.notify(ctx, ports.AlertRaised, a)
	}

	return report, nil
}

// probableCause picks the most recently started active blizzard or
// breakdown of the user; the larger id wins a tie.
func (g *IsolationAlertGenerator) probableCause(userID int64) *domain.SpikeEvent {
	var best *domain.SpikeEvent
	for _, e := range activeEvents(g.world, userID, domain.SpikeBlizzard, domain.SpikeBreakdown) {
		if best == nil || e.StartDay > best.StartDay || (e.StartDay == best.StartDay && e.ID > best.ID) {
			ev := e
			best = &ev
		}
	}
	return best
}

func (g *IsolationAlertGenerator) notify(ctx context.Context, action ports.AlertAction, a domain.Alert) {
	if g.notifier == nil {
		return
	}
	if err := g.notifier.Notify(ctx, action, a); err != nil {
		log.Printf("alert notify failed: action=%s alert=%s err=%v", action, a.ID, err)
	}
}

func isolationMessage(store domain.Location, stock int, cause *domain.SpikeEvent) string {
	msg := fmt.Sprintf("%s is cut off from all suppliers with %d units in stock", store.Name, stock)
	if cause != nil {
		msg += fmt.Sprintf(" (probable cause: %s event #%d)", cause.Type, cause.ID)
	}
	return msg
}
