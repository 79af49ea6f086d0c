package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/ports"
	"math"
	"time"
)

// SpikeHandler applies and rolls back one type of disruption.
//
// Handlers flip e.IsActive and may record pre-mutation values in e.Meta; the
// SpikeEngine persists the event afterwards. Handlers do not guard against
// being applied twice: callers apply once per activation and roll back once
// per deactivation.
type SpikeHandler interface {
	Apply(ctx context.Context, w *World, e *domain.SpikeEvent) error
	Rollback(ctx context.Context, w *World, e *domain.SpikeEvent) error
}

// BlizzardHandler closes the affected route while the event is active.
type BlizzardHandler struct{}

func (BlizzardHandler) Apply(ctx context.Context, w *World, e *domain.SpikeEvent) error {
	e.IsActive = true
	if e.AffectedRouteID == nil {
		return nil
	}
	return ignoreMissing(w.SetRouteActive(ctx, *e.AffectedRouteID, false))
}

func (BlizzardHandler) Rollback(ctx context.Context, w *World, e *domain.SpikeEvent) error {
	e.IsActive = false
	if e.AffectedRouteID == nil {
		return nil
	}
	return ignoreMissing(w.SetRouteActive(ctx, *e.AffectedRouteID, true))
}

// BreakdownHandler shrinks the affected location's storage by Magnitude
// (0.5 halves it). The capacity seen by the first application is kept in
// metadata and restored verbatim on rollback.
type BreakdownHandler struct{}

func (BreakdownHandler) Apply(ctx context.Context, w *World, e *domain.SpikeEvent) error {
	e.IsActive = true
	if e.AffectedLocationID == nil {
		return nil
	}

	loc, err := w.Location(*e.AffectedLocationID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, ok := e.MetaInt(domain.MetaOriginalMaxStorage); !ok {
		e.SetMeta(domain.MetaOriginalMaxStorage, loc.MaxStorage)
	}

	factor := math.Max(0, 1-e.Magnitude)
	reduced := int(math.Round(float64(loc.MaxStorage) * factor))
	return ignoreMissing(w.SetLocationStorage(ctx, loc.ID, reduced))
}

func (BreakdownHandler) Rollback(ctx context.Context, w *World, e *domain.SpikeEvent) error {
	e.IsActive = false
	if e.AffectedLocationID == nil {
		return nil
	}

	original, ok := e.MetaInt(domain.MetaOriginalMaxStorage)
	if !ok {
		log.Printf("breakdown rollback: spike=%d has no stored capacity, leaving location=%d as is", e.ID, *e.AffectedLocationID)
		return nil
	}
	return ignoreMissing(w.SetLocationStorage(ctx, *e.AffectedLocationID, original))
}

// DelayHandler pushes the delivery of the user's in-flight orders back by
// Magnitude days, optionally only orders containing the affected product.
// Rollback does not pull deliveries forward again.
type DelayHandler struct {
	Orders ports.OrderRepository
}

func (h DelayHandler) Apply(ctx context.Context, w *World, e *domain.SpikeEvent) error {
	e.IsActive = true
	if h.Orders == nil {
		return errors.New("delay spike: order repository is nil")
	}

	days := int(e.Magnitude)
	if days == 0 {
		return nil
	}

	orders, err := h.Orders.ListInFlightOrders(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("delay spike %d: list orders: %w", e.ID, err)
	}

	shifted := make([]int64, 0, len(orders))
	for _, o := range orders {
		if !o.Status.InFlight() {
			continue
		}
		if e.AffectedProductID != nil && !o.Contains(*e.AffectedProductID) {
			continue
		}

		var at *time.Time
		if o.DeliveryAt != nil {
			t := o.DeliveryAt.AddDate(0, 0, days)
			at = &t
		}
		if err := h.Orders.UpdateDelivery(ctx, o.ID, o.DeliveryDay+days, at); err != nil {
			return fmt.Errorf("delay spike %d: order %d: %w", e.ID, o.ID, err)
		}
		shifted = append(shifted, o.ID)
	}

	e.SetMeta(domain.MetaShiftedOrderIDs, shifted)
	return nil
}

func (DelayHandler) Rollback(ctx context.Context, w *World, e *domain.SpikeEvent) error {
	e.IsActive = false
	return nil
}

// DemandHandler only toggles the flag; pricing reads the magnitude.
type DemandHandler struct{}

func (DemandHandler) Apply(ctx context.Context, w *World, e *domain.SpikeEvent) error {
	e.IsActive = true
	return nil
}

func (DemandHandler) Rollback(ctx context.Context, w *World, e *domain.SpikeEvent) error {
	e.IsActive = false
	return nil
}

// ignoreMissing turns "the referenced record is gone" into a no-op so that
// rollback stays safe when routes or locations are deleted concurrently.
func ignoreMissing(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
