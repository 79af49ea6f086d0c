package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"logistics-engine/internal/ports"
)

// DayReport is the outcome of advancing one user's world by a day.
type DayReport struct {
	Day       int
	Spikes    DayResolution
	Isolation IsolationReport
}

// DayCycle runs the per-day work in the order routing depends on: spike
// transitions (each invalidating the path cache) first, isolation checks after.
type DayCycle struct {
	spikes    *SpikeEngine
	isolation *IsolationAlertGenerator
	clock     ports.SimulationClock
}

// NewDayCycle wires the cycle; clock may be nil when the caller tracks days.
func NewDayCycle(spikes *SpikeEngine, isolation *IsolationAlertGenerator, clock ports.SimulationClock) (*DayCycle, error) {
	if spikes == nil || isolation == nil {
		return nil, errors.New("new day cycle: spike engine and isolation generator are required")
	}
	return &DayCycle{spikes: spikes, isolation: isolation, clock: clock}, nil
}

// Advance moves userID's world to day.
func (c *DayCycle) Advance(ctx context.Context, userID int64, day int) (DayReport, error) {
	report := DayReport{Day: day}

	if c.clock != nil {
		if err := c.clock.SetCurrentDay(ctx, userID, day); err != nil {
			return report, fmt.Errorf("advance day %d: %w", day, err)
		}
	}

	res, err := c.spikes.ResolveDay(ctx, userID, day)
	report.Spikes = res
	if err != nil {
		return report, fmt.Errorf("advance day %d: %w", day, err)
	}

	iso, err := c.isolation.GenerateIsolationAlerts(ctx, userID)
	report.Isolation = iso
	if err != nil {
		return report, fmt.Errorf("advance day %d: %w", day, err)
	}

	log.Printf(
		"day advanced user=%d day=%d applied=%d rolled_back=%d alerts_raised=%d alerts_resolved=%d",
		userID, day, len(res.Applied), len(res.RolledBack), len(iso.Raised), len(iso.Resolved),
	)
	return report, nil
}
