package worldfile

import (
	"errors"
	"logistics-engine/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWorld = `
locations:
  - {id: 1, name: Acme Farms, type: vendor, max_storage: 500}
  - {id: 2, name: Central Hub, type: hub, max_storage: 1000}
  - {id: 3, name: Downtown, type: store, max_storage: 80}
routes:
  - {id: 10, source: 1, target: 2, cost: 40, transit_days: 2, mode: rail, capacity: 200}
  - {id: 11, source: 2, target: 3, cost: 15, transit_days: 1, capacity: 50, active: false}
vendors:
  - id: 1
    name: Acme
    reliability: 0.8
    metrics:
      produce: {late_rate: 0.1, fill_rate: 0.95, complaint_rate: 0.02}
products:
  - {id: 7, name: Apples, category: produce, vendor_id: 1, unit_price_cents: 125}
spikes:
  - {id: 1, user_id: 9, type: blizzard, magnitude: 0, route_id: 11, start_day: 3, end_day: 5}
  - {id: 2, user_id: 9, type: delay, magnitude: 2, start_day: 3, end_day: 4, parent_id: 1}
`

func TestParseWorld(t *testing.T) {
	snap, err := Parse([]byte(sampleWorld))
	require.NoError(t, err)

	routes := snap.DomainRoutes()
	require.Len(t, routes, 2)
	assert.Equal(t, domain.ModeRail, routes[0].Mode)
	assert.True(t, routes[0].IsActive)
	assert.Equal(t, domain.ModeTruck, routes[1].Mode, "mode defaults to truck")
	assert.False(t, routes[1].IsActive)

	vendors := snap.DomainVendors()
	require.Len(t, vendors, 1)
	assert.InDelta(t, 0.95, vendors[0].Metrics["produce"].FillRate, 1e-9)

	spikes := snap.DomainSpikes()
	require.Len(t, spikes, 2)
	require.NotNil(t, spikes[1].ParentID)
	assert.Equal(t, int64(1), *spikes[1].ParentID)

	products := snap.DomainProducts()
	require.Len(t, products, 1)
	assert.Equal(t, int64(125), products[0].UnitPriceCents)
}

func TestParseWorldRejectsBadData(t *testing.T) {
	_, err := Parse([]byte("locations:\n  - {id: 1, type: castle}\n"))
	require.Error(t, err)

	_, err = Parse([]byte(`
locations:
  - {id: 1, type: hub}
routes:
  - {id: 1, source: 1, target: 2, cost: 3}
`))
	assert.True(t, errors.Is(err, domain.ErrNotFound), "dangling route target: %v", err)

	_, err = Parse([]byte("spikes:\n  - {id: 1, type: tornado}\n"))
	assert.True(t, errors.Is(err, domain.ErrUnknownSpikeType), "unknown spike type: %v", err)

	_, err = Parse([]byte("spikes:\n  - {id: 1, type: delay, start_day: 4, end_day: 2}\n"))
	assert.True(t, errors.Is(err, domain.ErrInvalidSpike), "inverted window: %v", err)

	_, err = Parse([]byte("spikes:\n  - {id: 1, type: demand, magnitude: -1.5, end_day: 2}\n"))
	assert.True(t, errors.Is(err, domain.ErrInvalidSpike), "negative cost factor: %v", err)
}
