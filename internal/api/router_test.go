package api

import (
	"context"
	"encoding/json"
	"logistics-engine/internal/adapters/memory"
	"logistics-engine/internal/adapters/worldfile"
	"logistics-engine/internal/api/dto"
	"logistics-engine/internal/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiWorld = `
locations:
  - {id: 1, name: Farm, type: vendor, max_storage: 500}
  - {id: 2, name: Hub, type: hub, max_storage: 1000}
  - {id: 3, name: Corner Shop, type: store, max_storage: 80}
routes:
  - {id: 10, source: 1, target: 2, cost: 100, transit_days: 2, capacity: 40}
  - {id: 11, source: 2, target: 3, cost: 50, transit_days: 1, capacity: 30}
  - {id: 12, source: 1, target: 3, cost: 200, transit_days: 4, capacity: 60}
vendors:
  - {id: 1, name: Acme, reliability: 0.5}
products:
  - {id: 7, name: Apples, category: produce, vendor_id: 1, unit_price_cents: 100}
spikes:
  - {id: 5, user_id: 9, type: blizzard, route_id: 11, start_day: 2, end_day: 3}
  - {id: 6, user_id: 9, type: blizzard, route_id: 12, start_day: 2, end_day: 4}
stock:
  - {user_id: 9, location_id: 3, product_id: 7, quantity: 4}
balances:
  - {user_id: 9, cents: 100000}
`

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	snap, err := worldfile.Parse([]byte(apiWorld))
	require.NoError(t, err)
	store := memory.NewStoreFromSnapshot(snap)

	engine, err := services.NewEngine(context.Background(), services.Dependencies{
		World:     store,
		Spikes:    store,
		Orders:    store,
		Inventory: store,
		Vendors:   store,
		Alerts:    store,
		Demand:    store,
		Balances:  store,
		Clock:     store,
	})
	require.NoError(t, err)
	return NewRouter(engine, store)
}

func do(t *testing.T, h http.Handler, method, target, body string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodPost, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBestRouteFollowsSpikes(t *testing.T) {
	h := newTestServer(t)

	var best dto.BestRouteResponse
	rec := do(t, h, http.MethodGet, "/routes/best?source=1&target=3", "", &best)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, best.Found)
	assert.InDelta(t, 150, best.TotalCost, 1e-9)
	require.Len(t, best.Legs, 2)
	assert.Equal(t, 30, best.Capacity)

	rec = do(t, h, http.MethodPost, "/spikes/5/apply", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	best = dto.BestRouteResponse{}
	do(t, h, http.MethodGet, "/routes/best?source=1&target=3", "", &best)
	assert.InDelta(t, 200, best.TotalCost, 1e-9)
	require.Len(t, best.Legs, 1)
	assert.Equal(t, int64(12), best.Legs[0].RouteID)

	rec = do(t, h, http.MethodPost, "/spikes/5/rollback", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	best = dto.BestRouteResponse{}
	do(t, h, http.MethodGet, "/routes/best?source=1&target=3", "", &best)
	assert.InDelta(t, 150, best.TotalCost, 1e-9)
}

func TestBestRouteErrors(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/routes/best?source=1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/routes/best?source=1&target=99", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var best dto.BestRouteResponse
	rec = do(t, h, http.MethodGet, "/routes/best?source=3&target=1", "", &best)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, best.Found)
	assert.Empty(t, best.Legs)

	rec = do(t, h, http.MethodPost, "/spikes/404/apply", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDayAdvanceRaisesAndResolvesIsolation(t *testing.T) {
	h := newTestServer(t)

	var day dto.DayAdvanceResponse
	rec := do(t, h, http.MethodPost, "/users/9/days/2/advance", "", &day)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []int64{5, 6}, day.Applied)
	require.Len(t, day.Isolation.Raised, 1)
	raised := day.Isolation.Raised[0]
	assert.Equal(t, int64(3), raised.LocationID)
	assert.Equal(t, "critical", raised.Severity)

	var reach dto.ReachabilityResponse
	do(t, h, http.MethodGet, "/locations/3/reachability", "", &reach)
	assert.False(t, reach.Reachable)

	var iso dto.IsolationResponse
	rec = do(t, h, http.MethodPost, "/users/9/alerts/isolation", "", &iso)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, iso.Raised, "an open alert is not raised twice")

	var list dto.ListAlertsResponse
	do(t, h, http.MethodGet, "/users/9/alerts", "", &list)
	require.Len(t, list.Alerts, 1)
	assert.Equal(t, raised.ID, list.Alerts[0].ID)

	day = dto.DayAdvanceResponse{}
	do(t, h, http.MethodPost, "/users/9/days/5/advance", "", &day)
	assert.Equal(t, []int64{5, 6}, day.RolledBack)
	require.Len(t, day.Isolation.Resolved, 1)
	assert.Equal(t, raised.ID, day.Isolation.Resolved[0].ID)

	list = dto.ListAlertsResponse{}
	do(t, h, http.MethodGet, "/users/9/alerts", "", &list)
	assert.Empty(t, list.Alerts)
}

func TestPricesAndQuotes(t *testing.T) {
	h := newTestServer(t)

	var price dto.PriceMultiplierResponse
	rec := do(t, h, http.MethodGet, "/prices/multiplier?user=9&product=7&vendor=1", "", &price)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1.0, price.Multiplier, 1e-9)

	var quote dto.QuoteResponse
	body := `{"user_id": 9, "vendor_id": 1, "product_id": 7, "source_id": 1, "target_id": 3, "quantity": 20}`
	rec = do(t, h, http.MethodPost, "/quotes", body, &quote)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, quote.OK)
	assert.Equal(t, int64(2000), quote.GoodsCents)
	assert.Equal(t, int64(150), quote.ShippingCents)

	quote = dto.QuoteResponse{}
	body = `{"user_id": 9, "vendor_id": 1, "product_id": 7, "source_id": 1, "target_id": 3, "quantity": 35}`
	do(t, h, http.MethodPost, "/quotes", body, &quote)
	assert.False(t, quote.OK)
	assert.Contains(t, quote.Problems, string(services.ProblemCapacityExceeded))

	rec = do(t, h, http.MethodPost, "/quotes", `{"bogus": 1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSpike(t *testing.T) {
	h := newTestServer(t)

	var spike dto.SpikeResponse
	body := `{"id": 20, "user_id": 9, "type": "demand", "magnitude": 0.5, "start_day": 1, "end_day": 2, "parent_id": 5}`
	rec := do(t, h, http.MethodPost, "/spikes", body, &spike)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.False(t, spike.IsActive)
	require.NotNil(t, spike.ParentID)

	rec = do(t, h, http.MethodPost, "/spikes", body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/spikes", `{"id": 21, "type": "tornado", "start_day": 1, "end_day": 1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	do(t, h, http.MethodPost, "/spikes/20/apply", "", nil)
	var price dto.PriceMultiplierResponse
	do(t, h, http.MethodGet, "/prices/multiplier?user=9&product=7&vendor=1", "", &price)
	assert.InDelta(t, 1.5, price.Multiplier, 1e-9)
}

func TestCreateSpikeRejectsInvalidEvents(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/spikes", `{"id": 30, "user_id": 9, "type": "demand", "start_day": 5, "end_day": 2}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/spikes", `{"id": 31, "user_id": 9, "type": "demand", "magnitude": -2, "affected_route_id": 11, "start_day": 1, "end_day": 2}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/spikes/31/apply", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
