package api

import (
	"logistics-engine/internal/api/handlers"
	"logistics-engine/internal/ports"
	"logistics-engine/internal/services"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(engine *services.Engine, alerts ports.AlertRepository) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{Router: engine.Router}
	priceHandler := &handlers.PriceHandler{
		Pricing: engine.Pricing,
		Quotes:  engine.Quotes,
		Router:  engine.Router,
	}
	spikeHandler := &handlers.SpikeHandler{Spikes: engine.Spikes, World: engine.World}
	dayHandler := &handlers.DayHandler{
		Days:      engine.Days,
		Isolation: engine.Isolation,
		Alerts:    alerts,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/routes/best", routeHandler.Best)
	mux.HandleFunc("/locations/{id}/reachability", routeHandler.Reachability)

	mux.HandleFunc("/prices/multiplier", priceHandler.Multiplier)
	mux.HandleFunc("/quotes", priceHandler.Quote)

	mux.HandleFunc("/spikes", spikeHandler.Create)
	mux.HandleFunc("/spikes/{id}/apply", spikeHandler.Apply)
	mux.HandleFunc("/spikes/{id}/rollback", spikeHandler.Rollback)

	mux.HandleFunc("/users/{id}/days/{day}/advance", dayHandler.Advance)
	mux.HandleFunc("/users/{id}/alerts/isolation", dayHandler.GenerateIsolation)
	mux.HandleFunc("/users/{id}/alerts", dayHandler.ListAlerts)

	return requestIDMiddleware(loggingMiddleware(mux))
}
